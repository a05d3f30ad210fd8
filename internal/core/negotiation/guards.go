package negotiation

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result wrapped as ErrForbidden if not allowed,
// nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrForbidden, r.Reason)
}

// ProposeContext provides the context for the propose guard.
type ProposeContext struct {
	InitiatorID    string
	CounterpartyID string
}

// CanPropose evaluates whether the initiator may open a negotiation with
// the counterparty. Rule: both parties must be known and distinct - an
// actor may never negotiate with themselves.
func CanPropose(ctx ProposeContext) GuardResult {
	if ctx.InitiatorID == "" || ctx.CounterpartyID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "both negotiation parties must be identified",
		}
	}
	if ctx.InitiatorID == ctx.CounterpartyID {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("actor %s cannot negotiate with themselves", ctx.InitiatorID),
		}
	}
	return GuardResult{Allowed: true}
}

// RespondContext provides the context for the respond guard.
type RespondContext struct {
	Status         Status
	InitiatorID    string
	CounterpartyID string
	ActorID        string
	Action         Action
}

// CanRespond evaluates whether the actor may perform the action in the
// negotiation's current state, and returns the actor's role when allowed.
//
// Rules: only the counterparty may respond while pending; only the
// initiator may respond while counter-offered (each counter flips who
// must act next). Cancel is the exception - either original party may
// cancel any open negotiation. Strangers may do nothing.
func CanRespond(ctx RespondContext) (Role, GuardResult) {
	var role Role
	switch ctx.ActorID {
	case ctx.InitiatorID:
		role = RoleInitiator
	case ctx.CounterpartyID:
		role = RoleCounterparty
	default:
		return "", GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("actor %s is not a party to this negotiation", ctx.ActorID),
		}
	}

	if ctx.Action == ActionCancel {
		return role, GuardResult{Allowed: true}
	}

	required := requiredResponder(ctx.Status)
	if required == "" {
		// Terminal states are handled by the transition table; the guard
		// only arbitrates between the two parties.
		return role, GuardResult{Allowed: true}
	}
	if role != required {
		return role, GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("it is the %s's turn to respond while the negotiation is %s",
				required, ctx.Status),
		}
	}
	return role, GuardResult{Allowed: true}
}

// requiredResponder returns which role must act in the given open status.
func requiredResponder(status Status) Role {
	switch status {
	case StatusPending:
		return RoleCounterparty
	case StatusCounterOffered:
		return RoleInitiator
	}
	return ""
}
