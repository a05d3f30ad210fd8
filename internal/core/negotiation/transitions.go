package negotiation

import (
	"fmt"
	"time"
)

// ActionInput carries everything ApplyAction needs to compute a transition.
// The caller reads the negotiation row and the clock; this stays pure.
type ActionInput struct {
	Policy       Policy
	Status       Status
	Action       Action
	Role         Role
	CurrentOffer float64
	CounterValue float64
	Now          time.Time
}

// TransitionResult is the computed effect of a legal action. The store
// applies it together with the appended history event in one transaction.
type TransitionResult struct {
	NewStatus    Status
	CurrentOffer float64
	// FinalValue is set only when the transition lands in accepted.
	FinalValue *float64
	// RefreshExpiry is set when the deadline should be pushed out by the
	// policy's default window (counter-offers on kinds that refresh).
	RefreshExpiry bool
}

// actionLegal is the transition table: which actions are legal in which
// open status. Terminal states accept no actions at all.
func actionLegal(status Status, action Action) bool {
	switch status {
	case StatusPending, StatusCounterOffered:
		switch action {
		case ActionAccept, ActionReject, ActionCounter, ActionCancel, ActionExpire:
			return true
		}
	}
	return false
}

// ApplyAction validates the action against the current status and the
// kind policy, then computes the resulting state. Role legality (who may
// act) is the guards' concern; this function owns what the action does.
func ApplyAction(in ActionInput) (TransitionResult, error) {
	if !actionLegal(in.Status, in.Action) {
		return TransitionResult{}, fmt.Errorf("%w: cannot %s a negotiation in status %s",
			ErrInvalidTransition, in.Action, in.Status)
	}

	switch in.Action {
	case ActionAccept:
		final := in.CurrentOffer
		return TransitionResult{
			NewStatus:    StatusAccepted,
			CurrentOffer: in.CurrentOffer,
			FinalValue:   &final,
		}, nil

	case ActionReject:
		return TransitionResult{
			NewStatus:    StatusRejected,
			CurrentOffer: in.CurrentOffer,
		}, nil

	case ActionCancel:
		return TransitionResult{
			NewStatus:    StatusCancelled,
			CurrentOffer: in.CurrentOffer,
		}, nil

	case ActionExpire:
		return TransitionResult{
			NewStatus:    StatusExpired,
			CurrentOffer: in.CurrentOffer,
		}, nil

	case ActionCounter:
		// The counterparty may always counter a pending offer. Whether
		// the initiator may counter back is a per-kind product rule.
		if in.Status == StatusCounterOffered && in.Role == RoleInitiator && !in.Policy.AllowInitiatorCounter {
			return TransitionResult{}, fmt.Errorf("%w: %s negotiations only allow the initiator to accept, reject or cancel a counter-offer",
				ErrInvalidTransition, in.Policy.Kind)
		}
		if in.CounterValue <= 0 {
			return TransitionResult{}, fmt.Errorf("%w: counter value must be positive", ErrValidation)
		}
		// The status encodes whose turn it is: pending waits on the
		// counterparty, counter_offered waits on the initiator. A counter
		// therefore flips the status to the side that must answer it.
		newStatus := StatusCounterOffered
		if in.Role == RoleInitiator {
			newStatus = StatusPending
		}
		return TransitionResult{
			NewStatus:     newStatus,
			CurrentOffer:  in.CounterValue,
			RefreshExpiry: in.Policy.RefreshExpiryOnCounter,
		}, nil
	}

	return TransitionResult{}, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, in.Action)
}
