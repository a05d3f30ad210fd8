// Package negotiation contains the pure business logic for the negotiation
// state machine. This is part of the Functional Core - no I/O, only pure
// functions and value types.
package negotiation

// Status represents the possible states of a negotiation.
type Status string

const (
	StatusPending        Status = "pending"
	StatusCounterOffered Status = "counter_offered"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
	StatusExpired        Status = "expired"
	StatusCancelled      Status = "cancelled"
)

// Open reports whether the negotiation is still awaiting a response.
// Only open negotiations may be transitioned by the parties or the sweeper.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusCounterOffered
}

// Terminal reports whether the status is a sink state. A negotiation that
// has reached a terminal status never re-enters an open state.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s.Open() || s.Terminal()
}

// InitialStatus returns the status for a freshly proposed negotiation.
func InitialStatus() Status {
	return StatusPending
}

// Action represents a move one of the parties (or the system) makes on
// a negotiation.
type Action string

const (
	ActionPropose Action = "propose"
	ActionCounter Action = "counter"
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionExpire  Action = "expire"
)

// Valid reports whether a is a known action value.
func (a Action) Valid() bool {
	switch a {
	case ActionPropose, ActionCounter, ActionAccept, ActionReject, ActionCancel, ActionExpire:
		return true
	}
	return false
}

// RespondAction reports whether a is a legal argument to Respond.
// Propose and expire are not responses: propose creates the negotiation
// and expire is reserved for the system.
func (a Action) RespondAction() bool {
	switch a {
	case ActionAccept, ActionReject, ActionCounter, ActionCancel:
		return true
	}
	return false
}

// Role identifies which side of the negotiation an actor is on.
type Role string

const (
	// RoleInitiator is the customer-role party who started the negotiation.
	RoleInitiator Role = "initiator"
	// RoleCounterparty is the artisan-role party who received it.
	RoleCounterparty Role = "counterparty"
	// RoleSystem is used for sweeper/expiry events only.
	RoleSystem Role = "system"
)
