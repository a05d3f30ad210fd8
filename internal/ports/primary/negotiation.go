// Package primary defines the primary ports (driving adapters) for the
// application. These are the interfaces through which the outside world
// drives the application.
package primary

import (
	"context"
	"time"
)

// NegotiationService defines the primary port for negotiation operations.
// Implementations live in the application layer; adapters (CLI, API) drive
// this interface.
type NegotiationService interface {
	// Propose opens a negotiation, or returns the already-open one for
	// the same initiator and subject. Propose is idempotent by design:
	// re-submitting while a negotiation is open returns the existing
	// negotiation rather than erroring, making client retries safe.
	Propose(ctx context.Context, req ProposeRequest) (*ProposeResponse, error)

	// Respond applies accept/reject/counter/cancel to an open negotiation.
	// The engine enforces turn order, expiry and the transition table.
	Respond(ctx context.Context, req RespondRequest) (*Negotiation, error)

	// GetNegotiation retrieves a negotiation with its full history.
	GetNegotiation(ctx context.Context, negotiationID string) (*Negotiation, error)

	// ListNegotiations lists negotiation summaries for a user in a role.
	ListNegotiations(ctx context.Context, filters NegotiationFilters) ([]*NegotiationSummary, error)
}

// SweeperService defines the primary port for the expiry sweeper.
type SweeperService interface {
	// SweepOnce force-expires all stale open negotiations and returns
	// how many rows were transitioned.
	SweepOnce(ctx context.Context) (int64, error)

	// Run sweeps on the given interval until the context is cancelled.
	// Failures are logged and retried on the next tick.
	Run(ctx context.Context, interval time.Duration) error
}

// ProposeRequest contains parameters for opening a negotiation.
type ProposeRequest struct {
	InitiatorID string
	Kind        string

	// SubjectRef identifies what is being negotiated: a catalog item ID
	// for price negotiations, an opaque request key for custom orders.
	SubjectRef string
	// Variant optionally narrows a catalog item (size, glaze, ...).
	Variant string

	// CounterpartyID is required for custom orders. For price
	// negotiations it is derived from the catalog item's seller and may
	// be left empty.
	CounterpartyID string

	// SubjectTitle and SubjectSpec describe the bespoke work for custom
	// orders. Ignored for price negotiations (the item name is used).
	SubjectTitle string
	SubjectSpec  string

	Offer         float64
	Quantity      int
	Reason        string
	ExpiresInDays int
}

// ProposeResponse contains the negotiation and whether this call created it.
type ProposeResponse struct {
	Negotiation *Negotiation
	// IsNew is false when an open negotiation for the same initiator and
	// subject already existed and was returned instead.
	IsNew bool
}

// RespondRequest contains parameters for responding to a negotiation.
type RespondRequest struct {
	NegotiationID string
	ActorID       string
	// Action is one of accept, reject, counter, cancel.
	Action string
	// CounterValue is required when Action is counter.
	CounterValue float64
	Message      string
}

// Negotiation is the full entity at the port boundary.
type Negotiation struct {
	ID             string
	Kind           string
	SubjectRef     string
	SubjectTitle   string
	SubjectSpec    string
	Variant        string
	InitiatorID    string
	CounterpartyID string
	ReferenceValue *float64
	CurrentOffer   float64
	FinalValue     *float64
	Quantity       int
	Status         string
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	History        []*Event
}

// Event is one entry of a negotiation's append-only history.
type Event struct {
	ID        string
	Seq       int
	ActorID   string
	ActorRole string
	Action    string
	// Payload is the action-specific decoded payload; its concrete type
	// is one of the core package's payload shapes.
	Payload   any
	CreatedAt time.Time
}

// NegotiationFilters selects negotiations for listing.
type NegotiationFilters struct {
	UserID string
	// Role is "initiator" or "counterparty": which side of the table the
	// user is on.
	Role   string
	Status string
	Kind   string
	Limit  int
	Offset int
}

// NegotiationSummary is the denormalized list projection.
type NegotiationSummary struct {
	ID           string
	Kind         string
	SubjectTitle string
	Status       string
	CurrentOffer float64
	FinalValue   *float64
	OtherPartyID string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
