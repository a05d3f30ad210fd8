// Package secondary defines the secondary ports (driven adapters) for the
// application: the persistence and gateway interfaces the services depend
// on. Implementations live under internal/adapters.
package secondary

import (
	"context"
	"time"
)

// NegotiationRecord is the persistence shape of a negotiation row.
type NegotiationRecord struct {
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
}

// EventRecord is one appended history entry.
type EventRecord struct {
	ID            string
	NegotiationID string
	Seq           int
	ActorID       string
	ActorRole     string
	Action        string
	Payload       string
	CreatedAt     time.Time
}

// NegotiationDraft bundles the row and the opening history event for the
// atomic find-or-create.
type NegotiationDraft struct {
	Record NegotiationRecord
	// Event is the opening propose entry; its NegotiationID and Seq are
	// filled by the store.
	Event EventRecord
}

// Mutation describes one status transition together with the history
// entry it appends. Fields left nil are not touched.
type Mutation struct {
	NewStatus    string
	CurrentOffer *float64
	FinalValue   *float64
	ExpiresAt    *time.Time
	// Event is appended inside the same transaction as the update; its
	// NegotiationID and Seq are filled by the store.
	Event EventRecord
}

// NegotiationFilters selects negotiation rows for listing.
type NegotiationFilters struct {
	InitiatorID    string
	CounterpartyID string
	Status         string
	Kind           string
	Limit          int
	Offset         int
}

// NegotiationRepository defines the secondary port for negotiation
// persistence. All mutating operations are single ACID transactions.
type NegotiationRepository interface {
	// FindOrCreate atomically returns the open negotiation for the
	// draft's (initiator, subject) pair, or inserts the draft and its
	// opening event. The bool is true when this call created the row.
	// This single transaction is what enforces the at-most-one-open
	// invariant under concurrent callers.
	FindOrCreate(ctx context.Context, draft *NegotiationDraft) (*NegotiationRecord, bool, error)

	// GetByID retrieves a negotiation row. Returns an error wrapping
	// negotiation.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*NegotiationRecord, error)

	// Transition applies the mutation iff the row's status still equals
	// expectedStatus, appending the history event in the same
	// transaction. Returns an error wrapping negotiation.ErrConflict
	// when a concurrent writer got there first.
	Transition(ctx context.Context, id, expectedStatus string, m Mutation) (*NegotiationRecord, error)

	// SweepExpired force-expires every open negotiation whose deadline
	// passed, as one conditional UPDATE with no read-then-write window.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	// ListFor retrieves negotiation rows matching the filters, newest
	// first.
	ListFor(ctx context.Context, filters NegotiationFilters) ([]*NegotiationRecord, error)

	// ListEvents returns a negotiation's history in append order.
	ListEvents(ctx context.Context, negotiationID string) ([]*EventRecord, error)
}

// CatalogItemRecord is the persistence shape of a catalog item.
type CatalogItemRecord struct {
	ID            string
	SellerID      string
	Name          string
	Description   string
	Price         float64
	DiscountPrice *float64
	MinPrice      *float64
	Published     bool
	Negotiable    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CatalogFilters selects catalog items for listing.
type CatalogFilters struct {
	SellerID      string
	PublishedOnly bool
	Limit         int
}

// CatalogProvider defines the secondary port the reference policies use
// to resolve negotiation subjects.
type CatalogProvider interface {
	// GetItem retrieves an item by ID, or (nil, nil) when absent.
	GetItem(ctx context.Context, id string) (*CatalogItemRecord, error)

	// List retrieves items matching the filters, newest first.
	List(ctx context.Context, filters CatalogFilters) ([]*CatalogItemRecord, error)

	// Insert adds an item to the catalog.
	Insert(ctx context.Context, item *CatalogItemRecord) error
}

// QuotaRepository defines the secondary port for the store-backed daily
// proposal counter. Both checks and increments happen in one statement so
// every service instance observes the same count.
type QuotaRepository interface {
	// Increment bumps the (userID, day) counter iff it is still below
	// limit, returning whether the increment happened and the resulting
	// count.
	Increment(ctx context.Context, userID, day string, limit int) (bool, int, error)
}
