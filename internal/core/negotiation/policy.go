package negotiation

import "fmt"

// Kind distinguishes the two flavors of negotiation the engine serves.
type Kind string

const (
	// KindPrice negotiates the price of an existing catalog item.
	KindPrice Kind = "price"
	// KindCustomOrder negotiates a bespoke commission with no fixed
	// catalog price.
	KindCustomOrder Kind = "custom_order"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindPrice || k == KindCustomOrder
}

// Policy captures the per-kind rules of the state machine. ReferencePolicy
// (offer bounds) is the other point of per-kind variation and lives with
// the catalog lookup in the application layer.
type Policy struct {
	Kind Kind

	// AllowInitiatorCounter controls whether the initiator may counter
	// the counterparty's counter-offer, or only accept/reject/cancel it.
	AllowInitiatorCounter bool

	// DefaultExpiryDays is used when a propose request does not set an
	// explicit expiry window.
	DefaultExpiryDays int

	// MinExpiryDays and MaxExpiryDays bound the expiry window a caller
	// may request.
	MinExpiryDays int
	MaxExpiryDays int

	// RefreshExpiryOnCounter extends the deadline by DefaultExpiryDays
	// whenever a counter-offer lands, so a live exchange is not swept
	// mid-conversation.
	RefreshExpiryOnCounter bool
}

// PolicyFor returns the rules for the given kind.
func PolicyFor(kind Kind) (Policy, error) {
	switch kind {
	case KindPrice:
		return Policy{
			Kind:                   KindPrice,
			AllowInitiatorCounter:  false,
			DefaultExpiryDays:      3,
			MinExpiryDays:          1,
			MaxExpiryDays:          7,
			RefreshExpiryOnCounter: true,
		}, nil
	case KindCustomOrder:
		return Policy{
			Kind:                   KindCustomOrder,
			AllowInitiatorCounter:  true,
			DefaultExpiryDays:      7,
			MinExpiryDays:          1,
			MaxExpiryDays:          30,
			RefreshExpiryOnCounter: true,
		}, nil
	}
	return Policy{}, fmt.Errorf("%w: unknown negotiation kind %q", ErrValidation, kind)
}

// ExpiryDays resolves the requested expiry window against the policy's
// default and bounds. A zero request means "use the default"; a request
// outside the bounds is a validation error.
func (p Policy) ExpiryDays(requested int) (int, error) {
	if requested == 0 {
		return p.DefaultExpiryDays, nil
	}
	if requested < p.MinExpiryDays || requested > p.MaxExpiryDays {
		return 0, fmt.Errorf("%w: expiry must be between %d and %d days for %s negotiations, got %d",
			ErrValidation, p.MinExpiryDays, p.MaxExpiryDays, p.Kind, requested)
	}
	return requested, nil
}
