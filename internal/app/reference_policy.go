package app

import (
	"context"
	"fmt"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/ports/secondary"
)

// Reference is the resolved baseline for a propose request: the reference
// value (nil for custom orders), the acceptable offer bounds, and the
// subject fields the negotiation row is created with.
type Reference struct {
	Value          *float64
	Bounds         corenegotiation.Bounds
	SubjectRef     string
	SubjectTitle   string
	CounterpartyID string
}

// ReferencePolicy is the per-kind pluggable rule set that resolves a
// propose request's subject. It is the sole point of per-kind variation
// outside the core policy flags.
type ReferencePolicy interface {
	Reference(ctx context.Context, req primary.ProposeRequest) (*Reference, error)
}

// PriceReferencePolicy resolves price negotiations against the catalog:
// the reference value is the item's effective price and the bounds are
// [30% of reference, reference].
type PriceReferencePolicy struct {
	catalog secondary.CatalogProvider
}

// NewPriceReferencePolicy creates the price-kind reference policy.
func NewPriceReferencePolicy(catalog secondary.CatalogProvider) *PriceReferencePolicy {
	return &PriceReferencePolicy{catalog: catalog}
}

// Reference resolves the catalog item and computes the hard offer bounds.
func (p *PriceReferencePolicy) Reference(ctx context.Context, req primary.ProposeRequest) (*Reference, error) {
	item, err := p.catalog.GetItem(ctx, req.SubjectRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("catalog item %s: %w", req.SubjectRef, corenegotiation.ErrNotFound)
	}
	if !item.Published || !item.Negotiable {
		return nil, fmt.Errorf("catalog item %s is not open for negotiation: %w", req.SubjectRef, corenegotiation.ErrNotFound)
	}
	if item.SellerID == req.InitiatorID {
		return nil, fmt.Errorf("catalog item %s belongs to the initiator: %w", req.SubjectRef, corenegotiation.ErrNotFound)
	}

	reference := item.Price
	if item.DiscountPrice != nil {
		reference = *item.DiscountPrice
	}

	// A seller-set minimum tightens the default 30% floor, never loosens it.
	bounds := corenegotiation.PriceBounds(reference)
	if item.MinPrice != nil && *item.MinPrice > bounds.Min {
		bounds.Min = *item.MinPrice
	}

	return &Reference{
		Value:          &reference,
		Bounds:         bounds,
		SubjectRef:     item.ID,
		SubjectTitle:   item.Name,
		CounterpartyID: item.SellerID,
	}, nil
}

// CustomOrderReferencePolicy resolves custom-order negotiations. There is
// no fixed catalog price, so the reference value is nil and the bounds
// are advisory (positive offer only) - the item itself is being defined
// by the negotiation.
type CustomOrderReferencePolicy struct{}

// NewCustomOrderReferencePolicy creates the custom-order reference policy.
func NewCustomOrderReferencePolicy() *CustomOrderReferencePolicy {
	return &CustomOrderReferencePolicy{}
}

// Reference validates the bespoke request bundle.
func (p *CustomOrderReferencePolicy) Reference(ctx context.Context, req primary.ProposeRequest) (*Reference, error) {
	if req.CounterpartyID == "" {
		return nil, fmt.Errorf("%w: custom orders must name the artisan", corenegotiation.ErrValidation)
	}
	if req.SubjectTitle == "" {
		return nil, fmt.Errorf("%w: custom orders must have a title", corenegotiation.ErrValidation)
	}

	return &Reference{
		Value:          nil,
		Bounds:         corenegotiation.AdvisoryBounds(),
		SubjectRef:     req.SubjectRef,
		SubjectTitle:   req.SubjectTitle,
		CounterpartyID: req.CounterpartyID,
	}, nil
}

// Ensure the policies implement the interface
var (
	_ ReferencePolicy = (*PriceReferencePolicy)(nil)
	_ ReferencePolicy = (*CustomOrderReferencePolicy)(nil)
)
