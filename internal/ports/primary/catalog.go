package primary

import (
	"context"
	"time"
)

// CatalogService defines the primary port for catalog inspection. The
// negotiation engine consumes the catalog through a secondary port; this
// service exists for the operational CLI surface.
type CatalogService interface {
	// GetItem retrieves a catalog item by ID.
	GetItem(ctx context.Context, itemID string) (*CatalogItem, error)

	// ListItems lists catalog items with optional filters.
	ListItems(ctx context.Context, filters CatalogFilters) ([]*CatalogItem, error)

	// CreateItem adds an item to the catalog.
	CreateItem(ctx context.Context, req CreateItemRequest) (*CatalogItem, error)
}

// CatalogItem represents a catalog item at the port boundary.
type CatalogItem struct {
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

// EffectivePrice returns the price a buyer actually faces: the discount
// price when one is set, the list price otherwise.
func (i *CatalogItem) EffectivePrice() float64 {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}

// CatalogFilters selects catalog items for listing.
type CatalogFilters struct {
	SellerID      string
	PublishedOnly bool
	Limit         int
}

// CreateItemRequest contains parameters for adding a catalog item.
type CreateItemRequest struct {
	SellerID      string
	Name          string
	Description   string
	Price         float64
	DiscountPrice *float64
	MinPrice      *float64
	Published     bool
	Negotiable    bool
}
