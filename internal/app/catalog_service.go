package app

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/primary"
	"github.com/example/haggle/internal/ports/secondary"
)

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	catalog secondary.CatalogProvider
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(catalog secondary.CatalogProvider) *CatalogServiceImpl {
	return &CatalogServiceImpl{catalog: catalog}
}

// GetItem retrieves a catalog item by ID.
func (s *CatalogServiceImpl) GetItem(ctx context.Context, itemID string) (*primary.CatalogItem, error) {
	record, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("catalog item %s: %w", itemID, corenegotiation.ErrNotFound)
	}
	return recordToCatalogItem(record), nil
}

// ListItems lists catalog items with optional filters.
func (s *CatalogServiceImpl) ListItems(ctx context.Context, filters primary.CatalogFilters) ([]*primary.CatalogItem, error) {
	records, err := s.catalog.List(ctx, secondary.CatalogFilters{
		SellerID:      filters.SellerID,
		PublishedOnly: filters.PublishedOnly,
		Limit:         filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}

	items := make([]*primary.CatalogItem, len(records))
	for i, r := range records {
		items[i] = recordToCatalogItem(r)
	}
	return items, nil
}

// CreateItem adds an item to the catalog.
func (s *CatalogServiceImpl) CreateItem(ctx context.Context, req primary.CreateItemRequest) (*primary.CatalogItem, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", corenegotiation.ErrValidation)
	}
	if req.SellerID == "" {
		return nil, fmt.Errorf("%w: seller id is required", corenegotiation.ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", corenegotiation.ErrValidation)
	}

	record := &secondary.CatalogItemRecord{
		ID:            ulid.Make().String(),
		SellerID:      req.SellerID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		MinPrice:      req.MinPrice,
		Published:     req.Published,
		Negotiable:    req.Negotiable,
	}
	if err := s.catalog.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create catalog item: %w", err)
	}

	created, err := s.catalog.GetItem(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back catalog item: %w", err)
	}
	return recordToCatalogItem(created), nil
}

func recordToCatalogItem(r *secondary.CatalogItemRecord) *primary.CatalogItem {
	return &primary.CatalogItem{
		ID:            r.ID,
		SellerID:      r.SellerID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		MinPrice:      r.MinPrice,
		Published:     r.Published,
		Negotiable:    r.Negotiable,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
