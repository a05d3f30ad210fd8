package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/haggle/internal/ports/secondary"
)

// CatalogRepository implements secondary.CatalogProvider with SQLite.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new SQLite catalog repository.
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = `id, seller_id, name, description, price, discount_price, min_price,
	published, negotiable, created_at, updated_at`

// GetItem retrieves an item by ID, or (nil, nil) when absent. Eligibility
// (published, negotiable, ownership) is the reference policy's call, not
// the store's.
func (r *CatalogRepository) GetItem(ctx context.Context, id string) (*secondary.CatalogItemRecord, error) {
	item, err := scanCatalogItem(r.db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM catalog_items WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return item, nil
}

// List retrieves items matching the filters, newest first.
func (r *CatalogRepository) List(ctx context.Context, filters secondary.CatalogFilters) ([]*secondary.CatalogItemRecord, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE 1=1`
	args := []any{}

	if filters.SellerID != "" {
		query += " AND seller_id = ?"
		args = append(args, filters.SellerID)
	}
	if filters.PublishedOnly {
		query += " AND published = 1"
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	defer rows.Close()

	var items []*secondary.CatalogItemRecord
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Insert adds an item to the catalog.
func (r *CatalogRepository) Insert(ctx context.Context, item *secondary.CatalogItemRecord) error {
	if item.ID == "" {
		return fmt.Errorf("catalog item ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO catalog_items (id, seller_id, name, description, price, discount_price, min_price, published, negotiable)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SellerID, item.Name, nullString(item.Description), item.Price,
		nullFloat(item.DiscountPrice), nullFloat(item.MinPrice), item.Published, item.Negotiable,
	)
	if err != nil {
		return fmt.Errorf("failed to insert catalog item: %w", err)
	}
	return nil
}

func scanCatalogItem(row rowScanner) (*secondary.CatalogItemRecord, error) {
	var (
		description   sql.NullString
		discountPrice sql.NullFloat64
		minPrice      sql.NullFloat64
	)

	item := &secondary.CatalogItemRecord{}
	err := row.Scan(
		&item.ID, &item.SellerID, &item.Name, &description, &item.Price, &discountPrice, &minPrice,
		&item.Published, &item.Negotiable, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	if discountPrice.Valid {
		item.DiscountPrice = &discountPrice.Float64
	}
	if minPrice.Valid {
		item.MinPrice = &minPrice.Float64
	}
	return item, nil
}

// Ensure CatalogRepository implements the interface
var _ secondary.CatalogProvider = (*CatalogRepository)(nil)
