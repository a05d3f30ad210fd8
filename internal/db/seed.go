package db

import (
	"database/sql"
	"fmt"
)

// SeedFixtures populates the database with development fixtures: a few
// artisans' catalog items that exercise discounts, unpublished and
// non-negotiable edge cases.
func SeedFixtures(database *sql.DB) error {
	items := []struct {
		id, seller, name, desc string
		price                  float64
		discount, minPrice     sql.NullFloat64
		published, negotiable  bool
	}{
		{"ITEM-0001", "ARTISAN-001", "Walnut dining table", "Hand-finished walnut, seats six", 450000, sql.NullFloat64{}, sql.NullFloat64{}, true, true},
		{"ITEM-0002", "ARTISAN-001", "Oak bookshelf", "Five shelves, pegged joinery", 180000, sql.NullFloat64{Float64: 150000, Valid: true}, sql.NullFloat64{}, true, true},
		{"ITEM-0003", "ARTISAN-002", "Ceramic tea set", "Wheel-thrown, ash glaze", 60000, sql.NullFloat64{}, sql.NullFloat64{Float64: 45000, Valid: true}, true, true},
		{"ITEM-0004", "ARTISAN-002", "Raku vase", "One of a kind, not for haggling", 95000, sql.NullFloat64{}, sql.NullFloat64{}, true, false},
		{"ITEM-0005", "ARTISAN-003", "Leather satchel", "Still in the workshop", 120000, sql.NullFloat64{}, sql.NullFloat64{}, false, true},
	}
	for _, it := range items {
		if _, err := database.Exec(
			`INSERT INTO catalog_items (id, seller_id, name, description, price, discount_price, min_price, published, negotiable)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.id, it.seller, it.name, it.desc, it.price, it.discount, it.minPrice, it.published, it.negotiable,
		); err != nil {
			return fmt.Errorf("seed catalog items: %w", err)
		}
	}

	return nil
}
