// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() / setupFileTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/haggle/internal/db"
	"github.com/example/haggle/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Each connection to :memory: is its own database.
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupFileTestDB creates a file-backed database for tests that exercise
// concurrent writers. In-memory SQLite databases are per-connection, so
// cross-connection locking behavior needs a real file.
func setupFileTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	testDB, err := sql.Open("sqlite3", path+db.DSNOptions)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedCatalogItem inserts a published negotiable test item and returns its ID.
func seedCatalogItem(t *testing.T, db *sql.DB, id, sellerID string, price float64) string {
	t.Helper()
	if id == "" {
		id = "ITEM-0001"
	}
	if sellerID == "" {
		sellerID = "ARTISAN-001"
	}
	_, err := db.Exec(
		"INSERT INTO catalog_items (id, seller_id, name, price, published, negotiable) VALUES (?, ?, 'Walnut dining table', ?, 1, 1)",
		id, sellerID, price,
	)
	if err != nil {
		t.Fatalf("failed to seed catalog item: %v", err)
	}
	return id
}

// negotiationDraft builds a pending draft with an opening propose event.
func negotiationDraft(id, initiatorID, subjectRef string, expiresAt time.Time) *secondary.NegotiationDraft {
	return &secondary.NegotiationDraft{
		Record: secondary.NegotiationRecord{
			ID:             id,
			Kind:           "price",
			SubjectRef:     subjectRef,
			SubjectTitle:   "Walnut dining table",
			InitiatorID:    initiatorID,
			CounterpartyID: "ARTISAN-001",
			CurrentOffer:   400000,
			Quantity:       1,
			Status:         "pending",
			ExpiresAt:      expiresAt,
		},
		Event: secondary.EventRecord{
			ID:        id + "-EV1",
			ActorID:   initiatorID,
			ActorRole: "initiator",
			Action:    "propose",
			Payload:   `{"offer":400000,"quantity":1}`,
		},
	}
}
