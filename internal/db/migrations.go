package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_negotiation_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "quotas_chat_and_notifications",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "partial_unique_open_pair_index",
		Up:      migrationV3,
	},
}

// RunMigrations applies all pending migrations in order.
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	// Create schema_version table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

// migrationV1 creates the catalog, negotiations and events tables.
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_items (
			id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			price REAL NOT NULL,
			discount_price REAL,
			min_price REAL,
			published INTEGER NOT NULL DEFAULT 1,
			negotiable INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_catalog_items_seller ON catalog_items(seller_id);

		CREATE TABLE IF NOT EXISTS negotiations (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('price', 'custom_order')),
			subject_ref TEXT NOT NULL,
			subject_title TEXT NOT NULL,
			subject_spec TEXT,
			variant TEXT,
			initiator_id TEXT NOT NULL,
			counterparty_id TEXT NOT NULL,
			reference_value REAL,
			current_offer REAL NOT NULL,
			final_value REAL,
			quantity INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL CHECK(status IN ('pending', 'counter_offered', 'accepted', 'rejected', 'expired', 'cancelled')) DEFAULT 'pending',
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_negotiations_initiator ON negotiations(initiator_id, status);
		CREATE INDEX IF NOT EXISTS idx_negotiations_counterparty ON negotiations(counterparty_id, status);
		CREATE INDEX IF NOT EXISTS idx_negotiations_expiry ON negotiations(status, expires_at);

		CREATE TABLE IF NOT EXISTS negotiation_events (
			id TEXT PRIMARY KEY,
			negotiation_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			actor_id TEXT NOT NULL,
			actor_role TEXT NOT NULL CHECK(actor_role IN ('initiator', 'counterparty', 'system')),
			action TEXT NOT NULL CHECK(action IN ('propose', 'counter', 'accept', 'reject', 'cancel', 'expire')),
			payload TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (negotiation_id) REFERENCES negotiations(id) ON DELETE CASCADE,
			UNIQUE(negotiation_id, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create initial schema: %w", err)
	}
	return nil
}

// migrationV2 adds the store-backed proposal quota and the chat/notification
// side-effect tables.
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS proposal_quotas (
			user_id TEXT NOT NULL,
			day TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, day)
		);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			negotiation_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			body TEXT NOT NULL,
			card_type TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (negotiation_id) REFERENCES negotiations(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_chat_messages_negotiation ON chat_messages(negotiation_id);

		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			recipient_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			negotiation_id TEXT NOT NULL,
			payload TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create quota/chat/notification tables: %w", err)
	}
	return nil
}

// migrationV3 turns the open-pair lookup index into a partial unique index,
// so the at-most-one-open invariant holds even against writers that bypass
// FindOrCreate.
func migrationV3(db *sql.DB) error {
	_, err := db.Exec(`
		DROP INDEX IF EXISTS idx_negotiations_open_pair;
		CREATE UNIQUE INDEX idx_negotiations_open_pair
			ON negotiations(initiator_id, subject_ref)
			WHERE status IN ('pending', 'counter_offered');
	`)
	if err != nil {
		return fmt.Errorf("failed to create open-pair unique index: %w", err)
	}
	return nil
}
