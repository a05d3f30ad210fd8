package db

// SchemaSQL is the complete modern schema for fresh haggle installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(): if repository code references a column
// that doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Catalog items (negotiation subjects for the price kind)
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

-- Negotiations (one row per conversation; terminal rows are retained
-- as an audit log, never deleted)
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

-- Backstop for the at-most-one-open invariant: even if application code
-- bypassed FindOrCreate, a second open row for the pair cannot exist.
CREATE UNIQUE INDEX IF NOT EXISTS idx_negotiations_open_pair
	ON negotiations(initiator_id, subject_ref)
	WHERE status IN ('pending', 'counter_offered');

CREATE INDEX IF NOT EXISTS idx_negotiations_initiator ON negotiations(initiator_id, status);
CREATE INDEX IF NOT EXISTS idx_negotiations_counterparty ON negotiations(counterparty_id, status);
CREATE INDEX IF NOT EXISTS idx_negotiations_expiry ON negotiations(status, expires_at);

-- Negotiation events (append-only history, one payload shape per action)
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

-- Proposal quotas (store-backed daily rate limit, shared by all instances)
CREATE TABLE IF NOT EXISTS proposal_quotas (
	user_id TEXT NOT NULL,
	day TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, day)
);

-- Chat messages (custom-order negotiations rendered as cards)
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

-- Notifications (best-effort outbox, written after committed transitions)
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	recipient_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	negotiation_id TEXT NOT NULL,
	payload TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Completely fresh install - create the modern schema directly and
		// mark all migrations as applied so they never run.
		if _, err = db.Exec(SchemaSQL); err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
