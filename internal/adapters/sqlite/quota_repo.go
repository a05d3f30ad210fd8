package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/haggle/internal/ports/secondary"
)

// QuotaRepository implements secondary.QuotaRepository with SQLite.
// The daily proposal limit lives in the store rather than in process
// memory, so every service instance observes the same count and rows
// age out naturally by day key.
type QuotaRepository struct {
	db *sql.DB
}

// NewQuotaRepository creates a new SQLite quota repository.
func NewQuotaRepository(db *sql.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Increment bumps the (userID, day) counter iff it is still below limit.
// The check and the write are one conditional UPSERT, so concurrent
// proposers cannot overshoot the limit.
func (r *QuotaRepository) Increment(ctx context.Context, userID, day string, limit int) (bool, int, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO proposal_quotas (user_id, day, count) VALUES (?, ?, 1)
		 ON CONFLICT(user_id, day) DO UPDATE
		 SET count = count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE proposal_quotas.count < ?`,
		userID, day, limit,
	)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment proposal quota: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check quota increment: %w", err)
	}

	var count int
	err = r.db.QueryRowContext(ctx,
		"SELECT count FROM proposal_quotas WHERE user_id = ? AND day = ?",
		userID, day,
	).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, 0, fmt.Errorf("failed to read proposal quota: %w", err)
	}

	return rowsAffected > 0, count, nil
}

// Ensure QuotaRepository implements the interface
var _ secondary.QuotaRepository = (*QuotaRepository)(nil)
