// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	corenegotiation "github.com/example/haggle/internal/core/negotiation"
	"github.com/example/haggle/internal/ports/secondary"
)

// negotiationColumns is the scan list shared by every negotiation query.
const negotiationColumns = `id, kind, subject_ref, subject_title, subject_spec, variant,
	initiator_id, counterparty_id, reference_value, current_offer, final_value,
	quantity, status, expires_at, created_at, updated_at`

// NegotiationRepository implements secondary.NegotiationRepository with
// SQLite. Connections are opened with IMMEDIATE transactions (see
// internal/db), so each BeginTx below takes the write lock up front and
// the read-then-write sections are serialized against concurrent writers.
type NegotiationRepository struct {
	db *sql.DB
}

// NewNegotiationRepository creates a new SQLite negotiation repository.
func NewNegotiationRepository(db *sql.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

// FindOrCreate returns the open negotiation for the draft's (initiator,
// subject) pair, or inserts the draft row together with its opening
// history event. The lookup and the insert run in one transaction; this
// is the mechanism that enforces the at-most-one-open invariant under
// concurrent callers.
func (r *NegotiationRepository) FindOrCreate(ctx context.Context, draft *secondary.NegotiationDraft) (*secondary.NegotiationRecord, bool, error) {
	rec := &draft.Record
	if rec.ID == "" {
		return nil, false, fmt.Errorf("negotiation ID must be pre-populated by service layer")
	}
	if rec.Status == "" {
		return nil, false, fmt.Errorf("negotiation Status must be pre-populated by service layer")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanNegotiation(tx.QueryRowContext(ctx,
		`SELECT `+negotiationColumns+` FROM negotiations
		 WHERE initiator_id = ? AND subject_ref = ? AND status IN ('pending', 'counter_offered')`,
		rec.InitiatorID, rec.SubjectRef,
	))
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to look up open negotiation: %w", err)
	}
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit: %w", err)
		}
		return existing, false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO negotiations (id, kind, subject_ref, subject_title, subject_spec, variant,
			initiator_id, counterparty_id, reference_value, current_offer, quantity, status, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.SubjectRef, rec.SubjectTitle, nullString(rec.SubjectSpec), nullString(rec.Variant),
		rec.InitiatorID, rec.CounterpartyID, nullFloat(rec.ReferenceValue), rec.CurrentOffer,
		rec.Quantity, rec.Status, rec.ExpiresAt.UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create negotiation: %w", err)
	}

	if err := appendEvent(ctx, tx, rec.ID, &draft.Event); err != nil {
		return nil, false, err
	}

	created, err := scanNegotiation(tx.QueryRowContext(ctx,
		`SELECT `+negotiationColumns+` FROM negotiations WHERE id = ?`, rec.ID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read back negotiation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit: %w", err)
	}
	return created, true, nil
}

// GetByID retrieves a negotiation by its ID.
func (r *NegotiationRepository) GetByID(ctx context.Context, id string) (*secondary.NegotiationRecord, error) {
	rec, err := scanNegotiation(r.db.QueryRowContext(ctx,
		`SELECT `+negotiationColumns+` FROM negotiations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("negotiation %s: %w", id, corenegotiation.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	return rec, nil
}

// Transition applies the mutation iff the row's status still equals
// expectedStatus. The optimistic check, the update and the history append
// all happen inside one transaction: a concurrent responder racing to the
// same negotiation loses with ErrConflict instead of overwriting.
func (r *NegotiationRepository) Transition(ctx context.Context, id, expectedStatus string, m secondary.Mutation) (*secondary.NegotiationRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM negotiations WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("negotiation %s: %w", id, corenegotiation.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read negotiation status: %w", err)
	}
	if current != expectedStatus {
		return nil, fmt.Errorf("%w: negotiation %s is %s, expected %s", corenegotiation.ErrConflict, id, current, expectedStatus)
	}

	query := "UPDATE negotiations SET status = ?, updated_at = CURRENT_TIMESTAMP"
	args := []any{m.NewStatus}
	if m.CurrentOffer != nil {
		query += ", current_offer = ?"
		args = append(args, *m.CurrentOffer)
	}
	if m.FinalValue != nil {
		query += ", final_value = ?"
		args = append(args, *m.FinalValue)
	}
	if m.ExpiresAt != nil {
		query += ", expires_at = ?"
		args = append(args, m.ExpiresAt.UTC())
	}
	query += " WHERE id = ? AND status = ?"
	args = append(args, id, expectedStatus)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update negotiation %s: %w", id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("%w: negotiation %s changed underneath the update", corenegotiation.ErrConflict, id)
	}

	if err := appendEvent(ctx, tx, id, &m.Event); err != nil {
		return nil, err
	}

	updated, err := scanNegotiation(tx.QueryRowContext(ctx,
		`SELECT `+negotiationColumns+` FROM negotiations WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to read back negotiation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return updated, nil
}

// SweepExpired force-expires every open negotiation whose deadline has
// passed. One conditional UPDATE: idempotent and safe to run from
// multiple instances simultaneously.
func (r *NegotiationRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE negotiations SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		 WHERE status IN ('pending', 'counter_offered') AND expires_at < ?`,
		now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired negotiations: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept negotiations: %w", err)
	}
	return count, nil
}

// ListFor retrieves negotiations matching the given filters, newest first.
func (r *NegotiationRepository) ListFor(ctx context.Context, filters secondary.NegotiationFilters) ([]*secondary.NegotiationRecord, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiations WHERE 1=1`
	args := []any{}

	if filters.InitiatorID != "" {
		query += " AND initiator_id = ?"
		args = append(args, filters.InitiatorID)
	}
	if filters.CounterpartyID != "" {
		query += " AND counterparty_id = ?"
		args = append(args, filters.CounterpartyID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filters.Kind)
	}

	query += " ORDER BY updated_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	defer rows.Close()

	var records []*secondary.NegotiationRecord
	for rows.Next() {
		rec, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan negotiation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListEvents returns a negotiation's history in append order.
func (r *NegotiationRepository) ListEvents(ctx context.Context, negotiationID string) ([]*secondary.EventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, negotiation_id, seq, actor_id, actor_role, action, payload, created_at
		 FROM negotiation_events WHERE negotiation_id = ? ORDER BY seq ASC`,
		negotiationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*secondary.EventRecord
	for rows.Next() {
		e := &secondary.EventRecord{}
		if err := rows.Scan(&e.ID, &e.NegotiationID, &e.Seq, &e.ActorID, &e.ActorRole, &e.Action, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// appendEvent inserts a history entry with the next sequence number for
// the negotiation. Must run inside the caller's transaction.
func appendEvent(ctx context.Context, tx *sql.Tx, negotiationID string, e *secondary.EventRecord) error {
	if e.ID == "" {
		return fmt.Errorf("event ID must be pre-populated by service layer")
	}
	payload := e.Payload
	if payload == "" {
		payload = "{}"
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO negotiation_events (id, negotiation_id, seq, actor_id, actor_role, action, payload)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM negotiation_events WHERE negotiation_id = ?), ?, ?, ?, ?)`,
		e.ID, negotiationID, negotiationID, e.ActorID, e.ActorRole, e.Action, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to append %s event for negotiation %s: %w", e.Action, negotiationID, err)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNegotiation(row rowScanner) (*secondary.NegotiationRecord, error) {
	var (
		subjectSpec    sql.NullString
		variant        sql.NullString
		referenceValue sql.NullFloat64
		finalValue     sql.NullFloat64
	)

	rec := &secondary.NegotiationRecord{}
	err := row.Scan(
		&rec.ID, &rec.Kind, &rec.SubjectRef, &rec.SubjectTitle, &subjectSpec, &variant,
		&rec.InitiatorID, &rec.CounterpartyID, &referenceValue, &rec.CurrentOffer, &finalValue,
		&rec.Quantity, &rec.Status, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.SubjectSpec = subjectSpec.String
	rec.Variant = variant.String
	if referenceValue.Valid {
		rec.ReferenceValue = &referenceValue.Float64
	}
	if finalValue.Valid {
		rec.FinalValue = &finalValue.Float64
	}
	return rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// Ensure NegotiationRepository implements the interface
var _ secondary.NegotiationRepository = (*NegotiationRepository)(nil)
