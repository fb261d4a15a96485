package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brightforge/agency-leads/internal/entity"
)

const syncEventsSchema = `
	CREATE TABLE IF NOT EXISTS lead_sync_events (
		id           UUID PRIMARY KEY,
		email        TEXT NOT NULL,
		outcome      TEXT NOT NULL,
		contact_id   TEXT,
		error        TEXT,
		product_name TEXT NOT NULL,
		tier         TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS lead_sync_events_created_at_idx ON lead_sync_events (created_at);
`

type SyncEventRepository struct {
	DB *sql.DB
}

var _ entity.SyncEventRepositoryInterface = (*SyncEventRepository)(nil)

func NewSyncEventRepository(db *sql.DB) *SyncEventRepository {
	return &SyncEventRepository{DB: db}
}

func (r *SyncEventRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, syncEventsSchema); err != nil {
		return fmt.Errorf("create lead_sync_events: %w", err)
	}
	return nil
}

func (r *SyncEventRepository) Insert(ctx context.Context, event *entity.SyncEvent) error {
	query := `
		INSERT INTO lead_sync_events (id, email, outcome, contact_id, error, product_name, tier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		event.ID,
		event.Email,
		event.Outcome,
		nullString(event.ContactID),
		nullString(event.Error),
		event.ProductName,
		event.Tier,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sync event: %w", err)
	}
	return nil
}

func (r *SyncEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM lead_sync_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sync events: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
