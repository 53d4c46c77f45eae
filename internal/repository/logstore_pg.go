package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/loggate/loggate/internal/model"
)

// PostgresLogStore persists redacted log entries under the composite
// (partition_key, sort_key) identity. The primary key on that pair is what
// makes PutIfAbsent an atomic conditional create: concurrent deliveries of
// the same (tenant_id, log_id) race on the constraint and exactly one wins.
type PostgresLogStore struct {
	db *sqlx.DB
}

func NewPostgresLogStore(db *sqlx.DB) *PostgresLogStore {
	store := &PostgresLogStore{db: db}
	_ = store.ensureSchema(context.Background())
	return store
}

// PutIfAbsent writes entry only if no entry exists under its key pair.
// Returns (true, nil) when this call created the entry, (false, nil) when a
// prior entry already existed (the condition-failed signal, left untouched),
// and (false, err) for any other storage failure.
func (s *PostgresLogStore) PutIfAbsent(ctx context.Context, entry *model.StoredLogEntry) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO log_entries (
			partition_key, sort_key, tenant_id, log_id, source,
			original_text, modified_data, ingested_at, processed_at,
			text_length, processing_time_sec
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (partition_key, sort_key) DO NOTHING
	`, entry.PartitionKey, entry.SortKey, entry.TenantID, entry.LogID, entry.Source,
		entry.OriginalText, entry.ModifiedData, entry.IngestedAt, entry.ProcessedAt,
		entry.TextLength, entry.ProcessingTimeSec)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *PostgresLogStore) ensureSchema(ctx context.Context) error {
	// processing_time_sec is NUMERIC, not a float column: the stored value
	// is an exact 2-place decimal and must round-trip without drift.
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS log_entries (
			partition_key TEXT NOT NULL,
			sort_key TEXT NOT NULL,
			tenant_id TEXT NOT NULL,
			log_id TEXT NOT NULL,
			source TEXT,
			original_text TEXT,
			modified_data TEXT,
			ingested_at TEXT,
			processed_at TEXT,
			text_length INTEGER NOT NULL DEFAULT 0,
			processing_time_sec NUMERIC(12,2) NOT NULL DEFAULT 0,
			PRIMARY KEY (partition_key, sort_key)
		)
	`)
	return err
}
