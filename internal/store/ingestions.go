package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/airbnblite/airbot/internal/model"
)

// GetIngestion returns the manifest entry for source at schemaVersion.
func (s *SQLiteStore) GetIngestion(ctx context.Context, source string, schemaVersion int) (*model.Ingestion, error) {
	var ing model.Ingestion
	err := s.db.GetContext(ctx, &ing,
		`SELECT source, schema_version, chunks, dimension, completed_at FROM document_ingestions
		WHERE source = ? AND schema_version = ?`, source, schemaVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingestion: %w", err)
	}
	return &ing, nil
}

// RecordIngestion writes or replaces the manifest entry for a completed ingestion.
func (s *SQLiteStore) RecordIngestion(ctx context.Context, ing *model.Ingestion) error {
	if ing.CompletedAt.IsZero() {
		ing.CompletedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO document_ingestions
		(source, schema_version, chunks, dimension, completed_at)
		VALUES (:source, :schema_version, :chunks, :dimension, :completed_at)
		ON CONFLICT (source, schema_version) DO UPDATE SET
			chunks = excluded.chunks, dimension = excluded.dimension, completed_at = excluded.completed_at`, ing)
	if err != nil {
		return fmt.Errorf("failed to record ingestion: %w", err)
	}
	return nil
}

// ClearIngestions removes every manifest entry for schemaVersion.
func (s *SQLiteStore) ClearIngestions(ctx context.Context, schemaVersion int) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_ingestions WHERE schema_version = ?`, schemaVersion); err != nil {
		return fmt.Errorf("failed to clear ingestions: %w", err)
	}
	return nil
}
