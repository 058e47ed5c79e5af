// Package store persists users, properties, bookings, insurance plans and the
// policy ingestion manifest in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("no fields to update")
)

// migrations are applied in order; the index plus one is the schema version.
var migrations = []string{
	`CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT    NOT NULL,
		email         TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		avatar        TEXT    NOT NULL DEFAULT '',
		is_host       BOOLEAN NOT NULL DEFAULT 0
	);
	CREATE TABLE properties (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		host_id         INTEGER NOT NULL,
		title           TEXT    NOT NULL,
		location        TEXT    NOT NULL,
		price_per_night REAL    NOT NULL DEFAULT 0,
		rating          REAL    NOT NULL DEFAULT 0,
		thumbnail       TEXT    NOT NULL DEFAULT '',
		images          TEXT    NOT NULL DEFAULT '[]',
		description     TEXT    NOT NULL DEFAULT '',
		amenities       TEXT    NOT NULL DEFAULT '[]',
		property_info   TEXT    NOT NULL DEFAULT '',
		data_ai_hint    TEXT    NOT NULL DEFAULT ''
	);
	CREATE TABLE bookings (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id             INTEGER NOT NULL,
		property_id         INTEGER NOT NULL,
		check_in            TEXT    NOT NULL,
		check_out           TEXT    NOT NULL,
		total_cost          REAL    NOT NULL DEFAULT 0,
		reservation_cost    REAL    NOT NULL DEFAULT 0,
		service_fee         REAL    NOT NULL DEFAULT 0,
		insurance_cost      REAL    NOT NULL DEFAULT 0,
		guests              INTEGER NOT NULL,
		status              TEXT    NOT NULL,
		insurance_plan_id   TEXT,
		cancellation_reason TEXT
	);
	CREATE INDEX idx_bookings_user ON bookings(user_id);
	CREATE TABLE insurance_plans (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		price_percent  REAL NOT NULL DEFAULT 0,
		min_trip_value REAL NOT NULL DEFAULT 0,
		max_trip_value REAL NOT NULL DEFAULT 0,
		benefits       TEXT NOT NULL DEFAULT '[]',
		terms_url      TEXT NOT NULL DEFAULT ''
	);`,

	`CREATE TABLE document_ingestions (
		source         TEXT      NOT NULL,
		schema_version INTEGER   NOT NULL,
		chunks         INTEGER   NOT NULL,
		dimension      INTEGER   NOT NULL,
		completed_at   TIMESTAMP NOT NULL,
		PRIMARY KEY (source, schema_version)
	);`,
}

// SQLiteStore is the relational store backed by sqlx and go-sqlite3.
type SQLiteStore struct {
	db       *sqlx.DB
	hashCost int
}

// New opens the database at dsn and applies pending migrations.
func New(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, hashCost: bcrypt.DefaultCost}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	return v, err
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func requireAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
