package codebook

import (
	"context"
	"fmt"

	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq"
)

// Store loads codebook rows into Postgres.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Connect opens and pings a Postgres database.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

// EnsureSchema creates the codes table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", TableName, err)
	}
	return nil
}

// Load inserts codes in a single transaction. With replace set the table is
// emptied first.
func (s *Store) Load(ctx context.Context, codes []nlk.LabCode, replace bool) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+TableName); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", TableName, err)
		}
	}

	for i, code := range codes {
		if _, err := tx.NamedExecContext(ctx, insertSQL, code); err != nil {
			return 0, fmt.Errorf("failed to insert code %s (row %d): %w", code.Code, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info().Int("records", len(codes)).Str("table", TableName).Msg("Loaded codes into database")
	return len(codes), nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+TableName); err != nil {
		return 0, fmt.Errorf("failed to count codes: %w", err)
	}
	return n, nil
}
