package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the fixed-width lines of every dataset in a single
// ledger_lines table, one row per line
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on an open pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger_lines table if it is missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ledger_lines (
			dataset  TEXT    NOT NULL,
			position INTEGER NOT NULL,
			line     TEXT    NOT NULL,
			PRIMARY KEY (dataset, position)
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create ledger_lines table: %w", err)
	}
	return nil
}

// Open reads every line of the dataset in stored order
func (s *PostgresStore) Open(ctx context.Context, dataset Dataset) (io.ReadCloser, error) {
	query := `
		SELECT line
		FROM ledger_lines
		WHERE dataset = $1
		ORDER BY position
	`

	rows, err := s.db.Query(ctx, query, string(dataset))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dataset, err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan %s line: %w", dataset, err)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dataset, err)
	}

	return io.NopCloser(&buf), nil
}

// Replace swaps the stored lines of the dataset within one database transaction
func (s *PostgresStore) Replace(ctx context.Context, dataset Dataset, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	lines := splitLines(buf.String())

	dbTx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	if _, err := dbTx.Exec(ctx, `DELETE FROM ledger_lines WHERE dataset = $1`, string(dataset)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dataset, err)
	}

	rows := make([][]any, len(lines))
	for i, line := range lines {
		rows[i] = []any{string(dataset), i, line}
	}
	_, err = dbTx.CopyFrom(ctx,
		pgx.Identifier{"ledger_lines"},
		[]string{"dataset", "position", "line"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", dataset, err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", dataset, err)
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
