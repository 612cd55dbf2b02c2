package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS dcf_inputs (
		ticker TEXT PRIMARY KEY,
		name   TEXT NOT NULL DEFAULT '',
		as_of  TEXT NOT NULL DEFAULT '',
		data   JSONB NOT NULL
	)`

// PostgresStore keeps records in the dcf_inputs table. Inputs are stored as
// a JSONB document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database at url and verifies the
// connection.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// EnsureSchema creates the dcf_inputs table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create dcf_inputs table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ticker string) (Record, error) {
	query := `
		SELECT ticker, name, as_of, data
		FROM dcf_inputs
		WHERE upper(ticker) = upper($1)
		LIMIT 1`

	var (
		record Record
		data   []byte
	)
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(ticker)).Scan(&record.Ticker, &record.Name, &record.AsOf, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load %s: %w", ticker, err)
	}
	if err := json.Unmarshal(data, &record.Inputs); err != nil {
		return Record{}, fmt.Errorf("failed to decode stored inputs for %s: %w", ticker, err)
	}
	return record, nil
}

func (s *PostgresStore) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	candidates := []Candidate{}
	if strings.TrimSpace(query) == "" {
		return candidates, nil
	}

	sql := `
		SELECT ticker, name
		FROM dcf_inputs
		WHERE ticker ILIKE $1 ESCAPE '\' OR name ILIKE $1 ESCAPE '\'
		ORDER BY CASE WHEN ticker ILIKE $1 ESCAPE '\' THEN 0 ELSE 1 END, ticker, name
		LIMIT $2`

	rows, err := s.pool.Query(ctx, sql, likePrefix(query), searchLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search tickers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.Ticker, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search tickers: %w", err)
	}
	return candidates, nil
}

func (s *PostgresStore) Put(ctx context.Context, record Record) error {
	record, err := record.Normalize()
	if err != nil {
		return err
	}
	data, err := json.Marshal(record.Inputs)
	if err != nil {
		return fmt.Errorf("failed to encode inputs for %s: %w", record.Ticker, err)
	}

	query := `
		INSERT INTO dcf_inputs (ticker, name, as_of, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker)
		DO UPDATE SET
			name = EXCLUDED.name,
			as_of = EXCLUDED.as_of,
			data = EXCLUDED.data`

	if _, err := s.pool.Exec(ctx, query, record.Ticker, record.Name, record.AsOf, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", record.Ticker, err)
	}
	return nil
}

// likePrefix escapes LIKE wildcards in query and appends a trailing %.
func likePrefix(query string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return escaper.Replace(strings.TrimSpace(query)) + "%"
}
