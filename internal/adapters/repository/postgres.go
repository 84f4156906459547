package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/scalesync/internal/domain/model"
)

// PostgresStore persists records in Postgres through a pgx pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	owned bool
	settings
}

// OpenPostgres connects to dsn and ensures the schema. The pool is closed by Close.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: %w", ErrMissingDSN)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewPostgresStore(pool, opts...)
	s.owned = true
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an existing pool. The caller keeps ownership of pool.
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	return &PostgresStore{pool: pool, settings: defaultSettings(opts)}
}

// Migrate creates the records table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL("DATE", "DOUBLE PRECISION", "TIMESTAMPTZ")); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}
	return nil
}

// FindByDate returns the record for the calendar date of t, or nil when absent.
func (s *PostgresStore) FindByDate(ctx context.Context, t time.Time) (*model.StoredRecord, error) {
	query := "SELECT " + selectColumns() + " FROM records WHERE date = $1"
	rec, err := s.scan(s.pool.QueryRow(ctx, query, model.Day(t)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return &rec, nil
}

// Create inserts rec.
func (s *PostgresStore) Create(ctx context.Context, rec model.Record) (model.StoredRecord, error) {
	rec.Date = model.Day(rec.Date)
	now := s.now()
	stored := model.StoredRecord{Record: rec, ID: s.newID(), CreatedAt: now, UpdatedAt: now}

	args := []any{stored.ID, rec.Date}
	args = append(args, measurementArgs(rec)...)
	args = append(args, now, now)
	if _, err := s.pool.Exec(ctx, insertSQL(dollar), args...); err != nil {
		return model.StoredRecord{}, fmt.Errorf("insert record: %w", err)
	}
	return stored, nil
}

// Update overwrites the record with id and returns the stored row.
func (s *PostgresStore) Update(ctx context.Context, id string, rec model.Record) (model.StoredRecord, error) {
	rec.Date = model.Day(rec.Date)

	args := []any{rec.Date}
	args = append(args, measurementArgs(rec)...)
	args = append(args, s.now(), id)
	query := updateSQL(dollar) + " RETURNING " + selectColumns()
	stored, err := s.scan(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StoredRecord{}, ErrNotFound
	}
	if err != nil {
		return model.StoredRecord{}, fmt.Errorf("update record: %w", err)
	}
	return stored, nil
}

// List returns records within [from, to] ordered by date.
func (s *PostgresStore) List(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		args = append(args, model.Day(from))
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, model.Day(to))
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := "SELECT " + selectColumns() + " FROM records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []model.StoredRecord
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close closes the pool when the store opened it.
func (s *PostgresStore) Close() error {
	if s.owned {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) scan(row pgx.Row) (model.StoredRecord, error) {
	var rec model.StoredRecord
	vals := make([]float64, len(measurementColumns))
	dest := []any{&rec.ID, &rec.Date}
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return model.StoredRecord{}, err
	}
	rec.Date = model.Day(rec.Date)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	applyMeasurements(&rec.Record, vals)
	return rec, nil
}
