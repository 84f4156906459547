package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/scalesync/internal/domain/model"
)

// SQLiteStore persists records in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
	settings
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: %w", ErrMissingDSN)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: SQLite serializes writers anyway and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &SQLiteStore{db: db, settings: defaultSettings(opts)}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL("TEXT", "REAL", "TEXT")); err != nil {
		return fmt.Errorf("apply sqlite schema: %w", err)
	}
	return nil
}

// FindByDate returns the record for the calendar date of t, or nil when absent.
func (s *SQLiteStore) FindByDate(ctx context.Context, t time.Time) (*model.StoredRecord, error) {
	query := "SELECT " + selectColumns() + " FROM records WHERE date = ?"
	rec, err := s.scan(s.db.QueryRowContext(ctx, query, model.DateKey(model.Day(t))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return &rec, nil
}

// Create inserts rec.
func (s *SQLiteStore) Create(ctx context.Context, rec model.Record) (model.StoredRecord, error) {
	rec.Date = model.Day(rec.Date)
	now := s.now()
	stored := model.StoredRecord{Record: rec, ID: s.newID(), CreatedAt: now, UpdatedAt: now}

	args := []any{stored.ID, rec.Key()}
	args = append(args, measurementArgs(rec)...)
	args = append(args, formatTime(now), formatTime(now))
	if _, err := s.db.ExecContext(ctx, insertSQL(questionMark), args...); err != nil {
		return model.StoredRecord{}, fmt.Errorf("insert record: %w", err)
	}
	return stored, nil
}

// Update overwrites the record with id.
func (s *SQLiteStore) Update(ctx context.Context, id string, rec model.Record) (model.StoredRecord, error) {
	rec.Date = model.Day(rec.Date)
	now := s.now()

	args := []any{rec.Key()}
	args = append(args, measurementArgs(rec)...)
	args = append(args, formatTime(now), id)
	res, err := s.db.ExecContext(ctx, updateSQL(questionMark), args...)
	if err != nil {
		return model.StoredRecord{}, fmt.Errorf("update record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.StoredRecord{}, ErrNotFound
	}

	query := "SELECT " + selectColumns() + " FROM records WHERE id = ?"
	stored, err := s.scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return model.StoredRecord{}, fmt.Errorf("reload record: %w", err)
	}
	return stored, nil
}

// List returns records within [from, to] ordered by date.
func (s *SQLiteStore) List(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, model.DateKey(model.Day(from)))
	}
	if !to.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, model.DateKey(model.Day(to)))
	}
	query := "SELECT " + selectColumns() + " FROM records"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date"

	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scan(row rowScanner) (model.StoredRecord, error) {
	var rec model.StoredRecord
	var date, created, updated string
	vals := make([]float64, len(measurementColumns))
	dest := []any{&rec.ID, &date}
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	dest = append(dest, &created, &updated)
	if err := row.Scan(dest...); err != nil {
		return model.StoredRecord{}, err
	}

	d, err := model.ParseDateKey(date)
	if err != nil {
		return model.StoredRecord{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	rec.Date = d
	applyMeasurements(&rec.Record, vals)
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return model.StoredRecord{}, fmt.Errorf("parse stored created_at %q: %w", created, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return model.StoredRecord{}, fmt.Errorf("parse stored updated_at %q: %w", updated, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
