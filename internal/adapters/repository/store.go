// Package repository holds the record stores: in-memory, SQLite and Postgres.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scalesync/internal/domain/model"
	"github.com/okian/scalesync/internal/domain/reconcile"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store provides read/write access to the record series, one record per calendar date.
type Store interface {
	reconcile.Store

	// List returns records with from <= date <= to ordered by date.
	// A zero from or to leaves that side unbounded.
	List(ctx context.Context, from, to time.Time) ([]model.StoredRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open creates the store for driver. dsn is a file path for sqlite and a connection
// string for postgres; it is ignored for memory.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn, opts...)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// validRange rejects a range whose bounds are inverted.
func validRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("%w: %s after %s", ErrInvalidRange, model.DateKey(from), model.DateKey(to))
	}
	return nil
}
