package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/okian/scalesync/internal/domain/model"
)

func day(d int) time.Time {
	return time.Date(2025, time.April, d, 0, 0, 0, 0, time.UTC)
}

func sample(d int, weight float64) model.Record {
	return model.Record{
		Date:        day(d),
		Weight:      weight,
		BMI:         25.1,
		BodyFatPct:  22,
		ProteinPct:  18.2,
		BoneMassLb:  8,
		BoneMassPct: 8 / weight * 100,
		MuscleMass:  140,
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rec-%03d", n)
	}
}

// runStoreContract exercises behavior every Store must share.
func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("find on empty store returns nil", func(t *testing.T) {
		s := open(t)
		rec, err := s.FindByDate(ctx, day(1))
		require.NoError(t, err)
		require.Nil(t, rec)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("create then find by any time on that date", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(ctx, sample(5, 200))
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.False(t, created.CreatedAt.IsZero())

		found, err := s.FindByDate(ctx, day(5).Add(15*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, created.ID, found.ID)
		require.Equal(t, "2025-04-05", found.Key())
		require.InDelta(t, 200, found.Weight, 1e-9)
		require.InDelta(t, 18.2, found.ProteinPct, 1e-9)
		require.InDelta(t, 4.0, found.BoneMassPct, 1e-9)
		require.True(t, model.EqualWithin(found.Record, sample(5, 200), 0.0001))
	})

	t.Run("update keeps id and creation time", func(t *testing.T) {
		s := open(t)
		created, err := s.Create(ctx, sample(5, 200))
		require.NoError(t, err)

		updated, err := s.Update(ctx, created.ID, sample(5, 198.5))
		require.NoError(t, err)
		require.Equal(t, created.ID, updated.ID)
		require.InDelta(t, 198.5, updated.Weight, 1e-9)
		require.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		require.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		found, err := s.FindByDate(ctx, day(5))
		require.NoError(t, err)
		require.InDelta(t, 198.5, found.Weight, 1e-9)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("update of unknown id fails with ErrNotFound", func(t *testing.T) {
		s := open(t)
		_, err := s.Update(ctx, "missing", sample(5, 200))
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list filters by inclusive range in date order", func(t *testing.T) {
		s := open(t)
		for _, d := range []int{9, 2, 5, 7} {
			_, err := s.Create(ctx, sample(d, float64(190+d)))
			require.NoError(t, err)
		}

		all, err := s.List(ctx, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		require.Equal(t, "2025-04-02", all[0].Key())
		require.Equal(t, "2025-04-09", all[3].Key())

		some, err := s.List(ctx, day(5), day(7))
		require.NoError(t, err)
		require.Len(t, some, 2)
		require.Equal(t, "2025-04-05", some[0].Key())
		require.Equal(t, "2025-04-07", some[1].Key())

		tail, err := s.List(ctx, day(6), time.Time{})
		require.NoError(t, err)
		require.Len(t, tail, 2)

		_, err = s.List(ctx, day(7), day(5))
		require.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore(WithClock(fixedClock()), WithIDGenerator(sequentialIDs()))
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		s := NewMemoryStore()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.FindByDate(ctx, day(1))
		require.True(t, errors.Is(err, context.Canceled))
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := OpenSQLite(context.Background(), ":memory:",
			WithClock(fixedClock()), WithIDGenerator(sequentialIDs()))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})

	t.Run("schema survives reopen of a file database", func(t *testing.T) {
		ctx := context.Background()
		path := t.TempDir() + "/records.db"

		s, err := OpenSQLite(ctx, path)
		require.NoError(t, err)
		_, err = s.Create(ctx, sample(3, 200))
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = OpenSQLite(ctx, path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		n, err := s.Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("corrupted timestamp is reported", func(t *testing.T) {
		ctx := context.Background()
		s, err := OpenSQLite(ctx, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		_, err = s.Create(ctx, sample(4, 200))
		require.NoError(t, err)
		_, err = s.db.ExecContext(ctx, "UPDATE records SET created_at = 'not a time'")
		require.NoError(t, err)

		_, err = s.FindByDate(ctx, day(4))
		require.ErrorContains(t, err, "created_at")

		_, err = s.List(ctx, time.Time{}, time.Time{})
		require.Error(t, err)
	})

	t.Run("empty path is rejected", func(t *testing.T) {
		_, err := OpenSQLite(context.Background(), " ")
		require.ErrorIs(t, err, ErrMissingDSN)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverMemory, "")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "mongo", "")
	require.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, DriverPostgres, "")
	require.ErrorIs(t, err, ErrMissingDSN)
}

func TestStatementBuilders(t *testing.T) {
	require.Equal(t,
		"UPDATE records SET date = $1, weight = $2",
		updateSQL(dollar)[:len("UPDATE records SET date = $1, weight = $2")])
	require.Contains(t, updateSQL(dollar), "updated_at = $16 WHERE id = $17")
	require.Contains(t, insertSQL(questionMark), "VALUES (?, ?,")
	require.Contains(t, createTableSQL("DATE", "DOUBLE PRECISION", "TIMESTAMPTZ"), "date DATE NOT NULL UNIQUE")
}
