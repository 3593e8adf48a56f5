package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
)

// Both implementations must behave the same.
func stores(t *testing.T) map[string]HistoryStore {
	t.Helper()
	sqlite, err := NewSQLiteHistoryStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "sub", "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]HistoryStore{
		"sqlite": sqlite,
		"memory": NewMemoryHistoryStore(),
	}
}

func seed(t *testing.T, s HistoryStore) []*Record {
	t.Helper()
	base := time.Now().Add(-48 * time.Hour).Truncate(time.Second).UTC()
	records := []*Record{
		{Kind: KindEvaluate, Input: "1/2 - 1/4 - 1/8", Result: "1/8", CreatedAt: base, RequestID: "r1", Duration: 150 * time.Microsecond},
		{Kind: KindLCD, Input: "1/4, 1/6, 1/8", Result: "24", CreatedAt: base.Add(time.Minute)},
		{Kind: KindDecimal, Input: "0.75", Result: "3/4", CreatedAt: base.Add(2 * time.Minute), Metadata: map[string]interface{}{"places": float64(2)}},
		{Kind: KindEvaluate, Input: "1/2 / 0", ErrorKind: "division_by_zero", CreatedAt: base.Add(3 * time.Minute)},
		{Kind: KindToDecimal, Input: "1/3", ErrorKind: "non_terminating_decimal", CreatedAt: base.Add(4 * time.Minute)},
	}
	for _, rec := range records {
		require.NoError(t, s.Record(context.Background(), rec))
		require.NotEmpty(t, rec.ID)
	}
	return records
}

func TestRecordAndGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			records := seed(t, s)

			got, err := s.Get(context.Background(), records[0].ID)
			require.NoError(t, err)
			assert.Equal(t, KindEvaluate, got.Kind)
			assert.Equal(t, "1/8", got.Result)
			assert.Equal(t, "r1", got.RequestID)
			assert.Equal(t, 150*time.Microsecond, got.Duration)
			assert.True(t, got.CreatedAt.Equal(records[0].CreatedAt))
			assert.False(t, got.Failed())

			withMeta, err := s.Get(context.Background(), records[2].ID)
			require.NoError(t, err)
			assert.Equal(t, float64(2), withMeta.Metadata["places"])

			_, err = s.Get(context.Background(), "missing")
			require.Error(t, err)
			assert.True(t, mdwerror.HasCode(err, mdwerror.CodeNotFound))
		})
	}
}

func TestQuery(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			records := seed(t, s)
			ctx := context.Background()

			all, err := s.Query(ctx, Filter{})
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, records[4].ID, all[0].ID, "newest first")

			evals, err := s.Query(ctx, Filter{Kind: KindEvaluate})
			require.NoError(t, err)
			assert.Len(t, evals, 2)

			failed, err := s.Query(ctx, Filter{FailedOnly: true})
			require.NoError(t, err)
			assert.Len(t, failed, 2)

			window, err := s.Query(ctx, Filter{Since: records[1].CreatedAt, Until: records[3].CreatedAt})
			require.NoError(t, err)
			assert.Len(t, window, 3)

			search, err := s.Query(ctx, Filter{Search: "1/8"})
			require.NoError(t, err)
			assert.Len(t, search, 2)

			byRequest, err := s.Query(ctx, Filter{RequestID: "r1"})
			require.NoError(t, err)
			require.Len(t, byRequest, 1)
			assert.Equal(t, records[0].ID, byRequest[0].ID)

			page, err := s.Query(ctx, Filter{Limit: 2, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, records[3].ID, page[0].ID)
			assert.Equal(t, records[2].ID, page[1].ID)

			none, err := s.Query(ctx, Filter{Search: "%"})
			require.NoError(t, err)
			assert.Empty(t, none, "LIKE wildcards are matched literally")
		})
	}
}

func TestStats(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			records := seed(t, s)

			stats, err := s.Stats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(5), stats.Total)
			assert.Equal(t, int64(2), stats.Failed)
			assert.Equal(t, int64(2), stats.ByKind[KindEvaluate])
			assert.Equal(t, int64(1), stats.ByKind[KindLCD])
			assert.True(t, stats.First.Equal(records[0].CreatedAt))
			assert.True(t, stats.Last.Equal(records[4].CreatedAt))
		})
	}
}

func TestPruneAndTrim(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s)
			ctx := context.Background()

			fresh := &Record{Kind: KindParse, Input: "3/4", Result: "3/4"}
			require.NoError(t, s.Record(ctx, fresh))

			removed, err := s.Prune(ctx, 24*time.Hour)
			require.NoError(t, err)
			assert.Equal(t, int64(5), removed)

			all, err := s.Query(ctx, Filter{})
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, fresh.ID, all[0].ID)

			for i := 0; i < 3; i++ {
				require.NoError(t, s.Record(ctx, &Record{Kind: KindParse, Input: "1", CreatedAt: time.Now().Add(time.Duration(i+1) * time.Second)}))
			}
			removed, err = s.Trim(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			left, err := s.Query(ctx, Filter{})
			require.NoError(t, err)
			assert.Len(t, left, 2)
		})
	}
}

// brokenResult fails every query about the executed statement
type brokenResult struct{}

func (brokenResult) LastInsertId() (int64, error) { return 0, errors.New("no insert id") }
func (brokenResult) RowsAffected() (int64, error) { return 0, errors.New("driver lost the count") }

func TestRowsAffectedIsStorageError(t *testing.T) {
	n, err := rowsAffected("trim", brokenResult{})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeStorageError))
	assert.Contains(t, err.Error(), "storage trim failed")
}

func TestPruneAndTrimOnClosedStore(t *testing.T) {
	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Prune(context.Background(), time.Hour)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeStorageError))
	_, err = s.Trim(context.Background(), 1)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeStorageError))
}

func TestSQLiteInMemory(t *testing.T) {
	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Record(context.Background(), &Record{Kind: KindParse, Input: "1/2", Result: "1/2"}))
	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	require.NoError(t, s.Vacuum(context.Background()))
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	rec := &Record{Kind: KindParse, Input: "2 3/4", Result: "11/4"}
	require.NoError(t, s.Record(context.Background(), rec))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteHistoryStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "11/4", got.Result)
}
