package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legisbase/internal/core"
	"legisbase/internal/source/memory"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "legisbase.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestMigrationsApplied(t *testing.T) {
	repo := newTestRepo(t)

	v, dirty, err := SchemaVersion(repo.path)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), v)

	// Running again is a no-op.
	require.NoError(t, RunMigrations(repo.path))
	require.NoError(t, repo.Ping(context.Background()))
}

func TestEmptyDatabaseLoadsNoBills(t *testing.T) {
	repo := newTestRepo(t)

	bills, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bills)
	assert.Contains(t, repo.Name(), "sqlite:")
}

func TestImportAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := memory.DefaultBills()
	// Reverse order on input; Load orders by id.
	input := []core.Bill{want[2], want[0], want[1]}

	n, err := repo.ImportBills(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("bills mismatch (-want +got):\n%s", diff)
	}
}

func TestImportReplacesExistingBills(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ImportBills(ctx, memory.DefaultBills())
	require.NoError(t, err)

	_, err = repo.ImportBills(ctx, []core.Bill{{ID: 9, Title: "Only Bill", Tags: []string{}}})
	require.NoError(t, err)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].ID)
	assert.Equal(t, []string{}, got[0].Tags)
}

func TestImportRejectsInvalidBillsAtomically(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.ImportBills(ctx, memory.DefaultBills())
	require.NoError(t, err)

	_, err = repo.ImportBills(ctx, []core.Bill{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}})
	assert.ErrorIs(t, err, core.ErrDuplicateID)

	_, err = repo.ImportBills(ctx, []core.Bill{{ID: 5, Title: ""}})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3, "failed import must leave existing bills untouched")
}

func TestRecordLookupsAndStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, err := repo.ImportBills(ctx, memory.DefaultBills())
	require.NoError(t, err)

	t0 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	events := []core.LookupEvent{
		{Kind: core.LookupList, BillIDs: []int{1, 2, 3}, Found: true, ResultCount: 3, At: t0},
		{Kind: core.LookupList, BillIDs: []int{3}, Search: "act", Tag: "healthcare", Found: true, ResultCount: 1, At: t0.Add(time.Minute)},
		{Kind: core.LookupGet, BillIDs: []int{3}, Found: true, ResultCount: 1, RequestID: "req_a", At: t0.Add(2 * time.Minute)},
		{Kind: core.LookupGet, BillIDs: []int{999}, Found: false, At: t0.Add(3 * time.Minute)},
		{Kind: core.LookupList, BillIDs: []int{}, Search: "nonexistent", Found: false, At: t0.Add(4 * time.Minute)},
	}
	require.NoError(t, repo.RecordLookups(ctx, events))

	stats, err := repo.LookupStats(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stats, 4)

	assert.Equal(t, 3, stats[0].BillID)
	assert.Equal(t, "Healthcare Accessibility Enhancement Act", stats[0].Title)
	assert.Equal(t, int64(2), stats[0].Listed)
	assert.Equal(t, int64(1), stats[0].Fetched)
	assert.True(t, stats[0].LastSeen.Equal(t0.Add(2*time.Minute)))

	missing := stats[len(stats)-1]
	assert.Equal(t, 999, missing.BillID)
	assert.Equal(t, "", missing.Title)
	assert.Equal(t, int64(1), missing.Misses)

	top, err := repo.LookupStats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, LookupTotals{Total: 5, Lists: 3, Gets: 2, Empty: 2}, totals)
}

func TestRecordLookupsRejectsUnknownKind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.RecordLookups(ctx, []core.LookupEvent{
		{Kind: core.LookupList, BillIDs: []int{1}, Found: true, ResultCount: 1},
		{Kind: "delete"},
	})
	require.Error(t, err)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Total, "batch must be all-or-nothing")

	require.NoError(t, repo.RecordLookups(ctx, nil))
}
