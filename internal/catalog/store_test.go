package catalog

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legisbase/internal/core"
	"legisbase/internal/source/memory"
)

func billIDs(bills []core.Bill) []int {
	out := make([]int, len(bills))
	for i, b := range bills {
		out[i] = b.ID
	}
	return out
}

func TestStoreListBillsScenarios(t *testing.T) {
	store := MustNewStore(memory.DefaultBills())

	tests := []struct {
		name   string
		search string
		tag    string
		want   []int
	}{
		{name: "no filters", want: []int{1, 2, 3}},
		{name: "search privacy", search: "privacy", want: []int{2}},
		{name: "tag energy", tag: "energy", want: []int{1}},
		{name: "search act tag healthcare", search: "act", tag: "healthcare", want: []int{3}},
		{name: "no match", search: "nonexistent", want: []int{}},
		{name: "mixed case search", search: "MEDICARE", want: []int{3}},
		{name: "mixed case tag", tag: "Privacy", want: []int{2}},
		{name: "tag with space", tag: "consumer protection", want: []int{2}},
		{name: "partial tag does not match", tag: "health", want: []int{}},
		{name: "blank values are absent", search: "   ", tag: "", want: []int{1, 2, 3}},
		{name: "search hits ai interpretation only", search: "telehealth", want: []int{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.ListBills(core.NewBillFilter(tt.search, tt.tag))
			require.NotNil(t, got)
			if diff := cmp.Diff(tt.want, billIDs(got)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreListBillsGolden(t *testing.T) {
	store := MustNewStore(memory.DefaultBills())

	data, err := json.MarshalIndent(store.ListBills(core.NewBillFilter("privacy", "")), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "list_search_privacy", append(data, '\n'))
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	_, err := NewStore([]core.Bill{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDuplicateID))

	_, err = NewStore([]core.Bill{{ID: 0, Title: "A"}})
	assert.ErrorIs(t, err, core.ErrInvalidID)

	_, err = NewStore([]core.Bill{{ID: 4, Title: "  "}})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)

	assert.Panics(t, func() { MustNewStore([]core.Bill{{ID: -1, Title: "x"}}) })
}

func TestStoreNormalizesTags(t *testing.T) {
	store, err := NewStore([]core.Bill{
		{ID: 1, Title: "One", Tags: []string{" Energy", "energy", "", "Climate "}},
		{ID: 2, Title: "Two", Tags: []string{"CLIMATE", "Water"}},
	})
	require.NoError(t, err)

	bill, err := store.GetBill(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"energy", "climate"}, bill.Tags)
	assert.Equal(t, []string{"energy", "climate", "water"}, store.Tags())
	assert.Equal(t, []int{1, 2}, billIDs(store.ListBills(core.NewBillFilter("", "Climate"))))
}

func TestStoreUntaggedBillEncodesEmptyTags(t *testing.T) {
	store, err := NewStore([]core.Bill{
		{ID: 7, Title: "Untagged Act"},
		{ID: 8, Title: "Blank Tags Act", Tags: []string{" ", ""}},
	})
	require.NoError(t, err)

	for _, id := range []int{7, 8} {
		bill, err := store.GetBill(id)
		require.NoError(t, err)
		body, err := json.Marshal(bill)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"tags":[]`, "bill %d", id)
	}

	body, err := json.Marshal(store.ListBills(core.BillFilter{}))
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"tags":null`)
	assert.Empty(t, store.Tags())
}

func TestStoreDoesNotAliasInput(t *testing.T) {
	input := memory.DefaultBills()
	store := MustNewStore(input)

	input[0].Title = "changed"
	input[0].Tags[0] = "changed"

	got, err := store.GetBill(1)
	require.NoError(t, err)
	assert.Equal(t, "Climate Action and Investment Act", got.Title)
	assert.Equal(t, "environment", got.Tags[0])

	got.Tags[0] = "mutated"
	again, _ := store.GetBill(1)
	assert.Equal(t, "environment", again.Tags[0])

	all := store.All()
	all[1].Tags[0] = "mutated"
	assert.Equal(t, "privacy", store.All()[1].Tags[0])

	tags := store.Tags()
	tags[0] = "mutated"
	assert.Equal(t, "environment", store.Tags()[0])
}

func TestStoreGetBill(t *testing.T) {
	store := MustNewStore(memory.DefaultBills())

	got, err := store.GetBill(2)
	require.NoError(t, err)
	assert.Equal(t, "S-2024-042", got.BillNumber)

	_, err = store.GetBill(999)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 3, store.Len())
}

func TestStoreConcurrentReads(t *testing.T) {
	store := MustNewStore(memory.DefaultBills())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				assert.Len(t, store.ListBills(core.NewBillFilter("act", "")), 3)
			case 1:
				_, err := store.GetBill(3)
				assert.NoError(t, err)
			default:
				assert.Len(t, store.Tags(), 9)
			}
		}(i)
	}
	wg.Wait()
}

func TestEmptyStore(t *testing.T) {
	store, err := NewStore(nil)
	require.NoError(t, err)
	assert.Equal(t, []core.Bill{}, store.ListBills(core.BillFilter{}))
	assert.Empty(t, store.Tags())
	_, err = store.GetBill(1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
