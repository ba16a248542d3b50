package core

import (
	"errors"
	"testing"
)

func testBills() []Bill {
	return []Bill{
		{
			ID:               1,
			Title:            "Climate Action and Investment Act",
			Summary:          "Comprehensive legislation addressing climate change through clean energy investments and carbon reduction targets.",
			AIInterpretation: "This bill focuses on transitioning to renewable energy sources.",
			Tags:             []string{"environment", "energy", "economy"},
		},
		{
			ID:               2,
			Title:            "Digital Privacy Protection Act",
			Summary:          "Establishes comprehensive data protection requirements for tech companies and enhances user privacy rights.",
			AIInterpretation: "This legislation creates a framework similar to GDPR.",
			Tags:             []string{"privacy", "technology", "consumer protection"},
		},
		{
			ID:               3,
			Title:            "Healthcare Accessibility Enhancement Act",
			Summary:          "Expands healthcare coverage and reduces prescription drug costs through Medicare negotiation powers.",
			AIInterpretation: "The bill allows Medicare to negotiate drug prices directly with pharmaceutical companies.",
			Tags:             []string{"healthcare", "medicare", "prescription drugs"},
		},
	}
}

func ids(bills []Bill) []int {
	out := make([]int, 0, len(bills))
	for _, b := range bills {
		out = append(out, b.ID)
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBillValidate(t *testing.T) {
	cases := []struct {
		b   Bill
		err error
	}{
		{Bill{ID: 1, Title: "ok"}, nil},
		{Bill{ID: 0, Title: "ok"}, ErrInvalidID},
		{Bill{ID: -4, Title: "ok"}, ErrInvalidID},
		{Bill{ID: 2, Title: "   "}, ErrEmptyTitle},
	}
	for i, tc := range cases {
		err := tc.b.Validate()
		if !errors.Is(err, tc.err) {
			t.Fatalf("case %d: got %v, want %v", i, err, tc.err)
		}
	}
}

func TestNewTerm(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		present bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"Privacy", "privacy", true},
		{"  HealthCare \t", "healthcare", true},
		{"Consumer Protection", "consumer protection", true},
	}
	for _, tc := range cases {
		got, ok := NewTerm(tc.raw).Value()
		if ok != tc.present || got != tc.want {
			t.Errorf("NewTerm(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.present)
		}
	}
}

func TestFilterBillsScenario(t *testing.T) {
	bills := testBills()
	cases := []struct {
		name   string
		search string
		tag    string
		want   []int
	}{
		{"no filter", "", "", []int{1, 2, 3}},
		{"search privacy", "privacy", "", []int{2}},
		{"tag energy", "", "energy", []int{1}},
		{"search and tag", "act", "healthcare", []int{3}},
		{"uppercase search", "MEDICARE", "", []int{3}},
		{"uppercase tag", "", "Energy", []int{1}},
		{"multi word tag", "", "consumer protection", []int{2}},
		{"no match", "nonexistent", "", []int{}},
		{"unknown tag", "", "defense", []int{}},
		{"tag is exact, not substring", "", "energ", []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterBills(bills, NewBillFilter(tc.search, tc.tag))
			if got == nil {
				t.Fatalf("FilterBills returned nil, want empty slice")
			}
			if !equalIDs(ids(got), tc.want) {
				t.Fatalf("FilterBills(%q, %q) = %v, want %v", tc.search, tc.tag, ids(got), tc.want)
			}
		})
	}
}

func TestFilterBillsIntersection(t *testing.T) {
	bills := testBills()
	searches := []string{"", "act", "energy", "data", "the", "zzz"}
	tags := []string{"", "energy", "privacy", "healthcare", "missing"}
	for _, s := range searches {
		for _, tg := range tags {
			both := ids(FilterBills(bills, NewBillFilter(s, tg)))
			bySearch := ids(FilterBills(bills, NewBillFilter(s, "")))
			byTag := map[int]bool{}
			for _, id := range ids(FilterBills(bills, NewBillFilter("", tg))) {
				byTag[id] = true
			}
			want := []int{}
			for _, id := range bySearch {
				if byTag[id] {
					want = append(want, id)
				}
			}
			if !equalIDs(both, want) {
				t.Errorf("search=%q tag=%q: got %v, want intersection %v", s, tg, both, want)
			}
		}
	}
}

func TestFilterBillsIdempotent(t *testing.T) {
	f := NewBillFilter("act", "")
	once := FilterBills(testBills(), f)
	twice := FilterBills(once, f)
	if !equalIDs(ids(once), ids(twice)) {
		t.Fatalf("filter not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestFilterBillsDoesNotAlias(t *testing.T) {
	bills := testBills()
	got := FilterBills(bills, BillFilter{})
	got[0].Title = "changed"
	got[0].Tags[0] = "changed"
	if bills[0].Title == "changed" || bills[0].Tags[0] == "changed" {
		t.Fatalf("result aliases the input slice")
	}
}

func TestFindBill(t *testing.T) {
	bills := testBills()
	for _, b := range bills {
		got, err := FindBill(bills, b.ID)
		if err != nil || got.ID != b.ID {
			t.Fatalf("FindBill(%d) = %d, %v", b.ID, got.ID, err)
		}
	}
	for _, id := range []int{0, -1, 4, 99} {
		if _, err := FindBill(bills, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("FindBill(%d) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestBillFilterKey(t *testing.T) {
	a := NewBillFilter(" Act ", "HEALTHCARE")
	b := NewBillFilter("act", "healthcare")
	if a.Key() != b.Key() {
		t.Fatalf("keys differ for equivalent filters: %q vs %q", a.Key(), b.Key())
	}
	if !(BillFilter{}).IsZero() || a.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}

func TestBillFilterKeyIsUnambiguous(t *testing.T) {
	a := NewBillFilter("x&tag=y", "")
	b := NewBillFilter("x", "y&tag=")
	if a.Key() == b.Key() {
		t.Fatalf("distinct filters share key %q", a.Key())
	}
}

func TestCloneKeepsEmptyTags(t *testing.T) {
	got := Bill{ID: 7, Title: "Untagged Act", Tags: []string{}}.Clone()
	if got.Tags == nil {
		t.Fatalf("Clone turned empty tags into nil")
	}
	if got := (Bill{ID: 8, Title: "Nil Tags"}).Clone(); got.Tags != nil {
		t.Fatalf("Clone invented tags: %v", got.Tags)
	}
}
