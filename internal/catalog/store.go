// Package catalog holds the immutable bill store and the query service
// built on top of it.
package catalog

import (
	"fmt"

	"legisbase/internal/core"
)

// Store is a read-only, ordered collection of bills. It is safe for
// concurrent use because nothing mutates it after NewStore returns.
type Store struct {
	bills []core.Bill
	tags  []string
}

// NewStore validates bills and freezes a private copy of them. Stored tags
// are trimmed, lowercased and deduplicated so tag filtering never depends on
// how the source spelled them.
func NewStore(bills []core.Bill) (*Store, error) {
	seen := make(map[int]struct{}, len(bills))
	frozen := make([]core.Bill, 0, len(bills))
	for i, b := range bills {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("bill at position %d (id=%d): %w", i, b.ID, err)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("bill at position %d: %w: %d", i, core.ErrDuplicateID, b.ID)
		}
		seen[b.ID] = struct{}{}

		b = b.Clone()
		b.Tags = normalizeTags(b.Tags)
		frozen = append(frozen, b)
	}
	return &Store{bills: frozen, tags: distinctTags(frozen)}, nil
}

// MustNewStore is like NewStore but panics on invalid input. Intended for
// compiled-in seed data.
func MustNewStore(bills []core.Bill) *Store {
	s, err := NewStore(bills)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of bills.
func (s *Store) Len() int {
	return len(s.bills)
}

// All returns every bill in insertion order.
func (s *Store) All() []core.Bill {
	return core.FilterBills(s.bills, core.BillFilter{})
}

// Tags returns the distinct tags in order of first appearance.
func (s *Store) Tags() []string {
	return append([]string(nil), s.tags...)
}

// ListBills applies f to the store.
func (s *Store) ListBills(f core.BillFilter) []core.Bill {
	return core.FilterBills(s.bills, f)
}

// GetBill returns the bill with id, or core.ErrNotFound.
func (s *Store) GetBill(id int) (core.Bill, error) {
	return core.FindBill(s.bills, id)
}

func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = core.Normalize(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func distinctTags(bills []core.Bill) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, b := range bills {
		for _, t := range b.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
