package core

import "strings"

// FilterBills returns the bills matching f, in input order. The result never
// aliases bills, and is empty rather than nil when nothing matches.
func FilterBills(bills []Bill, f BillFilter) []Bill {
	search, hasSearch := f.Search.Value()
	tag, hasTag := f.Tag.Value()

	out := make([]Bill, 0, len(bills))
	for _, b := range bills {
		if hasSearch && !b.Matches(search) {
			continue
		}
		if hasTag && !b.HasTag(tag) {
			continue
		}
		out = append(out, b.Clone())
	}
	return out
}

// Matches reports whether the normalized search text occurs in the title,
// summary or AI interpretation, ignoring case.
func (b Bill) Matches(search string) bool {
	return strings.Contains(lower(b.Title), search) ||
		strings.Contains(lower(b.Summary), search) ||
		strings.Contains(lower(b.AIInterpretation), search)
}

// FindBill returns the bill with the given id or ErrNotFound.
func FindBill(bills []Bill, id int) (Bill, error) {
	for _, b := range bills {
		if b.ID == id {
			return b.Clone(), nil
		}
	}
	return Bill{}, ErrNotFound
}
