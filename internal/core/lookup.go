package core

import "time"

const (
	LookupList LookupKind = "list"
	LookupGet  LookupKind = "get"
)

type (
	LookupKind string

	// LookupEvent describes one answered query. It is informational only and
	// never feeds back into the bill store.
	LookupEvent struct {
		Kind        LookupKind
		BillIDs     []int
		Search      string
		Tag         string
		Found       bool
		ResultCount int
		RequestID   string
		At          time.Time
	}
)

func (k LookupKind) IsValid() bool {
	return k == LookupList || k == LookupGet
}
