package catalog

import (
	"context"
	"errors"
	"time"

	"legisbase/internal/core"
	applog "legisbase/internal/log"
	"legisbase/internal/middleware/trace"
)

// LookupPublisher receives a LookupEvent after each answered query.
type LookupPublisher interface {
	PublishLookup(ctx context.Context, ev core.LookupEvent) error
}

// Service answers bill queries against a Store.
type Service struct {
	store     *Store
	publisher LookupPublisher
	now       func() time.Time
}

// NewService creates a query service. publisher may be nil.
func NewService(store *Store, publisher LookupPublisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Store returns the underlying store.
func (s *Service) Store() *Store {
	return s.store
}

// ListBills returns the bills matching f in store order.
func (s *Service) ListBills(ctx context.Context, f core.BillFilter) ([]core.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bills := s.store.ListBills(f)

	ids := make([]int, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	s.RecordList(ctx, f, ids)
	return bills, nil
}

// RecordList publishes a list lookup for a result computed earlier, such as
// one served from a response cache in front of the service.
func (s *Service) RecordList(ctx context.Context, f core.BillFilter, ids []int) {
	s.record(ctx, core.LookupEvent{
		Kind:        core.LookupList,
		BillIDs:     append([]int(nil), ids...),
		Search:      f.Search.String(),
		Tag:         f.Tag.String(),
		Found:       len(ids) > 0,
		ResultCount: len(ids),
	})
}

// GetBill returns the bill with id. A missing bill yields core.ErrNotFound.
func (s *Service) GetBill(ctx context.Context, id int) (core.Bill, error) {
	if err := ctx.Err(); err != nil {
		return core.Bill{}, err
	}
	bill, err := s.store.GetBill(id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.Bill{}, err
	}

	ev := core.LookupEvent{Kind: core.LookupGet, BillIDs: []int{id}, Found: err == nil}
	if err == nil {
		ev.ResultCount = 1
	}
	s.record(ctx, ev)
	return bill, err
}

// Tags returns the distinct tags of the store.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Tags(), nil
}

func (s *Service) record(ctx context.Context, ev core.LookupEvent) {
	if s.publisher == nil {
		return
	}
	ev.RequestID = trace.GetRequestID(ctx)
	ev.At = s.now()
	if err := s.publisher.PublishLookup(ctx, ev); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Failed to publish lookup event",
			applog.NewFields().
				WithComponent(applog.ComponentCatalog).
				WithOperation(applog.OpRecord).
				WithResultCount(ev.ResultCount).
				WithError(err).
				ToSlice()...)
	}
}
