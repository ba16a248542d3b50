package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"legisbase/internal/amqp"
	"legisbase/internal/core"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []core.LookupEvent
	err    error
}

func (f *fakeRecorder) RecordLookups(_ context.Context, events []core.LookupEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, events...)
	return nil
}

// fakeConsumer hands its batches to the handler, then blocks until ctx ends.
type fakeConsumer struct {
	batches [][]*amqp.BillLookupMessage
	errs    []error
	fail    error
}

func (f *fakeConsumer) ConsumeLookups(ctx context.Context, _ int, _ time.Duration, handler amqp.BatchHandler) error {
	if f.fail != nil {
		return f.fail
	}
	for _, b := range f.batches {
		f.errs = append(f.errs, handler(ctx, b))
	}
	<-ctx.Done()
	return ctx.Err()
}

func lookupMsg(kind core.LookupKind, ids ...int) *amqp.BillLookupMessage {
	return amqp.NewBillLookupMessage(core.LookupEvent{
		Kind:        kind,
		BillIDs:     ids,
		Found:       len(ids) > 0,
		ResultCount: len(ids),
		At:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestHandleBatchRecordsEvents(t *testing.T) {
	rec := &fakeRecorder{}
	w := NewLookupWorker(rec, nil, 10, time.Second)

	err := w.HandleBatch(context.Background(), []*amqp.BillLookupMessage{
		lookupMsg(core.LookupList, 1, 2),
		lookupMsg(core.LookupGet, 3),
	})
	if err != nil {
		t.Fatalf("HandleBatch: %v", err)
	}
	if len(rec.events) != 2 || rec.events[1].Kind != core.LookupGet || rec.events[1].BillIDs[0] != 3 {
		t.Fatalf("unexpected events %+v", rec.events)
	}
	if w.Stored() != 2 {
		t.Fatalf("Stored() = %d", w.Stored())
	}
}

func TestHandleBatchPropagatesStorageError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("database is locked")}
	w := NewLookupWorker(rec, nil, 10, time.Second)

	err := w.HandleBatch(context.Background(), []*amqp.BillLookupMessage{lookupMsg(core.LookupGet, 1)})
	if err == nil {
		t.Fatal("expected error so the batch is requeued")
	}
	if w.Stored() != 0 {
		t.Fatalf("failed batch must not be counted")
	}
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	rec := &fakeRecorder{}
	consumer := &fakeConsumer{batches: [][]*amqp.BillLookupMessage{
		{lookupMsg(core.LookupList, 1)},
		{lookupMsg(core.LookupGet, 2), lookupMsg(core.LookupGet, 3)},
	}}
	w := NewLookupWorker(rec, consumer, 2, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for w.Stored() < 3 {
		select {
		case <-deadline:
			t.Fatalf("worker stored only %d lookups", w.Stored())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned %v on cancel", err)
	}
}

func TestRunReturnsConsumerError(t *testing.T) {
	w := NewLookupWorker(&fakeRecorder{}, &fakeConsumer{fail: errors.New("start consuming: access refused")}, 1, time.Second)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected consumer error")
	}
}
