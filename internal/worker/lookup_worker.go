package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"legisbase/internal/amqp"
	"legisbase/internal/core"
)

// LookupRecorder persists lookup events.
type LookupRecorder interface {
	RecordLookups(ctx context.Context, events []core.LookupEvent) error
}

// LookupConsumer delivers lookup messages in batches.
type LookupConsumer interface {
	ConsumeLookups(ctx context.Context, batchSize int, flushInterval time.Duration, handler amqp.BatchHandler) error
}

// LookupWorker moves bill lookup messages from the queue into storage.
type LookupWorker struct {
	recorder      LookupRecorder
	consumer      LookupConsumer
	batchSize     int
	flushInterval time.Duration

	stored  atomic.Int64
	batches atomic.Int64
}

func NewLookupWorker(recorder LookupRecorder, consumer LookupConsumer, batchSize int, flushInterval time.Duration) *LookupWorker {
	return &LookupWorker{
		recorder:      recorder,
		consumer:      consumer,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Run consumes until ctx is cancelled. A cancelled context is a clean stop.
func (w *LookupWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Lookup worker started",
		"batch_size", w.batchSize,
		"flush_interval", w.flushInterval)

	err := w.consumer.ConsumeLookups(ctx, w.batchSize, w.flushInterval, w.HandleBatch)
	if ctx.Err() != nil {
		slog.InfoContext(ctx, "Lookup worker stopped",
			"stored", w.stored.Load(),
			"batches", w.batches.Load())
		return nil
	}
	return err
}

// HandleBatch stores one batch of lookup messages. An error makes the
// consumer requeue the batch.
func (w *LookupWorker) HandleBatch(ctx context.Context, msgs []*amqp.BillLookupMessage) error {
	events := make([]core.LookupEvent, len(msgs))
	for i, m := range msgs {
		events[i] = m.Event()
	}

	// Storage gets its own deadline so a slow disk cannot hold deliveries.
	storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := w.recorder.RecordLookups(storeCtx, events); err != nil {
		return fmt.Errorf("record %d lookups: %w", len(events), err)
	}

	w.stored.Add(int64(len(events)))
	w.batches.Add(1)
	slog.DebugContext(ctx, "Recorded lookup batch", "count", len(events))
	return nil
}

// Stored returns the number of lookups written since start.
func (w *LookupWorker) Stored() int64 {
	return w.stored.Load()
}
