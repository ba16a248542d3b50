package amqp

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"legisbase/internal/core"
	applog "legisbase/internal/log"
)

const defaultQueueSize = 1024

var (
	// ErrPublishQueueFull is returned when the outbound buffer is full and
	// the event was dropped.
	ErrPublishQueueFull = errors.New("lookup publish queue full")
	// ErrPublisherClosed is returned for events offered after Close.
	ErrPublisherClosed = errors.New("lookup publisher closed")
)

// LookupPublisher sends one lookup event to the broker.
type LookupPublisher interface {
	PublishLookup(ctx context.Context, ev core.LookupEvent) error
}

// AsyncPublisher decouples callers from the broker. PublishLookup only
// enqueues; a single goroutine drains the queue into the wrapped publisher,
// so a slow dial or a dead connection never holds up a read request.
type AsyncPublisher struct {
	next   LookupPublisher
	logger *applog.Logger

	events    chan core.LookupEvent
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// AsyncStats counts what happened to offered events.
type AsyncStats struct {
	Published int64
	Failed    int64
	Dropped   int64
	Queued    int
}

// NewAsyncPublisher starts the drain goroutine. queueSize <= 0 uses a
// default; logger may be nil.
func NewAsyncPublisher(next LookupPublisher, queueSize int, logger *applog.Logger) *AsyncPublisher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	p := &AsyncPublisher{
		next:   next,
		logger: logger.WithComponent(applog.ComponentAMQP),
		events: make(chan core.LookupEvent, queueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishLookup enqueues ev without blocking. The request context is not
// carried over: the event outlives the request that produced it.
func (p *AsyncPublisher) PublishLookup(_ context.Context, ev core.LookupEvent) error {
	select {
	case <-p.quit:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	default:
		p.dropped.Add(1)
		return ErrPublishQueueFull
	}
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for {
		select {
		case ev := <-p.events:
			p.send(ev)
		case <-p.quit:
			// Flush what was accepted before Close.
			for {
				select {
				case ev := <-p.events:
					p.send(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *AsyncPublisher) send(ev core.LookupEvent) {
	if err := p.next.PublishLookup(context.Background(), ev); err != nil {
		p.failed.Add(1)
		p.logger.Warn("Failed to publish lookup event",
			applog.NewFields().
				WithOperation(applog.OpRecord).
				WithRequestID(ev.RequestID).
				WithResultCount(ev.ResultCount).
				WithError(err).
				ToSlice()...)
		return
	}
	p.published.Add(1)
}

// Stats returns a snapshot of the counters.
func (p *AsyncPublisher) Stats() AsyncStats {
	return AsyncStats{
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
		Queued:    len(p.events),
	}
}

// Close stops accepting events, drains the queue and waits for the drain
// goroutine. It is safe to call more than once.
func (p *AsyncPublisher) Close() error {
	p.closeOnce.Do(func() { close(p.quit) })
	<-p.done
	return nil
}
