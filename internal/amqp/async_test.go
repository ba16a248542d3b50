package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"legisbase/internal/core"
)

// blockingPublisher stands in for a broker whose dial hangs.
type blockingPublisher struct {
	release chan struct{}

	mu   sync.Mutex
	seen []core.LookupEvent
	err  error
}

func (p *blockingPublisher) PublishLookup(ctx context.Context, ev core.LookupEvent) error {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, ev)
	return p.err
}

func (p *blockingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func TestAsyncPublisher_DoesNotWaitForBroker(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := NewAsyncPublisher(next, 4, nil)

	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := p.PublishLookup(context.Background(), core.LookupEvent{Kind: core.LookupGet, BillIDs: []int{i}}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("publishing blocked for %v", elapsed)
	}

	close(next.release)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := next.count(); got != 4 {
		t.Errorf("delivered %d events, want 4", got)
	}
	if st := p.Stats(); st.Published != 4 || st.Dropped != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestAsyncPublisher_DropsWhenFull(t *testing.T) {
	next := &blockingPublisher{release: make(chan struct{})}
	p := NewAsyncPublisher(next, 1, nil)

	var dropped int
	for i := 0; i < 10; i++ {
		err := p.PublishLookup(context.Background(), core.LookupEvent{Kind: core.LookupList})
		if errors.Is(err, ErrPublishQueueFull) {
			dropped++
		} else if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// One event may sit in the drain goroutine, one in the buffer.
	if dropped < 8 {
		t.Errorf("dropped %d events, want at least 8", dropped)
	}
	if st := p.Stats(); st.Dropped != int64(dropped) {
		t.Errorf("Dropped = %d, want %d", st.Dropped, dropped)
	}

	close(next.release)
	_ = p.Close()
}

func TestAsyncPublisher_CountsFailures(t *testing.T) {
	next := &blockingPublisher{err: ErrCircuitOpen}
	p := NewAsyncPublisher(next, 8, nil)

	for i := 0; i < 3; i++ {
		if err := p.PublishLookup(context.Background(), core.LookupEvent{Kind: core.LookupGet}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	_ = p.Close()

	if st := p.Stats(); st.Failed != 3 || st.Published != 0 {
		t.Errorf("stats = %+v, want 3 failed", st)
	}
}

func TestAsyncPublisher_CloseIsIdempotent(t *testing.T) {
	p := NewAsyncPublisher(&blockingPublisher{}, 0, nil)
	if err := p.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := p.PublishLookup(context.Background(), core.LookupEvent{}); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("publish after Close = %v, want ErrPublisherClosed", err)
	}
}
