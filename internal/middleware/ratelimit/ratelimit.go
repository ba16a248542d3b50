package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window = time.Minute
	// Clients quiet for this long are forgotten.
	idleAfter    = 10 * window
	sweepEvery   = 5 * time.Minute
	defaultLimit = 120
)

// Limiter allows each client a fixed number of requests per minute. Counts
// reset when a client's minute runs out.
type Limiter struct {
	limit int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*counter

	rejected atomic.Int64
	stop     chan struct{}
	stopOnce sync.Once
}

type counter struct {
	start time.Time
	last  time.Time
	n     int
}

// NewLimiter starts a limiter allowing perMinute requests per client; zero
// or less uses the default of 120. Callers must Stop it.
func NewLimiter(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = defaultLimit
	}
	rl := &Limiter{
		limit:   perMinute,
		now:     time.Now,
		clients: make(map[string]*counter),
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow counts a request from client and reports whether it is within the
// limit.
func (rl *Limiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, ok := rl.clients[client]
	if !ok || now.Sub(c.start) >= window {
		rl.clients[client] = &counter{start: now, last: now, n: 1}
		return true
	}
	c.n++
	c.last = now
	if c.n > rl.limit {
		rl.rejected.Add(1)
		return false
	}
	return true
}

// retryAfter is the whole seconds until client's minute ends, at least 1.
func (rl *Limiter) retryAfter(client string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[client]
	if !ok {
		return 0
	}
	left := window - rl.now().Sub(c.start)
	return max(1, int((left+time.Second-1)/time.Second))
}

func (rl *Limiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *Limiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-idleAfter)
	for client, c := range rl.clients {
		if c.last.Before(cutoff) {
			delete(rl.clients, client)
		}
	}
}

// ActiveClients returns the number of clients being tracked.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (rl *Limiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Metrics is exported on /metrics.
type Metrics struct {
	Rejected    int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		Rejected:    rl.rejected.Load(),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Middleware rejects clients over the limit. clientOf names the client of
// a request; onLimit writes the 429 body after Retry-After is set.
func (rl *Limiter) Middleware(clientOf func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientOf(r)
			if rl.Allow(client) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter(client)))
			if onLimit == nil {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}
