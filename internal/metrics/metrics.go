// Package metrics keeps in-process counters for checkout and webhook traffic.
package metrics

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	CheckoutCreated = "checkout_created"
	CheckoutFailed  = "checkout_failed"
	WebhookReceived = "webhook_received"
	WebhookRejected = "webhook_rejected"
	WebhookFailed   = "webhook_failed"
)

// WebhookOutcome names the counter for one reconciliation outcome.
func WebhookOutcome(outcome string) string {
	return "webhook_" + outcome
}

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry hands out named counters. The zero value is not usable; call
// NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	started  time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
		started:  time.Now(),
	}
}

// Counter returns the counter called name, creating it on first use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c = &Counter{}
	r.counters[name] = c
	return c
}

func (r *Registry) Inc(name string) {
	r.Counter(name).Inc()
}

func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]uint64, len(r.counters))
	for name, c := range r.counters {
		out[name] = c.Load()
	}
	return out
}

func (r *Registry) Names() []string {
	snap := r.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type snapshotResponse struct {
	OK            bool              `json:"ok"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	Counters      map[string]uint64 `json:"counters"`
}

// Handler serves the current counters as JSON.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snapshotResponse{
			OK:            true,
			UptimeSeconds: int64(time.Since(r.started).Seconds()),
			Counters:      r.Snapshot(),
		})
	})
}
