package observability

import (
	"sync"
	"time"
)

// Metrics keeps in-process counters per route. The ticket API has a
// small fixed route set, so plain maps behind a mutex are enough.
type Metrics struct {
	mu       sync.Mutex
	requests map[routeKey]*routeStats
	errors   map[errorKey]int64
}

type routeKey struct {
	method string
	path   string
	status int
}

type errorKey struct {
	method string
	path   string
	code   string
}

type routeStats struct {
	count    int64
	duration time.Duration
}

// NewMetrics initializes the counter maps.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[routeKey]*routeStats),
		errors:   make(map[errorKey]int64),
	}
}

// RecordRequest counts one served request and accumulates its duration.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey{method: method, path: path, status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.requests[key]
	if !ok {
		stats = &routeStats{}
		m.requests[key] = stats
	}
	stats.count++
	stats.duration += duration
}

// RecordError counts one request rejected with the given error code,
// keyed the way the error middleware reports it (DomainError.Code).
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[errorKey{method: method, path: path, code: code}]++
}
