package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// RequestKey identifies a counted request series.
type RequestKey struct {
	Method   string
	Endpoint string
	Status   int
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu       sync.Mutex
	requests map[RequestKey]uint64
	totalNs  map[RequestKey]int64

	usersTotal atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		requests: make(map[RequestKey]uint64),
		totalNs:  make(map[RequestKey]int64),
	}
}

// ObserveRequest increments the counter for the request series.
func (m *InMemoryRecorder) ObserveRequest(method, endpoint string, status int, duration time.Duration) {
	key := RequestKey{Method: method, Endpoint: endpoint, Status: status}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.totalNs[key] += duration.Nanoseconds()
}

// SetUsersTotal stores the users gauge value.
func (m *InMemoryRecorder) SetUsersTotal(n int) {
	m.usersTotal.Store(int64(n))
}

// Requests returns how many requests were recorded for the series.
func (m *InMemoryRecorder) Requests(method, endpoint string, status int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[RequestKey{Method: method, Endpoint: endpoint, Status: status}]
}

// TotalRequests returns the number of requests across all series.
func (m *InMemoryRecorder) TotalRequests() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total uint64
	for _, n := range m.requests {
		total += n
	}
	return total
}

// UsersTotal returns the last gauge value.
func (m *InMemoryRecorder) UsersTotal() int64 {
	return m.usersTotal.Load()
}
