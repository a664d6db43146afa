package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(method, endpoint string, status int, duration time.Duration) {}

// SetUsersTotal is a no-op.
func (n *NoopRecorder) SetUsersTotal(count int) {}
