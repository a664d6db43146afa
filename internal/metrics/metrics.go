// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// ObserveRequest records one finished HTTP request.
	ObserveRequest(method, endpoint string, status int, duration time.Duration)

	// SetUsersTotal reports the number of users seen by the last full listing.
	SetUsersTotal(n int)
}
