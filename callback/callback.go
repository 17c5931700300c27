// Package callback provides observability hooks for BatchRouter API calls.
package callback

import "time"

// LogData holds all information about a completed API request.
type LogData struct {
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	StartTime  time.Time
	EndTime    time.Time
	Latency    time.Duration
	BytesIn    int64
	Error      error
}

// Logger is the interface for observability callbacks.
type Logger interface {
	LogSuccess(data LogData)
	LogFailure(data LogData)
}
