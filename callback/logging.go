package callback

import "log"

// LoggingCallback writes one line per API request to a standard library
// logger.
type LoggingCallback struct {
	logger *log.Logger
}

// NewLoggingCallback creates a logging callback. A nil logger uses the
// standard library default.
func NewLoggingCallback(logger *log.Logger) *LoggingCallback {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingCallback{logger: logger}
}

func (l *LoggingCallback) LogSuccess(data LogData) {
	l.logger.Printf("batchrouter: %s %s status=%d latency=%s request_id=%s",
		data.Method, data.Path, data.StatusCode, data.Latency, data.RequestID)
}

func (l *LoggingCallback) LogFailure(data LogData) {
	l.logger.Printf("batchrouter: %s %s status=%d latency=%s request_id=%s error=%v",
		data.Method, data.Path, data.StatusCode, data.Latency, data.RequestID, data.Error)
}
