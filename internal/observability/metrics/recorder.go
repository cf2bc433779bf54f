package metrics

// Recorder defines a minimal interface for recording metrics, so components
// can depend on an abstraction rather than concrete collectors.
type Recorder interface {
	// RecordOperation records an operation with its status (StatusSuccess or StatusError).
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}

// NoopRecorder discards everything. It is the default when no metrics are configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string) {}
func (NoopRecorder) RecordDuration(string, float64) {}
func (NoopRecorder) RecordError(string, string)     {}
