package threads

import "time"

// MutationLogEvent describes one mutation attempt for logging.
type MutationLogEvent struct {
	Verb       string
	Target     string
	Duration   time.Duration
	RolledBack bool
	Err        error
}

// MutationLogger records mutation events.
type MutationLogger interface {
	LogMutation(MutationLogEvent)
}

// MutationLoggerFunc adapts a function to MutationLogger.
type MutationLoggerFunc func(MutationLogEvent)

// LogMutation implements MutationLogger.
func (f MutationLoggerFunc) LogMutation(event MutationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopMutationLogger struct{}

func (noopMutationLogger) LogMutation(MutationLogEvent) {}
