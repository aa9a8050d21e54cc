package analytics

import (
	"log"

	"github.com/google/uuid"
)

// Reporter records a server-side failure and returns an opaque correlation
// identifier. The identifier is embedded in client-visible error responses so
// the failure can be found in logs without leaking internal detail.
type Reporter interface {
	Report(message string) string
}

// LogReporter writes reported messages to a standard logger, tagged with a
// freshly generated correlation identifier.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses log.Default.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(message string) string {
	id := uuid.NewString()
	r.logger.Printf("analytics error [%s]: %s", id, message)
	return id
}
