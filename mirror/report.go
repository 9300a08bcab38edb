package mirror

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Severity orders reported events.
type Severity int

const (
	// SeverityInfo is used for successful fast-forwards and pushes.
	SeverityInfo Severity = iota

	// SeverityWarning is used for conditions that leave a usable, possibly
	// stale, mirror: dirty trees, divergence, fetch and push failures.
	SeverityWarning

	// SeverityError is used when no mirror can be handed out: a corrupt
	// cache path, or an open or clone failure.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// Reporter receives every notable event. Reporting is fire-and-forget:
// implementations must not block for long and cannot fail the operation.
type Reporter interface {
	Report(severity Severity, format string, args ...any)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(severity Severity, format string, args ...any)

// Report calls f.
func (f ReporterFunc) Report(severity Severity, format string, args ...any) {
	f(severity, format, args...)
}

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(Severity, string, ...any) {})

type logReporter struct {
	log zerolog.Logger
}

// NewLogReporter returns a Reporter that writes each event to log at the
// matching zerolog level.
func NewLogReporter(log zerolog.Logger) Reporter {
	return &logReporter{log: log}
}

func (r *logReporter) Report(severity Severity, format string, args ...any) {
	var event *zerolog.Event
	switch severity {
	case SeverityInfo:
		event = r.log.Info()
	case SeverityWarning:
		event = r.log.Warn()
	default:
		event = r.log.Error()
	}
	event.Msg(fmt.Sprintf(format, args...))
}
