// Package diag records structured diagnostics for output that could not be
// normalized. An event carries enough context (platform, plugin, device,
// directive, error class and the raw response) to replay the failure later.
package diag

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/routeglass/routeglass/pkg/util"
)

// Event is one parse failure or notable pipeline condition.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Kind      string    `json:"kind,omitempty"` // util.ErrorKind bucket
	Platform  string    `json:"platform"`
	Plugin    string    `json:"plugin,omitempty"`
	Device    string    `json:"device,omitempty"`
	Directive string    `json:"directive,omitempty"`
	Error     string    `json:"error,omitempty"`
	Stdout    string    `json:"stdout,omitempty"`
	Stderr    string    `json:"stderr,omitempty"`
}

// Severity indicates the importance of a diagnostic event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Filter selects events from a queryable sink. Zero fields match anything.
type Filter struct {
	Device    string
	Platform  string
	Plugin    string
	Directive string
	Kind      string
	Severity  Severity
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// NewEvent creates an info event for plugin on platform.
func NewEvent(plugin, platform string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		Severity:  SeverityInfo,
		Plugin:    plugin,
		Platform:  platform,
	}
}

// WithDevice sets the device name
func (e *Event) WithDevice(device string) *Event {
	e.Device = device
	return e
}

// WithDirective sets the directive id
func (e *Event) WithDirective(directive string) *Event {
	e.Directive = directive
	return e
}

// WithError records err, classifies it and raises severity to error.
func (e *Event) WithError(err error) *Event {
	if err == nil {
		return e
	}
	e.Severity = SeverityError
	e.Error = err.Error()
	e.Kind = util.ErrorKind(err)
	return e
}

// WithKind overrides the error class, e.g. for recovered panics.
func (e *Event) WithKind(kind string) *Event {
	e.Kind = kind
	return e
}

// WithResponse attaches the raw device response
func (e *Event) WithResponse(stdout, stderr string) *Event {
	e.Stdout = stdout
	e.Stderr = stderr
	return e
}

// Matches reports whether e satisfies every set field of f. Limit and
// Offset are ignored.
func (e *Event) Matches(f Filter) bool {
	if f.Device != "" && e.Device != f.Device {
		return false
	}
	if f.Platform != "" && e.Platform != f.Platform {
		return false
	}
	if f.Plugin != "" && e.Plugin != f.Plugin {
		return false
	}
	if f.Directive != "" && e.Directive != f.Directive {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime) {
		return false
	}
	return true
}

func (f Filter) page(events []*Event) []*Event {
	if f.Offset > 0 {
		if f.Offset >= len(events) {
			return nil
		}
		events = events[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(events) {
		events = events[:f.Limit]
	}
	return events
}

var idSeq atomic.Uint64

// IDs stay unique when several events share a nanosecond.
func generateID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), idSeq.Add(1))
}
