package diag

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/routeglass/routeglass/pkg/util"
)

// Sink receives diagnostic events. Implementations are safe for concurrent
// use. Callers log Emit errors and carry on; a failing sink never fails a
// parse.
type Sink interface {
	Emit(event *Event) error
	Close() error
}

// Emit sends event to sink and logs, rather than returns, any failure.
// A nil sink discards the event.
func Emit(sink Sink, event *Event) {
	if sink == nil || event == nil {
		return
	}
	if err := sink.Emit(event); err != nil {
		util.WithField("event", event.ID).Warnf("diag: emit failed: %v", err)
	}
}

// LogSink writes events to the process logger.
type LogSink struct {
	// IncludeResponse adds the raw stdout/stderr to the log fields
	IncludeResponse bool
}

// NewLogSink creates a sink that logs through util.Logger.
func NewLogSink(includeResponse bool) *LogSink {
	return &LogSink{IncludeResponse: includeResponse}
}

func (s *LogSink) Emit(event *Event) error {
	fields := logrus.Fields{
		"platform": event.Platform,
		"plugin":   event.Plugin,
	}
	if event.Device != "" {
		fields["device"] = event.Device
	}
	if event.Directive != "" {
		fields["directive"] = event.Directive
	}
	if event.Kind != "" {
		fields["kind"] = event.Kind
	}
	if s.IncludeResponse {
		fields["stdout"] = event.Stdout
		fields["stderr"] = event.Stderr
	}

	entry := util.Logger.WithFields(fields)
	msg := event.Error
	if msg == "" {
		msg = "diagnostic event"
	}
	switch event.Severity {
	case SeverityError:
		entry.Error(msg)
	case SeverityWarning:
		entry.Warn(msg)
	default:
		entry.Info(msg)
	}
	return nil
}

func (s *LogSink) Close() error { return nil }

// FileSink appends events as JSON lines to a size-rotated file and can read
// them back for replay.
type FileSink struct {
	path string
	out  *lumberjack.Logger
	mu   sync.RWMutex
}

// RotationConfig configures event file rotation
type RotationConfig struct {
	MaxSizeMB  int // megabytes before rotation; 0 uses the lumberjack default
	MaxBackups int // rotated files to keep; 0 keeps all
	MaxAgeDays int
	Compress   bool
}

// NewFileSink creates a file-backed sink at path.
func NewFileSink(path string, rotation RotationConfig) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("diag: %w: file path is required", util.ErrInvalidConfig)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating diag directory: %w", err)
	}
	return &FileSink{
		path: path,
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    rotation.MaxSizeMB,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAgeDays,
			Compress:   rotation.Compress,
		},
	}, nil
}

// Path returns the active event file.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Emit(event *Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", event.ID, err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(line)
	return err
}

// Query returns events from the active file that match filter, oldest
// first. Malformed lines are skipped with a warning.
func (s *FileSink) Query(filter Filter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ReadFile(s.path, filter)
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}

// ReadFile reads a JSON-lines event file without opening it for writing.
// A missing file yields no events.
func ReadFile(path string, filter Filter) ([]*Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Event{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []*Event
	scanner := bufio.NewScanner(file)
	// raw responses can be large
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			util.Warnf("diag: skipping malformed event at %s:%d: %v", path, lineNum, err)
			continue
		}
		if event.Matches(filter) {
			events = append(events, &event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return filter.page(events), nil
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

// NewMultiSink drops nil entries.
func NewMultiSink(sinks ...Sink) MultiSink {
	var m MultiSink
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m MultiSink) Emit(event *Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
