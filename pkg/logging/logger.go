// Package logging writes structured JSON log lines. Every component takes
// a Logger and tags itself with Component.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// sink is the output shared by a logger and all of its children.
type sink struct {
	mu    sync.Mutex
	w     io.Writer
	level atomic.Int32
	now   func() time.Time
}

// JSONLogger implements Logger with one JSON object per line.
type JSONLogger struct {
	sink      *sink
	component string
	fields    []Field
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	s := &sink{w: w, now: time.Now}
	s.level.Store(int32(level))
	return &JSONLogger{sink: s}
}

// LevelFromEnv reads GRAPHVIEWER_LOG_LEVEL, then LOG_LEVEL, falling back to INFO.
func LevelFromEnv() Level {
	for _, key := range []string{"GRAPHVIEWER_LOG_LEVEL", "LOG_LEVEL"} {
		if v := os.Getenv(key); v != "" {
			return ParseLevel(v)
		}
	}
	return InfoLevel
}

func (l *JSONLogger) enabled(level Level) bool {
	return level >= Level(l.sink.level.Load())
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if !l.enabled(level) {
		return
	}
	e := entry{
		Time:      l.sink.now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
	}
	if n := len(l.fields) + len(fields); n > 0 {
		e.Fields = make(map[string]any, n)
		for _, f := range l.fields {
			e.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			e.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(e)
	if err != nil {
		data = fmt.Appendf(nil, `{"level":"ERROR","msg":"unencodable log entry","error":%q}`, err.Error())
	}
	data = append(data, '\n')

	l.sink.mu.Lock()
	_, _ = l.sink.w.Write(data)
	l.sink.mu.Unlock()
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With returns a child sharing l's output and level. A Component field
// replaces the entry's component instead of being added to the fields.
func (l *JSONLogger) With(fields ...Field) Logger {
	child := &JSONLogger{
		sink:      l.sink,
		component: l.component,
		fields:    make([]Field, len(l.fields), len(l.fields)+len(fields)),
	}
	copy(child.fields, l.fields)
	for _, f := range fields {
		if f.Key == componentKey {
			if s, ok := f.Value.(string); ok {
				child.component = s
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}

// SetLevel sets the minimum level for l and every logger derived from the
// same root.
func (l *JSONLogger) SetLevel(level Level) { l.sink.level.Store(int32(level)) }

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level { return Level(l.sink.level.Load()) }

// TimedOperation logs an operation together with how long it took.
type TimedOperation struct {
	logger Logger
	msg    string
	start  time.Time
	fields []Field
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{logger: OrNop(logger), msg: msg, start: time.Now(), fields: fields}
}

// End logs the operation at debug level with its latency.
func (t *TimedOperation) End(extra ...Field) {
	t.logger.Debug(t.msg, t.with(extra)...)
}

// EndError logs the operation at error level with its latency and err.
func (t *TimedOperation) EndError(err error, extra ...Field) {
	t.logger.Error(t.msg, append(t.with(extra), Error(err))...)
}

func (t *TimedOperation) with(extra []Field) []Field {
	fields := make([]Field, 0, len(t.fields)+len(extra)+1)
	fields = append(fields, t.fields...)
	fields = append(fields, extra...)
	return append(fields, Latency(time.Since(t.start)))
}
