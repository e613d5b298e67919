package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger writes one JSON object per line. Every entry carries "ts" in the
// configured location and a "level"; callers add whatever fields they need.
type Logger struct {
	mu  sync.Mutex
	out *log.Logger
	loc *time.Location
}

// New returns a Logger writing to w. A nil loc means UTC.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{out: log.New(w, "", 0), loc: loc}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns a process-wide Logger writing to stderr in UTC.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(os.Stderr, time.UTC)
	})
	return defaultLogger
}

// Location returns the time zone used for "ts".
func (l *Logger) Location() *time.Location {
	return l.loc
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log("info", msg, fields)
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	l.Log("warn", msg, fields)
}

func (l *Logger) Error(msg string, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	if err != nil {
		fields["error_message"] = err.Error()
	}
	l.Log("error", msg, fields)
}

// Log writes a single entry. fields is copied; "ts", "level" and "msg" are
// set unless fields already carries them.
func (l *Logger) Log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	if _, ok := entry["ts"]; !ok {
		entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	}
	if _, ok := entry["level"]; !ok {
		entry["level"] = level
	}
	if _, ok := entry["msg"]; !ok && msg != "" {
		entry["msg"] = msg
	}

	b, err := json.Marshal(entry)
	if err != nil {
		b = []byte(fmt.Sprintf(`{"level":"error","msg":"failed to marshal log entry","error_message":%q}`, err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Println(string(b))
}
