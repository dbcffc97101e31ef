// jsonlog.go - Leveled structured logging, JSON for production and
// key=value text for development.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var levelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// ParseLogLevel maps a configured level name to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch LogLevel(s) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return LogLevel(s)
	default:
		return LogLevelInfo
	}
}

// Logger provides structured logging. It is safe for concurrent use.
type Logger struct {
	mu         sync.Mutex
	output     io.Writer
	minLevel   LogLevel
	enableJSON bool
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Level   LogLevel               `json:"level"`
	Time    string                 `json:"time"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Caller  string                 `json:"caller,omitempty"`
}

// NewLogger creates a logger writing to output (stdout when nil).
func NewLogger(output io.Writer, minLevel LogLevel, enableJSON bool) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{
		output:     output,
		minLevel:   ParseLogLevel(string(minLevel)),
		enableJSON: enableJSON,
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

// getCaller returns the file and line number of the caller
func getCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}

	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			file = file[i+1:]
			break
		}
	}

	return fmt.Sprintf("%s:%d", file, line)
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]interface{}, err error) {
	if !l.shouldLog(level) {
		return
	}

	entry := LogEntry{
		Level:   level,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Message: msg,
		Fields:  fields,
		Caller:  getCaller(3),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	var buf bytes.Buffer
	if l.enableJSON {
		data, _ := json.Marshal(entry)
		buf.Write(data)
	} else {
		fmt.Fprintf(&buf, "[%s] %s %s", entry.Level, entry.Time, entry.Message)
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&buf, " %s=%v", k, entry.Fields[k])
		}
		if entry.Error != "" {
			fmt.Fprintf(&buf, " error=%q", entry.Error)
		}
	}
	buf.WriteByte('\n')

	// One write per entry keeps concurrent lines from interleaving.
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.output.Write(buf.Bytes())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log(LogLevelDebug, msg, fields, nil)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log(LogLevelInfo, msg, fields, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log(LogLevelWarn, msg, fields, nil)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}, err error) {
	l.log(LogLevelError, msg, fields, err)
}
