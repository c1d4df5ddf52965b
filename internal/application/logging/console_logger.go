package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

var levelRank = map[string]int{
	"DEBUG":   0,
	"INFO":    1,
	"WARNING": 2,
	"WARN":    2,
	"ERROR":   3,
}

// ConsoleLogger writes log lines to a writer in text or json format and
// drops anything below the configured level
type ConsoleLogger struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	min    int
	fields map[string]interface{}
	now    func() time.Time
}

// NewConsoleLogger creates a logger. format is "json" or "text"; level is
// one of DEBUG, INFO, WARNING, ERROR (case-insensitive).
func NewConsoleLogger(out io.Writer, format, level string) *ConsoleLogger {
	min, ok := levelRank[strings.ToUpper(level)]
	if !ok {
		min = levelRank["INFO"]
	}
	return &ConsoleLogger{
		out:    out,
		format: strings.ToLower(format),
		min:    min,
		now:    time.Now,
	}
}

// With returns a logger that adds fields to every entry
func (l *ConsoleLogger) With(fields map[string]interface{}) *ConsoleLogger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ConsoleLogger{out: l.out, format: l.format, min: l.min, fields: merged, now: l.now}
}

// Log implements ContainerLogger
func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	if rank, ok := levelRank[level]; ok && rank < l.min {
		return
	}

	entry := make(map[string]interface{}, len(l.fields)+len(metadata))
	for k, v := range l.fields {
		entry[k] = v
	}
	for k, v := range metadata {
		entry[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC().Format(time.RFC3339)
	if l.format == "json" {
		entry["time"] = ts
		entry["level"] = level
		entry["message"] = message
		b, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, "%s [%s] %s (metadata: %v)\n", ts, level, message, err)
			return
		}
		fmt.Fprintln(l.out, string(b))
		return
	}

	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", ts, level, message)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry[k])
	}
	fmt.Fprintln(l.out, sb.String())
}
