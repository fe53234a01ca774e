// Package logger writes leveled diagnostics to stderr. Nothing is printed
// unless --verbose is set, so the interactive views and piped output stay clean.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelOff
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "OFF"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelOff {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

var (
	mu        sync.Mutex
	threshold           = LevelOff
	output    io.Writer = os.Stderr
	started             = time.Now()
	now                 = time.Now
)

// SetVerbose shows every level when v is true and silences logging otherwise.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelOff)
}

// IsVerbose reports whether debug messages are shown.
func IsVerbose() bool {
	return Enabled(LevelDebug)
}

// SetLevel shows messages at l and above.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	threshold = l
}

// Enabled reports whether a message at l would be written.
func Enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return l < LevelOff && l >= threshold
}

// SetOutput redirects log output. Tests use it to capture messages.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write formats one line as "+1.250s WARN  message".
func write(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l >= LevelOff || l < threshold {
		return
	}
	elapsed := now().Sub(started).Seconds()
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	fmt.Fprintf(output, "+%.3fs %-5s %s\n", elapsed, l, msg)
}

// Debug logs pipeline detail.
func Debug(format string, args ...any) {
	write(LevelDebug, format, args...)
}

// Info logs a notable event.
func Info(format string, args ...any) {
	write(LevelInfo, format, args...)
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	write(LevelWarn, format, args...)
}

// Section marks the start of a pipeline stage.
func Section(name string) {
	write(LevelInfo, "== %s ==", name)
}

// Progress reports done of total units for a stage.
func Progress(stage string, done, total int) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	write(LevelDebug, "%s %d/%d (%d%%)", stage, done, total, pct)
}

// Timed logs the start of stage and returns a func that logs its duration.
//
//	defer logger.Timed("embed passages")()
func Timed(stage string) func() {
	start := now()
	Debug("%s: started", stage)
	return func() {
		Debug("%s: finished in %s", stage, now().Sub(start).Round(time.Millisecond))
	}
}
