package internal

import (
	"fmt"
	"log"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelNames = map[LogLevel]string{
	LogLevelError: "error",
	LogLevelWarn:  "warn",
	LogLevelInfo:  "info",
	LogLevelDebug: "debug",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLogLevel accepts error, warn, info or debug in any case
func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger prefixes standard log output with a component name and drops
// messages above its level
type Logger struct {
	component string
	level     LogLevel
}

// NewLogger creates a logger for one component
func NewLogger(component string, level LogLevel) *Logger {
	return &Logger{component: component, level: level}
}

// NewLoggerFromString is NewLogger with a textual level; unknown levels log at info
func NewLoggerFromString(component, level string) *Logger {
	parsed, _ := ParseLogLevel(level)
	return NewLogger(component, parsed)
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level LogLevel) bool {
	return l != nil && level <= l.level
}

func (l *Logger) printf(level LogLevel, tag, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	log.Printf("["+l.component+"] "+tag+format, args...)
}

// Errorf logs error messages
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LogLevelError, "ERROR: ", format, args...)
}

// Warnf logs warning messages
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "WARN: ", format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "", format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LogLevelDebug, "", format, args...)
}
