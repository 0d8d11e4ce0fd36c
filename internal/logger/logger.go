package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// Level is a logging threshold. Messages below the current level are dropped.
type Level int32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

const (
	fatalLabel = "[FATAL] "
	errorLabel = "[ERROR] "
	warnLabel  = "[WARN ] "
	infoLabel  = "[INFO ] "
	debugLabel = "[DEBUG] "
)

var threshold atomic.Int32

func init() {
	threshold.Store(int32(InfoLevel))
}

// SetLevel changes the threshold for all following log calls.
func SetLevel(l Level) {
	threshold.Store(int32(l))
}

// CurrentLevel returns the active threshold.
func CurrentLevel() Level {
	return Level(threshold.Load())
}

// ParseLevel maps "debug", "info", "warn" or "error" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %q", s)
	}
}

// mylog prepends the level string to log.Printf when l passes the threshold.
// Arguments are handled in the manner of [fmt.Printf].
func mylog(l Level, label string, format string, args ...interface{}) {
	if l < CurrentLevel() {
		return
	}
	log.Printf(label+format, args...)
}

// Fatal calls [log.Fatalf], adding a fatal label. It is never filtered.
// Arguments are handled in the manner of [fmt.Printf].
func Fatal(format string, args ...interface{}) {
	log.Fatalf(fatalLabel+format, args...)
}

// Error prints to the standard logger, adding an error label.
// Arguments are handled in the manner of [fmt.Printf].
func Error(format string, args ...interface{}) {
	mylog(ErrorLevel, errorLabel, format, args...)
}

// Warn prints to the standard logger, adding a warn label.
// Arguments are handled in the manner of [fmt.Printf].
func Warn(format string, args ...interface{}) {
	mylog(WarnLevel, warnLabel, format, args...)
}

// Info prints to the standard logger, adding an info label.
// Arguments are handled in the manner of [fmt.Printf].
func Info(format string, args ...interface{}) {
	mylog(InfoLevel, infoLabel, format, args...)
}

// Debug prints to the standard logger, adding a debug label.
// Arguments are handled in the manner of [fmt.Printf].
func Debug(format string, args ...interface{}) {
	mylog(DebugLevel, debugLabel, format, args...)
}
