// Package logging is a level-filtered wrapper over the standard logger.
// The level comes from LOG_LEVEL (debug, info, warn, error); info is the
// default.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	current = LevelInfo
	std     = log.New(os.Stderr, "", log.LstdFlags|log.LUTC)
)

// InitFromEnv sets the level from the LOG_LEVEL environment variable.
func InitFromEnv() {
	current = ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel overrides the current level.
func SetLevel(l Level) {
	current = l
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func Debugf(format string, args ...any) { logf(LevelDebug, "DEBUG", format, args...) }

func Infof(format string, args ...any) { logf(LevelInfo, "INFO", format, args...) }

func Warnf(format string, args ...any) { logf(LevelWarn, "WARN", format, args...) }

func Errorf(format string, args ...any) { logf(LevelError, "ERROR", format, args...) }

// Fatalf logs at error level and exits.
func Fatalf(format string, args ...any) {
	std.Printf("ERROR "+format, args...)
	os.Exit(1)
}

func logf(l Level, tag, format string, args ...any) {
	if l < current {
		return
	}
	std.Printf(tag+" "+format, args...)
}
