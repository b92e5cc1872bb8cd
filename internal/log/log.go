// Package log provides the leveled loggers used throughout fspdf.
//
// Loggers are plain *log.Logger values so call sites read like
// log.Info.Printf("...") and keep file:line information.
package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
)

// EnvLevel names the environment variable that selects the log level.
const EnvLevel = "FSPDF_LOG"

const flags = stdlog.LstdFlags | stdlog.Lshortfile

var (
	Trace   = stdlog.New(io.Discard, "TRACE: ", flags)
	Info    = stdlog.New(os.Stderr, "INFO: ", flags)
	Warning = stdlog.New(os.Stderr, "WARNING: ", flags)
	Error   = stdlog.New(os.Stderr, "ERROR: ", flags)
)

// Level is a logging threshold.
type Level int

const (
	LevelTrace Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps a level name to a Level. Unknown names yield LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "debug":
		return LevelTrace
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Init routes every logger at or above level to out and silences the rest.
func Init(out io.Writer, level Level) {
	set := func(l *stdlog.Logger, at Level) {
		if level <= at {
			l.SetOutput(out)
		} else {
			l.SetOutput(io.Discard)
		}
	}
	set(Trace, LevelTrace)
	set(Info, LevelInfo)
	set(Warning, LevelWarning)
	set(Error, LevelError)
}

// InitFromEnv initializes logging to stderr using the level in FSPDF_LOG.
func InitFromEnv() {
	Init(os.Stderr, ParseLevel(os.Getenv(EnvLevel)))
}
