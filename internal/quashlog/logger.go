// Package quashlog provides the shell's structured logger. It is
// additional telemetry only: nothing in the built-in/launcher contract
// depends on what gets logged, so a silent logger must still leave the
// shell fully functional.
package quashlog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is a thread-safe wrapper around a logrus.Logger: every call takes a
// lock the way lxd-export's SafeLogger does, so one Logger can be shared
// between goroutines. The job table's per-job wait goroutines do not log;
// launcher and job table events are logged from the calling goroutine.
type Logger struct {
	logger *logrus.Logger
	mu     sync.Mutex
}

// New builds a Logger that writes to w (stderr in production, so log lines
// never interleave with command output on stdout) at the given level.
func New(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Logger{logger: l}
}

// NewDefault builds a Logger on os.Stderr at the given level, the
// configuration cmd/quash wires from --log-level.
func NewDefault(level logrus.Level) *Logger {
	return New(os.Stderr, level)
}

// ParseLevel parses a --log-level flag value, defaulting to WarnLevel for
// an empty string.
func ParseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(s)
}

func (l *Logger) log(level logrus.Level, msg string, fields logrus.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.logger.WithFields(fields)
	switch level {
	case logrus.DebugLevel:
		entry.Debug(msg)
	case logrus.InfoLevel:
		entry.Info(msg)
	case logrus.WarnLevel:
		entry.Warn(msg)
	case logrus.ErrorLevel:
		entry.Error(msg)
	}
}

// Debug logs each executed line and each stage the launcher forks.
func (l *Logger) Debug(msg string, fields logrus.Fields) { l.log(logrus.DebugLevel, msg, fields) }

// Info logs job table transitions: logged, reaped, dropped for capacity.
func (l *Logger) Info(msg string, fields logrus.Fields) { l.log(logrus.InfoLevel, msg, fields) }

// Warn logs at warn level. No code in this module calls it: parse,
// redirection and exec failures are reported only by their stderr
// diagnostics.
func (l *Logger) Warn(msg string, fields logrus.Fields) { l.log(logrus.WarnLevel, msg, fields) }
