// Package diag sets up logging. The process log goes to stderr. The
// diagnostic log is a separate local file for wipe and notify failures;
// nothing reachable before unlock ever reads it.
package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Loggers bundles the two channels.
type Loggers struct {
	Process    zerolog.Logger
	Diagnostic zerolog.Logger

	closer io.Closer
}

// Setup builds both loggers. An empty diagnosticPath discards diagnostics.
func Setup(level, diagnosticPath, component string) (*Loggers, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	l := &Loggers{
		Process: zerolog.New(os.Stderr).Level(lvl).With().
			Timestamp().Str("component", component).Logger(),
		Diagnostic: zerolog.Nop(),
	}

	if diagnosticPath != "" {
		if err := os.MkdirAll(filepath.Dir(diagnosticPath), 0o700); err != nil {
			return nil, fmt.Errorf("diagnostic dir: %w", err)
		}
		f, err := os.OpenFile(diagnosticPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open diagnostic log: %w", err)
		}
		l.Diagnostic = New(f, zerolog.DebugLevel)
		l.closer = f
	}
	return l, nil
}

// New returns a timestamped logger writing JSON lines to w.
func New(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Close flushes the diagnostic file, if any.
func (l *Loggers) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
