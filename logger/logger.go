// Package logger provides the process-wide structured logger used by the
// generator, prover and verifier.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()

// Logger returns the shared logger
func Logger() zerolog.Logger {
	return logger
}

// Set overrides the shared logger, for callers embedding the library in a
// larger service
func Set(l zerolog.Logger) {
	logger = l
}

// Disable routes the shared logger to a sink
func Disable() {
	logger = zerolog.New(io.Discard)
}
