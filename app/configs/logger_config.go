package configs

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the application logger: human-readable console output in
// debug mode, JSON lines otherwise.
func NewLogger(debug bool) zerolog.Logger {
	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if debug {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "ads").Logger()
}
