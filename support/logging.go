package support

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger at the configured level. Unknown levels
// fall back to info; local environments get console output.
func NewLogger(config Config) *zerolog.Logger {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if config.Env == LocalEnv {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	logger = logger.Level(level).With().Timestamp().Str("service", "wee-visits").Logger()
	return &logger
}
