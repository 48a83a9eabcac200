// Package logging configures the process-wide zerolog logger: leveled,
// field-keyed lines to stderr, level controlled by the SIPLINE_LOG
// environment variable.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// envVar is the log-level environment variable this server honors.
const envVar = "SIPLINE_LOG"

// Init configures the global zerolog logger from SIPLINE_LOG, defaulting to
// info when unset or unrecognized.
func Init() {
	level := zerolog.InfoLevel
	if raw := strings.ToLower(strings.TrimSpace(os.Getenv(envVar))); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
}
