package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process-wide zerolog Logger. APP_ENV=dev (or
// development) uses a human-friendly console writer; LOG_LEVEL overrides the
// default info level. Every entry carries the service name so the api and
// harvester logs can be told apart downstream.
func NewLogger(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	if lv, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lv != zerolog.NoLevel {
		level = lv
	}

	l := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", serviceName()).Logger()
	if env == "dev" || env == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return l
}

func serviceName() string {
	if s := os.Getenv("SERVICE_NAME"); s != "" {
		return s
	}
	return "propharvest"
}
