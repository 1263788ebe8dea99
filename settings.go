package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Settings holds runtime tuning read from the environment
type Settings struct {
	SessionTTL      time.Duration `env:"MEMORY_SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"MEMORY_CLEANUP_INTERVAL" envDefault:"1h"`
	// AllowedOrigins limits WebSocket browser origins; empty allows all.
	AllowedOrigins []string `env:"MEMORY_ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON        bool     `env:"LOG_JSON" envDefault:"false"`
}

// loadSettings parses Settings from the environment
func loadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.SessionTTL <= 0 {
		return nil, fmt.Errorf("MEMORY_SESSION_TTL must be positive, got %s", s.SessionTTL)
	}
	if s.CleanupInterval <= 0 {
		return nil, fmt.Errorf("MEMORY_CLEANUP_INTERVAL must be positive, got %s", s.CleanupInterval)
	}

	origins := s.AllowedOrigins[:0]
	for _, o := range s.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	s.AllowedOrigins = origins
	return &s, nil
}

// setupLogging configures the global zerolog logger. Logs always go to
// stderr so the stdio MCP transport keeps stdout to itself.
func setupLogging(s *Settings, debug bool) error {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", s.LogLevel, err)
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if s.LogJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
	return nil
}
