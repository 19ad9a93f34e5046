package splitkit

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings for constructing a Client.
type Config struct {
	DatafilePath string `env:"SPLITKIT_DATAFILE_PATH,required"` // DatafilePath points to the project datafile JSON on disk.
	LogLevel     string `env:"SPLITKIT_LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"SPLITKIT_LOG_FORMAT" envDefault:"json"` // LogFormat is "json" or "text".
}

var defaultEnvLoaded sync.Once

// NewFromEnv creates a Client from environment variables. A .env file in the
// working directory is loaded once if present. Extra options are applied
// after the environment-derived ones, so they win on conflict.
func NewFromEnv(opts ...Option) (*Client, error) {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrFailedToLoadConfig, err)
	}

	combined := append([]Option{WithLogger(newLogger(cfg))}, opts...)
	return NewFromFile(cfg.DatafilePath, combined...)
}

// newLogger builds a slog.Logger from the environment settings.
func newLogger(cfg Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	return slog.New(handler)
}
