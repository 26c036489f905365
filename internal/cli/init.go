// Package cli provides common initialization shared by the binaries under
// cmd/.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/config"
	"finanzas/internal/ledger"
	applog "finanzas/internal/log"
	"finanzas/internal/parser"
	"finanzas/internal/reply"
	"finanzas/internal/services"
)

// SetupLogger builds the process logger at the given level and makes it
// the slog default.
func SetupLogger(level, component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Bootstrap loads .env and the configuration, sets up the logger at the
// configured level and validates. It exits the process on validation
// failure.
func Bootstrap(component string) (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// NewRenderer returns a renderer that varies its confirmations, or one
// that always picks the first template when random is false.
func NewRenderer(random bool) *reply.Renderer {
	if !random {
		return reply.New(nil)
	}
	return reply.NewSeeded(uint64(time.Now().UnixNano()))
}

// NewInterpreter wires the parser, the renderer and store for cfg.
func NewInterpreter(cfg *config.Config, store ledger.Store) (*services.Interpreter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}
	classifier := parser.NewClassifier(parser.NewDateResolver(loc))
	return services.NewInterpreter(classifier, store, NewRenderer(cfg.ReplyRandom)), nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
