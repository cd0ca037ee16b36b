package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/guandan/cmd/guandan/shared"
	"github.com/lox/guandan/internal/server"
)

// ServeCmd runs the websocket server
type ServeCmd struct {
	Addr      string `help:"Listen address (overrides $PORT and the config file)"`
	Port      *int   `env:"PORT" help:"Listen port, used when --addr is not given"`
	Config    string `help:"Path to an HCL config file"`
	Seed      *int64 `help:"Deterministic RNG seed for the server (optional)"`
	Debug     bool   `help:"Enable debug logging"`
	LogFormat string `default:"console" enum:"console,json" help:"Log output format (console|json)"`
}

func (c *ServeCmd) Run() error {
	// An explicit --config must exist; the default path may be absent.
	if c.Config != "" {
		if _, err := os.Stat(c.Config); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := c.buildLogger(cfg)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}

	s := server.NewServer(logger, seed, server.WithConfig(cfg))
	addr := c.listenAddr(cfg)

	logger.Info().
		Str("address", addr).
		Dur("bot_delay", cfg.Game.BotDelay()).
		Dur("deal_grace", cfg.Game.DealGrace()).
		Str("bot_strategy", cfg.Game.BotStrategy).
		Msg("Starting Guandan server")

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

func (c *ServeCmd) listenAddr(cfg server.Config) string {
	if c.Addr != "" {
		return c.Addr
	}
	if c.Port != nil {
		return fmt.Sprintf(":%d", *c.Port)
	}
	return cfg.Server.Addr
}

func (c *ServeCmd) buildLogger(cfg server.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.Debug {
		level = zerolog.DebugLevel
	}
	if c.LogFormat == "json" {
		return shared.SetupStructuredLogger(level)
	}
	return shared.SetupLogger(level)
}
