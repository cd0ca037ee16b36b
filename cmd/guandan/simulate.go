package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/guandan/cmd/guandan/shared"
	"github.com/lox/guandan/internal/simulator"
)

// SimulateCmd plays bot-vs-bot matches against the engine directly, with
// no server or websockets involved.
type SimulateCmd struct {
	Matches    int    `default:"100" help:"Number of matches to play"`
	DealLimit  int    `default:"200" help:"Abandon a match after this many deals"`
	Parallel   int    `default:"0" help:"Worker count (0 = all cores, capped at 8)"`
	Seed       int64  `default:"1" help:"Base seed; match i plays under seed+i"`
	Team0      string `default:"low" help:"Strategy for seats 0 and 2"`
	Team1      string `default:"low" help:"Strategy for seats 1 and 3"`
	WriteStats string `help:"Write a JSON report to this file"`
	Debug      bool   `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	}
	logger := shared.SetupLogger(level)

	sim, err := simulator.New(simulator.Config{
		Matches:  c.Matches,
		MaxDeals: c.DealLimit,
		Seed:     c.Seed,
		Team0:    c.Team0,
		Team1:    c.Team1,
		Workers:  c.Parallel,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int("matches", c.Matches).
		Int64("seed", c.Seed).
		Str("team0", c.Team0).
		Str("team1", c.Team1).
		Msg("Starting simulation")

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Print(report.Summary())

	if c.WriteStats != "" {
		if err := report.WriteFile(c.WriteStats); err != nil {
			return err
		}
		logger.Info().Str("path", c.WriteStats).Msg("Wrote stats file")
	}
	return nil
}
