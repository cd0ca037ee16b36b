// Package simulator plays full Guandan matches headlessly: four strategy
// bots drive the deal engine directly, no websockets and no pacing
// delays. Per-match seeds derive from the base seed, so a run is
// reproducible match for match regardless of worker count.
package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/guandan/internal/bot"
	"github.com/lox/guandan/internal/game"
	"github.com/lox/guandan/internal/randutil"
	"github.com/lox/guandan/internal/rules"
)

const (
	// DefaultMaxDeals caps a single match. Two teams trading wins at the
	// top level can in principle see-saw forever; a match that hits the
	// cap is abandoned rather than left hanging.
	DefaultMaxDeals = 200

	// actionCap bounds engine commands per deal. A correct deal finishes
	// in a few hundred actions; hitting the cap means a strategy and the
	// engine have deadlocked and the match must abort loudly.
	actionCap = 10000
)

// Config holds simulation parameters. Team 0 plays seats 0 and 2, team 1
// plays seats 1 and 3.
type Config struct {
	Matches  int
	MaxDeals int
	Seed     int64
	Team0    string
	Team1    string
	Workers  int
	Logger   zerolog.Logger
}

// Simulator runs seeded bot-versus-bot matches.
type Simulator struct {
	config   Config
	maxDeals int
	workers  int
	teams    [2]bot.Strategy
	logger   zerolog.Logger
}

// New validates the configuration and resolves both strategies.
func New(config Config) (*Simulator, error) {
	if config.Matches < 1 {
		return nil, fmt.Errorf("matches must be at least 1, got %d", config.Matches)
	}

	team0, err := bot.Resolve(config.Team0)
	if err != nil {
		return nil, fmt.Errorf("team 0: %w", err)
	}
	team1, err := bot.Resolve(config.Team1)
	if err != nil {
		return nil, fmt.Errorf("team 1: %w", err)
	}

	maxDeals := config.MaxDeals
	if maxDeals <= 0 {
		maxDeals = DefaultMaxDeals
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	if workers > config.Matches {
		workers = config.Matches
	}

	return &Simulator{
		config:   config,
		maxDeals: maxDeals,
		workers:  workers,
		teams:    [2]bot.Strategy{team0, team1},
		logger:   config.Logger.With().Str("component", "simulator").Logger(),
	}, nil
}

// Run plays every match and aggregates the results. Matches are spread
// over the worker pool; match i always plays under seed base+i, so the
// report is identical at any parallelism.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make(chan MatchResult, s.workers)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < s.config.Matches; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < s.workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				seed := s.config.Seed + int64(i)
				res, err := s.playMatch(seed)
				if err != nil {
					return fmt.Errorf("match %d (seed %d): %w", i, seed, err)
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(results)
	}()

	report := &Report{
		Strategies: [2]string{s.teams[0].Name(), s.teams[1].Name()},
		Matches:    s.config.Matches,
		Seed:       s.config.Seed,
	}
	for res := range results {
		report.add(res)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Seed < report.Results[j].Seed
	})
	report.Elapsed = time.Since(start)
	return report, nil
}

// playMatch runs one match to its conclusion or the deal cap.
func (s *Simulator) playMatch(seed int64) (MatchResult, error) {
	rng := randutil.New(seed)
	m := game.NewMatch(rng)

	res := MatchResult{Seed: seed, Winner: -1}
	for res.Deals < s.maxDeals {
		d := m.StartDeal()
		if ts, ok := d.Tribute(); ok {
			if ts.Anti {
				res.AntiTributes++
			} else {
				res.Tributes++
			}
		}
		if err := s.playDeal(d, rng); err != nil {
			return MatchResult{}, err
		}
		outcome := m.ConcludeDeal(d.FinishOrder())
		res.Deals++
		res.steps[outcome.Step]++

		if outcome.MatchOver {
			res.Winner = outcome.WinningTeam
			res.Levels = [2]string{outcome.Levels[0].String(), outcome.Levels[1].String()}
			return res, nil
		}
	}

	levels := m.Levels()
	res.Levels = [2]string{levels[0].String(), levels[1].String()}
	s.logger.Warn().Int64("seed", seed).Int("deals", res.Deals).Msg("match abandoned at the deal cap")
	return res, nil
}

// playDeal feeds strategy decisions to the engine until the deal scores.
func (s *Simulator) playDeal(d *game.Deal, rng *rand.Rand) error {
	for actions := 0; actions < actionCap; actions++ {
		switch d.Phase() {
		case game.Score:
			return nil

		case game.Tribute:
			ts, _ := d.Tribute()
			for _, e := range ts.Edges {
				if e.Card != nil {
					continue
				}
				card := bot.TributePayment(d.Hand(e.From), d.Level())
				if err := d.PayTribute(e.From, card.ID()); err != nil {
					return fmt.Errorf("seat %d tribute: %w", e.From, err)
				}
			}

		case game.ReturnTribute:
			ts, _ := d.Tribute()
			for _, e := range ts.Returns {
				if e.Card != nil {
					continue
				}
				card := bot.TributeReturn(d.Hand(e.From), d.Level())
				if err := d.ReturnTribute(e.From, card.ID()); err != nil {
					return fmt.Errorf("seat %d return tribute: %w", e.From, err)
				}
			}

		case game.Playing:
			if err := s.playTurn(d, rng); err != nil {
				return err
			}

		default:
			return fmt.Errorf("deal stuck in phase %s", d.Phase())
		}
	}
	return fmt.Errorf("deal exceeded %d actions without scoring", actionCap)
}

func (s *Simulator) playTurn(d *game.Deal, rng *rand.Rand) error {
	seat := d.CurrentTurn()
	strategy := s.teams[seat%2]

	var target *rules.Hand
	if lp, ok := d.LastPlay(); ok && lp.Seat != seat {
		h := lp.Hand
		target = &h
	}

	play := strategy.Decide(d.Hand(seat), d.Level(), target, rng)
	if play == nil {
		return d.Pass(seat)
	}
	ids := make([]string, len(play))
	for i, c := range play {
		ids[i] = c.ID()
	}
	if err := d.PlayHand(seat, ids); err != nil {
		return fmt.Errorf("seat %d (%s) played an illegal hand: %w", seat, strategy.Name(), err)
	}
	return nil
}
