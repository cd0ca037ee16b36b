package simulator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lox/guandan/internal/fileutil"
	"github.com/lox/guandan/internal/statistics"
)

// MatchResult records one finished match. Winner is -1 for a match
// abandoned at the deal cap. Tributes counts deals that opened with a
// tribute paid; AntiTributes counts deals where the losers resisted.
type MatchResult struct {
	Seed         int64     `json:"seed"`
	Winner       int       `json:"winner"`
	Deals        int       `json:"deals"`
	Tributes     int       `json:"tributes"`
	AntiTributes int       `json:"antiTributes"`
	Levels       [2]string `json:"levels"`

	steps [4]int
}

// Report aggregates a simulation run. Steps counts concluded deals by
// level-up step, indices 1 through 3.
type Report struct {
	Strategies   [2]string     `json:"strategies"`
	Matches      int           `json:"matches"`
	Seed         int64         `json:"seed"`
	Wins         [2]int        `json:"wins"`
	Capped       int           `json:"capped"`
	TotalDeals   int           `json:"totalDeals"`
	Tributes     int           `json:"tributes"`
	AntiTributes int           `json:"antiTributes"`
	Steps        [4]int        `json:"steps"`
	Elapsed      time.Duration `json:"elapsedNs"`
	Results      []MatchResult `json:"results"`
}

func (r *Report) add(res MatchResult) {
	r.Results = append(r.Results, res)
	r.TotalDeals += res.Deals
	r.Tributes += res.Tributes
	r.AntiTributes += res.AntiTributes
	for i, n := range res.steps {
		r.Steps[i] += n
	}
	if res.Winner < 0 {
		r.Capped++
		return
	}
	r.Wins[res.Winner]++
}

// WinRate returns the share of matches team won.
func (r *Report) WinRate(team int) float64 {
	if r.Matches == 0 {
		return 0
	}
	return float64(r.Wins[team]) / float64(r.Matches)
}

// AvgDeals returns the mean number of deals per match.
func (r *Report) AvgDeals() float64 {
	if r.Matches == 0 {
		return 0
	}
	return float64(r.TotalDeals) / float64(r.Matches)
}

// DealStats returns the distribution of deals per match.
func (r *Report) DealStats() *statistics.Sample {
	var s statistics.Sample
	for _, res := range r.Results {
		s.Add(float64(res.Deals))
	}
	return &s
}

// WriteFile writes the report as indented JSON via an atomic rename.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return fileutil.WriteFileAtomic(path, data, 0644)
}

// Summary renders the human-readable results block.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== SIMULATION RESULTS: %s vs %s ===\n", r.Strategies[0], r.Strategies[1])
	fmt.Fprintf(&b, "Matches played: %d (seed %d)\n", r.Matches, r.Seed)
	fmt.Fprintf(&b, "Team 0 (%s): %d wins (%.1f%%)\n", r.Strategies[0], r.Wins[0], r.WinRate(0)*100)
	fmt.Fprintf(&b, "Team 1 (%s): %d wins (%.1f%%)\n", r.Strategies[1], r.Wins[1], r.WinRate(1)*100)
	if r.Capped > 0 {
		fmt.Fprintf(&b, "Abandoned at deal cap: %d\n", r.Capped)
	}

	fmt.Fprintf(&b, "\n=== DEAL ANALYSIS ===\n")
	fmt.Fprintf(&b, "Deals played: %d (%.1f per match)\n", r.TotalDeals, r.AvgDeals())
	if ds := r.DealStats(); ds.Count() > 1 {
		fmt.Fprintf(&b, "Match length: median %.0f deals, P5=%.0f, P95=%.0f, max %.0f\n",
			ds.Median(), ds.Percentile(0.05), ds.Percentile(0.95), ds.Max())
	}
	scored := r.Steps[1] + r.Steps[2] + r.Steps[3]
	if scored > 0 {
		fmt.Fprintf(&b, "Level steps: +3 on %d (%.1f%%), +2 on %d (%.1f%%), +1 on %d (%.1f%%)\n",
			r.Steps[3], pct(r.Steps[3], scored),
			r.Steps[2], pct(r.Steps[2], scored),
			r.Steps[1], pct(r.Steps[1], scored))
	}
	fmt.Fprintf(&b, "Tribute: paid in %d deals, resisted in %d\n", r.Tributes, r.AntiTributes)
	fmt.Fprintf(&b, "Elapsed: %s\n", r.Elapsed.Round(time.Millisecond))

	return b.String()
}

func pct(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
