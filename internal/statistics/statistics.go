// Package statistics provides the summary arithmetic behind simulation
// reports: mean, spread and percentiles over a set of observations.
package statistics

import (
	"math"
	"sort"
)

// Sample accumulates float64 observations. The zero value is ready to use.
type Sample struct {
	count  int
	sum    float64
	sum2   float64
	values []float64
}

// Add incorporates one observation
func (s *Sample) Add(v float64) {
	s.count++
	s.sum += v
	s.sum2 += v * v
	s.values = append(s.values, v)
}

// Count returns the number of observations
func (s *Sample) Count() int {
	return s.count
}

// Mean returns the arithmetic mean
func (s *Sample) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// Variance returns the sample variance
func (s *Sample) Variance() float64 {
	if s.count < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.sum2 - float64(s.count)*mean*mean) / float64(s.count-1)
}

// StdDev returns the sample standard deviation
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Sample) StdError() float64 {
	if s.count == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.count))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median observation
func (s *Sample) Median() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := s.sorted()
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0),
// linearly interpolated between observations.
func (s *Sample) Percentile(p float64) float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := s.sorted()

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Min returns the smallest observation
func (s *Sample) Min() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return s.sorted()[0]
}

// Max returns the largest observation
func (s *Sample) Max() float64 {
	if len(s.values) == 0 {
		return 0
	}
	sorted := s.sorted()
	return sorted[len(sorted)-1]
}

func (s *Sample) sorted() []float64 {
	sorted := make([]float64, len(s.values))
	copy(sorted, s.values)
	sort.Float64s(sorted)
	return sorted
}
