package domain

import "time"

// FearGreedPoint is one daily value of the Fear & Greed index.
type FearGreedPoint struct {
	Timestamp      time.Time
	Value          int
	Classification string
}

// FearGreedSeries is ordered newest first, as the price source returns it.
type FearGreedSeries []FearGreedPoint

// Current returns the newest point.
func (s FearGreedSeries) Current() (FearGreedPoint, bool) {
	if len(s) == 0 {
		return FearGreedPoint{}, false
	}
	return s[0], true
}

// Trend compares the newest value with the one before it: 1 up, -1 down, 0 flat.
func (s FearGreedSeries) Trend() int {
	if len(s) < 2 {
		return 0
	}
	switch {
	case s[0].Value > s[1].Value:
		return 1
	case s[0].Value < s[1].Value:
		return -1
	default:
		return 0
	}
}

// Range returns the min and max values of the series.
func (s FearGreedSeries) Range() (min, max int) {
	for i, p := range s {
		if i == 0 || p.Value < min {
			min = p.Value
		}
		if i == 0 || p.Value > max {
			max = p.Value
		}
	}
	return min, max
}

// Chronological returns the values oldest first, ready for plotting.
func (s FearGreedSeries) Chronological() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[len(s)-1-i] = float64(p.Value)
	}
	return out
}
