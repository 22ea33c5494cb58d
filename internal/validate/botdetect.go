package validate

import (
	"math"

	"github.com/runeward/server/internal/world"
)

// Bot-detection analytics derive review signals from accepted movement
// history and action timing. They never enforce anything on their own.

const (
	linearityMinSamples  = 10
	linearityMaxRad      = 0.01
	microMoveMaxDist     = 1.0
	microMoveRatioThresh = 0.30
	timingMinSamples     = 10
	timingVarianceThresh = 100.0
)

// BotReport summarizes the derived signals for one character.
type BotReport struct {
	LinearMovement  bool
	MicroMovement   bool
	RoboticTiming   bool
	Samples         int
	ActionIntervals int
}

// Suspicious reports whether any signal fired.
func (r BotReport) Suspicious() bool {
	return r.LinearMovement || r.MicroMovement || r.RoboticTiming
}

// Analyze derives a report from movement history and action timestamps
// (ms, ascending).
func Analyze(history []PositionSample, actionTimesMs []int64) BotReport {
	rep := BotReport{Samples: len(history)}

	if len(history) >= linearityMinSamples {
		rep.LinearMovement = isLinear(history)
		rep.MicroMovement = microMoveRatio(history) > microMoveRatioThresh
	}

	if len(actionTimesMs) > timingMinSamples {
		rep.ActionIntervals = len(actionTimesMs) - 1
		rep.RoboticTiming = intervalVariance(actionTimesMs) < timingVarianceThresh
	}
	return rep
}

// isLinear reports whether consecutive headings deviate by less than the
// linearity threshold across the whole window.
func isLinear(history []PositionSample) bool {
	var prevAngle float64
	havePrev := false
	for i := 1; i < len(history); i++ {
		a, b := history[i-1].Position, history[i].Position
		dx, dy := b.X-a.X, b.Y-a.Y
		if dx == 0 && dy == 0 {
			continue
		}
		angle := math.Atan2(dy, dx)
		if havePrev {
			dev := math.Abs(angle - prevAngle)
			if dev > math.Pi {
				dev = 2*math.Pi - dev
			}
			if dev > linearityMaxRad {
				return false
			}
		}
		prevAngle, havePrev = angle, true
	}
	return havePrev
}

// microMoveRatio is the fraction of steps that moved but covered under one
// unit.
func microMoveRatio(history []PositionSample) float64 {
	if len(history) < 2 {
		return 0
	}
	micro := 0
	for i := 1; i < len(history); i++ {
		d := world.Distance(history[i-1].Position, history[i].Position)
		if d > 0 && d < microMoveMaxDist {
			micro++
		}
	}
	return float64(micro) / float64(len(history)-1)
}

// intervalVariance is the population variance of gaps between consecutive
// action timestamps.
func intervalVariance(timesMs []int64) float64 {
	n := len(timesMs) - 1
	if n < 1 {
		return math.MaxFloat64
	}
	intervals := make([]float64, n)
	var sum float64
	for i := 1; i < len(timesMs); i++ {
		intervals[i-1] = float64(timesMs[i] - timesMs[i-1])
		sum += intervals[i-1]
	}
	mean := sum / float64(n)
	var variance float64
	for _, iv := range intervals {
		variance += (iv - mean) * (iv - mean)
	}
	return variance / float64(n)
}
