package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/runeward/server/internal/protocol"
)

func samplesAlongLine(n int, step float64) []PositionSample {
	out := make([]PositionSample, n)
	for i := range out {
		out[i] = PositionSample{
			Position: protocol.Vec3{X: float64(i) * step, Y: float64(i) * step},
			AtMs:     int64(i) * 600,
		}
	}
	return out
}

func TestAnalyzeFlagsLinearMovement(t *testing.T) {
	rep := Analyze(samplesAlongLine(20, 5), nil)
	assert.True(t, rep.LinearMovement)
	assert.True(t, rep.Suspicious())
	assert.Equal(t, 20, rep.Samples)
}

func TestAnalyzeIgnoresShortHistory(t *testing.T) {
	rep := Analyze(samplesAlongLine(5, 5), nil)
	assert.False(t, rep.LinearMovement)
	assert.False(t, rep.Suspicious())
}

func TestAnalyzeHumanPathNotLinear(t *testing.T) {
	samples := samplesAlongLine(20, 5)
	// A real player wobbles; bend the path partway through.
	samples[10].Position.Y += 30
	rep := Analyze(samples, nil)
	assert.False(t, rep.LinearMovement)
}

func TestAnalyzeFlagsMicroMovement(t *testing.T) {
	rep := Analyze(samplesAlongLine(20, 0.5), nil)
	assert.True(t, rep.MicroMovement)
}

func TestAnalyzeFlagsRoboticTiming(t *testing.T) {
	times := make([]int64, 20)
	for i := range times {
		times[i] = int64(i) * 600
	}
	rep := Analyze(nil, times)
	assert.True(t, rep.RoboticTiming)
	assert.Equal(t, 19, rep.ActionIntervals)
}

func TestAnalyzeHumanTimingNotRobotic(t *testing.T) {
	times := make([]int64, 20)
	var at int64
	for i := range times {
		times[i] = at
		if i%2 == 0 {
			at += 400
		} else {
			at += 900
		}
	}
	rep := Analyze(nil, times)
	assert.False(t, rep.RoboticTiming)
}
