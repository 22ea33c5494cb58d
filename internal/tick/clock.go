// Package tick provides the discrete simulation clock. All rate windows,
// respawn deadlines and the game loop derive tick numbers from one Clock so
// a single time source orders every subsystem.
package tick

import "time"

// Clock converts wall-clock time into discrete tick numbers.
// currentTick(t) = floor(t / tickDuration). The zero value is unusable;
// construct with NewClock.
type Clock struct {
	duration time.Duration
	start    time.Time // monotonic anchor
}

func NewClock(duration time.Duration) *Clock {
	return &Clock{duration: duration, start: time.Now()}
}

// Duration returns the length of one tick.
func (c *Clock) Duration() time.Duration {
	return c.duration
}

// Current returns the tick number for the current instant. time.Since uses
// the monotonic reading, so the counter never goes backwards within a process.
func (c *Clock) Current() int64 {
	return int64(time.Since(c.start) / c.duration)
}

// At returns the tick number a wall-clock millisecond timestamp falls in.
// Used by the action buckets, which are keyed off packet timestamps.
func (c *Clock) At(unixMs int64) int64 {
	if c.duration <= 0 {
		return 0
	}
	return unixMs / int64(c.duration/time.Millisecond)
}

// DeadlineAfter returns the tick at which a delay of d expires, measured
// from the current tick. Delays shorter than one tick still take one tick.
func (c *Clock) DeadlineAfter(d time.Duration) int64 {
	ticks := int64(d / c.duration)
	if ticks < 1 && d > 0 {
		ticks = 1
	}
	return c.Current() + ticks
}
