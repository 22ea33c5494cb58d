package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	n int
}

type otherEvent struct{}

func TestEventsVisibleNextSwap(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(e testEvent) { got = append(got, e.n) })

	Emit(b, testEvent{n: 1})
	Emit(b, testEvent{n: 2})

	// Nothing delivers until the buffers rotate.
	b.DispatchAll()
	assert.Empty(t, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)

	// A second swap clears the delivered batch.
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)
}

func TestHandlersAreTypeScoped(t *testing.T) {
	b := NewBus()
	var testCount, otherCount int
	Subscribe(b, func(testEvent) { testCount++ })
	Subscribe(b, func(otherEvent) { otherCount++ })

	Emit(b, testEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, testCount)
	assert.Equal(t, 0, otherCount)
}

func TestMultipleHandlersPerType(t *testing.T) {
	b := NewBus()
	var a, c int
	Subscribe(b, func(testEvent) { a++ })
	Subscribe(b, func(testEvent) { c++ })

	Emit(b, testEvent{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, c)
}

func TestEmitDuringDispatchLandsNextTick(t *testing.T) {
	b := NewBus()
	var chained int
	Subscribe(b, func(e testEvent) {
		if e.n == 1 {
			Emit(b, testEvent{n: 2})
		} else {
			chained++
		}
	})

	Emit(b, testEvent{n: 1})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 0, chained)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, chained)
}
