package player

import (
	"math"
	"sync"
	"sync/atomic"
)

// Controls is the live handle a session shares with the audio driver for one
// track. Pause and gain are read by the send loop on every frame; Stop tells
// it to bail out early.
type Controls struct {
	stop     chan struct{}
	stopOnce sync.Once
	paused   atomic.Bool
	gainBits atomic.Uint64
}

func NewControls(gain float64) *Controls {
	c := &Controls{stop: make(chan struct{})}
	c.SetGain(gain)
	return c
}

// Stop signals the send loop to end the current track. Safe to call twice.
func (c *Controls) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done returns a channel closed when Stop has been called.
func (c *Controls) Done() <-chan struct{} {
	return c.stop
}

func (c *Controls) SetPaused(v bool) { c.paused.Store(v) }
func (c *Controls) Paused() bool     { return c.paused.Load() }

// SetGain stores the linear volume multiplier applied to PCM samples.
func (c *Controls) SetGain(g float64) {
	if g < 0 {
		g = 0
	}
	c.gainBits.Store(math.Float64bits(g))
}

func (c *Controls) Gain() float64 {
	return math.Float64frombits(c.gainBits.Load())
}
