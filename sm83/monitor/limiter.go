package monitor

import "time"

// CPUFrequency is the DMG clock in ticks per second.
const CPUFrequency = 4194304

// FrameDuration returns the wall time of one frame at hardware speed.
func FrameDuration() time.Duration {
	return time.Second * TicksPerFrame / CPUFrequency
}

// Limiter paces a running monitor.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due.
	WaitForNextFrame()
	// Reset restarts pacing, after a pause.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits.
func NewNoOpLimiter() Limiter { return noOpLimiter{} }

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// TickerLimiter paces frames off a time.Ticker.
type TickerLimiter struct {
	ticker *time.Ticker
}

// NewTickerLimiter returns a limiter ticking at hardware frame rate. Stop it
// when done.
func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() { <-t.ticker.C }

func (t *TickerLimiter) Reset() { t.ticker.Reset(FrameDuration()) }

func (t *TickerLimiter) Stop() { t.ticker.Stop() }
