package migration

import "sync/atomic"

// Signal is a one-shot stop flag with a single writer and any number of
// readers. The engine polls it at chunk boundaries; no wakeup is delivered,
// polling at chunk granularity is the designed latency bound.
type Signal struct {
	stopped atomic.Bool
}

func NewSignal() *Signal {
	return &Signal{}
}

// Stop raises the flag. Safe to call more than once.
func (s *Signal) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop has been called.
func (s *Signal) Stopped() bool {
	return s.stopped.Load()
}
