package usecase

import "sync/atomic"

// Lifetime tags asynchronous work with the epoch it started in. A result is
// applied only if its epoch is still current when it comes back.
type Lifetime struct {
	epoch  atomic.Uint64
	closed atomic.Bool
}

type Epoch uint64

func NewLifetime() *Lifetime {
	return &Lifetime{}
}

func (l *Lifetime) Capture() Epoch {
	return Epoch(l.epoch.Load())
}

func (l *Lifetime) Current(e Epoch) bool {
	return !l.closed.Load() && Epoch(l.epoch.Load()) == e
}

func (l *Lifetime) End() {
	l.closed.Store(true)
	l.epoch.Add(1)
}

func (l *Lifetime) Ended() bool {
	return l.closed.Load()
}
