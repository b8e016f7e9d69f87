package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-leadsync/internal/infra/http/middleware"
)

type IdleSweeper interface {
	SweepIdle(maxIdle time.Duration) int
	Len() int
}

// SessionSweeper closes sessions nobody has touched for maxIdle. Closing a
// session ends its lifetime, so late responses for it are dropped.
type SessionSweeper struct {
	registry     IdleSweeper
	maxIdle      time.Duration
	tickInterval time.Duration
}

func NewSessionSweeper(registry IdleSweeper, maxIdle, tickInterval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		registry:     registry,
		maxIdle:      maxIdle,
		tickInterval: tickInterval,
	}
}

func (w *SessionSweeper) Start(ctx context.Context) {
	log.Printf("🕒 Session sweeper started (idle ttl %s)", w.maxIdle)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Session sweeper stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionSweeper) sweep() int {
	n := w.registry.SweepIdle(w.maxIdle)
	if n > 0 {
		log.Printf("🧹 %d idle session(s) closed", n)
		middleware.RecordSessionsSwept(n)
	}
	middleware.SetOpenSessions(w.registry.Len())
	return n
}
