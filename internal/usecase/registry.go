package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

// SourceFactory returns the adapter for a provider.
type SourceFactory func(provider entity.Provider) (LeadSource, error)

// SessionRegistry keeps the open sessions by id. Sessions are never shared
// between providers or accounts.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*SyncSession

	sources  SourceFactory
	repo     entity.ConnectionRepositoryInterface
	notifier Notifier
}

func NewSessionRegistry(sources SourceFactory, repo entity.ConnectionRepositoryInterface, notifier Notifier) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*SyncSession),
		sources:  sources,
		repo:     repo,
		notifier: notifier,
	}
}

// Open creates a session for the account and provider and runs its initial
// probe and fetch.
func (r *SessionRegistry) Open(ctx context.Context, accountID string, provider entity.Provider) (*SyncSession, SessionState, error) {
	source, err := r.sources(provider)
	if err != nil {
		return nil, SessionState{}, err
	}

	s := NewSyncSession(uuid.New().String(), accountID, source, r.repo, r.notifier)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()

	state := s.Open(ctx)
	log.Printf("🆕 Session %s opened (%s, account %s): %s", s.ID(), provider, accountID, state.Status)
	return s, state, nil
}

func (r *SessionRegistry) Get(id string) (*SyncSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *SessionRegistry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// SweepIdle closes sessions unused for longer than maxIdle and returns how
// many were closed.
func (r *SessionRegistry) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*SyncSession
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
