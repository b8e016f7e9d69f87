package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

type FetchOptions struct {
	// SkipConnectionCheck is set only right after a connect or OAuth
	// completion has settled the status in the same call chain.
	SkipConnectionCheck bool
}

type SessionState struct {
	ID          string                  `json:"id"`
	AccountID   string                  `json:"account_id"`
	Provider    entity.Provider         `json:"provider"`
	Auth        entity.AuthKind         `json:"auth"`
	Status      entity.ConnectionStatus `json:"status"`
	ConnectedAt *time.Time              `json:"connected_at,omitempty"`
	LeadCount   int                     `json:"lead_count"`
	Criteria    FilterCriteria          `json:"criteria"`
	Selected    []int                   `json:"selected"`
	Pending     *PendingAction          `json:"pending,omitempty"`
	View        View                    `json:"view"`
}

// SyncSession is one provider screen: connection, fetched leads, filter,
// selection and bulk actions for a single account.
type SyncSession struct {
	mu        sync.Mutex
	criteria  FilterCriteria
	selection *SelectionSet
	fetching  bool
	lastUsed  time.Time

	id          string
	accountID   string
	source      LeadSource
	profile     entity.ProviderProfile
	notifier    Notifier
	life        *Lifetime
	machine     *ConnectionMachine
	store       *LeadStore
	coordinator *BulkCoordinator
}

func NewSyncSession(
	id, accountID string,
	source LeadSource,
	repo entity.ConnectionRepositoryInterface,
	notifier Notifier,
) *SyncSession {
	life := NewLifetime()
	store := NewLeadStore()
	return &SyncSession{
		criteria:    DefaultCriteria(),
		selection:   NewSelectionSet(),
		lastUsed:    time.Now(),
		id:          id,
		accountID:   accountID,
		source:      source,
		profile:     source.Profile(),
		notifier:    notifier,
		life:        life,
		machine:     NewConnectionMachine(accountID, source, repo, notifier, life),
		store:       store,
		coordinator: NewBulkCoordinator(accountID, source, store, notifier, life),
	}
}

func (s *SyncSession) ID() string {
	return s.id
}

func (s *SyncSession) Provider() entity.Provider {
	return s.source.Provider()
}

// Open probes the connection and, when connected, loads the leads. The probe
// always finishes before the first fetch starts.
func (s *SyncSession) Open(ctx context.Context) SessionState {
	s.touch()
	s.machine.Restore(ctx)

	if s.machine.CheckConnection(ctx) == entity.StatusConnected {
		if _, err := s.Fetch(ctx, FetchOptions{}); err != nil {
			log.Printf("⚠️ Initial %s fetch for %s failed: %v", s.Provider(), s.accountID, err)
		}
	}
	return s.State()
}

func (s *SyncSession) CheckConnection(ctx context.Context) entity.ConnectionStatus {
	s.touch()
	return s.machine.CheckConnection(ctx)
}

// Connect runs the key-based handshake and then fetches straight away.
func (s *SyncSession) Connect(ctx context.Context, creds map[string]string) error {
	s.touch()
	if err := s.machine.Connect(ctx, creds); err != nil {
		return err
	}
	if _, err := s.Fetch(ctx, FetchOptions{SkipConnectionCheck: true}); err != nil {
		log.Printf("⚠️ %s fetch after connect failed: %v", s.Provider(), err)
	}
	return nil
}

func (s *SyncSession) BeginOAuth(ctx context.Context) (string, error) {
	s.touch()
	return s.machine.BeginOAuth(ctx)
}

// CompleteOAuth handles the return from the provider's consent screen.
func (s *SyncSession) CompleteOAuth(ctx context.Context, success bool) (entity.ConnectionStatus, error) {
	s.touch()
	status, err := s.machine.CompleteOAuth(ctx, success)
	if err != nil {
		return status, err
	}
	if _, err := s.Fetch(ctx, FetchOptions{SkipConnectionCheck: true}); err != nil {
		log.Printf("⚠️ %s fetch after authorization failed: %v", s.Provider(), err)
	}
	return status, nil
}

// Fetch replaces the collection with the provider's current leads. On
// failure the collection is emptied rather than left stale.
func (s *SyncSession) Fetch(ctx context.Context, opts FetchOptions) (int, error) {
	s.touch()

	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return 0, ErrBusy
	}
	if !opts.SkipConnectionCheck && s.machine.Status() != entity.StatusConnected {
		s.mu.Unlock()
		err := &DomainError{
			Code:    CodeNotConnected,
			Message: fmt.Sprintf("%s is not connected", s.Provider()),
		}
		s.notifier.Notify(ctx, outcome(s.accountID, s.Provider(), entity.OpFetch, err, ""))
		return 0, err
	}
	s.fetching = true
	s.mu.Unlock()

	epoch := s.life.Capture()
	leads, err := s.source.FetchLeads(ctx)

	s.mu.Lock()
	s.fetching = false
	if !s.life.Current(epoch) {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	s.selection.Clear()
	s.coordinator.Cancel()
	if err != nil {
		s.store.Clear()
		s.mu.Unlock()

		err = &TechnicalError{
			Code:    CodeFetchFailed,
			Message: fmt.Sprintf("could not fetch %s leads: %v", s.Provider(), err),
			Err:     err,
		}
		log.Printf("❌ %v", err)
		s.notifier.Notify(ctx, outcome(s.accountID, s.Provider(), entity.OpFetch, err, ""))
		return 0, err
	}
	s.store.Replace(leads)
	s.mu.Unlock()

	log.Printf("📥 %s: %d lead(s) fetched for %s", s.Provider(), len(leads), s.accountID)
	msg := fmt.Sprintf("Fetched %d lead(s) from %s", len(leads), s.Provider())
	s.notifier.Notify(ctx, outcome(s.accountID, s.Provider(), entity.OpFetch, nil, msg))
	return len(leads), nil
}

// SetFilter applies the update and returns the new view. A change of page,
// query or date bounds shows different rows, so the selection is cleared.
func (s *SyncSession) SetFilter(u FilterUpdate) View {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.criteria.Apply(u)
	v := BuildView(s.store.Snapshot(), s.profile, next)
	next.Page = v.Page

	if !sameCriteria(next, s.criteria) {
		s.selection.Clear()
	}
	s.criteria = next
	s.selection.Prune(len(v.Items))
	return v
}

func (s *SyncSession) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *SyncSession) Toggle(index int) ([]int, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.viewLocked()
	if err := s.selection.Toggle(index, len(v.Items)); err != nil {
		return s.selection.Indices(), err
	}
	return s.selection.Indices(), nil
}

func (s *SyncSession) SelectAll() []int {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.viewLocked()
	s.selection.SelectAll(len(v.Items))
	return s.selection.Indices()
}

// RequestAction snapshots the selected rows of the current view and opens
// the confirmation step. It returns nil when nothing is selected. The store
// is only replaced under s.mu, so the view and its generation are read
// together and the request is registered before a fetch can land.
func (s *SyncSession) RequestAction(kind ActionKind) (*PendingAction, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	gen := s.store.Generation()
	v := s.viewLocked()
	targets := make([]entity.Lead, 0, s.selection.Len())
	for _, i := range s.selection.Indices() {
		targets = append(targets, v.Items[i])
	}
	return s.coordinator.Request(kind, targets, gen)
}

// Confirm runs the pending action. The selection survives a failure.
func (s *SyncSession) Confirm(ctx context.Context) (ActionResult, error) {
	s.touch()
	res, err := s.coordinator.Confirm(ctx)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	s.selection.Clear()
	s.mu.Unlock()
	return res, nil
}

func (s *SyncSession) Cancel() bool {
	s.touch()
	return s.coordinator.Cancel()
}

// Close ends the session; responses still in flight are discarded.
func (s *SyncSession) Close() {
	s.life.End()
}

func (s *SyncSession) Closed() bool {
	return s.life.Ended()
}

func (s *SyncSession) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *SyncSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		ID:          s.id,
		AccountID:   s.accountID,
		Provider:    s.Provider(),
		Auth:        s.profile.Auth,
		Status:      s.machine.Status(),
		ConnectedAt: s.machine.ConnectedAt(),
		LeadCount:   s.store.Len(),
		Criteria:    s.criteria,
		Selected:    s.selection.Indices(),
		Pending:     s.coordinator.Pending(),
		View:        s.viewLocked(),
	}
}

func (s *SyncSession) viewLocked() View {
	return BuildView(s.store.Snapshot(), s.profile, s.criteria)
}

func (s *SyncSession) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func sameCriteria(a, b FilterCriteria) bool {
	return a.Query == b.Query && a.Page == b.Page && a.PageSize == b.PageSize &&
		sameTime(a.DateFrom, b.DateFrom) && sameTime(a.DateTo, b.DateTo)
}
