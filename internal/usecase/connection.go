package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

var transitions = map[entity.ConnectionStatus][]entity.ConnectionStatus{
	entity.StatusUnknown:      {entity.StatusChecking, entity.StatusConnected, entity.StatusDisconnected},
	entity.StatusChecking:     {entity.StatusConnected, entity.StatusDisconnected},
	entity.StatusDisconnected: {entity.StatusChecking, entity.StatusConnected, entity.StatusDisconnected},
	entity.StatusConnected:    {entity.StatusChecking, entity.StatusConnected, entity.StatusDisconnected},
}

func canTransition(from, to entity.ConnectionStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ConnectionMachine tracks whether one provider is connected for one account
// and mediates the credential or OAuth handshake.
type ConnectionMachine struct {
	mu          sync.Mutex
	status      entity.ConnectionStatus
	connectedAt *time.Time
	connecting  bool

	accountID string
	source    LeadSource
	repo      entity.ConnectionRepositoryInterface
	notifier  Notifier
	life      *Lifetime
}

func NewConnectionMachine(
	accountID string,
	source LeadSource,
	repo entity.ConnectionRepositoryInterface,
	notifier Notifier,
	life *Lifetime,
) *ConnectionMachine {
	return &ConnectionMachine{
		status:    entity.StatusUnknown,
		accountID: accountID,
		source:    source,
		repo:      repo,
		notifier:  notifier,
		life:      life,
	}
}

func (m *ConnectionMachine) Status() entity.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *ConnectionMachine) ConnectedAt() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectedAt
}

// Restore loads what was persisted for this account. A stored "connected"
// is informational only: the status stays unknown until a probe settles it.
func (m *ConnectionMachine) Restore(ctx context.Context) {
	if m.repo == nil {
		return
	}
	conn, err := m.repo.FindByAccountAndProvider(ctx, m.accountID, m.source.Provider())
	if err != nil {
		if !errors.Is(err, entity.ErrConnectionNotFound) {
			log.Printf("⚠️ Could not load %s connection for %s: %v", m.source.Provider(), m.accountID, err)
		}
		return
	}
	m.mu.Lock()
	m.connectedAt = conn.ConnectedAt
	m.mu.Unlock()
}

// CheckConnection probes the provider. It never fails: anything other than
// an affirmative answer settles to disconnected.
func (m *ConnectionMachine) CheckConnection(ctx context.Context) entity.ConnectionStatus {
	m.mu.Lock()
	if m.status == entity.StatusChecking {
		m.mu.Unlock()
		return entity.StatusChecking
	}
	m.set(entity.StatusChecking)
	m.mu.Unlock()

	epoch := m.life.Capture()
	ok, err := m.source.CheckConnection(ctx)

	next := entity.StatusDisconnected
	if err == nil && ok {
		next = entity.StatusConnected
	}
	if err != nil {
		log.Printf("⚠️ %s status probe failed: %v", m.source.Provider(), err)
	}

	if !m.life.Current(epoch) {
		return next
	}

	m.mu.Lock()
	m.set(next)
	m.mu.Unlock()
	return next
}

// Connect runs the key-based handshake.
func (m *ConnectionMachine) Connect(ctx context.Context, creds map[string]string) error {
	profile := m.source.Profile()
	if profile.Auth != entity.AuthAPIKey {
		return ErrWrongAuthKind
	}

	// 1. Client-side validation, no request on failure
	if verrs := ValidateCredentials(profile.RequiredCredentials, creds); len(verrs) > 0 {
		err := credentialsInvalid(verrs)
		m.fail(ctx, entity.OpConnect, err)
		return err
	}

	if !m.begin() {
		return ErrBusy
	}
	defer m.end()

	// 2. Round-trip
	epoch := m.life.Capture()
	res, err := m.source.Connect(ctx, creds)
	if !m.life.Current(epoch) {
		return ErrSessionClosed
	}
	if err == nil && !res.Connected {
		err = fmt.Errorf("%w: connection not confirmed", entity.ErrProviderRejected)
	}
	if err != nil {
		err = classify(err, fmt.Sprintf("could not connect to %s", m.source.Provider()))
		m.fail(ctx, entity.OpConnect, err)
		return err
	}

	// 3. Settle and persist
	m.connected(ctx)
	m.notify(ctx, entity.OpConnect, nil, fmt.Sprintf("Connected to %s", m.source.Provider()))
	return nil
}

// BeginOAuth asks the backend for the authorization URL the user must be
// redirected to. The status does not change until CompleteOAuth.
func (m *ConnectionMachine) BeginOAuth(ctx context.Context) (string, error) {
	if m.source.Profile().Auth != entity.AuthOAuth {
		return "", ErrWrongAuthKind
	}
	if !m.begin() {
		return "", ErrBusy
	}
	defer m.end()

	epoch := m.life.Capture()
	res, err := m.source.Connect(ctx, nil)
	if !m.life.Current(epoch) {
		return "", ErrSessionClosed
	}
	if err == nil && res.AuthorizationURL == "" {
		err = fmt.Errorf("%w: no authorization url returned", entity.ErrProviderRejected)
	}
	if err != nil {
		err = classify(err, fmt.Sprintf("could not start %s authorization", m.source.Provider()))
		m.fail(ctx, entity.OpOAuth, err)
		return "", err
	}

	m.notify(ctx, entity.OpOAuth, nil, fmt.Sprintf("Redirecting to %s authorization", m.source.Provider()))
	return res.AuthorizationURL, nil
}

// CompleteOAuth is the step after the redirect comes back. The success
// marker alone is not trusted; a fresh probe decides.
func (m *ConnectionMachine) CompleteOAuth(ctx context.Context, success bool) (entity.ConnectionStatus, error) {
	if m.source.Profile().Auth != entity.AuthOAuth {
		return m.Status(), ErrWrongAuthKind
	}
	if !success {
		err := &DomainError{
			Code:    CodeProviderRejected,
			Message: fmt.Sprintf("%s authorization was not completed", m.source.Provider()),
			Err:     entity.ErrProviderRejected,
		}
		m.fail(ctx, entity.OpOAuth, err)
		return entity.StatusDisconnected, err
	}

	epoch := m.life.Capture()
	status := m.CheckConnection(ctx)
	if !m.life.Current(epoch) {
		return status, ErrSessionClosed
	}
	if status != entity.StatusConnected {
		err := &DomainError{
			Code:    CodeProviderRejected,
			Message: fmt.Sprintf("%s is not connected after authorization", m.source.Provider()),
			Err:     entity.ErrProviderRejected,
		}
		m.notify(ctx, entity.OpOAuth, err, "")
		return status, err
	}

	m.connected(ctx)
	m.notify(ctx, entity.OpOAuth, nil, fmt.Sprintf("Connected to %s", m.source.Provider()))
	return status, nil
}

func (m *ConnectionMachine) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connecting || m.status == entity.StatusChecking {
		return false
	}
	m.connecting = true
	return true
}

func (m *ConnectionMachine) end() {
	m.mu.Lock()
	m.connecting = false
	m.mu.Unlock()
}

// set must be called with mu held.
func (m *ConnectionMachine) set(next entity.ConnectionStatus) {
	if !canTransition(m.status, next) {
		log.Printf("⚠️ Ignoring %s transition %s -> %s", m.source.Provider(), m.status, next)
		return
	}
	m.status = next
}

func (m *ConnectionMachine) connected(ctx context.Context) {
	now := time.Now().UTC()

	m.mu.Lock()
	m.set(entity.StatusConnected)
	m.connectedAt = &now
	m.mu.Unlock()

	if m.repo == nil {
		return
	}
	conn := &entity.ProviderConnection{
		AccountID:   m.accountID,
		Provider:    m.source.Provider(),
		Status:      entity.StatusConnected,
		ConnectedAt: &now,
		UpdatedAt:   now,
	}
	if err := m.repo.Save(ctx, conn); err != nil {
		log.Printf("⚠️ %s connected but could not be persisted: %v", m.source.Provider(), err)
	}
}

func (m *ConnectionMachine) fail(ctx context.Context, op entity.Operation, err error) {
	m.mu.Lock()
	if m.status != entity.StatusChecking {
		m.set(entity.StatusDisconnected)
	}
	m.mu.Unlock()
	m.notify(ctx, op, err, "")
}

func (m *ConnectionMachine) notify(ctx context.Context, op entity.Operation, err error, msg string) {
	n := outcome(m.accountID, m.source.Provider(), op, err, msg)
	m.notifier.Notify(ctx, n)
}

// classify maps an adapter error onto the failure taxonomy.
func classify(err error, what string) error {
	if errors.Is(err, entity.ErrProviderRejected) {
		return &DomainError{Code: CodeProviderRejected, Message: fmt.Sprintf("%s: %v", what, err), Err: err}
	}
	return &TechnicalError{Code: CodeNetworkError, Message: fmt.Sprintf("%s: %v", what, err), Err: err}
}

func outcome(accountID string, provider entity.Provider, op entity.Operation, err error, msg string) entity.Notification {
	if err != nil {
		return entity.NewNotification(accountID, provider, op, false, ErrorCode(err), err.Error())
	}
	return entity.NewNotification(accountID, provider, op, true, "", msg)
}
