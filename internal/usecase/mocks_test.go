package usecase_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

// MockLeadSource
type MockLeadSource struct {
	mock.Mock
	provider entity.Provider
}

func newMockSource(p entity.Provider) *MockLeadSource {
	return &MockLeadSource{provider: p}
}

func (m *MockLeadSource) Provider() entity.Provider {
	return m.provider
}

func (m *MockLeadSource) Profile() entity.ProviderProfile {
	return entity.ProfileFor(m.provider)
}

func (m *MockLeadSource) CheckConnection(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadSource) Connect(ctx context.Context, creds map[string]string) (usecase.ConnectResult, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(usecase.ConnectResult), args.Error(1)
}

func (m *MockLeadSource) FetchLeads(ctx context.Context) ([]entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadSource) Deactivate(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockLeadSource) Delete(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *entity.ProviderConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

func (m *MockConnectionRepository) FindByAccountAndProvider(ctx context.Context, accountID string, provider entity.Provider) (*entity.ProviderConnection, error) {
	args := m.Called(ctx, accountID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderConnection), args.Error(1)
}

// recorder collects notifications.
type recorder struct {
	mu   sync.Mutex
	sent []entity.Notification
}

func (r *recorder) Notify(_ context.Context, n entity.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recorder) all() []entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Notification(nil), r.sent...)
}

func (r *recorder) last() entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.sent = nil
	r.mu.Unlock()
}

// zohoLeads builds n Zoho leads named Lead0..Lead(n-1) with ids z0..z(n-1).
func zohoLeads(n int) []entity.Lead {
	leads := make([]entity.Lead, n)
	for i := range leads {
		leads[i] = entity.NewLead(i, "id", map[string]any{
			"id":           fmt.Sprintf("z%d", i),
			"First_Name":   fmt.Sprintf("Lead%d", i),
			"Last_Name":    "Doe",
			"Email":        fmt.Sprintf("lead%d@example.com", i),
			"Phone":        fmt.Sprintf("+55119999900%02d", i),
			"Created_Time": fmt.Sprintf("2024-03-%02dT10:00:00Z", i+1),
		})
	}
	return leads
}
