package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

// ConnectResult is what a connect endpoint answers: either the provider is
// connected now, or the user must be sent to AuthorizationURL.
type ConnectResult struct {
	Connected        bool   `json:"connected"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
}

// LeadSource is one provider's view of the backend.
type LeadSource interface {
	Provider() entity.Provider
	Profile() entity.ProviderProfile
	CheckConnection(ctx context.Context) (bool, error)
	Connect(ctx context.Context, creds map[string]string) (ConnectResult, error)
	FetchLeads(ctx context.Context) ([]entity.Lead, error)
	Deactivate(ctx context.Context, ids []string) error
	Delete(ctx context.Context, ids []string) error
}

// Notifier is fire-and-forget; implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}

type NotifierFunc func(ctx context.Context, n entity.Notification)

func (f NotifierFunc) Notify(ctx context.Context, n entity.Notification) {
	f(ctx, n)
}
