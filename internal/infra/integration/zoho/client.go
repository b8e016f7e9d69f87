package zoho

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

const (
	statusPath     = "/api/zoho/status"
	connectPath    = "/api/zoho/connect"
	leadsPath      = "/api/zoho/leads"
	deactivatePath = "/api/zoho/leads/deactivate"
)

// Client talks to the backend's Zoho proxy. Zoho connects through OAuth.
type Client struct {
	backend *backend.Client
}

func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

func (c *Client) Provider() entity.Provider {
	return entity.ProviderZoho
}

func (c *Client) Profile() entity.ProviderProfile {
	return entity.ProfileFor(entity.ProviderZoho)
}

func (c *Client) CheckConnection(ctx context.Context) (bool, error) {
	var out backend.StatusResponse
	if err := c.backend.Do(ctx, http.MethodGet, statusPath, nil, &out); err != nil {
		return false, err
	}
	return out.Connected, nil
}

// Connect ignores creds: the backend answers with the consent URL.
func (c *Client) Connect(ctx context.Context, _ map[string]string) (usecase.ConnectResult, error) {
	var out connectResponse
	if err := c.backend.Do(ctx, http.MethodGet, connectPath, nil, &out); err != nil {
		return usecase.ConnectResult{}, err
	}
	return usecase.ConnectResult{AuthorizationURL: out.AuthURL}, nil
}

func (c *Client) FetchLeads(ctx context.Context) ([]entity.Lead, error) {
	var out leadsResponse
	if err := c.backend.Do(ctx, http.MethodGet, leadsPath, nil, &out); err != nil {
		return nil, err
	}

	idField := c.Profile().IDField
	leads := make([]entity.Lead, len(out.Leads))
	for i, raw := range out.Leads {
		leads[i] = entity.NewLead(i, idField, raw)
	}
	return leads, nil
}

func (c *Client) Deactivate(ctx context.Context, ids []string) error {
	return c.backend.Do(ctx, http.MethodPost, deactivatePath, backend.IDsRequest{IDs: ids}, nil)
}

func (c *Client) Delete(ctx context.Context, ids []string) error {
	return c.backend.Do(ctx, http.MethodDelete, leadsPath, backend.IDsRequest{IDs: ids}, nil)
}
