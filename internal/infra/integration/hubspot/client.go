package hubspot

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

const (
	statusPath     = "/api/hubspot/status"
	authorizePath  = "/api/hubspot/oauth/authorize"
	leadsPath      = "/api/hubspot/leads"
	deactivatePath = "/api/hubspot/leads/deactivate"
)

type Client struct {
	backend *backend.Client
}

func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

func (c *Client) Provider() entity.Provider {
	return entity.ProviderHubSpot
}

func (c *Client) Profile() entity.ProviderProfile {
	return entity.ProfileFor(entity.ProviderHubSpot)
}

func (c *Client) CheckConnection(ctx context.Context) (bool, error) {
	var out backend.StatusResponse
	if err := c.backend.Do(ctx, http.MethodGet, statusPath, nil, &out); err != nil {
		return false, err
	}
	return out.Connected, nil
}

func (c *Client) Connect(ctx context.Context, _ map[string]string) (usecase.ConnectResult, error) {
	var out authorizeResponse
	if err := c.backend.Do(ctx, http.MethodGet, authorizePath, nil, &out); err != nil {
		return usecase.ConnectResult{}, err
	}
	return usecase.ConnectResult{AuthorizationURL: out.URL}, nil
}

// FetchLeads flattens each object's properties into the lead fields. The
// object id wins over any "id" property; createdAt fills in a missing
// createdate.
func (c *Client) FetchLeads(ctx context.Context) ([]entity.Lead, error) {
	var out leadsResponse
	if err := c.backend.Do(ctx, http.MethodGet, leadsPath, nil, &out); err != nil {
		return nil, err
	}

	profile := c.Profile()
	leads := make([]entity.Lead, len(out.Leads))
	for i, obj := range out.Leads {
		fields := make(map[string]any, len(obj.Properties)+3)
		for k, v := range obj.Properties {
			fields[k] = v
		}
		if obj.ID != "" {
			fields[profile.IDField] = obj.ID
		}
		if _, ok := fields[profile.TimestampField]; !ok && obj.CreatedAt != "" {
			fields[profile.TimestampField] = obj.CreatedAt
		}
		fields["archived"] = obj.Archived
		leads[i] = entity.NewLead(i, profile.IDField, fields)
	}
	return leads, nil
}

func (c *Client) Deactivate(ctx context.Context, ids []string) error {
	return c.backend.Do(ctx, http.MethodPost, deactivatePath, backend.IDsRequest{IDs: ids}, nil)
}

func (c *Client) Delete(ctx context.Context, ids []string) error {
	return c.backend.Do(ctx, http.MethodDelete, leadsPath, backend.IDsRequest{IDs: ids}, nil)
}
