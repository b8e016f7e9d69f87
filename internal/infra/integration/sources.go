package integration

import (
	"fmt"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/ghl"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/hubspot"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/zoho"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

// Sources returns the adapter factory used by the session registry. All
// providers share one backend client.
func Sources(b *backend.Client) usecase.SourceFactory {
	return func(p entity.Provider) (usecase.LeadSource, error) {
		switch p {
		case entity.ProviderZoho:
			return zoho.NewClient(b), nil
		case entity.ProviderHubSpot:
			return hubspot.NewClient(b), nil
		case entity.ProviderGHL:
			return ghl.NewClient(b), nil
		}
		return nil, fmt.Errorf("no adapter for provider %q", p)
	}
}
