package hubspot_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/hubspot"
)

func newClient(t *testing.T, h http.HandlerFunc) *hubspot.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return hubspot.NewClient(backend.NewClient(srv.URL, "", time.Second))
}

func TestConnectReturnsAuthorizeURL(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hubspot/oauth/authorize", r.URL.Path)
		w.Write([]byte(`{"success": true, "url": "https://app.hubspot.com/oauth/authorize?client_id=1"}`))
	})

	res, err := c.Connect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://app.hubspot.com/oauth/authorize?client_id=1", res.AuthorizationURL)
}

func TestFetchLeadsFlattensProperties(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hubspot/leads", r.URL.Path)
		w.Write([]byte(`{"success": true, "leads": [
			{"id": "101", "properties": {"id": "stale", "firstname": "Ana", "email": "ana@example.com", "createdate": "2024-03-05T10:00:00.000Z"}, "createdAt": "2024-01-01T00:00:00Z", "archived": false},
			{"id": "102", "properties": {"firstname": "Bia"}, "createdAt": "2024-02-01T00:00:00Z", "archived": true}
		]}`))
	})

	leads, err := c.FetchLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "101", leads[0].Identifier())
	assert.Equal(t, "Ana", leads[0].Display("firstname"))
	assert.Equal(t, "2024-03-05T10:00:00.000Z", leads[0].Display("createdate"))
	assert.Equal(t, "false", leads[0].Display("archived"))

	assert.Equal(t, "102", leads[1].Identifier())
	assert.Equal(t, "2024-02-01T00:00:00Z", leads[1].Display("createdate"))
	assert.Equal(t, "true", leads[1].Display("archived"))
}

func TestCheckConnectionNegative(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "connected": false}`))
	})

	ok, err := c.CheckConnection(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBulkActionPaths(t *testing.T) {
	var calls []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"success": true}`))
	})

	require.NoError(t, c.Deactivate(context.Background(), []string{"101"}))
	require.NoError(t, c.Delete(context.Background(), []string{"101"}))
	assert.Equal(t, []string{"POST /api/hubspot/leads/deactivate", "DELETE /api/hubspot/leads"}, calls)
}
