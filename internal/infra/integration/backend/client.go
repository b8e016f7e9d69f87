package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xavierca1/ligue-leadsync/internal/entity"
)

// Client is the single request function every provider adapter goes
// through. It knows the {success, message|detail} envelope and nothing
// about providers.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type Envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (e Envelope) reason() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Detail != "" {
		return e.Detail
	}
	return "no reason given"
}

// Do sends body as JSON and, when out is not nil, decodes the whole response
// body into it. Transport failures wrap entity.ErrNetwork; success:false or a
// non-2xx answer wraps entity.ErrProviderRejected.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", entity.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s: %v", entity.ErrNetwork, method, path, err)
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := fmt.Sprintf("status %d", resp.StatusCode)
		if decodeErr == nil && (env.Message != "" || env.Detail != "") {
			reason = env.reason()
		}
		return fmt.Errorf("%w: %s", entity.ErrProviderRejected, reason)
	}
	if decodeErr != nil {
		return fmt.Errorf("%w: malformed response: %v", entity.ErrProviderRejected, decodeErr)
	}
	if env.Success == nil || !*env.Success {
		return fmt.Errorf("%w: %s", entity.ErrProviderRejected, env.reason())
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", entity.ErrProviderRejected, err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
