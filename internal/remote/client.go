// Package remote is the bearer-authenticated REST client for the caregiving collaborator.
//
// Every failure to reach or understand the collaborator wraps [shared.ErrRemoteUnavailable];
// a 404 on update or delete wraps [shared.ErrNotFound] instead, and a missing session wraps
// [shared.ErrAuthMissing]. The client never refreshes tokens or retries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/shared"
)

// Client performs CRUD calls for one collaborator base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       auth.Provider
	limiter    *rate.Limiter
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces [http.DefaultClient]. Timeouts belong on this client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLimiter throttles requests. A limiter wait failure is reported as unavailability.
func WithLimiter(l *rate.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// NewClient creates a [Client] for baseURL using p for bearer tokens.
func NewClient(baseURL string, p auth.Provider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		auth:       p,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type listResponse struct {
	Records []WireRecord `json:"records"`
}

type recordResponse struct {
	Record WireRecord `json:"record"`
}

// FetchAll returns every record at path.
func (c *Client) FetchAll(ctx context.Context, path string) ([]WireRecord, error) {
	var resp listResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Records == nil {
		return []WireRecord{}, nil
	}
	return resp.Records, nil
}

// Create posts rec to path and returns the record as stored by the collaborator.
func (c *Client) Create(ctx context.Context, path string, rec WireRecord) (WireRecord, error) {
	var resp recordResponse
	if err := c.doRequest(ctx, http.MethodPost, path, rec, &resp); err != nil {
		return nil, err
	}
	if resp.Record == nil {
		return nil, fmt.Errorf("%w: response has no record", shared.ErrRemoteUnavailable)
	}
	return resp.Record, nil
}

// Update replaces the record id at path.
func (c *Client) Update(ctx context.Context, path, id string, rec WireRecord) (WireRecord, error) {
	var resp recordResponse
	if err := c.doRequest(ctx, http.MethodPut, recordPath(path, id), rec, &resp); err != nil {
		return nil, err
	}
	if resp.Record == nil {
		return nil, fmt.Errorf("%w: response has no record", shared.ErrRemoteUnavailable)
	}
	return resp.Record, nil
}

// Delete removes the record id at path.
func (c *Client) Delete(ctx context.Context, path, id string) error {
	return c.doRequest(ctx, http.MethodDelete, recordPath(path, id), nil, nil)
}

func recordPath(path, id string) string {
	return strings.TrimRight(path, "/") + "/" + url.PathEscape(id)
}

// doRequest performs an authenticated JSON request against the collaborator.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	session, err := c.auth.Session(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrAuthMissing) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrAuthMissing, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", shared.ErrRemoteUnavailable, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrRemoteUnavailable, err)
	}

	session.Token.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && (method == http.MethodPut || method == http.MethodDelete) {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrRemoteUnavailable, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%w: status %d", shared.ErrRemoteUnavailable, resp.StatusCode)
	}

	if result != nil {
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrRemoteUnavailable, err)
		}
	}

	return nil
}
