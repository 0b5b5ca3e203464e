package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"golang.org/x/time/rate"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/shared"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient(t *testing.T) {
	provider := auth.NewStatic("rose@example.com", "tok")

	t.Run("FetchAll sends bearer token", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("expected json content type, got %q", got)
			}
			if r.Method != http.MethodGet || r.URL.Path != "/api/journals" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			writeJSON(w, http.StatusOK, map[string]any{"records": []map[string]any{{"id": 1, "title": "a"}}})
		})

		c := NewClient(server.URL+"/api/", provider, WithHTTPClient(server.Client()))
		records, err := c.FetchAll(context.Background(), "/journals")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 1 || records[0]["title"] != "a" {
			t.Errorf("unexpected records: %v", records)
		}
	})

	t.Run("FetchAll empty body", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{})
		})

		records, err := NewClient(server.URL, provider).FetchAll(context.Background(), "/journals")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected empty slice, got %v", records)
		}
	})

	t.Run("Create", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			var body WireRecord
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("bad body: %v", err)
			}
			body["id"] = 99
			writeJSON(w, http.StatusCreated, map[string]any{"record": body})
		})

		rec, err := NewClient(server.URL, provider).Create(context.Background(), "/journals", WireRecord{"title": "x"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if rec["id"] != json.Number("99") || rec["title"] != "x" {
			t.Errorf("unexpected record: %v", rec)
		}
	})

	t.Run("Update path and 404", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/journals/42" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		})

		_, err := NewClient(server.URL, provider).Update(context.Background(), "/journals", "42", WireRecord{})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Error("404 should not be reported as unavailable")
		}
	})

	t.Run("Delete 404", func(t *testing.T) {
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := NewClient(server.URL, provider).Delete(context.Background(), "/journals", "42")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Failures are unavailable", func(t *testing.T) {
		fetch := func(c *Client) error {
			_, err := c.FetchAll(context.Background(), "/x")
			return err
		}
		create := func(c *Client) error {
			_, err := c.Create(context.Background(), "/x", WireRecord{})
			return err
		}
		remove := func(c *Client) error {
			return c.Delete(context.Background(), "/x", "1")
		}

		tests := []struct {
			name   string
			status int
			body   string
			call   func(c *Client) error
		}{
			{"500 on fetch", 500, `{"error":"boom"}`, fetch},
			{"401 on fetch", 401, `{"error":"expired"}`, fetch},
			{"404 on fetch", 404, ``, fetch},
			{"401 on delete", 401, ``, remove},
			{"bad json", 200, `{"records": [`, fetch},
			{"create without record", 201, `{}`, create},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
				})

				if err := tt.call(NewClient(server.URL, provider)); !errors.Is(err, shared.ErrRemoteUnavailable) {
					t.Errorf("expected ErrRemoteUnavailable, got %v", err)
				}
			})
		}
	})

	t.Run("Network error", func(t *testing.T) {
		client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})}
		_, err := NewClient("http://collaborator", provider, WithHTTPClient(client)).FetchAll(context.Background(), "/x")
		if !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
	})

	t.Run("Missing session", func(t *testing.T) {
		var hits atomic.Int32
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		})

		_, err := NewClient(server.URL, &auth.Static{}).FetchAll(context.Background(), "/x")
		if !errors.Is(err, shared.ErrAuthMissing) {
			t.Errorf("expected ErrAuthMissing, got %v", err)
		}
		if hits.Load() != 0 {
			t.Error("no request should be sent without a session")
		}
	})

	t.Run("Limiter failure", func(t *testing.T) {
		var hits atomic.Int32
		server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		})

		c := NewClient(server.URL, provider, WithLimiter(rate.NewLimiter(rate.Limit(1), 0)))
		if _, err := c.FetchAll(context.Background(), "/x"); !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Errorf("expected ErrRemoteUnavailable, got %v", err)
		}
		if hits.Load() != 0 {
			t.Error("throttled request should not reach the server")
		}
	})
}
