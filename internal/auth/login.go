package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/carekeep/internal/shared"
)

// Credentials is the body of the collaborator's login and signup endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// TokenResponse is returned by the collaborator after a successful login or signup.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

// Login exchanges credentials for a session at baseURL + "/auth/login".
func Login(ctx context.Context, client *http.Client, baseURL string, c Credentials) (Session, error) {
	return exchange(ctx, client, strings.TrimRight(baseURL, "/")+"/auth/login", c)
}

// Signup registers an account at baseURL + "/auth/signup" and returns its session.
func Signup(ctx context.Context, client *http.Client, baseURL string, c Credentials) (Session, error) {
	return exchange(ctx, client, strings.TrimRight(baseURL, "/")+"/auth/signup", c)
}

func exchange(ctx context.Context, client *http.Client, url string, c Credentials) (Session, error) {
	if c.Email == "" || c.Password == "" {
		return Session{}, fmt.Errorf("%w: email and password", shared.ErrMissingArgument)
	}
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(c)
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Session{}, shared.ErrInvalidCredentials
	case resp.StatusCode == http.StatusConflict:
		return Session{}, fmt.Errorf("%w: account already exists", shared.ErrInvalidArgument)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Session{}, fmt.Errorf("%w: %w: status %d", shared.ErrAuthFailed, shared.ErrRemoteUnavailable, resp.StatusCode)
	}

	var tr TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Session{}, fmt.Errorf("%w: failed to decode token response: %v", shared.ErrRemoteUnavailable, err)
	}

	identity := tr.User.Email
	if identity == "" {
		identity = c.Email
	}

	s := Session{
		Identity: identity,
		Name:     tr.User.Name,
		Token:    &oauth2.Token{AccessToken: tr.Token, TokenType: "Bearer", Expiry: tr.ExpiresAt},
	}
	if !s.Valid() {
		return Session{}, fmt.Errorf("%w: empty token", shared.ErrAuthFailed)
	}
	return s, nil
}
