// Package auth supplies the session identity and bearer token consumed by the sync layer.
//
// The sync layer never authenticates anyone itself; it asks a [Provider] for the current
// [Session] and treats [shared.ErrAuthMissing] as a precondition failure.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/carekeep/internal/shared"
)

// Session is the signed-in identity and its bearer token.
type Session struct {
	Identity string
	Name     string
	Token    *oauth2.Token
}

// Valid reports whether the session has both an identity and an access token.
func (s Session) Valid() bool {
	return s.Identity != "" && s.Token != nil && s.Token.AccessToken != ""
}

// Provider returns the current session, or an error wrapping [shared.ErrAuthMissing].
type Provider interface {
	Session(ctx context.Context) (Session, error)
}

// Static is a [Provider] returning a fixed session. The zero value has no session.
type Static struct {
	S Session
}

// NewStatic creates a [Static] provider for identity with a bearer token.
func NewStatic(identity, token string) *Static {
	return &Static{S: Session{Identity: identity, Token: &oauth2.Token{AccessToken: token, TokenType: "Bearer"}}}
}

func (p *Static) Session(context.Context) (Session, error) {
	if p == nil || !p.S.Valid() {
		return Session{}, shared.ErrAuthMissing
	}
	return p.S, nil
}

// Identity adapts p into an identity resolver for the local store. It returns "" without a session.
func Identity(p Provider) func() string {
	return func() string {
		s, err := p.Session(context.Background())
		if err != nil {
			return ""
		}
		return s.Identity
	}
}

type sessionFile struct {
	Identity    string    `json:"identity"`
	Name        string    `json:"name,omitempty"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

// FileProvider persists the session as JSON at Path.
type FileProvider struct {
	Path string
}

// NewFileProvider creates a [FileProvider] for path, expanding a leading "~/".
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: shared.ExpandPath(path)}
}

// Session reads the session file. A missing or empty file is [shared.ErrAuthMissing].
func (p *FileProvider) Session(context.Context) (Session, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, shared.ErrAuthMissing
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Session{}, fmt.Errorf("%w: corrupt session file: %v", shared.ErrAuthMissing, err)
	}

	s := Session{
		Identity: f.Identity,
		Name:     f.Name,
		Token:    &oauth2.Token{AccessToken: f.AccessToken, TokenType: f.TokenType, Expiry: f.Expiry},
	}
	if !s.Valid() {
		return Session{}, shared.ErrAuthMissing
	}
	return s, nil
}

// Save writes s to the session file with owner-only permissions.
func (p *FileProvider) Save(s Session) error {
	if !s.Valid() {
		return fmt.Errorf("%w: session requires identity and token", shared.ErrInvalidArgument)
	}

	if err := os.MkdirAll(filepath.Dir(p.Path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	f := sessionFile{
		Identity:    s.Identity,
		Name:        s.Name,
		AccessToken: s.Token.AccessToken,
		TokenType:   s.Token.TokenType,
		Expiry:      s.Token.Expiry,
	}
	data, err := shared.MarshalJSON(f, true)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(p.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing without a session is not an error.
func (p *FileProvider) Clear() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
