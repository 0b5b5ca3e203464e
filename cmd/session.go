package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/localstore"
	"github.com/desertthunder/carekeep/internal/shared"
)

// sessionSaver is implemented by providers that persist sessions, like [auth.FileProvider].
type sessionSaver interface {
	Save(auth.Session) error
	Clear() error
}

// AuthSignup registers an account with the collaborator and saves its session.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	return r.exchange(ctx, cmd, auth.Signup)
}

// AuthLogin signs in with the collaborator and saves the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	return r.exchange(ctx, cmd, auth.Login)
}

type exchangeFunc func(context.Context, *http.Client, string, auth.Credentials) (auth.Session, error)

func (r *Runner) exchange(ctx context.Context, cmd *cli.Command, fn exchangeFunc) error {
	creds := auth.Credentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		Name:     cmd.String("name"),
	}
	if creds.Password == "" {
		return fmt.Errorf("%w: --password (or CAREKEEP_PASSWORD)", shared.ErrMissingArgument)
	}

	session, err := fn(ctx, r.httpClient, r.config.Remote.BaseURL, creds)
	if err != nil {
		return err
	}

	saver, ok := r.authProvider().(sessionSaver)
	if !ok {
		return fmt.Errorf("%w: session provider cannot save", shared.ErrInvalidConfig)
	}
	if err := saver.Save(session); err != nil {
		return err
	}

	r.logger.Info("signed in", "identity", session.Identity)
	return r.writePlain("✓ Signed in as %s\n", session.Identity)
}

// AuthLogout removes the saved session. Cached data stays in its namespace.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	saver, ok := r.authProvider().(sessionSaver)
	if !ok {
		return fmt.Errorf("%w: session provider cannot clear", shared.ErrInvalidConfig)
	}
	if err := saver.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the signed-in identity, its local store namespace and every namespace cached
// on this device.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	namespace := localstore.New(nil, r.config.Storage.Prefix, auth.Identity(r.authProvider())).Namespace()

	session, err := r.authProvider().Session(ctx)
	if errors.Is(err, shared.ErrAuthMissing) {
		r.writePlain("Not signed in (namespace %s)\n", namespace)
		return r.writeDeviceNamespaces()
	}
	if err != nil {
		return err
	}

	r.writePlain("Identity:  %s\n", session.Identity)
	if session.Name != "" {
		r.writePlain("Name:      %s\n", session.Name)
	}
	if !session.Token.Expiry.IsZero() {
		r.writePlain("Expires:   %s\n", session.Token.Expiry.Local().Format("2006-01-02 15:04"))
	}
	r.writePlain("Namespace: %s\n", namespace)
	return r.writeDeviceNamespaces()
}

// writeDeviceNamespaces lists the namespaces with cached data. A store that cannot be opened or
// enumerated is logged and skipped.
func (r *Runner) writeDeviceNamespaces() error {
	store, err := r.store()
	if err != nil {
		r.logger.Debug("skipping device namespaces", "error", err)
		return nil
	}
	namespaces, err := store.Namespaces()
	if err != nil {
		r.logger.Debug("skipping device namespaces", "error", err)
		return nil
	}
	if len(namespaces) == 0 {
		return r.writePlain("On device: none\n")
	}
	return r.writePlain("On device: %s\n", strings.Join(namespaces, ", "))
}
