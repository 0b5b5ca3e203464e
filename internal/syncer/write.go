package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/remote"
	"github.com/desertthunder/carekeep/internal/shared"
)

// Create sends rec to the collaborator and prepends the stored record to the cache. When the
// collaborator is unavailable rec is kept locally under a "local-" id and the current time.
func (c *Collection[T]) Create(ctx context.Context, rec T) (T, error) {
	if err := c.requireSession(ctx); err != nil {
		var zero T
		return zero, err
	}

	saved, err := c.create(ctx, rec)
	c.refresh()
	return saved, err
}

func (c *Collection[T]) create(ctx context.Context, rec T) (T, error) {
	var zero T
	wire, err := remote.Encode(c.ds.Mapping, rec)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	saved, err := c.remoteCreate(ctx, wire)
	online := err == nil
	if err != nil {
		if errors.Is(err, shared.ErrAuthMissing) {
			return zero, err
		}
		saved = rec.WithIdentity(shared.GenerateLocalID(), c.now())
		c.logger.Warn("create not sent, kept locally", "id", saved.ID(), "err", err)
	}

	c.mu.Lock()
	c.cache = append([]T{saved}, c.cache...)
	c.setMode(online)
	err = c.persistLocked()
	c.mu.Unlock()

	c.emit(PhaseCreated, "added "+saved.Title())
	return saved, err
}

func (c *Collection[T]) remoteCreate(ctx context.Context, wire remote.WireRecord) (T, error) {
	var zero T
	resp, err := c.remote.Create(ctx, c.ds.Path, wire)
	if err != nil {
		return zero, err
	}

	saved, err := remote.Decode[T](c.ds.Mapping, resp)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	if saved.ID() == "" {
		return zero, fmt.Errorf("%w: stored record has no id", shared.ErrRemoteUnavailable)
	}
	if saved.CreatedAt().IsZero() {
		saved = saved.WithIdentity(saved.ID(), c.now())
	}
	return saved, nil
}

// Update sends rec to the collaborator and replaces the cached record with the result. When the
// collaborator is unavailable the caller's version replaces the cached one locally. When the
// collaborator reports the record missing the cache is left unchanged and a warning is logged.
//
// The record must already be cached; otherwise the error wraps [shared.ErrNotFound].
func (c *Collection[T]) Update(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := c.requireSession(ctx); err != nil {
		return zero, err
	}

	id := rec.ID()
	current, ok := c.Find(id)
	if !ok {
		return zero, fmt.Errorf("%w: %s %q is not cached", shared.ErrNotFound, c.ds.Name, id)
	}
	if rec.CreatedAt().IsZero() {
		rec = rec.WithIdentity(id, current.CreatedAt())
	}

	wire, err := remote.Encode(c.ds.Mapping, rec)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	saved := rec
	online := false
	resp, err := c.remote.Update(ctx, c.ds.Path, id, wire)
	if err == nil {
		saved, err = remote.Decode[T](c.ds.Mapping, resp)
		if err != nil {
			err = fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
			saved = rec
		}
	}

	switch {
	case err == nil:
		online = true
		if saved.ID() == "" {
			saved = saved.WithIdentity(id, saved.CreatedAt())
		}
		if saved.CreatedAt().IsZero() {
			saved = saved.WithIdentity(saved.ID(), current.CreatedAt())
		}
	case errors.Is(err, shared.ErrAuthMissing):
		return zero, err
	case errors.Is(err, shared.ErrNotFound):
		c.logger.Warn("record missing on remote, cache unchanged", "id", id)

		c.mu.Lock()
		c.setMode(true)
		c.mu.Unlock()

		c.emit(PhaseWarning, fmt.Sprintf("%s %s no longer exists on the server", c.ds.Name, id))
		c.refresh()
		return current, nil
	default:
		c.logger.Warn("update not sent, applied locally", "id", id, "err", err)
	}

	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.cache[i] = saved
	}
	c.setMode(online)
	err = c.persistLocked()
	c.mu.Unlock()

	c.emit(PhaseUpdated, "updated "+saved.Title())
	c.refresh()
	return saved, err
}

// Delete asks the collaborator to delete id, then removes it from the cache and local store
// whatever the remote outcome. Remote failures are logged and not retried.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	online := true
	err := c.remote.Delete(ctx, c.ds.Path, id)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrAuthMissing):
		return err
	case errors.Is(err, shared.ErrNotFound):
		c.logger.Debug("record already gone on remote", "id", id)
	default:
		online = false
		c.logger.Warn("delete not sent, removed locally", "id", id, "err", err)
	}

	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.cache = append(c.cache[:i:i], c.cache[i+1:]...)
	}
	c.setMode(online)
	err = c.persistLocked()
	c.mu.Unlock()

	c.emit(PhaseDeleted, "removed "+id)
	c.refresh()
	return err
}

// CreateFields builds a record from local field values and creates it.
func (c *Collection[T]) CreateFields(ctx context.Context, fields models.Fields) (T, error) {
	rec, err := models.FromFields[T](fields)
	if err != nil {
		return rec, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return c.Create(ctx, rec)
}

// UpdateFields applies patch on top of the cached record id and updates it.
func (c *Collection[T]) UpdateFields(ctx context.Context, id string, patch models.Fields) (T, error) {
	var zero T
	current, ok := c.Find(id)
	if !ok {
		return zero, fmt.Errorf("%w: %s %q is not cached", shared.ErrNotFound, c.ds.Name, id)
	}

	base, err := models.ToFields(current)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	merged := base.Merge(patch)
	merged["id"] = id
	rec, err := models.FromFields[T](merged)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return c.Update(ctx, rec)
}
