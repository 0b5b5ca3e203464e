package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/localstore"
	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/remote"
	"github.com/desertthunder/carekeep/internal/shared"
)

// Remote is the collaborator client used by a [Collection]. [remote.Client] implements it.
type Remote interface {
	FetchAll(ctx context.Context, path string) ([]remote.WireRecord, error)
	Create(ctx context.Context, path string, rec remote.WireRecord) (remote.WireRecord, error)
	Update(ctx context.Context, path, id string, rec remote.WireRecord) (remote.WireRecord, error)
	Delete(ctx context.Context, path, id string) error
}

// Dataset configures a [Collection] for one record type.
type Dataset[T models.Entity[T]] struct {
	Name     string         // Local store key and display name
	Path     string         // Collaborator path, e.g. "/memories"
	Mapping  remote.Mapping // Local to wire field names
	Defaults []T            // Records seeded for a new identity
}

// SeededKey is the local store name of the dataset's seed flag.
func (d Dataset[T]) SeededKey() string {
	return SeededKeyFor(d.Name)
}

// SeededKeyFor returns the seed flag name of the dataset called name.
func SeededKeyFor(name string) string {
	return name + ".seeded"
}

// Options holds the collaborators of a [Collection].
type Options[T any] struct {
	Store  *localstore.Store
	Remote Remote
	Auth   auth.Provider
	Logger *log.Logger
	Events chan<- Event
	Render func([]T)
	Now    func() time.Time
}

// Collection is the cache of one dataset for the current identity.
//
// The mutex guards the cache and local store writes only; it is never held across a remote
// call, so two identical mutations issued together are both applied.
type Collection[T models.Entity[T]] struct {
	ds     Dataset[T]
	store  *localstore.Store
	remote Remote
	auth   auth.Provider
	logger *log.Logger
	events chan<- Event
	render func([]T)
	now    func() time.Time

	mu    sync.RWMutex
	cache []T
	mode  Mode
	stats Stats
}

// New creates an empty [Collection]. Call [Collection.Load] before reading it.
func New[T models.Entity[T]](ds Dataset[T], opts Options[T]) *Collection[T] {
	c := &Collection[T]{
		ds:     ds,
		store:  opts.Store,
		remote: opts.Remote,
		auth:   opts.Auth,
		logger: opts.Logger,
		events: opts.Events,
		render: opts.Render,
		now:    opts.Now,
		cache:  []T{},
		mode:   ModeOffline,
	}

	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	c.logger = shared.WithLogger(c.logger, "dataset", ds.Name)

	if c.render == nil {
		c.render = func([]T) {}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Name returns the dataset name.
func (c *Collection[T]) Name() string {
	return c.ds.Name
}

// Load fills the cache from the collaborator, or from the local store when it is unavailable,
// seeds an empty first-time dataset, then renders.
//
// Only [shared.ErrAuthMissing] and [shared.ErrLocalStorage] are returned. After a local storage
// failure the cache still holds the loaded records.
func (c *Collection[T]) Load(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	c.emit(PhaseLoading, "loading "+c.ds.Name)

	var storageErr error
	records, err := c.fetch(ctx)
	switch {
	case err == nil:
		c.mu.Lock()
		c.cache = records
		c.mode = ModeOnline
		storageErr = c.persistLocked()
		c.mu.Unlock()

		c.logger.Debug("loaded from remote", "count", len(records))
		c.emit(PhaseOnline, fmt.Sprintf("synced %d %s", len(records), c.ds.Name))
	case errors.Is(err, shared.ErrAuthMissing):
		return err
	default:
		cached := localstore.Get(c.store, c.ds.Name, []T{})

		c.mu.Lock()
		c.cache = cached
		c.mode = ModeOffline
		c.mu.Unlock()

		c.logger.Warn("remote unavailable, using local cache", "count", len(cached), "err", err)
		c.emit(PhaseOffline, "working offline")
	}

	if err := c.seed(ctx); err != nil {
		storageErr = errors.Join(storageErr, err)
	}

	c.refresh()
	c.emit(PhaseLoaded, fmt.Sprintf("%d %s", c.Len(), c.ds.Name))
	return storageErr
}

func (c *Collection[T]) fetch(ctx context.Context) ([]T, error) {
	wires, err := c.remote.FetchAll(ctx, c.ds.Path)
	if err != nil {
		return nil, err
	}

	records, err := remote.DecodeAll[T](c.ds.Mapping, wires)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	return records, nil
}

// seed creates the dataset defaults once per identity, when the cache is empty.
// The flag is set even when every remote create failed and the seeds were kept locally.
func (c *Collection[T]) seed(ctx context.Context) error {
	if c.Len() > 0 || c.store.Has(c.ds.SeededKey()) {
		return nil
	}

	// create prepends, so walk backwards to leave the cache in declaration order.
	var errs []error
	for i := len(c.ds.Defaults) - 1; i >= 0; i-- {
		if _, err := c.create(ctx, c.ds.Defaults[i]); err != nil {
			if errors.Is(err, shared.ErrAuthMissing) {
				return err
			}
			errs = append(errs, err)
		}
	}

	if err := c.store.Set(c.ds.SeededKey(), true); err != nil {
		errs = append(errs, err)
	}

	c.logger.Info("seeded dataset", "count", len(c.ds.Defaults))
	c.emit(PhaseSeeded, fmt.Sprintf("added %d sample %s", len(c.ds.Defaults), c.ds.Name))
	return errors.Join(errs...)
}

func (c *Collection[T]) requireSession(ctx context.Context) error {
	if c.auth == nil {
		return shared.ErrAuthMissing
	}
	if _, err := c.auth.Session(ctx); err != nil {
		if errors.Is(err, shared.ErrAuthMissing) {
			return err
		}
		return fmt.Errorf("%w: %v", shared.ErrAuthMissing, err)
	}
	return nil
}

// persistLocked writes the cache to the local store. Callers hold c.mu.
func (c *Collection[T]) persistLocked() error {
	if err := c.store.Set(c.ds.Name, c.cache); err != nil {
		c.logger.Error("failed to persist cache", "err", err)
		return err
	}
	return nil
}

func (c *Collection[T]) setMode(online bool) {
	if online {
		c.mode = ModeOnline
	} else {
		c.mode = ModeOffline
	}
}

// refresh recomputes stats from the cache and renders a snapshot.
func (c *Collection[T]) refresh() {
	c.mu.Lock()
	c.stats = ComputeStats(c.cache, c.now())
	snapshot := make([]T, len(c.cache))
	copy(snapshot, c.cache)
	c.mu.Unlock()

	c.render(snapshot)
}

func (c *Collection[T]) emit(phase Phase, msg string) {
	sendEvent(c.events, Event{Dataset: c.ds.Name, Phase: phase, Message: msg, Count: c.Len()})
}

// Len returns the number of cached records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Records returns a copy of the cache, most recent first.
func (c *Collection[T]) Records() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.cache))
	copy(out, c.cache)
	return out
}

// Entries returns the cache as dataset-agnostic records.
func (c *Collection[T]) Entries() []models.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Record, len(c.cache))
	for i, r := range c.cache {
		out[i] = r
	}
	return out
}

// Find returns the cached record with id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return c.cache[i], true
}

func (c *Collection[T]) indexLocked(id string) int {
	for i, r := range c.cache {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// Mode reports whether the last remote call succeeded.
func (c *Collection[T]) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Stats returns the stats computed by the last load or mutation.
func (c *Collection[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
