package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/desertthunder/carekeep/internal/auth"
	"github.com/desertthunder/carekeep/internal/localstore"
	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/remote"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies not injected through [RunnerOpts] are built lazily from the config on first use.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	browse     func(url string) error

	provider auth.Provider
	backend  localstore.Backend
	remote   syncer.Remote

	mu sync.Mutex
	db *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Provider   auth.Provider
	Backend    localstore.Backend
	Remote     syncer.Remote
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: time.Duration(opts.Config.Remote.TimeoutSeconds) * time.Second}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		browse:     shared.OpenURL,
		provider:   opts.Provider,
		backend:    opts.Backend,
		remote:     opts.Remote,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, listCommand, addCommand, editCommand, removeCommand,
		statsCommand, openCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config named by --config and applies --verbose.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.httpClient.Timeout = time.Duration(config.Remote.TimeoutSeconds) * time.Second
	return ctx, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the local database, if one was opened.
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) authProvider() auth.Provider {
	if r.provider == nil {
		r.provider = auth.NewFileProvider(r.config.Auth.SessionPath)
	}
	return r.provider
}

func (r *Runner) database() (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenMigrated(shared.ExpandPath(r.config.Storage.Path), r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLocalStorage, err)
	}
	r.db = db
	return db, nil
}

func (r *Runner) localBackend() (localstore.Backend, error) {
	if r.backend != nil {
		return r.backend, nil
	}
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	r.backend = localstore.NewSQLiteBackend(db)
	return r.backend, nil
}

func (r *Runner) store() (*localstore.Store, error) {
	backend, err := r.localBackend()
	if err != nil {
		return nil, err
	}
	return localstore.New(backend, r.config.Storage.Prefix, auth.Identity(r.authProvider())), nil
}

func (r *Runner) remoteClient() syncer.Remote {
	if r.remote != nil {
		return r.remote
	}

	opts := []remote.Option{remote.WithHTTPClient(r.httpClient)}
	if rps := r.config.Remote.RequestsPerSecond; rps > 0 {
		burst := max(r.config.Remote.Burst, 1)
		opts = append(opts, remote.WithLimiter(rate.NewLimiter(rate.Limit(rps), burst)))
	}
	r.remote = remote.NewClient(r.config.Remote.BaseURL, r.authProvider(), opts...)
	return r.remote
}

// open creates the handle for dataset, wired to the runner's store, remote and session.
func (r *Runner) open(dataset string, events chan<- syncer.Event) (syncer.Handle, error) {
	if !models.IsDataset(dataset) {
		return nil, fmt.Errorf("%w: %q (want one of %v)", shared.ErrUnknownDataset, dataset, models.Datasets)
	}

	store, err := r.store()
	if err != nil {
		return nil, err
	}

	return syncer.Open(dataset, syncer.Options[models.Record]{
		Store:  store,
		Remote: r.remoteClient(),
		Auth:   r.authProvider(),
		Logger: r.logger,
		Events: events,
	})
}

// load opens and loads dataset. Storage failures are logged; the loaded view is still usable.
func (r *Runner) load(ctx context.Context, dataset string) (syncer.Handle, error) {
	h, err := r.open(dataset, nil)
	if err != nil {
		return nil, err
	}
	if err := h.Load(ctx); err != nil {
		if !isStorageError(err) {
			return nil, err
		}
		r.logger.Warn("local storage problem", "dataset", dataset, "error", err)
	}
	if h.Mode() == syncer.ModeOffline {
		r.logger.Warn("working offline, showing saved data", "dataset", dataset)
	}
	return h, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
