package movi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moviops/movi/internal/adapters/file"
	"github.com/moviops/movi/internal/adapters/gemini"
	httpAdapter "github.com/moviops/movi/internal/adapters/http"
	"github.com/moviops/movi/internal/adapters/memory"
	redisAdapter "github.com/moviops/movi/internal/adapters/redis"
	"github.com/moviops/movi/internal/config"
	"github.com/moviops/movi/internal/fleet"
	"github.com/moviops/movi/internal/logging"
	"github.com/moviops/movi/internal/metrics"
	"github.com/moviops/movi/internal/retry"
	"github.com/moviops/movi/pkg/agent"
	"github.com/moviops/movi/pkg/operations"
	"github.com/moviops/movi/pkg/persistence/middleware"
	"github.com/moviops/movi/pkg/ports"
	"github.com/moviops/movi/pkg/session"
)

// Version is the movi release version.
var Version = "0.1.0"

// App wires the fleet store, session manager, agent pipeline and HTTP
// handler together from one configuration.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	fleet    *fleet.Store
	sessions *session.Manager
	pipeline *agent.Pipeline
	handler  http.Handler

	closers []func() error
}

// Option overrides a collaborator before wiring.
type Option func(*App, *buildOverrides)

type buildOverrides struct {
	completer    ports.Completer
	comprehender ports.Comprehender
	store        ports.SessionStore
}

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App, _ *buildOverrides) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCompleter injects a language-model backend, replacing the
// GenAI client the configuration would otherwise build.
func WithCompleter(c ports.Completer) Option {
	return func(_ *App, o *buildOverrides) { o.completer = c }
}

// WithComprehender injects a multimodal comprehension backend.
func WithComprehender(c ports.Comprehender) Option {
	return func(_ *App, o *buildOverrides) { o.comprehender = c }
}

// WithSessionStore injects a session store, replacing the configured
// backend.
func WithSessionStore(s ports.SessionStore) Option {
	return func(_ *App, o *buildOverrides) { o.store = s }
}

// New builds the application from configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	app := &App{
		cfg:      cfg,
		logger:   logging.New(cfg.LogLevel(), cfg.Logging.Format),
		registry: prometheus.NewRegistry(),
	}
	overrides := &buildOverrides{}
	for _, opt := range opts {
		opt(app, overrides)
	}

	if dir := filepath.Dir(cfg.Fleet.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create fleet data directory: %w", err)
		}
	}
	fleetStore, err := fleet.Open(cfg.Fleet.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open fleet store: %w", err)
	}
	app.fleet = fleetStore
	app.closers = append(app.closers, fleetStore.Close)

	if cfg.Fleet.Seed {
		if err := fleetStore.Seed(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed fleet store: %w", err)
		}
	}

	managerOpts := []session.Option{
		session.WithLogger(app.logger),
		session.WithTTL(cfg.SessionTTL()),
	}
	sessionStore := overrides.store
	if sessionStore == nil {
		store, locker, closeStore, err := NewSessionStore(cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		sessionStore = store
		app.closers = append(app.closers, closeStore)
		if locker != nil {
			managerOpts = append(managerOpts, session.WithLocker(locker))
		}
	}
	app.sessions = session.NewManager(sessionStore, managerOpts...)

	completer := overrides.completer
	comprehender := overrides.comprehender
	if completer == nil {
		if cfg.LLM.APIKey == "" {
			app.Close()
			return nil, fmt.Errorf("llm.api_key is required (set GEMINI_API_KEY)")
		}
		client, err := gemini.New(ctx, cfg.LLM.APIKey, gemini.WithModel(cfg.LLM.Model))
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("build GenAI client: %w", err)
		}
		completer = client
		if comprehender == nil {
			comprehender = client
		}
	}

	pipelineOpts := []agent.Option{
		agent.WithLogger(app.logger),
		agent.WithMetrics(metrics.New(app.registry)),
		agent.WithCallTimeout(cfg.LLMTimeout()),
		agent.WithRetry(retry.Config{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.RetryInitialDelay(),
			MaxDelay:     cfg.RetryMaxDelay(),
		}),
	}
	if comprehender != nil {
		pipelineOpts = append(pipelineOpts, agent.WithComprehender(comprehender))
	}
	app.pipeline = agent.New(
		app.sessions,
		operations.NewRegistry(fleetStore),
		fleetStore,
		completer,
		pipelineOpts...,
	)

	app.handler = httpAdapter.NewHandler(
		app.pipeline,
		app.sessions,
		app.registry,
		httpAdapter.WithLogger(app.logger),
	)

	return app, nil
}

// NewSessionStore builds the configured session backend with any
// persistence middleware (parameter masking, encryption) applied. The
// locker is non-nil only for backends that support distributed locking.
// The closer releases the backend connection; it never blocks.
func NewSessionStore(cfg *config.Config) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
		closer = func() error { return nil }
	)
	switch cfg.Sessions.Backend {
	case "redis":
		rs := redisAdapter.New(
			cfg.Sessions.RedisAddr,
			cfg.Sessions.RedisPassword,
			cfg.Sessions.RedisDB,
			redisAdapter.WithTTL(cfg.SessionTTL()),
		)
		store = rs
		locker = redisAdapter.NewLocker(rs.Client(), "movi:session:")
		closer = rs.Close
	case "file":
		store = file.New(cfg.Sessions.Directory)
	default:
		store = memory.New()
	}

	var mws []middleware.Middleware
	if len(cfg.Sessions.MaskParams) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Sessions.MaskParams))
	}
	if key := cfg.SessionEncryptionKey(); key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
		}))
	} else if cfg.Sessions.EncryptionKey != "" {
		_ = closer()
		return nil, nil, nil, fmt.Errorf("sessions.encryption_key must be 64 hex characters (AES-256)")
	}
	if len(mws) > 0 {
		store = middleware.Chain(store, mws...)
	}
	return store, locker, closer, nil
}

// Handler returns the HTTP handler for the agent API.
func (a *App) Handler() http.Handler { return a.handler }

// Pipeline returns the agent pipeline.
func (a *App) Pipeline() *agent.Pipeline { return a.pipeline }

// Sessions returns the session manager.
func (a *App) Sessions() *session.Manager { return a.sessions }

// Fleet returns the fleet store.
func (a *App) Fleet() *fleet.Store { return a.fleet }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Sweep prunes expired sessions until ctx is cancelled.
func (a *App) Sweep(ctx context.Context) {
	a.sessions.Sweep(ctx, a.cfg.SweepInterval())
}

// Close releases the stores. Safe to call more than once.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
