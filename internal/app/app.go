// Package app wires all papercast subsystems into a running HTTP server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject replacements via functional options (WithPodcastStore,
// WithMetrics). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/papercast-dev/papercast/internal/api"
	"github.com/papercast-dev/papercast/internal/auth"
	"github.com/papercast-dev/papercast/internal/config"
	"github.com/papercast-dev/papercast/internal/health"
	"github.com/papercast-dev/papercast/internal/observe"
	"github.com/papercast-dev/papercast/internal/pipeline"
	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/internal/progress"
	"github.com/papercast-dev/papercast/internal/prompts"
	"github.com/papercast-dev/papercast/internal/script"
	"github.com/papercast-dev/papercast/pkg/audio"
	"github.com/papercast-dev/papercast/pkg/provider/avatar"
	"github.com/papercast-dev/papercast/pkg/provider/image"
	"github.com/papercast-dev/papercast/pkg/provider/llm"
	"github.com/papercast-dev/papercast/pkg/provider/tts"
)

// shutdownTimeout bounds the HTTP server drain during Run teardown.
const shutdownTimeout = 10 * time.Second

// Providers holds one interface value per provider slot. LLM and TTS are
// required; Image and Avatar are optional and their endpoints answer 503 when
// nil. Populated by main.go via the config registry.
type Providers struct {
	LLM    llm.Provider
	TTS    tts.Provider
	Image  image.Provider
	Avatar avatar.Provider
}

// App owns all subsystem lifetimes and serves the papercast HTTP API.
type App struct {
	cfg       *config.Config
	providers *Providers

	metrics  *observe.Metrics
	podcasts podcast.Store
	authSvc  *auth.Service
	server   *api.Server
	handler  http.Handler

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithPodcastStore injects a podcast store instead of creating one from config.
func WithPodcastStore(s podcast.Store) Option {
	return func(a *App) { a.podcasts = s }
}

// WithMetrics injects a metrics bundle instead of building one from the
// global meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go (populated via the config registry). New performs all
// initialisation synchronously: store setup, auth service, prompt library,
// script generator, render pipeline, and the HTTP handler tree.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil || providers.LLM == nil {
		return nil, errors.New("app: an LLM provider is required")
	}
	if providers.TTS == nil {
		return nil, errors.New("app: a TTS provider is required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
	}
	for _, o := range opts {
		o(a)
	}

	if a.metrics == nil {
		m, err := observe.NewMetrics(otel.GetMeterProvider())
		if err != nil {
			return nil, fmt.Errorf("app: init metrics: %w", err)
		}
		a.metrics = m
	}

	if err := a.initStores(ctx); err != nil {
		return nil, fmt.Errorf("app: init stores: %w", err)
	}

	if err := a.initStaticDirs(); err != nil {
		return nil, fmt.Errorf("app: init static dirs: %w", err)
	}

	users := auth.NewUserStore(filepath.Join(cfg.Storage.DataDir, "users.json"))
	svc, err := auth.NewService(users, cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("app: init auth: %w", err)
	}
	a.authSvc = svc

	library := prompts.NewLibrary(cfg.Prompts.Dir)
	generator := script.NewGenerator(providers.LLM, library,
		script.WithGeneratorMetrics(a.metrics))

	pipe := pipeline.New(providers.TTS, audio.NewWAVConcatenator(),
		pipeline.WithMetrics(a.metrics))

	apiOpts := []api.Option{api.WithStaticDir(cfg.Server.StaticDir)}
	if providers.Image != nil {
		apiOpts = append(apiOpts, api.WithImageProvider(providers.Image))
	}
	if providers.Avatar != nil {
		apiOpts = append(apiOpts, api.WithAvatarProvider(providers.Avatar))
	}
	a.server = api.New(svc, generator, pipe, a.podcasts, progress.NewStore(), apiOpts...)

	a.handler = a.buildHandler()
	return a, nil
}

// initStores sets up the podcast store for the configured backend, unless one
// was injected.
func (a *App) initStores(ctx context.Context) error {
	if a.podcasts != nil {
		return nil
	}

	switch a.cfg.Storage.Backend {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, a.cfg.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("ping postgres: %w", err)
		}
		store := podcast.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.podcasts = store
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		slog.Info("using postgres podcast store")

	default:
		if err := os.MkdirAll(a.cfg.Storage.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		a.podcasts = podcast.NewFileStore(filepath.Join(a.cfg.Storage.DataDir, "podcasts.json"))
		slog.Info("using file podcast store", "dir", a.cfg.Storage.DataDir)
	}
	return nil
}

// initStaticDirs ensures the audio and cover directories exist before the
// first render or upload tries to write into them.
func (a *App) initStaticDirs() error {
	for _, sub := range []string{"audio", "covers"} {
		if err := os.MkdirAll(filepath.Join(a.cfg.Server.StaticDir, sub), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// buildHandler assembles the full route tree: API routes, health probes, the
// Prometheus scrape endpoint, all wrapped in the tracing middleware.
func (a *App) buildHandler() http.Handler {
	mux := http.NewServeMux()
	a.server.Register(mux)
	health.New(a.healthCheckers()...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observe.Middleware(a.metrics)(mux)
}

// healthCheckers builds the readiness checks for the wired subsystems.
func (a *App) healthCheckers() []health.Checker {
	return []health.Checker{
		{
			Name: "store",
			Check: func(ctx context.Context) error {
				_, err := a.podcasts.List(ctx)
				return err
			},
		},
		{
			Name: "static",
			Check: func(ctx context.Context) error {
				_, err := os.Stat(a.cfg.Server.StaticDir)
				return err
			},
		},
	}
}

// Handler returns the assembled HTTP handler. Exposed for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests and
// waits for background renders before returning. A nil return means a clean
// shutdown.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("app: serve: %w", err)
	}

	// Let in-flight renders finish writing their output files.
	a.server.Wait()
	return nil
}

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		done := make(chan struct{})
		go func() {
			a.server.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			slog.Warn("shutdown deadline reached while renders were running")
			shutdownErr = ctx.Err()
			return
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
