package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/logging"
	"github.com/km-arc/go-scoped/framework/providers"
	"github.com/km-arc/go-scoped/framework/routing"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
var ShutdownTimeout = 10 * time.Second

// Application is the top-level application container.
// It embeds the component Container so user code can call
// container.Make[T](ctx, app.Container) and friends directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Logger    zerolog.Logger
	Router    *routing.Router
}

// Option customises New.
type Option func(*options)

type options struct {
	logger    *zerolog.Logger
	providers []container.ServiceProvider
}

// WithLogger overrides the logger built from cfg.Log.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithProviders registers providers after the framework ones.
func WithProviders(p ...container.ServiceProvider) Option {
	return func(o *options) { o.providers = append(o.providers, p...) }
}

// New creates the application and registers the framework providers
// followed by any given ones. Providers are not booted yet.
//
//	application, err := app.New(config.Load(), app.WithProviders(&components.Provider{}))
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := logging.New(cfg.Log, cfg.App.Name)
	if o.logger != nil {
		logger = *o.logger
	}

	c := container.New(container.WithLogger(logger))
	registry := container.NewProviderRegistry(c)

	// Framework core providers first.
	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.RoutingServiceProvider{},
	}
	for _, p := range append(core, o.providers...) {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	router, err := container.Make[*routing.Router](context.Background(), c)
	if err != nil {
		return nil, fmt.Errorf("resolve router: %w", err)
	}

	return &Application{
		Container: c,
		Providers: registry,
		Config:    cfg,
		Logger:    logger,
		Router:    router,
	}, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Handler boots the application if needed and returns the router.
func (a *Application) Handler() (http.Handler, error) {
	if err := a.Boot(); err != nil {
		return nil, err
	}
	return a.Router, nil
}

// Run listens on APP_PORT until ctx is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.Config.App.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	handler, err := a.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", ln.Addr().String()).
			Str("env", a.Config.App.Env).
			Msg("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
