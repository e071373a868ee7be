package providers

import (
	"context"

	"github.com/km-arc/go-scoped/framework/config"
	"github.com/km-arc/go-scoped/framework/container"
	"github.com/km-arc/go-scoped/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider declares *config.Config and the cached
// *config.Repository as singletons.
//
// When Config is nil the configuration is read through the Repository the
// first time it is made. EnvFiles default to ".env".
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) error {
	cfg, envFiles := p.Config, p.EnvFiles
	err := container.Declare(c, container.Singleton, func(context.Context, ...any) (*config.Repository, error) {
		return config.NewRepository(envFiles...), nil
	})
	if err != nil {
		return err
	}
	return container.Declare(c, container.Singleton, func(ctx context.Context, _ ...any) (*config.Config, error) {
		if cfg != nil {
			return cfg, nil
		}
		repo, err := container.Make[*config.Repository](ctx, c)
		if err != nil {
			return nil, err
		}
		return config.FromRepository(repo), nil
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider declares the HTTP router as a singleton. The router
// logs through the container's logger.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(c *container.Container) error {
	return container.Declare(c, container.Singleton, func(context.Context, ...any) (*routing.Router, error) {
		return routing.New(c.Logger()), nil
	})
}
