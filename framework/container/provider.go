package container

import "fmt"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups component declarations.
//
// Register declares types and dependency fields. Boot runs after every
// provider has registered, so it may build singletons that depend on types
// declared elsewhere.
//
//	type LoggingProvider struct{ container.BaseProvider }
//
//	func (p *LoggingProvider) Register(c *container.Container) error {
//	    return container.Declare(c, container.Singleton, newLogger)
//	}
type ServiceProvider interface {
	Register(c *Container) error
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers providers once each and boots them in order.
type ProviderRegistry struct {
	c          *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register calls provider.Register; a provider already seen is ignored.
// Providers added after Boot are booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	if err := provider.Register(r.c); err != nil {
		return fmt.Errorf("register %T: %w", provider, err)
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)

	r.c.logger.Debug().Str("provider", fmt.Sprintf("%T", provider)).Msg("provider registered")

	if r.booted {
		if err := provider.Boot(r.c); err != nil {
			return fmt.Errorf("boot %T: %w", provider, err)
		}
	}
	return nil
}

// Boot calls Boot on every registered provider. Second and later calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := provider.Boot(r.c); err != nil {
			return fmt.Errorf("boot %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true once Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
