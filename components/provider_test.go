package components_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-scoped/components"
	"github.com/km-arc/go-scoped/components/auth"
	"github.com/km-arc/go-scoped/components/greeting"
	"github.com/km-arc/go-scoped/components/logger"
	"github.com/km-arc/go-scoped/framework/container"
)

func TestProvider_DeclaresAndBoots(t *testing.T) {
	c := container.New(container.WithLogger(zerolog.Nop()))
	registry := container.NewProviderRegistry(c)
	if err := registry.Register(&components.Provider{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	scopes := map[string]container.Scope{}
	for _, d := range c.Declarations() {
		scopes[d.Type.String()] = d.Scope
	}
	want := map[string]container.Scope{
		"*logger.Logger":    container.Singleton,
		"*auth.UserContext": container.Request,
		"*greeting.Greeter": container.Prototype,
	}
	for typ, scope := range want {
		if scopes[typ] != scope {
			t.Errorf("%s: got %v want %v", typ, scopes[typ], scope)
		}
	}

	if err := registry.Boot(); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	ctx := context.Background()
	for _, q := range []string{container.Default, logger.Audit} {
		if _, ok := container.Lookup[*logger.Logger](ctx, c, q); !ok {
			t.Errorf("logger %q should exist after Boot", q)
		}
	}

	g := container.MustMake[*greeting.Greeter](ctx, c)
	if g.Log == nil {
		t.Error("greeter should be wired after Boot")
	}
	if _, ok := auth.Current(ctx, c); ok {
		t.Error("no user outside a request")
	}
}
