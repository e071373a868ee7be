// Package components declares the example domain: a logger per channel, the
// request's user and a greeter.
package components

import (
	"context"

	"github.com/km-arc/go-scoped/components/auth"
	"github.com/km-arc/go-scoped/components/greeting"
	"github.com/km-arc/go-scoped/components/logger"
	"github.com/km-arc/go-scoped/framework/container"
)

// Provider declares every example component. Boot opens the default and
// audit channels so that components depending on a Logger find one.
type Provider struct{}

func (p *Provider) Register(c *container.Container) error {
	if err := logger.Declare(c, c.Logger()); err != nil {
		return err
	}
	if err := auth.Declare(c); err != nil {
		return err
	}
	return greeting.Declare(c)
}

func (p *Provider) Boot(c *container.Container) error {
	ctx := context.Background()
	for _, channel := range []string{container.Default, logger.Audit} {
		if _, err := container.Make[*logger.Logger](ctx, c, channel); err != nil {
			return err
		}
	}
	return nil
}
