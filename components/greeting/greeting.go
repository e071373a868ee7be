// Package greeting is a prototype component: every Make builds a new
// Greeter wired to the current logger and, when present, the request's user.
package greeting

import (
	"context"
	"fmt"

	"github.com/km-arc/go-scoped/components/auth"
	"github.com/km-arc/go-scoped/components/logger"
	"github.com/km-arc/go-scoped/framework/container"
)

// Greeter builds greetings. User is nil outside a request or before
// authentication.
type Greeter struct {
	container.Base

	Log  *logger.Logger    `inject:""`
	User *auth.UserContext `inject:",optional"`

	Salutation string
}

// Declare registers *Greeter as a prototype. The first Make argument, if a
// string, overrides the salutation.
func Declare(c *container.Container) error {
	return container.Declare(c, container.Prototype, func(_ context.Context, args ...any) (*Greeter, error) {
		salutation := "Hello"
		if len(args) > 0 {
			if s, ok := args[0].(string); ok && s != "" {
				salutation = s
			}
		}
		return &Greeter{Salutation: salutation}, nil
	})
}

// Greet greets name, falling back to the authenticated user and then to
// "stranger".
func (g *Greeter) Greet(name string) string {
	if name == "" && g.User.Authenticated() {
		name = g.User.UserID
	}
	if name == "" {
		name = "stranger"
	}
	msg := fmt.Sprintf("%s, %s!", g.Salutation, name)
	g.Log.Debug().Str("name", name).Msg("greeted")
	return msg
}
