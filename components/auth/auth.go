// Package auth holds the per-request user identity and the middleware that
// fills it in.
package auth

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/km-arc/go-scoped/components/logger"
	"github.com/km-arc/go-scoped/framework/container"
	gohttp "github.com/km-arc/go-scoped/framework/http"
)

// UserContext is the identity of the current request. It is request scoped:
// every request extent gets its own, shared by everything built inside it.
type UserContext struct {
	container.Base

	UserID    string
	Token     string
	Roles     []string
	RequestID string
}

// Authenticated reports whether a token was accepted for this request.
func (u *UserContext) Authenticated() bool { return u != nil && u.UserID != "" }

// HasRole reports whether the user carries role.
func (u *UserContext) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// Declare registers *UserContext in the request scope.
func Declare(c *container.Container) error {
	return container.Declare(c, container.Request, func(ctx context.Context, _ ...any) (*UserContext, error) {
		id := middleware.GetReqID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		return &UserContext{RequestID: id}, nil
	})
}

// Identity is what a token resolves to.
type Identity struct {
	UserID string
	Roles  []string
}

// Resolver maps a bearer token to an identity.
type Resolver func(token string) (Identity, bool)

// StaticTokens resolves tokens from a fixed table.
func StaticTokens(tokens map[string]Identity) Resolver {
	return func(token string) (Identity, bool) {
		id, ok := tokens[token]
		return id, ok
	}
}

// Authenticate rejects requests without a valid bearer token and records the
// identity in the request's UserContext. Must run inside a request extent.
func Authenticate(c *container.Container, resolve Resolver) func(http.Handler) http.Handler {
	return guard(c, resolve, true)
}

// Identify is Authenticate without the rejection: anonymous requests pass
// through with an empty UserContext.
func Identify(c *container.Container, resolve Resolver) func(http.Handler) http.Handler {
	return guard(c, resolve, false)
}

func guard(c *container.Container, resolve Resolver, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := gohttp.NewRequest(r)
			res := gohttp.NewResponse(w)
			ctx := r.Context()

			token := req.BearerToken()
			identity, ok := Identity{}, false
			if token != "" {
				identity, ok = resolve(token)
			}
			if !ok && required {
				res.Unauthorized()
				return
			}

			user, err := container.Make[*UserContext](ctx, c)
			if err != nil {
				res.ContainerError(err)
				return
			}
			if ok {
				user.UserID = identity.UserID
				user.Roles = identity.Roles
				user.Token = token
				audit(ctx, c, user)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func audit(ctx context.Context, c *container.Container, user *UserContext) {
	log, ok := container.Lookup[*logger.Logger](ctx, c, logger.Audit)
	if !ok {
		return
	}
	log.Info().
		Str("user_id", user.UserID).
		Strs("roles", user.Roles).
		Str("request_id", user.RequestID).
		Msg("user authenticated")
}

// Current returns the request's UserContext if one was made.
func Current(ctx context.Context, c *container.Container) (*UserContext, bool) {
	return container.Lookup[*UserContext](ctx, c)
}
