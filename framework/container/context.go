package container

import "context"

// ── Request extents ───────────────────────────────────────────────────────────

// requestStoreKey is the context key under which the current request store lives.
type requestStoreKey struct{}

// WithRequestScope returns a child of ctx carrying a fresh, empty request store.
// Anything derived from the returned context, including goroutines started
// with it, sees the same store. The parent keeps seeing its own store (or none).
//
//	func RequestScope(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        next.ServeHTTP(w, r.WithContext(container.WithRequestScope(r.Context())))
//	    })
//	}
func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestStoreKey{}, NewStore())
}

// RunInNewContext runs fn inside a new request extent and returns whatever fn
// returns. Nested calls push a new store; entries created by the inner call are
// not visible to the outer one once it returns.
//
//	user, err := container.RunInNewContext(ctx, func(ctx context.Context) (*auth.UserContext, error) {
//	    return container.Make[*auth.UserContext](ctx, c)
//	})
func RunInNewContext[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	return fn(WithRequestScope(ctx))
}

// Run is RunInNewContext for callbacks that only return an error.
func Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(WithRequestScope(ctx))
}

// HasActiveContext reports whether ctx carries a request store.
func HasActiveContext(ctx context.Context) bool {
	return requestStore(ctx) != nil
}

// RequestStore exposes the current request store, or nil outside any extent.
func RequestStore(ctx context.Context) *Store {
	return requestStore(ctx)
}

func requestStore(ctx context.Context) *Store {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(requestStoreKey{}).(*Store); ok {
		return s
	}
	return nil
}
