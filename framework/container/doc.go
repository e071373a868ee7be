// Package container is a scope-aware object-lifecycle registry.
//
// # Overview
//
// A caller asks for "the instance of T for this scope and qualifier" and the
// container either returns the registered instance or builds, registers and
// returns a new one. Three scopes exist:
//
//   - Singleton: one instance per (type, qualifier) in the process store.
//   - Request: one instance per (type, qualifier) per request extent.
//   - Prototype: never registered; every Make builds a fresh value.
//
// Because Go has no constructor interception, each managed type is declared
// once with an explicit factory and callers go through Make instead of
// building the value themselves.
//
// # Declaring
//
//	c := container.New(container.WithLogger(log))
//
//	container.Declare(c, container.Singleton, func(ctx context.Context, _ ...any) (*Logger, error) {
//	    return &Logger{}, nil
//	})
//
//	container.Declare(c, container.Request, func(ctx context.Context, _ ...any) (*UserContext, error) {
//	    return &UserContext{}, nil
//	})
//
// # Resolving
//
//	logger, err := container.Make[*Logger](ctx, c)                      // default qualifier
//	audit, err := container.MakeQualified[*Logger](ctx, c, "audit")    // second, unrelated instance
//	cached, ok := container.Lookup[*Logger](ctx, c)                     // never builds
//
// On a hit the factory does not run and any args passed to Make are dropped.
//
// # Request extents
//
// The current request store travels in context.Context:
//
//	err := container.Run(ctx, func(ctx context.Context) error {
//	    a := container.MustMake[*UserContext](ctx, c)
//	    b := container.MustMake[*UserContext](ctx, c) // a == b
//	    return nil
//	})
//
// Making a Request type from a context without a store fails with
// ErrNoActiveContext. Nested extents get their own store and nothing is merged
// back into the outer one.
//
// # Dependency fields
//
// Exported fields tagged `inject` are bound once, right after the factory
// returns, from the store of the dependency's own scope:
//
//	type Service struct {
//	    Log  *Logger      `inject:""`
//	    User *UserContext `inject:",optional"`
//	}
//
// The same wiring can be declared without tags:
//
//	container.Needs[*Service, *Logger](c, "Log")
//
// A required dependency with no registered instance fails the whole Make with
// ErrMissingRequiredDependency and nothing is registered. Fields are not
// re-bound when a dependency is later evicted or replaced.
//
// # Eviction and replacement
//
//	container.Evict[*Logger](ctx, c)
//	container.Replace(ctx, c, &Logger{Level: "debug"})
//	c.ClearStore(ctx, container.Request)
//
// Components embedding Base can do the same to themselves with EvictSelf and
// ReplaceSelf.
package container
