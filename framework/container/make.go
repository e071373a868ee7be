package container

import (
	"context"
	"fmt"
	"reflect"
)

// ── Construction ──────────────────────────────────────────────────────────────

// Make returns the instance of T for the current scope extent, building and
// registering it on first use. The qualifier comes from the declaration's
// QualifierFunc, or Default.
//
//	user, err := container.Make[*auth.UserContext](ctx, c)
func Make[T any](ctx context.Context, c *Container, args ...any) (T, error) {
	typ := reflect.TypeFor[T]()
	qualifier := Default
	if d, ok := c.declaration(typ); ok && d.qualifierFunc != nil {
		if q := d.qualifierFunc(args...); q != "" {
			qualifier = q
		}
	}
	return MakeQualified[T](ctx, c, qualifier, args...)
}

// MakeQualified is Make with an explicit qualifier.
//
//	audit, err := container.MakeQualified[*logger.Logger](ctx, c, "audit")
func MakeQualified[T any](ctx context.Context, c *Container, qualifier string, args ...any) (T, error) {
	var zero T
	typ := reflect.TypeFor[T]()
	inst, err := c.make(ctx, typ, qualifier, args)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &Error{
			Code:      ErrCodeTypeMismatch,
			Message:   fmt.Sprintf("registry holds %T", inst),
			Type:      typ.String(),
			Qualifier: qualifier,
		}
	}
	return typed, nil
}

// MustMake is Make that panics on error.
func MustMake[T any](ctx context.Context, c *Container, args ...any) T {
	v, err := Make[T](ctx, c, args...)
	if err != nil {
		panic(err)
	}
	return v
}

// make is the interceptor: look up, or build and register.
func (c *Container) make(ctx context.Context, typ reflect.Type, qualifier string, args []any) (any, error) {
	d, ok := c.declaration(typ)
	if !ok {
		return nil, errUndeclared(typ.String())
	}
	if qualifier == "" {
		qualifier = Default
	}

	store, err := c.storeFor(ctx, typ, d.scope)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return c.build(ctx, d, qualifier, args)
	}

	if inst, ok := store.Get(typ, qualifier); ok {
		c.logger.Debug().
			Str("type", typ.String()).
			Str("qualifier", qualifier).
			Str("scope", d.scope.String()).
			Msg("component reused")
		return inst, nil
	}

	inst, err, _ := store.builds.Do(buildKey(typ, qualifier), func() (any, error) {
		// another caller may have finished while this one waited
		if inst, ok := store.Get(typ, qualifier); ok {
			return inst, nil
		}
		inst, err := c.build(ctx, d, qualifier, args)
		if err != nil {
			return nil, err
		}
		store.Put(typ, qualifier, inst)
		return inst, nil
	})
	return inst, err
}

// build runs the payload factory, stamps the scope and binds dependency
// fields. Nothing is registered here; a failure discards the raw value.
func (c *Container) build(ctx context.Context, d *declaration, qualifier string, args []any) (any, error) {
	raw, err := d.build(ctx, args...)
	if err != nil {
		return nil, errConstruction(d.typ.String(), qualifier, err)
	}
	c.stamp(raw, d.typ, d.scope, qualifier)

	inst, err := c.inject(ctx, d, raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("type", d.typ.String()).
		Str("qualifier", qualifier).
		Str("scope", d.scope.String()).
		Msg("component constructed")
	return inst, nil
}

func (c *Container) stamp(inst any, typ reflect.Type, scope Scope, qualifier string) {
	if s, ok := inst.(stamper); ok {
		s.stamp(c, typ, scope, qualifier)
	}
}

// buildKey is unique per type: PkgPath disambiguates same-named types.
func buildKey(typ reflect.Type, qualifier string) string {
	return typeName(typ) + "#" + qualifier
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// ── Registry access ───────────────────────────────────────────────────────────

// Lookup probes the registry without constructing anything.
//
//	if logger, ok := container.Lookup[*logger.Logger](ctx, c); ok { ... }
func Lookup[T any](ctx context.Context, c *Container, qualifier ...string) (T, bool) {
	var zero T
	inst, ok := c.lookup(ctx, reflect.TypeFor[T](), qualifierOr(qualifier))
	if !ok {
		return zero, false
	}
	typed, ok := inst.(T)
	return typed, ok
}

func (c *Container) lookup(ctx context.Context, typ reflect.Type, qualifier string) (any, bool) {
	store, err := c.storeFor(ctx, typ, c.scopeOf(typ))
	if err != nil || store == nil {
		return nil, false
	}
	return store.Get(typ, qualifier)
}

// Provide registers a pre-built instance of T in the store for T's scope.
// Undeclared types go to the process store. Prototype types are never
// registered, so Provide is a no-op for them.
//
//	container.Provide(ctx, c, cfg)
func Provide[T any](ctx context.Context, c *Container, instance T, qualifier ...string) error {
	typ := reflect.TypeFor[T]()
	q := qualifierOr(qualifier)
	scope := c.scopeOf(typ)

	store, err := c.storeFor(ctx, typ, scope)
	if err != nil || store == nil {
		return err
	}
	c.stamp(instance, typ, scope, q)
	store.Put(typ, q, instance)
	return nil
}

// Evict removes T's entry for the qualifier (default when omitted).
func Evict[T any](ctx context.Context, c *Container, qualifier ...string) error {
	return c.evict(ctx, reflect.TypeFor[T](), qualifierOr(qualifier))
}

func (c *Container) evict(ctx context.Context, typ reflect.Type, qualifier string) error {
	scope := c.scopeOf(typ)
	store, err := c.storeFor(ctx, typ, scope)
	if err != nil || store == nil {
		return err
	}
	store.Remove(typ, qualifier)
	c.logger.Debug().
		Str("type", typ.String()).
		Str("qualifier", qualifier).
		Str("scope", scope.String()).
		Msg("component evicted")
	return nil
}

// Replace atomically swaps T's entry for newInstance and returns it.
// Consumers that already hold the old instance keep it.
// For Prototype types nothing is registered and newInstance is returned as is.
func Replace[T any](ctx context.Context, c *Container, newInstance T, qualifier ...string) (T, error) {
	if _, err := c.replace(ctx, reflect.TypeFor[T](), newInstance, qualifierOr(qualifier)); err != nil {
		var zero T
		return zero, err
	}
	return newInstance, nil
}

func (c *Container) replace(ctx context.Context, typ reflect.Type, newInstance any, qualifier string) (any, error) {
	if newInstance == nil || !reflect.TypeOf(newInstance).AssignableTo(typ) {
		return nil, &Error{
			Code:      ErrCodeTypeMismatch,
			Message:   fmt.Sprintf("replacement %T is not assignable to %s", newInstance, typ),
			Type:      typ.String(),
			Qualifier: qualifier,
		}
	}

	scope := c.scopeOf(typ)
	store, err := c.storeFor(ctx, typ, scope)
	if err != nil {
		return nil, err
	}
	c.stamp(newInstance, typ, scope, qualifier)
	if store == nil {
		return newInstance, nil
	}

	store.Swap(typ, qualifier, newInstance)
	c.logger.Debug().
		Str("type", typ.String()).
		Str("qualifier", qualifier).
		Str("scope", scope.String()).
		Msg("component replaced")
	return newInstance, nil
}
