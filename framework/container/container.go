package container

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ── Declarations ──────────────────────────────────────────────────────────────

// Factory builds the raw payload of a component. args are whatever the caller
// passed to Make; they are ignored entirely when the registry already holds
// an instance for the requested qualifier.
type Factory[T any] func(ctx context.Context, args ...any) (T, error)

// QualifierFunc derives a qualifier from the construction arguments. It is
// consulted by Make (not MakeQualified). An empty result means Default.
type QualifierFunc func(args ...any) string

// declaration is everything the container knows about one managed type.
type declaration struct {
	typ           reflect.Type
	scope         Scope
	build         func(ctx context.Context, args ...any) (any, error)
	qualifierFunc QualifierFunc
	deps          []Dependency
}

// DeclareOption customises a declaration.
type DeclareOption func(*declaration)

// WithQualifierFunc installs the qualifier factory used by Make.
//
//	container.Declare(c, container.Singleton, newConn,
//	    container.WithQualifierFunc(func(args ...any) string { return args[0].(string) }))
func WithQualifierFunc(fn QualifierFunc) DeclareOption {
	return func(d *declaration) { d.qualifierFunc = fn }
}

// WithDependency declares dependency fields alongside the type, as an
// alternative to `inject` struct tags or DeclareDependency.
func WithDependency(deps ...Dependency) DeclareOption {
	return func(d *declaration) {
		for _, dep := range deps {
			d.setDependency(dep)
		}
	}
}

func (d *declaration) setDependency(dep Dependency) {
	for i := range d.deps {
		if d.deps[i].Field == dep.Field {
			d.deps[i] = dep
			return
		}
	}
	d.deps = append(d.deps, dep)
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the process-wide registry.
//
// It owns the type declarations and the process store (Singleton entries).
// Request entries live in stores carried by context.Context, see
// WithRequestScope and RunInNewContext.
type Container struct {
	mu           sync.RWMutex
	declarations map[reflect.Type]*declaration
	process      *Store
	logger       zerolog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registry debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		declarations: make(map[reflect.Type]*declaration),
		process:      NewStore(),
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Declare registers T as a managed type with the given scope. From then on
// Make[T] routes through the registry instead of calling factory directly.
// Exported fields of T tagged `inject:"..."` become dependency fields.
// Declaring T again replaces the previous declaration; existing entries stay.
//
//	container.Declare(c, container.Singleton, func(ctx context.Context, _ ...any) (*Logger, error) {
//	    return &Logger{}, nil
//	})
func Declare[T any](c *Container, scope Scope, factory Factory[T], opts ...DeclareOption) error {
	typ := reflect.TypeFor[T]()
	if !scope.Valid() {
		return errUnsupportedScope(typ.String(), scope)
	}

	deps, err := tagDependencies(typ)
	if err != nil {
		return err
	}

	d := &declaration{
		typ:   typ,
		scope: scope,
		build: func(ctx context.Context, args ...any) (any, error) {
			return factory(ctx, args...)
		},
		deps: deps,
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, dep := range d.deps {
		if err := validateDependency(typ, dep); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.declarations[typ] = d
	c.mu.Unlock()

	c.logger.Debug().
		Str("type", typ.String()).
		Str("scope", scope.String()).
		Int("deps", len(d.deps)).
		Msg("component declared")
	return nil
}

// MustDeclare is Declare that panics on error.
func MustDeclare[T any](c *Container, scope Scope, factory Factory[T], opts ...DeclareOption) {
	if err := Declare(c, scope, factory, opts...); err != nil {
		panic(err)
	}
}

// Declared reports whether T has been declared.
func Declared[T any](c *Container) bool {
	_, ok := c.declaration(reflect.TypeFor[T]())
	return ok
}

// ScopeOf returns the declared scope of T.
func ScopeOf[T any](c *Container) (Scope, bool) {
	d, ok := c.declaration(reflect.TypeFor[T]())
	if !ok {
		return 0, false
	}
	return d.scope, true
}

func (c *Container) declaration(typ reflect.Type) (*declaration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.declarations[typ]
	return d, ok
}

// scopeOf falls back to Singleton for undeclared types: pre-built instances
// registered with Provide live in the process store.
func (c *Container) scopeOf(typ reflect.Type) Scope {
	if d, ok := c.declaration(typ); ok {
		return d.scope
	}
	return Singleton
}

// storeFor picks the store for scope. Prototype has none and yields nil.
func (c *Container) storeFor(ctx context.Context, typ reflect.Type, scope Scope) (*Store, error) {
	switch scope {
	case Singleton:
		return c.process, nil
	case Request:
		if s := requestStore(ctx); s != nil {
			return s, nil
		}
		return nil, errNoActiveContext(typ.String())
	case Prototype:
		return nil, nil
	default:
		return nil, errUnsupportedScope(typ.String(), scope)
	}
}

// ── Store management ──────────────────────────────────────────────────────────

// ClearStore empties the store behind scope: the process store for Singleton,
// the current request store for Request. Prototype has nothing to clear.
func (c *Container) ClearStore(ctx context.Context, scope Scope) error {
	switch scope {
	case Singleton:
		c.process.Clear()
	case Request:
		s := requestStore(ctx)
		if s == nil {
			return errNoActiveContext("")
		}
		s.Clear()
	case Prototype:
		return nil
	default:
		return errUnsupportedScope("", scope)
	}
	c.logger.Debug().Str("scope", scope.String()).Msg("store cleared")
	return nil
}

// Reset drops every declaration and the whole process store. Meant for tests.
func (c *Container) Reset() {
	c.mu.Lock()
	c.declarations = make(map[reflect.Type]*declaration)
	c.mu.Unlock()
	c.process.Clear()
}

// ProcessStore exposes the Singleton store (read-mostly; for diagnostics).
func (c *Container) ProcessStore() *Store { return c.process }

// Logger returns the container's logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// Declarations lists declared types with their scopes, sorted by type name.
func (c *Container) Declarations() []Declaration {
	c.mu.RLock()
	out := make([]Declaration, 0, len(c.declarations))
	for _, d := range c.declarations {
		deps := make([]Dependency, len(d.deps))
		copy(deps, d.deps)
		out = append(out, Declaration{Type: d.typ, Scope: d.scope, Dependencies: deps})
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Type.String() < out[j].Type.String() })
	return out
}

// Declaration is the public view of a declared type.
type Declaration struct {
	Type         reflect.Type
	Scope        Scope
	Dependencies []Dependency
}
