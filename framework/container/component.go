package container

import (
	"context"
	"reflect"
	"sync/atomic"
)

// Component is the lifecycle surface every managed instance exposes.
// There are no start or stop hooks.
type Component interface {
	Scope() Scope
	EvictSelf(ctx context.Context, qualifier ...string) error
	ReplaceSelf(ctx context.Context, newInstance any, qualifier ...string) (any, error)
}

// stamper is implemented by *Base; the container calls it right after the
// payload factory returns.
type stamper interface {
	stamp(c *Container, typ reflect.Type, scope Scope, qualifier string)
}

// Base is embedded in component structs to satisfy Component. The embedding
// type must be built as a pointer (Declare[*T]) so the stamp can land.
// The stamp is published atomically, so Scope and Qualifier may be read
// from other goroutines while Provide or Replace stamps the instance.
//
//	type UserContext struct {
//	    container.Base
//	    UserID string
//	}
type Base struct {
	stamped atomic.Pointer[baseStamp]
}

type baseStamp struct {
	owner     *Container
	typ       reflect.Type
	scope     Scope
	qualifier string
}

var _ Component = (*Base)(nil)

// first stamp wins: the scope never changes after construction
func (b *Base) stamp(c *Container, typ reflect.Type, scope Scope, qualifier string) {
	b.stamped.CompareAndSwap(nil, &baseStamp{owner: c, typ: typ, scope: scope, qualifier: qualifier})
}

// Scope returns the scope the instance was built with (zero if unmanaged).
func (b *Base) Scope() Scope {
	if s := b.stamped.Load(); s != nil {
		return s.scope
	}
	return 0
}

// Qualifier returns the qualifier the instance was registered under.
func (b *Base) Qualifier() string {
	if s := b.stamped.Load(); s != nil {
		return s.qualifier
	}
	return ""
}

// EvictSelf removes this type's entry for qualifier, or for the instance's
// own qualifier when omitted.
func (b *Base) EvictSelf(ctx context.Context, qualifier ...string) error {
	s := b.stamped.Load()
	if s == nil {
		return errUnmanaged()
	}
	return s.owner.evict(ctx, s.typ, s.own(qualifier))
}

// ReplaceSelf swaps this type's entry for newInstance and returns it. The
// entry is the one under qualifier, or under the instance's own qualifier
// when omitted.
func (b *Base) ReplaceSelf(ctx context.Context, newInstance any, qualifier ...string) (any, error) {
	s := b.stamped.Load()
	if s == nil {
		return nil, errUnmanaged()
	}
	return s.owner.replace(ctx, s.typ, newInstance, s.own(qualifier))
}

func (s *baseStamp) own(qualifier []string) string {
	if len(qualifier) > 0 && qualifier[0] != "" {
		return qualifier[0]
	}
	if s.qualifier != "" {
		return s.qualifier
	}
	return Default
}

func errUnmanaged() *Error {
	return &Error{Code: ErrCodeUndeclaredType, Message: "instance was not built by a container"}
}
