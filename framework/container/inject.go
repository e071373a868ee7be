package container

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// TagKey is the struct tag read by Declare: `inject:"[qualifier][,optional]"`.
//
//	type Service struct {
//	    Log   *logger.Logger   `inject:""`
//	    Audit *logger.Logger   `inject:"audit"`
//	    User  *auth.UserContext `inject:",optional"`
//	}
const TagKey = "inject"

// Dependency describes one dependency field of a consuming type.
type Dependency struct {
	Field     string
	Type      reflect.Type
	Qualifier string
	Optional  bool
}

// DependencyOption customises a Dependency.
type DependencyOption func(*Dependency)

// Optional leaves the field at its zero value when nothing is registered.
func Optional() DependencyOption {
	return func(d *Dependency) { d.Optional = true }
}

// Qualified selects a non-default qualifier.
func Qualified(qualifier string) DependencyOption {
	return func(d *Dependency) { d.Qualifier = qualifier }
}

// Dep builds a Dependency on type T for WithDependency.
//
//	container.WithDependency(container.Dep[*logger.Logger]("Log", container.Qualified("audit")))
func Dep[T any](field string, opts ...DependencyOption) Dependency {
	d := Dependency{Field: field, Type: reflect.TypeFor[T](), Qualifier: Default}
	for _, opt := range opts {
		opt(&d)
	}
	if d.Qualifier == "" {
		d.Qualifier = Default
	}
	return d
}

// DeclareDependency wires fieldName on owner to depType. owner must already be
// declared. Declaring the same field twice replaces the first declaration.
func (c *Container) DeclareDependency(owner reflect.Type, fieldName string, depType reflect.Type, opts ...DependencyOption) error {
	dep := Dependency{Field: fieldName, Type: depType, Qualifier: Default}
	for _, opt := range opts {
		opt(&dep)
	}
	if dep.Qualifier == "" {
		dep.Qualifier = Default
	}
	if err := validateDependency(owner, dep); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.declarations[owner]
	if !ok {
		return errUndeclared(owner.String())
	}
	// copy on write: Make reads declarations without holding mu
	next := *d
	next.deps = append([]Dependency(nil), d.deps...)
	next.setDependency(dep)
	c.declarations[owner] = &next
	return nil
}

// Needs is the typed form of DeclareDependency.
//
//	container.Needs[*Service, *logger.Logger](c, "Log")
func Needs[Owner, D any](c *Container, fieldName string, opts ...DependencyOption) error {
	return c.DeclareDependency(reflect.TypeFor[Owner](), fieldName, reflect.TypeFor[D](), opts...)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// inject binds every declared dependency field of raw. Struct values are
// copied, so the returned value must replace raw.
func (c *Container) inject(ctx context.Context, d *declaration, raw any) (any, error) {
	if len(d.deps) == 0 {
		return raw, nil
	}

	v := reflect.ValueOf(raw)
	var target reflect.Value
	switch {
	case v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Struct:
		target = v.Elem()
	case v.Kind() == reflect.Struct:
		target = reflect.New(v.Type()).Elem()
		target.Set(v)
	default:
		return nil, &Error{
			Code:    ErrCodeTypeMismatch,
			Message: fmt.Sprintf("cannot inject fields into %s", v.Kind()),
			Type:    d.typ.String(),
		}
	}

	owner := structType(d.typ).Name()
	for _, dep := range d.deps {
		fieldRef := owner + "." + dep.Field
		inst, found, err := c.resolveDependency(ctx, dep, fieldRef)
		if err != nil {
			return nil, err
		}

		field, err := target.FieldByIndexErr(fieldIndex(target.Type(), dep.Field))
		if err != nil {
			return nil, &Error{Code: ErrCodeTypeMismatch, Message: err.Error(), Type: d.typ.String(), Field: fieldRef}
		}
		if !found {
			field.Set(reflect.Zero(field.Type()))
			continue
		}

		iv := reflect.ValueOf(inst)
		if !iv.IsValid() || !iv.Type().AssignableTo(field.Type()) {
			return nil, &Error{
				Code:    ErrCodeTypeMismatch,
				Message: fmt.Sprintf("registered %T is not assignable to %s", inst, field.Type()),
				Type:    dep.Type.String(),
				Field:   fieldRef,
			}
		}
		field.Set(iv)
	}

	if v.Kind() == reflect.Struct {
		return target.Interface(), nil
	}
	return raw, nil
}

func fieldIndex(st reflect.Type, name string) []int {
	f, _ := st.FieldByName(name)
	return f.Index
}

// resolveDependency looks dep up in the store chosen by dep's own scope.
func (c *Container) resolveDependency(ctx context.Context, dep Dependency, fieldRef string) (any, bool, error) {
	scope := c.scopeOf(dep.Type)
	store, err := c.storeFor(ctx, dep.Type, scope)
	if err != nil {
		if !IsNoActiveContext(err) {
			if e, ok := err.(*Error); ok {
				e.Field = fieldRef
			}
			return nil, false, err
		}
		// no request extent: nothing to find
		if dep.Optional {
			return nil, false, nil
		}
		missing := errMissingDependency(dep.Type.String(), dep.Qualifier, fieldRef)
		missing.Cause = err
		return nil, false, missing
	}

	if store != nil {
		if inst, ok := store.Get(dep.Type, dep.Qualifier); ok {
			return inst, true, nil
		}
	}
	if dep.Optional {
		return nil, false, nil
	}
	return nil, false, errMissingDependency(dep.Type.String(), dep.Qualifier, fieldRef)
}

// ── Declaration checks ────────────────────────────────────────────────────────

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func validateDependency(owner reflect.Type, dep Dependency) error {
	st := structType(owner)
	if st.Kind() != reflect.Struct {
		return &Error{
			Code:    ErrCodeTypeMismatch,
			Message: "dependency fields require a struct or pointer-to-struct type",
			Type:    owner.String(),
		}
	}
	if dep.Type == nil {
		return &Error{Code: ErrCodeTypeMismatch, Message: "nil dependency type", Type: owner.String(), Field: dep.Field}
	}
	ref := st.Name() + "." + dep.Field

	f, ok := st.FieldByName(dep.Field)
	if !ok {
		return &Error{Code: ErrCodeTypeMismatch, Message: "no such field", Type: owner.String(), Field: ref}
	}
	if !f.IsExported() {
		return &Error{Code: ErrCodeTypeMismatch, Message: "field is unexported", Type: owner.String(), Field: ref}
	}
	if viaPointerEmbed(st, f.Index) {
		return &Error{
			Code:    ErrCodeTypeMismatch,
			Message: "field is promoted through an embedded pointer",
			Type:    owner.String(),
			Field:   ref,
		}
	}
	if !dep.Type.AssignableTo(f.Type) {
		return &Error{
			Code:    ErrCodeTypeMismatch,
			Message: fmt.Sprintf("%s is not assignable to field type %s", dep.Type, f.Type),
			Type:    owner.String(),
			Field:   ref,
		}
	}
	return nil
}

// viaPointerEmbed reports whether the field path index crosses an embedded
// pointer, which may be nil when the payload is built.
func viaPointerEmbed(st reflect.Type, index []int) bool {
	t := st
	for _, i := range index[:len(index)-1] {
		t = t.Field(i).Type
		if t.Kind() == reflect.Pointer {
			return true
		}
	}
	return false
}

// tagDependencies collects `inject` tagged fields of typ.
func tagDependencies(typ reflect.Type) ([]Dependency, error) {
	st := structType(typ)
	if st.Kind() != reflect.Struct {
		return nil, nil
	}

	var deps []Dependency
	for i := range st.NumField() {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup(TagKey)
		if !ok || f.Anonymous {
			continue
		}
		if !f.IsExported() {
			return nil, &Error{
				Code:    ErrCodeTypeMismatch,
				Message: "inject tag on unexported field",
				Type:    typ.String(),
				Field:   st.Name() + "." + f.Name,
			}
		}

		dep := Dependency{Field: f.Name, Type: f.Type, Qualifier: Default}
		name, flags, _ := strings.Cut(tag, ",")
		if name = strings.TrimSpace(name); name != "" {
			dep.Qualifier = name
		}
		for _, flag := range strings.Split(flags, ",") {
			if strings.TrimSpace(flag) == "optional" {
				dep.Optional = true
			}
		}
		deps = append(deps, dep)
	}
	return deps, nil
}
