package container

import (
	"fmt"
	"strings"
)

// Default is the qualifier used when none is supplied.
const Default = "default"

// Scope is the lifetime policy of a managed component type.
// It is fixed when the type is declared and never changes afterwards.
type Scope int

const (
	// Singleton keeps one instance per (type, qualifier) in the process store.
	Singleton Scope = iota + 1

	// Prototype never registers anything; every Make builds a fresh value.
	Prototype

	// Request keeps one instance per (type, qualifier) per active context store.
	Request
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Prototype:
		return "prototype"
	case Request:
		return "request"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	return s == Singleton || s == Prototype || s == Request
}

// ParseScope converts a config string ("singleton", "request", "prototype") to a Scope.
//
//	s, err := container.ParseScope(config.Get("CACHE_SCOPE", "singleton"))
func ParseScope(raw string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "singleton":
		return Singleton, nil
	case "prototype", "transient":
		return Prototype, nil
	case "request", "scoped":
		return Request, nil
	default:
		return 0, &Error{Code: ErrCodeUnsupportedScope, Message: fmt.Sprintf("unknown scope %q", raw)}
	}
}

func qualifierOr(qualifier []string) string {
	if len(qualifier) > 0 && qualifier[0] != "" {
		return qualifier[0]
	}
	return Default
}
