package container

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FprintRegistry renders the declarations and the live entries visible from
// ctx (process store, plus the request store when one is active).
//
//	c.FprintRegistry(ctx, os.Stdout)
func (c *Container) FprintRegistry(ctx context.Context, w io.Writer) {
	decls := table.NewWriter()
	decls.SetOutputMirror(w)
	decls.SetTitle("declarations")
	decls.AppendHeader(table.Row{"Type", "Scope", "Dependencies"})
	for _, d := range c.Declarations() {
		decls.AppendRow(table.Row{d.Type.String(), d.Scope.String(), formatDeps(d.Dependencies)})
	}
	if decls.Length() == 0 {
		decls.AppendRow(table.Row{"(none)", "", ""})
	}
	decls.Render()

	entries := table.NewWriter()
	entries.SetOutputMirror(w)
	entries.SetTitle("entries")
	entries.AppendHeader(table.Row{"Store", "Type", "Qualifier", "Instance"})
	for _, e := range c.process.Entries() {
		entries.AppendRow(table.Row{"process", e.Type.String(), e.Qualifier, describe(e.Instance)})
	}
	if rs := requestStore(ctx); rs != nil {
		for _, e := range rs.Entries() {
			entries.AppendRow(table.Row{"request", e.Type.String(), e.Qualifier, describe(e.Instance)})
		}
	}
	if entries.Length() == 0 {
		entries.AppendRow(table.Row{"(empty)", "", "", ""})
	}
	entries.Render()
}

func describe(inst any) string {
	if v := reflect.ValueOf(inst); v.Kind() == reflect.Pointer {
		return fmt.Sprintf("%T@%p", inst, inst)
	}
	return fmt.Sprintf("%T", inst)
}

func formatDeps(deps []Dependency) string {
	if len(deps) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(deps))
	for _, d := range deps {
		s := d.Field + " <- " + d.Type.String()
		if d.Qualifier != Default {
			s += "#" + d.Qualifier
		}
		if d.Optional {
			s += " (optional)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
