// Package modules holds the named per-entry column functions a listing is
// built from, and the registry that selects which of them are shown.
package modules

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/rexplorer/rexp/pkg/files"
	"github.com/rexplorer/rexp/pkg/theme"
)

var ErrUnknownModule = errors.New("unknown display module")

// Module renders one column of one listing row.
type Module func(ctx context.Context, e files.Entry) string

// Column is an active module with the name it was selected by.
type Column struct {
	Name   string
	Module Module
}

type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	active  []string
	theme   theme.Theme
}

// NewRegistry returns a registry with every built-in module registered and
// the default columns active.
func NewRegistry(nerdFonts bool) *Registry {
	r := &Registry{
		modules: make(map[string]Module),
		theme:   theme.ForFlavor(theme.DefaultFlavor),
	}
	for name, m := range builtins() {
		r.modules[name] = m
	}
	r.active = DefaultNames(nerdFonts)
	return r
}

// Register adds or replaces a module.
func (r *Registry) Register(name string, m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[name] = m
}

func (r *Registry) Lookup(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Names returns every registered module name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDisplayModules replaces the active columns. The list is left untouched
// when any name is not registered.
func (r *Registry) SetDisplayModules(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.modules[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownModule, name)
		}
	}
	r.active = slices.Clone(names)
	return nil
}

// ActiveNames returns the names of the active columns in display order.
func (r *Registry) ActiveNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.active)
}

// Active resolves the active columns in display order.
func (r *Registry) Active() []Column {
	r.mu.RLock()
	defer r.mu.RUnlock()
	columns := make([]Column, 0, len(r.active))
	for _, name := range r.active {
		columns = append(columns, Column{Name: name, Module: r.modules[name]})
	}
	return columns
}

func (r *Registry) SetTheme(t theme.Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = t
}

func (r *Registry) Theme() theme.Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.theme
}

// DefaultNames is the column set used when the init file names none.
func DefaultNames(nerdFonts bool) []string {
	names := make([]string, 0, 6)
	if nerdFonts {
		names = append(names, NameIcon)
	}
	return append(names, NameName, NameSmallSpacer, NameCreationDate, NameSize, NameSmallSpacer)
}
