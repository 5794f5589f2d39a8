// Package registry holds the process-wide component registry and the
// reference resolver. Go has no runtime import, so the dotted and colon
// reference grammars resolve against a table populated by component
// packages at init time; the "ep:" grammar resolves through entry points
// registered under the adp.plugins group.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// EntryPointGroup is the fixed group identifier external packages register
// their components under.
const EntryPointGroup = "adp.plugins"

// Factory constructs a component instance from its params mapping. The
// returned value must satisfy one of the pipeline component interfaces.
type Factory func(params map[string]any) (any, error)

// EntryPoint is one discovered plugin registration.
type EntryPoint struct {
	// Name is the short name used in "ep:<name>" references.
	Name string
	// Referent is the fully-qualified component reference the name points
	// to, e.g. "adp.sinks:CSVSink".
	Referent string
}

var (
	mu          sync.RWMutex
	components  = make(map[string]map[string]Factory)
	entryPoints = make(map[string]string)
)

// RegisterComponent adds a factory under a fully-qualified referent of the
// form "module.path:Name". Called from component package init functions.
func RegisterComponent(referent string, factory Factory) error {
	module, name, ok := strings.Cut(referent, ":")
	if !ok || module == "" || name == "" {
		return fmt.Errorf("invalid component referent %q (want \"module.path:Name\")", referent)
	}
	if factory == nil {
		return fmt.Errorf("component %q registered with nil factory", referent)
	}

	mu.Lock()
	defer mu.Unlock()

	attrs := components[module]
	if attrs == nil {
		attrs = make(map[string]Factory)
		components[module] = attrs
	}
	if _, exists := attrs[name]; exists {
		return fmt.Errorf("component %q already registered", referent)
	}
	attrs[name] = factory
	return nil
}

// MustRegisterComponent is RegisterComponent for init functions; it panics
// on registration conflicts, which are programmer errors.
func MustRegisterComponent(referent string, factory Factory) {
	if err := RegisterComponent(referent, factory); err != nil {
		panic(err)
	}
}

// RegisterEntryPoint publishes a short name under the adp.plugins group.
// The referent is resolved lazily: a broken referent fails at resolve time,
// not at registration, matching standard plugin-discovery semantics.
func RegisterEntryPoint(name, referent string) error {
	if name == "" || referent == "" {
		return fmt.Errorf("entry point requires a name and a referent")
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := entryPoints[name]; exists {
		return fmt.Errorf("entry point %q already registered in group %q", name, EntryPointGroup)
	}
	entryPoints[name] = referent
	return nil
}

// MustRegisterEntryPoint is RegisterEntryPoint for init functions.
func MustRegisterEntryPoint(name, referent string) {
	if err := RegisterEntryPoint(name, referent); err != nil {
		panic(err)
	}
}

// List returns every discovered entry point sorted by name. An empty
// registry yields an empty slice, not an error.
func List() []EntryPoint {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]EntryPoint, 0, len(entryPoints))
	for name, referent := range entryPoints {
		out = append(out, EntryPoint{Name: name, Referent: referent})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset clears all registrations (for tests).
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	components = make(map[string]map[string]Factory)
	entryPoints = make(map[string]string)
}
