package registry

import (
	"strings"

	adperrors "github.com/adp-project/adp/pkg/errors"
)

// Resolve maps a textual component reference to its registered factory.
// Three grammars, in precedence order:
//
//	"ep:<name>"         entry-point lookup in the adp.plugins group
//	"module.path:Name"  colon form
//	"module.path.Name"  dotted form, last segment is the component name
//
// The three failure modes are distinguishable: *ModuleNotFoundError,
// *AttributeNotFoundError and *PluginNotFoundError, so a typo in a path
// reads differently from a plugin that was never registered. Resolution is
// idempotent and side-effect-free.
func Resolve(ref string) (Factory, error) {
	if name, ok := strings.CutPrefix(ref, "ep:"); ok {
		mu.RLock()
		referent, found := entryPoints[name]
		mu.RUnlock()
		if !found {
			return nil, &adperrors.PluginNotFoundError{Group: EntryPointGroup, Name: name}
		}
		// Lazy failure: a broken referent surfaces here, not at discovery.
		return resolveQualified(referent)
	}
	return resolveQualified(ref)
}

func resolveQualified(ref string) (Factory, error) {
	var module, name string
	if m, n, ok := strings.Cut(ref, ":"); ok {
		module, name = m, n
	} else if i := strings.LastIndex(ref, "."); i >= 0 {
		module, name = ref[:i], ref[i+1:]
	} else {
		// A bare name has no module path to import.
		return nil, &adperrors.ModuleNotFoundError{Module: ""}
	}

	mu.RLock()
	defer mu.RUnlock()

	attrs, ok := components[module]
	if !ok {
		return nil, &adperrors.ModuleNotFoundError{Module: module}
	}
	factory, ok := attrs[name]
	if !ok {
		return nil, &adperrors.AttributeNotFoundError{Module: module, Attribute: name}
	}
	return factory, nil
}
