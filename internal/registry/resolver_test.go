package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	adperrors "github.com/adp-project/adp/pkg/errors"
)

type marker struct{ tag string }

func markerFactory(tag string) Factory {
	return func(params map[string]any) (any, error) {
		return marker{tag: tag}, nil
	}
}

func mustResolveTag(t *testing.T, ref string) string {
	t.Helper()
	factory, err := Resolve(ref)
	require.NoError(t, err)
	v, err := factory(nil)
	require.NoError(t, err)
	return v.(marker).tag
}

func TestResolveColonAndDottedForms(t *testing.T) {
	resetRegistry(t)

	MustRegisterComponent("pkg.sources:CSVSource", markerFactory("csv"))
	MustRegisterComponent("pkg.sources:JSONSource", markerFactory("json"))

	// Both grammars reach the same registration.
	require.Equal(t, "csv", mustResolveTag(t, "pkg.sources:CSVSource"))
	require.Equal(t, "csv", mustResolveTag(t, "pkg.sources.CSVSource"))
	require.Equal(t, "json", mustResolveTag(t, "pkg.sources.JSONSource"))
}

func TestResolveEntryPoint(t *testing.T) {
	resetRegistry(t)

	MustRegisterComponent("pkg.sinks:CSVSink", markerFactory("sink"))
	MustRegisterEntryPoint("csv", "pkg.sinks:CSVSink")

	require.Equal(t, "sink", mustResolveTag(t, "ep:csv"))
}

func TestResolveUnknownModule(t *testing.T) {
	resetRegistry(t)

	MustRegisterComponent("pkg.sources:CSVSource", markerFactory("csv"))

	_, err := Resolve("pkg.missing:CSVSource")
	var modErr *adperrors.ModuleNotFoundError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, "pkg.missing", modErr.Module)
}

func TestResolveUnknownAttribute(t *testing.T) {
	resetRegistry(t)

	MustRegisterComponent("pkg.sources:CSVSource", markerFactory("csv"))

	_, err := Resolve("pkg.sources:Missing")
	var attrErr *adperrors.AttributeNotFoundError
	require.ErrorAs(t, err, &attrErr)
	require.Equal(t, "pkg.sources", attrErr.Module)
	require.Equal(t, "Missing", attrErr.Attribute)
}

func TestResolveUnknownEntryPoint(t *testing.T) {
	resetRegistry(t)

	_, err := Resolve("ep:missing")
	var pluginErr *adperrors.PluginNotFoundError
	require.ErrorAs(t, err, &pluginErr)
	require.Equal(t, EntryPointGroup, pluginErr.Group)
	require.Equal(t, "missing", pluginErr.Name)
}

func TestResolveBareName(t *testing.T) {
	resetRegistry(t)

	_, err := Resolve("CSVSource")
	var modErr *adperrors.ModuleNotFoundError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, "", modErr.Module)
}

func TestBrokenEntryPointFailsLazily(t *testing.T) {
	resetRegistry(t)

	// Registration of a dangling referent succeeds; the failure surfaces
	// only when the entry point is resolved.
	require.NoError(t, RegisterEntryPoint("dangling", "pkg.gone:Nothing"))

	_, err := Resolve("ep:dangling")
	var modErr *adperrors.ModuleNotFoundError
	require.ErrorAs(t, err, &modErr)
	require.Equal(t, "pkg.gone", modErr.Module)
}

func TestResolveIsIdempotent(t *testing.T) {
	resetRegistry(t)

	MustRegisterComponent("pkg.sources:CSVSource", markerFactory("csv"))

	for i := 0; i < 3; i++ {
		require.Equal(t, "csv", mustResolveTag(t, "pkg.sources:CSVSource"))
	}
}
