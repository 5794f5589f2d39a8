package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func resetRegistry(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
}

func nopFactory(params map[string]any) (any, error) {
	return struct{}{}, nil
}

func TestRegisterComponentRejectsBadReferents(t *testing.T) {
	resetRegistry(t)

	require.Error(t, RegisterComponent("NoModule", nopFactory))
	require.Error(t, RegisterComponent(":NoModule", nopFactory))
	require.Error(t, RegisterComponent("mod.only:", nopFactory))
	require.Error(t, RegisterComponent("mod:Name", nil))
}

func TestRegisterComponentRejectsDuplicates(t *testing.T) {
	resetRegistry(t)

	require.NoError(t, RegisterComponent("pkg.sources:Dup", nopFactory))
	require.Error(t, RegisterComponent("pkg.sources:Dup", nopFactory))
}

func TestRegisterEntryPointRejectsDuplicates(t *testing.T) {
	resetRegistry(t)

	require.NoError(t, RegisterEntryPoint("csv", "pkg.sinks:CSVSink"))
	require.Error(t, RegisterEntryPoint("csv", "pkg.sinks:Other"))
	require.Error(t, RegisterEntryPoint("", "pkg.sinks:CSVSink"))
	require.Error(t, RegisterEntryPoint("csv2", ""))
}

func TestListIsSortedByName(t *testing.T) {
	resetRegistry(t)

	require.NoError(t, RegisterEntryPoint("zeta", "pkg.a:Z"))
	require.NoError(t, RegisterEntryPoint("alpha", "pkg.a:A"))
	require.NoError(t, RegisterEntryPoint("mid", "pkg.a:M"))

	eps := List()
	require.Equal(t, []EntryPoint{
		{Name: "alpha", Referent: "pkg.a:A"},
		{Name: "mid", Referent: "pkg.a:M"},
		{Name: "zeta", Referent: "pkg.a:Z"},
	}, eps)

	// Listing is read-only; a second call sees the same set.
	require.Equal(t, eps, List())
}

func TestListEmptyRegistry(t *testing.T) {
	resetRegistry(t)

	require.Empty(t, List())
}
