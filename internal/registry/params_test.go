package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type demoParams struct {
	Path  string `yaml:"path" validate:"required"`
	Limit int    `yaml:"limit" validate:"omitempty,min=1"`
}

func TestDecodeParams(t *testing.T) {
	t.Parallel()

	var p demoParams
	err := DecodeParams(map[string]any{"path": "data.csv", "limit": 5}, &p)
	require.NoError(t, err)
	require.Equal(t, "data.csv", p.Path)
	require.Equal(t, 5, p.Limit)
}

func TestDecodeParamsMissingRequiredField(t *testing.T) {
	t.Parallel()

	var p demoParams
	err := DecodeParams(map[string]any{"limit": 5}, &p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Path")
	require.Contains(t, err.Error(), "required")
}

func TestDecodeParamsFailedRule(t *testing.T) {
	t.Parallel()

	var p demoParams
	err := DecodeParams(map[string]any{"path": "data.csv", "limit": -1}, &p)
	require.Error(t, err)
	require.Contains(t, err.Error(), "min")
}

func TestDecodeParamsNilMap(t *testing.T) {
	t.Parallel()

	var p struct {
		Optional string `yaml:"optional"`
	}
	require.NoError(t, DecodeParams(nil, &p))
}
