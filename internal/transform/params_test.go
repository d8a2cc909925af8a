package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func paramErr(t *testing.T, err error) *InvalidParameterError {
	t.Helper()
	var pe *InvalidParameterError
	require.True(t, errors.As(err, &pe), "want InvalidParameterError, got %v", err)
	return pe
}

func TestParamReader_DecodesTypedValues(t *testing.T) {
	r := NewParamReader("S", Params{
		"col":     "location",
		"cols":    []any{"a", "b"},
		"mapping": map[string]any{"x": "y"},
		"n":       3,
		"f":       float64(7),
	})
	require.Equal(t, "location", r.String("col"))
	require.Equal(t, []string{"a", "b"}, r.Strings("cols"))
	require.Equal(t, map[string]string{"x": "y"}, r.StringMap("mapping"))
	require.Equal(t, 3, r.Int("n"))
	require.Equal(t, 7, r.Int("f"))
	require.Equal(t, 1, r.OptInt("workers", 1))
	require.Equal(t, "dflt", r.OptString("url", "dflt"))
	require.NoError(t, r.Close())
}

func TestParamReader_MissingRequired(t *testing.T) {
	r := NewParamReader("WindowByDaysTransformer", Params{})
	_ = r.Int("number_of_days")
	pe := paramErr(t, r.Close())
	require.Equal(t, "WindowByDaysTransformer", pe.Step)
	require.Equal(t, "number_of_days", pe.Param)
	require.Equal(t, "required", pe.Reason)
}

func TestParamReader_WrongType(t *testing.T) {
	cases := map[string]Params{
		"string for int":  {"v": "5"},
		"fractional":      {"v": 2.5},
		"bool for int":    {"v": true},
		"scalar for list": {"v": "a"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			r := NewParamReader("S", p)
			if name == "scalar for list" {
				_ = r.Strings("v")
			} else {
				_ = r.Int("v")
			}
			require.Equal(t, "v", paramErr(t, r.Err()).Param)
		})
	}
}

func TestParamReader_NonStringMapValue(t *testing.T) {
	r := NewParamReader("RenameTransformer", Params{"mapping": map[string]any{"a": 1}})
	_ = r.StringMap("mapping")
	require.Equal(t, "mapping", paramErr(t, r.Close()).Param)
}

func TestParamReader_FirstErrorSticks(t *testing.T) {
	r := NewParamReader("S", Params{"b": "ok"})
	_ = r.String("a")
	_ = r.String("b")
	require.Equal(t, "a", paramErr(t, r.Close()).Param)
}

func TestParamReader_UnknownKeys(t *testing.T) {
	r := NewParamReader("S", Params{"known": "x", "typo": 1, "other": 2})
	_ = r.String("known")
	pe := paramErr(t, r.Close())
	require.Equal(t, "other", pe.Param)
	require.True(t, strings.Contains(pe.Reason, "other, typo"), pe.Reason)
}
