package dictflag

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defineSettings(t *testing.T) *Handle {
	t.Helper()
	fs := newFlagSet(t)
	h, err := Define(fs, "settings", Tree{
		"mode":  String("pad", "Mode."),
		"debug": Boolean(true, "Debug."),
		"sizes": Tree{
			"width":  Integer(5, "Width."),
			"scale":  Float(0.5, "Scale."),
			"labels": StringList([]string{"a", "b"}, "Labels."),
		},
	})
	require.NoError(t, err)
	return h
}

func TestHandleGet(t *testing.T) {
	h := defineSettings(t)

	t.Run("TopLevelLeaf", func(t *testing.T) {
		v, ok := h.Get("mode")
		require.True(t, ok)
		assert.Equal(t, "pad", v)
	})

	t.Run("NestedLeaf", func(t *testing.T) {
		v, ok := h.Get("sizes.scale")
		require.True(t, ok)
		assert.Equal(t, 0.5, v)
	})

	t.Run("Container", func(t *testing.T) {
		v, ok := h.Get("sizes")
		require.True(t, ok)
		assert.IsType(t, map[string]any{}, v)
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, ok := h.Get("sizes.depth")
		assert.False(t, ok)
	})

	t.Run("PathThroughLeaf", func(t *testing.T) {
		_, ok := h.Get("mode.inner")
		assert.False(t, ok)
	})
}

func TestHandleTypedAccessors(t *testing.T) {
	h := defineSettings(t)

	t.Run("String", func(t *testing.T) {
		v, err := h.String("mode")
		require.NoError(t, err)
		assert.Equal(t, "pad", v)
	})

	t.Run("StringFromInt", func(t *testing.T) {
		v, err := h.String("sizes.width")
		require.NoError(t, err)
		assert.Equal(t, "5", v)
	})

	t.Run("Int64", func(t *testing.T) {
		v, err := h.Int64("sizes.width")
		require.NoError(t, err)
		assert.Equal(t, int64(5), v)
	})

	t.Run("Bool", func(t *testing.T) {
		v, err := h.Bool("debug")
		require.NoError(t, err)
		assert.True(t, v)
	})

	t.Run("Float64", func(t *testing.T) {
		v, err := h.Float64("sizes.scale")
		require.NoError(t, err)
		assert.Equal(t, 0.5, v)
	})

	t.Run("Float64FromInt", func(t *testing.T) {
		v, err := h.Float64("sizes.width")
		require.NoError(t, err)
		assert.Equal(t, 5.0, v)
	})

	t.Run("UnknownPath", func(t *testing.T) {
		_, err := h.Int64("nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path not defined")
	})

	t.Run("Unconvertible", func(t *testing.T) {
		_, err := h.Int64("sizes.labels")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot convert")
	})
}

func TestHandleScan(t *testing.T) {
	type Sizes struct {
		Width  int64    `toml:"width"`
		Scale  float64  `toml:"scale"`
		Labels []string `toml:"labels"`
	}
	type Settings struct {
		Mode  string `toml:"mode"`
		Debug bool   `toml:"debug"`
		Sizes Sizes  `toml:"sizes"`
	}

	t.Run("WholeDictionary", func(t *testing.T) {
		h := defineSettings(t)

		var s Settings
		require.NoError(t, h.Scan("", &s))
		assert.Equal(t, "pad", s.Mode)
		assert.True(t, s.Debug)
		assert.Equal(t, int64(5), s.Sizes.Width)
		assert.Equal(t, []string{"a", "b"}, s.Sizes.Labels)
	})

	t.Run("Subtree", func(t *testing.T) {
		h := defineSettings(t)

		var s Sizes
		require.NoError(t, h.Scan("sizes", &s))
		assert.Equal(t, 0.5, s.Scale)
	})

	t.Run("NonPointerTarget", func(t *testing.T) {
		h := defineSettings(t)

		var s Settings
		err := h.Scan("", s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-nil pointer")
	})

	t.Run("NonMapPath", func(t *testing.T) {
		h := defineSettings(t)

		var s Settings
		err := h.Scan("mode", &s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scannable section")
	})
}

func TestHandleTOML(t *testing.T) {
	t.Run("RendersCurrentState", func(t *testing.T) {
		fs := newFlagSet(t)
		h, err := Define(fs, "settings", Tree{
			"mode":  String("pad", "Mode."),
			"sizes": Tree{"width": Integer(5, "Width.")},
		})
		require.NoError(t, err)
		require.NoError(t, fs.Parse([]string{"--settings.sizes.width=9"}))

		data, err := h.TOML()
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, toml.Unmarshal(data, &decoded))
		assert.Equal(t, "pad", decoded["mode"])
		sizes, ok := decoded["sizes"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, int64(9), sizes["width"])
	})

	t.Run("OmitsUnsetLeaves", func(t *testing.T) {
		fs := newFlagSet(t)
		h, err := Define(fs, "settings", Tree{
			"mode": String("pad", "Mode."),
			"tags": MultiString(nil, "Tags."),
		})
		require.NoError(t, err)

		data, err := h.TOML()
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, toml.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "mode")
		assert.NotContains(t, decoded, "tags")
	})
}

func TestHandleMapAliasesSharedState(t *testing.T) {
	fs := newFlagSet(t)
	h, err := Define(fs, "settings", Tree{"n": Integer(1, "N.")})
	require.NoError(t, err)

	// Map returns the live instance, not a copy.
	m := h.Map()
	require.NoError(t, fs.Set("settings.n", "2"))
	assert.Equal(t, 2, m["n"])
}
