package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkPDF/internal/ink"
	"InkPDF/internal/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8888", cfg.Bridge.Addr)
	assert.Equal(t, 12.0, cfg.Engine.StrokeStep)
	assert.Equal(t, 20.0, cfg.Engine.MinDistance)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
tool = "highlight"
stroke_step = 6
pointer = "touch"
max_pages = 12

[bridge]
addr = "127.0.0.1:9000"
advertise = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "highlight", cfg.Engine.Tool)
	assert.Equal(t, 6.0, cfg.Engine.StrokeStep)
	assert.Equal(t, 12, cfg.Engine.MaxPages)
	assert.Equal(t, "127.0.0.1:9000", cfg.Bridge.Addr)
	assert.False(t, cfg.Bridge.Advertise)
	// untouched keys keep their defaults
	assert.Equal(t, state.DefaultColor, cfg.Engine.Color)
	assert.Equal(t, 1.0, cfg.Engine.EraseStride)

	s := cfg.Settings()
	assert.Equal(t, state.ToolHighlighter, s.Tool)
	assert.Equal(t, ink.PointerTouch, s.Accept)
	assert.False(t, s.Drawing)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":  "[engine\n",
		"tool":    "[engine]\ntool = \"brush\"\n",
		"pointer": "[engine]\npointer = \"mouse\"\n",
		"stride":  "[engine]\nerase_stride = 0\n",
		"step":    "[engine]\nstroke_step = -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
