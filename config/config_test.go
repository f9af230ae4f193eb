package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "adaptive", cfg.Attention.WeightMode)
	assert.Equal(t, "frustum", cfg.Attention.Visibility)
	assert.Equal(t, "inverse_distance", cfg.Attention.Proximity)
	assert.True(t, cfg.Attention.AngularCue)
	assert.Equal(t, 5, cfg.Derived.NumCues)
	assert.InDelta(t, 1280.0/800.0, cfg.Derived.Aspect, 1e-9)
	assert.Greater(t, cfg.Scene.InitialObjects, 0)
	assert.Len(t, cfg.Scene.Occluders, 2)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	overlay := []byte(`
attention:
  weight_mode: fixed
  visibility: raycast
  angular_cue: false
  fixed_weights:
    motion: 0.9
`)
	require.NoError(t, os.WriteFile(path, overlay, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fixed", cfg.Attention.WeightMode)
	assert.Equal(t, "raycast", cfg.Attention.Visibility)
	assert.Equal(t, 4, cfg.Derived.NumCues)
	assert.InDelta(t, 0.9, cfg.Attention.FixedWeights.Motion, 1e-9)
	// Untouched keys keep their defaults
	assert.InDelta(t, 0.25, cfg.Attention.FixedWeights.Color, 1e-9)
	assert.Equal(t, "inverse_distance", cfg.Attention.Proximity)
}

func TestLoadRejectsUnknownEnum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attention:\n  visibility: xray\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attention.visibility")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Attention, again.Attention)
	assert.Equal(t, cfg.Scene.Bounds, again.Scene.Bounds)
}
