package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/config"
)

func TestNewDefaults(t *testing.T) {
	cfg := config.New()
	assert.False(t, cfg.DCLOADAllowUnsafe)
	assert.False(t, cfg.MMIOTrace)
	assert.Equal(t, config.DefaultTimeslice, cfg.Timeslice)
}

func TestNewDiskMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.NewDisk(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.New(), cfg)
}

func TestSaveAndReloadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "katana.toml")

	cfg := config.New()
	cfg.BIOSPath = "/roms/dc_boot.bin"
	cfg.DCLOADAllowUnsafe = true
	cfg.Timeslice = 2 * time.Millisecond

	require.NoError(t, cfg.Save(path))

	reloaded, err := config.NewDisk(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestNewDiskZeroTimesliceFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "katana.toml")
	cfg := config.New()
	cfg.Timeslice = 0
	require.NoError(t, cfg.Save(path))

	reloaded, err := config.NewDisk(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTimeslice, reloaded.Timeslice)
}
