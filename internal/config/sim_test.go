package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptySimConfigDefaults(t *testing.T) {
	cfg := EmptySimConfig()

	assert.Equal(t, 3, cfg.GetGridMargin())
	assert.Equal(t, 1000, cfg.GetTrials())
	assert.Equal(t, 0, cfg.GetWorkers())
	assert.Equal(t, int64(1), cfg.GetBaseSeed())
	assert.Equal(t, "4:255:1", cfg.GetSweepRange())
}

func TestLoadSimConfigPartial(t *testing.T) {
	path := writeConfigFile(t, "sim.json", `{"trials": 250, "base_seed": 99}`)

	cfg, err := LoadSimConfig(path)
	require.NoError(t, err)

	// Named fields override, the rest keep their defaults.
	assert.Equal(t, 250, cfg.GetTrials())
	assert.Equal(t, int64(99), cfg.GetBaseSeed())
	assert.Equal(t, 3, cfg.GetGridMargin())
	assert.Equal(t, "4:255:1", cfg.GetSweepRange())
}

func TestLoadSimConfigFull(t *testing.T) {
	path := writeConfigFile(t, "sim.json",
		`{"grid_margin": 2, "trials": 50, "workers": 8, "base_seed": 7, "sweep_range": "8:64:8"}`)

	cfg, err := LoadSimConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.GetGridMargin())
	assert.Equal(t, 50, cfg.GetTrials())
	assert.Equal(t, 8, cfg.GetWorkers())
	assert.Equal(t, int64(7), cfg.GetBaseSeed())
	assert.Equal(t, "8:64:8", cfg.GetSweepRange())
}

func TestLoadDefaultSimConfig(t *testing.T) {
	t.Run("absent file yields empty config", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := LoadDefaultSimConfig()
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.GetTrials())
	})

	t.Run("present file is loaded", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, DefaultConfigPath),
			[]byte(`{"trials": 42}`), 0o644))
		t.Chdir(dir)

		cfg, err := LoadDefaultSimConfig()
		require.NoError(t, err)
		assert.Equal(t, 42, cfg.GetTrials())
	})
}

func TestLoadSimConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "absent.json")
		}},
		{"wrong extension", func(t *testing.T) string {
			return writeConfigFile(t, "sim.yaml", `{}`)
		}},
		{"malformed json", func(t *testing.T) string {
			return writeConfigFile(t, "sim.json", `{"trials": `)
		}},
		{"invalid values", func(t *testing.T) string {
			return writeConfigFile(t, "sim.json", `{"trials": 0}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSimConfig(tt.path(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	intp := func(v int) *int { return &v }

	tests := []struct {
		name    string
		cfg     SimConfig
		wantErr bool
	}{
		{"empty", SimConfig{}, false},
		{"margin floor", SimConfig{GridMargin: intp(2)}, false},
		{"margin too small", SimConfig{GridMargin: intp(1)}, true},
		{"zero trials", SimConfig{Trials: intp(0)}, true},
		{"negative workers", SimConfig{Workers: intp(-1)}, true},
		{"zero workers", SimConfig{Workers: intp(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
