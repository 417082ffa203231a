package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewgille/lemurs/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "data_path: /data/weights.csv\ntaxa: [OGG]\nsims: 200\nlevel: 0.9\nseed: 42\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/weights.csv", c.DataPath)
	assert.Equal(t, []string{"OGG"}, c.Taxa)
	assert.Equal(t, 200, c.Sims)
	assert.Equal(t, 0.9, c.Level)
	assert.Equal(t, uint64(42), c.Seed)
	// Untouched keys keep their defaults.
	assert.Equal(t, float64(36), c.AdultAgeMonths)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"too few sims", "sims: 1\n"},
		{"level at one", "level: 1.0\n"},
		{"negative adult age", "adult_age_months: -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := Load(path)
			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := Default()
	want.DataPath = "weights.csv"
	want.Sims = 50
	require.NoError(t, Save(want, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
