package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GHI", "DNI", "DHI", "TModA", "TModB"}, c.CorrColumns)
	assert.Equal(t, 3.0, c.ZScoreThreshold)
	assert.Equal(t, "Timestamp", c.TimeColumn)
	assert.Equal(t, 50, c.HistogramBins)
	assert.Equal(t, 1200, c.ChartWidth)
	assert.NotEmpty(t, c.StudiesDir)
	assert.NotNil(t, c.Sites)
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)
	c.ZScoreThreshold = 2.5
	c.Sites = map[string]string{"benin": "/data/benin.csv"}
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.ZScoreThreshold)
	assert.Equal(t, "/data/benin.csv", got.Sites["benin"])
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SOLARSCOPE_HISTOGRAM_BINS", "20")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, c.HistogramBins)
}
