// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 24, cfg.Recommend.TopN)
	assert.Equal(t, 6, cfg.Recommend.SimilarTopN)
	assert.Equal(t, 5, cfg.Recommend.PopularMinRatings)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
recommend:
  top_n: 10
`), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Recommend.TopN)
	assert.Equal(t, 6, cfg.Recommend.SimilarTopN, "untouched values keep their defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("BOOKLOVERS_SERVER__ADDR", ":9090")
	t.Setenv("BOOKLOVERS_RECOMMEND__TOP_N", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Recommend.TopN)
}

func TestInvalidLogLevelRejected(t *testing.T) {
	t.Setenv("BOOKLOVERS_LOG__LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}
