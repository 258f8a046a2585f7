package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Polkadex-Substrate/go-scale/log"
	"github.com/Polkadex-Substrate/go-scale/registry"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "badgerdb", cfg.DB.Type)
	assert.Equal(t, "./scaledb", cfg.DB.Dir)
	assert.Empty(t, cfg.Types)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	types := writeFile(t, dir, "types.yaml", "types:\n  Nonce: u64\n")
	path := writeFile(t, dir, "scale.yaml", `
db:
  type: memorydb
types:
  - `+types+`
log:
  level: warn
  formatter: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memorydb", cfg.DB.Type)
	assert.Equal(t, []string{types}, cfg.Types)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	def, ok := reg.Definition("Nonce")
	require.True(t, ok)
	assert.Equal(t, "u64", def)

	c, err := cfg.OpenCache()
	require.NoError(t, err)
	defer c.Close()
	cached, err := c.Registry()
	require.NoError(t, err)
	assert.True(t, cached.HasType("Nonce"))

	t.Setenv("SCALE_DB_DIR", "/var/lib/scale")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/scale", cfg.DB.Dir)
}

func TestLogSection(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "scale.log")
	path := writeFile(t, dir, "scale.yaml", "log:\n  level: debug\n  formatter: json\n  out: "+out+"\n")
	t.Cleanup(func() { log.Configure(viper.New()) })

	_, err := Load(path)
	require.NoError(t, err)

	// module loggers created at import time follow the log section
	require.NoError(t, registry.New().LoadYAML(strings.NewReader("types:\n  Nonce: u64\n")))
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "loaded type bundle")
	assert.Contains(t, string(content), `"module":"registry"`)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg := &Config{Types: []string{filepath.Join(t.TempDir(), "missing.yaml")}}
	_, err = cfg.Registry()
	assert.Error(t, err)

	cfg = &Config{DB: DBConfig{Type: "nosuchdb"}}
	_, err = cfg.OpenCache()
	assert.Error(t, err)
}
