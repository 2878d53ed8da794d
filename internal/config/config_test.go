package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/quire/internal/testutils"
	"github.com/aretw0/quire/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "quire.yaml", `
library: ./stories
app:
  name: Workshop
  version: 2.0.0
default_format:
  name: SugarCube
  version: 2.37.3
formats:
  - name: SugarCube
    version: 2.37.3
    url: sugarcube-2/format.js
storage:
  backend: redis
  redis:
    addr: cache:6379
    prefix: "lib:"
    ttl: 1h
    lock: true
http_addr: ":9000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./stories", cfg.LibraryDir)
	assert.Equal(t, domain.AppInfo{Name: "Workshop", Version: "2.0.0"}, cfg.App)
	assert.Equal(t, domain.FormatRef{Name: "SugarCube", Version: "2.37.3"}, cfg.DefaultFormat)
	assert.Equal(t, domain.FormatRef{Name: "Paperthin", Version: "1.0.0"}, cfg.ProofingFormat, "unset keys keep defaults")
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Storage.Redis.TTL)
	assert.True(t, cfg.Storage.Redis.Lock)
	assert.Equal(t, ":9000", cfg.HTTPAddr)

	pool := cfg.StoryFormats(&testutils.SequenceIDs{})
	require.Len(t, pool, 1)
	assert.Equal(t, "SugarCube", pool[0].Name)
	assert.Equal(t, domain.LoadStateUnloaded, pool[0].LoadState)
	assert.NotEmpty(t, pool[0].ID)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "quire.json", `{"library": "lib", "storage": {"backend": "memory"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lib", cfg.LibraryDir)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "storage:\n  backend: s3\n"},
		{"incomplete format", "formats:\n  - name: Harlowe\n"},
		{"redis without addr", "storage:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{"malformed", "library: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(t, "quire.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}
