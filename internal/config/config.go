// Package config loads the quire.yaml settings file used by the CLI and servers.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/quire/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for settings when --config is not given.
const DefaultPath = "quire.yaml"

// Backend names a story store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// FormatConfig declares one format of the built-in pool.
type FormatConfig struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
	URL     string `yaml:"url" json:"url"`
}

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
	// Lock enables the distributed write lock.
	Lock bool `yaml:"lock" json:"lock"`
}

// StorageConfig selects and configures the story store.
type StorageConfig struct {
	Backend Backend     `yaml:"backend" json:"backend"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 encoded 32 byte AES key. Empty disables encryption.
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
}

// Config represents the structure of quire.yaml.
type Config struct {
	// LibraryDir is the directory the file backend keeps stories in.
	LibraryDir     string           `yaml:"library" json:"library"`
	FormatsDir     string           `yaml:"formats_dir" json:"formats_dir"`
	App            domain.AppInfo   `yaml:"app" json:"app"`
	DefaultFormat  domain.FormatRef `yaml:"default_format" json:"default_format"`
	ProofingFormat domain.FormatRef `yaml:"proofing_format" json:"proofing_format"`
	Formats        []FormatConfig   `yaml:"formats" json:"formats"`
	Storage        StorageConfig    `yaml:"storage" json:"storage"`
	HTTPAddr       string           `yaml:"http_addr" json:"http_addr"`
	// Placeholders are extra {{KEY}} substitutions for published stories.
	Placeholders map[string]string `yaml:"placeholders" json:"placeholders"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		LibraryDir: filepath.Join(".quire", "stories"),
		FormatsDir: filepath.Join(".quire", "formats"),
		App:        domain.AppInfo{Name: "quire", Version: "dev"},
		DefaultFormat: domain.FormatRef{
			Name:    "Harlowe",
			Version: "3.3.8",
		},
		ProofingFormat: domain.FormatRef{
			Name:    "Paperthin",
			Version: "1.0.0",
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Formats: []FormatConfig{
			{Name: "Chapbook", Version: "2.2.0", URL: "chapbook-2/format.js"},
			{Name: "Harlowe", Version: "3.3.8", URL: "harlowe-3/format.js"},
			{Name: "Paperthin", Version: "1.0.0", URL: "paperthin-1/format.js"},
			{Name: "Snowman", Version: "2.0.2", URL: "snowman-2/format.js"},
			{Name: "SugarCube", Version: "2.37.3", URL: "sugarcube-2/format.js"},
		},
		HTTPAddr: ":8080",
	}
}

// Load reads a configuration file (YAML or JSON) over the defaults.
// A missing file is not an error and yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis:
	case "":
		c.Storage.Backend = BackendFile
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendRedis && c.Storage.Redis.Addr == "" {
		return fmt.Errorf("storage.redis.addr is required for the redis backend")
	}
	for i, f := range c.Formats {
		if f.Name == "" || f.Version == "" || f.URL == "" {
			return fmt.Errorf("formats[%d]: name, version and url are required", i)
		}
	}
	return nil
}

// StoryFormats turns the configured pool into unloaded formats. Relative URLs are
// resolved by the fetcher against FormatsDir.
func (c *Config) StoryFormats(ids domain.IDGenerator) []*domain.StoryFormat {
	out := make([]*domain.StoryFormat, 0, len(c.Formats))
	for _, f := range c.Formats {
		out = append(out, &domain.StoryFormat{
			ID:        ids.NewID(),
			Name:      f.Name,
			Version:   f.Version,
			URL:       f.URL,
			LoadState: domain.LoadStateUnloaded,
		})
	}
	return out
}
