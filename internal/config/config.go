// Package config loads the chartgen configuration file.
//
// The file is TOML. Every key is optional; a missing file at the default
// location means defaults. Flags given on the command line win over the
// file.
//
//	width  = "1280"
//	height = "720px"
//	format = "png"
//
//	[cache]
//	enabled   = true
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl       = "24h"
//
//	[s3]
//	region = "eu-central-1"
//
//	[serve]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	appName = "chartgen"

	// EnvConfig names the environment variable holding a config path.
	EnvConfig = "CHARTGEN_CONFIG"

	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config models the config file.
type Config struct {
	// Path is where the config was read from; empty when defaults are used.
	Path string `toml:"-"`

	Width  string `toml:"width"`
	Height string `toml:"height"`
	Format string `toml:"format"`

	Cache Cache `toml:"cache"`
	S3    S3    `toml:"s3"`
	Serve Serve `toml:"serve"`
}

// Cache configures the artifact cache.
type Cache struct {
	Enabled  bool   `toml:"enabled"`
	Backend  string `toml:"backend"` // file or redis
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	TTL      string `toml:"ttl"` // time.ParseDuration syntax
}

// S3 configures s3:// output targets. Empty credentials fall back to the
// AWS shared config and environment.
type S3 struct {
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

// Serve configures the HTTP render server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Width:  "1024",
		Height: "768",
		Cache: Cache{
			Backend: BackendFile,
			TTL:     "168h",
		},
		Serve: Serve{Addr: ":8080"},
	}
}

// Load reads the config file. path is the --config flag value and may be
// empty, in which case $CHARTGEN_CONFIG and then the XDG location are
// tried. Only an explicitly named file has to exist.
func Load(path string) (*Config, error) {
	path, explicit, err := Locate(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes a config on top of the defaults and validates it.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want file or redis)", c.Cache.Backend)
	}
	if c.Cache.Enabled && c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return errors.New("cache.redis_url is required for the redis backend")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses cache.ttl. An empty value means entries never expire.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache.ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache.ttl: negative duration %s", c.Cache.TTL)
	}
	return d, nil
}

// CacheDir returns cache.dir, or the XDG cache location
// (~/.cache/chartgen) when it is unset.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// S3Enabled reports whether any S3 setting is present.
func (c *Config) S3Enabled() bool {
	return c.S3 != S3{}
}

// Locate resolves the config path and reports whether it was named
// explicitly (by flag or environment).
func Locate(flag string) (path string, explicit bool, err error) {
	if flag != "" {
		return flag, true, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true, nil
	}
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), false, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), false, nil
}

// DefaultCacheDir returns the cache directory using XDG standard
// (~/.cache/chartgen/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
