package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TABULA__"

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type RefdataConfig struct {
	URL      string        `koanf:"url"`
	Timeout  time.Duration `koanf:"timeout"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
	Cache    string        `koanf:"cache"` // memory|bolt
	BoltPath string        `koanf:"bolt_path"`
}

type MetricsConfig struct {
	Pushgateway string `koanf:"pushgateway"`
	Job         string `koanf:"job"`
}

type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// RunConfig holds process settings that are not part of a pipeline file.
type RunConfig struct {
	Log         LogConfig     `koanf:"log"`
	PreviewRows int           `koanf:"preview_rows"`
	Refdata     RefdataConfig `koanf:"refdata"`
	Metrics     MetricsConfig `koanf:"metrics"`
	HTTP        HTTPConfig    `koanf:"http"`
}

// LoadRunConfig merges YAML (if present) with env-vars
// (prefix `TABULA__`, delimiter `__`, e.g. TABULA__REFDATA__CACHE_TTL=1h).
func LoadRunConfig(path string) (RunConfig, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return RunConfig{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	_ = k.Load(env.Provider(envPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)

	var cfg RunConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	applyDefaults(&cfg, k)
	if cfg.Refdata.Cache != "memory" && cfg.Refdata.Cache != "bolt" {
		return cfg, fmt.Errorf("config: refdata.cache %q not supported (memory|bolt)", cfg.Refdata.Cache)
	}
	return cfg, nil
}

// applyDefaults fills unset keys. preview_rows and refdata.cache_ttl accept
// an explicit 0 (previews off, cache off), so only their absence defaults.
func applyDefaults(c *RunConfig, k *koanf.Koanf) {
	if !k.Exists("preview_rows") {
		c.PreviewRows = 5
	}
	if c.Refdata.Timeout == 0 {
		c.Refdata.Timeout = 30 * time.Second
	}
	if !k.Exists("refdata.cache_ttl") {
		c.Refdata.CacheTTL = 24 * time.Hour
	}
	if c.Refdata.Cache == "" {
		c.Refdata.Cache = "memory"
	}
	if c.Refdata.BoltPath == "" {
		c.Refdata.BoltPath = "tabula-refdata.db"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "tabula"
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
}
