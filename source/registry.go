// Package source produces the input table of a run.
package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tabula/internal/table"
)

// Config is the pipeline file's source block.
type Config struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
	URL  string `yaml:"url"`
	// Timeout bounds network reads; it is filled from the run config.
	Timeout time.Duration `yaml:"-"`
}

type Adapter interface {
	Read(ctx context.Context) (*table.Table, error)
}

// Factory builds an Adapter from its config.
type Factory func(Config) (Adapter, error)

var registry = map[string]Factory{}

// Register is called from each driver's init().
func Register(kind string, f Factory) {
	registry[kind] = f
}

// Open returns the adapter for cfg.Kind.
func Open(cfg Config) (Adapter, error) {
	if f, ok := registry[cfg.Kind]; ok {
		return f(cfg)
	}
	return nil, fmt.Errorf("source: unsupported kind %q", cfg.Kind)
}

func Kinds() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
