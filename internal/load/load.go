// Package load writes the final table of a run to its destination.
package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"tabula/internal/table"
)

// Config is the pipeline file's output block.
type Config struct {
	Kind  string `yaml:"kind"`
	Path  string `yaml:"path"`
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

type Loader interface {
	Load(ctx context.Context, t *table.Table) error
}

// New returns the loader for cfg.Kind.
func New(cfg Config) (Loader, error) {
	switch cfg.Kind {
	case "csv":
		if cfg.Path == "" {
			return nil, errors.New("load: csv: path is required")
		}
		return &CSV{Path: cfg.Path}, nil
	case "postgres":
		if cfg.DSN == "" || cfg.Table == "" {
			return nil, errors.New("load: postgres: dsn and table are required")
		}
		return &Postgres{DSN: cfg.DSN, Table: cfg.Table}, nil
	default:
		return nil, fmt.Errorf("load: unsupported kind %q", cfg.Kind)
	}
}

// CSV writes the table to a file, creating parent directories.
type CSV struct {
	Path string
}

func (c *CSV) Load(_ context.Context, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return errors.Wrap(err, "load: csv")
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return errors.Wrap(err, "load: csv")
	}
	if err := table.WriteCSV(f, t); err != nil {
		f.Close()
		return errors.Wrapf(err, "load: csv %s", c.Path)
	}
	return f.Close()
}
