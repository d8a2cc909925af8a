// Package file reads the input table from a CSV file. When the path is a
// directory the most recently modified *.csv in it is used.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/internal/table"
	"tabula/source"
)

const Kind = "file"

type Driver struct {
	Path string
}

func New(cfg source.Config) (source.Adapter, error) {
	if cfg.Path == "" {
		return nil, errors.New("source: file: path is required")
	}
	return &Driver{Path: cfg.Path}, nil
}

func (d *Driver) Read(_ context.Context) (*table.Table, error) {
	p, err := Resolve(d.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrap(err, "source: file")
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		logging.L().Info("reading input", "path", p, "size", humanize.Bytes(uint64(fi.Size())))
	}
	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "source: file %s", p)
	}
	return t, nil
}

// Resolve returns path itself, or the newest *.csv when path is a directory.
func Resolve(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrap(err, "source: file")
	}
	if !fi.IsDir() {
		return path, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "*.csv"))
	if err != nil {
		return "", errors.Wrap(err, "source: file")
	}
	var newest string
	var newestMod int64
	for _, m := range matches {
		st, err := os.Stat(m)
		if err != nil || st.IsDir() {
			continue
		}
		if mod := st.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	if newest == "" {
		return "", errors.Errorf("source: file: no csv files in %s", path)
	}
	return newest, nil
}

func init() { source.Register(Kind, New) }
