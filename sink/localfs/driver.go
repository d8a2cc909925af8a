// Package localfs writes snapshots below a local directory ("persist").
package localfs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/sink"
)

const Method = "persist"

type driver struct {
	root string
}

func (d *driver) Configure(m sink.Metadata) error {
	d.root = m.Destination
	return os.MkdirAll(d.root, 0o755)
}

func (d *driver) Push(_ context.Context, key string, s sink.Snapshot) error {
	body, err := sink.Encode(s)
	if err != nil {
		return err
	}
	p := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(err, "localfs: mkdir")
	}
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return errors.Wrap(err, "localfs: write")
	}
	logging.L().Debug("snapshot persisted", "path", p, "size", humanize.Bytes(uint64(len(body))))
	return nil
}

func (d *driver) Close() error { return nil }

func init() { sink.Register(Method, func() sink.Adapter { return &driver{} }) }
