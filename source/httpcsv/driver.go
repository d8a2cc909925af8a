// Package httpcsv downloads the input table as CSV over HTTP.
package httpcsv

import (
	"bytes"
	"context"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/internal/refdata"
	"tabula/internal/table"
	"tabula/source"
)

const Kind = "http"

type Driver struct {
	URL    string
	getter refdata.Getter
}

func New(cfg source.Config) (source.Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("source: http: url is required")
	}
	return &Driver{URL: cfg.URL, getter: &refdata.HTTPGetter{Timeout: cfg.Timeout}}, nil
}

func (d *Driver) Read(ctx context.Context) (*table.Table, error) {
	body, err := d.getter.Get(ctx, d.URL)
	if err != nil {
		return nil, errors.Wrap(err, "source: http")
	}
	logging.L().Info("downloaded input", "url", d.URL, "size", humanize.Bytes(uint64(len(body))))
	t, err := table.ReadCSV(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "source: http %s", d.URL)
	}
	return t, nil
}

func init() { source.Register(Kind, New) }
