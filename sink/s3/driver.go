// Package s3 uploads snapshots to an S3 bucket ("upload").
//
// Options: region, endpoint (for S3-compatible stores) and prefix, prepended
// to every object key.
package s3

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/sink"
)

const Method = "upload"

// Uploader is the subset of *s3manager.Uploader the driver uses.
type Uploader interface {
	UploadWithContext(ctx aws.Context, in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type Driver struct {
	up     Uploader
	bucket string
	prefix string
}

// NewDriver returns a driver using up instead of a session built from the
// metadata options.
func NewDriver(up Uploader) *Driver { return &Driver{up: up} }

func (d *Driver) Configure(m sink.Metadata) error {
	d.bucket = m.Destination
	d.prefix = m.Options["prefix"]
	if d.up != nil {
		return nil
	}
	cfg := &aws.Config{}
	if r := m.Options["region"]; r != "" {
		cfg.Region = aws.String(r)
	}
	if ep := m.Options["endpoint"]; ep != "" {
		cfg.Endpoint = aws.String(ep)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return errors.Wrap(err, "s3: session")
	}
	d.up = s3manager.NewUploader(sess)
	return nil
}

func (d *Driver) Push(ctx context.Context, key string, s sink.Snapshot) error {
	body, err := sink.Encode(s)
	if err != nil {
		return err
	}
	if d.prefix != "" {
		key = path.Join(d.prefix, key)
	}
	out, err := d.up.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return errors.Wrapf(err, "s3: upload s3://%s/%s", d.bucket, key)
	}
	logging.L().Debug("snapshot uploaded", "location", out.Location, "size", humanize.Bytes(uint64(len(body))))
	return nil
}

func (d *Driver) Close() error { return nil }

func init() { sink.Register(Method, func() sink.Adapter { return &Driver{} }) }
