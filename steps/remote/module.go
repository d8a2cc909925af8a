// Package remote provides RemoteTransformer, a step executed by an
// out-of-process plugin speaking the TableTransform gRPC service.
package remote

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"tabula/internal/table"
	"tabula/internal/transform"
)

const Name = "RemoteTransformer"

const defaultTimeout = 10 * time.Second

// Dialer opens a Client for a plugin address. Tests swap in an in-process
// client; production uses transform.NewGRPCClient.
type Dialer func(address string) transform.Client

type Module struct {
	Dial Dialer
}

func (m Module) Register(r *transform.Registry) error {
	dial := m.Dial
	if dial == nil {
		dial = func(addr string) transform.Client { return transform.NewGRPCClient(addr) }
	}
	return r.Register(Name, func(p transform.Params) (transform.Step, error) {
		return New(p, dial)
	})
}

type Transformer struct {
	Address string
	Timeout time.Duration
	Options map[string]any

	client transform.Client
}

func New(params transform.Params, dial Dialer) (*Transformer, error) {
	r := transform.NewParamReader(Name, params)
	t := &Transformer{
		Address: r.String("address"),
		Timeout: time.Duration(r.OptInt("timeout_ms", int(defaultTimeout/time.Millisecond))) * time.Millisecond,
		Options: r.Map("options"),
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	if t.Timeout <= 0 {
		return nil, &transform.InvalidParameterError{Step: Name, Param: "timeout_ms", Reason: "must be positive"}
	}
	t.client = dial(t.Address)
	return t, nil
}

func (t *Transformer) Apply(ctx context.Context, tb *table.Table) (*table.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()
	out, err := t.client.Apply(ctx, tb, t.Options)
	if err != nil {
		return nil, errors.Wrapf(err, "remote %s", t.Address)
	}
	return out, nil
}

// Close releases the plugin connection.
func (t *Transformer) Close() error { return t.client.Close() }
