package transform

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"tabula/internal/table"
	"tabula/internal/transport"
)

// Client wraps a plugin (over gRPC or in-process) and exposes a uniform API.
// Remote steps can swap transport implementations behind this interface.
type Client interface {
	Apply(ctx context.Context, t *table.Table, options map[string]any) (*table.Table, error)
	Close() error
}

// GRPCClient talks to a TableTransform plugin. The connection is opened on
// first use and reused afterwards.
type GRPCClient struct {
	target string
	opts   []grpc.DialOption

	once sync.Once
	conn *grpc.ClientConn
	svc  transport.TableTransformClient
	err  error
}

func NewGRPCClient(target string, opts ...grpc.DialOption) *GRPCClient {
	return &GRPCClient{target: target, opts: opts}
}

func (c *GRPCClient) connect() error {
	c.once.Do(func() {
		c.conn, c.err = transport.Dial(c.target, c.opts...)
		if c.err == nil {
			c.svc = transport.NewTableTransformClient(c.conn)
		}
	})
	return c.err
}

func (c *GRPCClient) Apply(ctx context.Context, t *table.Table, options map[string]any) (*table.Table, error) {
	if err := c.connect(); err != nil {
		return nil, err
	}
	req, err := transport.EncodeTable(t, options)
	if err != nil {
		return nil, err
	}
	resp, err := c.svc.Apply(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "plugin %s", c.target)
	}
	out, _, err := transport.DecodeTable(resp)
	return out, err
}

func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// InProcessClient adapts a Step compiled into the binary to the Client API.
type InProcessClient struct {
	impl Step
}

func NewInProcessClient(impl Step) *InProcessClient { return &InProcessClient{impl: impl} }

func (c *InProcessClient) Apply(ctx context.Context, t *table.Table, _ map[string]any) (*table.Table, error) {
	return c.impl.Apply(ctx, t)
}

func (c *InProcessClient) Close() error { return nil }

// PluginFunc serves a table transformation as a TableTransform plugin. It
// receives the options sent by the calling RemoteTransformer.
type PluginFunc func(ctx context.Context, t *table.Table, options map[string]any) (*table.Table, error)

func (f PluginFunc) Apply(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	t, opts, err := transport.DecodeTable(in)
	if err != nil {
		return nil, err
	}
	out, err := f(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	return transport.EncodeTable(out, nil)
}
