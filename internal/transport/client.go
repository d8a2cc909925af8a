package transport

import (
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial creates a client connection to a plugin. The connection is plaintext
// unless opts carry transport credentials. gRPC connects lazily.
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	cc, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: dial %s", target)
	}
	return cc, nil
}
