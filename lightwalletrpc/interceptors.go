package lightwalletrpc

import (
	"context"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
)

// errorLogUnaryClientInterceptor logs any error a unary RPC returns.
func errorLogUnaryClientInterceptor(ctx context.Context, method string, req, reply interface{},
	cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err != nil {
		lwrLog.Errorf("[%v]: %v", method, err)
	}
	return err
}

// errorLogStreamClientInterceptor logs any error opening a streaming RPC.
func errorLogStreamClientInterceptor(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn,
	method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {

	stream, err := streamer(ctx, desc, cc, method, opts...)
	if err != nil {
		lwrLog.Errorf("[%v]: %v", method, err)
	}
	return stream, err
}

// defaultDialOptions chains Prometheus client-side RPC metrics with this
// package's own error logging, so callers of Dial get both for free
// unless they override the interceptors themselves.
func defaultDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithUnaryInterceptor(grpc_middleware.ChainUnaryClient(
			grpc_prometheus.UnaryClientInterceptor,
			errorLogUnaryClientInterceptor,
		)),
		grpc.WithStreamInterceptor(grpc_middleware.ChainStreamClient(
			grpc_prometheus.StreamClientInterceptor,
			errorLogStreamClientInterceptor,
		)),
	}
}
