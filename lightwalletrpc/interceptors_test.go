package lightwalletrpc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestErrorLogUnaryClientInterceptor_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return wantErr
	}

	err := errorLogUnaryClientInterceptor(context.Background(), "/Service/Method", nil, nil, nil, invoker)
	assert.Same(t, wantErr, err)
}

func TestErrorLogUnaryClientInterceptor_PassesThroughSuccess(t *testing.T) {
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return nil
	}

	err := errorLogUnaryClientInterceptor(context.Background(), "/Service/Method", nil, nil, nil, invoker)
	assert.NoError(t, err)
}

func TestDefaultDialOptions_ReturnsUnaryAndStreamInterceptors(t *testing.T) {
	opts := defaultDialOptions()
	require.Len(t, opts, 2)
}
