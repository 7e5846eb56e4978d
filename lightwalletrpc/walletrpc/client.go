package walletrpc

import (
	"context"
	"io"

	"google.golang.org/grpc"
)

const (
	serviceName = "cash.z.wallet.sdk.rpc.CompactTxStreamer"

	methodGetLightdInfo     = "/" + serviceName + "/GetLightdInfo"
	methodGetLatestBlock    = "/" + serviceName + "/GetLatestBlock"
	methodGetBlockRange     = "/" + serviceName + "/GetBlockRange"
	methodGetTAddressTxids  = "/" + serviceName + "/GetTAddressTxids"
	methodGetTransaction    = "/" + serviceName + "/GetTransaction"
	methodGetMempoolStream  = "/" + serviceName + "/GetMempoolStream"
	methodGetSubtreeRoots   = "/" + serviceName + "/GetSubtreeRoots"
)

// CompactTxStreamerClient is the client API for the light-wallet daemon's
// CompactTxStreamer service. Streaming methods return the named recv-only
// stream interfaces a protoc-gen-go-grpc build would emit; the concrete
// types implementing them below are hand-authored, since this package
// stands in for what the daemon's .proto would otherwise generate (see
// lightwalletrpc/doc.go).
type CompactTxStreamerClient interface {
	GetLightdInfo(ctx context.Context, in *ChainSpec, opts ...grpc.CallOption) (*LightdInfo, error)
	GetLatestBlock(ctx context.Context, in *ChainSpec, opts ...grpc.CallOption) (*BlockID, error)
	GetBlockRange(ctx context.Context, in *BlockRange, opts ...grpc.CallOption) (CompactTxStreamer_GetBlockRangeClient, error)
	GetTAddressTxids(ctx context.Context, in *TransparentAddressBlockFilter, opts ...grpc.CallOption) (CompactTxStreamer_GetTAddressTxidsClient, error)
	GetTransaction(ctx context.Context, in *TxFilter, opts ...grpc.CallOption) (*RawTransaction, error)
	GetMempoolStream(ctx context.Context, in *Empty, opts ...grpc.CallOption) (CompactTxStreamer_GetMempoolStreamClient, error)
	GetSubtreeRoots(ctx context.Context, in *GetSubtreeRootsArg, opts ...grpc.CallOption) (CompactTxStreamer_GetSubtreeRootsClient, error)
}

type CompactTxStreamer_GetBlockRangeClient interface {
	Recv() (*CompactBlock, error)
	grpc.ClientStream
}

type CompactTxStreamer_GetTAddressTxidsClient interface {
	Recv() (*RawTransaction, error)
	grpc.ClientStream
}

type CompactTxStreamer_GetMempoolStreamClient interface {
	Recv() (*RawTransaction, error)
	grpc.ClientStream
}

type CompactTxStreamer_GetSubtreeRootsClient interface {
	Recv() (*SubtreeRoot, error)
	grpc.ClientStream
}

type compactTxStreamerClient struct {
	cc *grpc.ClientConn
}

// NewCompactTxStreamerClient wraps conn with typed method stubs for the
// CompactTxStreamer service.
func NewCompactTxStreamerClient(conn *grpc.ClientConn) CompactTxStreamerClient {
	return &compactTxStreamerClient{cc: conn}
}

func (c *compactTxStreamerClient) GetLightdInfo(ctx context.Context, in *ChainSpec, opts ...grpc.CallOption) (*LightdInfo, error) {
	out := new(LightdInfo)
	if err := c.cc.Invoke(ctx, methodGetLightdInfo, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compactTxStreamerClient) GetLatestBlock(ctx context.Context, in *ChainSpec, opts ...grpc.CallOption) (*BlockID, error) {
	out := new(BlockID)
	if err := c.cc.Invoke(ctx, methodGetLatestBlock, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compactTxStreamerClient) GetBlockRange(ctx context.Context, in *BlockRange, opts ...grpc.CallOption) (CompactTxStreamer_GetBlockRangeClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodGetBlockRange, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &getBlockRangeClient{stream}, nil
}

type getBlockRangeClient struct {
	grpc.ClientStream
}

func (s *getBlockRangeClient) Recv() (*CompactBlock, error) {
	m := new(CompactBlock)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *compactTxStreamerClient) GetTAddressTxids(ctx context.Context, in *TransparentAddressBlockFilter, opts ...grpc.CallOption) (CompactTxStreamer_GetTAddressTxidsClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodGetTAddressTxids, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &getTAddressTxidsClient{stream}, nil
}

type getTAddressTxidsClient struct {
	grpc.ClientStream
}

func (s *getTAddressTxidsClient) Recv() (*RawTransaction, error) {
	m := new(RawTransaction)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *compactTxStreamerClient) GetTransaction(ctx context.Context, in *TxFilter, opts ...grpc.CallOption) (*RawTransaction, error) {
	out := new(RawTransaction)
	if err := c.cc.Invoke(ctx, methodGetTransaction, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compactTxStreamerClient) GetMempoolStream(ctx context.Context, in *Empty, opts ...grpc.CallOption) (CompactTxStreamer_GetMempoolStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodGetMempoolStream, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &getMempoolStreamClient{stream}, nil
}

type getMempoolStreamClient struct {
	grpc.ClientStream
}

func (s *getMempoolStreamClient) Recv() (*RawTransaction, error) {
	m := new(RawTransaction)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *compactTxStreamerClient) GetSubtreeRoots(ctx context.Context, in *GetSubtreeRootsArg, opts ...grpc.CallOption) (CompactTxStreamer_GetSubtreeRootsClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, methodGetSubtreeRoots, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &getSubtreeRootsClient{stream}, nil
}

type getSubtreeRootsClient struct {
	grpc.ClientStream
}

func (s *getSubtreeRootsClient) Recv() (*SubtreeRoot, error) {
	m := new(SubtreeRoot)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// drainRawTxStream reads a RawTransaction stream to completion, returning
// io.EOF-free nil on normal close.
func drainRawTxStream(recv func() (*RawTransaction, error)) error {
	for {
		_, err := recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
