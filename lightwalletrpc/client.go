package lightwalletrpc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"

	"github.com/decred/zeclightsync/lightwalletrpc/walletrpc"
	"github.com/decred/zeclightsync/syncstatus"
)

// Info is the daemon's description of the chain it is serving, enough to
// derive the network parameters for the wallet store.
type Info struct {
	ChainName               string
	SaplingActivationHeight syncstatus.BlockHeight
	ConsensusBranchId       uint32
}

// RawTx is a raw transaction as returned by the daemon, together with the
// height it was mined at (zero when unmined, e.g. from the mempool).
type RawTx struct {
	Data   []byte
	Height syncstatus.BlockHeight
}

// Client is a façade over one underlying gRPC connection to the
// light-wallet daemon, shared by pointer. The connection itself allows
// only one logical stream in flight at a time, so every method takes mu
// before touching rpc.
type Client struct {
	mu   sync.Mutex
	conn *grpc.ClientConn
	rpc  walletrpc.CompactTxStreamerClient

	mempoolLimiter *rate.Limiter
}

// Dial opens a gRPC connection to uri and wraps it in a Client.
// Prometheus client metrics and error logging are wired in by default;
// opts is appended after them, so a caller can still override via its
// own interceptor options.
func Dial(ctx context.Context, uri string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append(defaultDialOptions(), opts...)

	conn, err := grpc.DialContext(ctx, uri, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("lightwalletrpc: dial %s: %w", uri, err)
	}

	return &Client{
		conn:           conn,
		rpc:            walletrpc.NewCompactTxStreamerClient(conn),
		mempoolLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// GetLightdInfo fetches the daemon's chain parameters.
func (c *Client) GetLightdInfo(ctx context.Context) (*Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := c.rpc.GetLightdInfo(ctx, &walletrpc.ChainSpec{})
	if err != nil {
		return nil, err
	}

	return &Info{
		ChainName:               info.ChainName,
		SaplingActivationHeight: syncstatus.BlockHeight(info.SaplingActivationHeight),
		ConsensusBranchId:       info.ConsensusBranchId,
	}, nil
}

// GetLatestBlock fetches the current tip height known to the daemon.
func (c *Client) GetLatestBlock(ctx context.Context) (syncstatus.BlockHeight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.rpc.GetLatestBlock(ctx, &walletrpc.ChainSpec{})
	if err != nil {
		return 0, err
	}

	return syncstatus.BlockHeight(id.Height), nil
}

// GetSubtreeRoots streams the full subtree-root sequence for protocol,
// starting at startIndex.
func (c *Client) GetSubtreeRoots(ctx context.Context, protocol syncstatus.ShieldedProtocol, startIndex uint32) ([]syncstatus.SubtreeRoot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stream, err := c.rpc.GetSubtreeRoots(ctx, &walletrpc.GetSubtreeRootsArg{
		StartIndex: startIndex,
		Protocol:   walletrpc.ShieldedProtocol(protocol),
	})
	if err != nil {
		return nil, err
	}

	var roots []syncstatus.SubtreeRoot
	for {
		r, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var hash [32]byte
		copy(hash[:], r.RootHash)
		roots = append(roots, syncstatus.SubtreeRoot{
			CompletingBlockHeight: syncstatus.BlockHeight(r.CompletingBlockHeight),
			RootHash:              hash,
		})
	}

	return roots, nil
}

// GetBlockRange streams compact blocks for the inclusive [start, end]
// daemon-side range; callers translate from half-open ScanRanges by
// passing end-1.
func (c *Client) GetBlockRange(ctx context.Context, start, end syncstatus.BlockHeight) ([]*walletrpc.CompactBlock, error) {
	lwrLog.Debugf("Fetching blocks [%d, %d]", start, end)

	c.mu.Lock()
	defer c.mu.Unlock()
	stream, err := c.rpc.GetBlockRange(ctx, &walletrpc.BlockRange{
		Start: &walletrpc.BlockID{Height: uint64(start)},
		End:   &walletrpc.BlockID{Height: uint64(end)},
	})
	if err != nil {
		return nil, err
	}

	var blocks []*walletrpc.CompactBlock
	for {
		b, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}

	lwrLog.Tracef("fetched blocks [%d, %d]: %s", start, end, newLogClosure(func() string {
		return spew.Sdump(blocks)
	}))

	return blocks, nil
}

// GetTAddressTxids streams every raw transaction touching address within
// the inclusive [start, end] daemon-side height range.
func (c *Client) GetTAddressTxids(ctx context.Context, address string, start, end syncstatus.BlockHeight) ([]RawTx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stream, err := c.rpc.GetTAddressTxids(ctx, &walletrpc.TransparentAddressBlockFilter{
		Address: address,
		Range: &walletrpc.BlockRange{
			Start: &walletrpc.BlockID{Height: uint64(start)},
			End:   &walletrpc.BlockID{Height: uint64(end)},
		},
	})
	if err != nil {
		return nil, err
	}

	var txs []RawTx
	for {
		rawtx, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		txs = append(txs, RawTx{Data: rawtx.Data, Height: syncstatus.BlockHeight(rawtx.Height)})
	}

	return txs, nil
}

// GetTransaction fetches one transaction's raw bytes by txid.
func (c *Client) GetTransaction(ctx context.Context, txid syncstatus.TxId) (*RawTx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rawtx, err := c.rpc.GetTransaction(ctx, &walletrpc.TxFilter{Hash: txid[:]})
	if err != nil {
		return nil, err
	}

	return &RawTx{Data: rawtx.Data, Height: syncstatus.BlockHeight(rawtx.Height)}, nil
}

// WatchMempool opens the mempool stream and consumes (and discards)
// messages until the stream ends or ctx is cancelled. Its only purpose is
// to block until the daemon signals a change likely associated with a
// new block. A rate limiter lets at most one stream be opened per
// second, so a caller that calls again after the daemon closed the
// stream early is paced; WatchMempool itself does not reconnect.
func (c *Client) WatchMempool(ctx context.Context) error {
	if err := c.mempoolLimiter.Wait(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	stream, err := c.rpc.GetMempoolStream(ctx, &walletrpc.Empty{})
	if err != nil {
		return err
	}

	return drainRawTxStream(stream.Recv)
}
