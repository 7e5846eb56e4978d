// Package walletrpc holds the wire message types for the light-wallet
// daemon's CompactTxStreamer service. The schema itself is owned by the
// daemon (out of scope for this module); these are the client-side
// stand-ins a protoc-gen-go-grpc run would normally produce, shaped after
// zcash/lightwalletd's walletrpc package.
package walletrpc

// ChainSpec is an empty request used by calls that operate on "the
// current chain" with no further parameters.
type ChainSpec struct{}

// Empty is an empty request/response placeholder.
type Empty struct{}

// BlockID identifies a block by height (and, optionally, hash -- omitted
// here since this module only ever requests by height).
type BlockID struct {
	Height uint64
}

// BlockRange is an inclusive [Start, End] height range, as the daemon's
// wire format expects; callers translate from the half-open ScanRange
// convention by subtracting one from End.
type BlockRange struct {
	Start *BlockID
	End   *BlockID
}

// LightdInfo describes the daemon's view of the chain it is serving.
type LightdInfo struct {
	ChainName               string
	SaplingActivationHeight uint64
	ConsensusBranchId       uint32
}

// CompactTx is a minimized transaction within a CompactBlock, containing
// only the data relevant to shielded-pool scanning.
type CompactTx struct {
	Index int
	Hash  []byte
}

// CompactBlock is a minimized block: height, previous-block hash, and a
// compact transaction list. It is cached only while unscanned.
type CompactBlock struct {
	Height       uint64
	Hash         []byte
	PrevHash     []byte
	Transactions []*CompactTx
}

// TransparentAddressBlockFilter requests every txid touching a
// transparent address within a block range.
type TransparentAddressBlockFilter struct {
	Address string
	Range   *BlockRange
}

// RawTransaction is a raw, serialized transaction plus the height it was
// mined at (zero if unmined).
type RawTransaction struct {
	Data   []byte
	Height uint64
}

// TxFilter identifies a transaction to fetch by its 32-byte hash.
type TxFilter struct {
	Hash []byte
}

// ShieldedProtocol selects which note-commitment tree a subtree-root
// request applies to.
type ShieldedProtocol int32

const (
	ShieldedProtocolSapling ShieldedProtocol = 0
	ShieldedProtocolOrchard ShieldedProtocol = 1
)

// GetSubtreeRootsArg requests the full subtree-root sequence for one
// shielded protocol, starting at a given index.
type GetSubtreeRootsArg struct {
	StartIndex uint32
	Protocol   ShieldedProtocol
}

// SubtreeRoot is one commitment-tree checkpoint in the sequence.
type SubtreeRoot struct {
	RootHash              []byte
	CompletingBlockHeight uint64
}
