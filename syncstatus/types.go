// Package syncstatus defines the value types shared between the wallet
// store, the block cache, and the sync engine: block heights, transaction
// identifiers, scan ranges and their priority ordering, and the progress
// snapshot reported to callers.
package syncstatus

import "fmt"

// BlockHeight is a height on the active chain. Heights are monotonically
// increasing along any given chain; a reorg is detected, not represented,
// by this type.
type BlockHeight uint32

// TxId is a 32-byte transaction identifier.
type TxId [32]byte

func (id TxId) String() string {
	return fmt.Sprintf("%x", [32]byte(id))
}

// ShieldedProtocol identifies which shielded pool a subtree root sequence
// belongs to. Only Sapling is seeded today; Orchard is a future parameter
// value, not a future code path (see syncengine's Engine.seedSubtreeRoots).
type ShieldedProtocol int

const (
	ProtocolSapling ShieldedProtocol = iota
	ProtocolOrchard
)

// SubtreeRoot is a precomputed commitment-tree checkpoint used to bootstrap
// incremental Merkle proofs without rescanning history.
type SubtreeRoot struct {
	CompletingBlockHeight BlockHeight
	RootHash              [32]byte
}

// ScanPriority orders scan ranges by how urgently they should be scanned.
// Verify outranks everything: it represents blocks the wallet must
// re-validate before any other scanning is trustworthy.
type ScanPriority int

const (
	PriorityIgnored ScanPriority = iota
	PriorityHistoric
	PriorityFoundNote
	PriorityOpenAdjacent
	PriorityChainTip
	PriorityVerify
)

func (p ScanPriority) String() string {
	switch p {
	case PriorityVerify:
		return "Verify"
	case PriorityChainTip:
		return "ChainTip"
	case PriorityOpenAdjacent:
		return "OpenAdjacent"
	case PriorityFoundNote:
		return "FoundNote"
	case PriorityHistoric:
		return "Historic"
	case PriorityIgnored:
		return "Ignored"
	default:
		return "Unknown"
	}
}

// ScanRange is a half-open block-height interval [Start, End) tagged with
// the priority at which it should be scanned.
type ScanRange struct {
	Start    BlockHeight
	End      BlockHeight
	Priority ScanPriority
}

// Len returns the number of blocks covered by the range.
func (r ScanRange) Len() uint32 {
	if r.End <= r.Start {
		return 0
	}
	return uint32(r.End - r.Start)
}

// Empty reports whether the range covers no blocks.
func (r ScanRange) Empty() bool {
	return r.End <= r.Start
}

func (r ScanRange) String() string {
	return fmt.Sprintf("[%d, %d) (%s)", r.Start, r.End, r.Priority)
}

// SplitAt divides the range at height h, returning the portion before h and
// the portion from h onward. If h falls outside the range, ok is false.
func (r ScanRange) SplitAt(h BlockHeight) (before, after ScanRange, ok bool) {
	if h <= r.Start || h >= r.End {
		return ScanRange{}, ScanRange{}, false
	}
	before = ScanRange{Start: r.Start, End: h, Priority: r.Priority}
	after = ScanRange{Start: h, End: r.End, Priority: r.Priority}
	return before, after, true
}

// Chunks splits the range into consecutive sub-ranges no longer than
// batchSize blocks, preserving priority and covering [Start, End) exactly
// with no gaps or overlaps.
func (r ScanRange) Chunks(batchSize uint32) []ScanRange {
	if r.Empty() || batchSize == 0 {
		return nil
	}
	var out []ScanRange
	cur := r.Start
	for cur < r.End {
		end := cur + BlockHeight(batchSize)
		if end > r.End {
			end = r.End
		}
		out = append(out, ScanRange{Start: cur, End: end, Priority: r.Priority})
		cur = end
	}
	return out
}

// SyncStatus is the engine-owned progress snapshot reported through the
// ProgressSink.
type SyncStatus struct {
	CurrentStep          uint64
	TotalSteps           uint64
	LastFullyScannedBlock *BlockHeight
	TipHeight            BlockHeight
	LastError            error
}
