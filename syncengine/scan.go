package syncengine

import (
	"bytes"
	"fmt"

	"github.com/decred/zeclightsync/blockcache"
	"github.com/decred/zeclightsync/syncerrors"
	"github.com/decred/zeclightsync/syncstatus"
	"github.com/decred/zeclightsync/walletstore"
)

// ContinuityError reports that a cached block's parent hash does not
// match the wallet's previously recorded hash at the prior height --
// i.e. the chain reorganized underneath the wallet.
type ContinuityError struct {
	Height syncstatus.BlockHeight
}

func (e *ContinuityError) Error() string {
	return fmt.Sprintf("continuity error at height %d", e.Height)
}

// scanCachedBlocks is this module's reference scan primitive. The real
// wallet-backend library performs trial decryption against three
// commitment trees and updates state this module doesn't model; what
// this engine actually depends on from that primitive is its externally
// visible contract: detect continuity breaks against the wallet's prior
// view, and shrink the suggested scan ranges by whatever was just
// covered. That contract is what's implemented here.
func scanCachedBlocks(store *walletstore.Store, cache *blockcache.Cache, start syncstatus.BlockHeight, length uint32) error {
	blocks, err := cache.BlocksInRange(start, length)
	if err != nil {
		return fmt.Errorf("syncengine: scan: %w", err)
	}

	for _, b := range blocks {
		height := syncstatus.BlockHeight(b.Height)
		if height > 0 {
			prevHash, ok, err := store.GetBlockHash(height - 1)
			if err != nil {
				return syncerrors.Wrap(syncerrors.KindWallet, err)
			}
			if ok && !bytes.Equal(prevHash, b.PrevHash) {
				return syncerrors.Wrap(syncerrors.KindScanContinuity, &ContinuityError{Height: height})
			}
		}
		if err := store.PutBlockHash(height, b.Hash); err != nil {
			return syncerrors.Wrap(syncerrors.KindWallet, err)
		}
	}

	end := start + syncstatus.BlockHeight(length)
	if err := store.SetBlockFullyScanned(end - 1); err != nil {
		return syncerrors.Wrap(syncerrors.KindWallet, err)
	}

	if err := consumeScannedSpan(store, start, end); err != nil {
		return syncerrors.Wrap(syncerrors.KindWallet, err)
	}

	return nil
}

// consumeScannedSpan removes [start, end) from every suggested scan
// range, splitting ranges that only partially overlap it.
func consumeScannedSpan(store *walletstore.Store, start, end syncstatus.BlockHeight) error {
	ranges, err := store.SuggestScanRanges()
	if err != nil {
		return err
	}

	var remaining []syncstatus.ScanRange
	for _, r := range ranges {
		switch {
		case r.End <= start || r.Start >= end:
			remaining = append(remaining, r)
		case r.Start >= start && r.End <= end:
			// fully consumed by this scan.
		case r.Start < start && r.End > end:
			remaining = append(remaining,
				syncstatus.ScanRange{Start: r.Start, End: start, Priority: r.Priority},
				syncstatus.ScanRange{Start: end, End: r.End, Priority: r.Priority},
			)
		case r.Start < start:
			remaining = append(remaining, syncstatus.ScanRange{Start: r.Start, End: start, Priority: r.Priority})
		default:
			remaining = append(remaining, syncstatus.ScanRange{Start: end, End: r.End, Priority: r.Priority})
		}
	}

	return store.ReplaceScanRanges(remaining)
}
