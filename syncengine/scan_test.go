package syncengine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decred/zeclightsync/blockcache"
	"github.com/decred/zeclightsync/lightwalletrpc/walletrpc"
	"github.com/decred/zeclightsync/syncstatus"
	"github.com/decred/zeclightsync/walletstore"
)

func openTestStore(t *testing.T) *walletstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.sqlite")
	s, err := walletstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func hash(b byte) []byte {
	h := make([]byte, 32)
	h[0] = b
	return h
}

func TestScanCachedBlocks_ContinuousChain(t *testing.T) {
	store := openTestStore(t)
	cache := blockcache.New()

	require.NoError(t, store.ReplaceScanRanges([]syncstatus.ScanRange{
		{Start: 100, End: 110, Priority: syncstatus.PriorityChainTip},
	}))

	cache.InsertRange([]*walletrpc.CompactBlock{
		{Height: 100, Hash: hash(1), PrevHash: hash(0)},
		{Height: 101, Hash: hash(2), PrevHash: hash(1)},
		{Height: 102, Hash: hash(3), PrevHash: hash(2)},
	})
	require.NoError(t, store.PutBlockHash(99, hash(0)))

	err := scanCachedBlocks(store, cache, 100, 3)
	require.NoError(t, err)

	h, ok, err := store.GetBlockHash(101)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, hash(2), h)

	scanned, err := store.BlockFullyScanned()
	require.NoError(t, err)
	require.NotNil(t, scanned)
	assert.Equal(t, syncstatus.BlockHeight(102), *scanned)

	ranges, err := store.SuggestScanRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, syncstatus.BlockHeight(103), ranges[0].Start)
	assert.Equal(t, syncstatus.BlockHeight(110), ranges[0].End)
}

func TestScanCachedBlocks_ContinuityBreak(t *testing.T) {
	store := openTestStore(t)
	cache := blockcache.New()

	require.NoError(t, store.PutBlockHash(99, hash(0)))
	cache.InsertRange([]*walletrpc.CompactBlock{
		{Height: 100, Hash: hash(1), PrevHash: hash(99)}, // does not match recorded hash(0)
	})

	err := scanCachedBlocks(store, cache, 100, 1)
	require.Error(t, err)

	var ce *ContinuityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, syncstatus.BlockHeight(100), ce.Height)
}

func TestConsumeScannedSpan_SplitsOverlappingRange(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.ReplaceScanRanges([]syncstatus.ScanRange{
		{Start: 0, End: 200, Priority: syncstatus.PriorityHistoric},
	}))

	require.NoError(t, consumeScannedSpan(store, 50, 100))

	ranges, err := store.SuggestScanRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 2)

	byStart := map[syncstatus.BlockHeight]syncstatus.ScanRange{}
	for _, r := range ranges {
		byStart[r.Start] = r
	}
	require.Contains(t, byStart, syncstatus.BlockHeight(0))
	assert.Equal(t, syncstatus.BlockHeight(50), byStart[0].End)
	require.Contains(t, byStart, syncstatus.BlockHeight(100))
	assert.Equal(t, syncstatus.BlockHeight(200), byStart[100].End)
}

func TestConsumeScannedSpan_FullyConsumesRange(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.ReplaceScanRanges([]syncstatus.ScanRange{
		{Start: 10, End: 20, Priority: syncstatus.PriorityChainTip},
		{Start: 30, End: 40, Priority: syncstatus.PriorityHistoric},
	}))

	require.NoError(t, consumeScannedSpan(store, 10, 20))

	ranges, err := store.SuggestScanRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, syncstatus.BlockHeight(30), ranges[0].Start)
}
