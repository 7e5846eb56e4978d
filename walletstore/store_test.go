package walletstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decred/zeclightsync/syncstatus"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.sqlite")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ChainTipRoundTrip(t *testing.T) {
	s := openTestStore(t)

	tip, err := s.currentTip()
	require.NoError(t, err)
	assert.Nil(t, tip)

	require.NoError(t, s.UpdateChainTip(1000))
	tip, err = s.currentTip()
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.Equal(t, syncstatus.BlockHeight(1000), *tip)

	require.NoError(t, s.UpdateChainTip(1001))
	tip, err = s.currentTip()
	require.NoError(t, err)
	assert.Equal(t, syncstatus.BlockHeight(1001), *tip)
}

func TestStore_ScanRangesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	ranges := []syncstatus.ScanRange{
		{Start: 0, End: 100, Priority: syncstatus.PriorityHistoric},
		{Start: 100, End: 200, Priority: syncstatus.PriorityChainTip},
		{Start: 50, End: 50, Priority: syncstatus.PriorityIgnored}, // empty, dropped
	}
	require.NoError(t, s.ReplaceScanRanges(ranges))

	got, err := s.SuggestScanRanges()
	require.NoError(t, err)
	require.Len(t, got, 2)
	// ordered by descending priority
	assert.Equal(t, syncstatus.PriorityChainTip, got[0].Priority)
	assert.Equal(t, syncstatus.PriorityHistoric, got[1].Priority)
}

func TestStore_TruncateToHeightSeedsVerifyRange(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpdateChainTip(500))
	require.NoError(t, s.ReplaceScanRanges([]syncstatus.ScanRange{
		{Start: 0, End: 500, Priority: syncstatus.PriorityHistoric},
	}))
	require.NoError(t, s.SetBlockFullyScanned(400))
	require.NoError(t, s.DecryptAndStoreTransaction(ParsedTransaction{
		TxId:   syncstatus.TxId{1},
		Raw:    []byte("raw"),
		Height: heightPtr(450),
	}))
	require.NoError(t, s.PutReceivedTransparentUTXO(Utxo{
		PrevoutTxid: syncstatus.TxId{2},
		PrevoutIdx:  0,
		ValueZat:    1000,
		Height:      450,
	}))

	require.NoError(t, s.TruncateToHeight(300))

	ranges, err := s.SuggestScanRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, syncstatus.PriorityVerify, ranges[0].Priority)
	assert.Equal(t, syncstatus.BlockHeight(300), ranges[0].Start)
	assert.Equal(t, syncstatus.BlockHeight(500), ranges[0].End)

	scanned, err := s.BlockFullyScanned()
	require.NoError(t, err)
	require.NotNil(t, scanned)
	assert.Equal(t, syncstatus.BlockHeight(299), *scanned)

	_, err = s.GetTransaction(syncstatus.TxId{1})
	assert.Error(t, err)
}

func TestStore_BlockHashRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetBlockHash(10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutBlockHash(10, []byte{1, 2, 3}))
	hash, ok, err := s.GetBlockHash(10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, hash)
}

func TestStore_TransparentAddressSyncHeight(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutLatestScannedBlockForTransparent("t1addr", 50))
	addrs, err := s.GetTransparentAddressesAndSyncHeights()
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, "t1addr", addrs[0].Address)
	require.NotNil(t, addrs[0].LastScannedHeight)
	assert.Equal(t, syncstatus.BlockHeight(50), *addrs[0].LastScannedHeight)

	require.NoError(t, s.PutLatestScannedBlockForTransparent("t1addr", 75))
	addrs, err = s.GetTransparentAddressesAndSyncHeights()
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, syncstatus.BlockHeight(75), *addrs[0].LastScannedHeight)
}

func TestStore_GetUnifiedFullViewingKeysNoTable(t *testing.T) {
	s := openTestStore(t)

	keys, err := s.GetUnifiedFullViewingKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_GetWalletSummary(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpdateChainTip(100))
	_, err := s.db.Exec(
		`INSERT INTO transactions (txid, account_id, raw, mined_height, account_balance_delta) VALUES (?, 0, ?, ?, ?)`,
		[]byte{1}, []byte("raw"), 90, 5000,
	)
	require.NoError(t, err)

	summary, err := s.GetWalletSummary(5)
	require.NoError(t, err)
	bal, ok := summary.AccountBalances[AccountID(0)]
	require.True(t, ok)
	assert.Equal(t, int64(5000), bal.TransparentBalance)
}

func heightPtr(h syncstatus.BlockHeight) *syncstatus.BlockHeight { return &h }
