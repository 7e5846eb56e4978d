package txmaterializer

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decred/zeclightsync/walletstore"
)

func openMaterializerTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE transactions (
			txid BLOB NOT NULL,
			account_id INTEGER NOT NULL,
			mined_height INTEGER,
			block_time INTEGER,
			fee INTEGER,
			expired_unmined INTEGER NOT NULL DEFAULT 0,
			account_balance_delta INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (txid, account_id)
		);
		CREATE TABLE tx_outputs (
			txid BLOB NOT NULL,
			output_index INTEGER NOT NULL,
			output_pool INTEGER NOT NULL,
			from_account INTEGER,
			to_account INTEGER,
			to_address TEXT,
			diversifier BLOB,
			value INTEGER NOT NULL,
			memo BLOB,
			PRIMARY KEY (txid, output_index)
		);
	`)
	require.NoError(t, err)
	return db
}

func TestBuildTransactionHistory_ClassifiesNotes(t *testing.T) {
	db := openMaterializerTestDB(t)

	txid := []byte{1, 2, 3}
	_, err := db.Exec(`INSERT INTO transactions (txid, account_id, mined_height, fee, account_balance_delta) VALUES (?, 0, 100, 1000, -4000)`, txid)
	require.NoError(t, err)

	// outgoing: to_account differs from from_account, memo is user text
	_, err = db.Exec(`INSERT INTO tx_outputs (txid, output_index, output_pool, from_account, to_account, to_address, value, memo)
		VALUES (?, 0, ?, 0, 1, 'zs1recipient', 5000, ?)`, txid, PoolSapling, []byte("hi there"))
	require.NoError(t, err)

	// change: to_account == from_account, memo is the empty sentinel
	_, err = db.Exec(`INSERT INTO tx_outputs (txid, output_index, output_pool, from_account, to_account, value, memo)
		VALUES (?, 1, ?, 0, 0, 4000, ?)`, txid, PoolSapling, []byte{0xf6})
	require.NoError(t, err)

	txs, err := BuildTransactionHistory(db, nil, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	tx := txs[0]
	require.Len(t, tx.Outgoing, 1)
	assert.Equal(t, "zs1recipient", tx.Outgoing[0].Recipient)
	require.Len(t, tx.Change, 1)
	assert.Equal(t, uint64(4000), tx.Change[0].Value)
	assert.Empty(t, tx.Incoming)
	require.NotNil(t, tx.MinedHeight)
	assert.Equal(t, uint32(100), *tx.MinedHeight)
	require.NotNil(t, tx.Fee)
	assert.Equal(t, uint64(1000), *tx.Fee)
}

func TestBuildTransactionHistory_AddressFromDiversifier(t *testing.T) {
	db := openMaterializerTestDB(t)

	txid := []byte{4, 5, 6}
	_, err := db.Exec(`INSERT INTO transactions (txid, account_id) VALUES (?, 0)`, txid)
	require.NoError(t, err)

	diversifier := []byte{9, 9, 9}
	_, err = db.Exec(`INSERT INTO tx_outputs (txid, output_index, output_pool, from_account, to_account, diversifier, value, memo)
		VALUES (?, 0, ?, 1, 0, ?, 2500, NULL)`, txid, PoolOrchard, diversifier)
	require.NoError(t, err)

	ufvk := walletstore.UnifiedFullViewingKey{AccountID: 0, Encoded: "ufvk1..."}
	ufvks := map[walletstore.AccountID]walletstore.UnifiedFullViewingKey{0: ufvk}

	resolver := func(got walletstore.UnifiedFullViewingKey, pool OutputPool, div []byte) (string, bool) {
		assert.Equal(t, ufvk, got)
		assert.Equal(t, PoolOrchard, pool)
		assert.Equal(t, diversifier, div)
		return "derived-address", true
	}

	txs, err := BuildTransactionHistory(db, ufvks, resolver, nil, nil)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Len(t, txs[0].Incoming, 1)
	assert.Equal(t, "derived-address", txs[0].Incoming[0].Recipient)
}

func TestIsUserText(t *testing.T) {
	assert.False(t, isUserText(nil))
	assert.False(t, isUserText([]byte{}))
	assert.False(t, isUserText([]byte{0xf6}))
	assert.False(t, isUserText([]byte{0xff}))
	assert.True(t, isUserText([]byte("hello")))
}
