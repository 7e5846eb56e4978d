package feereconciler

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decred/zeclightsync/syncerrors"
	"github.com/decred/zeclightsync/syncstatus"
)

type fakeLookup map[OutPoint]int64

func (f fakeLookup) GetPrevoutValue(op OutPoint) (int64, error) {
	v, ok := f[op]
	if !ok {
		return 0, syncerrors.New(syncerrors.KindOutPointMissing, "not found")
	}
	return v, nil
}

func TestCalculateFee(t *testing.T) {
	op := OutPoint{Hash: syncstatus.TxId{1}, N: 0}
	tx := Transaction{
		TransparentInputs:  []OutPoint{op},
		TransparentOutputs: []int64{9000},
		SaplingValueBalance: -500,
	}
	fee, err := CalculateFee(tx, fakeLookup{op: 10000})
	require.NoError(t, err)
	// 10000 (in) - 9000 (out) - 500 (sapling balance, net outflow) = 500
	assert.Equal(t, int64(500), fee)
}

func TestCalculateFee_MissingPrevout(t *testing.T) {
	tx := Transaction{TransparentInputs: []OutPoint{{Hash: syncstatus.TxId{9}, N: 1}}}
	_, err := CalculateFee(tx, fakeLookup{})
	require.Error(t, err)
	assert.True(t, syncerrors.Is(err, syncerrors.KindOutPointMissing))
}

func openFeeTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE utxos (
			prevout_txid BLOB NOT NULL,
			prevout_idx INTEGER NOT NULL,
			value_zat INTEGER NOT NULL,
			PRIMARY KEY (prevout_txid, prevout_idx)
		);
		CREATE TABLE transactions (
			txid BLOB PRIMARY KEY,
			raw BLOB,
			fee INTEGER
		);
	`)
	require.NoError(t, err)
	return db
}

func TestInitializeTransactionFees(t *testing.T) {
	db := openFeeTestDB(t)

	txid := syncstatus.TxId{5}
	prevTxid := syncstatus.TxId{6}
	_, err := db.Exec(`INSERT INTO utxos (prevout_txid, prevout_idx, value_zat) VALUES (?, ?, ?)`,
		prevTxid[:], 0, 10000)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transactions (txid, raw, fee) VALUES (?, ?, NULL)`, txid[:], []byte("raw"))
	require.NoError(t, err)

	parse := func(raw []byte) (Transaction, error) {
		return Transaction{
			TransparentInputs:  []OutPoint{{Hash: prevTxid, N: 0}},
			TransparentOutputs: []int64{9500},
		}, nil
	}

	require.NoError(t, InitializeTransactionFees(db, parse))

	var fee sql.NullInt64
	require.NoError(t, db.QueryRow(`SELECT fee FROM transactions WHERE txid = ?`, txid[:]).Scan(&fee))
	require.True(t, fee.Valid)
	assert.Equal(t, int64(500), fee.Int64)
}

func TestInitializeTransactionFees_SwallowsMissingPrevout(t *testing.T) {
	db := openFeeTestDB(t)

	txid := syncstatus.TxId{7}
	_, err := db.Exec(`INSERT INTO transactions (txid, raw, fee) VALUES (?, ?, NULL)`, txid[:], []byte("raw"))
	require.NoError(t, err)

	parse := func(raw []byte) (Transaction, error) {
		return Transaction{
			TransparentInputs: []OutPoint{{Hash: syncstatus.TxId{99}, N: 0}},
		}, nil
	}

	require.NoError(t, InitializeTransactionFees(db, parse))

	var fee sql.NullInt64
	require.NoError(t, db.QueryRow(`SELECT fee FROM transactions WHERE txid = ?`, txid[:]).Scan(&fee))
	assert.False(t, fee.Valid)
}
