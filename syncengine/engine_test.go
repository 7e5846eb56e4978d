package syncengine

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, uint32(0), ceilDiv(0, 10))
	assert.Equal(t, uint32(1), ceilDiv(1, 10))
	assert.Equal(t, uint32(1), ceilDiv(10, 10))
	assert.Equal(t, uint32(2), ceilDiv(11, 10))
	assert.Equal(t, uint32(0), ceilDiv(5, 0))
}

func TestPendingRawTxids(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE transactions (txid BLOB, raw BLOB)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO transactions (txid, raw) VALUES (?, NULL)`, []byte{1, 2, 3})
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transactions (txid, raw) VALUES (?, ?)`, []byte{4, 5, 6}, []byte("already have it"))
	require.NoError(t, err)

	txids, err := pendingRawTxids(db)
	require.NoError(t, err)
	require.Len(t, txids, 1)
	assert.Equal(t, byte(1), txids[0][0])
}
