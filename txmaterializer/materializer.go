// Package txmaterializer builds the user-facing transaction history view
// by joining the wallet database with derived diversified addresses and
// classifying each note as incoming, outgoing, or change.
package txmaterializer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/decred/zeclightsync/syncstatus"
	"github.com/decred/zeclightsync/walletstore"
)

// OutputPool identifies which shielded pool an output belongs to, using
// the encoding the underlying view stores it with.
type OutputPool uint32

const (
	PoolSapling OutputPool = 2
	PoolOrchard OutputPool = 3
)

// AddressFromDiversifier regenerates a receiving address for one pool
// from a viewing key and a stored diversifier. Implementations delegate
// to the external key-derivation library's dedicated "address from
// diversifier" operation (never decryption -- this is address
// reconstruction, not recovery; see Design Note "Diversifier
// regeneration").
type AddressFromDiversifier func(ufvk walletstore.UnifiedFullViewingKey, pool OutputPool, diversifier []byte) (string, bool)

// Note is one line item within a materialized transaction.
type Note struct {
	Value     uint64
	Recipient string
	Memo      []byte // nil if empty/absent
}

// Transaction is the materialized, user-facing view of one (account,
// txid) pair, with its notes classified and aggregated.
type Transaction struct {
	AccountID           walletstore.AccountID
	TxId                syncstatus.TxId
	MinedHeight         *uint32
	BlockTime           *time.Time
	Fee                 *uint64
	AccountBalanceDelta int64
	ExpiredUnmined      bool

	Incoming []Note
	Outgoing []Note
	Change   []Note
}

type row struct {
	txid                []byte
	accountID           uint32
	minedHeight         sql.NullInt64
	blockTime           sql.NullInt64
	feePaid             sql.NullInt64
	expiredUnmined      sql.NullBool
	accountBalanceDelta int64
	outputPool          uint32
	fromAccount         sql.NullInt64
	toAccount           sql.NullInt64
	toAddress           sql.NullString
	diversifier         []byte
	value               uint64
	memo                []byte
}

const getTransactionsSQL = `
SELECT
	t.txid, t.account_id, t.mined_height, t.block_time, t.fee,
	t.expired_unmined, t.account_balance_delta,
	o.output_pool, o.from_account, o.to_account, o.to_address,
	o.diversifier, o.value, o.memo
FROM transactions t
JOIN tx_outputs o ON o.txid = t.txid
WHERE (? IS NULL OR t.account_id = ?)
  AND (? IS NULL OR t.mined_height >= ?)
ORDER BY t.mined_height, t.txid, o.output_index
`

// isUserText reports whether memo decodes as user-supplied text (a
// non-empty memo whose leading byte is not the "no memo"/binary-data
// sentinel). Full memo format decoding belongs to the external
// memo-codec library; this module only needs the change/not-change
// distinction.
func isUserText(memo []byte) bool {
	return len(memo) > 0 && memo[0] < 0xF6
}

// BuildTransactionHistory walks the underlying (transaction, output) view
// and aggregates rows sharing a txid into one Transaction each,
// preserving row order. accountFilter and startHeightFilter, when
// non-nil, narrow the query the same way the underlying SQL does.
func BuildTransactionHistory(
	db *sql.DB,
	ufvks map[walletstore.AccountID]walletstore.UnifiedFullViewingKey,
	addressFromDiversifier AddressFromDiversifier,
	accountFilter *walletstore.AccountID,
	startHeightFilter *uint32,
) ([]Transaction, error) {
	var acctArg, startArg interface{}
	if accountFilter != nil {
		acctArg = uint32(*accountFilter)
	}
	if startHeightFilter != nil {
		startArg = *startHeightFilter
	}

	rows, err := db.Query(getTransactionsSQL, acctArg, acctArg, startArg, startArg)
	if err != nil {
		return nil, fmt.Errorf("txmaterializer: query transactions: %w", err)
	}
	defer rows.Close()

	txmLog.Tracef("materializing transaction history (account filter: %v, start height filter: %v)", accountFilter, startHeightFilter)

	var result []Transaction
	for rows.Next() {
		var r row
		if err := rows.Scan(
			&r.txid, &r.accountID, &r.minedHeight, &r.blockTime, &r.feePaid,
			&r.expiredUnmined, &r.accountBalanceDelta,
			&r.outputPool, &r.fromAccount, &r.toAccount, &r.toAddress,
			&r.diversifier, &r.value, &r.memo,
		); err != nil {
			return nil, fmt.Errorf("txmaterializer: row scan: %w", err)
		}

		recipient, ok := r.toAddress.String, r.toAddress.Valid
		if !ok && len(r.diversifier) > 0 {
			if ufvk, found := ufvks[walletstore.AccountID(r.accountID)]; found {
				if addr, ok2 := addressFromDiversifier(ufvk, OutputPool(r.outputPool), r.diversifier); ok2 {
					recipient, ok = addr, true
				}
			}
		}

		isChange := r.toAccount.Valid && r.fromAccount.Valid &&
			r.toAccount.Int64 == r.fromAccount.Int64 &&
			len(r.memo) > 0 && !isUserText(r.memo)

		note := Note{Value: r.value, Recipient: recipient}
		if len(r.memo) > 0 {
			note.Memo = r.memo
		}

		var txid syncstatus.TxId
		copy(txid[:], r.txid)

		idx := len(result) - 1
		if idx < 0 || result[idx].TxId != txid {
			tx := Transaction{
				AccountID:           walletstore.AccountID(r.accountID),
				TxId:                txid,
				AccountBalanceDelta: r.accountBalanceDelta,
				ExpiredUnmined:      r.expiredUnmined.Valid && r.expiredUnmined.Bool,
			}
			if r.minedHeight.Valid {
				h := uint32(r.minedHeight.Int64)
				tx.MinedHeight = &h
			}
			if r.blockTime.Valid {
				t := time.Unix(r.blockTime.Int64, 0).UTC()
				tx.BlockTime = &t
			}
			if r.feePaid.Valid {
				f := uint64(r.feePaid.Int64)
				tx.Fee = &f
			}
			result = append(result, tx)
			idx = len(result) - 1
		}

		switch {
		case isChange:
			result[idx].Change = append(result[idx].Change, note)
		case r.toAccount.Valid && uint32(r.toAccount.Int64) == r.accountID:
			result[idx].Incoming = append(result[idx].Incoming, note)
		default:
			result[idx].Outgoing = append(result[idx].Outgoing, note)
		}
	}

	return result, rows.Err()
}
