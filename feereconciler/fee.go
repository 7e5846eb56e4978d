// Package feereconciler computes the miner fee paid by a transaction from
// its recorded inputs and the on-chain value balances of each shielded
// pool, and backfills that fee for every persisted transaction that is
// still missing one.
package feereconciler

import (
	"database/sql"
	"fmt"

	"github.com/decred/zeclightsync/syncerrors"
	"github.com/decred/zeclightsync/syncstatus"
)

// OutPoint identifies a transparent output being spent.
type OutPoint struct {
	Hash syncstatus.TxId
	N    uint32
}

// Transaction is the subset of a parsed transaction the fee calculation
// needs: its transparent inputs (by outpoint, so their value can be
// looked up) and outputs, plus the three shielded pools' value balances
// -- quantities intrinsic to the transaction that the external
// transaction-parsing library already computes.
type Transaction struct {
	TxId                syncstatus.TxId
	TransparentInputs   []OutPoint
	TransparentOutputs  []int64 // values, in zatoshi
	SproutValueBalance  int64
	SaplingValueBalance int64
	OrchardValueBalance int64
}

// PrevoutLookup resolves a spent transparent output's value. Returns a
// *syncerrors.Error of KindOutPointMissing if the prevout is not present
// in the utxos table.
type PrevoutLookup interface {
	GetPrevoutValue(op OutPoint) (int64, error)
}

// CalculateFee computes fee = transparent_balance + sprout_balance +
// sapling_balance + orchard_balance, where the transparent balance is
// sum(inputs) - sum(outputs). A missing input prevout produces
// *syncerrors.Error{Kind: KindOutPointMissing}.
func CalculateFee(tx Transaction, prevouts PrevoutLookup) (int64, error) {
	var transparentIn int64
	for _, op := range tx.TransparentInputs {
		value, err := prevouts.GetPrevoutValue(op)
		if err != nil {
			return 0, err
		}
		transparentIn += value
	}

	var transparentOut int64
	for _, v := range tx.TransparentOutputs {
		transparentOut += v
	}

	transparentBalance := transparentIn - transparentOut

	return transparentBalance + tx.SproutValueBalance + tx.SaplingValueBalance + tx.OrchardValueBalance, nil
}

// sqlPrevoutLookup resolves prevout values against the utxos table.
type sqlPrevoutLookup struct {
	db *sql.DB
}

func (l *sqlPrevoutLookup) GetPrevoutValue(op OutPoint) (int64, error) {
	var value int64
	err := l.db.QueryRow(
		`SELECT value_zat FROM utxos WHERE prevout_txid = ? AND prevout_idx = ?`,
		op.Hash[:], op.N,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, syncerrors.New(syncerrors.KindOutPointMissing, fmt.Sprintf("%s:%d", op.Hash, op.N))
	}
	if err != nil {
		return 0, fmt.Errorf("feereconciler: prevout lookup: %w", err)
	}
	return value, nil
}

// ParseFunc parses a transaction's raw bytes into the shape CalculateFee
// needs. Full transaction parsing belongs to the external wallet-backend
// library; this indirection lets InitializeTransactionFees stay agnostic
// to that library's API.
type ParseFunc func(raw []byte) (Transaction, error)

// InitializeTransactionFees finds every persisted transaction with a
// null fee, loads its raw bytes, computes the fee, and writes it back. A
// failure of kind OutPointMissing on any single transaction is swallowed
// -- the wallet likely never owned the spent input -- and the loop
// continues; any other error propagates and aborts the backfill.
func InitializeTransactionFees(db *sql.DB, parse ParseFunc) error {
	rows, err := db.Query(`SELECT txid, raw FROM transactions WHERE fee IS NULL AND raw IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("feereconciler: list transactions missing fee: %w", err)
	}

	type pending struct {
		txid syncstatus.TxId
		raw  []byte
	}
	var txs []pending
	for rows.Next() {
		var txidBytes, raw []byte
		if err := rows.Scan(&txidBytes, &raw); err != nil {
			rows.Close()
			return fmt.Errorf("feereconciler: transaction row: %w", err)
		}
		var txid syncstatus.TxId
		copy(txid[:], txidBytes)
		txs = append(txs, pending{txid: txid, raw: raw})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	lookup := &sqlPrevoutLookup{db: db}

	for _, p := range txs {
		parsed, err := parse(p.raw)
		if err != nil {
			return fmt.Errorf("feereconciler: parse transaction %s: %w", p.txid, err)
		}
		parsed.TxId = p.txid

		fee, err := CalculateFee(parsed, lookup)
		if err != nil {
			if syncerrors.Is(err, syncerrors.KindOutPointMissing) {
				feeLog.Debugf("skipping fee for %s: prevout not owned by wallet", p.txid)
				continue
			}
			return fmt.Errorf("feereconciler: calculate fee for %s: %w", p.txid, err)
		}

		if _, err := db.Exec(`UPDATE transactions SET fee = ? WHERE txid = ?`, fee, p.txid[:]); err != nil {
			return fmt.Errorf("feereconciler: write fee for %s: %w", p.txid, err)
		}
	}

	return nil
}
