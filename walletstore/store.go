// Package walletstore is the transactional facade over the persistent
// wallet database. It owns the single write-path the sync engine drives,
// and hands out short-lived read connections for concurrent readers.
package walletstore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/decred/zeclightsync/syncstatus"
)

// Store is a transactional facade over the wallet's SQLite data file.
// Every mutation below is either a single autocommitted statement or one
// *sql.Tx committed before the call returns, never crossing a suspension
// point -- the caller's context may be cancelled mid-retry, but never
// mid-transaction.
type Store struct {
	db   *sql.DB
	dsn  string
}

// Open opens (creating if necessary) the wallet data file at path and
// ensures the schema this module owns exists.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("walletstore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single logical writer

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("walletstore: init schema: %w", err)
	}

	return &Store{db: db, dsn: dsn}, nil
}

// OpenReadOnlyCompanion opens a second, read-only connection against the
// same data file, for use by readers that must not contend with the
// engine's write path.
func (s *Store) OpenReadOnlyCompanion() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", s.pathOnly())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("walletstore: open read-only companion: %w", err)
	}
	return db, nil
}

func (s *Store) pathOnly() string {
	// dsn is "file:<path>?...".
	const prefix = "file:"
	end := len(s.dsn)
	for i := len(prefix); i < len(s.dsn); i++ {
		if s.dsn[i] == '?' {
			end = i
			break
		}
	}
	return s.dsn[len(prefix):end]
}

// DB exposes the underlying handle for components (the materializer, the
// external scan primitive) that need direct SQL access this adapter
// doesn't otherwise wrap.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpdateChainTip records the latest observed tip height.
func (s *Store) UpdateChainTip(height syncstatus.BlockHeight) error {
	_, err := s.db.Exec(
		`INSERT INTO chain_tip (id, height) VALUES (0, ?)
		 ON CONFLICT(id) DO UPDATE SET height = excluded.height`,
		uint32(height),
	)
	if err != nil {
		return fmt.Errorf("walletstore: update chain tip: %w", err)
	}
	return nil
}

// PutSubtreeRoots seeds the commitment-tree checkpoints for one shielded
// protocol starting at startIndex. Overwriting existing roots at the same
// indices is permitted -- this call is idempotent.
func (s *Store) PutSubtreeRoots(protocol syncstatus.ShieldedProtocol, startIndex uint32, roots []syncstatus.SubtreeRoot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("walletstore: begin put subtree roots: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO subtree_roots (protocol, subtree_index, root_hash, completing_block_height)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(protocol, subtree_index) DO UPDATE SET
			root_hash = excluded.root_hash,
			completing_block_height = excluded.completing_block_height`,
	)
	if err != nil {
		return fmt.Errorf("walletstore: prepare put subtree roots: %w", err)
	}
	defer stmt.Close()

	for i, r := range roots {
		if _, err := stmt.Exec(int(protocol), startIndex+uint32(i), r.RootHash[:], uint32(r.CompletingBlockHeight)); err != nil {
			return fmt.Errorf("walletstore: insert subtree root: %w", err)
		}
	}

	return tx.Commit()
}

// SuggestScanRanges returns the ranges the wallet believes still need
// scanning, ordered by descending priority. The first entry, if any, with
// priority Verify is the mandatory next work unit.
func (s *Store) SuggestScanRanges() ([]syncstatus.ScanRange, error) {
	rows, err := s.db.Query(
		`SELECT start_height, end_height, priority FROM scan_ranges ORDER BY priority DESC, start_height ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("walletstore: suggest scan ranges: %w", err)
	}
	defer rows.Close()

	var ranges []syncstatus.ScanRange
	for rows.Next() {
		var start, end uint32
		var priority int
		if err := rows.Scan(&start, &end, &priority); err != nil {
			return nil, fmt.Errorf("walletstore: scan range row: %w", err)
		}
		ranges = append(ranges, syncstatus.ScanRange{
			Start:    syncstatus.BlockHeight(start),
			End:      syncstatus.BlockHeight(end),
			Priority: syncstatus.ScanPriority(priority),
		})
	}
	return ranges, rows.Err()
}

// ReplaceScanRanges overwrites the suggested-range table. Invoked by the
// external scan primitive (simulated here, see syncengine/scan.go) after
// each successful scan.
func (s *Store) ReplaceScanRanges(ranges []syncstatus.ScanRange) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("walletstore: begin replace scan ranges: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM scan_ranges`); err != nil {
		return fmt.Errorf("walletstore: clear scan ranges: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO scan_ranges (start_height, end_height, priority) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("walletstore: prepare insert scan range: %w", err)
	}
	defer stmt.Close()

	for _, r := range ranges {
		if r.Empty() {
			continue
		}
		if _, err := stmt.Exec(uint32(r.Start), uint32(r.End), int(r.Priority)); err != nil {
			return fmt.Errorf("walletstore: insert scan range: %w", err)
		}
	}

	return tx.Commit()
}

// GetTransparentAddressesAndSyncHeights lists every wallet transparent
// address alongside the last height it was scanned through, if any.
func (s *Store) GetTransparentAddressesAndSyncHeights() ([]TransparentAddressInfo, error) {
	rows, err := s.db.Query(`SELECT address, last_scanned_height FROM transparent_addresses`)
	if err != nil {
		return nil, fmt.Errorf("walletstore: get transparent addresses: %w", err)
	}
	defer rows.Close()

	var out []TransparentAddressInfo
	for rows.Next() {
		var addr string
		var height sql.NullInt64
		if err := rows.Scan(&addr, &height); err != nil {
			return nil, fmt.Errorf("walletstore: transparent address row: %w", err)
		}
		info := TransparentAddressInfo{Address: addr}
		if height.Valid {
			h := syncstatus.BlockHeight(height.Int64)
			info.LastScannedHeight = &h
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// PutReceivedTransparentUTXO upserts a transparent output the wallet has
// observed.
func (s *Store) PutReceivedTransparentUTXO(u Utxo) error {
	_, err := s.db.Exec(
		`INSERT INTO utxos (prevout_txid, prevout_idx, value_zat, height, script)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(prevout_txid, prevout_idx) DO UPDATE SET
			value_zat = excluded.value_zat,
			height = excluded.height,
			script = excluded.script`,
		u.PrevoutTxid[:], u.PrevoutIdx, u.ValueZat, uint32(u.Height), u.Script,
	)
	if err != nil {
		return fmt.Errorf("walletstore: put received utxo: %w", err)
	}
	return nil
}

// PutLatestScannedBlockForTransparent records the height an address's
// transparent transaction history has been pulled through.
func (s *Store) PutLatestScannedBlockForTransparent(address string, height syncstatus.BlockHeight) error {
	_, err := s.db.Exec(
		`INSERT INTO transparent_addresses (address, account_id, last_scanned_height) VALUES (?, 0, ?)
		 ON CONFLICT(address) DO UPDATE SET last_scanned_height = excluded.last_scanned_height`,
		address, uint32(height),
	)
	if err != nil {
		return fmt.Errorf("walletstore: update transparent sync height: %w", err)
	}
	return nil
}

// GetTransaction returns the raw bytes of a persisted transaction.
func (s *Store) GetTransaction(txid syncstatus.TxId) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRow(`SELECT raw FROM transactions WHERE txid = ? AND raw IS NOT NULL LIMIT 1`, txid[:]).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("walletstore: get transaction %s: %w", txid, err)
	}
	return raw, nil
}

// TruncateToHeight rewinds wallet state to at most h, dropping
// commitment-tree state (owned by the external backend, not modeled
// here) and replacing every suggested scan range with a single Verify
// range spanning the rewound height through the last recorded chain
// tip, so the next SuggestScanRanges call re-verifies and re-scans
// exactly the blocks a reorg could have invalidated rather than the
// whole history back to genesis.
func (s *Store) TruncateToHeight(h syncstatus.BlockHeight) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("walletstore: begin truncate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM transactions WHERE mined_height >= ?`, uint32(h)); err != nil {
		return fmt.Errorf("walletstore: truncate transactions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM utxos WHERE height >= ?`, uint32(h)); err != nil {
		return fmt.Errorf("walletstore: truncate utxos: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM scan_ranges`); err != nil {
		return fmt.Errorf("walletstore: truncate scan ranges: %w", err)
	}

	var tipHeight sql.NullInt64
	if err := tx.QueryRow(`SELECT height FROM chain_tip WHERE id = 0`).Scan(&tipHeight); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("walletstore: read chain tip: %w", err)
	}
	end := uint32(h)
	if tipHeight.Valid && uint32(tipHeight.Int64) > end {
		end = uint32(tipHeight.Int64)
	}
	if end > uint32(h) {
		if _, err := tx.Exec(
			`INSERT INTO scan_ranges (start_height, end_height, priority) VALUES (?, ?, ?)
			 ON CONFLICT(start_height, end_height) DO NOTHING`,
			uint32(h), end, int(syncstatus.PriorityVerify),
		); err != nil {
			return fmt.Errorf("walletstore: seed verify range: %w", err)
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO scan_progress (id, block_fully_scanned) VALUES (0, ?)
		 ON CONFLICT(id) DO UPDATE SET block_fully_scanned = excluded.block_fully_scanned`,
		nullableHeight(h),
	); err != nil {
		return fmt.Errorf("walletstore: reset scan progress: %w", err)
	}

	return tx.Commit()
}

// nullableHeight reports the highest height still considered fully
// scanned after a rewind to h: h-1 if any blocks remain, else NULL.
func nullableHeight(h syncstatus.BlockHeight) interface{} {
	if h == 0 {
		return nil
	}
	return uint32(h - 1)
}

// BlockFullyScanned returns the highest height fully covered by scanning,
// if any.
func (s *Store) BlockFullyScanned() (*syncstatus.BlockHeight, error) {
	var height sql.NullInt64
	err := s.db.QueryRow(`SELECT block_fully_scanned FROM scan_progress WHERE id = 0`).Scan(&height)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walletstore: block fully scanned: %w", err)
	}
	if !height.Valid {
		return nil, nil
	}
	h := syncstatus.BlockHeight(height.Int64)
	return &h, nil
}

// SetBlockFullyScanned records the highest height fully covered by
// scanning. Invoked by the scan primitive after each successful chunk.
func (s *Store) SetBlockFullyScanned(h syncstatus.BlockHeight) error {
	_, err := s.db.Exec(
		`INSERT INTO scan_progress (id, block_fully_scanned) VALUES (0, ?)
		 ON CONFLICT(id) DO UPDATE SET block_fully_scanned = excluded.block_fully_scanned`,
		uint32(h),
	)
	if err != nil {
		return fmt.Errorf("walletstore: set block fully scanned: %w", err)
	}
	return nil
}

// GetWalletSummary computes per-account balances from transactions mined
// at least minConfirmations deep, for the progress sink.
func (s *Store) GetWalletSummary(minConfirmations uint32) (*WalletSummary, error) {
	tip, err := s.currentTip()
	if err != nil {
		return nil, err
	}

	cutoff := int64(-1)
	if tip != nil && uint32(*tip)+1 >= minConfirmations {
		cutoff = int64(uint32(*tip)) - int64(minConfirmations) + 1
	}

	rows, err := s.db.Query(
		`SELECT account_id, SUM(account_balance_delta)
		 FROM transactions
		 WHERE mined_height IS NOT NULL AND mined_height <= ?
		 GROUP BY account_id`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("walletstore: wallet summary: %w", err)
	}
	defer rows.Close()

	summary := &WalletSummary{AccountBalances: make(map[AccountID]AccountBalance)}
	for rows.Next() {
		var acct uint32
		var delta int64
		if err := rows.Scan(&acct, &delta); err != nil {
			return nil, fmt.Errorf("walletstore: wallet summary row: %w", err)
		}
		summary.AccountBalances[AccountID(acct)] = AccountBalance{
			AccountID:          AccountID(acct),
			TransparentBalance: delta,
		}
	}

	return summary, rows.Err()
}

func (s *Store) currentTip() (*syncstatus.BlockHeight, error) {
	var height sql.NullInt64
	err := s.db.QueryRow(`SELECT height FROM chain_tip WHERE id = 0`).Scan(&height)
	if err == sql.ErrNoRows || !height.Valid {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walletstore: current tip: %w", err)
	}
	h := syncstatus.BlockHeight(height.Int64)
	return &h, nil
}

// ParsedTransaction is a minimally parsed transaction: enough of its
// shape for this adapter to persist it and for the fee reconciler to
// inspect its value balances. Full parsing (nullifiers, note
// ciphertexts, Merkle witnesses) belongs to the external wallet-backend
// library.
type ParsedTransaction struct {
	TxId   syncstatus.TxId
	Raw    []byte
	Height *syncstatus.BlockHeight
}

// DecryptAndStoreTransaction decrypts any notes belonging to the wallet
// within tx and persists the full transaction record. Memo decryption
// itself is performed by the external wallet-backend library against the
// account viewing keys; this adapter's responsibility is only to land
// the now-decrypted record transactionally.
func (s *Store) DecryptAndStoreTransaction(tx ParsedTransaction) error {
	var height sql.NullInt64
	if tx.Height != nil {
		height = sql.NullInt64{Int64: int64(uint32(*tx.Height)), Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO transactions (txid, account_id, raw, mined_height)
		 VALUES (?, 0, ?, ?)
		 ON CONFLICT(txid, account_id) DO UPDATE SET
			raw = excluded.raw,
			mined_height = excluded.mined_height`,
		tx.TxId[:], tx.Raw, height,
	)
	if err != nil {
		return fmt.Errorf("walletstore: decrypt and store transaction %s: %w", tx.TxId, err)
	}
	return nil
}

// GetBlockHash returns the hash recorded for height, if the wallet has
// scanned that far.
func (s *Store) GetBlockHash(height syncstatus.BlockHeight) ([]byte, bool, error) {
	var hash []byte
	err := s.db.QueryRow(`SELECT hash FROM block_hashes WHERE height = ?`, uint32(height)).Scan(&hash)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("walletstore: get block hash: %w", err)
	}
	return hash, true, nil
}

// PutBlockHash records the hash the wallet scanned at height.
func (s *Store) PutBlockHash(height syncstatus.BlockHeight, hash []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO block_hashes (height, hash) VALUES (?, ?)
		 ON CONFLICT(height) DO UPDATE SET hash = excluded.hash`,
		uint32(height), hash,
	)
	if err != nil {
		return fmt.Errorf("walletstore: put block hash: %w", err)
	}
	return nil
}

// GetUnifiedFullViewingKeys returns every account's viewing key,
// immutable for the duration of the caller's session.
func (s *Store) GetUnifiedFullViewingKeys() (map[AccountID]UnifiedFullViewingKey, error) {
	rows, err := s.db.Query(`SELECT account_id, ufvk FROM account_keys`)
	if err != nil {
		// The accounts/keys table is owned by the external key-derivation
		// library; if this deployment hasn't provisioned it yet, there
		// simply are no keys to return. Any other failure (corruption,
		// permissions, a malformed table) is real and must surface.
		if strings.Contains(err.Error(), "no such table") {
			return map[AccountID]UnifiedFullViewingKey{}, nil
		}
		return nil, fmt.Errorf("walletstore: get unified full viewing keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[AccountID]UnifiedFullViewingKey)
	for rows.Next() {
		var acct uint32
		var encoded string
		if err := rows.Scan(&acct, &encoded); err != nil {
			return nil, fmt.Errorf("walletstore: viewing key row: %w", err)
		}
		keys[AccountID(acct)] = UnifiedFullViewingKey{AccountID: AccountID(acct), Encoded: encoded}
	}
	return keys, rows.Err()
}
