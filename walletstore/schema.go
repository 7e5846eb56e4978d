package walletstore

// The schema below covers only the tables this module's core logic reads
// and writes directly (transactions, utxos, transparent addresses, chain
// tip, subtree roots, scan ranges). Additional tables owned by the
// external wallet-backend library -- blocks, commitment trees, accounts,
// full account address books -- are treated as opaque and are not
// modeled here.
const schema = `
CREATE TABLE IF NOT EXISTS chain_tip (
	id INTEGER PRIMARY KEY CHECK (id = 0),
	height INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subtree_roots (
	protocol INTEGER NOT NULL,
	subtree_index INTEGER NOT NULL,
	root_hash BLOB NOT NULL,
	completing_block_height INTEGER NOT NULL,
	PRIMARY KEY (protocol, subtree_index)
);

CREATE TABLE IF NOT EXISTS transparent_addresses (
	address TEXT PRIMARY KEY,
	account_id INTEGER NOT NULL,
	last_scanned_height INTEGER
);

CREATE TABLE IF NOT EXISTS utxos (
	prevout_txid BLOB NOT NULL,
	prevout_idx INTEGER NOT NULL,
	value_zat INTEGER NOT NULL,
	height INTEGER NOT NULL,
	script BLOB,
	PRIMARY KEY (prevout_txid, prevout_idx)
);

CREATE TABLE IF NOT EXISTS transactions (
	txid BLOB NOT NULL,
	account_id INTEGER NOT NULL,
	raw BLOB,
	fee INTEGER,
	mined_height INTEGER,
	block_time INTEGER,
	expired_unmined INTEGER NOT NULL DEFAULT 0,
	account_balance_delta INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (txid, account_id)
);

CREATE TABLE IF NOT EXISTS scan_ranges (
	start_height INTEGER NOT NULL,
	end_height INTEGER NOT NULL,
	priority INTEGER NOT NULL,
	PRIMARY KEY (start_height, end_height)
);

CREATE TABLE IF NOT EXISTS scan_progress (
	id INTEGER PRIMARY KEY CHECK (id = 0),
	block_fully_scanned INTEGER
);

-- block_hashes is this module's stand-in for the commitment-tree /
-- block-metadata state the external wallet-backend library actually
-- maintains. The reference scan primitive in syncengine uses it purely
-- to detect chain continuity between sessions.
CREATE TABLE IF NOT EXISTS block_hashes (
	height INTEGER PRIMARY KEY,
	hash BLOB NOT NULL
);
`
