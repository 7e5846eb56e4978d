package walletstore

import (
	"time"

	"github.com/decred/zeclightsync/syncstatus"
)

// AccountID identifies one account within the wallet.
type AccountID uint32

// UnifiedFullViewingKey is an opaque, immutable snapshot of an account's
// viewing key material, sufficient to regenerate diversified addresses.
// Key derivation itself is an external collaborator; this type only
// carries the encoded key far enough for the materializer to hand it to
// that collaborator.
type UnifiedFullViewingKey struct {
	AccountID AccountID
	Encoded   string
}

// TransparentAddressInfo pairs a wallet-owned transparent address with
// the last height it has been scanned through, if any.
type TransparentAddressInfo struct {
	Address           string
	LastScannedHeight *syncstatus.BlockHeight
}

// Utxo is a transparent output the wallet has observed.
type Utxo struct {
	PrevoutTxid syncstatus.TxId
	PrevoutIdx  uint32
	ValueZat    int64
	Height      syncstatus.BlockHeight
	Script      []byte
}

// WalletTx is one transaction as recorded against a particular account.
// Exactly one row exists per (AccountID, TxId).
type WalletTx struct {
	TxId                syncstatus.TxId
	AccountID           AccountID
	MinedHeight         *syncstatus.BlockHeight
	BlockTime           *time.Time
	Fee                 *int64
	Raw                 []byte
	AccountBalanceDelta int64
	ExpiredUnmined      bool
}

// AccountBalance is the per-account spendable balance as of a
// min-confirmations cutoff.
type AccountBalance struct {
	AccountID           AccountID
	SaplingBalance      int64
	OrchardBalance      int64
	TransparentBalance  int64
}

// WalletSummary aggregates balances across every account known to the
// wallet.
type WalletSummary struct {
	AccountBalances map[AccountID]AccountBalance
}
