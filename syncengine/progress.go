package syncengine

import (
	"github.com/decred/zeclightsync/syncstatus"
	"github.com/decred/zeclightsync/txmaterializer"
)

// ProgressSink is the callback contract the engine reports to. Both
// methods may be called any number of times; CurrentStep is monotonic
// within one session between restarts.
type ProgressSink interface {
	// UpdateStatus reports the latest SyncStatus snapshot.
	UpdateStatus(status syncstatus.SyncStatus)

	// ReportTransactions fires when new transactions are first
	// materialized.
	ReportTransactions(txs []txmaterializer.Transaction)
}
