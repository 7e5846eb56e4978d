package main

import (
	"github.com/decred/zeclightsync/syncstatus"
	"github.com/decred/zeclightsync/txmaterializer"
)

// logProgressSink is the default ProgressSink: it just logs. A richer
// frontend (a GUI, a gRPC status endpoint) would implement the same
// interface instead.
type logProgressSink struct{}

func (s *logProgressSink) UpdateStatus(status syncstatus.SyncStatus) {
	daemonLog.Infof("progress %d/%d tip=%d last_fully_scanned=%v",
		status.CurrentStep, status.TotalSteps, status.TipHeight, status.LastFullyScannedBlock)
}

func (s *logProgressSink) ReportTransactions(txs []txmaterializer.Transaction) {
	for _, tx := range txs {
		daemonLog.Infof("new transaction %s (account %d, %d incoming, %d outgoing, %d change)",
			tx.TxId, tx.AccountID, len(tx.Incoming), len(tx.Outgoing), len(tx.Change))
	}
}
