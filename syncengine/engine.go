// Package syncengine drives the local wallet database to a consistent
// view of the remote chain: subtree-root priming, tip discovery,
// transparent-address history pulls, priority-driven scan-range
// selection, chunked block download and scan, reorg detection with
// rewind, fee reconciliation, and mempool watching. It is the control
// loop combining every other package in this module.
package syncengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/decred/zeclightsync/blockcache"
	"github.com/decred/zeclightsync/feereconciler"
	"github.com/decred/zeclightsync/lightwalletrpc"
	"github.com/decred/zeclightsync/lightwalletrpc/walletrpc"
	"github.com/decred/zeclightsync/retry"
	"github.com/decred/zeclightsync/syncstatus"
	"github.com/decred/zeclightsync/txmaterializer"
	"github.com/decred/zeclightsync/walletstore"
)

const (
	// BatchSize is the number of blocks downloaded and scanned per chunk
	// within a scan range.
	BatchSize = 10_000

	// RewindMargin is how far behind a detected continuity error the
	// engine rewinds, to absorb shallow reorgs the daemon may still be
	// settling on.
	RewindMargin = 10

	// sentinelBranchID is passed to transaction parsing in place of a
	// real consensus branch id. The branch id only disambiguates
	// pre-v5 transaction encodings; v5+ transactions are self-describing.
	// Any stable value works here, it is never interpreted by this
	// module (see Design Note "Branch-id parameter").
	sentinelBranchID = 0
)

// TransparentOutput is one output of a transparent transaction, parsed
// far enough to upsert as a wallet UTXO.
type TransparentOutput struct {
	TxId     syncstatus.TxId
	Index    uint32
	ValueZat int64
	Address  string
}

// TransparentOutputParser parses a raw transaction's transparent
// outputs. Full transaction decoding belongs to the external
// wallet-backend library this module builds on.
type TransparentOutputParser func(raw []byte) ([]TransparentOutput, error)

// ParsedTransaction is the result of parsing one transaction's raw
// bytes far enough to persist it and compute its miner fee.
type ParsedTransaction struct {
	Fee feereconciler.Transaction
}

// TransactionParser parses a raw transaction under the given (sentinel)
// branch id into the shape this engine needs for fee reconciliation.
// Memo decryption and full note parsing are the external wallet-backend
// library's responsibility; this hook only has to surface enough to
// compute a fee.
type TransactionParser func(raw []byte, branchID uint32) (*ParsedTransaction, error)

// Config parameterizes one sync session.
type Config struct {
	DaemonURI        string
	WalletDataFile   string
	MinConfirmations uint32
	Continually      bool

	// Progress receives status and transaction notifications. Optional.
	Progress ProgressSink

	ParseTransaction        TransactionParser
	ParseTransparentOutputs TransparentOutputParser
	AddressFromDiversifier  txmaterializer.AddressFromDiversifier

	Registerer  prometheus.Registerer
	DialOptions []grpc.DialOption
}

// Engine runs one sync session per call to Run. It holds no state
// between sessions beyond its configuration and metrics.
type Engine struct {
	cfg     Config
	metrics *Metrics
}

// New constructs an Engine from cfg. cfg.Registerer may be nil.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:     cfg,
		metrics: NewMetrics(cfg.Registerer),
	}
}

// Run executes one sync session: opens the daemon client and wallet
// store, seeds subtree roots, then drives the outer loop until the
// wallet is caught up (when cfg.Continually is false) or ctx is
// cancelled. The returned SyncStatus reflects the state at the moment
// Run stops, whether by completion, cancellation, or error.
func (e *Engine) Run(ctx context.Context) (syncstatus.SyncStatus, error) {
	var status syncstatus.SyncStatus

	// Dialing the daemon (and fetching its chain parameters once
	// connected) and opening the wallet store touch disjoint resources,
	// so they run concurrently; either failing cancels the other via the
	// group's derived context.
	var (
		daemon *lightwalletrpc.Client
		info   *lightwalletrpc.Info
		store  *walletstore.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := retry.WithRetry(gctx, func(ctx context.Context) (*lightwalletrpc.Client, error) {
			return lightwalletrpc.Dial(ctx, e.cfg.DaemonURI, e.cfg.DialOptions...)
		})
		if err != nil {
			return fmt.Errorf("syncengine: dial daemon: %w", err)
		}
		i, err := retry.WithRetry(gctx, func(ctx context.Context) (*lightwalletrpc.Info, error) {
			return d.GetLightdInfo(ctx)
		})
		if err != nil {
			d.Close()
			return fmt.Errorf("syncengine: get lightd info: %w", err)
		}
		daemon, info = d, i
		return nil
	})
	g.Go(func() error {
		s, err := walletstore.Open(e.cfg.WalletDataFile)
		if err != nil {
			return fmt.Errorf("syncengine: open wallet store: %w", err)
		}
		store = s
		return nil
	})
	if err := g.Wait(); err != nil {
		if daemon != nil {
			daemon.Close()
		}
		if store != nil {
			store.Close()
		}
		return status, err
	}
	defer daemon.Close()
	defer store.Close()

	ro, err := store.OpenReadOnlyCompanion()
	if err != nil {
		return status, fmt.Errorf("syncengine: open read-only companion: %w", err)
	}
	defer ro.Close()

	if err := e.seedSubtreeRoots(ctx, daemon, store); err != nil {
		return status, err
	}

	cache := blockcache.New()

	for {
		tip, err := retry.WithRetry(ctx, func(ctx context.Context) (syncstatus.BlockHeight, error) {
			return daemon.GetLatestBlock(ctx)
		})
		if err != nil {
			return status, fmt.Errorf("syncengine: get latest block: %w", err)
		}
		if err := store.UpdateChainTip(tip); err != nil {
			return status, err
		}
		status.TipHeight = tip

		if err := e.pullTransparentHistory(ctx, daemon, store, info.SaplingActivationHeight, tip); err != nil {
			return status, err
		}

		restart, err := e.verifyPhase(ctx, daemon, store, cache)
		if err != nil {
			status.LastError = err
			return status, err
		}
		if restart {
			continue
		}

		caughtUp, err := e.scanPhase(ctx, daemon, store, ro, cache, &status)
		if err != nil {
			status.LastError = err
			return status, err
		}
		if !caughtUp {
			continue
		}

		if summary, err := store.GetWalletSummary(e.cfg.MinConfirmations); err != nil {
			syncLog.Warnf("wallet summary: %v", err)
		} else {
			for acct, bal := range summary.AccountBalances {
				syncLog.Debugf("account %d balance (min %d confirmations): transparent=%d sapling=%d orchard=%d",
					acct, e.cfg.MinConfirmations, bal.TransparentBalance, bal.SaplingBalance, bal.OrchardBalance)
			}
		}

		if e.cfg.Progress != nil {
			e.cfg.Progress.UpdateStatus(status)
		}

		if !e.cfg.Continually {
			return status, nil
		}

		// Open question preserved from the original design: a block
		// mined during this wait is only discovered on the *next*
		// mempool event, not this one. This is a known limitation, not
		// a bug to silently paper over (see Design Note).
		if err := daemon.WatchMempool(ctx); err != nil {
			if errors.Is(err, retry.ErrCancelled) || errors.Is(err, context.Canceled) {
				return status, err
			}
			syncLog.Warnf("mempool watch ended: %v", err)
		}
	}
}

// seedSubtreeRoots primes the Sapling commitment-tree checkpoints.
// Idempotent: overwriting existing roots is permitted. Orchard seeding
// is a future parameter value, not a future code path -- see Design
// Note "Orchard subtree seeding".
func (e *Engine) seedSubtreeRoots(ctx context.Context, daemon *lightwalletrpc.Client, store *walletstore.Store) error {
	roots, err := retry.WithRetry(ctx, func(ctx context.Context) ([]syncstatus.SubtreeRoot, error) {
		return daemon.GetSubtreeRoots(ctx, syncstatus.ProtocolSapling, 0)
	})
	if err != nil {
		return fmt.Errorf("syncengine: seed subtree roots: %w", err)
	}
	if len(roots) == 0 {
		return nil
	}
	if err := store.PutSubtreeRoots(syncstatus.ProtocolSapling, 0, roots); err != nil {
		return fmt.Errorf("syncengine: seed subtree roots: %w", err)
	}
	return nil
}

// pullTransparentHistory pulls every wallet transparent address forward
// from its last-scanned height (or the Sapling activation height) to
// tip, upserting every observed vout as a UTXO.
func (e *Engine) pullTransparentHistory(ctx context.Context, daemon *lightwalletrpc.Client, store *walletstore.Store, activation, tip syncstatus.BlockHeight) error {
	addrs, err := store.GetTransparentAddressesAndSyncHeights()
	if err != nil {
		return err
	}

	for _, a := range addrs {
		start := activation
		if a.LastScannedHeight != nil {
			start = *a.LastScannedHeight
		}
		if start >= tip {
			continue
		}

		addr := a.Address
		txs, err := retry.WithRetry(ctx, func(ctx context.Context) ([]lightwalletrpc.RawTx, error) {
			return daemon.GetTAddressTxids(ctx, addr, start, tip)
		})
		if err != nil {
			return fmt.Errorf("syncengine: pull transparent history for %s: %w", addr, err)
		}

		for _, raw := range txs {
			outs, err := e.cfg.ParseTransparentOutputs(raw.Data)
			if err != nil {
				return fmt.Errorf("syncengine: parse transparent outputs: %w", err)
			}
			for _, o := range outs {
				if o.Address != addr {
					// Only this address's own outputs are worth a UTXO
					// row; vouts paying other addresses in the same
					// transaction are not ours to track.
					continue
				}
				if err := store.PutReceivedTransparentUTXO(walletstore.Utxo{
					PrevoutTxid: o.TxId,
					PrevoutIdx:  o.Index,
					ValueZat:    o.ValueZat,
					Height:      raw.Height,
				}); err != nil {
					return err
				}
			}
		}

		if err := store.PutLatestScannedBlockForTransparent(addr, tip); err != nil {
			return err
		}
	}

	return nil
}

// verifyPhase runs Download-And-Scan on the head of the suggestion list
// for as long as it remains priority Verify. restart reports whether the
// outer loop should restart at tip refresh (a continuity error occurred
// and was recovered by rewind).
func (e *Engine) verifyPhase(ctx context.Context, daemon *lightwalletrpc.Client, store *walletstore.Store, cache *blockcache.Cache) (restart bool, err error) {
	for {
		ranges, err := store.SuggestScanRanges()
		if err != nil {
			return false, err
		}
		if len(ranges) == 0 || ranges[0].Priority != syncstatus.PriorityVerify {
			return false, nil
		}

		updated, err := e.downloadAndScan(ctx, daemon, store, cache, ranges[0])
		if err != nil {
			return false, err
		}
		if updated {
			// A continuity error or priority escalation occurred.
			// Either way, restart from tip refresh rather than looping
			// here indefinitely on a moving target.
			return true, nil
		}
	}
}

// scanPhase streams every suggested range, chunked into BatchSize
// windows, through Download-And-Scan. caughtUp is false when a chunk
// reports a reorg or priority escalation, signalling the outer loop
// must restart at tip refresh.
func (e *Engine) scanPhase(ctx context.Context, daemon *lightwalletrpc.Client, store *walletstore.Store, ro *sql.DB, cache *blockcache.Cache, status *syncstatus.SyncStatus) (caughtUp bool, err error) {
	ranges, err := store.SuggestScanRanges()
	if err != nil {
		return false, err
	}

	var totalLen uint32
	for _, r := range ranges {
		totalLen += r.Len()
	}
	status.TotalSteps = uint64(totalLen)
	status.CurrentStep = 0

	for _, r := range ranges {
		for _, chunk := range r.Chunks(BatchSize) {
			start := time.Now()
			updated, err := e.downloadAndScan(ctx, daemon, store, cache, chunk)
			e.metrics.ScanDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				return false, err
			}
			if updated {
				return false, nil
			}

			status.CurrentStep += uint64(chunk.Len())
			if h, err := store.BlockFullyScanned(); err == nil {
				status.LastFullyScannedBlock = h
			}

			txids, err := e.downloadFullShieldedTransactions(ctx, daemon, store)
			if err != nil {
				return false, err
			}

			if err := feereconciler.InitializeTransactionFees(store.DB(), e.parseFee); err != nil {
				return false, err
			}

			if len(txids) > 0 && e.cfg.Progress != nil {
				if err := e.reportNewTransactions(ro, store, txids); err != nil {
					return false, err
				}
			}

			if e.cfg.Progress != nil {
				e.cfg.Progress.UpdateStatus(*status)
			}
		}
	}

	return true, nil
}

// downloadAndScan implements the per-range download/scan/cleanup
// sequence. updated reports whether the top-priority suggested range
// strictly increased in priority after this scan -- a reorg or a newly
// discovered note escalating the work that must happen before anything
// else, per the scan-priority ordering defined in syncstatus.
func (e *Engine) downloadAndScan(ctx context.Context, daemon *lightwalletrpc.Client, store *walletstore.Store, cache *blockcache.Cache, r syncstatus.ScanRange) (updated bool, err error) {
	before, err := store.SuggestScanRanges()
	if err != nil {
		return false, err
	}
	beforeTop := syncstatus.PriorityIgnored
	if len(before) > 0 {
		beforeTop = before[0].Priority
	}

	blocks, err := retry.WithRetry(ctx, func(ctx context.Context) ([]*walletrpc.CompactBlock, error) {
		return daemon.GetBlockRange(ctx, r.Start, r.End-1)
	})
	if err != nil {
		return false, fmt.Errorf("syncengine: download range %s: %w", r, err)
	}

	cache.InsertRange(blocks)
	defer cache.RemoveRange(r.Start, r.End)

	scanErr := scanCachedBlocks(store, cache, r.Start, r.Len())
	if scanErr != nil {
		var ce *ContinuityError
		if errors.As(scanErr, &ce) {
			rewindTo := syncstatus.BlockHeight(0)
			if ce.Height > RewindMargin {
				rewindTo = ce.Height - RewindMargin
			}
			if err := store.TruncateToHeight(rewindTo); err != nil {
				return false, err
			}
			cache.TruncateToHeight(rewindTo)

			e.metrics.ReorgsDetected.Inc()
			if uint32(ce.Height) > uint32(rewindTo) {
				e.metrics.BlocksRewound.Add(float64(uint32(ce.Height) - uint32(rewindTo)))
			}
			syncLog.Infof("continuity error at height %d, rewound to %d", ce.Height, rewindTo)
			return true, nil
		}
		return false, fmt.Errorf("syncengine: scan range %s: %w", r, scanErr)
	}

	e.metrics.ChunksScanned.Inc()

	after, err := store.SuggestScanRanges()
	if err != nil {
		return false, err
	}
	afterTop := syncstatus.PriorityIgnored
	if len(after) > 0 {
		afterTop = after[0].Priority
	}

	return afterTop > beforeTop, nil
}

// downloadFullShieldedTransactions fetches and persists the raw bytes of
// every transaction the wallet has a txid for but no body yet, returning
// the txids it processed.
func (e *Engine) downloadFullShieldedTransactions(ctx context.Context, daemon *lightwalletrpc.Client, store *walletstore.Store) ([]syncstatus.TxId, error) {
	txids, err := pendingRawTxids(store.DB())
	if err != nil {
		return nil, err
	}

	processed := make([]syncstatus.TxId, 0, len(txids))
	for _, txid := range txids {
		rawtx, err := retry.WithRetry(ctx, func(ctx context.Context) (*lightwalletrpc.RawTx, error) {
			return daemon.GetTransaction(ctx, txid)
		})
		if err != nil {
			return processed, fmt.Errorf("syncengine: fetch transaction %s: %w", txid, err)
		}

		if _, err := e.cfg.ParseTransaction(rawtx.Data, sentinelBranchID); err != nil {
			return processed, fmt.Errorf("syncengine: parse transaction %s: %w", txid, err)
		}

		var height *syncstatus.BlockHeight
		if rawtx.Height != 0 {
			h := rawtx.Height
			height = &h
		}

		if err := store.DecryptAndStoreTransaction(walletstore.ParsedTransaction{
			TxId:   txid,
			Raw:    rawtx.Data,
			Height: height,
		}); err != nil {
			return processed, err
		}

		processed = append(processed, txid)
	}

	return processed, nil
}

// parseFee adapts cfg.ParseTransaction to feereconciler.ParseFunc.
func (e *Engine) parseFee(raw []byte) (feereconciler.Transaction, error) {
	parsed, err := e.cfg.ParseTransaction(raw, sentinelBranchID)
	if err != nil {
		return feereconciler.Transaction{}, err
	}
	return parsed.Fee, nil
}

// reportNewTransactions materializes the full transaction history and
// forwards only the freshly-processed txids to the progress sink.
func (e *Engine) reportNewTransactions(ro *sql.DB, store *walletstore.Store, txids []syncstatus.TxId) error {
	ufvks, err := store.GetUnifiedFullViewingKeys()
	if err != nil {
		return err
	}

	all, err := txmaterializer.BuildTransactionHistory(ro, ufvks, e.cfg.AddressFromDiversifier, nil, nil)
	if err != nil {
		return err
	}

	want := make(map[syncstatus.TxId]bool, len(txids))
	for _, id := range txids {
		want[id] = true
	}

	fresh := make([]txmaterializer.Transaction, 0, len(txids))
	for _, tx := range all {
		if want[tx.TxId] {
			fresh = append(fresh, tx)
		}
	}

	if len(fresh) > 0 {
		e.cfg.Progress.ReportTransactions(fresh)
	}
	return nil
}

func pendingRawTxids(db *sql.DB) ([]syncstatus.TxId, error) {
	rows, err := db.Query(`SELECT DISTINCT txid FROM transactions WHERE raw IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("syncengine: list pending transactions: %w", err)
	}
	defer rows.Close()

	var out []syncstatus.TxId
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("syncengine: pending transaction row: %w", err)
		}
		var txid syncstatus.TxId
		copy(txid[:], raw)
		out = append(out, txid)
	}
	return out, rows.Err()
}

func ceilDiv(n, d uint32) uint32 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}
