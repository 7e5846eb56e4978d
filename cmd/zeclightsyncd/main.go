// Command zeclightsyncd runs the synchronization engine as a standalone
// daemon: one sync session against a light-wallet daemon and a local
// wallet data file, optionally continuing to watch the mempool after
// catching up.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/decred/slog"

	zeclightsync "github.com/decred/zeclightsync"
	"github.com/decred/zeclightsync/syncengine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "zeclightsyncd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := zeclightsync.InitLogRotator(cfg.logFile(), defaultMaxLogRolls); err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	zeclightsync.SetupLoggers()
	zeclightsync.SetLogLevels(cfg.DebugLevel)
	daemonLog = zeclightsync.SubLogger("ZLSD")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		daemonLog.Infof("received interrupt, shutting down")
		cancel()
	}()

	engine := syncengine.New(syncengine.Config{
		DaemonURI:               cfg.DaemonURI,
		WalletDataFile:          cfg.walletDataFile(),
		Continually:             cfg.Continually,
		MinConfirmations:        cfg.MinConfirmations,
		Progress:                &logProgressSink{},
		ParseTransaction:        parseTransaction,
		ParseTransparentOutputs: parseTransparentOutputs,
		AddressFromDiversifier:  addressFromDiversifier,
	})

	status, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync session ended: %w", err)
	}

	daemonLog.Infof("sync complete: tip=%d last_fully_scanned=%v steps=%d/%d",
		status.TipHeight, status.LastFullyScannedBlock, status.CurrentStep, status.TotalSteps)
	return nil
}

// daemonLog is this command's own logger, separate from the library
// subsystem loggers SetupLoggers wires.
var daemonLog = slog.Disabled
