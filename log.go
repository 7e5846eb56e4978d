package zeclightsync

import (
	"strings"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/decred/zeclightsync/blockcache"
	"github.com/decred/zeclightsync/feereconciler"
	"github.com/decred/zeclightsync/lightwalletrpc"
	"github.com/decred/zeclightsync/retry"
	"github.com/decred/zeclightsync/syncengine"
	"github.com/decred/zeclightsync/txmaterializer"
	"github.com/decred/zeclightsync/walletstore"
)

// logRotator rotates the on-disk log file created by InitLogRotator. Log
// output written while it is still nil is discarded.
var logRotator *rotator.Rotator

// logWriter is the sink every subsystem's backend ultimately writes
// through; it fans out to the rotator once InitLogRotator has run.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// backendLog is the shared slog backend every subsystem logger below is
// derived from.
var backendLog = slog.NewBackend(logWriter{})

// InitLogRotator opens (creating if necessary) a rotating log file at
// logFile with up to maxRolls uncompressed backups retained.
func InitLogRotator(logFile string, maxRolls int) error {
	r, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// subLogger returns a freshly minted logger for subsystem, defaulting to
// the Info level.
func subLogger(subsystem string) slog.Logger {
	l := backendLog.Logger(subsystem)
	l.SetLevel(slog.LevelInfo)
	return l
}

// SubLogger returns a logger for subsystem sharing this module's
// rotating backend, for use by command-level code that isn't itself
// one of the registered library subsystems.
func SubLogger(subsystem string) slog.Logger {
	return subLogger(subsystem)
}

// SetLogLevels parses a "subsystem=level,subsystem=level" string (or a
// bare level applied to every subsystem) and applies it. Unknown
// subsystems and levels are ignored rather than treated as fatal, since
// this is almost always set from a user-supplied flag.
func SetLogLevels(debugLevel string) {
	if level, ok := slog.LevelFromString(debugLevel); ok {
		for _, logger := range subsystemLoggers {
			logger.SetLevel(level)
		}
		return
	}

	for _, entry := range strings.Split(debugLevel, ",") {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		subsystem, levelStr := parts[0], parts[1]
		logger, ok := subsystemLoggers[subsystem]
		if !ok {
			continue
		}
		level, ok := slog.LevelFromString(levelStr)
		if !ok {
			continue
		}
		logger.SetLevel(level)
	}
}

// subsystemLoggers is populated by SetupLoggers and consulted by
// SetLogLevels.
var subsystemLoggers = make(map[string]slog.Logger)

// SetupLoggers wires every package's logger in this module to the
// shared rotating backend. Call once during daemon startup, after
// InitLogRotator.
func SetupLoggers() {
	wire := func(subsystem string, use func(slog.Logger)) {
		l := subLogger(subsystem)
		subsystemLoggers[subsystem] = l
		use(l)
	}

	wire("RTRY", retry.UseLogger)
	wire("BCCH", blockcache.UseLogger)
	wire("LWRP", lightwalletrpc.UseLogger)
	wire("WLST", walletstore.UseLogger)
	wire("FEER", feereconciler.UseLogger)
	wire("TXMZ", txmaterializer.UseLogger)
	wire("SYNC", syncengine.UseLogger)
}
