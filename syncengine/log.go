package syncengine

import (
	"github.com/decred/slog"
)

// syncLog is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var syncLog slog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	syncLog = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	syncLog = logger
}
