package txmaterializer

import (
	"github.com/decred/slog"
)

// txmLog is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var txmLog slog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	txmLog = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	txmLog = logger
}
