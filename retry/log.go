package retry

import (
	"github.com/decred/slog"
)

// rtyLog is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var rtyLog slog.Logger

// The default amount of logging is none.
func init() {
	DisableLog()
}

// DisableLog disables all library log output. Logging output is disabled
// by default until UseLogger is called.
func DisableLog() {
	rtyLog = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	rtyLog = logger
}
