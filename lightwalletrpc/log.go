package lightwalletrpc

import (
	"github.com/decred/slog"
)

// lwrLog is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var lwrLog slog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	lwrLog = slog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	lwrLog = logger
}

// logClosure defers an expensive log argument (e.g. a spew.Sdump) until
// the logger actually decides to print it.
type logClosure func() string

func (c logClosure) String() string {
	return c()
}

func newLogClosure(c func() string) logClosure {
	return logClosure(c)
}
