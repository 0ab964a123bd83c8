package discovery

import "github.com/btcsuite/btclog"

// log is the package-level logger used throughout discovery. It defaults to
// a disabled logger so importing this package has no side effects until the
// caller wires one in.
var log btclog.Logger

func init() {
	DisableLog()
}

// DisableLog disables all library log output.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}
