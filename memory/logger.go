package memory

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the memory package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger configures the memory package's logger. A development logger
// turns failed handle assertions into panics; any other logger records
// them and lets the caller continue.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = nop
	}
	logger.Store(l)
}

func assert(cond bool, msg string, fields ...zap.Field) bool {
	if !cond {
		Logger().DPanic("assertion failed: "+msg, fields...)
	}
	return cond
}
