package pool

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/leoovs/Xuzumi/errors"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the pool package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger configures the pool package's logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = nop
	}
	logger.Store(l)
}

// reportDeallocation logs a rejected deallocation. Pointers no pool owns
// are errors; nil and repeated frees are warnings.
func reportDeallocation(err *errors.Error) {
	if err.Kind == errors.KindForeignPointer {
		Logger().Error("could not deallocate", zap.Error(err))
		return
	}
	Logger().Warn("could not deallocate", zap.Error(err))
}
