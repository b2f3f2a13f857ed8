package main

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/pool"
)

func observeLogs(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)
	installLogger(l)
	t.Cleanup(func() {
		memory.SetLogger(nil)
		pool.SetLogger(nil)
	})
	return l, logs
}

func newTestFactory(t *testing.T, blockSize int) *EntityFactory {
	t.Helper()
	f := NewEntityFactory(pool.Specification{BlockSize: blockSize}, zap.NewNop())
	t.Cleanup(func() { _ = f.Close() })
	return f
}
