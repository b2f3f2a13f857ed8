package memory

import (
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockResource struct {
	id      int
	dropped *atomic.Int32
}

func (m *mockResource) Drop() { m.dropped.Add(1) }

func newMock(id int, dropped *atomic.Int32) *mockResource {
	return &mockResource{id: id, dropped: dropped}
}

type baseResource struct {
	id int
}

type derivedResource struct {
	baseResource
	extra int
}

type unrelatedResource struct {
	name string
}

// observeLogs routes the package logger into an in-memory sink for the
// duration of the test. The logger is not a development logger, so
// assertion failures are recorded instead of panicking.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func assertionFailures(logs *observer.ObservedLogs) int {
	return logs.FilterLevelExact(zapcore.DPanicLevel).Len()
}
