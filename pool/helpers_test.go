package pool

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leoovs/Xuzumi/memory"
)

type entity struct {
	id      int
	dropped *int
}

func (e *entity) Drop() {
	if e.dropped != nil {
		*e.dropped++
	}
}

type vector struct {
	x, y, z float64
}

// observeLogs captures both pool and memory diagnostics for the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)
	SetLogger(l)
	memory.SetLogger(l)
	t.Cleanup(func() {
		SetLogger(nil)
		memory.SetLogger(nil)
	})
	return logs
}

type recorder struct {
	events []Event
}

func (r *recorder) OnPoolEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}
