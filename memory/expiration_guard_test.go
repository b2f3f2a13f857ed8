package memory

import (
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap/zapcore"
)

type mockFactory struct {
	freed atomic.Int32
}

func (f *mockFactory) free(*mockResource) { f.freed.Add(1) }

func TestFactoryExpirationGuard_LiveFactory(t *testing.T) {
	factory := &mockFactory{}
	guard := NewFactoryExpirationGuard(factory)
	defer guard.Close()

	if guard.Expired() || guard.Factory() != factory {
		t.Fatal("fresh guard should expose a live factory")
	}

	var dropped atomic.Int32
	s := NewSharedWithDeleter(newMock(1, &dropped),
		MakeDangleProtectedMethodDeleter(guard, (*mockFactory).free))
	s.Reset()

	if factory.freed.Load() != 1 {
		t.Fatalf("factory freed %d resources, want 1", factory.freed.Load())
	}
}

func TestFactoryExpirationGuard_DanglingDeleter(t *testing.T) {
	logs := observeLogs(t)

	factory := &mockFactory{}
	guard := NewFactoryExpirationGuard(factory)

	var dropped atomic.Int32
	s := NewSharedWithDeleter(newMock(1, &dropped),
		MakeDangleProtectedMethodDeleter(guard, (*mockFactory).free))

	guard.Close()
	if !guard.Expired() || guard.Factory() != nil {
		t.Fatal("closed guard should be expired")
	}

	s.Reset()
	if factory.freed.Load() != 0 {
		t.Fatal("deleter called into a closed factory")
	}
	if dropped.Load() != 0 {
		t.Fatal("dangling resource should be leaked, not dropped")
	}

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	msg := warnings[0].ContextMap()["error"].(string)
	for _, want := range []string{"dangling_factory", "memory.mockResource", "memory.mockFactory", "0x"} {
		if !strings.Contains(msg, want) {
			t.Errorf("warning %q does not mention %q", msg, want)
		}
	}
}

func TestMakeDangleProtectedDeleter(t *testing.T) {
	logs := observeLogs(t)

	guard := NewFactoryExpirationGuard(&mockFactory{})
	var calls atomic.Int32
	before := MakeDangleProtectedDeleter(guard, func(*int) { calls.Add(1) })
	after := MakeDangleProtectedDeleter(guard, func(*int) { calls.Add(1) })

	before(new(int))
	guard.Close()
	after(new(int))

	if calls.Load() != 1 {
		t.Fatalf("deleter body ran %d times, want 1", calls.Load())
	}
	if logs.FilterMessage("could not free resource").Len() != 1 {
		t.Fatal("dangling call should be logged once")
	}
}

func TestMakeDangleProtectedDeleter_SingleUse(t *testing.T) {
	observeLogs(t)

	guard := NewFactoryExpirationGuard(&mockFactory{})
	defer guard.Close()

	var calls atomic.Int32
	del := MakeDangleProtectedDeleter(guard, func(*int) { calls.Add(1) })
	del(new(int))
	del(new(int))

	if calls.Load() != 1 {
		t.Fatalf("deleter body ran %d times, want 1", calls.Load())
	}
}
