package handle

import (
	"sync"
	"testing"

	"github.com/leoovs/Xuzumi/memory"
	"github.com/leoovs/Xuzumi/typemeta"
)

type entity struct {
	name    string
	dropped *int
}

func (e *entity) Drop() { *e.dropped++ }

type testObserver struct {
	events []Event
}

func (o *testObserver) OnHandleEvent(e Event) {
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable[entity]()
	dropped := 0

	s := memory.MakeShared(entity{name: "a", dropped: &dropped})
	id := table.Insert(s)
	if id == InvalidID {
		t.Fatal("Expected a valid ID")
	}
	if s.UseCount() != 2 {
		t.Fatalf("UseCount = %d, want 2", s.UseCount())
	}
	s.Reset()

	got, ok := table.Get(id)
	if !ok || got.Get().name != "a" {
		t.Fatal("Get failed")
	}
	got.Reset()

	if !table.Contains(id) || table.Len() != 1 {
		t.Fatal("entry should be present")
	}

	if !table.Remove(id) {
		t.Fatal("Remove failed")
	}
	if dropped != 1 {
		t.Fatalf("Drop ran %d times, want 1", dropped)
	}
	if table.Remove(id) || table.Contains(id) || table.Len() != 0 {
		t.Fatal("removed entry should be gone")
	}
	if _, ok := table.Get(id); ok {
		t.Fatal("Get of a removed ID should fail")
	}
}

func TestTable_InsertEmpty(t *testing.T) {
	table := NewTable[int]()
	if table.Insert(&memory.SharedPtr[int]{}) != InvalidID {
		t.Fatal("empty handle should not be inserted")
	}
}

func TestTable_WeakAndObserve(t *testing.T) {
	table := NewTable[entity]()
	dropped := 0

	s := memory.MakeShared(entity{name: "b", dropped: &dropped})
	id := table.Insert(s)
	s.Reset()

	w, ok := table.Weak(id)
	if !ok || w.Expired() {
		t.Fatal("weak reference should be live")
	}
	o, ok := table.Observe(id)
	if !ok || o.Get().name != "b" {
		t.Fatal("observer should see the entry")
	}

	table.Remove(id)
	if !w.Expired() {
		t.Fatal("weak reference should expire with the entry")
	}
	w.Reset()

	if _, ok := table.Weak(id); ok {
		t.Fatal("Weak of a removed ID should fail")
	}
	if _, ok := table.Observe(id); ok {
		t.Fatal("Observe of a removed ID should fail")
	}
}

func TestTable_RecyclesIDs(t *testing.T) {
	table := NewTable[int]()

	a := table.Insert(memory.MakeShared(1))
	b := table.Insert(memory.MakeShared(2))
	table.Remove(a)

	c := table.Insert(memory.MakeShared(3))
	if c != a {
		t.Fatalf("Insert = %d, want recycled %d", c, a)
	}
	got, _ := table.Get(b)
	if *got.Get() != 2 {
		t.Fatal("other entries should be untouched")
	}
	got.Reset()
}

func TestTable_Each(t *testing.T) {
	table := NewTable[int]()
	for i := range 5 {
		table.Insert(memory.MakeShared(i * 10))
	}

	var seen []int
	table.Each(func(id ID, v *int) bool {
		seen = append(seen, *v)
		return id < 3
	})
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 20 {
		t.Fatalf("Each visited %v", seen)
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable[int]()
	obs := &testObserver{}
	table.Subscribe(obs)

	id := table.Insert(memory.MakeShared(1))
	table.Remove(id)

	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if obs.events[0].Type != EventInserted || obs.events[1].Type != EventRemoved {
		t.Fatal("unexpected event order")
	}
	if obs.events[0].TypeID != typemeta.IDOf[int]() || obs.events[0].ID != id {
		t.Fatalf("unexpected event %+v", obs.events[0])
	}

	table.Unsubscribe(obs)
	table.Insert(memory.MakeShared(2))
	if len(obs.events) != 2 {
		t.Fatal("unsubscribed observer should not receive events")
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable[entity]()
	dropped := 0
	for range 3 {
		table.Insert(memory.MakeShared(entity{dropped: &dropped}))
	}

	if err := table.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if dropped != 3 || table.Len() != 0 {
		t.Fatalf("dropped=%d Len=%d, want 3/0", dropped, table.Len())
	}
	if table.Insert(memory.MakeShared(entity{dropped: &dropped})) != InvalidID {
		t.Fatal("closed table should reject inserts")
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable[int]()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				s := memory.MakeShared(i*1000 + j)
				id := table.Insert(s)
				s.Reset()
				if got, ok := table.Get(id); ok {
					got.Reset()
				}
				table.Remove(id)
			}
		}()
	}
	wg.Wait()

	if table.Len() != 0 {
		t.Fatalf("Len = %d, want 0", table.Len())
	}
}
