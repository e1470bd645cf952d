package scheduler

import (
	"testing"

	"github.com/vixenretro/coco64/tick"
)

func TestEnqueueOrdersByTick(t *testing.T) {
	var l List
	var order []string

	mk := func(name string) *Event {
		return &Event{Name: name, Run: func(ctx any, at tick.Count) {
			order = append(order, ctx.(string))
		}, Context: name}
	}

	e1 := mk("third")
	e2 := mk("first")
	e3 := mk("second")

	l.Enqueue(e1, 300)
	l.Enqueue(e2, 100)
	l.Enqueue(e3, 200)

	l.Run(1000)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestQueuedInvariant(t *testing.T) {
	var l List
	e := &Event{Run: func(ctx any, at tick.Count) {}}

	if e.Queued() {
		t.Fatalf("new event should not be queued")
	}
	l.Enqueue(e, 10)
	if !e.Queued() {
		t.Fatalf("event should be queued after Enqueue")
	}
	l.Dequeue(e)
	if e.Queued() {
		t.Fatalf("event should not be queued after Dequeue")
	}
	if l.head != nil {
		t.Fatalf("list should be empty after dequeuing its only event")
	}
}

func TestReenqueueMovesList(t *testing.T) {
	var a, b List
	e := &Event{Run: func(ctx any, at tick.Count) {}}

	a.Enqueue(e, 5)
	b.Enqueue(e, 5)

	if a.head != nil {
		t.Fatalf("event should have been moved off list a")
	}
	if b.head != e {
		t.Fatalf("event should be on list b")
	}
}

func TestRunStopsAtFutureEvents(t *testing.T) {
	var l List
	var fired []string
	mk := func(name string, at tick.Count) *Event {
		return &Event{Run: func(ctx any, _ tick.Count) {
			fired = append(fired, ctx.(string))
		}, Context: name}
	}
	l.Enqueue(mk("due", 10), 10)
	l.Enqueue(mk("future", 500), 500)

	l.Run(100)

	if len(fired) != 1 || fired[0] != "due" {
		t.Fatalf("got %v, want only [due]", fired)
	}
	if l.Empty() {
		t.Fatalf("future event should remain queued")
	}
}

func TestRunAllowsSelfReenqueue(t *testing.T) {
	var l List
	count := 0
	var e *Event
	e = &Event{Context: &count}
	e.Run = func(ctx any, at tick.Count) {
		n := ctx.(*int)
		*n++
		if *n < 3 {
			l.Enqueue(e, at+10)
		}
	}
	l.Enqueue(e, 10)
	l.Run(1000)

	if count != 3 {
		t.Fatalf("got %d dispatches, want 3", count)
	}
}

func TestDeltaWrap(t *testing.T) {
	var hi, lo tick.Count = 0xFFFFFFF0, 0x00000010
	if !tick.Before(hi, lo) {
		t.Fatalf("lo should be considered after hi across the wrap")
	}
	if got := tick.Delta(hi, lo); got != 0x20 {
		t.Fatalf("got delta %d, want 32", got)
	}
}
