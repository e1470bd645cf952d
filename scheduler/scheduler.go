// Package scheduler implements the core's cooperative event queue: a
// singly-linked list of events ordered by absolute tick, dispatched by a
// single-threaded run loop. See spec.md §4.1.
package scheduler

import "github.com/vixenretro/coco64/tick"

// Callback is invoked when its owning Event is dispatched; at is the tick
// the event was scheduled for, not the tick Run was called with. The event is
// already dequeued by the time the callback runs; the callback is free to
// re-enqueue it (commonly onto the same list) or leave it idle.
type Callback func(ctx any, at tick.Count)

// Event is a single scheduled callback. An Event is owned by the component
// that created it; the same Event value is reused across its lifetime
// rather than reallocated per dispatch, matching the low queue depth
// (<20 entries) spec.md assumes.
type Event struct {
	At       tick.Count
	Run      Callback
	Context  any
	Name     string // for diagnostics only, e.g. "vdg.hs-fall"
	Autofree bool

	next   *Event
	queued bool
	owner  *List
}

// Queued reports whether the event currently sits on a List.
func (e *Event) Queued() bool { return e.queued }

// List is an ordered queue of events for one tick domain (e.g. the
// machine's tick domain, or a UI-facing domain driven by wall-clock
// ticks). The zero value is an empty, ready-to-use list.
type List struct {
	head *Event
}

// Enqueue inserts e into the list ordered by At (earliest first). If e is
// already queued anywhere it is dequeued first, matching spec.md's
// "queued_flag ⇔ appears in exactly one list" invariant.
func (l *List) Enqueue(e *Event, at tick.Count) {
	if e.queued {
		e.owner.Dequeue(e)
	}
	e.At = at
	e.queued = true
	e.owner = l
	e.next = nil

	l.insertOrdered(e)
}

func (l *List) insertOrdered(e *Event) {
	if l.head == nil || tick.Delta(l.head.At, e.At) <= 0 {
		e.next = l.head
		l.head = e
		return
	}
	prev := l.head
	for prev.next != nil && tick.Delta(prev.next.At, e.At) > 0 {
		prev = prev.next
	}
	e.next = prev.next
	prev.next = e
}

// Dequeue unlinks e from whatever list currently holds it. A no-op if e
// is not queued.
func (l *List) Dequeue(e *Event) {
	if !e.queued || e.owner != l {
		return
	}
	if l.head == e {
		l.head = e.next
	} else {
		prev := l.head
		for prev != nil && prev.next != e {
			prev = prev.next
		}
		if prev != nil {
			prev.next = e.next
		}
	}
	e.next = nil
	e.queued = false
	e.owner = nil
}

// Peek returns the earliest-scheduled event without dispatching it, or
// nil if the list is empty.
func (l *List) Peek() *Event { return l.head }

// Run dispatches every event whose At has been reached or passed by now,
// earliest first. Each event is dequeued immediately before its callback
// runs, so a callback that re-enqueues itself (the common case) is safe.
// Run is not reentrant: a callback must not call Run on the same list.
func (l *List) Run(now tick.Count) {
	for l.head != nil && tick.AtOrAfter(now, l.head.At) {
		e := l.head
		l.Dequeue(e)
		e.Run(e.Context, e.At)
	}
}

// Empty reports whether the list currently holds no events.
func (l *List) Empty() bool { return l.head == nil }
