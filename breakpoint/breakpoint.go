// Package breakpoint implements the instruction, read-watchpoint and
// write-watchpoint lists: a safe-mid-iteration-removal doubly-linked list
// plus the condition-masked triggering rule. See spec.md §4.6.
package breakpoint

import "github.com/vixenretro/coco64/cpu6809"

// Point is one breakpoint or watchpoint entry. Address and AddressEnd
// describe an inclusive range (set AddressEnd = Address for a single
// address). CondMask/Cond qualify triggering on machine-supplied
// condition bits (e.g. "cartridge present"); a Point with CondMask and
// Cond both 0 always fires.
type Point struct {
	Address, AddressEnd uint16
	CondMask, Cond      uint32
	Handler             func(addr uint16, value uint8)

	prev, next *Point
	list       *List
}

// List is a doubly-linked list supporting safe removal of the current
// entry from within a Handler: Remove advances the list's own iteration
// cursor if it currently points at the removed entry, matching spec.md
// §4.6's "external iter_next pointer" pattern without requiring callers
// (typically a Handler several stack frames deep) to thread an iterator
// argument through.
type List struct {
	head, tail *Point
	active     *Point // the list's own walk cursor while trigger is running
}

// Add appends p to the list.
func (l *List) Add(p *Point) {
	p.list = l
	p.prev = l.tail
	p.next = nil
	if l.tail != nil {
		l.tail.next = p
	} else {
		l.head = p
	}
	l.tail = p
}

// Remove unlinks p. If the list's active walk cursor currently points at
// p (i.e. Remove is called from within a Handler invoked by trigger),
// the cursor is advanced to p's successor first, so the in-progress
// iteration remains safe.
func (l *List) Remove(p *Point) {
	if p.list != l {
		return
	}
	if l.active == p {
		l.active = p.next
	}
	if p.prev != nil {
		p.prev.next = p.next
	} else {
		l.head = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	} else {
		l.tail = p.prev
	}
	p.prev, p.next, p.list = nil, nil, nil
}

// Empty reports whether the list has no entries.
func (l *List) Empty() bool { return l.head == nil }

// trigger walks the list looking for entries whose range contains addr
// and whose condition mask matches current, invoking each Handler in
// turn. Iteration uses the external-iterator pattern from spec.md §4.6 so
// a Handler may safely call Remove on the entry currently executing.
func (l *List) trigger(addr uint16, value uint8, current uint32) {
	prevActive := l.active
	l.active = l.head
	defer func() { l.active = prevActive }()

	for l.active != nil {
		p := l.active
		l.active = p.next
		if addr >= p.Address && addr <= p.AddressEnd && (current&p.CondMask) == p.Cond {
			p.Handler(addr, value)
		}
	}
}

// Engine owns the three lists (instruction, read-watch, write-watch) and
// the CPU instruction-hook wiring spec.md §4.6 describes: the hook is
// installed only while the instruction list is non-empty, and re-runs
// itself when a handler moves PC so stacked breakpoints at the same
// address each fire once per arrival.
type Engine struct {
	Instruction List
	ReadWatch   List
	WriteWatch  List

	Conditions uint32 // machine-supplied condition bits, e.g. cart-present
}

// Attach wires the instruction-breakpoint hook into cpu, installing or
// removing it as the instruction list transitions to/from empty. Call
// this once after adding the engine's first instruction breakpoint and
// again after removing the last, or simply call it after every mutation.
func (e *Engine) Attach(c *cpu6809.CPU) {
	if e.Instruction.Empty() {
		c.InstructionHook = nil
		return
	}
	c.InstructionHook = e.instructionHook
}

func (e *Engine) instructionHook(c *cpu6809.CPU) {
	for {
		pcBefore := c.Registers().PC
		e.Instruction.trigger(pcBefore, 0, e.Conditions)
		if c.Registers().PC == pcBefore {
			return
		}
		// a handler moved PC (e.g. to redirect execution): re-run so a
		// breakpoint stacked at the new address also fires on this arrival.
	}
}

// NotifyRead must be called by the machine's bus read path after the
// component has serviced the access.
func (e *Engine) NotifyRead(addr uint16, value uint8) {
	e.ReadWatch.trigger(addr, value, e.Conditions)
}

// NotifyWrite must be called by the machine's bus write path after the
// component has serviced the access.
func (e *Engine) NotifyWrite(addr uint16, value uint8) {
	e.WriteWatch.trigger(addr, value, e.Conditions)
}
