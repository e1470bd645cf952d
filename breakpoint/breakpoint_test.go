package breakpoint

import "testing"

func TestAddRemoveRoundTrip(t *testing.T) {
	var l List
	a := &Point{Address: 0x1000, AddressEnd: 0x1000, Handler: func(uint16, uint8) {}}
	l.Add(a)
	if l.Empty() {
		t.Fatalf("list empty after Add")
	}

	l.Remove(a)
	if !l.Empty() {
		t.Fatalf("list not empty after Remove")
	}
	if l.head != nil || l.tail != nil {
		t.Fatalf("head/tail not cleared: head=%v tail=%v", l.head, l.tail)
	}
}

func TestSafeRemovalDuringIteration(t *testing.T) {
	var l List
	var fired []uint16

	var b, c *Point
	a := &Point{Address: 0x2000, AddressEnd: 0x2000, Handler: func(addr uint16, _ uint8) {
		fired = append(fired, addr)
		l.Remove(b) // remove the NEXT entry from within the first handler
	}}
	b = &Point{Address: 0x2000, AddressEnd: 0x2000, Handler: func(addr uint16, _ uint8) {
		fired = append(fired, addr)
	}}
	c = &Point{Address: 0x2000, AddressEnd: 0x2000, Handler: func(addr uint16, _ uint8) {
		fired = append(fired, addr)
	}}

	l.Add(a)
	l.Add(b)
	l.Add(c)

	l.trigger(0x2000, 0, 0)

	if len(fired) != 2 {
		t.Fatalf("fired %d handlers, want 2 (b was removed mid-iteration)", len(fired))
	}
	if fired[0] != 0x2000 || fired[1] != 0x2000 {
		t.Fatalf("unexpected fired addresses: %v", fired)
	}
}

func TestConditionMaskGatesTrigger(t *testing.T) {
	var l List
	var fired bool
	p := &Point{
		Address: 0x3000, AddressEnd: 0x3000,
		CondMask: 0x01, Cond: 0x01,
		Handler: func(uint16, uint8) { fired = true },
	}
	l.Add(p)

	l.trigger(0x3000, 0, 0x00) // condition not satisfied
	if fired {
		t.Fatalf("handler fired despite unmet condition mask")
	}

	l.trigger(0x3000, 0, 0x01)
	if !fired {
		t.Fatalf("handler did not fire once condition satisfied")
	}
}

func TestAddressRangeBounds(t *testing.T) {
	var l List
	var fired int
	p := &Point{Address: 0x0400, AddressEnd: 0x05FF, Handler: func(uint16, uint8) { fired++ }}
	l.Add(p)

	l.trigger(0x0480, 0x42, 0)
	l.trigger(0x0600, 0x00, 0)

	if fired != 1 {
		t.Fatalf("fired %d times, want exactly 1 (one address in range, one out)", fired)
	}
}
