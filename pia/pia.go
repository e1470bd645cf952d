// Package pia implements the MC6821 Peripheral Interface Adapter as used
// by the Dragon/CoCo machines: two independent sides (A and B), each
// exposing a data register, a direction register and a control register
// through two addressable slots selected by the control register's
// register-select bit.
package pia

// Hooks lets the owning machine intercept a side's data register on
// read (to sample external inputs) and after a write (to drive outputs),
// matching spec.md §4.5's four delegate points.
type Hooks struct {
	PreRead   func() uint8
	PostWrite func(v uint8)
}

// Side is one half of a PIA: its own data/direction/control register set
// and CX1 edge-interrupt latch.
type Side struct {
	data      uint8
	direction uint8
	control   uint8

	cx1Level          bool
	interruptReceived bool

	hooks Hooks
}

const (
	ctrlDDRSelect  = 1 << 2 // 0 = direction register visible, 1 = data register
	ctrlCX1Enable  = 1 << 0
	ctrlCX1RisingEdge = 1 << 1
)

// SetHooks installs the machine's pre-read/post-write delegates for this side.
func (s *Side) SetHooks(h Hooks) { s.hooks = h }

// ReadControl returns the control register with the interrupt flag bit
// (bit 7) reflecting the latched CX1 condition.
func (s *Side) ReadControl() uint8 {
	v := s.control & 0x3F
	if s.interruptReceived {
		v |= 0x80
	}
	return v
}

// WriteControl updates the control register (the top two bits are
// read-only interrupt-flag bits on real hardware and are masked here).
func (s *Side) WriteControl(v uint8) { s.control = v & 0x3F }

// ReadDataOrDirection dispatches to the data or direction register
// depending on the control register's register-select bit, clearing the
// IRQ flag on a data-register read.
func (s *Side) ReadDataOrDirection() uint8 {
	if s.control&ctrlDDRSelect == 0 {
		return s.direction
	}
	s.interruptReceived = false
	if s.hooks.PreRead != nil {
		external := s.hooks.PreRead()
		s.data = (s.data & s.direction) | (external &^ s.direction)
	}
	return s.data
}

// WriteDataOrDirection writes the direction or data register; a data
// write only affects bits configured as outputs (direction=1) and is
// reported to the post-write hook with the full output byte.
func (s *Side) WriteDataOrDirection(v uint8) {
	if s.control&ctrlDDRSelect == 0 {
		s.direction = v
		return
	}
	s.data = (s.data &^ s.direction) | (v & s.direction)
	if s.hooks.PostWrite != nil {
		s.hooks.PostWrite(s.data)
	}
}

// SetCX1 drives the CX1 input line, latching interruptReceived on the
// control-selected edge.
func (s *Side) SetCX1(level bool) {
	risingEdge := s.control&ctrlCX1RisingEdge != 0
	if level != s.cx1Level {
		if (risingEdge && level) || (!risingEdge && !level) {
			s.interruptReceived = true
		}
	}
	s.cx1Level = level
}

// IRQ reports whether this side is asserting its IRQ output.
func (s *Side) IRQ() bool {
	return s.interruptReceived && s.control&ctrlCX1Enable != 0
}

// Pins returns the side's computed output byte (data bits configured as
// outputs, per the direction register), without the side effects of a
// real read (no IRQ-flag clear, no pre-read hook call). This is spec.md
// §3's "computed pin values" in simplified form: the core models the
// direction/data overlay but not full open-collector source/sink wiring.
func (s *Side) Pins() uint8 { return s.data & s.direction }

// SideSnapshot is one side's serialisable register file.
type SideSnapshot struct {
	Data, Direction, Control    uint8
	CX1Level, InterruptReceived bool
}

func (s *Side) Snapshot() SideSnapshot {
	return SideSnapshot{s.data, s.direction, s.control, s.cx1Level, s.interruptReceived}
}

func (s *Side) Restore(sn SideSnapshot) {
	s.data, s.direction, s.control = sn.Data, sn.Direction, sn.Control
	s.cx1Level, s.interruptReceived = sn.CX1Level, sn.InterruptReceived
}

// PIA is a complete two-sided 6821, addressed through four slots:
// 0=A data/dir, 1=A control, 2=B data/dir, 3=B control.
type PIA struct {
	A, B Side
}

func (p *PIA) Read(slot uint8) uint8 {
	switch slot & 0x03 {
	case 0:
		return p.A.ReadDataOrDirection()
	case 1:
		return p.A.ReadControl()
	case 2:
		return p.B.ReadDataOrDirection()
	default:
		return p.B.ReadControl()
	}
}

func (p *PIA) Write(slot uint8, v uint8) {
	switch slot & 0x03 {
	case 0:
		p.A.WriteDataOrDirection(v)
	case 1:
		p.A.WriteControl(v)
	case 2:
		p.B.WriteDataOrDirection(v)
	default:
		p.B.WriteControl(v)
	}
}

// IRQ reports whether either side of this PIA is asserting its IRQ
// output (the two sides ORed); the machine layer wires one PIA's result
// to the CPU's IRQ pin and the other's to its FIRQ pin.
func (p *PIA) IRQ() bool { return p.A.IRQ() || p.B.IRQ() }

// Snapshot is the serialisable register file for both sides of a PIA.
type Snapshot struct{ A, B SideSnapshot }

func (p *PIA) Snapshot() Snapshot {
	return Snapshot{A: p.A.Snapshot(), B: p.B.Snapshot()}
}

func (p *PIA) Restore(s Snapshot) {
	p.A.Restore(s.A)
	p.B.Restore(s.B)
}
