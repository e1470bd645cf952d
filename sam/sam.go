// Package sam implements the Synchronous Address Multiplexer: the chip
// that decodes the MC6809's 16-bit address bus into RAM, ROM and I/O
// accesses, translates RAM addresses through its row/column multiplexer,
// charges CPU cycles at the rate its mode bits select, and drives the
// VDG's video address counter chain. See spec.md §4.3.
package sam

import "github.com/vixenretro/coco64/cpu6809"

// IODevice is anything the SAM can route a CPU access to outside RAM/ROM:
// a PIA, the cartridge slot, or the SAM's own control registers.
type IODevice interface {
	Read(slot uint8) uint8
	Write(slot uint8, v uint8)
}

// Cart is the minimal bus surface the SAM needs from an attached
// cartridge; the cart package's richer capability interface embeds this.
type Cart interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// Control holds the decoded SAM control register bits (spec.md §4.3/§3).
type Control struct {
	TY  bool    // 0=ROM, 1=RAM in 0x8000-0xFEFF
	M   uint8   // memory-size select, 2 bits
	R   uint8   // speed-select, 2 bits: bit0=full-speed-always, bit1=address-dependent-fast
	P   bool    // RAM page bit
	F   uint8   // VDG display-offset bits F[6:0], 7 bits; OnFS loads them into the counter as F<<6
	V   uint8   // VDG address-divider select, 3 bits
}

// SAM is the address multiplexer. It implements cpu6809.Bus directly so
// it can sit between the CPU and the rest of the machine.
type SAM struct {
	ctrl Control
	raw  uint16 // the assembled 16-bit control word, rebuilt one bit at a time by Write

	RAM [65536]uint8 // translated-address space; machine may only populate the first M-selected size
	ROM [32768]uint8 // mapped at 0x8000-0xFFFF when TY=0

	PIA0, PIA1 IODevice
	Cart       Cart

	// VDGAddress is the live video address counter; bits [15:5] are
	// reloaded from F<<6 on every FS pulse (invariant #4).
	VDGAddress uint16
	grounded   bool // true while a V[2:0] transition is glitching the counter to ground

	// rowCounter counts scanlines within the current video row, 0 up to
	// (but not including) the current V-divider's Y value. It drives
	// AdvanceVideoAddress's decision on whether bits [15:5] actually step
	// this scanline or repeat, and is reset on every FS pulse.
	rowCounter uint8

	// TapeSound, if set, is consulted on every Read and may replace the
	// byte the SAM would otherwise return. It models the analog-domain
	// feedback path between the cassette/audio circuitry and the data
	// bus (spec.md §2's "Tape/sound bus bridges" component, §6's
	// audio-bus-level/tape-output-PIA-bits requirement): an external
	// tape/sound engine observes every address the CPU reads, together
	// with the byte the multiplexer would otherwise supply, and may
	// perturb it to reflect the current tape input level or audio
	// feedback on that cycle.
	TapeSound func(addr uint16, v uint8) uint8

	lastFast        bool
	lastCost        uint32
	hasLast         bool
	lastOddFastPair bool
}

// New returns a SAM with TY=0 (ROM mapped) as at power-on.
func New() *SAM {
	return &SAM{}
}

// ControlWord returns the raw 16-bit control word last written, for
// snapshot save.
func (s *SAM) ControlWord() uint16 { return s.raw }

// WriteControlWord sets the entire 16-bit control word at once, for
// snapshot restore and tests; normal CPU bus writes go through Write,
// which assembles the word one bit at a time via writeControlBit.
func (s *SAM) WriteControlWord(v uint16) {
	s.raw = v
	s.decode()
}

// writeControlBit implements the real hardware's addressed bit-write
// scheme: each of the 32 addresses in 0xFFC0-0xFFDF sets or clears one
// bit of the control word, the even member of each pair clearing its
// bit and the odd member setting it.
func (s *SAM) writeControlBit(addr uint16) {
	bit := uint((addr - 0xFFC0) >> 1)
	if addr&1 != 0 {
		s.raw |= 1 << bit
	} else {
		s.raw &^= 1 << bit
	}
	s.decode()
}

func (s *SAM) decode() {
	v := s.raw
	prevV := s.ctrl.V
	s.ctrl.TY = v&0x8000 != 0
	s.ctrl.M = uint8(v>>13) & 0x03
	s.ctrl.R = uint8(v>>11) & 0x03
	s.ctrl.P = v&0x0400 != 0
	s.ctrl.F = uint8(v>>3) & 0x7F
	s.ctrl.V = uint8(v) & 0x07

	if s.ctrl.V != prevV {
		s.applyVDGGlitch(prevV, s.ctrl.V)
	}
}

// applyVDGGlitch models the ground-glitch spec.md §4.3 describes: certain
// divider transitions (e.g. DIV12->DIV3, V=6->V=1) briefly float the
// counter input to ground before the new divider settles, so a read of
// the counter during the same access observes zero bits rather than the
// old or new value.
func (s *SAM) applyVDGGlitch(prev, next uint8) {
	if (prev == 6 && next == 1) || (prev == 1 && next == 6) {
		s.grounded = true
		return
	}
	s.grounded = false
}

// OnFS reloads bits [15:5] of the VDG address counter from the control
// register's F field, per invariant #4; called by the VDG on every FS pulse.
func (s *SAM) OnFS() {
	s.grounded = false
	s.rowCounter = 0
	s.VDGAddress = (s.VDGAddress & 0x001F) | (uint16(s.ctrl.F) << 6)
}

// VDGCounterValue returns the live counter, observing the ground glitch.
func (s *SAM) VDGCounterValue() uint16 {
	if s.grounded {
		return 0
	}
	return s.VDGAddress
}

// videoDividers returns the X and Y ripple-counter divider values the
// current V field selects, per spec.md §3's "SAM VDG counter chain":
// X is one of {1,2,3}, Y is one of {1,2,3,12}. The mapping from the
// eight V codes to a divider pair is this implementation's own
// assignment, not a transcription of real SAM silicon: V=1 and V=6 are
// fixed by applyVDGGlitch's documented ground-glitch transition
// (Y=3 <-> Y=12), and the rest follow the same DIV12-for-text,
// DIV1-for-graphics progression real Dragon/CoCo software relies on.
func videoDividers(v uint8) (x, y uint8) {
	switch v {
	case 0:
		return 1, 1
	case 1:
		return 1, 3
	case 2:
		return 1, 2
	case 3:
		return 2, 1
	case 4:
		return 1, 1
	case 5:
		return 3, 1
	case 6:
		return 1, 12
	default:
		return 1, 1
	}
}

// AdvanceVideoAddress returns the row address the VDG should fetch words
// bytes from, plus how far into the current repeated-row group this
// scanline sits (0-based, up to the current Y-divider). It then advances
// the ripple-counter chain: bits [15:5] only actually step once every
// Y-divider scanlines, so alphanumeric and low-resolution graphics rows
// are refetched unchanged across their repeated scanlines rather than
// racing ahead a full row per scanline. The X-divider plays no separate
// role here: it gates a sub-byte dot-clock stage (bit 4 of the real
// counter) this implementation doesn't model, since bytes are already
// fetched pre-packed per vdg.Mode.
func (s *SAM) AdvanceVideoAddress(words int) (addr uint16, rowInGroup uint8) {
	addr = s.VDGCounterValue()
	rowInGroup = s.rowCounter

	_, yDiv := videoDividers(s.ctrl.V)
	s.rowCounter++
	if s.rowCounter >= yDiv {
		s.rowCounter = 0
		s.VDGAddress += uint16(words)
	}
	return addr, rowInGroup
}

func (s *SAM) chipSelect(addr uint16) int {
	switch {
	case addr >= 0xFFE0:
		return csVector
	case addr >= 0xFFC0:
		return csSAMReg
	case addr >= 0xFF60:
		return csMiscIO
	case addr >= 0xFF40:
		return csCart
	case addr >= 0xFF20:
		return csPIA1
	case addr >= 0xFF00:
		return csPIA0
	case addr >= 0x8000:
		if s.ctrl.TY {
			return csRAM
		}
		return csROM
	default:
		return csRAM
	}
}

const (
	csPIA0 = iota
	csPIA1
	csCart
	csMiscIO
	csSAMReg
	csVector
	csROM
	csRAM
)

// translateRAM applies the row-mask/column-mask/RAS-1/page translation
// spec.md §4.3 names. M selects how many of the low address bits are
// true row/column versus folded by the page bit; this implements the
// common 4-size (4K/16K/64K symmetric, 64K asymmetric) mapping.
func (s *SAM) translateRAM(addr uint16) uint16 {
	switch s.ctrl.M {
	case 0: // 4K: row/col fully determined by address, page bit ignored
		return addr & 0x0FFF
	case 1: // 16K: same, larger window
		return addr & 0x3FFF
	case 2: // 64K symmetric: full address used directly
		return addr
	default: // 64K asymmetric: page bit selects between two 32K halves
		z := addr & 0x7FFF
		if s.ctrl.P {
			z |= 0x8000
		}
		return z
	}
}

// Read implements cpu6809.Bus. Every read is offered to TapeSound before
// returning, so an attached tape/sound engine can sample or perturb it.
func (s *SAM) Read(addr uint16) uint8 {
	v := s.read(addr)
	if s.TapeSound != nil {
		v = s.TapeSound(addr, v)
	}
	return v
}

func (s *SAM) read(addr uint16) uint8 {
	switch s.chipSelect(addr) {
	case csPIA0:
		if s.PIA0 != nil {
			return s.PIA0.Read(uint8(addr))
		}
	case csPIA1:
		if s.PIA1 != nil {
			return s.PIA1.Read(uint8(addr))
		}
	case csCart:
		if s.Cart != nil {
			return s.Cart.Read(addr)
		}
	case csVector:
		return s.ROM[addr-0x8000]
	case csROM:
		return s.ROM[addr-0x8000]
	case csRAM:
		return s.RAM[s.translateRAM(addr)]
	}
	return 0xFF
}

// Write implements cpu6809.Bus.
func (s *SAM) Write(addr uint16, v uint8) {
	switch s.chipSelect(addr) {
	case csPIA0:
		if s.PIA0 != nil {
			s.PIA0.Write(uint8(addr), v)
		}
	case csPIA1:
		if s.PIA1 != nil {
			s.PIA1.Write(uint8(addr), v)
		}
	case csCart:
		if s.Cart != nil {
			s.Cart.Write(addr, v)
		}
	case csSAMReg:
		s.writeControlBit(addr)
	case csROM, csVector:
		// ROM is not writable.
	case csRAM:
		s.RAM[s.translateRAM(addr)] = v
	}
}

// ChargeCycle returns the sub-cycle cost of the just-completed CPU memory
// cycle at addr, per spec.md §4.3 point 3, and updates the fast/slow
// history used to detect mode transitions on the next call.
func (s *SAM) ChargeCycle(addr uint16) uint32 {
	fast := s.ctrl.R&0x01 != 0 || (s.ctrl.R&0x02 != 0 && addr >= 0x8000)

	var cost uint32
	switch {
	case !s.hasLast:
		cost = slowOrFast(fast)
	case fast == s.lastFast:
		cost = slowOrFast(fast)
	case fast && !s.lastFast: // slow to fast
		cost = 15
	default: // fast to slow
		if s.lastOddFastPair {
			cost = 25
		} else {
			cost = 17
		}
	}

	s.lastOddFastPair = !s.lastOddFastPair
	s.lastFast = fast
	s.lastCost = cost
	s.hasLast = true
	return cost
}

func slowOrFast(fast bool) uint32 {
	if fast {
		return 8
	}
	return 16
}

// The SAM satisfies cpu6809.Bus directly through its Read/Write methods;
// this type assertion documents the relationship for readers without
// introducing a conversion step.
var _ cpu6809.Bus = (*SAM)(nil)
