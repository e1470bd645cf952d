// Package cart defines the cartridge capability interface spec.md §3 and
// §6 describe: read/write with chip-select qualifiers, reset, detach, and
// the three signal callbacks a cart may raise toward the CPU. The machine
// package knows only this interface; concrete cartridges (plain ROM, DOS
// controllers, a multi-slot pass-through, an SPI-bridge memory expander,
// and an IDE interface) live in this package as implementations of it.
package cart

import "errors"

// errShortState is returned by a variant's LoadState when the supplied
// buffer is the wrong length for its fixed-size state record.
var errShortState = errors.New("cart: truncated state buffer")

// Cartridge is the capability set the machine's cart slot requires.
// Read and Write both receive the untranslated CPU address, the P2/R2
// chip-select strobes the SAM's address decode produces for the cart
// window, and the bus's current data value (the byte last driven,
// relevant to carts that only partially decode their address window and
// must not disturb bus reads they don't own). Read returns the byte the
// cart wants driven onto the bus.
type Cartridge interface {
	Read(addr uint16, p2, r2 bool, d uint8) uint8
	Write(addr uint16, p2, r2 bool, d uint8)
	Reset()
	Detach()
}

// Signals are the three lines a cartridge may assert toward the CPU,
// supplied by the machine at attach time. A cart that never raises an
// interrupt (a plain ROM) may ignore a nil Signals.
type Signals struct {
	FIRQ func(assert bool)
	NMI  func()
	Halt func(assert bool)
}

func (s Signals) firq(assert bool) {
	if s.FIRQ != nil {
		s.FIRQ(assert)
	}
}

func (s Signals) nmi() {
	if s.NMI != nil {
		s.NMI()
	}
}

func (s Signals) halt(assert bool) {
	if s.Halt != nil {
		s.Halt(assert)
	}
}

// Stateful is implemented by cartridges that carry mutable state a
// snapshot must preserve (spec.md §6's "cart state"). A cartridge with
// no mutable state (a plain ROM pak, whose only state is its fixed
// image) need not implement it; the snapshot package treats a
// non-Stateful cart as having an empty state section.
type Stateful interface {
	SaveState() []byte
	LoadState([]byte) error
}

// None is a Cartridge that drives nothing and accepts writes silently —
// the slot's default value when no cartridge is attached.
type None struct{}

func (None) Read(addr uint16, p2, r2 bool, d uint8) uint8 { return d }
func (None) Write(addr uint16, p2, r2 bool, d uint8)      {}
func (None) Reset()                                       {}
func (None) Detach()                                      {}
