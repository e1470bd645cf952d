package cart

// Dialect selects which of the three common disk-BASIC cartridge
// register layouts a DOS variant presents. The WD17xx/WD2797 floppy
// controller chip itself — and everything about the disk image it
// reads — is out of scope (spec.md §1's "file loaders (disk image
// formats...)"); FloppyController below is the narrow seam the core
// exposes for a real controller implementation to sit behind.
type Dialect int

const (
	DialectDragonDOS Dialect = iota
	DialectRSDOS
	DialectDelta
)

// FloppyController is the capability a DOS cart delegates its FDC
// register window to. Register numbering is controller-relative (0-3
// for command/status, track, sector, data, matching the WD17xx/WD2797
// family all three dialects use); drive/motor/density select is decoded
// by the DOS cart itself since that part is just address-mapped digital
// logic, not disk-format knowledge.
type FloppyController interface {
	ReadRegister(reg uint8) uint8
	WriteRegister(reg uint8, v uint8)
	SetDrive(drive int, side int, density bool)
	Intrq() bool
	Drq() bool
}

// DOS is a floppy-controller cartridge: a boot ROM plus an FDC register
// window and a drive-select latch, in one of the three common register
// layouts. Poll asserts FIRQ from the controller's INTRQ/DRQ lines, the
// way the real hardware ORs them onto the cartridge FIRQ line.
type DOS struct {
	rom     *ROM
	fdc     FloppyController
	dialect Dialect
	sig     Signals

	latch uint8 // drive-select / motor / density / NMI-enable bits
}

// NewDOS creates a DOS cartridge. rom is the boot ROM image (DragonDOS,
// RSDOS, or Delta boot code, mapped the same as a plain ROM pak); fdc
// may be nil, in which case FDC register reads return open bus and the
// drive-select latch still works (useful for boot-ROM-only testing).
func NewDOS(dialect Dialect, rom []byte, romBase uint16, fdc FloppyController, sig Signals) *DOS {
	return &DOS{
		rom:     NewROM(romBase, rom, Signals{}),
		fdc:     fdc,
		dialect: dialect,
		sig:     sig,
	}
}

// latchAddr returns the cart-window offset of the drive-select latch
// for this dialect: DragonDOS and Delta use a single write-only latch
// at $FF48/$FF40 respectively, RSDOS shares $FF40 with the FDC's first
// register in a control-bit-gated scheme. The simplified model here
// treats it as a dedicated offset per dialect, sufficient for a core
// that delegates real FDC semantics to FloppyController.
func (d *DOS) latchAddr() uint16 {
	switch d.dialect {
	case DialectDragonDOS:
		return 0xFF48
	case DialectDelta:
		return 0xFF40
	default: // RSDOS
		return 0xFF40
	}
}

func (d *DOS) fdcBase() uint16 {
	if d.dialect == DialectRSDOS {
		return 0xFF41
	}
	return 0xFF44
}

func (d *DOS) Read(addr uint16, p2, r2 bool, data uint8) uint8 {
	if !p2 && !r2 {
		return data
	}
	if r2 {
		return d.rom.Read(addr, true, false, data)
	}
	switch {
	case addr == d.latchAddr():
		return d.latch
	case d.fdc != nil && addr >= d.fdcBase() && addr < d.fdcBase()+4:
		return d.fdc.ReadRegister(uint8(addr - d.fdcBase()))
	default:
		return data
	}
}

func (d *DOS) Write(addr uint16, p2, r2 bool, data uint8) {
	if !p2 {
		return
	}
	switch {
	case addr == d.latchAddr():
		d.latch = data
		if d.fdc != nil {
			drive := int(data & 0x03)
			side := int((data >> 6) & 0x01)
			density := data&0x20 != 0
			d.fdc.SetDrive(drive, side, density)
		}
	case d.fdc != nil && addr >= d.fdcBase() && addr < d.fdcBase()+4:
		d.fdc.WriteRegister(uint8(addr-d.fdcBase()), data)
	}
}

// Poll must be called by the machine after any FDC register access (or
// periodically) so a DOS cart whose controller raises INTRQ/DRQ
// out-of-band still gets its FIRQ line updated; the core's bus model
// has no interrupt polling thread of its own.
func (d *DOS) Poll() {
	if d.fdc == nil {
		return
	}
	d.sig.firq(d.fdc.Intrq() || d.fdc.Drq())
}

func (d *DOS) Reset() {
	d.latch = 0
}

func (d *DOS) Detach() {}

// SaveState/LoadState preserve the drive-select latch; the attached
// FloppyController's own state (head position, sector buffer) is its
// own concern, outside the core's file-loader-adjacent scope.
func (d *DOS) SaveState() []byte { return []byte{d.latch} }

func (d *DOS) LoadState(b []byte) error {
	if len(b) != 1 {
		return errShortState
	}
	d.latch = b[0]
	return nil
}
