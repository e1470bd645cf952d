// Package snapshot implements the machine-wide state file spec.md §6
// describes: CPU registers and interrupt latches, CPU variant tag, SAM
// control register, RAM, cart state, PIA registers (including computed
// pin state), and an opaque tape/drive state blob the caller supplies
// and gets back unexamined. The inner record's byte layout is fixed —
// spec.md is explicit that this must support exact round-trip
// idempotence — so compression is an outer envelope that never touches
// those bytes.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/vixenretro/coco64/cart"
	"github.com/vixenretro/coco64/cpu6809"
	"github.com/vixenretro/coco64/machine"
	"github.com/vixenretro/coco64/pia"
)

const magic = "CC64SNAP"

// ErrBadMagic is returned by Load when the buffer doesn't start with the
// expected magic bytes.
var ErrBadMagic = errors.New("snapshot: bad magic")

// interrupt-shadow flag bits, packed into one byte of the record.
const (
	flagNMIRaw = 1 << iota
	flagNMILatch
	flagNMIPended
	flagIRQRaw
	flagIRQLatch
	flagFIRQRaw
	flagFIRQLatch
	flagHalted
)

// Save serialises m's entire state plus an opaque tapeState blob into
// the documented record layout.
func Save(m *machine.Machine, tapeState []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(magic)

	writeCPU(&buf, m.CPU)
	binary.Write(&buf, binary.BigEndian, m.SAM.ControlWord())
	writeRAM(&buf, m.SAM.RAM[:])
	writeSection(&buf, cartState(m.Cart))
	writePIA(&buf, m.PIA0)
	writePIA(&buf, m.PIA1)
	writeSection(&buf, tapeState)

	return buf.Bytes()
}

// Load restores m's entire state from a record previously produced by
// Save, returning the tape/drive state blob unexamined for the caller
// to hand to its own tape engine.
func Load(m *machine.Machine, data []byte) ([]byte, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	r := bytes.NewReader(data[len(magic):])

	if err := readCPU(r, m.CPU); err != nil {
		return nil, fmt.Errorf("snapshot: cpu section: %w", err)
	}

	var ctrl uint16
	if err := binary.Read(r, binary.BigEndian, &ctrl); err != nil {
		return nil, fmt.Errorf("snapshot: sam control word: %w", err)
	}
	m.SAM.WriteControlWord(ctrl)

	ram, err := readRAM(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: ram section: %w", err)
	}
	copy(m.SAM.RAM[:], ram)

	cartBytes, err := readSection(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: cart section: %w", err)
	}
	if sf, ok := m.Cart.(cart.Stateful); ok {
		if err := sf.LoadState(cartBytes); err != nil {
			return nil, fmt.Errorf("snapshot: cart state: %w", err)
		}
	}

	if err := readPIA(r, &m.PIA0); err != nil {
		return nil, fmt.Errorf("snapshot: pia0 section: %w", err)
	}
	if err := readPIA(r, &m.PIA1); err != nil {
		return nil, fmt.Errorf("snapshot: pia1 section: %w", err)
	}

	tapeState, err := readSection(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: tape section: %w", err)
	}
	return tapeState, nil
}

// SaveCompressed wraps Save's record in a zstd envelope. The record
// bytes zstd compresses are identical to Save's plain output.
func SaveCompressed(m *machine.Machine, tapeState []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(Save(m, tapeState), nil), nil
}

// LoadCompressed reverses SaveCompressed.
func LoadCompressed(m *machine.Machine, data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd reader: %w", err)
	}
	defer dec.Close()
	plain, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: zstd decode: %w", err)
	}
	return Load(m, plain)
}

func cartState(c cart.Cartridge) []byte {
	if sf, ok := c.(cart.Stateful); ok {
		return sf.SaveState()
	}
	return nil
}

func writeSection(buf *bytes.Buffer, data []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.Write(data)
}

func readSection(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil && n > 0 {
		return nil, err
	}
	return out, nil
}

func writeRAM(buf *bytes.Buffer, ram []byte) { writeSection(buf, ram) }

func readRAM(r *bytes.Reader) ([]byte, error) { return readSection(r) }

func writePIA(buf *bytes.Buffer, p pia.PIA) {
	snap := p.Snapshot()
	writePIASide(buf, snap.A)
	writePIASide(buf, snap.B)
}

func writePIASide(buf *bytes.Buffer, s pia.SideSnapshot) {
	buf.WriteByte(s.Data)
	buf.WriteByte(s.Direction)
	buf.WriteByte(s.Control)
	var flags uint8
	if s.CX1Level {
		flags |= 1
	}
	if s.InterruptReceived {
		flags |= 2
	}
	buf.WriteByte(flags)
}

func readPIA(r *bytes.Reader, p *pia.PIA) error {
	a, err := readPIASide(r)
	if err != nil {
		return err
	}
	b, err := readPIASide(r)
	if err != nil {
		return err
	}
	p.Restore(pia.Snapshot{A: a, B: b})
	return nil
}

func readPIASide(r *bytes.Reader) (pia.SideSnapshot, error) {
	var sn pia.SideSnapshot
	var flags uint8
	fields := []*uint8{&sn.Data, &sn.Direction, &sn.Control, &flags}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return sn, err
		}
	}
	sn.CX1Level = flags&1 != 0
	sn.InterruptReceived = flags&2 != 0
	return sn, nil
}

func writeCPU(buf *bytes.Buffer, c *cpu6809.CPU) {
	snap := c.Snapshot()
	reg := snap.Registers

	buf.WriteByte(uint8(snap.Variant))
	buf.WriteByte(uint8(snap.CompatState))
	binary.Write(buf, binary.BigEndian, snap.Page)

	binary.Write(buf, binary.BigEndian, reg.D())
	binary.Write(buf, binary.BigEndian, reg.X)
	binary.Write(buf, binary.BigEndian, reg.Y)
	binary.Write(buf, binary.BigEndian, reg.S)
	binary.Write(buf, binary.BigEndian, reg.U)
	binary.Write(buf, binary.BigEndian, reg.PC)
	buf.WriteByte(reg.DP)
	buf.WriteByte(reg.CC)
	binary.Write(buf, binary.BigEndian, reg.W())
	binary.Write(buf, binary.BigEndian, reg.V)
	buf.WriteByte(reg.MD)

	var flags uint8
	if snap.NMIRaw {
		flags |= flagNMIRaw
	}
	if snap.NMILatch {
		flags |= flagNMILatch
	}
	if snap.NMIPended {
		flags |= flagNMIPended
	}
	if snap.IRQRaw {
		flags |= flagIRQRaw
	}
	if snap.IRQLatch {
		flags |= flagIRQLatch
	}
	if snap.FIRQRaw {
		flags |= flagFIRQRaw
	}
	if snap.FIRQLatch {
		flags |= flagFIRQLatch
	}
	if snap.Halted {
		flags |= flagHalted
	}
	buf.WriteByte(flags)
}

func readCPU(r *bytes.Reader, c *cpu6809.CPU) error {
	var variant, compat uint8
	var page uint16
	if err := binary.Read(r, binary.BigEndian, &variant); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &compat); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &page); err != nil {
		return err
	}

	var reg cpu6809.Registers
	var d, w uint16
	if err := binary.Read(r, binary.BigEndian, &d); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.X); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.Y); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.S); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.U); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.PC); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.DP); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.CC); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &w); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.V); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &reg.MD); err != nil {
		return err
	}
	reg.SetD(d)
	reg.SetW(w)

	var flags uint8
	if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
		return err
	}

	c.Restore(cpu6809.Snapshot{
		Registers:   reg,
		Variant:     cpu6809.Variant(variant),
		CompatState: int(compat),
		Page:        page,
		NMIRaw:      flags&flagNMIRaw != 0,
		NMILatch:    flags&flagNMILatch != 0,
		NMIPended:   flags&flagNMIPended != 0,
		IRQRaw:      flags&flagIRQRaw != 0,
		IRQLatch:    flags&flagIRQLatch != 0,
		FIRQRaw:     flags&flagFIRQRaw != 0,
		FIRQLatch:   flags&flagFIRQLatch != 0,
		Halted:      flags&flagHalted != 0,
	})
	return nil
}
