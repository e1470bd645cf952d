package machine

import (
	"context"
	"testing"

	"github.com/vixenretro/coco64/breakpoint"
	"github.com/vixenretro/coco64/cpu6809"
)

// nopROM builds a 32K ROM image (mapped at 0x8000) that is all NOPs
// (0x12) with a reset vector pointing at 0x8000.
func nopROM() []byte {
	rom := make([]byte, 0x8000)
	for i := range rom {
		rom[i] = 0x12 // NOP
	}
	// reset vector lives at 0xFFFE-0xFFFF, i.e. rom[0x7FFE:0x8000]
	rom[0x7FFE] = 0x80
	rom[0x7FFF] = 0x00
	return rom
}

func TestResetVectorsIntoROM(t *testing.T) {
	m := New(Config{Variant: cpu6809.VariantMC6809, ROM: nopROM()})
	ctx := context.Background()
	// reset -> reset_check_halt -> label_a: one Step call per transition.
	for i := 0; i < 2; i++ {
		if err := m.StepOnce(ctx); err != nil {
			t.Fatalf("StepOnce: %v", err)
		}
	}
	if got := m.CPU.Registers().PC; got != 0x8000 {
		t.Fatalf("PC = %#04x, want 0x8000 after reset", got)
	}
}

func TestPIA0IRQDrivesCPUIRQLine(t *testing.T) {
	m := New(Config{Variant: cpu6809.VariantMC6809, ROM: nopROM()})
	m.PIA0.A.WriteControl(0x01) // CX1 enabled, falling-edge default
	m.PIA0.A.SetCX1(true)
	m.PIA0.A.SetCX1(false) // falling edge: latches interruptReceived

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := m.StepOnce(ctx); err != nil {
			t.Fatalf("StepOnce: %v", err)
		}
	}
	// updateInterrupts only runs from a bus access; the NOP stream
	// guarantees at least one instruction fetch has happened by now.
	if !m.PIA0.IRQ() {
		t.Fatalf("PIA0 not asserting IRQ after latched CX1 falling edge")
	}
	if !m.CPU.Snapshot().IRQRaw {
		t.Fatalf("CPU IRQ line not driven by PIA0's asserted IRQ")
	}
}

func TestBreakpointFiresOnInstructionFetch(t *testing.T) {
	m := New(Config{Variant: cpu6809.VariantMC6809, ROM: nopROM()})

	var fired bool
	bp := &breakpoint.Point{
		Address:    0x8000,
		AddressEnd: 0x8000,
		Handler:    func(addr uint16, v uint8) { fired = true },
	}
	m.Breakpoints.Instruction.Add(bp)
	m.Breakpoints.Attach(m.CPU)

	ctx := context.Background()
	for i := 0; i < 4 && !fired; i++ {
		if err := m.StepOnce(ctx); err != nil {
			t.Fatalf("StepOnce: %v", err)
		}
	}
	if !fired {
		t.Fatalf("instruction breakpoint at reset target never fired")
	}
}
