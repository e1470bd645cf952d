package snapshot

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vixenretro/coco64/cart"
	"github.com/vixenretro/coco64/cpu6809"
	"github.com/vixenretro/coco64/machine"
)

func newTestMachine(t *testing.T) *machine.Machine {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x7FFE] = 0x80
	rom[0x7FFF] = 0x00
	return machine.New(machine.Config{
		Model:      machine.ModelDragon64,
		Variant:    cpu6809.VariantMC6809,
		MemorySize: 3,
		ROM:        rom,
		Cart:       cart.None{},
	})
}

func TestSaveLoadRoundTripsCPUState(t *testing.T) {
	m := newTestMachine(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := m.StepOnce(ctx); err != nil {
			t.Fatalf("StepOnce: %v", err)
		}
	}
	m.SAM.RAM[0x1234] = 0xAB

	before := m.CPU.Snapshot()
	data := Save(m, []byte("tape-cursor-42"))

	m2 := newTestMachine(t)
	tapeState, err := Load(m2, data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(tapeState) != "tape-cursor-42" {
		t.Fatalf("tape state = %q, want %q", tapeState, "tape-cursor-42")
	}

	after := m2.CPU.Snapshot()
	if diff := cmp.Diff(before, after, cmp.AllowUnexported(cpu6809.Registers{})); diff != "" {
		t.Fatalf("cpu state mismatch after round trip (-before +after):\n%s", diff)
	}
	if m2.SAM.RAM[0x1234] != 0xAB {
		t.Fatalf("ram byte at 0x1234 = %#02x, want 0xAB", m2.SAM.RAM[0x1234])
	}
	if m2.SAM.ControlWord() != m.SAM.ControlWord() {
		t.Fatalf("sam control word = %#04x, want %#04x", m2.SAM.ControlWord(), m.SAM.ControlWord())
	}
}

func TestSaveLoadRoundTripsPIAState(t *testing.T) {
	m := newTestMachine(t)
	m.PIA0.A.WriteControl(0)
	m.PIA0.A.WriteDataOrDirection(0x0F)
	m.PIA0.A.WriteControl(4)
	m.PIA0.A.SetCX1(true)

	data := Save(m, nil)

	m2 := newTestMachine(t)
	if _, err := Load(m2, data); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m2.PIA0.A.ReadControl() != m.PIA0.A.ReadControl() {
		t.Fatalf("pia0 side A control not restored")
	}
	if m2.PIA0.Snapshot() != m.PIA0.Snapshot() {
		t.Fatalf("pia0 snapshot mismatch after round trip")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	m := newTestMachine(t)
	if _, err := Load(m, []byte("not a snapshot")); err != ErrBadMagic {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
}

func TestCompressedRoundTripMatchesPlain(t *testing.T) {
	m := newTestMachine(t)
	m.SAM.RAM[0] = 0x42

	data, err := SaveCompressed(m, []byte("x"))
	if err != nil {
		t.Fatalf("SaveCompressed: %v", err)
	}

	m2 := newTestMachine(t)
	tapeState, err := LoadCompressed(m2, data)
	if err != nil {
		t.Fatalf("LoadCompressed: %v", err)
	}
	if string(tapeState) != "x" {
		t.Fatalf("tape state = %q, want %q", tapeState, "x")
	}
	if m2.SAM.RAM[0] != 0x42 {
		t.Fatalf("ram byte 0 = %#02x, want 0x42", m2.SAM.RAM[0])
	}
}
