package sam

import "testing"

func TestVectorRegionIgnoresTY(t *testing.T) {
	s := New()
	s.ROM[0x7FFE] = 0xAB // 0xFFFE - 0x8000
	s.ROM[0x7FFF] = 0xCD

	s.WriteControlWord(0x8000) // TY=1 (RAM mapped in 0x8000-0xFEFF)
	if got := s.Read(0xFFFE); got != 0xAB {
		t.Fatalf("0xFFFE read %#02x with TY=1, want ROM byte 0xAB (vector region must ignore TY)", got)
	}
}

func TestVDGCounterReloadsOnFS(t *testing.T) {
	s := New()
	s.WriteControlWord(0x002A) // F field = bits [9:3] of the write value; set a nonzero F
	s.VDGAddress = 0x001F      // low 5 bits preserved across reload

	s.OnFS()

	want := (uint16(s.ctrl.F) << 6) | 0x001F
	if s.VDGAddress != want {
		t.Fatalf("VDGAddress = %#04x, want %#04x", s.VDGAddress, want)
	}
	if s.VDGAddress&0xFFE0 != uint16(s.ctrl.F)<<6 {
		t.Fatalf("bits[15:5] = %#04x, want F<<6 = %#04x", s.VDGAddress&0xFFE0, uint16(s.ctrl.F)<<6)
	}
}

func TestAdvanceVideoAddressRepeatsRowAcrossYDivider(t *testing.T) {
	s := New()
	s.WriteControlWord(0x0001) // V=1 -> Y-divider 3 (see videoDividers)

	first, row0 := s.AdvanceVideoAddress(32)
	second, row1 := s.AdvanceVideoAddress(32)
	third, row2 := s.AdvanceVideoAddress(32)
	fourth, row3 := s.AdvanceVideoAddress(32)

	if first != second || second != third {
		t.Fatalf("address advanced mid-group: %#04x, %#04x, %#04x", first, second, third)
	}
	if fourth != first+32 {
		t.Fatalf("address after a full Y-divider group = %#04x, want %#04x", fourth, first+32)
	}
	if row0 != 0 || row1 != 1 || row2 != 2 || row3 != 0 {
		t.Fatalf("rowInGroup sequence = %d,%d,%d,%d, want 0,1,2,0", row0, row1, row2, row3)
	}
}

func TestAdvanceVideoAddressReflectsDividerChangeAtNextCall(t *testing.T) {
	s := New()
	s.WriteControlWord(0x0001) // V=1 -> Y-divider 3
	s.AdvanceVideoAddress(32)  // rowInGroup 0 of 3
	start := s.VDGAddress

	s.WriteControlWord(0x0004) // V=4 -> Y-divider 1: every call now advances

	addrA, _ := s.AdvanceVideoAddress(32)
	addrB, _ := s.AdvanceVideoAddress(32)
	if addrA != start {
		t.Fatalf("first fetch after divider change = %#04x, want unchanged %#04x (bits [15:5] stay monotonic)", addrA, start)
	}
	if addrB != start+32 {
		t.Fatalf("second fetch after divider change = %#04x, want %#04x", addrB, start+32)
	}
}

func TestChargeCycleAllSlowSumsToNTimes16(t *testing.T) {
	s := New() // R=0: always slow
	var total uint32
	const n = 10
	for i := 0; i < n; i++ {
		total += s.ChargeCycle(0x1000)
	}
	if total != n*16 {
		t.Fatalf("total = %d, want %d", total, n*16)
	}
}

func TestControlBitWritesAssembleFullWord(t *testing.T) {
	s := New()
	// bit 15 (TY) lives at the pair (0xFFDE, 0xFFDF): even clears, odd sets.
	s.Write(0xFFDF, 0)
	if !s.ctrl.TY {
		t.Fatalf("TY not set after odd-address control-bit write")
	}
	s.Write(0xFFDE, 0)
	if s.ctrl.TY {
		t.Fatalf("TY not cleared after even-address control-bit write")
	}
}

func TestTapeSoundHookPerturbsReads(t *testing.T) {
	s := New()
	s.WriteControlWord(0xC000) // TY=1, M=2 (64K symmetric): address used directly
	s.RAM[0x9000] = 0x55

	var seenAddr uint16
	var seenValue uint8
	s.TapeSound = func(addr uint16, v uint8) uint8 {
		seenAddr, seenValue = addr, v
		return v ^ 0xFF
	}

	got := s.Read(0x9000)
	if seenAddr != 0x9000 || seenValue != 0x55 {
		t.Fatalf("hook saw addr=%#04x value=%#02x, want addr=0x9000 value=0x55", seenAddr, seenValue)
	}
	if got != 0xAA {
		t.Fatalf("Read = %#02x, want 0xAA (hook-perturbed)", got)
	}
}

func TestSlowToFastTransitionCost(t *testing.T) {
	s := New()
	s.WriteControlWord(0x1800) // R = full-speed-always bit set -> always fast
	s.lastFast = false
	s.hasLast = true
	s.lastCost = 16

	cost := s.ChargeCycle(0x9000)
	if cost != 15 {
		t.Fatalf("slow-to-fast transition cost = %d, want 15", cost)
	}
}
