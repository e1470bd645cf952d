package cpu6809

// Compat state-enum integers used by the snapshot file format; these
// values are part of the on-disk layout and must never be renumbered.
const (
	CompatStateNormal         = 0
	CompatStateSync           = 1
	CompatStateCWAI           = 2
	CompatStateDoneInstruction = 11
	CompatStateHCF            = 12
)

// CompatState maps the live run-loop state to the documented snapshot
// integer. label_a is treated as done-instruction (the boundary the
// original reaches between fully-retired instructions); every other
// actively-dispatching state collapses to normal, since the snapshot
// format has no slot for the finer-grained internal states.
func (c *CPU) CompatState() int {
	switch c.state {
	case StateSync, StateSyncCheckHalt:
		return CompatStateSync
	case StateCWAICheckHalt:
		return CompatStateCWAI
	case StateHCF:
		return CompatStateHCF
	case StateLabelA:
		return CompatStateDoneInstruction
	default:
		return CompatStateNormal
	}
}

// RestoreCompatState sets the run-loop state from a loaded snapshot's
// compat integer. Sync, cwai, hcf and done-instruction round-trip; normal
// and any undocumented value restore to label_a, which CompatState then
// reports as done-instruction (the CPU re-derives the fine-grained state
// over its next few Step calls).
func (c *CPU) RestoreCompatState(v int) {
	switch v {
	case CompatStateSync:
		c.state = StateSync
	case CompatStateCWAI:
		c.state = StateCWAICheckHalt
	case CompatStateHCF:
		c.state = StateHCF
	case CompatStateDoneInstruction:
		c.state = StateLabelA
	default:
		c.state = StateLabelA
	}
}

// Snapshot is the CPU-core slice of the machine-wide snapshot record:
// everything spec.md §6 lists as CPU state (registers, interrupt
// latches, run state, variant tag) minus memory, SAM, PIA and cart
// state, which the machine package owns.
type Snapshot struct {
	Registers   Registers
	Variant     Variant
	CompatState int
	Page        uint16

	NMIRaw, NMILatch, NMIPended bool
	IRQRaw, IRQLatch            bool
	FIRQRaw, FIRQLatch          bool
	Halted                      bool
}

// Snapshot captures the CPU's serialisable state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		Registers:   c.reg,
		Variant:     c.variant,
		CompatState: c.CompatState(),
		Page:        c.page,
		NMIRaw:      c.nmi.raw,
		NMILatch:    c.nmi.latch,
		NMIPended:   c.nmi.pended,
		IRQRaw:      c.irq.raw,
		IRQLatch:    c.irq.latch,
		FIRQRaw:     c.firq.raw,
		FIRQLatch:   c.firq.latch,
		Halted:      c.halted,
	}
}

// Restore installs a previously captured Snapshot, including the
// three-shadow interrupt latches (without which resuming a snapshot
// mid-interrupt-dispatch would lose a pending edge).
func (c *CPU) Restore(s Snapshot) {
	c.reg = s.Registers
	c.variant = s.Variant
	c.page = s.Page
	c.halted = s.Halted

	c.nmi = line{edge: true, raw: s.NMIRaw, latch: s.NMILatch, pended: s.NMIPended}
	c.irq = line{raw: s.IRQRaw, latch: s.IRQLatch}
	c.firq = line{raw: s.FIRQRaw, latch: s.FIRQLatch}

	c.RestoreCompatState(s.CompatState)
	c.tfm = nil
}
