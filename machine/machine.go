// Package machine wires the scheduler, CPU, SAM, VDG, PIAs, breakpoint
// engine and cartridge slot into a runnable Dragon/CoCo system. It owns
// the only mutable shared state (RAM/ROM, via the SAM) and the memory
// map; every other component reaches RAM, ROM or peripherals only
// through the machine's wiring. See spec.md §5's concurrency model.
package machine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/vixenretro/coco64/breakpoint"
	"github.com/vixenretro/coco64/cart"
	"github.com/vixenretro/coco64/cpu6809"
	"github.com/vixenretro/coco64/pia"
	"github.com/vixenretro/coco64/sam"
	"github.com/vixenretro/coco64/scheduler"
	"github.com/vixenretro/coco64/tick"
	"github.com/vixenretro/coco64/vdg"
)

// Model selects the fixed per-machine traits spec.md §4.4 calls out:
// which PAL padding scheme (if any) stretches the VDG's 262-line NTSC
// timing to 312 lines.
type Model int

const (
	ModelDragon32 Model = iota
	ModelDragon64
	ModelCoCoNTSC
	ModelCoCoPAL
)

func (m Model) padding() vdg.PALPadding {
	switch m {
	case ModelDragon64:
		return vdg.PALPaddingDragon64
	case ModelCoCoPAL:
		return vdg.PALPaddingCoCoPAL
	default:
		return vdg.PALPaddingNone
	}
}

// Config is everything the caller supplies at construction time; per
// spec.md's ambient-config rule there is no file parsing or flag
// handling inside the core.
type Config struct {
	Model      Model
	Variant    cpu6809.Variant
	MemorySize uint8 // SAM M field, 0-3

	ROM  []byte // copied once into the 32K ROM window at 0x8000-0xFFFF; a shorter image is not mirrored
	Cart cart.Cartridge

	// PIA hook wiring: the host supplies these to sample external inputs
	// (keyboard matrix, joystick comparator, printer busy) and to react
	// to outputs (DAC, sound mux, ROM bank select, cassette motor).
	// Keyboard/printer/joystick logic itself is out of scope; only the
	// wiring point is the core's concern.
	PIA0A, PIA0B pia.Hooks
	PIA1A, PIA1B pia.Hooks

	// LineReady receives each fully decoded scanline; video surface
	// blitting is out of scope, so a nil LineReady simply drops frames.
	LineReady func(scanline int, pixels []vdg.Pixel)

	// TapeSound, if set, is wired to the SAM's read-path bridge so an
	// external tape/sound engine can sample and perturb CPU bus reads
	// with the current tape/audio analog level. Tape motor control and
	// audio mixing themselves are out of scope; this is only the wiring
	// point.
	TapeSound func(addr uint16, v uint8) uint8
}

// Machine is a complete, runnable core instance.
type Machine struct {
	CPU *cpu6809.CPU
	SAM *sam.SAM
	VDG *vdg.VDG
	PIA0, PIA1 pia.PIA
	Cart cart.Cartridge

	Breakpoints breakpoint.Engine

	sched scheduler.List
	now   tick.Count

	running int32 // atomic; Run's loop condition
	runGate *semaphore.Weighted
}

// cartBus adapts the richer cart.Cartridge capability interface to the
// narrow sam.Cart surface the SAM needs. The SAM's current chip-select
// table routes the entire 0xFF40-0xFF5F window to the cart's I/O
// strobe (P2); the program-pak ROM overlay at 0xC000-0xFEFF that real
// hardware gates with a separate R2 strobe is not decoded by the SAM as
// written, so R2 is always reported false here. The SAM decodes
// 0x8000-0xFEFF as ROM or RAM and never routes it to the cart, so a
// ROM pak's image (or a DOS cart's boot ROM) is not visible on the CPU
// bus.
type cartBus struct{ c cart.Cartridge }

func (b cartBus) Read(addr uint16) uint8    { return b.c.Read(addr, true, false, 0xFF) }
func (b cartBus) Write(addr uint16, v uint8) { b.c.Write(addr, true, false, v) }

// New constructs a Machine from cfg and performs the initial CPU reset
// (via cpu6809.New).
func New(cfg Config) *Machine {
	m := &Machine{runGate: semaphore.NewWeighted(1)}

	m.SAM = sam.New()
	m.SAM.WriteControlWord(uint16(cfg.MemorySize&0x03) << 13)
	copy(m.SAM.ROM[:], cfg.ROM)
	m.SAM.TapeSound = cfg.TapeSound

	m.PIA0.A.SetHooks(cfg.PIA0A)
	m.PIA0.B.SetHooks(cfg.PIA0B)
	m.PIA1.A.SetHooks(cfg.PIA1A)
	m.PIA1.B.SetHooks(cfg.PIA1B)
	m.SAM.PIA0 = &m.PIA0
	m.SAM.PIA1 = &m.PIA1

	if cfg.Cart != nil {
		m.Cart = cfg.Cart
	} else {
		m.Cart = cart.None{}
	}
	m.SAM.Cart = cartBus{m.Cart}

	m.VDG = vdg.New(&m.sched, vdg.Callbacks{
		Fetch:       m.vdgFetch,
		NextAddress: m.SAM.AdvanceVideoAddress,
		LineReady:   cfg.LineReady,
		VSync:       m.vdgVSync,
	})
	m.VDG.Padding = cfg.Model.padding()
	m.VDG.Start(0)

	m.CPU = cpu6809.New(machineBus{m}, cfg.Variant)
	return m
}

// machineBus is the CPU's sole view of the outside world: every cycle
// runs the scheduler up to the current tick, services the access
// through the SAM, re-evaluates the PIA-to-CPU interrupt OR gates, and
// charges the cycle's sub-cycle cost, per spec.md §4.3 point 4 and §5's
// cycle ordering guarantee.
type machineBus struct{ m *Machine }

func (b machineBus) Read(addr uint16) uint8 {
	m := b.m
	m.sched.Run(m.now)
	v := m.SAM.Read(addr)
	m.Breakpoints.NotifyRead(addr, v)
	m.updateInterrupts()
	m.now += tick.Count(m.SAM.ChargeCycle(addr))
	return v
}

func (b machineBus) Write(addr uint16, v uint8) {
	m := b.m
	m.sched.Run(m.now)
	m.SAM.Write(addr, v)
	m.Breakpoints.NotifyWrite(addr, v)
	m.updateInterrupts()
	m.now += tick.Count(m.SAM.ChargeCycle(addr))
}

// updateInterrupts implements spec.md §4.5's "machine layer wires PIA
// IRQ outputs into the CPU's IRQ and FIRQ pins through OR gates":
// PIA0 drives IRQ, PIA1 drives FIRQ, matching the documented Dragon/CoCo
// wiring.
func (m *Machine) updateInterrupts() {
	m.CPU.SetIRQ(m.PIA0.IRQ())
	m.CPU.SetFIRQ(m.PIA1.IRQ())
}

func (m *Machine) vdgFetch(addr uint16, n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = m.SAM.Read(addr + uint16(i))
	}
	return out
}

func (m *Machine) vdgVSync(low bool) {
	if low {
		m.SAM.OnFS()
	}
}

// Now returns the machine's current tick, mainly for diagnostics and
// snapshot/tape bridging.
func (m *Machine) Now() tick.Count { return m.now }

// Start allows Run's loop to keep advancing; Stop requests it halt at
// the next instruction boundary, per spec.md §5's cancellation model.
func (m *Machine) Start() { atomic.StoreInt32(&m.running, 1) }
func (m *Machine) Stop()  { atomic.StoreInt32(&m.running, 0) }

// Run acquires the run gate and advances the CPU one instruction
// boundary at a time until Stop is called or ctx is cancelled. A debug
// thread waiting on the same gate (see AcquireForInspect) is guaranteed
// the core is idle between instruction boundaries once Run returns.
func (m *Machine) Run(ctx context.Context) error {
	if err := m.runGate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer m.runGate.Release(1)

	atomic.StoreInt32(&m.running, 1)
	for atomic.LoadInt32(&m.running) != 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.CPU.Step()
	}
	return nil
}

// StepOnce advances exactly one instruction boundary under the run
// gate, for a debug thread driving single-step execution while Run is
// not active.
func (m *Machine) StepOnce(ctx context.Context) error {
	if err := m.runGate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer m.runGate.Release(1)
	m.CPU.Step()
	return nil
}

// AcquireForInspect blocks until no Run/StepOnce call is in flight,
// then holds the gate so the caller may safely read core state. Release
// with ReleaseInspect.
func (m *Machine) AcquireForInspect(ctx context.Context) error {
	return m.runGate.Acquire(ctx, 1)
}

func (m *Machine) ReleaseInspect() { m.runGate.Release(1) }
