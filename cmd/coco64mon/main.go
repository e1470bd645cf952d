// Command coco64mon is a minimal line-mode inspection client for a
// running machine: step the CPU, dump registers, and set/list/clear
// breakpoints over a REPL. It exercises the breakpoint engine
// interactively; it is not part of the emulator core itself.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/vixenretro/coco64/breakpoint"
	"github.com/vixenretro/coco64/cart"
	"github.com/vixenretro/coco64/cpu6809"
	"github.com/vixenretro/coco64/machine"
)

func main() {
	rom := make([]byte, 0x8000)
	// reset vector points at the ROM window's own start so a freshly
	// built image with no loaded program still runs somewhere sane.
	rom[0x7FFE] = 0x80
	rom[0x7FFF] = 0x00

	m := machine.New(machine.Config{
		Model:      machine.ModelDragon64,
		Variant:    cpu6809.VariantMC6809,
		MemorySize: 3,
		ROM:        rom,
		Cart:       cart.None{},
	})
	m.Breakpoints.Attach(m.CPU)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "coco64mon: failed to set raw mode: %v\n", err)
		} else {
			defer term.Restore(fd, oldState)
		}
	}

	runREPL(m)
}

type repl struct {
	m       *machine.Machine
	nextBP  int
	points  map[int]*breakpoint.Point
	scanner *lineScanner
}

// lineScanner reads CRLF/LF-terminated lines from a raw-mode terminal,
// translating CR to a line boundary the way terminal_host.go's byte
// reader translates CR to LF before handing bytes onward.
type lineScanner struct {
	r *bufio.Reader
}

func newLineScanner() *lineScanner {
	return &lineScanner{r: bufio.NewReader(os.Stdin)}
}

func (s *lineScanner) readLine() (string, bool) {
	var sb strings.Builder
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return sb.String(), sb.Len() > 0
		}
		if b == '\r' || b == '\n' {
			if sb.Len() == 0 {
				continue
			}
			return sb.String(), true
		}
		if b == 0x7F || b == 0x08 { // DEL or BS: drop the last rune
			line := sb.String()
			if len(line) > 0 {
				sb.Reset()
				sb.WriteString(line[:len(line)-1])
			}
			continue
		}
		sb.WriteByte(b)
	}
}

func runREPL(m *machine.Machine) {
	r := &repl{m: m, points: make(map[int]*breakpoint.Point), scanner: newLineScanner()}
	fmt.Print("coco64mon> ")
	for {
		line, ok := r.scanner.readLine()
		if !ok {
			fmt.Print("\r\n")
			return
		}
		r.dispatch(strings.TrimSpace(line))
		fmt.Print("\r\ncoco64mon> ")
	}
}

func (r *repl) dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "step", "s":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil {
				n = v
			}
		}
		r.step(n)
	case "regs", "r":
		r.printRegs()
	case "break", "b":
		r.addBreak(fields[1:])
	case "list", "l":
		r.listBreaks()
	case "clear", "c":
		r.clearBreak(fields[1:])
	case "mem", "m":
		r.printMem(fields[1:])
	case "quit", "q":
		os.Exit(0)
	case "help", "?":
		fmt.Print("\r\ncommands: step [n], regs, break <addr>, list, clear <id>, mem <addr> [n], quit")
	default:
		fmt.Printf("\r\nunknown command %q (? for help)", fields[0])
	}
}

func (r *repl) step(n int) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		if err := r.m.StepOnce(ctx); err != nil {
			fmt.Printf("\r\nstep failed: %v", err)
			return
		}
	}
	r.printRegs()
}

func (r *repl) printRegs() {
	reg := r.m.CPU.Registers()
	fmt.Printf("\r\nPC=%04X  D=%04X  X=%04X  Y=%04X  S=%04X  U=%04X  DP=%02X  CC=%02X",
		reg.PC, reg.D(), reg.X, reg.Y, reg.S, reg.U, reg.DP, reg.CC)
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}

func (r *repl) addBreak(args []string) {
	if len(args) < 1 {
		fmt.Print("\r\nusage: break <addr>")
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		fmt.Printf("\r\nbad address %q: %v", args[0], err)
		return
	}
	id := r.nextBP
	r.nextBP++
	bp := &breakpoint.Point{
		Address:    addr,
		AddressEnd: addr,
		Handler: func(hitAddr uint16, v uint8) {
			fmt.Printf("\r\nbreak #%d hit at %04X (value %02X)", id, hitAddr, v)
		},
	}
	r.points[id] = bp
	r.m.Breakpoints.Instruction.Add(bp)
	r.m.Breakpoints.Attach(r.m.CPU)
	fmt.Printf("\r\nbreak #%d set at %04X", id, addr)
}

func (r *repl) listBreaks() {
	if len(r.points) == 0 {
		fmt.Print("\r\nno breakpoints set")
		return
	}
	for id, bp := range r.points {
		fmt.Printf("\r\n#%d: %04X", id, bp.Address)
	}
}

func (r *repl) clearBreak(args []string) {
	if len(args) < 1 {
		fmt.Print("\r\nusage: clear <id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("\r\nbad id %q", args[0])
		return
	}
	bp, ok := r.points[id]
	if !ok {
		fmt.Printf("\r\nno such breakpoint #%d", id)
		return
	}
	r.m.Breakpoints.Instruction.Remove(bp)
	r.m.Breakpoints.Attach(r.m.CPU)
	delete(r.points, id)
	fmt.Printf("\r\nbreak #%d cleared", id)
}

func (r *repl) printMem(args []string) {
	if len(args) < 1 {
		fmt.Print("\r\nusage: mem <addr> [n]")
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		fmt.Printf("\r\nbad address %q: %v", args[0], err)
		return
	}
	n := 16
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = v
		}
	}
	for i := 0; i < n; i++ {
		if i%8 == 0 {
			fmt.Printf("\r\n%04X:", addr+uint16(i))
		}
		fmt.Printf(" %02X", r.m.SAM.Read(addr+uint16(i)))
	}
}
