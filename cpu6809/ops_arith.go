package cpu6809

// reg8 is a bound accessor pair for an 8-bit accumulator (A or B).
type reg8 struct {
	get func() uint8
	set func(uint8)
}

func (c *CPU) regA() reg8 { return reg8{c.reg.A, c.reg.SetA} }
func (c *CPU) regB() reg8 { return reg8{c.reg.B, c.reg.SetB} }

// reg16 is a bound accessor pair for a 16-bit register.
type reg16 struct {
	get func() uint16
	set func(uint16)
}

func (c *CPU) regX16() reg16 { return reg16{func() uint16 { return c.reg.X }, func(v uint16) { c.reg.X = v }} }
func (c *CPU) regY16() reg16 { return reg16{func() uint16 { return c.reg.Y }, func(v uint16) { c.reg.Y = v }} }
func (c *CPU) regU16() reg16 { return reg16{func() uint16 { return c.reg.U }, func(v uint16) { c.reg.U = v }} }
func (c *CPU) regS16() reg16 { return reg16{func() uint16 { return c.reg.S }, func(v uint16) { c.reg.S = v }} }
func (c *CPU) regD16() reg16 { return reg16{c.reg.D, c.reg.SetD} }

// 8-bit ALU row nibbles shared by the 0x8_/0x9_/0xA_/0xB_ (A) and
// 0xC_/0xD_/0xE_/0xF_ (B) opcode families. Nibble 0x3 and 0xC are
// special-cased to 16-bit operations by the caller; nibble 0x7 is ST,
// handled separately; nibble 0xD/0xE/0xF are control-flow/LD16/ST16,
// also handled separately.
func (c *CPU) applyAcc8(r reg8, nibble uint8, operand uint8) {
	a := r.get()
	switch nibble {
	case 0x0: // SUB
		r.set(c.sub8(a, operand, false))
	case 0x1: // CMP
		c.sub8(a, operand, false)
	case 0x2: // SBC
		r.set(c.sub8(a, operand, c.reg.ccFlag(CCCarry)))
	case 0x4: // AND
		r.set(c.and8(a, operand))
	case 0x5: // BIT
		c.and8(a, operand)
	case 0x6: // LD
		r.set(operand)
		c.setNZ8(operand)
		c.reg.setCC(CCOverflow, false)
	case 0x8: // EOR
		r.set(c.eor8(a, operand))
	case 0x9: // ADC
		r.set(c.add8(a, operand, c.reg.ccFlag(CCCarry)))
	case 0xA: // OR
		r.set(c.or8(a, operand))
	case 0xB: // ADD
		r.set(c.add8(a, operand, false))
	}
}

// accStore implements the ST nibble (0x7): store the accumulator to
// memory, set N/Z from the stored value, clear V.
func (c *CPU) accStore(r reg8, addr uint16) {
	v := r.get()
	c.writeByte(addr, v)
	c.setNZ8(v)
	c.reg.setCC(CCOverflow, false)
}

// illegalDiscard implements the 0x87/0xC7/0x8F/0xCF family: an immediate
// "store" is nonsensical, so the value is discarded; NZV are cleared and
// N is then forced set, per spec.md §4.2.
func (c *CPU) illegalDiscard() {
	c.reg.setCC(CCZero, false)
	c.reg.setCC(CCOverflow, false)
	c.reg.setCC(CCNegative, true)
}

func (c *CPU) sub16To(r reg16, operand uint16) { r.set(c.sub16(r.get(), operand)) }
func (c *CPU) add16To(r reg16, operand uint16) { r.set(c.add16(r.get(), operand)) }
func (c *CPU) cmp16(r reg16, operand uint16)   { c.sub16(r.get(), operand) }

func (c *CPU) ld16To(r reg16, operand uint16) {
	r.set(operand)
	c.setNZ16(operand)
	c.reg.setCC(CCOverflow, false)
}

func (c *CPU) st16(r reg16, addr uint16) {
	v := r.get()
	c.writeWord(addr, v)
	c.setNZ16(v)
	c.reg.setCC(CCOverflow, false)
}
