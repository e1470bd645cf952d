package cpu6809

// branchTaken evaluates one of the sixteen condition codes (low nibble of
// a 0x20-0x2F / 0x1020-0x102F branch opcode).
func (c *CPU) branchTaken(cond uint8) bool {
	carry := c.reg.ccFlag(CCCarry)
	zero := c.reg.ccFlag(CCZero)
	overflow := c.reg.ccFlag(CCOverflow)
	negative := c.reg.ccFlag(CCNegative)

	switch cond & 0x0F {
	case 0x0:
		return true // BRA
	case 0x1:
		return false // BRN
	case 0x2:
		return !carry && !zero // BHI
	case 0x3:
		return carry || zero // BLS
	case 0x4:
		return !carry // BCC/BHS
	case 0x5:
		return carry // BCS/BLO
	case 0x6:
		return !zero // BNE
	case 0x7:
		return zero // BEQ
	case 0x8:
		return !overflow // BVC
	case 0x9:
		return overflow // BVS
	case 0xA:
		return !negative // BPL
	case 0xB:
		return negative // BMI
	case 0xC:
		return negative == overflow // BGE
	case 0xD:
		return negative != overflow // BLT
	case 0xE:
		return !zero && negative == overflow // BGT
	default:
		return zero || negative != overflow // BLE
	}
}

// shortBranch executes a 0x20-0x2F opcode: an 8-bit signed displacement
// always follows, and PC is only adjusted when the condition holds.
func (c *CPU) shortBranch(opcode uint8) {
	offset := int8(c.fetchByte())
	if c.branchTaken(opcode) {
		c.reg.PC = uint16(int32(c.reg.PC) + int32(offset))
	}
}

// longBranch executes a 0x1020-0x102F opcode: a 16-bit signed
// displacement always follows.
func (c *CPU) longBranch(opcode uint8) {
	offset := int16(c.fetchWord())
	if c.branchTaken(opcode) {
		c.reg.PC = uint16(int32(c.reg.PC) + int32(offset))
	}
}

func (c *CPU) bsr() {
	offset := int8(c.fetchByte())
	c.pushWord(&c.reg.S, c.reg.PC)
	c.reg.PC = uint16(int32(c.reg.PC) + int32(offset))
}

func (c *CPU) lbsr() {
	offset := int16(c.fetchWord())
	c.pushWord(&c.reg.S, c.reg.PC)
	c.reg.PC = uint16(int32(c.reg.PC) + int32(offset))
}

func (c *CPU) jsrDirect()   { addr := c.directEA(); c.pushWord(&c.reg.S, c.reg.PC); c.reg.PC = addr }
func (c *CPU) jsrIndexed()  { addr := c.indexedEA(); c.pushWord(&c.reg.S, c.reg.PC); c.reg.PC = addr }
func (c *CPU) jsrExtended() { addr := c.extendedEA(); c.pushWord(&c.reg.S, c.reg.PC); c.reg.PC = addr }

func (c *CPU) rts() { c.reg.PC = c.popWord(&c.reg.S) }

// rti restores registers from the stack, using the Entire flag in the
// saved CC (already on the stack at the CC position) to decide whether
// a full or partial frame was pushed.
func (c *CPU) rti() {
	c.reg.CC = c.popByte(&c.reg.S)
	if c.reg.CC&CCEntire != 0 {
		c.reg.SetA(c.popByte(&c.reg.S))
		c.reg.SetB(c.popByte(&c.reg.S))
		c.reg.DP = c.popByte(&c.reg.S)
		c.reg.X = c.popWord(&c.reg.S)
		c.reg.Y = c.popWord(&c.reg.S)
		c.reg.U = c.popWord(&c.reg.S)
	}
	c.reg.PC = c.popWord(&c.reg.S)
}
