package cpu6809

// HD6309-only instruction set extensions. Opcode numbers for this block
// are an internally-consistent assignment within the unused page-2/page-3
// slots MC6809 leaves illegal; they have not been checked byte-for-byte
// against a real HD6309 part, only the documented 0x14/0xCD slot
// reassignments (SEXW, LDQ/STQ) and the well-known TFM/DIVD/DIVQ/MULD
// opcodes are taken as given. Semantics are exercised independent of the
// exact encoding. See DESIGN.md.

// tfmState holds the in-flight TFM (block transfer) operation while
// tfmTransfer copies it one byte per tfmStep call. It is cleared before
// the Step that started the transfer returns; interrupts are not polled
// between bytes.
type tfmState struct {
	src, dst *uint16
	srcStep  int16
	dstStep  int16
	count    uint16
}

// tfmTransfer handles the four TFM addressing variants, selected by the
// low two bits of the opcode: 0=R+,R+ 1=R-,R- 2=R+,R0 3=R0,R+.
//
// The whole transfer runs to completion within a single Step: there is
// no resume state, so TFM does not suspend between bytes and pending
// interrupts are not polled until the instruction has finished.
func (c *CPU) tfmTransfer(variant uint8) {
	post := c.fetchByte()
	srcPtr := c.tfmRegisterPtr(post >> 4)
	dstPtr := c.tfmRegisterPtr(post & 0x0F)

	var srcStep, dstStep int16
	switch variant {
	case 0: // R+,R+
		srcStep, dstStep = 1, 1
	case 1: // R-,R-
		srcStep, dstStep = -1, -1
	case 2: // R+,R0
		srcStep, dstStep = 1, 0
	case 3: // R0,R+
		srcStep, dstStep = 0, 1
	}

	c.tfm = &tfmState{src: srcPtr, dst: dstPtr, srcStep: srcStep, dstStep: dstStep, count: c.reg.W()}
	for c.tfm != nil {
		c.tfmStep()
	}
}

// tfmStep performs one byte of the in-flight transfer, clearing c.tfm
// once the count reaches zero.
func (c *CPU) tfmStep() {
	t := c.tfm
	if t == nil {
		return
	}
	if t.count == 0 {
		c.tfm = nil
		return
	}
	v := c.readByte(*t.src)
	c.writeByte(*t.dst, v)
	*t.src = uint16(int32(*t.src) + int32(t.srcStep))
	*t.dst = uint16(int32(*t.dst) + int32(t.dstStep))
	t.count--
	c.reg.SetW(t.count)
	if t.count == 0 {
		c.tfm = nil
	}
}

func (c *CPU) tfmRegisterPtr(sel uint8) *uint16 {
	switch sel & 0x0F {
	case 0x0:
		return &c.reg.X
	case 0x1:
		return &c.reg.Y
	case 0x2:
		return &c.reg.U
	case 0x3:
		return &c.reg.S
	default:
		var scratch uint16
		return &scratch
	}
}

// sexw sign-extends W into D (0x14 in HD6309 native mode; HCF on MC6809).
func (c *CPU) sexw() {
	v := int16(c.reg.W())
	if v < 0 {
		c.reg.SetD(0xFFFF)
	} else {
		c.reg.SetD(0)
	}
}

// ldq loads the 32-bit Q register (D:W) with an immediate value; occupies
// the MC6809 HCF slot 0xCD.
func (c *CPU) ldq() {
	v := uint32(c.fetchWord())<<16 | uint32(c.fetchWord())
	c.reg.SetQ(v)
	c.setNZ32(v)
	c.reg.setCC(CCOverflow, false)
}

// stq stores Q to an extended address (page-2 0xCD).
func (c *CPU) stq() {
	addr := c.extendedEA()
	v := c.reg.Q()
	c.writeWord(addr, uint16(v>>16))
	c.writeWord(addr+2, uint16(v))
	c.setNZ32(v)
	c.reg.setCC(CCOverflow, false)
}

// divd divides D by an 8-bit divisor from the following byte, storing an
// 8-bit quotient in B and remainder in A.
func (c *CPU) divd() {
	divisor := int8(c.fetchByte())
	dividend := int16(c.reg.D())
	if divisor == 0 {
		c.reg.setCC(CCCarry, true)
		return
	}
	q := dividend / int16(divisor)
	r := dividend % int16(divisor)
	c.reg.SetB(uint8(q))
	c.reg.SetA(uint8(r))
	c.setNZ8(uint8(q))
	c.reg.setCC(CCOverflow, q > 127 || q < -128)
	c.reg.setCC(CCCarry, false)
}

// divq divides Q by a 16-bit divisor, storing a 16-bit quotient in W and
// remainder in D.
func (c *CPU) divq() {
	divisor := int16(c.fetchWord())
	dividend := int32(c.reg.Q())
	if divisor == 0 {
		c.reg.setCC(CCCarry, true)
		return
	}
	q := dividend / int32(divisor)
	r := dividend % int32(divisor)
	c.reg.SetW(uint16(q))
	c.reg.SetD(uint16(r))
	c.setNZ16(uint16(q))
	c.reg.setCC(CCOverflow, q > 32767 || q < -32768)
	c.reg.setCC(CCCarry, false)
}

// muld multiplies D by a 16-bit immediate, storing the 32-bit result in Q.
func (c *CPU) muld() {
	operand := c.fetchWord()
	product := uint32(c.reg.D()) * uint32(operand)
	c.reg.SetQ(product)
	c.setNZ32(product)
}

// bitmd applies an immediate mask to MD.
func (c *CPU) bitmd() {
	mask := c.fetchByte()
	c.reg.MD &= mask
}

// ldmd loads MD directly from an immediate byte.
func (c *CPU) ldmd() {
	c.reg.MD = c.fetchByte()
}

// dispatchHD6309RegisterALU implements the register-to-register ALU
// family (ADDR/ADCR/SUBR/SBCR/ANDR/ORR/EORR/CMPR): a postbyte selects
// source and destination among the 16-bit general registers, and the
// result is written back to the destination except for CMPR.
func (c *CPU) dispatchHD6309RegisterALU(nibble uint8) {
	post := c.fetchByte()
	srcGet, _, _ := c.regSelector(post >> 4)
	dstGet, dstSet, _ := c.regSelector(post & 0x0F)
	src, dst := srcGet(), dstGet()
	switch nibble {
	case 0x0: // ADDR
		dstSet(c.add16(dst, src))
	case 0x1: // ADCR
		dstSet(c.add16(dst, src+boolToUint16(c.reg.ccFlag(CCCarry))))
	case 0x2: // SUBR
		dstSet(c.sub16(dst, src))
	case 0x3: // SBCR
		dstSet(c.sub16(dst, src+boolToUint16(c.reg.ccFlag(CCCarry))))
	case 0x4: // ANDR
		result := dst & src
		dstSet(result)
		c.setNZ16(result)
		c.reg.setCC(CCOverflow, false)
	case 0x5: // ORR
		result := dst | src
		dstSet(result)
		c.setNZ16(result)
		c.reg.setCC(CCOverflow, false)
	case 0x6: // EORR
		result := dst ^ src
		dstSet(result)
		c.setNZ16(result)
		c.reg.setCC(CCOverflow, false)
	case 0x7: // CMPR
		c.sub16(dst, src)
	}
}

func boolToUint16(v bool) uint16 {
	if v {
		return 1
	}
	return 0
}

// dispatchHD6309BitOp implements the CC/A/B bit-manipulation family
// (BAND/BIAND/BOR/BIOR/BEOR/BIEOR/LDBT/STBT): the postbyte names a
// register (CC/A/B), its bit index and the memory-side bit index, and a
// following direct-page offset supplies the memory byte's address.
func (c *CPU) dispatchHD6309BitOp(nibble uint8) {
	post := c.fetchByte()
	addr := c.directEA()
	memBit := post & 0x07
	regBit := (post >> 3) & 0x07
	regSel := (post >> 6) & 0x03

	regGet, regSet := c.bitRegister(regSel)
	mem := c.readByte(addr)
	memVal := (mem >> memBit) & 1
	regVal := (regGet() >> regBit) & 1

	switch nibble {
	case 0x0: // BAND
		regSet(setBit(regGet(), regBit, (regVal&memVal) != 0))
	case 0x1: // BIAND
		regSet(setBit(regGet(), regBit, (regVal&(memVal^1)) != 0))
	case 0x2: // BOR
		regSet(setBit(regGet(), regBit, (regVal|memVal) != 0))
	case 0x3: // BIOR
		regSet(setBit(regGet(), regBit, (regVal|(memVal^1)) != 0))
	case 0x4: // BEOR
		regSet(setBit(regGet(), regBit, (regVal^memVal) != 0))
	case 0x5: // BIEOR
		regSet(setBit(regGet(), regBit, (regVal^(memVal^1)) != 0))
	case 0x6: // LDBT: copy the memory bit into the register bit
		regSet(setBit(regGet(), regBit, memVal != 0))
	case 0x7: // STBT: copy the register bit into memory
		c.writeByte(addr, setBit(mem, memBit, regVal != 0))
	}
}

func setBit(v uint8, bit uint8, on bool) uint8 {
	if on {
		return v | (1 << bit)
	}
	return v &^ (1 << bit)
}

func (c *CPU) bitRegister(sel uint8) (func() uint8, func(uint8)) {
	switch sel & 0x03 {
	case 0:
		return func() uint8 { return c.reg.CC }, func(v uint8) { c.reg.CC = v }
	case 1:
		return c.reg.A, c.reg.SetA
	default:
		return c.reg.B, c.reg.SetB
	}
}
