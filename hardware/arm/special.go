package arm

// execBX implements branch-and-exchange: jump to Rm with its low two bits
// cleared (this core is ARM-mode only, so the Thumb-mode bit 0 is simply
// discarded rather than switching instruction sets).
func (c *CPU) execBX(instr uint32) error {
	rm := instr & 0xF
	c.R[15] = c.reg(rm) &^ 0x3
	return nil
}

// execMultiply implements MUL/MLA: Rd = Rm*Rs (+ Rn if accumulate). Rd and
// Rm must not be r15; that restriction is architectural and assumed held
// by well-formed guest code, matching spec.md's scope (no UNDEFINED
// instruction synthesis for malformed operand encodings).
func (c *CPU) execMultiply(instr uint32, accumulate bool) error {
	s := instr&0x00100000 != 0
	rd := (instr >> 16) & 0xF
	rn := (instr >> 12) & 0xF
	rs := (instr >> 8) & 0xF
	rm := instr & 0xF

	result := c.R[rm] * c.R[rs]
	if accumulate {
		result += c.R[rn]
	}
	c.R[rd] = result

	if s {
		c.n = result&0x80000000 != 0
		c.z = result == 0
		c.syncCPSRFromFlags()
	}
	return nil
}

// execSWP implements SWP/SWPB: atomic (within this single-threaded core,
// trivially so) load-then-store exchange with memory.
func (c *CPU) execSWP(instr uint32) error {
	byteWidth := instr&0x00400000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF
	rm := instr & 0xF

	addr := c.R[rn]
	if byteWidth {
		old := c.Mem.Read8(addr)
		c.Mem.Write8(addr, uint8(c.R[rm]))
		c.R[rd] = uint32(old)
	} else {
		old := c.Mem.Read32(addr)
		c.Mem.Write32(addr, c.R[rm])
		c.R[rd] = old
	}
	return nil
}

// execMRS implements MRS Rd, {CPSR|SPSR}.
func (c *CPU) execMRS(instr uint32, spsr bool) error {
	rd := (instr >> 12) & 0xF
	if spsr {
		c.R[rd] = c.SPSR()
	} else {
		c.R[rd] = c.CPSR
	}
	return nil
}

// psrFieldMask expands the 4-bit field-select into the byte mask it
// covers: bit16=control(0-7), bit17=extension(8-15), bit18=status(16-23),
// bit19=flags(24-31).
func psrFieldMask(bits uint32) uint32 {
	var mask uint32
	if bits&0x1 != 0 {
		mask |= 0x000000FF
	}
	if bits&0x2 != 0 {
		mask |= 0x0000FF00
	}
	if bits&0x4 != 0 {
		mask |= 0x00FF0000
	}
	if bits&0x8 != 0 {
		mask |= 0xFF000000
	}
	return mask
}

func (c *CPU) writePSR(spsr bool, fieldSelect uint32, value uint32) {
	mask := psrFieldMask(fieldSelect)
	if spsr {
		c.SetSPSR((c.SPSR() &^ mask) | (value & mask))
		return
	}
	old := c.CPSR
	updated := (old &^ mask) | (value & mask)
	if mask&0xFF != 0 && Mode(updated&modeMask) != Mode(old&modeMask) {
		target := Mode(updated & modeMask)
		c.SwitchMode(target)
	}
	c.CPSR = updated
	c.syncFlagsFromCPSR()
}

// execMSRRegister implements MSR {CPSR|SPSR}_<fields>, Rm.
func (c *CPU) execMSRRegister(instr uint32, spsr bool) error {
	fieldSelect := (instr >> 16) & 0xF
	rm := instr & 0xF
	c.writePSR(spsr, fieldSelect, c.R[rm])
	return nil
}

// execMSRImmediate implements MSR {CPSR|SPSR}_<fields>, #imm.
func (c *CPU) execMSRImmediate(instr uint32, spsr bool) error {
	fieldSelect := (instr >> 16) & 0xF
	imm8 := instr & 0xFF
	rotate := ((instr >> 8) & 0xF) * 2
	value, _ := shiftWithCarry(shiftROR, imm8, rotate, c.c)
	if rotate == 0 {
		value = imm8
	}
	c.writePSR(spsr, fieldSelect, value)
	return nil
}
