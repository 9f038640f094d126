package arm

// operand2 resolves the second ALU operand and its shifter carry-out for
// a data-processing instruction (spec.md §4.F "Barrel shifter").
func (c *CPU) operand2(instr uint32) (value uint32, carryOut bool) {
	if instr&0x02000000 != 0 {
		imm8 := instr & 0xFF
		rotate := ((instr >> 8) & 0xF) * 2
		if rotate == 0 {
			return imm8, c.c
		}
		return shiftWithCarry(shiftROR, imm8, rotate, c.c)
	}

	rm := instr & 0xF
	kind := shiftType((instr >> 5) & 0x3)

	if instr&0x10 == 0 {
		amount := (instr >> 7) & 0x1F
		return shiftWithCarry(kind, c.reg(rm), amount, c.c)
	}

	rs := (instr >> 8) & 0xF
	amount := c.R[rs] & 0xFF
	return shiftByRegister(kind, c.reg(rm), amount, c.c)
}

// addFlags computes a+b+carryIn and the resulting carry/overflow,
// expressed so SUB/RSB/SBC/RSC/CMP/CMN can all route through it by
// inverting an operand and choosing carryIn (spec.md §4.F data-processing
// opcode list).
func addFlags(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	sum := uint64(a) + uint64(b)
	if carryIn {
		sum++
	}
	result = uint32(sum)
	carry = sum > 0xFFFFFFFF
	overflow = (^(a^b))&(a^result)&0x80000000 != 0
	return result, carry, overflow
}

// execDataProcessing implements AND/EOR/SUB/RSB/ADD/ADC/SBC/RSC/
// TST/TEQ/CMP/CMN/ORR/MOV/BIC/MVN (spec.md §4.F step 6 "00").
func (c *CPU) execDataProcessing(instr uint32) error {
	opcode := (instr >> 21) & 0xF
	s := instr&0x00100000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF

	op2, shifterCarry := c.operand2(instr)
	a := c.reg(rn)

	var result uint32
	var carry, overflow bool
	var writesResult = true
	arithmetic := false

	switch opcode {
	case 0x0: // AND
		result = a & op2
	case 0x1: // EOR
		result = a ^ op2
	case 0x2: // SUB
		result, carry, overflow = addFlags(a, ^op2, true)
		arithmetic = true
	case 0x3: // RSB
		result, carry, overflow = addFlags(op2, ^a, true)
		arithmetic = true
	case 0x4: // ADD
		result, carry, overflow = addFlags(a, op2, false)
		arithmetic = true
	case 0x5: // ADC
		result, carry, overflow = addFlags(a, op2, c.c)
		arithmetic = true
	case 0x6: // SBC
		result, carry, overflow = addFlags(a, ^op2, c.c)
		arithmetic = true
	case 0x7: // RSC
		result, carry, overflow = addFlags(op2, ^a, c.c)
		arithmetic = true
	case 0x8: // TST
		result = a & op2
		writesResult = false
	case 0x9: // TEQ
		result = a ^ op2
		writesResult = false
	case 0xA: // CMP
		result, carry, overflow = addFlags(a, ^op2, true)
		arithmetic = true
		writesResult = false
	case 0xB: // CMN
		result, carry, overflow = addFlags(a, op2, false)
		arithmetic = true
		writesResult = false
	case 0xC: // ORR
		result = a | op2
	case 0xD: // MOV
		result = op2
	case 0xE: // BIC
		result = a &^ op2
	case 0xF: // MVN
		result = ^op2
	}

	if writesResult {
		c.setReg(rd, result)
	}

	if s {
		if rd == 15 && writesResult {
			// Writing CPSR from SPSR restores the full mode and flags in
			// one step (spec.md §4.F exception-return idiom).
			c.CPSR = c.SPSR()
			c.syncFlagsFromCPSR()
			return nil
		}
		c.n = result&0x80000000 != 0
		c.z = result == 0
		if arithmetic {
			c.c = carry
			c.v = overflow
		} else {
			c.c = shifterCarry
		}
		c.syncCPSRFromFlags()
	}
	return nil
}
