package arm

import "github.com/katanacore/machine/errors"

// Step executes exactly one instruction slot (spec.md §4.F "Fetch/decode
// loop"). It returns an error only for genuinely unimplemented encodings;
// undefined/software/abort conditions are delivered as ARM exceptions, not
// Go errors.
func (c *CPU) Step() error {
	if raise, ok := c.pendingInterrupt(); ok {
		raise()
		return nil
	}

	pc := c.R[15]
	instr := c.Mem.Read32(pc)
	c.R[15] = pc + 4

	cond := instr >> 28
	if cond == 0xF {
		c.raiseUndefined()
		return nil
	}
	if !c.conditionPasses(cond) {
		return nil
	}

	c.instrCount++

	switch (instr >> 26) & 0x3 {
	case 0b00:
		return c.execGroup00(instr)
	case 0b01:
		return c.execLoadStore(instr)
	case 0b10:
		return c.execBranchOrMultiple(instr)
	default:
		return c.execCoprocessorOrSWI(instr)
	}
}

// pcRead returns the value reads of r15 see: instruction address + 8, the
// architectural pipeline offset (spec.md §4.F — "the architectural
// 'pc+8' offset is baked into any code that references pc"). r15 has
// already been advanced by 4 in Step, so one more +4 gets there.
func (c *CPU) pcRead() uint32 { return c.R[15] + 4 }

func (c *CPU) reg(n uint32) uint32 {
	if n == 15 {
		return c.pcRead()
	}
	return c.R[n]
}

func (c *CPU) setReg(n uint32, v uint32) {
	c.R[n] = v
}

// execGroup00 handles bits 27:26 == 00: data-processing/special, the
// multiply/swap/BX/PSR-transfer family, and half-word transfer (spec.md
// §4.F step 6, case "00").
func (c *CPU) execGroup00(instr uint32) error {
	switch {
	case instr&0x0FFFFFF0 == 0x012FFF10:
		return c.execBX(instr)
	case instr&0x0FE000F0 == 0x00000090:
		return c.execMultiply(instr, false)
	case instr&0x0FE000F0 == 0x00200090:
		return c.execMultiply(instr, true)
	case instr&0x0FB00FF0 == 0x01000090:
		return c.execSWP(instr)
	case instr&0x0FBF0FFF == 0x010F0000:
		return c.execMRS(instr, false)
	case instr&0x0FBF0FFF == 0x014F0000:
		return c.execMRS(instr, true)
	case instr&0x0FB0FFF0 == 0x0120F000:
		return c.execMSRRegister(instr, false)
	case instr&0x0FB0FFF0 == 0x0160F000:
		return c.execMSRRegister(instr, true)
	case instr&0x0FB0F000 == 0x0320F000:
		return c.execMSRImmediate(instr, false)
	case instr&0x0FB0F000 == 0x0360F000:
		return c.execMSRImmediate(instr, true)
	case instr&0x0F8000F0 == 0x00800090:
		// Long multiply (UMULL/UMLAL/SMULL/SMLAL) — out of scope, like the
		// half-word transfers below.
		return errors.Errorf(errors.Unimplemented, instr, c.R[15]-4, "long multiply")
	case instr&0x0E000090 == 0x00000090 && instr&0x80 != 0 && instr&0x10 != 0:
		// Half-word and signed byte load/store — out of scope (spec.md
		// §4.F "stubbed as UNIMP in scope").
		return errors.Errorf(errors.Unimplemented, instr, c.R[15]-4, "half-word transfer")
	default:
		return c.execDataProcessing(instr)
	}
}

func (c *CPU) execCoprocessorOrSWI(instr uint32) error {
	if instr&0x0F000000 == 0x0F000000 {
		c.raiseSoftware()
		return nil
	}
	return errors.Errorf(errors.Unimplemented, instr, c.R[15]-4, "coprocessor instruction")
}
