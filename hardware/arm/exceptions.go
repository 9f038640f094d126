package arm

// Exception vector addresses, fixed by the ARM7TDMI architecture.
const (
	vectorReset           = 0x00000000
	vectorUndefined       = 0x00000004
	vectorSoftware        = 0x00000008
	vectorPrefetchAbort   = 0x0000000C
	vectorDataAbort       = 0x00000010
	vectorIRQ             = 0x00000018
	vectorFIQ             = 0x0000001C
)

// raiseException runs the common exception-entry sequence (spec.md §4.F
// "Exception entry"): capture CPSR, switch mode, stash the captured CPSR
// into the new mode's SPSR, set r14 = r15+4 (old-PC + the architectural
// adjustment callers already applied), disable IRQ (and FIQ for the FIQ
// vector), jump to the vector.
func (c *CPU) raiseException(mode Mode, vector uint32, disableFIQ bool) {
	saved := c.CPSR
	returnPC := c.R[15]

	c.SwitchMode(mode)
	c.CPSR = (c.CPSR &^ modeMask) | uint32(mode)
	c.SetSPSR(saved)

	c.R[14] = returnPC + 4
	c.CPSR |= FlagI
	if disableFIQ {
		c.CPSR |= FlagF
	}
	c.CPSR &^= FlagT

	c.syncFlagsFromCPSR()
	c.R[15] = vector
}

func (c *CPU) raiseUndefined() { c.raiseException(ModeUndefined, vectorUndefined, false) }
func (c *CPU) raiseSoftware()  { c.raiseException(ModeSupervisor, vectorSoftware, false) }
func (c *CPU) raisePrefetchAbort() {
	c.raiseException(ModeAbort, vectorPrefetchAbort, false)
}
func (c *CPU) raiseDataAbort() { c.raiseException(ModeAbort, vectorDataAbort, false) }
func (c *CPU) raiseIRQ()       { c.raiseException(ModeIRQ, vectorIRQ, false) }
func (c *CPU) raiseFIQ()       { c.raiseException(ModeFIQ, vectorFIQ, true) }

// SetIRQ and SetFIQ set or clear the two external interrupt request lines;
// execute_instruction samples them at the top of every instruction.
func (c *CPU) SetIRQ(asserted bool) { c.irqLine = asserted }
func (c *CPU) SetFIQ(asserted bool) { c.fiqLine = asserted }

// pendingInterrupt checks the two external lines against the CPSR disable
// bits and returns the exception to raise, if any (spec.md §4.F step 1).
func (c *CPU) pendingInterrupt() (raise func(), ok bool) {
	if c.fiqLine && c.CPSR&FlagF == 0 {
		return c.raiseFIQ, true
	}
	if c.irqLine && c.CPSR&FlagI == 0 {
		return c.raiseIRQ, true
	}
	return nil, false
}
