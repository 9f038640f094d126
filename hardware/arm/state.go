package arm

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
)

// Save writes the full register file: the active bank, CPSR, every
// mode's private bank, the two r8-r12 spill banks, and the instruction
// counter. Breakpoints are not part of save state — they are a debugging
// aid the host re-installs after load.
func (c *CPU) Save(w io.Writer) error {
	fields := []interface{}{
		c.R, c.CPSR,
		c.fiq, c.irq, c.und, c.abt, c.svc, c.usr,
		c.fiqR, c.usrR,
		c.lastSPSR, c.instrCount,
		c.irqLine, c.fiqLine,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return errors.Errorf("arm: save: %v", err)
		}
	}
	return nil
}

// Load restores the state Save wrote, then re-derives the cached
// condition flags from the loaded CPSR (spec.md §3 invariant: flags stay
// consistent with CPSR at every suspension point).
func (c *CPU) Load(r io.Reader) error {
	// Banks are read field by field, in the order binary.Write emitted
	// them: binary.Read cannot set a struct's unexported fields.
	fields := []interface{}{&c.R, &c.CPSR}
	for _, b := range []*bank{&c.fiq, &c.irq, &c.und, &c.abt, &c.svc, &c.usr} {
		fields = append(fields, &b.r13, &b.r14, &b.spsr)
	}
	fields = append(fields,
		&c.fiqR, &c.usrR,
		&c.lastSPSR, &c.instrCount,
		&c.irqLine, &c.fiqLine,
	)
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return errors.Errorf("arm: load: %v", err)
		}
	}
	c.syncFlagsFromCPSR()
	return nil
}
