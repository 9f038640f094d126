package asic

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
)

// DMABus is the subset of membus.Bus the DMA engines need: a contiguous
// byte window for a source or destination run. The ASIC never addresses
// the bus outside of whole transfers, so this is sufficient (spec.md §4.E
// "DMA engines" — "Both sides use standard bus primitives").
type DMABus interface {
	Contiguous(addr uint32, length uint32) ([]byte, bool)
}

// g2Timing holds the five countdown timers that phase the G2STATUS bits
// after a guest write (spec.md "G2 FIFO timing").
type g2Timing struct {
	bit5Off int64
	bit4On  int64
	bit4Off int64
	bit0On  int64
	bit0Off int64
}

// g2Channel is one of the four G2 DMA channels at EXTDMA 0x800+(ch*0x20).
type g2Channel struct {
	ext, sh4, size uint32
	dir, mod       uint32
	ctl1, ctl2     uint32
}

type ideChannel struct {
	sh4, size  uint32
	ctl1, ctl2 uint32
	enabled    bool
}

type pvrChannel struct {
	dest, cnt, ctl uint32
}

// ASIC is the south bridge: interrupt routing, G2 FIFO status timing, and
// the G2/IDE/PVR DMA engines (spec.md §4.E).
type ASIC struct {
	PIRQ [3]uint32
	IRQA [3]uint32
	IRQB [3]uint32
	IRQC [3]uint32

	clock int64
	g2    g2Timing

	g2ch [4]g2Channel
	ide  ideChannel
	pvr  pvrChannel

	bus DMABus
	irq InterruptLine
}

// New builds an ASIC wired to bus for DMA transfers and irq for line-level
// notification. irq may be nil.
func New(bus DMABus, irq InterruptLine) *ASIC {
	if irq == nil {
		irq = noopInterruptLine{}
	}
	return &ASIC{bus: bus, irq: irq}
}

// Reset clears every register and timer (spec.md §4.E).
func (a *ASIC) Reset() {
	a.PIRQ = [3]uint32{}
	a.IRQA = [3]uint32{}
	a.IRQB = [3]uint32{}
	a.IRQC = [3]uint32{}
	a.clock = 0
	a.g2 = g2Timing{}
	a.g2ch = [4]g2Channel{}
	a.ide = ideChannel{}
	a.pvr = pvrChannel{}
	a.lowerAll()
}

// Raise sets event's bit in its bank's PIRQ register, raises any IRQ line
// whose mask now intersects that bank, and recurses into the cascade bits
// for bank >= 1 / bank >= 2 (spec.md §4.E, pseudocode lines 145-150).
func (a *ASIC) Raise(event int) {
	bank := bankOf(event)
	bit := uint32(1) << bitOf(event)

	a.PIRQ[bank] |= bit

	if a.PIRQ[bank]&a.IRQA[bank] != 0 {
		a.irq.SetIRQ(Line13, true)
	}
	if a.PIRQ[bank]&a.IRQB[bank] != 0 {
		a.irq.SetIRQ(Line11, true)
	}
	if a.PIRQ[bank]&a.IRQC[bank] != 0 {
		a.irq.SetIRQ(Line9, true)
	}

	if bank >= 1 {
		a.Raise(EventCascade1)
	}
	if bank >= 2 {
		a.Raise(EventCascade2)
	}
}

// clearPIRQ0 handles a guest write to PIRQ0: mask off the two synthetic
// cascade bits before clearing (spec.md §6 "PIRQ0 writes AND with
// 0x3FFFFFFF then clear").
func (a *ASIC) clearPIRQ0(value uint32) {
	a.PIRQ[0] &^= value & 0x3FFFFFFF
	a.checkClearedEvents()
}

// clearPIRQ1 is a no-op: PIRQ1 is read-only from the guest's perspective
// (lxdream's mmio_region_ASIC_write, "Treat this as read-only for the
// moment"). Only Raise ever changes it.
func (a *ASIC) clearPIRQ1(value uint32) {}

// clearPIRQ2 handles a guest write to PIRQ2: clear the written bits, and
// if PIRQ2 is now fully empty, drop PIRQ0's CASCADE2 bit.
func (a *ASIC) clearPIRQ2(value uint32) {
	a.PIRQ[2] &^= value
	if a.PIRQ[2] == 0 {
		a.PIRQ[0] &^= 1 << bitOf(EventCascade2)
	}
	a.checkClearedEvents()
}

// checkClearedEvents rescans all three banks against all three IRQ masks
// and lowers any line whose pending-and-masked union is now empty. It
// never raises (spec.md §4.E line 155, property 7).
func (a *ASIC) checkClearedEvents() {
	a.lowerIfEmpty(Line13, a.IRQA)
	a.lowerIfEmpty(Line11, a.IRQB)
	a.lowerIfEmpty(Line9, a.IRQC)
}

func (a *ASIC) lowerIfEmpty(line int, mask [3]uint32) {
	for bank := 0; bank < 3; bank++ {
		if a.PIRQ[bank]&mask[bank] != 0 {
			return
		}
	}
	a.irq.SetIRQ(line, false)
}

func (a *ASIC) lowerAll() {
	a.irq.SetIRQ(Line13, false)
	a.irq.SetIRQ(Line11, false)
	a.irq.SetIRQ(Line9, false)
}

// G2Write phases the G2STATUS timers after a guest write through the G2
// bus. Callers are whatever sits behind the G2 bus (AICA, the modem/BBA
// slot) reporting that a write landed (spec.md "G2 FIFO timing").
func (a *ASIC) G2Write() {
	now := a.clock
	const ns60, ns120, ns160, ns420 = 60, 120, 160, 420

	a.g2.bit5Off = max64(a.g2.bit5Off, now) + ns60
	a.g2.bit4On = max64(a.g2.bit4On, now) + ns60
	a.g2.bit4Off = max64(a.g2.bit4Off, a.g2.bit4On) + ns160
	a.g2.bit0On = max64(a.g2.bit0On, now) + ns120
	a.g2.bit0Off = max64(a.g2.bit0Off, a.g2.bit0On) + ns420
}

// g2Status computes the current G2STATUS value from the timers against
// the present clock (spec.md "Reading the status register...").
func (a *ASIC) g2Status() uint32 {
	now := a.clock
	var v uint32
	if now < a.g2.bit5Off {
		v |= 1 << 5
	}
	if now >= a.g2.bit4On && now < a.g2.bit4Off {
		v |= 1 << 4
	}
	if now >= a.g2.bit0On && now < a.g2.bit0Off {
		v |= 1 << 0
	}
	return v
}

// RunSlice advances the ASIC's clock by ns. The G2 FIFO timers are
// compared against this clock on every status read; there is nothing else
// to do per slice, so the whole budget is always consumed (spec.md §4.D
// module contract).
func (a *ASIC) RunSlice(ns int64) int64 {
	a.clock += ns
	return ns
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// transfer runs one DMA copy between src (the SH4-side address) and dest
// (the device-side address): dir 0 is SH4->device (src copied into dest),
// dir 1 is device->SH4 (dest copied into src). Both sides use the same bus
// (spec.md §4.E "DMA engines").
func (a *ASIC) transfer(src, dest, length, dir uint32) error {
	const maxLength = 1<<29 - 1
	if length > maxLength {
		length = maxLength
	}
	if dir == 0 {
		buf, ok := a.bus.Contiguous(src, length)
		if !ok {
			return errors.Errorf("asic: dma source not contiguous at %08x", src)
		}
		out, ok := a.bus.Contiguous(dest, length)
		if !ok {
			return errors.Errorf("asic: dma dest not contiguous at %08x", dest)
		}
		copy(out, buf)
		return nil
	}
	buf, ok := a.bus.Contiguous(dest, length)
	if !ok {
		return errors.Errorf("asic: dma dest not contiguous at %08x", dest)
	}
	out, ok := a.bus.Contiguous(src, length)
	if !ok {
		return errors.Errorf("asic: dma source not contiguous at %08x", src)
	}
	copy(out, buf)
	return nil
}

// g2DMA runs channel ch's transfer when both CTL1 and CTL2 are written 1
// (spec.md §4.E, supplemented from lxdream's g2_dma_transfer).
func (a *ASIC) g2DMA(ch int) error {
	c := &a.g2ch[ch]
	if c.ctl1 != 1 || c.ctl2 != 1 {
		return nil
	}
	if err := a.transfer(c.sh4, c.ext, c.size, c.dir); err != nil {
		return err
	}
	c.ctl2 = 0
	a.Raise(EventG2DMA0 + ch)
	return nil
}

// ideDMA completes the single IDE DMA channel. The register set named in
// the source table (IDEDMASH4/SIZ/CTL1/CTL2) has one address register, the
// SH4 side; the disc/IDE device on the other side is out of scope (spec.md
// Non-goals), so this engine owns only the trigger/completion half.
func (a *ASIC) ideDMA() error {
	c := &a.ide
	if c.ctl1 != 1 || c.ctl2 != 1 {
		return nil
	}
	c.ctl1, c.ctl2 = 0, 0
	a.Raise(EventIDEDMA)
	return nil
}

// pvrDMA runs the PVR DMA channel. Unlike the G2 channels, the register
// set the source table names for this channel (PVRDMADEST/CNT/CTL) has no
// source-address register, so the transfer the guest observes is whatever
// fills the destination window through PVRDMADEST's own bus writes; this
// engine only owns the trigger/completion half: masking, destination
// auto-increment, and the completion event (spec.md §4.E, supplemented
// from lxdream's pvr_dma_transfer).
func (a *ASIC) pvrDMA() error {
	c := &a.pvr
	if c.ctl != 1 {
		return nil
	}
	dest := c.dest
	length := c.cnt
	if dest&0x01000000 != 0 {
		c.dest = (dest + length) & 0x03FFFFE0
		c.dest |= 0x10000000
	}
	c.ctl = 0
	c.cnt = 0
	a.Raise(EventPVRDMA)
	return nil
}

// saveState writes the register banks, G2 FIFO timers, and DMA channel
// state not already covered by the MMIO scratch buffers.
func (a *ASIC) saveState(w io.Writer) error {
	fields := []interface{}{
		a.PIRQ, a.IRQA, a.IRQB, a.IRQC, a.clock, a.g2,
		a.g2ch, a.ide, a.pvr,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return errors.Errorf("asic: save: %v", err)
		}
	}
	return nil
}

// loadState restores the state saveState wrote.
func (a *ASIC) loadState(r io.Reader) error {
	// Struct fields are read one by one, in the order binary.Write emitted
	// them: binary.Read cannot set a struct's unexported fields.
	fields := []interface{}{
		&a.PIRQ, &a.IRQA, &a.IRQB, &a.IRQC, &a.clock,
		&a.g2.bit5Off, &a.g2.bit4On, &a.g2.bit4Off, &a.g2.bit0On, &a.g2.bit0Off,
	}
	for i := range a.g2ch {
		ch := &a.g2ch[i]
		fields = append(fields, &ch.ext, &ch.sh4, &ch.size, &ch.dir, &ch.mod, &ch.ctl1, &ch.ctl2)
	}
	fields = append(fields,
		&a.ide.sh4, &a.ide.size, &a.ide.ctl1, &a.ide.ctl2, &a.ide.enabled,
		&a.pvr.dest, &a.pvr.cnt, &a.pvr.ctl,
	)
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return errors.Errorf("asic: load: %v", err)
		}
	}
	return nil
}
