package gpu

import "github.com/katanacore/machine/hardware/membus"

// basePVR2 is the PVR2 register bank's bus address (spec.md §6
// "PVR2 (0x005F8000)").
const basePVR2 = 0x005F8000

// GPU owns the PVR2 register bank and the scene most recently produced by
// a write to RENDER_START. The renderDone/taError/primAllocFail fields are
// asic event numbers supplied by the caller at construction time, so this
// package never imports asic directly.
type GPU struct {
	bus    membus.CPUBus
	raiser EventRaiser

	renderDone    int
	taError       int
	primAllocFail int

	regs Registers

	// Display-list and output-timing registers this package stores but does
	// not otherwise interpret; an external video front-end reads them
	// directly off the region (spec.md §6 PVR2 sampling table).
	dispMode     uint32
	dispAddr1    uint32
	dispAddr2    uint32
	dispTotal    uint32
	renderAddr1  uint32
	renderAddr2  uint32
	dispSyncTime uint32
	dispHPosIRQ  uint32
	dispVPosIRQ  uint32
	taInit       uint32
	yuvAddr      uint32
	yuvCfg       uint32

	scene *Scene
}

// New builds a GPU bound to bus, raising renderDone/taError/primAllocFail
// (asic event numbers) as scene parsing calls for them. raiser may be nil
// in tests that don't care about interrupts.
func New(bus membus.CPUBus, raiser EventRaiser, renderDone, taError, primAllocFail int) *GPU {
	return &GPU{
		bus:           bus,
		raiser:        raiser,
		renderDone:    renderDone,
		taError:       taError,
		primAllocFail: primAllocFail,
	}
}

// Scene returns the most recently parsed scene, or nil if RENDER_START has
// never been written.
func (g *GPU) Scene() *Scene { return g.scene }

// triggerRender parses a fresh scene off the current register snapshot and
// raises PVR_RENDER_DONE on success (spec.md §4.I "On a write to
// RENDER_START"). A bus error reading the display list is not a guest-level
// TA/scene-overflow condition — it propagates as a hard error, since it
// means the configured VRAM addresses don't even exist on the bus.
func (g *GPU) triggerRender() error {
	scene, err := Parse(g.bus, g.regs, g.raiser, g.taError, g.primAllocFail)
	if err != nil {
		return err
	}
	g.scene = scene
	if g.raiser != nil {
		g.raiser.Raise(g.renderDone)
	}
	return nil
}
