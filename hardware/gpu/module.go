package gpu

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/hardware/mmio"
)

// Module wraps GPU as a scheduler.Module, owning the PVR2 register bank
// (spec.md §4.I). Unlike AICA's ARM core, the GPU has nothing to advance on
// a clock tick — it does all its work synchronously inside the
// RENDER_START write hook — so Module implements Initializer/Resetter/
// Saver/Loader but not Runner.
type Module struct {
	*GPU
	region *mmio.Region
}

// NewModule builds a GPU core and installs its register bank on bus.
// raiser receives PVR_RENDER_DONE/TA_ERROR/PVR_PRIM_ALLOC_FAIL event
// numbers; it may be nil in tests that don't care about interrupts.
func NewModule(bus *membus.Bus, raiser EventRaiser, renderDone, taError, primAllocFail int) *Module {
	g := New(bus, raiser, renderDone, taError, primAllocFail)
	region := g.newPVR2Region(basePVR2)
	if bus != nil {
		_ = bus.RegisterMMIO(region.Base(), region)
	}
	return &Module{GPU: g, region: region}
}

// Name implements scheduler.Module.
func (m *Module) Name() string { return "GPU" }

// Init implements scheduler.Initializer.
func (m *Module) Init() error {
	m.Reset()
	return nil
}

// Reset implements scheduler.Resetter. The register bank resets to zero (no
// port declares a non-zero default) and any in-progress scene is dropped.
func (m *Module) Reset() {
	m.region.Reset()
	m.regs = Registers{}
	m.dispMode, m.dispAddr1, m.dispAddr2, m.dispTotal = 0, 0, 0, 0
	m.renderAddr1, m.renderAddr2, m.dispSyncTime = 0, 0, 0
	m.dispHPosIRQ, m.dispVPosIRQ, m.taInit, m.yuvAddr, m.yuvCfg = 0, 0, 0, 0, 0
	m.scene = nil
}

// Save implements scheduler.Saver: the register bank followed by every
// register field this package stores outside the bank's scratch buffer.
// The last parsed Scene is not saved — it is a derived, VRAM-sourced view
// and is reconstructed by re-triggering RENDER_START after Load.
func (m *Module) Save(w io.Writer) error {
	if err := mmio.NewRegistry(m.region).Save(w); err != nil {
		return err
	}
	fields := []uint32{
		m.regs.TileBase, m.regs.PolyBase, m.regs.HClip, m.regs.VClip, m.regs.FarClip,
		m.regs.Shadow, m.regs.ObjConfig, m.regs.ISPConfig,
		m.dispMode, m.dispAddr1, m.dispAddr2, m.dispTotal,
		m.renderAddr1, m.renderAddr2, m.dispSyncTime,
		m.dispHPosIRQ, m.dispVPosIRQ, m.taInit, m.yuvAddr, m.yuvCfg,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return errors.Errorf("gpu: save: %v", err)
		}
	}
	return nil
}

// Load implements scheduler.Loader.
func (m *Module) Load(r io.Reader) error {
	if err := mmio.NewRegistry(m.region).Load(r); err != nil {
		return err
	}
	fields := []*uint32{
		&m.regs.TileBase, &m.regs.PolyBase, &m.regs.HClip, &m.regs.VClip, &m.regs.FarClip,
		&m.regs.Shadow, &m.regs.ObjConfig, &m.regs.ISPConfig,
		&m.dispMode, &m.dispAddr1, &m.dispAddr2, &m.dispTotal,
		&m.renderAddr1, &m.renderAddr2, &m.dispSyncTime,
		&m.dispHPosIRQ, &m.dispVPosIRQ, &m.taInit, &m.yuvAddr, &m.yuvCfg,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return errors.Errorf("gpu: load: %v", err)
		}
	}
	m.scene = nil
	return nil
}
