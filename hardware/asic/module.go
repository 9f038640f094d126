package asic

import (
	"io"

	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/hardware/mmio"
)

// Module wraps ASIC as a scheduler.Module, owning the two MMIO regions it
// exposes on the bus (spec.md §4.D/§4.E).
type Module struct {
	*ASIC
	regions *mmio.Registry
}

// NewModule builds the ASIC, its two MMIO regions, and installs them on
// bus. onReset is invoked when the guest writes the soft-reset magic to
// SYSRESET; it may be nil.
func NewModule(bus *membus.Bus, irq InterruptLine, onReset func()) *Module {
	a := New(bus, irq)
	asicRegion := a.NewASICRegion(onReset)
	extdmaRegion := a.NewEXTDMARegion()

	if bus != nil {
		_ = bus.RegisterMMIO(asicRegion.Base(), asicRegion)
		_ = bus.RegisterMMIO(extdmaRegion.Base(), extdmaRegion)
	}

	return &Module{ASIC: a, regions: mmio.NewRegistry(asicRegion, extdmaRegion)}
}

// Name implements scheduler.Module.
func (m *Module) Name() string { return "ASIC" }

// Init implements scheduler.Initializer.
func (m *Module) Init() error {
	m.Reset()
	return nil
}

// Reset implements scheduler.Resetter.
func (m *Module) Reset() {
	m.ASIC.Reset()
	m.regions.Reset()
}

// RunSlice implements scheduler.Runner.
func (m *Module) RunSlice(ns int64) int64 { return m.ASIC.RunSlice(ns) }

// Save implements scheduler.Saver: register banks followed by the G2 FIFO
// timer state and DMA channel registers.
func (m *Module) Save(w io.Writer) error {
	if err := m.regions.Save(w); err != nil {
		return err
	}
	return m.ASIC.saveState(w)
}

// Load implements scheduler.Loader.
func (m *Module) Load(r io.Reader) error {
	if err := m.regions.Load(r); err != nil {
		return err
	}
	return m.ASIC.loadState(r)
}
