package aica

import (
	"io"

	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/hardware/mmio"
)

// SH4-side region bases (original_source/aica/aica.h).
const (
	baseChannels0 = 0x00700000
	baseChannels1 = 0x00701000
	baseControl   = 0x00702000
)

// Module wraps AICA as a scheduler.Module, owning the three MMIO regions
// shared between the SH4 bus and the ARM's own narrow memory map
// (spec.md §4.H).
type Module struct {
	*AICA
	regions *mmio.Registry
}

// NewModule builds the AICA core over soundRAM and installs its three
// regions on bus. raiser receives the timer-wrap event; it may be nil in
// tests that don't care about interrupts.
func NewModule(bus *membus.Bus, soundRAM []byte, raiser EventRaiser) *Module {
	ch0 := newChannelRegion("AICA0", baseChannels0)
	ch1 := newChannelRegion("AICA1", baseChannels1)

	// The control region's read/write hooks close over the *AICA value
	// itself, so it is built in two steps: the bare struct first, then its
	// region, then the ARM core wired to all three.
	a := &AICA{raiser: raiser, reset: resetHeld}
	control := a.newControlRegion(baseControl)
	a.wireCore(soundRAM, [3]*mmio.Region{ch0, ch1, control})

	if bus != nil {
		_ = bus.RegisterMMIO(ch0.Base(), ch0)
		_ = bus.RegisterMMIO(ch1.Base(), ch1)
		_ = bus.RegisterMMIO(control.Base(), control)
	}

	return &Module{AICA: a, regions: mmio.NewRegistry(ch0, ch1, control)}
}

// Name implements scheduler.Module.
func (m *Module) Name() string { return "AICA" }

// Init implements scheduler.Initializer.
func (m *Module) Init() error {
	m.Reset()
	return nil
}

// Reset implements scheduler.Resetter.
func (m *Module) Reset() {
	m.AICA.Reset()
	m.regions.Reset()
}

// RunSlice implements scheduler.Runner.
func (m *Module) RunSlice(ns int64) int64 { return m.AICA.RunSlice(ns) }

// Save implements scheduler.Saver: register banks followed by AICA's own
// control-register state and the ARM core.
func (m *Module) Save(w io.Writer) error {
	if err := m.regions.Save(w); err != nil {
		return err
	}
	if err := m.AICA.saveState(w); err != nil {
		return err
	}
	return m.AICA.cpu.Save(w)
}

// Load implements scheduler.Loader.
func (m *Module) Load(r io.Reader) error {
	if err := m.regions.Load(r); err != nil {
		return err
	}
	if err := m.AICA.loadState(r); err != nil {
		return err
	}
	return m.AICA.cpu.Load(r)
}
