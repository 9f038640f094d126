package machine

import (
	"io"
	"time"

	"github.com/katanacore/machine/config"
	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/aica"
	"github.com/katanacore/machine/hardware/asic"
	"github.com/katanacore/machine/hardware/gpu"
	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/hardware/scheduler"
	"github.com/katanacore/machine/hardware/trap"
	"github.com/katanacore/machine/logger"
)

// Physical address map (spec.md §6 register-bank table plus the RAM/ROM
// layout a real Dreamcast exposes; hardware/asic, hardware/gpu, and
// hardware/aica already hardcode their own bank bases at 0x005F6000/
// 0x005F7000/0x005F8000/0x00700000-0x00702000, so only the RAM/ROM side is
// decided here).
const (
	bootROMBase = 0x00000000
	bootROMSize = 2 * 1024 * 1024

	mainRAMBase = 0x0C000000
	mainRAMSize = 16 * 1024 * 1024
	// mainRAMMirrors are main RAM's three additional aliases, filling the
	// 0x0C000000-0x0FFFFFFF window (spec.md §3 "create region, then for
	// each mirror install the same slice into the additional page ranges").
	mainRAMMirror1 = 0x0D000000
	mainRAMMirror2 = 0x0E000000
	mainRAMMirror3 = 0x0F000000

	soundRAMBase = 0x00800000
	soundRAMSize = 2 * 1024 * 1024

	vramBank1Base = gpu.VRAMBase + 0x00400000
)

// Machine is the assembled console: every hardware/* module wired onto one
// membus.Bus and driven by one hardware/scheduler.Scheduler.
type Machine struct {
	cfg *config.Config
	bus *membus.Bus

	sched *scheduler.Scheduler

	video *videoTiming
	mem   *memoryModule
	asic  *asic.Module
	gpu   *gpu.Module
	aica  *aica.Module
	trap  *trap.Module
}

// New assembles a Machine from cfg. fs is the host filesystem collaborator
// for DCLOAD syscalls (spec.md §4.J); it may be nil if the loaded image
// never exercises DCLOAD.
func New(cfg *config.Config, fs trap.HostFS) (*Machine, error) {
	if cfg == nil {
		cfg = config.New()
	}

	bus := membus.New()
	m := &Machine{cfg: cfg, bus: bus, sched: scheduler.New(cfg)}

	if err := m.layOutMemory(); err != nil {
		return nil, err
	}

	m.video = newVideoTiming(nil) // rewired to m.asic below
	m.mem = newMemoryModule(bus)
	m.asic = asic.NewModule(bus, nil, m.Reset)
	m.video.raiser = m.asic.ASIC
	m.gpu = gpu.NewModule(bus, m.asic.ASIC, asic.EventPVRRenderDone, asic.EventTAError, asic.EventPVRPrimAllocFail)

	soundRAM, ok := bus.Contiguous(soundRAMBase, soundRAMSize)
	if !ok {
		return nil, errors.Errorf("machine: sound RAM region missing")
	}
	m.aica = aica.NewModule(bus, soundRAM, m.asic.ASIC)
	m.trap = trap.NewModule(bus, fs, m.sched, cfg.DCLOADAllowUnsafe)

	// Registration order follows spec.md §4.D: event queue, memory, then
	// the modules that move guest-visible state (ASIC before GPU/AICA,
	// since GPU/AICA interrupts route through it).
	for _, reg := range []scheduler.Module{m.video, m.mem, m.asic, m.gpu, m.aica, m.trap} {
		if err := m.sched.Register(reg); err != nil {
			return nil, err
		}
	}

	if err := m.sched.Init(); err != nil {
		return nil, err
	}
	logger.Log("machine", "assembled")
	return m, nil
}

func (m *Machine) layOutMemory() error {
	bootROM := &membus.Region{Name: "BOOTROM", Base: bootROMBase, Data: make([]byte, bootROMSize), ReadOnly: true}
	if err := m.bus.RegisterRegion(bootROM); err != nil {
		return err
	}

	mainRAM := &membus.Region{Name: "MAINRAM", Base: mainRAMBase, Data: make([]byte, mainRAMSize)}
	if err := m.bus.RegisterRegion(mainRAM); err != nil {
		return err
	}
	for _, base := range []uint32{mainRAMMirror1, mainRAMMirror2, mainRAMMirror3} {
		if err := m.bus.Mirror(mainRAM, base); err != nil {
			return err
		}
	}

	soundRAM := &membus.Region{Name: "SOUNDRAM", Base: soundRAMBase, Data: make([]byte, soundRAMSize)}
	if err := m.bus.RegisterRegion(soundRAM); err != nil {
		return err
	}

	// VRAM is reachable two ways: the bit-interleaved 64-bit path
	// (membus.Interleaved), and as two ordinary
	// linear Regions sharing the same backing slices, per interleave.go's
	// own doc comment ("VRAM is also reachable through the ordinary Bus as
	// two contiguous Regions"). Only the linear view is needed here: the
	// GPU module reads VRAM via bus.Read32 at gpu.VRAMBase, never through
	// Interleaved directly.
	vram := membus.NewInterleaved()
	vram0 := &membus.Region{Name: "VRAM0", Base: gpu.VRAMBase, Data: vram.Bank(0)}
	if err := m.bus.RegisterRegion(vram0); err != nil {
		return err
	}
	vram1 := &membus.Region{Name: "VRAM1", Base: vramBank1Base, Data: vram.Bank(1)}
	return m.bus.RegisterRegion(vram1)
}

// Bus returns the machine's physical address space, for katanactl
// inspection tooling.
func (m *Machine) Bus() *membus.Bus { return m.bus }

// ASIC, GPU, AICA, and Trap expose the assembled modules for save-state
// inspection and CLI tooling that needs to reach past the scheduler.
func (m *Machine) ASIC() *asic.Module { return m.asic }
func (m *Machine) GPU() *gpu.Module   { return m.gpu }
func (m *Machine) AICA() *aica.Module { return m.aica }
func (m *Machine) Trap() *trap.Module { return m.trap }

// LoadBIOS copies data into the boot ROM region. data longer than
// bootROMSize is an error; shorter data is zero-padded at the tail.
func (m *Machine) LoadBIOS(data []byte) error {
	if len(data) > bootROMSize {
		return errors.Errorf("machine: BIOS image too large: %d bytes (max %d)", len(data), bootROMSize)
	}
	rom, ok := m.bus.Contiguous(bootROMBase, bootROMSize)
	if !ok {
		return errors.Errorf("machine: boot ROM region missing")
	}
	for i := range rom {
		rom[i] = 0
	}
	copy(rom, data)
	return nil
}

// LoadImage copies data into main RAM starting at loadAddr (spec.md §1
// "a flat program image is loaded directly into RAM" — disc/track parsing
// stays out of scope; the caller supplies whatever flat binary it already
// extracted).
func (m *Machine) LoadImage(data []byte, loadAddr uint32) error {
	dst, ok := m.bus.Contiguous(loadAddr, uint32(len(data)))
	if !ok {
		return errors.Errorf("machine: image of %d bytes at %08x does not fit in a single region", len(data), loadAddr)
	}
	copy(dst, data)
	return nil
}

// Reset restores every module to its power-on state (spec.md §8 "Reset
// idempotence"). Also installed as the ASIC's SYSRESET soft-reset hook.
func (m *Machine) Reset() {
	m.sched.Reset()
	logger.Log("machine", "reset")
}

// Run loops the scheduler's run-slice step until Stop is called.
func (m *Machine) Run() error { return m.sched.Run() }

// RunFor runs until secs.nanos of virtual time has elapsed from now.
func (m *Machine) RunFor(secs, nanos int64) error { return m.sched.RunFor(secs, nanos) }

// Stop requests that Run/RunFor exit after the current slice completes.
func (m *Machine) Stop() { m.sched.Stop() }

// Elapsed returns accumulated virtual time since the last Reset.
func (m *Machine) Elapsed() time.Duration { return m.sched.Elapsed() }

// IsRunning reports whether Run/RunFor is currently looping.
func (m *Machine) IsRunning() bool { return m.sched.IsRunning() }

// SaveState and LoadState delegate to the scheduler's module-by-module
// save-state framing (spec.md §6 "Save-state layout").
func (m *Machine) SaveState(w io.Writer) error { return m.sched.SaveState(w) }
func (m *Machine) LoadState(r io.Reader) error { return m.sched.LoadState(r) }
