package trap

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/membus"
)

// Module wraps the trap table, BIOS, and DCLOAD hooks as a scheduler.Module
// (spec.md §4.J). Like hardware/gpu, nothing here advances on a clock
// tick — hooks fire only when the SH4 interpreter recognises a sentinel —
// so Module implements Initializer/Resetter/Saver/Loader but not Runner.
type Module struct {
	bus    membus.CPUBus
	table  *Table
	dcload *DCLOAD
	bios   *BIOS
}

// NewModule builds a trap table with the BIOS and DCLOAD hooks wired,
// installed onto bus. fs is the host file-I/O collaborator DCLOAD's
// read/write/open/close/lseek calls go through; stopper receives the
// unsafe-exit and menu-abort signals. allowUnsafe mirrors
// config.DCLOADAllowUnsafe.
func NewModule(bus membus.CPUBus, fs HostFS, stopper Stopper, allowUnsafe bool) *Module {
	return &Module{
		bus:    bus,
		table:  NewTable(),
		dcload: NewDCLOAD(fs, stopper, allowUnsafe),
		bios:   NewBIOS(stopper),
	}
}

// Name implements scheduler.Module.
func (m *Module) Name() string { return "TRAP" }

// Init implements scheduler.Initializer: installs every hook's vector into
// guest memory (bios_install, dcload_install).
func (m *Module) Init() error {
	if err := m.bios.Install(m.table, m.bus); err != nil {
		return err
	}
	return m.dcload.Install(m.table, m.bus)
}

// Reset implements scheduler.Resetter: re-patches every live vector, since
// a memory reset may have wiped the sentinel words (spec.md §4.J "On
// reset, all live vectors are re-patched").
func (m *Module) Reset() {
	_ = m.table.RepatchVectors(m.bus)
	m.dcload.resetFDs()
}

// Invoke dispatches a recognised sentinel hit from the SH4 interpreter.
func (m *Module) Invoke(hookID uint8, regs Registers) {
	m.table.Invoke(hookID, m.bus, regs)
}

// SetAllowUnsafe updates the DCLOAD gate at runtime.
func (m *Module) SetAllowUnsafe(allow bool) { m.dcload.SetAllowUnsafe(allow) }

// Save implements scheduler.Saver: DCLOAD's fd table and unsafe gate, and
// the BIOS GD-ROM command queue. The trap table's vectors and handlers are
// not saved — Init/Reset re-establish them deterministically on load.
func (m *Module) Save(w io.Writer) error {
	for _, fd := range m.dcload.fds {
		if err := binary.Write(w, binary.LittleEndian, int32(fd)); err != nil {
			return errors.Errorf("trap: save: %v", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, m.dcload.allowUnsafe); err != nil {
		return errors.Errorf("trap: save: %v", err)
	}
	for _, cmd := range m.bios.queue {
		fields := []uint32{cmd.status, cmd.cmdCode, cmd.result[0], cmd.result[1], cmd.result[2], cmd.result[3]}
		for _, f := range fields {
			if err := binary.Write(w, binary.LittleEndian, f); err != nil {
				return errors.Errorf("trap: save: %v", err)
			}
		}
	}
	return nil
}

// Load implements scheduler.Loader.
func (m *Module) Load(r io.Reader) error {
	for i := range m.dcload.fds {
		var fd int32
		if err := binary.Read(r, binary.LittleEndian, &fd); err != nil {
			return errors.Errorf("trap: load: %v", err)
		}
		m.dcload.fds[i] = int(fd)
	}
	if err := binary.Read(r, binary.LittleEndian, &m.dcload.allowUnsafe); err != nil {
		return errors.Errorf("trap: load: %v", err)
	}
	for i := range m.bios.queue {
		var status, cmdCode, r0, r1, r2, r3 uint32
		for _, f := range []*uint32{&status, &cmdCode, &r0, &r1, &r2, &r3} {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return errors.Errorf("trap: load: %v", err)
			}
		}
		m.bios.queue[i] = gdromCommand{status: status, cmdCode: cmdCode, result: [4]uint32{r0, r1, r2, r3}}
	}
	return nil
}
