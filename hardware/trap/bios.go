package trap

import "github.com/katanacore/machine/hardware/membus"

// BIOS syscall vector ids and addresses (original_source/bios.c).
const (
	biosSysInfo = 0xB0
	biosFont    = 0xB4
	biosFlash   = 0xB8
	biosMisc    = 0xBC
	biosMenu    = 0xE0
)

var biosVectorAddr = map[uint8]uint32{
	biosSysInfo: 0x8C0000B0,
	biosFont:    0x8C0000B4,
	biosFlash:   0x8C0000B8,
	biosMisc:    0x8C0000BC,
	biosMenu:    0x8C0000E0,
}

const gdromQueueLen = 16

// GD-ROM command status codes (original_source/bios.c).
const (
	gdStatusNone   = 0
	gdStatusActive = 1
	gdStatusDone   = 2
	gdStatusAbort  = 3
	gdStatusError  = 4
)

const gdErrorSystem = 1

const gdCmdInit = 24

type gdromCommand struct {
	status  uint32
	cmdCode uint32
	result  [4]uint32
}

// BIOS is the fake boot-ROM syscall surface: a tiny GD-ROM command queue
// good enough to satisfy a guest's init/poll protocol without a real drive
// (bios_gdrom_run_command's "*shrug*" for GD_CMD_INIT, error for anything
// else).
type BIOS struct {
	stopper Stopper
	queue   [gdromQueueLen]gdromCommand
}

// NewBIOS returns a BIOS hook set with an empty command queue.
func NewBIOS(stopper Stopper) *BIOS {
	return &BIOS{stopper: stopper}
}

// Install registers all five BIOS vectors (bios_install).
func (b *BIOS) Install(table *Table, bus membus.CPUBus) error {
	for _, id := range []uint8{biosSysInfo, biosFont, biosFlash, biosMisc, biosMenu} {
		if err := table.AddHookVector(bus, id, biosVectorAddr[id], b.syscall); err != nil {
			return err
		}
	}
	return nil
}

func (b *BIOS) syscall(hookID uint8, bus membus.CPUBus, regs Registers) {
	switch hookID {
	case biosSysInfo, biosFont, biosFlash:
		// Recognised but a no-op stub: enough guests probe these vectors
		// for presence without needing real data back (bios_syscall).
	case biosMisc:
		b.misc(bus, regs)
	case biosMenu:
		b.menu(regs)
	}
}

func (b *BIOS) misc(bus membus.CPUBus, regs Registers) {
	if regs.R(6) != 0 {
		return // only "GD-Rom" (r6 == 0) sub-device is modelled
	}
	switch regs.R(7) {
	case 0: // send command
		regs.SetR(0, b.enqueue(regs.R(4)))
	case 1: // check command
		id := regs.R(4)
		cmd := b.get(id)
		if cmd == nil {
			regs.SetR(0, gdStatusNone)
			return
		}
		regs.SetR(0, cmd.status)
		if cmd.status == gdStatusError && regs.R(5) != 0 {
			writeResult(bus, regs.R(5), cmd.result)
		}
	case 2: // run queue
		b.runQueue()
	case 3: // init
		b.queue = [gdromQueueLen]gdromCommand{}
	case 4: // drive status
		regs.SetR(0, 0)
	case 8: // abort
		cmd := b.get(regs.R(4))
		if cmd == nil || cmd.status != gdStatusActive {
			regs.SetR(0, ^uint32(0))
			return
		}
		cmd.status = gdStatusAbort
		regs.SetR(0, 0)
	case 9: // reset
	case 10: // set mode
		regs.SetR(0, 0)
	}
}

func (b *BIOS) menu(regs Registers) {
	if regs.R(7) == 1 && b.stopper != nil {
		b.stopper.Stop() // "Program aborted to DC menu"
	}
}

func (b *BIOS) enqueue(cmdCode uint32) uint32 {
	for i := range b.queue {
		if b.queue[i].status != gdStatusActive {
			b.queue[i] = gdromCommand{status: gdStatusActive, cmdCode: cmdCode}
			return uint32(i)
		}
	}
	return ^uint32(0)
}

func (b *BIOS) get(id uint32) *gdromCommand {
	if id >= gdromQueueLen || b.queue[id].status == gdStatusNone {
		return nil
	}
	return &b.queue[id]
}

func (b *BIOS) runQueue() {
	for i := range b.queue {
		if b.queue[i].status == gdStatusActive {
			b.run(&b.queue[i])
		}
	}
}

// run resolves one queued command (bios_gdrom_run_command): there is no
// real drive behind this, so only GD_CMD_INIT succeeds.
func (b *BIOS) run(cmd *gdromCommand) {
	if cmd.cmdCode == gdCmdInit {
		cmd.status = gdStatusDone
		return
	}
	cmd.status = gdStatusError
	cmd.result[0] = gdErrorSystem
}

func writeResult(bus membus.CPUBus, addr uint32, result [4]uint32) {
	for i, w := range result {
		_ = bus.Write32(addr+uint32(i*4), w)
	}
}
