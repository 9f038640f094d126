package trap

import "github.com/katanacore/machine/hardware/membus"

// DCLOAD syscall ids (original_source/dcload.c).
const (
	sysRead  = 0
	sysWrite = 1
	sysOpen  = 2
	sysClose = 3
	sysLseek = 9
	sysExit  = 15
)

const (
	dcloadHookID    = 0xF0
	dcloadMagicAddr = 0x8C004004
	dcloadVectorAddr = 0x8C004008
	dcloadMagic     = 0xDEADBEEF
)

const maxOpenFDs = 16

// HostFS is the host file-I/O contract the DCLOAD hook calls through.
// Host file I/O is an external collaborator (spec.md §1 "host file I/O for
// the BIOS-emulation syscall hooks"); this package defines only the
// contract its dispatch logic needs, never touching the filesystem itself.
type HostFS interface {
	Read(fd int, buf []byte) (int, error)
	Write(fd int, buf []byte) (int, error)
	Lseek(fd int, offset, whence int64) (int64, error)
	Open(name string, flags int) (fd int, err error)
	Close(fd int) error
}

// Stopper is the narrow collaborator DCLOAD's exit/menu-abort paths signal
// through, satisfied by the composition root's run loop. A genuine
// process-level exit() for the allow-unsafe SYS_EXIT case is not this
// package's call to make; both paths fold onto the same graceful stop
// (dreamcast_stop's behaviour for the non-unsafe path).
type Stopper interface{ Stop() }

// DCLOAD is the dcload-ip syscall emulation: a guest fd -> host fd table
// and an "allow unsafe" gate over the destructive half of the API
// (open/close/exit).
type DCLOAD struct {
	fs          HostFS
	stopper     Stopper
	allowUnsafe bool
	fds         [maxOpenFDs]int // -1 = unused
}

// NewDCLOAD returns a DCLOAD hook with the default {0,1,2}->{0,1,2} fd
// mapping (spec.md §4.J), gated by allowUnsafe.
func NewDCLOAD(fs HostFS, stopper Stopper, allowUnsafe bool) *DCLOAD {
	d := &DCLOAD{fs: fs, stopper: stopper, allowUnsafe: allowUnsafe}
	d.resetFDs()
	return d
}

func (d *DCLOAD) resetFDs() {
	for i := range d.fds {
		d.fds[i] = -1
	}
	d.fds[0], d.fds[1], d.fds[2] = 0, 1, 2
}

// SetAllowUnsafe updates the gate at runtime (config.DCLOADAllowUnsafe).
func (d *DCLOAD) SetAllowUnsafe(allow bool) { d.allowUnsafe = allow }

func (d *DCLOAD) allocFD() int {
	for i, v := range d.fds {
		if v == -1 {
			return i
		}
	}
	return -1
}

// Install registers the DCLOAD hook and writes its magic probe word, so
// guest-side detection code (dcload-ip's "is the host present" check) sees
// the emulator (dcload_install).
func (d *DCLOAD) Install(table *Table, bus membus.CPUBus) error {
	d.resetFDs()
	if err := bus.Write32(dcloadMagicAddr, dcloadMagic); err != nil {
		return err
	}
	return table.AddHookVector(bus, dcloadHookID, dcloadVectorAddr, d.syscall)
}

// syscall dispatches one DCLOAD call (dcload_syscall): r4 names the
// syscall, r5..r7 carry its arguments, r0 carries the result.
func (d *DCLOAD) syscall(_ uint8, bus membus.CPUBus, regs Registers) {
	switch regs.R(4) {
	case sysRead:
		d.rw(regs, true)
	case sysWrite:
		d.rw(regs, false)
	case sysLseek:
		fd := int(regs.R(5))
		if !d.validFD(fd) {
			regs.SetR(0, ^uint32(0))
			return
		}
		off, err := d.fs.Lseek(d.fds[fd], int64(regs.R(6)), int64(regs.R(7)))
		if err != nil {
			regs.SetR(0, ^uint32(0))
			return
		}
		regs.SetR(0, uint32(off))
	case sysOpen:
		d.open(bus, regs)
	case sysClose:
		d.close(regs)
	case sysExit:
		d.exit(regs)
	default:
		regs.SetR(0, ^uint32(0))
	}
}

func (d *DCLOAD) validFD(fd int) bool {
	return fd >= 0 && fd < maxOpenFDs && d.fds[fd] != -1
}

func (d *DCLOAD) rw(regs Registers, isRead bool) {
	fd := int(regs.R(5))
	if !d.validFD(fd) {
		regs.SetR(0, ^uint32(0))
		return
	}
	buf := make([]byte, regs.R(7))
	var n int
	var err error
	if isRead {
		n, err = d.fs.Read(d.fds[fd], buf)
	} else {
		n, err = d.fs.Write(d.fds[fd], buf)
	}
	if err != nil {
		regs.SetR(0, ^uint32(0))
		return
	}
	regs.SetR(0, uint32(n))
}

// open and close are only honoured when allowUnsafe is set (spec.md §4.J
// "when allow unsafe is off, the open/close/exit syscalls are denied").
func (d *DCLOAD) open(bus membus.CPUBus, regs Registers) {
	if !d.allowUnsafe {
		regs.SetR(0, ^uint32(0))
		return
	}
	fd := d.allocFD()
	if fd == -1 {
		regs.SetR(0, ^uint32(0))
		return
	}
	name, err := readCString(bus, regs.R(5))
	if err != nil {
		regs.SetR(0, ^uint32(0))
		return
	}
	hostFD, err := d.fs.Open(name, int(regs.R(6)))
	if err != nil {
		regs.SetR(0, ^uint32(0))
		return
	}
	d.fds[fd] = hostFD
	regs.SetR(0, uint32(fd))
}

// readCString reads a NUL-terminated string out of guest memory
// (mem_get_region's implicit C-string read in dcload_syscall's SYS_OPEN
// case), capped well above any real dcload path length as a malformed-
// pointer guard.
func readCString(bus membus.CPUBus, addr uint32) (string, error) {
	const maxLen = 4096
	var b []byte
	for i := 0; i < maxLen; i++ {
		c, err := bus.Read8(addr + uint32(i))
		if err != nil {
			return "", err
		}
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b), nil
}

func (d *DCLOAD) close(regs Registers) {
	if !d.allowUnsafe {
		regs.SetR(0, ^uint32(0))
		return
	}
	fd := int(regs.R(5))
	if !d.validFD(fd) {
		regs.SetR(0, ^uint32(0))
		return
	}
	if d.fds[fd] > 2 {
		if err := d.fs.Close(d.fds[fd]); err != nil {
			regs.SetR(0, ^uint32(0))
			d.fds[fd] = -1
			return
		}
	}
	regs.SetR(0, 0)
	d.fds[fd] = -1
}

func (d *DCLOAD) exit(regs Registers) {
	if d.stopper != nil {
		d.stopper.Stop()
	}
}
