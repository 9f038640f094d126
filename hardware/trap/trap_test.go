package trap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/hardware/trap"
)

type fakeRegs struct {
	r [16]uint32
}

func (f *fakeRegs) R(n int) uint32      { return f.r[n] }
func (f *fakeRegs) SetR(n int, v uint32) { f.r[n] = v }

type fakeStopper struct{ stopped int }

func (s *fakeStopper) Stop() { s.stopped++ }

type fakeFS struct {
	data        map[int][]byte
	openCalls   []string
	closeCalls  []int
	nextHostFD  int
}

func newFakeFS() *fakeFS {
	return &fakeFS{data: map[int][]byte{}, nextHostFD: 3}
}

func (f *fakeFS) Read(fd int, buf []byte) (int, error) {
	d := f.data[fd]
	n := copy(buf, d)
	return n, nil
}

func (f *fakeFS) Write(fd int, buf []byte) (int, error) {
	f.data[fd] = append(f.data[fd], buf...)
	return len(buf), nil
}

func (f *fakeFS) Lseek(fd int, offset, whence int64) (int64, error) { return offset, nil }

func (f *fakeFS) Open(name string, flags int) (int, error) {
	f.openCalls = append(f.openCalls, name)
	fd := f.nextHostFD
	f.nextHostFD++
	return fd, nil
}

func (f *fakeFS) Close(fd int) error {
	f.closeCalls = append(f.closeCalls, fd)
	return nil
}

func newRAMBus(t *testing.T) *membus.Bus {
	t.Helper()
	bus := membus.New()
	require.NoError(t, bus.RegisterRegion(&membus.Region{
		Name: "SH4RAM", Base: 0x8C000000, Data: make([]byte, 0x10000),
	}))
	return bus
}

// Installing both hook sets writes the DCLOAD magic probe word and every
// hook's sentinel instruction (spec.md §4.J).
func TestInstallWritesSentinelsAndMagic(t *testing.T) {
	bus := newRAMBus(t)
	mod := trap.NewModule(bus, newFakeFS(), &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	magic, err := bus.Read32(0x8C004004)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), magic)

	word, err := bus.Read32(0x8C004008)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFF0), word, "DCLOAD vector must carry sentinel|0xF0")

	word, err = bus.Read32(0x8C0000B0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFB0), word, "BIOS 0xB0 vector must carry sentinel|0xB0")
}

// Reset re-patches every installed vector (e.g. after a guest memory wipe)
// without re-running Install's one-time setup.
func TestResetRepatchesVectors(t *testing.T) {
	bus := newRAMBus(t)
	mod := trap.NewModule(bus, newFakeFS(), &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	require.NoError(t, bus.Write32(0x8C004008, 0)) // simulate the vector being clobbered
	mod.Reset()

	word, err := bus.Read32(0x8C004008)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFF0), word)
}

// Reading/writing through the default fd mapping forwards straight to the
// host collaborator without an explicit open.
func TestDCLOADDefaultFDReadWrite(t *testing.T) {
	bus := newRAMBus(t)
	fs := newFakeFS()
	fs.data[1] = nil
	mod := trap.NewModule(bus, fs, &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	regs := &fakeRegs{}
	regs.SetR(4, 1) // SYS_WRITE
	regs.SetR(5, 1) // fd 1 (stdout)
	regs.SetR(6, 0) // buf addr (unused by the fake)
	regs.SetR(7, 5) // length

	mod.Invoke(0xF0, regs)
	assert.Equal(t, uint32(5), regs.R(0))
	assert.Len(t, fs.data[1], 5)
}

// An invalid fd is rejected without reaching the host collaborator.
func TestDCLOADInvalidFDReturnsNegativeOne(t *testing.T) {
	bus := newRAMBus(t)
	mod := trap.NewModule(bus, newFakeFS(), &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	regs := &fakeRegs{}
	regs.SetR(4, 0) // SYS_READ
	regs.SetR(5, 9) // never-opened fd
	mod.Invoke(0xF0, regs)
	assert.Equal(t, ^uint32(0), regs.R(0))
}

// SYS_OPEN is denied when allow-unsafe is off (spec.md §4.J).
func TestDCLOADOpenDeniedWhenUnsafeOff(t *testing.T) {
	bus := newRAMBus(t)
	fs := newFakeFS()
	mod := trap.NewModule(bus, fs, &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	regs := &fakeRegs{}
	regs.SetR(4, 2) // SYS_OPEN
	mod.Invoke(0xF0, regs)
	assert.Equal(t, ^uint32(0), regs.R(0))
	assert.Empty(t, fs.openCalls)
}

// SYS_OPEN is honoured when allow-unsafe is on, reading the filename out of
// guest memory and returning the emulator fd the host file is mapped to.
func TestDCLOADOpenAllowedWhenUnsafeOn(t *testing.T) {
	bus := newRAMBus(t)
	fs := newFakeFS()
	mod := trap.NewModule(bus, fs, &fakeStopper{}, false)
	require.NoError(t, mod.Init())
	mod.SetAllowUnsafe(true)

	nameAddr := uint32(0x8C000100)
	name := "/pc/data.bin"
	for i, c := range []byte(name) {
		require.NoError(t, bus.Write8(nameAddr+uint32(i), c))
	}
	require.NoError(t, bus.Write8(nameAddr+uint32(len(name)), 0))

	regs := &fakeRegs{}
	regs.SetR(4, 2) // SYS_OPEN
	regs.SetR(5, nameAddr)
	regs.SetR(6, 0)
	mod.Invoke(0xF0, regs)

	require.Len(t, fs.openCalls, 1)
	assert.Equal(t, name, fs.openCalls[0])
	assert.Equal(t, uint32(3), regs.R(0), "first free emulator fd past the default 0,1,2 mapping")
}

// An unregistered hook id is ignored (logged, no panic, no register
// mutated).
func TestInvokeUnknownHookIsIgnored(t *testing.T) {
	bus := newRAMBus(t)
	mod := trap.NewModule(bus, newFakeFS(), &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	regs := &fakeRegs{}
	regs.SetR(0, 42)
	assert.NotPanics(t, func() { mod.Invoke(0x55, regs) })
	assert.Equal(t, uint32(42), regs.R(0), "r0 must be left untouched")
}

// GD_CMD_INIT always succeeds; any other command code resolves to an error
// status with GD_ERROR_SYSTEM (bios_gdrom_run_command).
func TestBIOSGDROMEnqueueResolvesSynchronously(t *testing.T) {
	bus := newRAMBus(t)
	mod := trap.NewModule(bus, newFakeFS(), &fakeStopper{}, false)
	require.NoError(t, mod.Init())

	regs := &fakeRegs{}
	regs.SetR(4, 24) // GD_CMD_INIT
	regs.SetR(5, 0)  // ptr = NULL
	regs.SetR(6, 0)  // GD-Rom sub-device
	regs.SetR(7, 0)  // send command
	mod.Invoke(0xBC, regs)
	cmdID := regs.R(0)
	require.NotEqual(t, ^uint32(0), cmdID)

	runRegs := &fakeRegs{}
	runRegs.SetR(6, 0)
	runRegs.SetR(7, 2) // mainloop: resolve every active command
	mod.Invoke(0xBC, runRegs)

	checkRegs := &fakeRegs{}
	checkRegs.SetR(4, cmdID)
	checkRegs.SetR(5, 0)
	checkRegs.SetR(6, 0)
	checkRegs.SetR(7, 1) // check command
	mod.Invoke(0xBC, checkRegs)
	assert.Equal(t, uint32(2), checkRegs.R(0), "GD_CMD_STATUS_DONE")
}

// Menu sub-code 1 ("program aborted to DC menu") signals the stopper.
func TestBIOSMenuAbortStopsTheMachine(t *testing.T) {
	bus := newRAMBus(t)
	stopper := &fakeStopper{}
	mod := trap.NewModule(bus, newFakeFS(), stopper, false)
	require.NoError(t, mod.Init())

	regs := &fakeRegs{}
	regs.SetR(7, 1)
	mod.Invoke(0xE0, regs)
	assert.Equal(t, 1, stopper.stopped)
}
