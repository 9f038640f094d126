package machine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/config"
	"github.com/katanacore/machine/hardware/machine"
)

type nullFS struct{}

func (nullFS) Read(fd int, buf []byte) (int, error)            { return 0, nil }
func (nullFS) Write(fd int, buf []byte) (int, error)           { return len(buf), nil }
func (nullFS) Lseek(fd int, offset, whence int64) (int64, error) { return 0, nil }
func (nullFS) Open(name string, flags int) (int, error)        { return -1, nil }
func (nullFS) Close(fd int) error                               { return nil }

func newTestMachine(t *testing.T) *machine.Machine {
	t.Helper()
	m, err := machine.New(config.New(), nullFS{})
	require.NoError(t, err)
	return m
}

func TestNewAssemblesWithoutError(t *testing.T) {
	m := newTestMachine(t)
	assert.NotNil(t, m.Bus())
	assert.NotNil(t, m.ASIC())
	assert.NotNil(t, m.GPU())
	assert.NotNil(t, m.AICA())
	assert.NotNil(t, m.Trap())
}

func TestLoadBIOSAndMainRAMReachableOnBus(t *testing.T) {
	m := newTestMachine(t)
	bios := bytes.Repeat([]byte{0xAA}, 16)
	require.NoError(t, m.LoadBIOS(bios))

	v, err := m.Bus().Read8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAA), v)

	require.NoError(t, m.LoadImage([]byte{0x11, 0x22, 0x33, 0x44}, 0x0C000000))
	v32, err := m.Bus().Read32(0x0C000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x44332211), v32)

	// Main RAM is mirrored x4 (spec.md §3).
	v32Mirror, err := m.Bus().Read32(0x0D000000)
	require.NoError(t, err)
	assert.Equal(t, v32, v32Mirror)
}

func TestLoadBIOSRejectsOversizedImage(t *testing.T) {
	m := newTestMachine(t)
	err := m.LoadBIOS(make([]byte, 3*1024*1024))
	require.Error(t, err)
}

func TestResetIsIdempotent(t *testing.T) {
	m := newTestMachine(t)
	require.NoError(t, m.LoadImage([]byte{0xFF, 0xFF, 0xFF, 0xFF}, 0x0C000000))
	m.Reset()
	m.Reset()
	v, err := m.Bus().Read32(0x0C000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestSaveStateRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	require.NoError(t, m.LoadImage([]byte{0x12, 0x34, 0x56, 0x78}, 0x0C000000))

	var buf bytes.Buffer
	require.NoError(t, m.SaveState(&buf))

	m.Reset()
	v, err := m.Bus().Read32(0x0C000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	require.NoError(t, m.LoadState(bytes.NewReader(buf.Bytes())))
	v, err = m.Bus().Read32(0x0C000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x78563412), v)
}

func TestRunForAdvancesElapsedTime(t *testing.T) {
	m := newTestMachine(t)
	require.NoError(t, m.RunFor(0, 1_000_000))
	assert.GreaterOrEqual(t, m.Elapsed().Nanoseconds(), int64(1_000_000))
}
