package membus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/hardware/membus"
)

func TestRegionReadWriteRoundTrip(t *testing.T) {
	bus := membus.New()
	ram := &membus.Region{Name: "main-ram", Base: 0x0C000000, Data: make([]byte, 16*1024*1024)}
	require.NoError(t, bus.RegisterRegion(ram))

	require.NoError(t, bus.Write32(0x0C001000, 0xDEADBEEF))
	v, err := bus.Read32(0x0C001000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)
}

func TestMirrorSharesBackingData(t *testing.T) {
	bus := membus.New()
	ram := &membus.Region{Name: "main-ram", Base: 0x0C000000, Data: make([]byte, 16*1024*1024)}
	require.NoError(t, bus.RegisterRegion(ram))
	require.NoError(t, bus.Mirror(ram, 0x0D000000))

	require.NoError(t, bus.Write32(0x0C000100, 0x12345678))
	v, err := bus.Read32(0x0D000100)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)
}

func TestReadOnlyRegionDiscardsWrite(t *testing.T) {
	bus := membus.New()
	rom := &membus.Region{Name: "bios", Base: 0, Data: make([]byte, 0x200000), ReadOnly: true}
	rom.Data[4] = 0xAB
	require.NoError(t, bus.RegisterRegion(rom))

	require.NoError(t, bus.Write8(4, 0xFF))
	v, err := bus.Read8(4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v)
}

func TestUnmappedReadReturnsZero(t *testing.T) {
	bus := membus.New()
	v, err := bus.Read32(0x01000000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)
}

func TestContiguousForDMA(t *testing.T) {
	bus := membus.New()
	ram := &membus.Region{Name: "main-ram", Base: 0x0C000000, Data: make([]byte, 16*1024*1024)}
	require.NoError(t, bus.RegisterRegion(ram))
	require.NoError(t, bus.Write32(0x0C008000, 0x01020304))

	data, ok := bus.Contiguous(0x0C008000, 4)
	require.True(t, ok)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, data)
}

type fakeMMIO struct {
	scratch [membus.PageSize]byte
}

func (f *fakeMMIO) Name() string { return "fake" }

func (f *fakeMMIO) ReadWidth(offset uint32, width int) (uint32, error) {
	switch width {
	case 4:
		return uint32(f.scratch[offset]) | uint32(f.scratch[offset+1])<<8 |
			uint32(f.scratch[offset+2])<<16 | uint32(f.scratch[offset+3])<<24, nil
	default:
		return uint32(f.scratch[offset]), nil
	}
}

func (f *fakeMMIO) WriteWidth(offset uint32, width int, v uint32) error {
	switch width {
	case 4:
		f.scratch[offset] = byte(v)
		f.scratch[offset+1] = byte(v >> 8)
		f.scratch[offset+2] = byte(v >> 16)
		f.scratch[offset+3] = byte(v >> 24)
	default:
		f.scratch[offset] = byte(v)
	}
	return nil
}

func TestMMIODispatchRoundTrip(t *testing.T) {
	bus := membus.New()
	m := &fakeMMIO{}
	require.NoError(t, bus.RegisterMMIO(0x005F6000, m))

	require.NoError(t, bus.Write32(0x005F6900, 0xCAFEBABE))
	v, err := bus.Read32(0x005F6900)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), v)
}

func TestMisalignedMMIOFails(t *testing.T) {
	bus := membus.New()
	m := &fakeMMIO{}
	require.NoError(t, bus.RegisterMMIO(0x005F6000, m))

	_, err := bus.Read32(0x005F6901)
	assert.Error(t, err)
}

func TestInterleavedAlternatesBanks(t *testing.T) {
	in := membus.NewInterleaved()
	in.WriteWord(0x00000000, 0x11111111)
	in.WriteWord(0x00000004, 0x22222222)

	assert.Equal(t, uint32(0x11111111), in.ReadWord(0x00000000))
	assert.Equal(t, uint32(0x22222222), in.ReadWord(0x00000004))
	assert.NotEqual(t, in.Bank(0), in.Bank(1))
}

func TestDetwiddle2x2(t *testing.T) {
	// four 8-bit pixels in twiddled order: (0,0)=1 (1,0)=2 (0,1)=3 (1,1)=4
	src := []byte{1, 2, 3, 4}
	out := membus.Detwiddle(src, 8, 2)
	assert.Equal(t, []byte{1, 2, 3, 4}, out)
}
