package mmio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/hardware/mmio"
	"github.com/katanacore/machine/logger"
)

func TestDefaultDispatchRoundTrip(t *testing.T) {
	r := mmio.NewRegion("TEST", 0x1000, []mmio.Port{
		{Offset: 0x10, Width: 4, Flags: mmio.Read | mmio.Write, ID: "REG"},
	}, nil, nil)

	require.NoError(t, r.WriteWidth(0x10, 4, 0xCAFEBABE))
	v, err := r.ReadWidth(0x10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xCAFEBABE), v)
}

func TestResetReplaysDefaults(t *testing.T) {
	writes := 0
	r := mmio.NewRegion("TEST", 0x1000, []mmio.Port{
		{Offset: 0x10, Width: 4, Default: 0x12345678, HasDefault: true, ID: "REG"},
		{Offset: 0x20, Width: 4, ID: "NODEFAULT"},
	}, nil, func(r *mmio.Region, offset uint32, width int, value uint32) error {
		writes++
		r.ScratchWrite(offset, width, value)
		return nil
	})

	r.Reset()
	assert.Equal(t, 1, writes)
	v, err := r.ReadWidth(0x10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), v)
}

func TestRegistrySaveLoadRoundTrip(t *testing.T) {
	a := mmio.NewRegion("A", 0x1000, nil, nil, nil)
	b := mmio.NewRegion("B", 0x2000, nil, nil, nil)
	require.NoError(t, a.WriteWidth(4, 4, 1))
	require.NoError(t, b.WriteWidth(8, 4, 2))

	reg := mmio.NewRegistry(a, b)

	var buf bytes.Buffer
	require.NoError(t, reg.Save(&buf))

	require.NoError(t, a.WriteWidth(4, 4, 0))
	require.NoError(t, b.WriteWidth(8, 4, 0))

	require.NoError(t, reg.Load(&buf))

	va, err := a.ReadWidth(4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), va)

	vb, err := b.ReadWidth(8, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), vb)
}

func TestNoTraceSuppressesLogging(t *testing.T) {
	r := mmio.NewRegion("TEST", 0x1000, []mmio.Port{
		{Offset: 0x10, Width: 4, Flags: mmio.NoTrace, ID: "QUIET"},
	}, nil, nil)
	r.Trace = true

	logger.Central().Clear()
	assert.NotPanics(t, func() {
		_ = r.WriteWidth(0x10, 4, 1)
	})

	var out strings.Builder
	logger.Write(&out)
	assert.Empty(t, out.String(), "a NoTrace port must not reach the log even with Trace on")
}
