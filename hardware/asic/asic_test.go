package asic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/hardware/asic"
	"github.com/katanacore/machine/hardware/membus"
)

type lineRecorder struct {
	asserted map[int]bool
}

func newLineRecorder() *lineRecorder { return &lineRecorder{asserted: map[int]bool{}} }

func (l *lineRecorder) SetIRQ(line int, asserted bool) { l.asserted[line] = asserted }

// S4 — ASIC event raise and clear.
func TestEventRaiseAndClear(t *testing.T) {
	irq := newLineRecorder()
	a := asic.New(nil, irq)
	a.IRQA[0] = 0x00000004

	a.Raise(asic.EventPVRRenderDone)
	assert.Equal(t, uint32(0x00000004), a.PIRQ[0])
	assert.True(t, irq.asserted[asic.Line13])

	r := a.NewASICRegion(nil)
	require.NoError(t, r.WriteWidth(0x900, 4, 0x00000004))
	assert.Equal(t, uint32(0), a.PIRQ[0])
	assert.False(t, irq.asserted[asic.Line13])
}

// S5 — Cascade event.
func TestCascadeEvent(t *testing.T) {
	a := asic.New(nil, nil)

	a.Raise(40)
	assert.Equal(t, uint32(1)<<8, a.PIRQ[1])
	assert.Equal(t, uint32(1)<<30, a.PIRQ[0]&(1<<30))

	a.Raise(70)
	assert.Equal(t, uint32(1)<<6, a.PIRQ[2])
	assert.NotZero(t, a.PIRQ[0]&(1<<31))
	assert.NotZero(t, a.PIRQ[0]&(1<<30), "CASCADE1 should remain set")
}

func TestPIRQ1IsReadOnly(t *testing.T) {
	a := asic.New(nil, nil)
	a.Raise(40)
	before := a.PIRQ[1]

	r := a.NewASICRegion(nil)
	require.NoError(t, r.WriteWidth(0x904, 4, before))
	assert.Equal(t, before, a.PIRQ[1], "PIRQ1 writes must be ignored")
}

func TestCascadeLawAfterClear(t *testing.T) {
	a := asic.New(nil, nil)
	r := a.NewASICRegion(nil)

	a.Raise(70)
	require.NotZero(t, a.PIRQ[0]&(1<<31))

	require.NoError(t, r.WriteWidth(0x908, 4, a.PIRQ[2]))
	assert.Zero(t, a.PIRQ[2])
	assert.Zero(t, a.PIRQ[0]&(1<<31), "CASCADE2 must clear once PIRQ2 empties")
}

func TestG2FIFOStatusPhasing(t *testing.T) {
	a := asic.New(nil, nil)
	r := a.NewASICRegion(nil)
	a.G2Write()

	a.RunSlice(50)
	status, err := r.ReadWidth(0x88C, 4)
	require.NoError(t, err)
	assert.NotZero(t, status&(1<<5), "bit5 should still be asserted before 60ns")

	a.RunSlice(20)
	status, err = r.ReadWidth(0x88C, 4)
	require.NoError(t, err)
	assert.Zero(t, status&(1<<5), "bit5 should clear after 60ns")
	assert.NotZero(t, status&(1<<4), "bit4 should assert once bit4-on elapses")
}

// S8 — DMA completion.
func TestG2DMACompletion(t *testing.T) {
	bus := membus.New()
	require.NoError(t, bus.RegisterRegion(&membus.Region{Name: "RAM", Base: 0x0C000000, Data: make([]byte, 0x01000000)}))
	require.NoError(t, bus.RegisterRegion(&membus.Region{Name: "EXT", Base: 0x10000000, Data: make([]byte, 0x1000)}))

	for i := 0; i < 256; i++ {
		require.NoError(t, bus.Write8(0x0C008000+uint32(i), byte(i)))
	}

	irq := newLineRecorder()
	mod := asic.NewModule(bus, irq, nil)
	extdma := mod.NewEXTDMARegion()

	require.NoError(t, extdma.WriteWidth(0x804, 4, 0x0C008000)) // G2SH4
	require.NoError(t, extdma.WriteWidth(0x800, 4, 0x10000000)) // G2EXT
	require.NoError(t, extdma.WriteWidth(0x808, 4, 256))        // G2SIZE
	require.NoError(t, extdma.WriteWidth(0x80C, 4, 0))          // G2DIR = SH4->device
	require.NoError(t, extdma.WriteWidth(0x814, 4, 1))          // CTL1
	require.NoError(t, extdma.WriteWidth(0x818, 4, 1))          // CTL2, triggers

	ctl2, err := extdma.ReadWidth(0x818, 4)
	require.NoError(t, err)
	assert.Zero(t, ctl2)

	for i := 0; i < 256; i++ {
		v, err := bus.Read8(0x10000000 + uint32(i))
		require.NoError(t, err)
		assert.Equal(t, byte(i), v)
	}

	asicRegion := mod.NewASICRegion(nil)
	pirq0, err := asicRegion.ReadWidth(0x900, 4)
	require.NoError(t, err)
	assert.NotZero(t, pirq0&(1<<asic.EventG2DMA0), "G2_DMA0 event must be raised")
}
