package gpu_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/hardware/gpu"
	"github.com/katanacore/machine/hardware/membus"
)

type eventRecorder struct {
	raised map[int]int
}

func newEventRecorder() *eventRecorder { return &eventRecorder{raised: map[int]int{}} }

func (r *eventRecorder) Raise(event int) { r.raised[event]++ }

func putWord(vram []byte, offset uint32, word uint32) {
	binary.LittleEndian.PutUint32(vram[offset:], word)
}

func putFloat(vram []byte, offset uint32, f float32) {
	binary.LittleEndian.PutUint32(vram[offset:], math.Float32bits(f))
}

// newVRAMBus builds a bus with one 1 MiB RAM region at gpu.VRAMBase, wide
// enough for a small tile-segment list, tile-pointer chain, and polygon
// heap.
func newVRAMBus(t *testing.T) (*membus.Bus, []byte) {
	t.Helper()
	vram := make([]byte, 1<<20)
	bus := membus.New()
	require.NoError(t, bus.RegisterRegion(&membus.Region{
		Name: "VRAM", Base: gpu.VRAMBase, Data: vram,
	}))
	return bus, vram
}

const (
	tileListAddr  = 0x0000
	pointerChain  = 0x1000
	polyContext   = 0x2000
)

// buildSingleTriangle writes a one-segment tile list (tile 0,0, end of
// list) whose opaque pointer slot leads to a pointer-chain entry for one
// triangle strip of one polygon (stripCount 1, vertexCount 3), followed by
// that polygon's 3-word header and three vertexes.
func buildSingleTriangle(vram []byte) {
	// Tile-segment list: control word (tile 0,0, end-of-list), then 5
	// pointer slots (opaque, opaque-modifier, translucent, translucent-
	// modifier, punch-through). Only the opaque slot (first) is populated;
	// the rest carry NO_POINTER.
	putWord(vram, tileListAddr, 0x80000000)
	putWord(vram, tileListAddr+4, pointerChain)
	putWord(vram, tileListAddr+8, 0x80000000)
	putWord(vram, tileListAddr+12, 0x80000000)
	putWord(vram, tileListAddr+16, 0x80000000)
	putWord(vram, tileListAddr+20, 0x80000000)

	// Pointer-chain entry: kind 0x80000000 (triangle strip), strip count 1
	// (bits 25..28 = 0), vertex_length raw 1 (-> decoded stride of 4 words:
	// x, y, z, colour — this polygon is untextured and non-specular),
	// polygon address = polyContext, not modified.
	putWord(vram, pointerChain, 0x80000000|0x00200000|uint32(polyContext))
	putWord(vram, pointerChain+4, 0xF0000000) // end of pointer chain

	// Polygon context: poly1 (untextured, not specular, solid-shaded),
	// poly2 (alpha disabled so vertex colour is forced opaque).
	putWord(vram, polyContext, 0x00000000)
	putWord(vram, polyContext+4, 0x00000000)
	putWord(vram, polyContext+8, 0x00000000) // unused 3rd header word

	vertAddr := uint32(polyContext + 12)
	verts := [][2]float32{{0, 0}, {10, 0}, {0, 10}}
	for _, xy := range verts {
		putFloat(vram, vertAddr, xy[0])
		putFloat(vram, vertAddr+4, xy[1])
		putFloat(vram, vertAddr+8, 1.0) // z
		putWord(vram, vertAddr+12, 0xFFFFFFFF)
		vertAddr += 16 // decoded vertex_length 4 words: 3 pos + 1 colour word
	}
}

// A single opaque triangle strip parses into one polygon with 3 vertexes,
// with buffer dimensions derived from the one segment's tile coordinates.
func TestParseSingleTriangle(t *testing.T) {
	bus, vram := newVRAMBus(t)
	buildSingleTriangle(vram)

	regs := gpu.Registers{
		TileBase: tileListAddr,
		PolyBase: 0,
		HClip:    0x013F0000, // X1 = 0, X2 = 0x13F+1 = 320
		VClip:    0x00EF0000, // Y1 = 0, Y2 = 0xEF+1 = 240
	}
	raiser := newEventRecorder()

	scene, err := gpu.Parse(bus, regs, raiser, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, scene)

	require.Len(t, scene.Polys, 1)
	assert.Equal(t, 3, scene.Polys[0].VertexCount)
	assert.Len(t, scene.Verts, 3)
	assert.Equal(t, 32, scene.BufferWidth)
	assert.Equal(t, 32, scene.BufferHeight)
	assert.Zero(t, raiser.raised[1], "no TA_ERROR expected for a well-formed list")
	assert.Zero(t, raiser.raised[2], "no PVR_PRIM_ALLOC_FAIL expected below the polygon limit")
}

// RENDER_START triggers a parse and raises PVR_RENDER_DONE; the resulting
// scene is retrievable off the module afterward.
func TestModuleRenderStartTriggersParse(t *testing.T) {
	bus, vram := newVRAMBus(t)
	buildSingleTriangle(vram)

	raiser := newEventRecorder()
	mod := gpu.NewModule(bus, raiser, 10, 11, 12)
	require.NoError(t, mod.Init())

	region := mod.NewPVR2Region()
	require.NoError(t, region.WriteWidth(0x124, 4, tileListAddr)) // TA_TILEBASE
	require.NoError(t, region.WriteWidth(0x128, 4, 0))            // TA_POLYBASE
	require.NoError(t, region.WriteWidth(0x068, 4, 0x013F0000))   // RENDER_HCLIP
	require.NoError(t, region.WriteWidth(0x06C, 4, 0x00EF0000))   // RENDER_VCLIP

	require.NoError(t, region.WriteWidth(0x014, 4, 1)) // RENDER_START

	require.NotNil(t, mod.Scene())
	assert.Len(t, mod.Scene().Polys, 1)
	assert.Equal(t, 1, raiser.raised[10], "PVR_RENDER_DONE must be raised exactly once")
}

// An empty tile-segment list (immediately end-of-list, every pointer slot
// NO_POINTER) parses into a scene with no polygons and no vertexes.
func TestParseEmptySegmentList(t *testing.T) {
	bus, vram := newVRAMBus(t)
	putWord(vram, tileListAddr, 0x80000000)
	for i := 0; i < 5; i++ {
		putWord(vram, tileListAddr+4+uint32(i)*4, 0x80000000)
	}

	regs := gpu.Registers{TileBase: tileListAddr}
	scene, err := gpu.Parse(bus, regs, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, scene.Polys)
	assert.Empty(t, scene.Verts)
}

// A tile-pointer entry carrying no vertex-count bit is malformed: it is
// reported via TA_ERROR and otherwise ignored rather than aborting the
// parse.
func TestMalformedPolygonEntryRaisesTAError(t *testing.T) {
	bus, vram := newVRAMBus(t)
	putWord(vram, tileListAddr, 0x80000000)
	putWord(vram, tileListAddr+4, pointerChain)
	for i := 1; i < 5; i++ {
		putWord(vram, tileListAddr+4+uint32(i)*4, 0x80000000)
	}
	// A single-polygon entry (kind bits clear of both 0x80000000 and
	// 0xA0000000) with bits 25..30 all zero: no vertex-count bit set.
	putWord(vram, pointerChain, uint32(polyContext))
	putWord(vram, pointerChain+4, 0xF0000000)

	raiser := newEventRecorder()
	regs := gpu.Registers{TileBase: tileListAddr}
	scene, err := gpu.Parse(bus, regs, raiser, 7, 8)
	require.NoError(t, err)
	assert.Empty(t, scene.Polys)
	assert.Equal(t, 1, raiser.raised[7])
}
