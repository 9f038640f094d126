package gpu

import (
	"math"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/membus"
	"github.com/katanacore/machine/logger"
)

// VRAMBase is the bus address the tile-segment list, polygon heap, and all
// vertex contexts are read relative to. Every offset this package consumes
// from MMIO registers (RENDER_TILEBASE, RENDER_POLYBASE, and the pointer/
// continuation words inside the display list itself) is a VRAM-relative
// offset added to this base before going through the bus, mirroring
// scene.c's "video_base + offset" pattern.
const VRAMBase = 0x04000000

// maxPolygons bounds the polygon array the same way scene.h's
// MAX_POLYGONS does; exceeding it raises SceneOverflow and drops the rest
// of the scene rather than growing without limit.
const maxPolygons = 87382 * 2

const (
	segmentEnd      = 0x80000000
	segmentSortTrans = 0x20000000
	noPointer       = 0x80000000
)

func segmentX(control uint32) int { return int((control >> 2) & 0x3F) }
func segmentY(control uint32) int { return int((control >> 8) & 0x3F) }

// Registers is the subset of PVR2 register state a parse reads (spec.md
// §4.I "Clip and bounds", "Sort mode and shadow mode").
type Registers struct {
	TileBase    uint32
	PolyBase    uint32
	HClip       uint32
	VClip       uint32
	FarClip     uint32 // raw bit pattern of a guest-written float
	Shadow      uint32
	ObjConfig   uint32
	ISPConfig   uint32
}

// EventRaiser is satisfied by asic.ASIC's Raise(event int) method; Parse
// raises both the TA error and the primitive-allocation-failure events
// through whichever one the caller wires.
type EventRaiser interface{ Raise(event int) }

type parser struct {
	bus   membus.CPUBus
	regs  Registers
	scene *Scene
}

func readWord(bus membus.CPUBus, offset uint32) (uint32, error) {
	return bus.Read32(VRAMBase + offset)
}

func readFloat(bus membus.CPUBus, offset uint32) (float32, error) {
	bits, err := readWord(bus, offset)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// Parse walks the tile-segment list and polygon heap rooted at regs and
// produces a fresh, immutable Scene (spec.md §4.I). raiser, if non-nil,
// receives asic event numbers for TAError (malformed stream, parsing
// continues) and SceneOverflow (polygon buffer exhausted, remaining
// polygons dropped) per spec.md §7.
func Parse(bus membus.CPUBus, regs Registers, raiser EventRaiser, taError, primAllocFail int) (*Scene, error) {
	p := &parser{bus: bus, regs: regs, scene: newScene()}
	p.scene.SegmentListAddr = regs.TileBase

	p.scene.Bounds.X1 = int(regs.HClip & 0x03FF)
	p.scene.Bounds.X2 = int((regs.HClip>>16)&0x03FF) + 1
	p.scene.Bounds.Y1 = int(regs.VClip & 0x03FF)
	p.scene.Bounds.Y2 = int((regs.VClip>>16)&0x03FF) + 1
	farClip := math.Float32frombits(regs.FarClip)
	p.scene.Bounds.ZNear = farClip
	p.scene.Bounds.ZFar = farClip

	fullShadow := regs.Shadow&0x100 == 0
	if fullShadow {
		p.scene.ShadowMode = ShadowFull
	} else {
		p.scene.ShadowMode = ShadowCheap
	}

	if regs.ObjConfig&0x00200000 == 0 {
		if regs.ISPConfig&1 != 0 {
			p.scene.SortMode = SortNever
		} else {
			p.scene.SortMode = SortAlways
		}
	} else {
		p.scene.SortMode = SortByFlag
	}

	maxTileX, maxTileY, err := p.extractPass1(fullShadow, raiser, taError, primAllocFail)
	if err != nil {
		return nil, err
	}
	p.scene.BufferWidth = (maxTileX + 1) << 5
	p.scene.BufferHeight = (maxTileY + 1) << 5

	if p.scene.vertexBudget > 0 {
		p.scene.Verts = make([]Vertex, 0, p.scene.vertexBudget)
		if err := p.extractPass2(fullShadow, raiser, taError); err != nil {
			return nil, err
		}
	}

	return p.scene, nil
}

// walkSegments drives the shared per-segment, per-pointer-slot loop common
// to both passes (scene_read's two identical "do { ... } while" bodies).
func (p *parser) walkSegments(visit func(pointer uint32) error) (maxTileX, maxTileY int, err error) {
	addr := p.regs.TileBase
	for {
		control, rerr := readWord(p.bus, addr)
		if rerr != nil {
			return maxTileX, maxTileY, rerr
		}
		addr += 4
		if x := segmentX(control); x > maxTileX {
			maxTileX = x
		}
		if y := segmentY(control); y > maxTileY {
			maxTileY = y
		}
		for i := 0; i < 5; i++ {
			ptr, rerr := readWord(p.bus, addr)
			if rerr != nil {
				return maxTileX, maxTileY, rerr
			}
			addr += 4
			if ptr&noPointer == 0 {
				if verr := visit(ptr); verr != nil {
					return maxTileX, maxTileY, verr
				}
			}
		}
		if control&segmentEnd != 0 {
			break
		}
	}
	return maxTileX, maxTileY, nil
}

func (p *parser) extractPass1(fullShadow bool, raiser EventRaiser, taError, primAllocFail int) (int, int, error) {
	return p.walkSegments(func(pointer uint32) error {
		return p.extractPolygons(pointer, fullShadow, raiser, taError, primAllocFail)
	})
}

func (p *parser) extractPass2(fullShadow bool, raiser EventRaiser, taError int) error {
	_, _, err := p.walkSegments(func(pointer uint32) error {
		return p.extractVertexes(pointer, fullShadow, raiser, taError)
	})
	return err
}

// decodeEntry pulls the fields scene_extract_polygons/vertexes share out of
// one tile-pointer-chain entry word.
type entryFields struct {
	polyAddr      uint32
	isModified    bool
	vertexLength  int
	contextLength int
	kind          uint32 // entry & 0xE0000000
	stripCount    int
}

func decodeEntry(entry uint32, fullShadow bool) entryFields {
	f := entryFields{
		polyAddr:     entry & 0x000FFFFF,
		isModified:   entry&0x01000000 != 0 && fullShadow,
		vertexLength: int((entry >> 21) & 0x07),
		kind:         entry & 0xE0000000,
	}
	f.contextLength = 3
	if f.isModified {
		f.contextLength = 5
		f.vertexLength <<= 1
	}
	f.vertexLength += 3
	f.stripCount = int((entry>>25)&0x0F) + 1
	return f
}

func (p *parser) extractPolygons(tileEntry uint32, fullShadow bool, raiser EventRaiser, taError, primAllocFail int) error {
	addr := tileEntry
	for {
		entry, err := readWord(p.bus, addr)
		if err != nil {
			return err
		}
		addr += 4
		switch entry >> 28 {
		case 0xF:
			return nil
		case 0xE:
			addr = entry & 0x007FFFFF
			continue
		}

		f := decodeEntry(entry, fullShadow)
		switch f.kind {
		case 0x80000000: // triangle strip
			polyAddr := f.polyAddr
			polygonLen := uint32(3*f.vertexLength + f.contextLength)
			var last *Polygon
			for i := 0; i < f.stripCount; i++ {
				poly := p.addPolygon(polyAddr, 3, f.isModified, raiser, primAllocFail)
				polyAddr += polygonLen
				if poly == nil {
					continue
				}
				if last != nil && last.Next == nil {
					last.Next = poly
				}
				last = poly
			}
		case 0xA0000000: // sprite (quad) strip
			polyAddr := f.polyAddr
			polygonLen := uint32(4*f.vertexLength + f.contextLength)
			var last *Polygon
			for i := 0; i < f.stripCount; i++ {
				poly := p.addPolygon(polyAddr, 4, f.isModified, raiser, primAllocFail)
				polyAddr += polygonLen
				if poly == nil {
					continue
				}
				if last != nil && last.Next == nil {
					last.Next = poly
				}
				last = poly
			}
		default:
			if n := highestStripBit(entry); n != -1 {
				p.addPolygon(f.polyAddr, n+3, f.isModified, raiser, primAllocFail)
			} else if raiser != nil {
				logTAError(raiser, taError, "polygon entry with no vertex-count bit set")
			}
		}
	}
}

// highestStripBit mirrors scene_extract_polygons' "last" scan: the lowest
// set bit among entry bits 25..30, scanned from bit 25 upward, reported as
// an index 5..0 (bit25 -> 5, bit30 -> 0), or -1 if none are set.
func highestStripBit(entry uint32) int {
	for i := 5; i >= 0; i-- {
		if entry&(0x40000000>>uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// addPolygon records or grows a polygon by its unique VRAM context offset
// (spec.md §4.I invariant). A polygon buffer exhausted mid-scene is a
// SceneOverflow: logged, PVR_PRIM_ALLOC_FAIL is raised, and the polygon is
// simply dropped — parsing continues over the rest of the display list
// rather than aborting (spec.md §7 "local recovery").
func (p *parser) addPolygon(polyIdx uint32, vertexCount int, isModified bool, raiser EventRaiser, primAllocFail int) *Polygon {
	vertMul := 1
	if isModified {
		vertMul = 2
	}
	if poly, ok := p.scene.bufToPoly[polyIdx]; ok {
		if vertexCount > poly.VertexCount {
			p.scene.vertexBudget += (vertexCount - poly.VertexCount) * vertMul
			poly.VertexCount = vertexCount
		}
		return poly
	}
	if len(p.scene.Polys) >= maxPolygons {
		logger.LogSeverity(errors.WARN, "gpu", errors.Errorf(errors.SceneOverflow, maxPolygons))
		if raiser != nil {
			raiser.Raise(primAllocFail)
		}
		return nil
	}
	poly := &Polygon{Context: polyIdx, VertexCount: vertexCount, VertexIndex: -1, Modified: isModified}
	p.scene.bufToPoly[polyIdx] = poly
	p.scene.Polys = append(p.scene.Polys, poly)
	p.scene.vertexBudget += vertexCount * vertMul
	return poly
}

func (p *parser) extractVertexes(tileEntry uint32, fullShadow bool, raiser EventRaiser, taError int) error {
	addr := tileEntry
	for {
		entry, err := readWord(p.bus, addr)
		if err != nil {
			return err
		}
		addr += 4
		switch entry >> 28 {
		case 0xF:
			return nil
		case 0xE:
			addr = entry & 0x007FFFFF
			continue
		}

		f := decodeEntry(entry, fullShadow)
		switch f.kind {
		case 0x80000000:
			polyAddr := f.polyAddr
			polygonLen := uint32(3*f.vertexLength + f.contextLength)
			for i := 0; i < f.stripCount; i++ {
				if err := p.addVertexes(polyAddr, f.vertexLength, f.isModified); err != nil {
					return err
				}
				polyAddr += polygonLen
			}
		case 0xA0000000:
			polyAddr := f.polyAddr
			polygonLen := uint32(4*f.vertexLength + f.contextLength)
			for i := 0; i < f.stripCount; i++ {
				if err := p.addQuadVertexes(polyAddr, f.vertexLength, f.isModified); err != nil {
					return err
				}
				polyAddr += polygonLen
			}
		default:
			if highestStripBit(entry) != -1 {
				if err := p.addVertexes(f.polyAddr, f.vertexLength, f.isModified); err != nil {
					return err
				}
			}
		}
	}
}

func (p *parser) addVertexes(polyIdx uint32, vertexLength int, isModified bool) error {
	poly := p.scene.bufToPoly[polyIdx]
	if poly == nil || poly.VertexIndex != -1 {
		return nil
	}
	ctxAddr := p.regs.PolyBase + polyIdx
	poly1, err := readWord(p.bus, ctxAddr)
	if err != nil {
		return err
	}
	poly2, err := readWord(p.bus, ctxAddr+4)
	if err != nil {
		return err
	}

	headerWords := 3
	if isModified {
		headerWords = 5
	}
	vertAddr := ctxAddr + uint32(headerWords*4)
	poly.VertexIndex = len(p.scene.Verts)
	for i := 0; i < poly.VertexCount; i++ {
		v, err := decodeRenderVertex(p.bus, poly1, poly2, vertAddr, 0, &p.scene.Bounds)
		if err != nil {
			return err
		}
		p.scene.Verts = append(p.scene.Verts, v)
		vertAddr += uint32(vertexLength * 4)
	}

	if isModified {
		modOffset := (vertexLength - 3) >> 1
		poly2mod, err := readWord(p.bus, ctxAddr+12)
		if err != nil {
			return err
		}
		vertAddr = ctxAddr + 5*4
		poly.ModVertexIndex = len(p.scene.Verts)
		for i := 0; i < poly.VertexCount; i++ {
			v, err := decodeRenderVertex(p.bus, poly1, poly2mod, vertAddr, modOffset, &p.scene.Bounds)
			if err != nil {
				return err
			}
			p.scene.Verts = append(p.scene.Verts, v)
			vertAddr += uint32(vertexLength * 4)
		}
	}
	return nil
}

func (p *parser) addQuadVertexes(polyIdx uint32, vertexLength int, isModified bool) error {
	poly := p.scene.bufToPoly[polyIdx]
	if poly == nil || poly.VertexIndex != -1 {
		return nil
	}
	ctxAddr := p.regs.PolyBase + polyIdx
	poly1, err := readWord(p.bus, ctxAddr)
	if err != nil {
		return err
	}
	poly2, err := readWord(p.bus, ctxAddr+4)
	if err != nil {
		return err
	}
	solid := !poly1GouraudShaded(poly1)

	headerWords := 3
	if isModified {
		headerWords = 5
	}
	vertAddr := ctxAddr + uint32(headerWords*4)

	var quad [4]Vertex
	poly.VertexIndex = len(p.scene.Verts)
	for i := 0; i < 4; i++ {
		v, err := decodeRenderVertex(p.bus, poly1, poly2, vertAddr, 0, &p.scene.Bounds)
		if err != nil {
			return err
		}
		quad[i] = v
		vertAddr += uint32(vertexLength * 4)
	}
	// The sprite encoding only carries explicit position for the 4th
	// vertex; its z/uv/colour are derived from the other three
	// (spec.md §4.I "synthesize the fourth vertex by barycentric
	// interpolation").
	computeVertex(&quad[3], [3]Vertex{quad[0], quad[1], quad[2]}, solid, &p.scene.Bounds)
	// Quad arrangement -> triangle-strip arrangement: swap the last two.
	p.scene.Verts = append(p.scene.Verts, quad[0], quad[1], quad[3], quad[2])

	if isModified {
		modOffset := (vertexLength - 3) >> 1
		poly2mod, err := readWord(p.bus, ctxAddr+12)
		if err != nil {
			return err
		}
		vertAddr = ctxAddr + 5*4
		poly.ModVertexIndex = len(p.scene.Verts)
		var modQuad [4]Vertex
		for i := 0; i < 4; i++ {
			v, err := decodeRenderVertex(p.bus, poly1, poly2mod, vertAddr, modOffset, &p.scene.Bounds)
			if err != nil {
				return err
			}
			modQuad[i] = v
			vertAddr += uint32(vertexLength * 4)
		}
		computeVertex(&modQuad[3], [3]Vertex{modQuad[0], modQuad[1], modQuad[2]}, solid, &p.scene.Bounds)
		p.scene.Verts = append(p.scene.Verts, modQuad[0], modQuad[1], modQuad[3], modQuad[2])
	}
	return nil
}

// logTAError reports a malformed tile-accelerator entry: logged and the
// ASIC TA_ERROR event raised, but parsing continues best-effort (spec.md
// §7 "local recovery").
func logTAError(raiser EventRaiser, taError int, reason string) {
	logger.LogSeverity(errors.WARN, "gpu", errors.Errorf(errors.TAError, reason))
	raiser.Raise(taError)
}
