package gpu

// SortMode selects how the external renderer orders translucent polygons
// (spec.md §4.I "Sort mode and shadow mode").
type SortMode int

const (
	SortNever SortMode = iota
	SortByFlag
	SortAlways
)

// ShadowMode selects how full modifier-volume polygons are treated.
type ShadowMode int

const (
	ShadowFull ShadowMode = iota
	ShadowCheap
)

// Vertex is one expanded scene vertex: position, one texture coordinate
// pair, and the base/specular-offset colour tuples as 0..1 floats
// (spec.md "Scene (GPU front-end) data").
type Vertex struct {
	X, Y, Z, W float32
	U, V       float32
	RGBA       [4]float32
	OffsetRGBA [4]float32
}

// Polygon is one discovered polygon context: where its raw words live in
// VRAM, how many vertexes it claims, and where those vertexes land in the
// scene's flat vertex array once pass 2 has run.
type Polygon struct {
	Context     uint32 // VRAM offset (from RENDER_POLYBASE) of the raw context words
	VertexCount int
	VertexIndex int // -1 until pass 2 assigns it
	ModVertexIndex int
	Modified    bool // full-shadow modifier volume: a second (modified) vertex set follows

	// Next chains sequential entries of a triangle/sprite strip array so a
	// renderer can walk them as one draw call (scene.c's
	// scene_extract_polygons linking last_poly->next).
	Next *Polygon

	// SubNext is reserved for split-polygon chaining; nothing in the source
	// this is ported from ever populates it, and no scene observed during
	// development produces one, so it stays nil. Kept for structural parity
	// with spec.md's polygon-array field list.
	SubNext *Polygon
}

// Bounds is the scene's clip/depth extent (spec.md "Scene bounds").
type Bounds struct {
	X1, X2, Y1, Y2 int
	ZNear, ZFar    float32
}

// Scene is the single owned structure a parse produces. It is reset at the
// start of every Parse and is never mutated afterward — the external
// renderer may walk Polys/Verts in any order once Parse returns.
type Scene struct {
	Verts []Vertex
	Polys []*Polygon

	// bufToPoly is the "buf_to_poly_map": keyed by the polygon's VRAM
	// context offset, so the same context reached from multiple tiles
	// resolves to one Polygon record (spec.md §4.I invariant).
	bufToPoly map[uint32]*Polygon

	// SegmentListAddr is a VRAM-relative pointer to the tile-segment list
	// this scene was parsed from; the scene does not own or copy it
	// (spec.md "Tile-segment list — pointer into VRAM (not owned)"). A
	// renderer walking it directly reads each segment's SEGMENT_SORT_TRANS
	// bit for SortByFlag mode.
	SegmentListAddr uint32

	Bounds       Bounds
	BufferWidth  int
	BufferHeight int
	SortMode     SortMode
	ShadowMode   ShadowMode

	// vertexBudget is the running total pass 1 reserves; pass 2 allocates
	// Verts to this length before filling it in.
	vertexBudget int
}

func newScene() *Scene {
	return &Scene{bufToPoly: make(map[uint32]*Polygon)}
}
