package mmio

import (
	"encoding/binary"

	"github.com/katanacore/machine/logger"
)

// PageSize is the fixed size of every MMIO region's scratch and snapshot
// buffers (spec.md §4.B).
const PageSize = 4096

// PortFlags gates access and logging for a single port.
type PortFlags uint8

const (
	Read PortFlags = 1 << iota
	Write
	// NoTrace suppresses logging for this port even when the region's
	// Trace gate is enabled (spec.md §4.B "PORT_NOTRACE").
	NoTrace
)

// Port declares one MMIO register: offset within the region's page, access
// width in bytes, access flags, an optional reset default, and a symbolic
// name used in logging and save-state diagnostics.
type Port struct {
	Offset     uint32
	Width      int
	Flags      PortFlags
	Default    uint32
	HasDefault bool
	ID         string
}

// ReadHook and WriteHook are a region's user-supplied dispatch callbacks.
// When nil, the region falls back to the default scratch-buffer dispatch
// (spec.md §4.B "default dispatch").
type ReadHook func(r *Region, offset uint32, width int) (uint32, error)
type WriteHook func(r *Region, offset uint32, width int, value uint32) error

// Region is one 4-KiB MMIO page.
type Region struct {
	name  string
	base  uint32
	ports []Port
	index map[uint32]*Port

	scratch  [PageSize]byte
	snapshot [PageSize]byte

	read  ReadHook
	write WriteHook

	// Trace gates logging of every port that does not itself carry NoTrace.
	Trace bool
}

// NewRegion builds a Region from its declared port table. read/write may be
// nil to use the default scratch-buffer dispatch for every port.
func NewRegion(name string, base uint32, ports []Port, read ReadHook, write WriteHook) *Region {
	r := &Region{
		name:  name,
		base:  base,
		ports: ports,
		index: make(map[uint32]*Port, len(ports)),
		read:  read,
		write: write,
	}
	for i := range ports {
		r.index[ports[i].Offset] = &ports[i]
	}
	return r
}

// Name implements membus.MMIOPage.
func (r *Region) Name() string { return r.name }

// Base returns the region's installed base address.
func (r *Region) Base() uint32 { return r.base }

// ReadWidth implements membus.MMIOPage.
func (r *Region) ReadWidth(offset uint32, width int) (uint32, error) {
	r.traceLog(offset, "read")
	if r.read != nil {
		return r.read(r, offset, width)
	}
	return r.ScratchRead(offset, width), nil
}

// WriteWidth implements membus.MMIOPage.
func (r *Region) WriteWidth(offset uint32, width int, value uint32) error {
	r.traceLog(offset, "write")
	if r.write != nil {
		return r.write(r, offset, width, value)
	}
	r.ScratchWrite(offset, width, value)
	return nil
}

func (r *Region) traceLog(offset uint32, op string) {
	if !r.Trace {
		return
	}
	if p, ok := r.index[offset]; ok && p.Flags&NoTrace != 0 {
		return
	}
	logger.Logf("mmio", "%s %s+%03x", r.name, op, offset)
}

// ScratchRead reads width bytes from the backing scratch buffer at offset,
// the behaviour a region with no custom ReadHook gets for free.
func (r *Region) ScratchRead(offset uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(r.scratch[offset])
	case 2:
		return uint32(binary.LittleEndian.Uint16(r.scratch[offset:]))
	default:
		return binary.LittleEndian.Uint32(r.scratch[offset:])
	}
}

// ScratchWrite writes value into the backing scratch buffer at offset.
// Custom write hooks call this for ports they do not special-case, matching
// the source's switch-default "MMIO_WRITE(reg, val)" fallthrough.
func (r *Region) ScratchWrite(offset uint32, width int, value uint32) {
	switch width {
	case 1:
		r.scratch[offset] = uint8(value)
	case 2:
		binary.LittleEndian.PutUint16(r.scratch[offset:], uint16(value))
	default:
		binary.LittleEndian.PutUint32(r.scratch[offset:], value)
	}
}

// Reset replays every port with a defined default through the write hook
// (spec.md §4.B "Reset").
func (r *Region) Reset() {
	for i := range r.ports {
		p := &r.ports[i]
		if p.HasDefault {
			_ = r.WriteWidth(p.Offset, p.Width, p.Default)
		}
	}
}

// Snapshot copies the current scratch buffer into the save snapshot, for
// debug-UI change detection (spec.md §4.B).
func (r *Region) Snapshot() {
	r.snapshot = r.scratch
}

// Changed reports whether offset differs from the last Snapshot.
func (r *Region) Changed(offset uint32, width int) bool {
	for i := 0; i < width; i++ {
		if r.scratch[int(offset)+i] != r.snapshot[int(offset)+i] {
			return true
		}
	}
	return false
}
