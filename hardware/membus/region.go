package membus

import (
	"encoding/binary"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/logger"
)

const (
	// PageSize is the fixed page granularity of the physical address space
	// (spec.md §3 "Address space and pages").
	PageSize = 4096
	pageBits = 12

	// addrBits is the width of the physical address space; the top 3 bits
	// (the SH4 region selector: cached/uncached/P2 mirrors, etc.) are masked
	// off uniformly before page resolution (spec.md §4.A).
	addrBits = 29
	addrMask = (1 << addrBits) - 1

	pageCount = 1 << (addrBits - pageBits)
)

// Region is an owned, contiguous byte buffer registered with a Bus: a name
// (used for save-state rebinding), a base address, and RAM/ROM flags.
type Region struct {
	Name     string
	Base     uint32
	Data     []byte
	ReadOnly bool
	Trace    bool
}

// MMIOPage is the narrow view of an MMIO region a Bus dispatches page
// accesses through. hardware/mmio.Region implements this.
type MMIOPage interface {
	Name() string
	ReadWidth(offset uint32, width int) (uint32, error)
	WriteWidth(offset uint32, width int, value uint32) error
}

type page struct {
	region *Region // non-nil for RAM/ROM pages
	ram    []byte  // region.Data window for this page, length PageSize
	mmio   MMIOPage
}

// Bus is the machine's physical address space: a flat page table over
// registered Regions and MMIOPages.
type Bus struct {
	pages   [pageCount]page
	regions []*Region
}

// New returns an empty Bus with no regions registered.
func New() *Bus {
	return &Bus{}
}

// Regions returns every Region registered with RegisterRegion, in
// registration order, for save-state enumeration by hardware/machine.
// Regions installed only as a Mirror alias are not included separately —
// they share the same *Region value as their original RegisterRegion call.
func (b *Bus) Regions() []*Region {
	return b.regions
}

// RegisterRegion installs r into the page table at r.Base, covering
// len(r.Data) rounded up to a whole number of pages.
func (b *Bus) RegisterRegion(r *Region) error {
	if len(r.Data) == 0 {
		return errors.Errorf("membus: region %q has no backing data", r.Name)
	}
	b.regions = append(b.regions, r)
	return b.installWindow(r, r.Base)
}

// Mirror installs r's existing backing data again at a different base
// address, with no additional allocation — the spec's "create region, then
// for each mirror install the same slice into the additional page ranges"
// (spec.md §3 "Memory regions").
func (b *Bus) Mirror(r *Region, base uint32) error {
	return b.installWindow(r, base)
}

func (b *Bus) installWindow(r *Region, base uint32) error {
	n := len(r.Data)
	pages := (n + PageSize - 1) / PageSize
	start := (base & addrMask) >> pageBits
	for i := 0; i < pages; i++ {
		idx := start + uint32(i)
		if int(idx) >= pageCount {
			return errors.Errorf("membus: region %q overruns address space", r.Name)
		}
		lo := i * PageSize
		hi := lo + PageSize
		if hi > n {
			hi = n
		}
		window := r.Data[lo:hi]
		if len(window) < PageSize {
			padded := make([]byte, PageSize)
			copy(padded, window)
			window = padded
		}
		b.pages[idx] = page{region: r, ram: window}
	}
	return nil
}

// RegisterMMIO installs m into the page table at base, one page wide.
func (b *Bus) RegisterMMIO(base uint32, m MMIOPage) error {
	idx := (base & addrMask) >> pageBits
	if int(idx) >= pageCount {
		return errors.Errorf("membus: MMIO region %q overruns address space", m.Name())
	}
	b.pages[idx] = page{mmio: m}
	return nil
}

func pageIndex(addr uint32) (idx uint32, offset uint32) {
	a := addr & addrMask
	return a >> pageBits, a & (PageSize - 1)
}

func (b *Bus) resolve(addr uint32) *page {
	idx, _ := pageIndex(addr)
	p := &b.pages[idx]
	if p.region == nil && p.mmio == nil {
		return nil
	}
	return p
}

func misaligned(addr uint32, width int) bool {
	return addr&uint32(width-1) != 0
}

func (b *Bus) readWidth(addr uint32, width int) (uint32, error) {
	p := b.resolve(addr)
	if p == nil {
		logger.LogSeverity(errors.WARN, "membus", "read from unmapped address")
		return 0, nil
	}
	if p.mmio != nil {
		if misaligned(addr, width) {
			logger.Logf("membus", "misaligned MMIO read at %08x (width %d)", addr, width)
			return 0, errors.Errorf(errors.BadAlign, addr, width)
		}
		_, off := pageIndex(addr)
		return p.mmio.ReadWidth(off, width)
	}
	_, off := pageIndex(addr)
	return readRAM(p.ram, off, width), nil
}

func (b *Bus) writeWidth(addr uint32, width int, v uint32) error {
	p := b.resolve(addr)
	if p == nil {
		logger.Logf("membus", "write to unmapped address %08x discarded", addr)
		return nil
	}
	if p.mmio != nil {
		if misaligned(addr, width) {
			logger.Logf("membus", "misaligned MMIO write at %08x (width %d)", addr, width)
			return errors.Errorf(errors.BadAlign, addr, width)
		}
		_, off := pageIndex(addr)
		return p.mmio.WriteWidth(off, width, v)
	}
	if p.region.ReadOnly {
		logger.Logf("membus", "write to read-only region %q at %08x discarded", p.region.Name, addr)
		return nil
	}
	_, off := pageIndex(addr)
	writeRAM(p.ram, off, width, v)
	return nil
}

func readRAM(ram []byte, off uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(ram[off])
	case 2:
		if int(off)+2 > len(ram) {
			return 0
		}
		return uint32(binary.LittleEndian.Uint16(ram[off:]))
	default:
		if int(off)+4 > len(ram) {
			return 0
		}
		return binary.LittleEndian.Uint32(ram[off:])
	}
}

func writeRAM(ram []byte, off uint32, width int, v uint32) {
	switch width {
	case 1:
		ram[off] = uint8(v)
	case 2:
		if int(off)+2 <= len(ram) {
			binary.LittleEndian.PutUint16(ram[off:], uint16(v))
		}
	default:
		if int(off)+4 <= len(ram) {
			binary.LittleEndian.PutUint32(ram[off:], v)
		}
	}
}

func (b *Bus) Read8(addr uint32) (uint8, error) {
	v, err := b.readWidth(addr, 1)
	return uint8(v), err
}

func (b *Bus) Read16(addr uint32) (uint16, error) {
	v, err := b.readWidth(addr, 2)
	return uint16(v), err
}

func (b *Bus) Read32(addr uint32) (uint32, error) {
	return b.readWidth(addr, 4)
}

func (b *Bus) Write8(addr uint32, v uint8) error {
	return b.writeWidth(addr, 1, uint32(v))
}

func (b *Bus) Write16(addr uint32, v uint16) error {
	return b.writeWidth(addr, 2, uint32(v))
}

func (b *Bus) Write32(addr uint32, v uint32) error {
	return b.writeWidth(addr, 4, v)
}

// Contiguous returns a direct slice onto a single RAM/ROM region's backing
// data for addr..addr+length, for DMA fast paths (spec.md §4.A, §4.E).
func (b *Bus) Contiguous(addr uint32, length uint32) ([]byte, bool) {
	p := b.resolve(addr)
	if p == nil || p.region == nil {
		return nil, false
	}
	off := (addr & addrMask) - (p.region.Base & addrMask)
	if int(off)+int(length) > len(p.region.Data) {
		return nil, false
	}
	return p.region.Data[off : off+length], true
}

// Peek reads a single byte without logging a miss. On an MMIO page the read
// goes through the region's ReadWidth dispatch, hooks included.
func (b *Bus) Peek(addr uint32) (uint8, error) {
	p := b.resolve(addr)
	if p == nil {
		return 0, errors.Errorf(errors.BadAddress, addr)
	}
	if p.mmio != nil {
		_, off := pageIndex(addr)
		v, err := p.mmio.ReadWidth(off, 1)
		return uint8(v), err
	}
	_, off := pageIndex(addr)
	return p.ram[off], nil
}

// Poke writes a single byte, bypassing the ReadOnly flag. On an MMIO page
// the write goes through the region's WriteWidth dispatch, hooks included.
func (b *Bus) Poke(addr uint32, v uint8) error {
	p := b.resolve(addr)
	if p == nil {
		return errors.Errorf(errors.BadAddress, addr)
	}
	if p.mmio != nil {
		_, off := pageIndex(addr)
		return p.mmio.WriteWidth(off, 1, uint32(v))
	}
	_, off := pageIndex(addr)
	p.ram[off] = v
	return nil
}

var _ CPUBus = (*Bus)(nil)
var _ DebuggerBus = (*Bus)(nil)
