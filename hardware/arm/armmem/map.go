package armmem

import (
	"encoding/binary"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/mmio"
	"github.com/katanacore/machine/logger"
)

// Address layout (spec.md §4.G "A narrow map").
const (
	soundRAMSize    = 2 * 1024 * 1024
	mmioBase        = 0x00800000
	mmioSize        = 0x00003000
	scratchBase     = 0x00803000
	scratchEnd      = 0x00805000
	scratchRAMSize  = scratchEnd - scratchBase
	mmioRegionCount = 3
	mmioRegionSize  = mmioSize / mmioRegionCount
)

// Map is the ARM-side address space: linear sound RAM, three AICA MMIO
// regions, and a scratch RAM window (spec.md §4.G).
type Map struct {
	sound   []byte
	scratch []byte
	regions [mmioRegionCount]*mmio.Region
}

// New builds a Map over soundRAM (the same buffer the SH4 bus's AICA
// sound-RAM region wraps, so both CPUs see the same bytes) and the three
// AICA MMIO regions in channel order.
func New(soundRAM []byte, regions [3]*mmio.Region) *Map {
	return &Map{
		sound:   soundRAM,
		scratch: make([]byte, scratchRAMSize),
		regions: regions,
	}
}

func (m *Map) dispatch(addr uint32) (region *mmio.Region, offset uint32, inScratch bool, inSound bool) {
	switch {
	case addr < soundRAMSize:
		return nil, addr, false, true
	case addr >= mmioBase && addr < mmioBase+mmioSize:
		rel := addr - mmioBase
		idx := rel / mmioRegionSize
		if int(idx) >= mmioRegionCount {
			return nil, 0, false, false
		}
		return m.regions[idx], rel % mmioRegionSize, false, false
	case addr >= scratchBase && addr < scratchEnd:
		return nil, addr - scratchBase, true, false
	default:
		return nil, 0, false, false
	}
}

// Read32 implements arm.Bus.
func (m *Map) Read32(addr uint32) uint32 {
	region, offset, inScratch, inSound := m.dispatch(addr)
	switch {
	case inSound:
		return binary.LittleEndian.Uint32(m.sound[offset:])
	case inScratch:
		return binary.LittleEndian.Uint32(m.scratch[offset:])
	case region != nil:
		v, err := region.ReadWidth(offset, 4)
		if err != nil {
			logger.LogSeverity(errors.WARN, "armmem", err)
			return 0
		}
		return v
	default:
		logger.Logf("armmem", "read from unmapped address %08x", addr)
		return 0
	}
}

// Read16 implements arm.Bus: the low 16 bits of the 32-bit access at the
// same address (spec.md §4.G "no sub-word fidelity in MMIO space").
func (m *Map) Read16(addr uint32) uint16 {
	if addr < soundRAMSize {
		return binary.LittleEndian.Uint16(m.sound[addr:])
	}
	return uint16(m.Read32(addr))
}

// Read8 implements arm.Bus.
func (m *Map) Read8(addr uint32) uint8 {
	if addr < soundRAMSize {
		return m.sound[addr]
	}
	return uint8(m.Read32(addr))
}

// Write32 implements arm.Bus.
func (m *Map) Write32(addr uint32, v uint32) {
	region, offset, inScratch, inSound := m.dispatch(addr)
	switch {
	case inSound:
		binary.LittleEndian.PutUint32(m.sound[offset:], v)
	case inScratch:
		binary.LittleEndian.PutUint32(m.scratch[offset:], v)
	case region != nil:
		if err := region.WriteWidth(offset, 4, v); err != nil {
			logger.LogSeverity(errors.WARN, "armmem", err)
		}
	default:
		logger.Logf("armmem", "write to unmapped address %08x", addr)
	}
}

// Write16 implements arm.Bus.
func (m *Map) Write16(addr uint32, v uint16) {
	if addr < soundRAMSize {
		binary.LittleEndian.PutUint16(m.sound[addr:], v)
		return
	}
	m.Write32(addr, uint32(v))
}

// Write8 implements arm.Bus.
func (m *Map) Write8(addr uint32, v uint8) {
	if addr < soundRAMSize {
		m.sound[addr] = v
		return
	}
	m.Write32(addr, uint32(v))
}
