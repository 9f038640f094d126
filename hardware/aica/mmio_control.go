package aica

import "github.com/katanacore/machine/hardware/mmio"

// Control-bank offsets within AICA2 (original_source/aica/aica.h).
const (
	offCDDAVolL  = 0x040
	offCDDAVolR  = 0x044
	offVolMaster = 0x800
	offTimer     = 0x890
	offReset     = 0xC00
)

// NewControlRegion builds a fresh AICA2 region bound to this AICA's state,
// for tests and save-state tooling that need to drive registers directly
// without a bus (mirrors asic.ASIC.NewASICRegion).
func (a *AICA) NewControlRegion() *mmio.Region { return a.newControlRegion(baseControl) }

// newControlRegion builds the AICA2 bank: master/CDDA volume, the IRQ
// timer reload register, and AICA_RESET (spec.md §4.H).
func (a *AICA) newControlRegion(base uint32) *mmio.Region {
	ports := []mmio.Port{
		{Offset: offCDDAVolL, Width: 4, Flags: mmio.Read | mmio.Write, ID: "CDDA_VOL_L"},
		{Offset: offCDDAVolR, Width: 4, Flags: mmio.Read | mmio.Write, ID: "CDDA_VOL_R"},
		{Offset: offVolMaster, Width: 4, Flags: mmio.Read | mmio.Write, ID: "VOL_MASTER"},
		{Offset: offTimer, Width: 4, Flags: mmio.Read | mmio.Write, ID: "AICA_TIMER"},
		{Offset: offReset, Width: 4, Flags: mmio.Read | mmio.Write, Default: resetHeld, HasDefault: true, ID: "AICA_RESET"},
	}

	read := func(r *mmio.Region, offset uint32, width int) (uint32, error) {
		switch offset {
		case offCDDAVolL:
			return a.cddaVolL, nil
		case offCDDAVolR:
			return a.cddaVolR, nil
		case offVolMaster:
			return a.masterVol, nil
		case offTimer:
			return a.timerValue, nil
		case offReset:
			return a.reset, nil
		default:
			return r.ScratchRead(offset, width), nil
		}
	}

	write := func(r *mmio.Region, offset uint32, width int, value uint32) error {
		switch offset {
		case offCDDAVolL:
			a.cddaVolL = value
		case offCDDAVolR:
			a.cddaVolR = value
		case offVolMaster:
			a.masterVol = value
		case offTimer:
			a.timerValue = value
		case offReset:
			a.writeReset(value)
		default:
			r.ScratchWrite(offset, width, value)
		}
		return nil
	}

	return mmio.NewRegion("AICA2", base, ports, read, write)
}
