package asic

import (
	"github.com/katanacore/machine/hardware/mmio"
)

// ASIC MMIO offsets within the 0x005F6000 page (spec.md §6 "ASIC").
const (
	offPVRDMADEST = 0x800
	offPVRDMACNT  = 0x804
	offPVRDMACTL  = 0x808
	offG2STATUS   = 0x88C
	offPIRQ0      = 0x900
	offPIRQ1      = 0x904
	offPIRQ2      = 0x908
	offIRQA0      = 0x910
	offIRQA1      = 0x914
	offIRQA2      = 0x918
	offIRQB0      = 0x920
	offIRQB1      = 0x924
	offIRQB2      = 0x928
	offIRQC0      = 0x930
	offIRQC1      = 0x934
	offIRQC2      = 0x938
	offSYSRESET   = 0x90C
	offMAPLEDMA   = 0xC04
	offMAPLESTATE = 0xC18

	sysresetMagic = 0x7611
)

// NewASICRegion builds the 0x005F6000 MMIO region: PVR DMA trigger
// registers, G2STATUS, the three PIRQ/IRQA/IRQB/IRQC banks, and the soft
// reset / Maple trigger registers (spec.md §6 "ASIC").
func (a *ASIC) NewASICRegion(onReset func()) *mmio.Region {
	ports := []mmio.Port{
		{Offset: offPVRDMADEST, Width: 4, Flags: mmio.Read | mmio.Write, ID: "PVRDMADEST"},
		{Offset: offPVRDMACNT, Width: 4, Flags: mmio.Read | mmio.Write, ID: "PVRDMACNT"},
		{Offset: offPVRDMACTL, Width: 4, Flags: mmio.Read | mmio.Write, ID: "PVRDMACTL"},
		{Offset: offG2STATUS, Width: 4, Flags: mmio.Read, ID: "G2STATUS"},
		{Offset: offPIRQ0, Width: 4, Flags: mmio.Read | mmio.Write, ID: "PIRQ0"},
		{Offset: offPIRQ1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "PIRQ1"},
		{Offset: offPIRQ2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "PIRQ2"},
		{Offset: offIRQA0, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQA0"},
		{Offset: offIRQA1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQA1"},
		{Offset: offIRQA2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQA2"},
		{Offset: offIRQB0, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQB0"},
		{Offset: offIRQB1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQB1"},
		{Offset: offIRQB2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQB2"},
		{Offset: offIRQC0, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQC0"},
		{Offset: offIRQC1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQC1"},
		{Offset: offIRQC2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IRQC2"},
		{Offset: offSYSRESET, Width: 4, Flags: mmio.Read | mmio.Write, ID: "SYSRESET"},
		{Offset: offMAPLEDMA, Width: 4, Flags: mmio.Read | mmio.Write, ID: "MAPLE_DMA"},
		{Offset: offMAPLESTATE, Width: 4, Flags: mmio.Read | mmio.Write, ID: "MAPLE_STATE"},
	}

	read := func(r *mmio.Region, offset uint32, width int) (uint32, error) {
		switch offset {
		case offG2STATUS:
			return a.g2Status(), nil
		case offPIRQ0:
			return a.PIRQ[0], nil
		case offPIRQ1:
			return a.PIRQ[1], nil
		case offPIRQ2:
			return a.PIRQ[2], nil
		case offIRQA0:
			return a.IRQA[0], nil
		case offIRQA1:
			return a.IRQA[1], nil
		case offIRQA2:
			return a.IRQA[2], nil
		case offIRQB0:
			return a.IRQB[0], nil
		case offIRQB1:
			return a.IRQB[1], nil
		case offIRQB2:
			return a.IRQB[2], nil
		case offIRQC0:
			return a.IRQC[0], nil
		case offIRQC1:
			return a.IRQC[1], nil
		case offIRQC2:
			return a.IRQC[2], nil
		case offPVRDMADEST:
			return a.pvr.dest, nil
		case offPVRDMACNT:
			return a.pvr.cnt, nil
		case offPVRDMACTL:
			return a.pvr.ctl, nil
		default:
			return r.ScratchRead(offset, width), nil
		}
	}

	write := func(r *mmio.Region, offset uint32, width int, value uint32) error {
		switch offset {
		case offPIRQ0:
			a.clearPIRQ0(value)
		case offPIRQ1:
			a.clearPIRQ1(value)
		case offPIRQ2:
			a.clearPIRQ2(value)
		case offIRQA0:
			a.IRQA[0] = value
		case offIRQA1:
			a.IRQA[1] = value
		case offIRQA2:
			a.IRQA[2] = value
		case offIRQB0:
			a.IRQB[0] = value
		case offIRQB1:
			a.IRQB[1] = value
		case offIRQB2:
			a.IRQB[2] = value
		case offIRQC0:
			a.IRQC[0] = value
		case offIRQC1:
			a.IRQC[1] = value
		case offIRQC2:
			a.IRQC[2] = value
		case offPVRDMADEST:
			a.pvr.dest = (value & 0x03FFFFE0) | 0x10000000
		case offPVRDMACNT:
			a.pvr.cnt = value & 0x00FFFFE0
		case offPVRDMACTL:
			a.pvr.ctl = value & 0x01
			if a.pvr.ctl == 1 {
				return a.pvrDMA()
			}
		case offSYSRESET:
			if value == sysresetMagic && onReset != nil {
				onReset()
			}
		case offMAPLESTATE:
			r.ScratchWrite(offset, width, value)
			if value&0x01 != 0 {
				r.ScratchWrite(offset, width, value&^0x01)
			}
		default:
			r.ScratchWrite(offset, width, value)
		}
		return nil
	}

	return mmio.NewRegion("ASIC", 0x005F6000, ports, read, write)
}
