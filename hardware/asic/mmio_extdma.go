package asic

import (
	"github.com/katanacore/machine/hardware/mmio"
)

// EXTDMA offsets within the 0x005F7000 page (spec.md §6 "EXTDMA"). The
// four G2 channels are identically laid out at 0x800+(ch*0x20).
const (
	g2ChannelBase   = 0x800
	g2ChannelStride = 0x20
	g2OffEXT        = 0x00
	g2OffSH4        = 0x04
	g2OffSIZE       = 0x08
	g2OffDIR        = 0x0C
	g2OffMOD        = 0x10
	g2OffCTL1       = 0x14
	g2OffCTL2       = 0x18

	offIDEDMASH4  = 0x404
	offIDEDMASIZ  = 0x408
	offIDEDMADIR  = 0x40C
	offIDEDMACTL1 = 0x414
	offIDEDMACTL2 = 0x418

	offIDEActivate = 0x4E4
	ideEnableMagic  = 0x001FFFFF
	ideDisableMagic = 0x000042FE

	idePIOBase = 0x080
	idePIOEnd  = 0x09C
)

// NewEXTDMARegion builds the 0x005F7000 MMIO region: four G2 DMA channels,
// one IDE DMA channel, and the IDE PIO passthrough registers (spec.md §6
// "EXTDMA").
func (a *ASIC) NewEXTDMARegion() *mmio.Region {
	var ports []mmio.Port
	for ch := 0; ch < 4; ch++ {
		base := uint32(g2ChannelBase + ch*g2ChannelStride)
		ports = append(ports,
			mmio.Port{Offset: base + g2OffEXT, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2EXT"},
			mmio.Port{Offset: base + g2OffSH4, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2SH4"},
			mmio.Port{Offset: base + g2OffSIZE, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2SIZE"},
			mmio.Port{Offset: base + g2OffDIR, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2DIR"},
			mmio.Port{Offset: base + g2OffMOD, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2MOD"},
			mmio.Port{Offset: base + g2OffCTL1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2CTL1"},
			mmio.Port{Offset: base + g2OffCTL2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "G2CTL2"},
		)
	}
	ports = append(ports,
		mmio.Port{Offset: offIDEDMASH4, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IDEDMASH4"},
		mmio.Port{Offset: offIDEDMASIZ, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IDEDMASIZ"},
		mmio.Port{Offset: offIDEDMADIR, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IDEDMADIR"},
		mmio.Port{Offset: offIDEDMACTL1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IDEDMACTL1"},
		mmio.Port{Offset: offIDEDMACTL2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IDEDMACTL2"},
		mmio.Port{Offset: offIDEActivate, Width: 4, Flags: mmio.Read | mmio.Write, ID: "IDEACTIVATE"},
	)
	for off := uint32(idePIOBase); off <= idePIOEnd; off += 2 {
		ports = append(ports, mmio.Port{Offset: off, Width: 2, Flags: mmio.Read | mmio.Write, ID: "IDEPIO"})
	}

	read := func(r *mmio.Region, offset uint32, width int) (uint32, error) {
		if ch, field, ok := g2ChannelAt(offset); ok {
			return g2Field(&a.g2ch[ch], field), nil
		}
		switch offset {
		case offIDEDMASH4:
			return a.ide.sh4, nil
		case offIDEDMASIZ:
			return a.ide.size, nil
		case offIDEDMACTL1:
			return a.ide.ctl1, nil
		case offIDEDMACTL2:
			return a.ide.ctl2, nil
		case offIDEActivate:
			if a.ide.enabled {
				return 1, nil
			}
			return 0, nil
		}
		if !a.ide.enabled && offset >= idePIOBase && offset <= idePIOEnd {
			return 0, nil
		}
		return r.ScratchRead(offset, width), nil
	}

	write := func(r *mmio.Region, offset uint32, width int, value uint32) error {
		if ch, field, ok := g2ChannelAt(offset); ok {
			setG2Field(&a.g2ch[ch], field, value)
			if field == g2OffCTL2 {
				return a.g2DMA(ch)
			}
			return nil
		}
		switch offset {
		case offIDEDMASH4:
			a.ide.sh4 = value & 0x1FFFFFE0
		case offIDEDMASIZ:
			a.ide.size = value & 0x01FFFFFE
		case offIDEDMACTL1:
			a.ide.ctl1 = value & 0x01
			return a.ideDMA()
		case offIDEDMACTL2:
			a.ide.ctl2 = value & 0x01
			return a.ideDMA()
		case offIDEActivate:
			switch value {
			case ideEnableMagic:
				a.ide.enabled = true
			case ideDisableMagic:
				a.ide.enabled = false
			}
		default:
			if !a.ide.enabled && offset >= idePIOBase && offset <= idePIOEnd {
				return nil
			}
			r.ScratchWrite(offset, width, value)
		}
		return nil
	}

	return mmio.NewRegion("EXTDMA", 0x005F7000, ports, read, write)
}

// g2ChannelAt decodes offset into (channel, field-within-channel) when it
// falls in the G2 DMA channel window.
func g2ChannelAt(offset uint32) (ch int, field uint32, ok bool) {
	if offset < g2ChannelBase {
		return 0, 0, false
	}
	rel := offset - g2ChannelBase
	idx := rel / g2ChannelStride
	if idx >= 4 {
		return 0, 0, false
	}
	return int(idx), rel % g2ChannelStride, true
}

func g2Field(c *g2Channel, field uint32) uint32 {
	switch field {
	case g2OffEXT:
		return c.ext
	case g2OffSH4:
		return c.sh4
	case g2OffSIZE:
		return c.size
	case g2OffDIR:
		return c.dir
	case g2OffMOD:
		return c.mod
	case g2OffCTL1:
		return c.ctl1
	case g2OffCTL2:
		return c.ctl2
	default:
		return 0
	}
}

func setG2Field(c *g2Channel, field uint32, value uint32) {
	switch field {
	case g2OffEXT:
		c.ext = value
	case g2OffSH4:
		c.sh4 = value
	case g2OffSIZE:
		c.size = value
	case g2OffDIR:
		c.dir = value
	case g2OffMOD:
		c.mod = value
	case g2OffCTL1:
		c.ctl1 = value & 0x01
	case g2OffCTL2:
		c.ctl2 = value & 0x01
	}
}
