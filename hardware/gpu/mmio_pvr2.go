package gpu

import "github.com/katanacore/machine/hardware/mmio"

// PVR2 register bank offsets (spec.md §6 "PVR2 (0x005F8000)"). RENDER_START
// triggers a fresh scene parse. TA_TILEBASE/TA_POLYBASE are the tile-segment
// list and polygon heap roots §4.I's prose calls RENDER_TILEBASE/
// RENDER_POLYBASE — the same two registers under the name the register
// table itself uses.
const (
	offRenderStart   = 0x014
	offDispMode      = 0x044
	offDispAddr1     = 0x050
	offDispAddr2     = 0x054
	offDispTotal     = 0x05C
	offRenderAddr1   = 0x060
	offRenderAddr2   = 0x064
	offRenderHClip   = 0x068
	offRenderVClip   = 0x06C
	offDispSyncTime  = 0x078
	offRenderShadow  = 0x074
	offRenderObjCfg  = 0x07C
	offRenderFarClip = 0x088
	offRenderISPCfg  = 0x098
	offDispHPosIRQ   = 0x0C8
	offDispVPosIRQ   = 0x0CC
	offTATileBase    = 0x124
	offTAPolyBase    = 0x128
	offTAInit        = 0x144
	offYUVAddr       = 0x148
	offYUVCfg        = 0x14C
)

// NewPVR2Region builds a fresh bank bound to this GPU's state, for tests
// and save-state tooling that need to drive registers without a bus
// (mirrors asic.ASIC.NewASICRegion, aica.AICA.NewControlRegion).
func (g *GPU) NewPVR2Region() *mmio.Region { return g.newPVR2Region(basePVR2) }

func (g *GPU) newPVR2Region(base uint32) *mmio.Region {
	ports := []mmio.Port{
		{Offset: offRenderStart, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_START"},
		{Offset: offDispMode, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_MODE"},
		{Offset: offDispAddr1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_ADDR1"},
		{Offset: offDispAddr2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_ADDR2"},
		{Offset: offDispTotal, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_TOTAL"},
		{Offset: offRenderAddr1, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_ADDR1"},
		{Offset: offRenderAddr2, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_ADDR2"},
		{Offset: offRenderHClip, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_HCLIP"},
		{Offset: offRenderVClip, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_VCLIP"},
		{Offset: offDispSyncTime, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_SYNCTIME"},
		{Offset: offRenderShadow, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_SHADOW"},
		{Offset: offRenderObjCfg, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_OBJCFG"},
		{Offset: offRenderFarClip, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_FARCLIP"},
		{Offset: offRenderISPCfg, Width: 4, Flags: mmio.Read | mmio.Write, ID: "RENDER_ISPCFG"},
		{Offset: offDispHPosIRQ, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_HPOSIRQ"},
		{Offset: offDispVPosIRQ, Width: 4, Flags: mmio.Read | mmio.Write, ID: "DISP_VPOSIRQ"},
		{Offset: offTATileBase, Width: 4, Flags: mmio.Read | mmio.Write, ID: "TA_TILEBASE"},
		{Offset: offTAPolyBase, Width: 4, Flags: mmio.Read | mmio.Write, ID: "TA_POLYBASE"},
		{Offset: offTAInit, Width: 4, Flags: mmio.Read | mmio.Write, ID: "TA_INIT"},
		{Offset: offYUVAddr, Width: 4, Flags: mmio.Read | mmio.Write, ID: "YUV_ADDR"},
		{Offset: offYUVCfg, Width: 4, Flags: mmio.Read | mmio.Write, ID: "YUV_CFG"},
	}

	read := func(r *mmio.Region, offset uint32, width int) (uint32, error) {
		switch offset {
		case offDispMode:
			return g.dispMode, nil
		case offDispAddr1:
			return g.dispAddr1, nil
		case offDispAddr2:
			return g.dispAddr2, nil
		case offDispTotal:
			return g.dispTotal, nil
		case offRenderAddr1:
			return g.renderAddr1, nil
		case offRenderAddr2:
			return g.renderAddr2, nil
		case offRenderHClip:
			return g.regs.HClip, nil
		case offRenderVClip:
			return g.regs.VClip, nil
		case offDispSyncTime:
			return g.dispSyncTime, nil
		case offRenderShadow:
			return g.regs.Shadow, nil
		case offRenderObjCfg:
			return g.regs.ObjConfig, nil
		case offRenderFarClip:
			return g.regs.FarClip, nil
		case offRenderISPCfg:
			return g.regs.ISPConfig, nil
		case offDispHPosIRQ:
			return g.dispHPosIRQ, nil
		case offDispVPosIRQ:
			return g.dispVPosIRQ, nil
		case offTATileBase:
			return g.regs.TileBase, nil
		case offTAPolyBase:
			return g.regs.PolyBase, nil
		case offTAInit:
			return g.taInit, nil
		case offYUVAddr:
			return g.yuvAddr, nil
		case offYUVCfg:
			return g.yuvCfg, nil
		default:
			return r.ScratchRead(offset, width), nil
		}
	}

	write := func(r *mmio.Region, offset uint32, width int, value uint32) error {
		switch offset {
		case offRenderStart:
			return g.triggerRender()
		case offDispMode:
			g.dispMode = value
		case offDispAddr1:
			g.dispAddr1 = value
		case offDispAddr2:
			g.dispAddr2 = value
		case offDispTotal:
			g.dispTotal = value
		case offRenderAddr1:
			g.renderAddr1 = value
		case offRenderAddr2:
			g.renderAddr2 = value
		case offRenderHClip:
			g.regs.HClip = value
		case offRenderVClip:
			g.regs.VClip = value
		case offDispSyncTime:
			g.dispSyncTime = value
		case offRenderShadow:
			g.regs.Shadow = value
		case offRenderObjCfg:
			g.regs.ObjConfig = value
		case offRenderFarClip:
			g.regs.FarClip = value
		case offRenderISPCfg:
			g.regs.ISPConfig = value
		case offDispHPosIRQ:
			g.dispHPosIRQ = value
		case offDispVPosIRQ:
			g.dispVPosIRQ = value
		case offTATileBase:
			g.regs.TileBase = value
		case offTAPolyBase:
			g.regs.PolyBase = value
		case offTAInit:
			g.taInit = value
		case offYUVAddr:
			g.yuvAddr = value
		case offYUVCfg:
			g.yuvCfg = value
		default:
			r.ScratchWrite(offset, width, value)
		}
		return nil
	}

	return mmio.NewRegion("PVR2", base, ports, read, write)
}
