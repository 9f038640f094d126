package gpu

import "github.com/katanacore/machine/hardware/membus"

// decodeRenderVertex reads one vertex's worth of fields starting at addr
// (rendcore.c/scene.c's pvr2_decode_render_vertex): position as three IEEE
// floats, then texture coordinates and colour, whose layout depends on the
// polygon's context words. modifyOffset skips an extra modifyOffset words
// between z and the texture/colour fields, as required for a full-shadow
// polygon's modified vertex set.
func decodeRenderVertex(bus membus.CPUBus, poly1, poly2 uint32, addr uint32, modifyOffset int, bounds *Bounds) (Vertex, error) {
	var v Vertex
	v.W = 1

	x, err := readFloat(bus, addr)
	if err != nil {
		return v, err
	}
	addr += 4
	y, err := readFloat(bus, addr)
	if err != nil {
		return v, err
	}
	addr += 4
	z, err := readFloat(bus, addr)
	if err != nil {
		return v, err
	}
	addr += 4
	v.X, v.Y, v.Z = x, y, z

	if z > bounds.ZFar {
		bounds.ZFar = z
	} else if z < bounds.ZNear && z != 0 {
		bounds.ZNear = z
	}

	addr += uint32(modifyOffset) * 4

	forceAlpha := !poly2AlphaEnable(poly2)
	if poly1Textured(poly1) {
		if poly1UV16(poly1) {
			word, err := readWord(bus, addr)
			if err != nil {
				return v, err
			}
			v.U = halfToFloat(uint16(word >> 16))
			v.V = halfToFloat(uint16(word))
			addr += 4
		} else {
			u, err := readFloat(bus, addr)
			if err != nil {
				return v, err
			}
			addr += 4
			vv, err := readFloat(bus, addr)
			if err != nil {
				return v, err
			}
			addr += 4
			v.U, v.V = u, vv
		}
		if poly2TexBlend(poly2) == 1 {
			forceAlpha = true
		}
	}

	rgbaWord, err := readWord(bus, addr)
	if err != nil {
		return v, err
	}
	addr += 4
	if forceAlpha {
		rgbaWord |= 0xFF000000
	}
	v.RGBA = unpackRGBA(bgraToRGBA(rgbaWord))

	if poly1Specular(poly1) {
		offWord, err := readWord(bus, addr)
		if err != nil {
			return v, err
		}
		if forceAlpha {
			offWord |= 0xFF000000
		}
		v.OffsetRGBA = unpackRGBA(bgraToRGBA(offWord))
	}

	return v, nil
}

// computeVertex fills in result's z, uv, and colour fields by barycentric
// interpolation over input[0..2], leaving result's x,y untouched — the
// sprite encoding's implicit fourth vertex carries only an explicit
// position (scene.c's scene_compute_vertex).
func computeVertex(result *Vertex, input [3]Vertex, isSolidShaded bool, bounds *Bounds) {
	sx := input[2].X - input[1].X
	sy := input[2].Y - input[1].Y
	tx := input[0].X - input[1].X
	ty := input[0].Y - input[1].Y

	detxy := sy*tx - ty*sx
	if detxy == 0 {
		result.Z = input[2].Z
		result.U = input[2].U
		result.V = input[2].V
		result.RGBA = input[2].RGBA
		result.OffsetRGBA = input[2].OffsetRGBA
		return
	}

	t := ((result.X-input[1].X)*sy - (result.Y-input[1].Y)*sx) / detxy
	s := ((result.Y-input[1].Y)*tx - (result.X-input[1].X)*ty) / detxy

	sz := input[2].Z - input[1].Z
	tz := input[0].Z - input[1].Z
	su := input[2].U - input[1].U
	tu := input[0].U - input[1].U
	sv := input[2].V - input[1].V
	tv := input[0].V - input[1].V

	rz := input[1].Z + t*tz + s*sz
	if rz > bounds.ZFar {
		bounds.ZFar = rz
	} else if rz < bounds.ZNear {
		bounds.ZNear = rz
	}
	result.Z = rz
	result.U = input[1].U + t*tu + s*su
	result.V = input[1].V + t*tv + s*sv

	if isSolidShaded {
		result.RGBA = input[2].RGBA
		result.OffsetRGBA = input[2].OffsetRGBA
		return
	}
	for i := range result.RGBA {
		result.RGBA[i] = lerpClampChannel(input[0].RGBA[i], input[1].RGBA[i], input[2].RGBA[i], t, s)
		result.OffsetRGBA[i] = lerpClampChannel(input[0].OffsetRGBA[i], input[1].OffsetRGBA[i], input[2].OffsetRGBA[i], t, s)
	}
}

func lerpClampChannel(c0, c1, c2, t, s float32) float32 {
	tc := c0 - c1
	sc := c2 - c1
	rc := c1 + t*tc + s*sc
	if rc < 0 {
		rc = 0
	} else if rc > 1 {
		rc = 1
	}
	return rc
}
