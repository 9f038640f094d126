package gpu

// Bit accessors for the polygon context's first two control words, named
// after pvr2.h's POLY1_*/POLY2_* macros.

func poly1Textured(poly1 uint32) bool      { return poly1&0x02000000 != 0 }
func poly1Specular(poly1 uint32) bool      { return poly1&0x01000000 != 0 }
func poly1GouraudShaded(poly1 uint32) bool { return poly1&0x00800000 != 0 }
func poly1UV16(poly1 uint32) bool          { return poly1&0x00400000 != 0 }

func poly2AlphaEnable(poly2 uint32) bool { return poly2&0x00100000 != 0 }
func poly2TexBlend(poly2 uint32) uint32  { return (poly2 >> 6) & 0x03 }

// bgraToRGBA swaps the red and blue byte lanes of a packed BGRA word
// (scene.c's bgra_to_rgba), leaving green and alpha in place.
func bgraToRGBA(bgra uint32) uint32 {
	return (bgra & 0xFF00FF00) | ((bgra & 0x00FF0000) >> 16) | ((bgra & 0x000000FF) << 16)
}

// unpackRGBA splits a packed 0xAABBGGRR-order word (the result of
// bgraToRGBA, red in the low byte) into 0..1 floats in R, G, B, A order.
func unpackRGBA(rgba uint32) [4]float32 {
	return [4]float32{
		float32(uint8(rgba)) / 255,
		float32(uint8(rgba>>8)) / 255,
		float32(uint8(rgba>>16)) / 255,
		float32(uint8(rgba>>24)) / 255,
	}
}
