// This file is part of the katanacore machine emulation core.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package gpu assembles a renderable scene out of the tile-based GPU's
// VRAM-resident display list. It owns the PVR2 register bank and, on a
// write to RENDER_START, walks the tile-segment list and polygon heap in
// two passes — polygon discovery, then vertex expansion — producing a flat
// vertex/polygon array for an external renderer to consume. Ported from
// original_source/src/pvr2/scene.c and rendcore.c.
package gpu
