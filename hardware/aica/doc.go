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

// Package aica is the sound sub-system's module shell: three MMIO regions
// on the SH4 bus (two channel banks plus a control bank), the ARM7TDMI
// interpreter and its narrow memory map, and the reset bit that gates
// whether run_slice forwards time to the ARM at all. Ported from lxdream's
// aica/aica.c.
package aica
