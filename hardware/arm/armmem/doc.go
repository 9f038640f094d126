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

// Package armmem is the ARM7TDMI's own narrow memory map: linear sound
// RAM below 2 MiB, three AICA MMIO windows above it, and a small scratch
// RAM beyond those — a different address space from the main SH4 bus.
// Ported from lxdream's aica/armmem.c.
package armmem
