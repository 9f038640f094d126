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

// Package membus is the machine's 29-bit physical address space: a page
// table over fixed 4-KiB pages, each either a direct window into a RAM/ROM
// region or a dispatch point into an MMIO region. CPUBus is the interface
// every module uses for ordinary typed reads and writes; DebuggerBus adds
// the Peek/Poke byte pair, which skips the normal logging-on-miss path.
//
// A second, separate address space models interleaved VRAM: two 4-MiB
// banks selected by bit 2 of a 64-bit interleaved address, plus morton-order
// de-twiddling for textures stored in Dreamcast's twiddled pixel layout.
package membus
