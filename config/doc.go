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

// Package config is the single disk-backed settings object for the machine
// core: a BIOS image path, a flat program image path, the DCLOAD "allow
// unsafe syscalls" gate, an MMIO trace flag, and the scheduler's default
// timeslice length. Settings round-trip through TOML rather than the
// teacher's hand-rolled key=value codec.
package config
