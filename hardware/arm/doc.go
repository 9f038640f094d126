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

// Package arm is a 32-bit ARM7TDMI interpreter, ARM mode only. It decodes
// and executes the full data-processing/load-store/branch/exception
// instruction set against a banked register file, driven one sample's
// worth of cycles at a time by RunSlice. Ported from lxdream's
// aica/armcore.c.
package arm
