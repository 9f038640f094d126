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

// Package mmio is the declarative MMIO region registry: a 4-KiB page of
// typed ports (offset, width, access flags, reset default, symbolic name)
// backed by a scratch buffer, with one read and one write dispatch hook per
// region. It is the Go-native equivalent of the source's textual macro
// tables that expand once to declarations and once to dispatch (spec.md
// §9 "MMIO port declaration").
package mmio
