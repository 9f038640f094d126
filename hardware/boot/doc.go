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

// Package boot parses and validates the 256-byte bootstrap header every
// guest disc/boot image carries: the two fixed ASCII identifiers and the
// CRC-16 over the product-id field (spec.md §6 "Boot header magic").
// Ported from lxdream's bootstrap.c; disc-image track/session format
// parsing stays out of scope (spec.md §1) — this package only ever sees a
// flat 256-byte buffer handed to it by the caller.
package boot
