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

// Package scheduler is the machine's single-threaded cooperative run loop:
// modules are registered leaves-first and called once per timeslice with a
// nanosecond budget, returning the amount actually consumed so any module
// can shorten the slice. Ported from lxdream's dreamcast.c module table and
// dreamcast_run loop.
package scheduler
