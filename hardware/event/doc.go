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

// Package event is the machine's one-shot virtual-time timer queue: a short
// list of sub-second entries kept sorted by due time, and a long list of
// multi-second entries migrated one second at a time by a periodic sweep.
// Ported from the event queue behaviour of lxdream's eventq.c.
package event
