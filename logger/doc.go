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

// Package logger is a tag-based logging facility for the machine core.
// Call sites look like:
//
//	logger.Log("arm", "reset vector fetched")
//	logger.Logf("asic", "pirq0 raised: %08x", bits)
//
// Every entry also carries a Severity (see errors.Severity); entries below
// errors.WARN are still recorded in the tail ring buffer but are only handed
// to the underlying zap core at a level matching their severity, so a
// consumer tailing the ring buffer sees everything while a consumer of the
// structured zap sink can filter by level the normal way.
//
// Permission gates whether the call site is allowed to log at all: a module
// that has been told to keep quiet (e.g. trace gated off by config) passes a
// Permission whose AllowLogging reports false, and the entry is dropped
// before it reaches either sink.
package logger
