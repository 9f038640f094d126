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

// Package errors is a helper package for the plain Go error type. We think
// of these errors as curated errors: created with a fixed message pattern
// (see the Category constants) so a caller can later ask "was this a
// BadAddress" with Is() rather than string-matching.
//
// The Error() implementation normalises a chain of wrapped curated errors so
// adjacent duplicate parts collapse. This means a function can always wrap
// the error it receives without first checking whether the message is
// already present in the chain:
//
//	func A() error {
//		if err := B(); err != nil {
//			return errors.Errorf("scene assembly: %v", err)
//		}
//		return nil
//	}
package errors
