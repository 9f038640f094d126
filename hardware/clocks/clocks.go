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

// Package clocks defines the fixed clock rates the machine's modules are
// driven from: the SH4 host rate, the PVR2 pixel (dot) clock, and the two
// video standards' scanline geometry (spec.md §4.F "Time budget";
// original_source/src/pvr2/pvr2.c's line_time_ns/total_lines computation).
//
// hardware/arm carries its own ARMBaseRate/AICASampleRate pair next to the
// RunSlice code that consumes them; this package holds the remaining,
// video-side rates so hardware/machine's scanline driver isn't threading
// magic numbers of its own.
package clocks

// SH4Rate is the host CPU clock (spec.md §4 glossary "SH4"); 200MHz is the
// rate real Dreamcast hardware runs its SH4-7750 at.
const SH4Rate = 200_000_000 // Hz

// Dot clocks for the two PVR2 video standards pvr2.c's VIDEO_CFG register
// selects between (pvr2.c's pvr2_state.dot_clock, set from bit 23 of
// VIDEO_CFG: 26.9MHz for VGA/PAL-discrete, 13.5MHz otherwise). katanacore's
// supplemented scanline driver (hardware/machine) only ever needs the two
// broadcast rates; the VGA third option stays out of scope (spec.md's GPU
// Non-goals exclude display-timing fidelity beyond event firing).
const (
	DotClockNTSC = 27_000_000 // Hz
	DotClockPAL  = 13_500_000 // Hz
)

// Scanline geometry for the two broadcast standards (pvr2.c's
// pvr2_state.total_lines per region). hardware/machine's scanline driver
// takes its line count from DISP_TOTAL's reset default instead (see
// DESIGN.md Open Question decisions) and uses only RetraceLines from here.
const (
	LinesPerFieldNTSC = 263
	LinesPerFieldPAL  = 313

	// RetraceLines is how many trailing lines of a field fall in vertical
	// retrace, matching pvr2.c's pvr2_reset (total_lines - 6).
	RetraceLines = 6
)

// LineTimeNanos returns the duration of one scanline at dotClock Hz with
// lineSizeDots dots per line, in nanoseconds — pvr2.c's
// "line_time_ns = 1000000 * line_size / dot_clock" (microseconds there;
// this returns nanoseconds, so the constant is scaled up by 1000).
func LineTimeNanos(dotClock uint32, lineSizeDots uint32) int64 {
	if dotClock == 0 {
		return 0
	}
	return int64(1_000_000_000) * int64(lineSizeDots) / int64(dotClock)
}
