package aica

import (
	"encoding/binary"
	"io"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/hardware/arm"
	"github.com/katanacore/machine/hardware/arm/armmem"
	"github.com/katanacore/machine/hardware/asic"
	"github.com/katanacore/machine/hardware/mmio"
)

// EventRaiser is the narrow view of the interrupt multiplexer the AICA
// timer needs: one method to signal that the sample-rate timer wrapped.
// Satisfied structurally by *asic.ASIC.
type EventRaiser interface {
	Raise(event int)
}

// resetHeld is AICA_RESET's power-on default: the ARM starts held in reset
// until software clears bit 0 (original_source/aica/aica.h "AICA_RESET ...
// 1").
const resetHeld = 1

// AICA is the sound sub-system: the ARM7TDMI core, its narrow memory map,
// and the handful of control registers (master/CDDA volume, IRQ timer,
// reset) that gate it (spec.md §4.H).
type AICA struct {
	cpu *arm.CPU
	mem *armmem.Map

	raiser EventRaiser

	reset      uint32
	masterVol  uint32
	cddaVolL   uint32
	cddaVolR   uint32
	timerValue uint32 // AICA_TIMER reload/compare register
	timerCount uint32 // free-running sample counter compared against timerValue
}

// wireCore attaches the ARM core over soundRAM and the three channel/
// control regions — the same Region values installed on the SH4 bus,
// since ARM and SH4 see the same physical registers through two
// different address-space windows (original_source/aica/aica.h
// "relative to the SH4 memory map... rather than the ARM addresses").
// Called once the control region (built against this *AICA by
// newControlRegion) exists.
func (a *AICA) wireCore(soundRAM []byte, regions [3]*mmio.Region) {
	a.mem = armmem.New(soundRAM, regions)
	a.cpu = arm.New(a.mem)
}

// CPU exposes the underlying ARM core for save-state wiring and tests.
func (a *AICA) CPU() *arm.CPU { return a.cpu }

// armEnabled reports whether AICA_RESET's low bit is clear, the ARM-running
// condition (spec.md §4.H "reset register's low bit, when cleared, enables
// the ARM").
func (a *AICA) armEnabled() bool { return a.reset&1 == 0 }

// writeReset applies a new AICA_RESET value, re-running the ARM's own
// reset sequence on the 1->0 transition exactly as the original hardware
// module does (original_source/aica/aica.c mmio_region_AICA2_write).
func (a *AICA) writeReset(value uint32) {
	was := a.reset
	a.reset = value
	if was&1 == 1 && value&1 == 0 {
		a.cpu.Reset()
	}
}

// checkTimer advances the free-running sample counter by one and reports
// whether it wrapped past timerValue, called once per ARM sample
// (spec.md §4.F "Time budget" / §4.H "owns a software timer event").
func (a *AICA) checkTimer() bool {
	a.timerCount++
	if a.timerCount <= a.timerValue {
		return false
	}
	a.timerCount = 0
	return true
}

func (a *AICA) onTimerWrap() {
	if a.raiser != nil {
		a.raiser.Raise(asic.EventAICA)
	}
}

// RunSlice forwards ns to the ARM interpreter when enabled, converting its
// samples-executed return back to nanoseconds; otherwise the full slice
// elapses with the ARM untouched (spec.md §4.H "run_slice checks this
// bit... otherwise returns the full slice unused").
func (a *AICA) RunSlice(ns int64) int64 {
	if !a.armEnabled() {
		return ns
	}
	requested := (ns * arm.AICASampleRate) / 1_000_000_000
	executed := a.cpu.RunSlice(ns, a.onTimerWrap, a.checkTimer)
	if executed >= requested {
		return ns
	}
	return (executed * 1_000_000_000) / arm.AICASampleRate
}

// Reset re-asserts AICA_RESET and wipes the ARM core, matching power-on
// state (spec.md §4.H).
func (a *AICA) Reset() {
	a.reset = resetHeld
	a.timerCount = 0
	a.cpu.Reset()
}

func (a *AICA) saveState(w io.Writer) error {
	fields := []uint32{a.reset, a.masterVol, a.cddaVolL, a.cddaVolR, a.timerValue, a.timerCount}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return errors.Errorf("aica: save: %v", err)
		}
	}
	return nil
}

func (a *AICA) loadState(r io.Reader) error {
	fields := []*uint32{&a.reset, &a.masterVol, &a.cddaVolL, &a.cddaVolR, &a.timerValue, &a.timerCount}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return errors.Errorf("aica: load: %v", err)
		}
	}
	return nil
}
