package arm

// ARMBaseRate and AICASampleRate fix the cycles-per-sample ratio RunSlice
// converts a nanosecond budget through: one sample is ARMBaseRate/
// AICASampleRate ARM cycles (spec.md §4.F "Time budget" — the spec's own
// "(ARM_BASE_RATE*1e6)/AICA_SAMPLE_RATE" expresses ARM_BASE_RATE in MHz;
// here it is held in Hz already, so the *1e6 is folded in rather than
// reapplied).
const (
	ARMBaseRate    = 67_737_600 // Hz
	AICASampleRate = 44_100     // Hz

	cyclesPerSample = ARMBaseRate / AICASampleRate
)

// TimerCheck is called once per sample; it reports whether the AICA
// sample-rate timer wrapped and should raise its event. Wired by the
// hardware/aica module that owns the timer register.
type TimerCheck func() (wrapped bool)

// RunSlice converts ns into samples via the fixed ARM/AICA rate ratio and
// executes one sample's worth of cycles per outer iteration, checking the
// AICA timer after each (spec.md §4.F "Time budget"). It returns the
// number of samples actually executed, which may be less than requested
// if a breakpoint stops execution early.
func (c *CPU) RunSlice(ns int64, onTimerWrap func(), checkTimer TimerCheck) int64 {
	requestedSamples := (ns * AICASampleRate) / 1_000_000_000
	var executed int64

	for ; executed < requestedSamples; executed++ {
		for cycles := int64(0); cycles < cyclesPerSample; cycles++ {
			if err := c.Step(); err != nil {
				return executed
			}
			if c.Break.check(c.R[15]) {
				c.breakpointHit = true
				return executed + 1
			}
		}
		if checkTimer != nil && checkTimer() && onTimerWrap != nil {
			onTimerWrap()
		}
	}
	return executed
}

// BreakpointHit reports whether the most recent RunSlice stopped because
// of a breakpoint rather than exhausting its budget, and clears the flag.
func (c *CPU) BreakpointHit() bool {
	hit := c.breakpointHit
	c.breakpointHit = false
	return hit
}
