package clocks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katanacore/machine/hardware/clocks"
)

func TestLineTimeNanos(t *testing.T) {
	// 864 dots at 27MHz is pvr2.c's own DISP_TOTAL reset default.
	got := clocks.LineTimeNanos(clocks.DotClockNTSC, 864)
	assert.Equal(t, int64(32000), got)
}

func TestLineTimeNanosZeroDotClock(t *testing.T) {
	assert.Equal(t, int64(0), clocks.LineTimeNanos(0, 864))
}
