package arm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/hardware/arm"
)

type flatMem struct {
	data [0x10000]byte
}

func (m *flatMem) Read32(addr uint32) uint32 {
	a := addr & 0xFFFC
	return uint32(m.data[a]) | uint32(m.data[a+1])<<8 | uint32(m.data[a+2])<<16 | uint32(m.data[a+3])<<24
}
func (m *flatMem) Read16(addr uint32) uint16 {
	a := addr & 0xFFFE
	return uint16(m.data[a]) | uint16(m.data[a+1])<<8
}
func (m *flatMem) Read8(addr uint32) uint8 { return m.data[addr&0xFFFF] }
func (m *flatMem) Write32(addr uint32, v uint32) {
	a := addr & 0xFFFC
	m.data[a] = byte(v)
	m.data[a+1] = byte(v >> 8)
	m.data[a+2] = byte(v >> 16)
	m.data[a+3] = byte(v >> 24)
}
func (m *flatMem) Write16(addr uint32, v uint16) {
	a := addr & 0xFFFE
	m.data[a] = byte(v)
	m.data[a+1] = byte(v >> 8)
}
func (m *flatMem) Write8(addr uint32, v uint8) { m.data[addr&0xFFFF] = v }

func (m *flatMem) putInstr(addr uint32, instr uint32) { m.Write32(addr, instr) }

// S1 — Simple ARM ADD with flag update.
func TestADDSFlagUpdate(t *testing.T) {
	mem := &flatMem{}
	mem.putInstr(0, 0xE0910000) // ADDS r0, r1, r0
	c := arm.New(mem)
	c.SwitchMode(arm.ModeSupervisor)
	c.R[0] = 5
	c.R[1] = 7

	require.NoError(t, c.Step())

	assert.Equal(t, uint32(12), c.R[0])
	assert.False(t, c.CPSR&arm.FlagN != 0)
	assert.False(t, c.CPSR&arm.FlagZ != 0)
	assert.False(t, c.CPSR&arm.FlagC != 0)
	assert.False(t, c.CPSR&arm.FlagV != 0)
}

// S3 — MSR + mode switch.
func TestMSRModeSwitch(t *testing.T) {
	mem := &flatMem{}
	c := arm.New(mem)
	c.R[13] = 0x1000
	c.SwitchMode(arm.ModeUser)
	c.R[13] = 0x2000
	c.SwitchMode(arm.ModeSupervisor)
	require.Equal(t, uint32(0x1000), c.R[13])

	// MSR CPSR_c, r0 with r0 = MODE_USER in the control byte.
	c.R[0] = uint32(arm.ModeUser)
	mem.putInstr(0, 0xE121F000) // MSR CPSR_c, r0 (field mask = 0001, Rm = r0)
	require.NoError(t, c.Step())

	assert.Equal(t, arm.ModeUser, c.Mode())
	assert.Equal(t, uint32(0x2000), c.R[13])
}

func TestModeSwitchRoundTrip(t *testing.T) {
	mem := &flatMem{}
	c := arm.New(mem)
	c.SwitchMode(arm.ModeSupervisor)
	c.R[13] = 0xAAAA
	c.R[14] = 0xBBBB
	c.SetSPSR(0xDEADBEEF)

	c.SwitchMode(arm.ModeIRQ)
	c.R[13] = 0x1111
	c.SwitchMode(arm.ModeSupervisor)

	assert.Equal(t, uint32(0xAAAA), c.R[13])
	assert.Equal(t, uint32(0xBBBB), c.R[14])
	assert.Equal(t, uint32(0xDEADBEEF), c.SPSR())
}

func TestBranchAndLink(t *testing.T) {
	mem := &flatMem{}
	c := arm.New(mem)
	c.R[15] = 0
	mem.putInstr(0, 0xEB000002) // BL #8 (offset 2 words ahead of pc+8)

	require.NoError(t, c.Step())

	assert.Equal(t, uint32(4), c.R[14])
	assert.Equal(t, uint32(0+8+2*4), c.R[15])
}

func TestConditionalSkip(t *testing.T) {
	mem := &flatMem{}
	c := arm.New(mem)
	mem.putInstr(0, 0x00000000) // ANDEQ r0, r0, r0: EQ cond, Z clear -> skipped
	before := c.R[0]
	require.NoError(t, c.Step())
	assert.Equal(t, before, c.R[0])
}

func TestUndefinedInstructionRaisesException(t *testing.T) {
	mem := &flatMem{}
	c := arm.New(mem)
	mem.putInstr(0, 0xFFFFFFFF) // cond == 0xF
	require.NoError(t, c.Step())
	assert.Equal(t, arm.ModeUndefined, c.Mode())
}
