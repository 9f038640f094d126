package arm

// Mode is one of the seven ARM operating modes, packed in CPSR bits 0-4.
type Mode uint32

const (
	ModeUser       Mode = 0x10
	ModeFIQ        Mode = 0x11
	ModeIRQ        Mode = 0x12
	ModeSupervisor Mode = 0x13
	ModeAbort      Mode = 0x17
	ModeUndefined  Mode = 0x1B
	ModeSystem     Mode = 0x1F
)

// CPSR bit positions (spec.md §4.F "Mode switching").
const (
	FlagT uint32 = 1 << 5  // Thumb — always 0 in this core, ARM mode only
	FlagF uint32 = 1 << 6  // FIQ disable
	FlagI uint32 = 1 << 7  // IRQ disable
	FlagV uint32 = 1 << 28
	FlagC uint32 = 1 << 29
	FlagZ uint32 = 1 << 30
	FlagN uint32 = 1 << 31

	modeMask = 0x1F
)

// bank holds the private registers one exception mode keeps out of the
// active bank: r13/r14 for every mode but FIQ, which also privatizes
// r8-r12, plus that mode's SPSR (spec.md §3 "Data Model").
type bank struct {
	r13, r14 uint32
	spsr     uint32
}

// CPU is the full ARM7TDMI register file plus the condition-bit cache
// (spec.md §3 "A single structure with...").
type CPU struct {
	R    [16]uint32 // active bank; R[15] is PC
	CPSR uint32

	fiq  bank
	fiqR [5]uint32 // active-bank-private r8-r12 while in FIQ
	usrR [5]uint32 // user-mode r8-r12, restored on leaving FIQ
	irq  bank
	und  bank
	abt  bank
	svc  bank
	usr  bank // r13/r14 shared by User and System; spsr field unused

	// condition bit cache, kept consistent with CPSR at every suspension
	// point (spec.md §3 invariant).
	n, z, c, v bool

	// shiftC carries the barrel shifter's carry-out across one
	// instruction for the flag-setting variants (spec.md §4.F "Barrel
	// shifter").
	shiftC bool

	instrCount uint64

	// lastSPSR backs SPSR reads taken while in User/System mode, which
	// have no private SPSR slot of their own (DESIGN.md Open Question
	// §9(a)).
	lastSPSR uint32

	Mem   Bus
	Break Breakpoints

	irqLine, fiqLine bool

	breakpointHit bool
}

// Bus is the narrow memory interface the interpreter drives (implemented
// by armmem.Map).
type Bus interface {
	Read32(addr uint32) uint32
	Read16(addr uint32) uint16
	Read8(addr uint32) uint8
	Write32(addr uint32, v uint32)
	Write16(addr uint32, v uint16)
	Write8(addr uint32, v uint8)
}

// New builds a CPU wired to mem, already reset into supervisor mode with
// interrupts disabled, matching arm_reset's startup state.
func New(mem Bus) *CPU {
	c := &CPU{Mem: mem}
	c.Reset()
	return c
}

// Reset wipes all state and re-enters in supervisor mode with both
// interrupt lines masked (spec.md §4.F "reset (entry via arm_reset, wipes
// state)").
func (c *CPU) Reset() {
	*c = CPU{Mem: c.Mem, Break: c.Break}
	c.CPSR = uint32(ModeSupervisor) | FlagI | FlagF
	c.syncFlagsFromCPSR()
	c.R[15] = 0
}

// Mode returns the CPU's current operating mode.
func (c *CPU) Mode() Mode { return Mode(c.CPSR & modeMask) }

func (c *CPU) syncFlagsFromCPSR() {
	c.n = c.CPSR&FlagN != 0
	c.z = c.CPSR&FlagZ != 0
	c.c = c.CPSR&FlagC != 0
	c.v = c.CPSR&FlagV != 0
}

func (c *CPU) syncCPSRFromFlags() {
	c.CPSR &^= FlagN | FlagZ | FlagC | FlagV
	if c.n {
		c.CPSR |= FlagN
	}
	if c.z {
		c.CPSR |= FlagZ
	}
	if c.c {
		c.CPSR |= FlagC
	}
	if c.v {
		c.CPSR |= FlagV
	}
}

// conditionPasses evaluates the 4-bit condition field against the cached
// N/Z/C/V flags.
func (c *CPU) conditionPasses(cond uint32) bool {
	switch cond {
	case 0x0: // EQ
		return c.z
	case 0x1: // NE
		return !c.z
	case 0x2: // CS/HS
		return c.c
	case 0x3: // CC/LO
		return !c.c
	case 0x4: // MI
		return c.n
	case 0x5: // PL
		return !c.n
	case 0x6: // VS
		return c.v
	case 0x7: // VC
		return !c.v
	case 0x8: // HI
		return c.c && !c.z
	case 0x9: // LS
		return !c.c || c.z
	case 0xA: // GE
		return c.n == c.v
	case 0xB: // LT
		return c.n != c.v
	case 0xC: // GT
		return !c.z && c.n == c.v
	case 0xD: // LE
		return c.z || c.n != c.v
	case 0xE: // AL
		return true
	default: // 0xF NV — handled by the caller as undefined
		return false
	}
}

// bankFor returns the r13/r14 bank slot for mode. User and System are
// architecturally distinct modes but bank the same physical r13/r14, so
// both return &c.usr (spec.md §3 banking).
func (c *CPU) bankFor(m Mode) *bank {
	switch m {
	case ModeFIQ:
		return &c.fiq
	case ModeIRQ:
		return &c.irq
	case ModeUndefined:
		return &c.und
	case ModeAbort:
		return &c.abt
	case ModeSupervisor:
		return &c.svc
	case ModeUser, ModeSystem:
		return &c.usr
	default:
		return nil
	}
}

// SwitchMode flushes the active bank into the outgoing mode's private
// slots, then loads the incoming mode's slots into the active bank,
// exactly as spec.md §4.F "Mode switching" requires: flush before load,
// and the CPSR mode bits committed last, after the load.
func (c *CPU) SwitchMode(to Mode) {
	from := c.Mode()
	if from == to {
		return
	}

	if fromBank := c.bankFor(from); fromBank != nil {
		fromBank.r13 = c.R[13]
		fromBank.r14 = c.R[14]
	}

	// r8-r12 have only two homes: the FIQ-private bank and the shared
	// user bank every other mode uses. Save the active set into whichever
	// bank we're leaving before loading the other (spec.md §3 "a
	// user-bank spill (r8-r14) used when in FIQ").
	if from == ModeFIQ {
		copy(c.fiqR[:], c.R[8:13])
		copy(c.R[8:13], c.usrR[:])
	} else if to == ModeFIQ {
		copy(c.usrR[:], c.R[8:13])
		copy(c.R[8:13], c.fiqR[:])
	}

	if toBank := c.bankFor(to); toBank != nil {
		c.R[13] = toBank.r13
		c.R[14] = toBank.r14
	}
	c.CPSR = (c.CPSR &^ modeMask) | uint32(to)
}

// hasSPSR reports whether mode keeps a private SPSR. User and System do
// not: reading SPSR there is UNPREDICTABLE on real hardware.
func hasSPSR(m Mode) bool {
	return m != ModeUser && m != ModeSystem
}

// SPSR returns the current mode's saved PSR. In User/System mode there is
// no private slot; this core returns whatever mode last wrote through it
// (see DESIGN.md Open Question §9(a)).
func (c *CPU) SPSR() uint32 {
	if m := c.Mode(); hasSPSR(m) {
		return c.bankFor(m).spsr
	}
	return c.lastSPSR
}

// SetSPSR writes the current mode's saved PSR slot. Every write also lands
// in the single slot that User/System SPSR reads return.
func (c *CPU) SetSPSR(v uint32) {
	c.lastSPSR = v
	if m := c.Mode(); hasSPSR(m) {
		c.bankFor(m).spsr = v
	}
}
