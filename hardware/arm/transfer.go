package arm

// execLoadStore implements LDR/STR/LDRB/STRB and the T-suffixed
// unprivileged variants, which this single-mode core treats identically
// to their non-T counterparts since there is no separate translation
// context to force to user mode (spec.md §4.F step 6 "01").
func (c *CPU) execLoadStore(instr uint32) error {
	immediate := instr&0x02000000 == 0
	pre := instr&0x01000000 != 0
	add := instr&0x00800000 != 0
	byteWidth := instr&0x00400000 != 0
	writeback := instr&0x00200000 != 0
	load := instr&0x00100000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF

	var offset uint32
	if immediate {
		offset = instr & 0xFFF
	} else {
		rm := instr & 0xF
		kind := shiftType((instr >> 5) & 0x3)
		amount := (instr >> 7) & 0x1F
		offset, _ = shiftWithCarry(kind, c.R[rm], amount, c.c)
	}

	base := c.R[rn]
	effective, written := addrMode2(base, offset, pre, add, writeback)

	if !pre || writeback {
		c.R[rn] = written
	}

	if load {
		if byteWidth {
			c.R[rd] = uint32(c.Mem.Read8(effective))
		} else {
			c.R[rd] = readUnalignedWord(c.Mem, effective)
		}
		if rd == 15 {
			c.R[15] &^= 0x3
		}
	} else {
		v := c.reg(rd)
		if rd == 15 {
			v += 4 // STR of pc stores instruction address + 12
		}
		if byteWidth {
			c.Mem.Write8(effective, uint8(v))
		} else {
			c.Mem.Write32(effective, v)
		}
	}
	return nil
}

// readUnalignedWord applies the ARM "rotated word" rule for a misaligned
// LDR: read the aligned word containing the address, then rotate right by
// 8*(address mod 4).
func readUnalignedWord(mem Bus, addr uint32) uint32 {
	aligned := addr &^ 0x3
	v := mem.Read32(aligned)
	rot := (addr & 0x3) * 8
	if rot == 0 {
		return v
	}
	return (v >> rot) | (v << (32 - rot))
}

// execBranchOrMultiple implements B/BL (bit25=1) and LDM/STM (bit25=0)
// (spec.md §4.F step 6 "10").
func (c *CPU) execBranchOrMultiple(instr uint32) error {
	if instr&0x02000000 != 0 {
		return c.execBranch(instr)
	}
	return c.execBlockTransfer(instr)
}

// execBranch implements B and BL: sign-extended 24-bit word offset
// relative to the pc-read value (instruction address + 8).
func (c *CPU) execBranch(instr uint32) error {
	link := instr&0x01000000 != 0
	offset := instr & 0x00FFFFFF
	if offset&0x00800000 != 0 {
		offset |= 0xFF000000
	}
	target := c.pcRead() + (offset << 2)
	if link {
		c.R[14] = c.R[15]
	}
	c.R[15] = target
	return nil
}

// execBlockTransfer implements LDM/STM, all four increment/decrement x
// before/after combinations, with the S-bit variant restoring CPSR from
// SPSR when r15 is in the register list (spec.md §4.F step 6 "10").
func (c *CPU) execBlockTransfer(instr uint32) error {
	pre := instr&0x01000000 != 0
	add := instr&0x00800000 != 0
	sBit := instr&0x00400000 != 0
	writeback := instr&0x00200000 != 0
	load := instr&0x00100000 != 0
	rn := (instr >> 16) & 0xF
	list := instr & 0xFFFF

	var regs []uint32
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			regs = append(regs, uint32(i))
		}
	}

	base := c.R[rn]
	count := uint32(len(regs))
	var start uint32
	if add {
		start = base
	} else {
		start = base - count*4
	}

	addr := start
	if pre == add {
		addr += 4
	}

	// usrBankOverride applies when S is set, the active mode is privileged
	// (not User/System), and this is a non-r15 LDM or any STM: the transfer
	// reads/writes the User-mode r8-r15 bank rather than the active bank
	// (spec.md §3 banking).
	usrBankOverride := sBit && !(load && list&0x8000 != 0) && hasSPSR(c.Mode())

	for _, r := range regs {
		if load {
			v := readUnalignedWord(c.Mem, addr)
			if usrBankOverride {
				c.writeUserReg(r, v)
			} else {
				c.R[r] = v
			}
		} else {
			v := c.regForSTM(r, usrBankOverride)
			c.Mem.Write32(addr, v)
		}
		addr += 4
	}

	if load && sBit && list&0x8000 != 0 {
		c.CPSR = c.SPSR()
		c.syncFlagsFromCPSR()
	}

	if writeback {
		if add {
			c.R[rn] = base + count*4
		} else {
			c.R[rn] = base - count*4
		}
	}
	return nil
}

// writeUserReg and regForSTM read/write the User-mode register bank
// directly (c.usr and, for r8-r12 while in FIQ, c.usrR), bypassing
// whatever mode is currently active, for the S-bit block-transfer variant.
// The active mode is never User/System when these run — that case takes
// the non-override path in execBlockTransfer — so c.usr is always the
// correct target, never the active mode's own private bank.
func (c *CPU) writeUserReg(r uint32, v uint32) {
	if r >= 8 && r <= 12 && c.Mode() == ModeFIQ {
		c.usrR[r-8] = v
		return
	}
	switch r {
	case 13:
		c.usr.r13 = v
	case 14:
		c.usr.r14 = v
	default:
		c.R[r] = v
	}
}

func (c *CPU) regForSTM(r uint32, usrBank bool) uint32 {
	if !usrBank {
		return c.reg(r)
	}
	if r >= 8 && r <= 12 && c.Mode() == ModeFIQ {
		return c.usrR[r-8]
	}
	switch r {
	case 13:
		return c.usr.r13
	case 14:
		return c.usr.r14
	default:
		return c.reg(r)
	}
}
