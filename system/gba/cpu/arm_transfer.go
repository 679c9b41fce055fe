package cpu

func (c *CPU) armSingleDataTransfer(instr uint32) int {
	registerOffset := instr&0x02000000 != 0
	preIndex := instr&0x01000000 != 0
	up := instr&0x00800000 != 0
	byteTransfer := instr&0x00400000 != 0
	writeBack := instr&0x00200000 != 0
	load := instr&0x00100000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF

	var offset uint32
	if !registerOffset {
		offset = instr & 0xFFF
	} else {
		rm := instr & 0xF
		shiftType := ShiftType((instr >> 5) & 0x3)
		amount := (instr >> 7) & 0x1F
		offset, _ = barrelShift(shiftType, c.R(int(rm)), amount, false, c.Flag(FlagC))
	}

	base := c.R(int(rn))
	addr := base
	if preIndex {
		addr = applyOffset(base, offset, up)
	}

	if load {
		var value uint32
		if byteTransfer {
			value = uint32(c.bus.Read8(addr))
		} else {
			value = c.readRotatedWord(addr)
		}
		c.SetR(int(rd), value)
	} else {
		value := c.regOperand(rd)
		if byteTransfer {
			c.bus.Write8(addr, uint8(value))
		} else {
			c.bus.Write32(addr, value)
		}
	}

	if !preIndex {
		addr = applyOffset(base, offset, up)
	}
	if (!preIndex || writeBack) && rn != rd {
		c.SetR(int(rn), addr)
	}

	if load && rd == 15 {
		c.branchTo(c.R(15) &^ 3)
		return 5
	}
	return 3
}

// readRotatedWord replicates the documented LDR misaligned-access
// behaviour: the word is read from the word-aligned address and then
// rotated right by the byte offset within the word, rather than faulting.
func (c *CPU) readRotatedWord(addr uint32) uint32 {
	aligned := addr &^ 3
	value := c.bus.Read32(aligned)
	rotate := (addr & 3) * 8
	if rotate == 0 {
		return value
	}
	result, _ := shiftROR(value, rotate, false, false)
	return result
}

func applyOffset(base, offset uint32, up bool) uint32 {
	if up {
		return base + offset
	}
	return base - offset
}

// armHalfwordTransfer handles LDRH/STRH/LDRSB/LDRSH (ARM.10) with
// either an immediate split offset or a register offset.
func (c *CPU) armHalfwordTransfer(instr uint32) int {
	preIndex := instr&0x01000000 != 0
	up := instr&0x00800000 != 0
	immediateOffset := instr&0x00400000 != 0
	writeBack := instr&0x00200000 != 0 || !preIndex
	load := instr&0x00100000 != 0
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF
	op := (instr >> 5) & 0x3

	var offset uint32
	if immediateOffset {
		offset = ((instr>>8)&0xF)<<4 | (instr & 0xF)
	} else {
		rm := instr & 0xF
		offset = c.R(int(rm))
	}

	base := c.R(int(rn))
	addr := base
	if preIndex {
		addr = applyOffset(base, offset, up)
	}

	switch op {
	case 0x1: // unsigned halfword
		if load {
			c.SetR(int(rd), uint32(c.bus.Read16(addr)))
		} else {
			c.bus.Write16(addr, uint16(c.regOperand(rd)))
		}
	case 0x2: // signed byte
		v := c.bus.Read8(addr)
		c.SetR(int(rd), signExtend(uint32(v), 8))
	case 0x3: // signed halfword
		v := c.bus.Read16(addr)
		c.SetR(int(rd), signExtend(uint32(v), 16))
	}

	if !preIndex {
		addr = applyOffset(base, offset, up)
	}
	if writeBack && rn != rd {
		c.SetR(int(rn), addr)
	}
	return 3
}

func signExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// armBlockDataTransfer handles LDM/STM (ARM.11), including the
// documented empty-register-list special case and the S-bit's
// force-USR-bank behaviour for user-bank transfers.
func (c *CPU) armBlockDataTransfer(instr uint32) int {
	preIndex := instr&0x01000000 != 0
	up := instr&0x00800000 != 0
	forceUser := instr&0x00400000 != 0
	writeBack := instr&0x00200000 != 0
	load := instr&0x00100000 != 0
	rn := (instr >> 16) & 0xF
	rlist := uint16(instr & 0xFFFF)

	savedMode := c.Mode()
	if forceUser && !(load && rlist&0x8000 != 0) {
		c.SetCPSR((c.CPSR() &^ 0x1F) | uint32(ModeUSR))
	}

	base := c.R(int(rn))

	if rlist == 0 {
		// documented degenerate case: transfers r15 alone and steps the
		// base by a full 16-word frame regardless of direction
		if load {
			c.branchTo(c.bus.Read32(base) &^ 3)
		} else {
			c.bus.Write32(base, c.PC()+8)
		}
		if up {
			c.SetR(int(rn), base+0x40)
		} else {
			c.SetR(int(rn), base-0x40)
		}
		if forceUser {
			c.SetCPSR((c.CPSR() &^ 0x1F) | uint32(savedMode))
		}
		return 3
	}

	addr := base
	count := 0
	firstReg := -1
	for i := 0; i < 16; i++ {
		if rlist&(1<<uint(i)) != 0 {
			if firstReg < 0 {
				firstReg = i
			}
			count++
		}
	}

	step := func() {
		if up {
			addr += 4
		} else {
			addr -= 4
		}
	}

	order := make([]int, 0, count)
	if up {
		for i := 0; i < 16; i++ {
			if rlist&(1<<uint(i)) != 0 {
				order = append(order, i)
			}
		}
	} else {
		for i := 15; i >= 0; i-- {
			if rlist&(1<<uint(i)) != 0 {
				order = append(order, i)
			}
		}
	}

	for _, reg := range order {
		if preIndex {
			step()
		}
		if load {
			if reg == int(rn) && reg == firstReg {
				writeBack = false
			}
			value := c.bus.Read32(addr)
			if reg == 15 {
				c.branchTo(value &^ 3)
			} else {
				c.SetR(reg, value)
			}
		} else {
			if reg == int(rn) && reg == firstReg {
				c.bus.Write32(addr, base)
			} else {
				c.bus.Write32(addr, c.regOperand(uint32(reg)))
			}
		}
		if !preIndex {
			step()
		}
		if writeBack {
			c.SetR(int(rn), addr)
		}
	}

	if forceUser {
		c.SetCPSR((c.CPSR() &^ 0x1F) | uint32(savedMode))
	}
	if load && rlist&0x8000 != 0 {
		return 5
	}
	return 3
}
