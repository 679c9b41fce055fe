package cpu

// executeThumb decodes and runs one 16-bit THUMB instruction. THUMB
// instructions carry no condition field (other than the conditional
// branch format, checked inline), so there is no top-level Check call
// here the way there is in executeARM.
func (c *CPU) executeThumb(instr uint16) int {
	switch {
	case instr&0xF800 == 0x1800:
		return c.thumbAddSubtract(instr)
	case instr&0xE000 == 0x0000:
		return c.thumbMoveShifted(instr)
	case instr&0xE000 == 0x2000:
		return c.thumbMCASImmediate(instr)
	case instr&0xFC00 == 0x4000:
		return c.thumbALUOps(instr)
	case instr&0xFC00 == 0x4400:
		return c.thumbHiRegBX(instr)
	case instr&0xF800 == 0x4800:
		return c.thumbLoadPCRelative(instr)
	case instr&0xF200 == 0x5000:
		return c.thumbLoadStoreRegOffset(instr)
	case instr&0xF200 == 0x5200:
		return c.thumbLoadStoreSignExtended(instr)
	case instr&0xE000 == 0x6000:
		return c.thumbLoadStoreImmOffset(instr)
	case instr&0xF000 == 0x8000:
		return c.thumbLoadStoreHalfword(instr)
	case instr&0xF000 == 0x9000:
		return c.thumbLoadStoreSPRelative(instr)
	case instr&0xF000 == 0xA000:
		return c.thumbLoadAddress(instr)
	case instr&0xFF00 == 0xB000:
		return c.thumbAddOffsetSP(instr)
	case instr&0xF600 == 0xB400:
		return c.thumbPushPop(instr)
	case instr&0xF000 == 0xC000:
		return c.thumbMultipleLoadStore(instr)
	case instr&0xFF00 == 0xDF00:
		c.RaiseSWI(uint32(instr & 0xFF))
		return 3
	case instr&0xF000 == 0xD000:
		return c.thumbConditionalBranch(instr)
	case instr&0xF800 == 0xE000:
		return c.thumbUnconditionalBranch(instr)
	case instr&0xF000 == 0xF000:
		return c.thumbLongBranchLink(instr)
	default:
		return c.armUndefined()
	}
}

// thumbMoveShifted is THUMB.1: LSL/LSR/ASR Rd, Rs, #imm5.
func (c *CPU) thumbMoveShifted(instr uint16) int {
	op := (instr >> 11) & 0x3
	amount := uint32((instr >> 6) & 0x1F)
	rs := (instr >> 3) & 0x7
	rd := instr & 0x7

	value := c.R(int(rs))
	var result uint32
	carry := c.Flag(FlagC)
	switch op {
	case 0:
		result, carry = shiftLSL(value, amount, carry)
	case 1:
		result, carry = shiftLSR(value, amount, false, carry)
	case 2:
		result, carry = shiftASR(value, amount, false, carry)
	}
	c.SetR(int(rd), result)
	c.setLogicalFlags(result, carry)
	return 1
}

// thumbAddSubtract is THUMB.2: ADD/SUB Rd, Rs, Rn|#imm3.
func (c *CPU) thumbAddSubtract(instr uint16) int {
	immediate := instr&0x0400 != 0
	subtract := instr&0x0200 != 0
	rnOrImm := uint32((instr >> 6) & 0x7)
	rs := (instr >> 3) & 0x7
	rd := instr & 0x7

	input := c.R(int(rs))
	var operand uint32
	if immediate {
		operand = rnOrImm
	} else {
		operand = c.R(int(rnOrImm))
	}

	var result uint32
	if subtract {
		result = input - operand
		c.setArithFlags(input, operand, result, false)
	} else {
		result = input + operand
		c.setArithFlags(input, operand, result, true)
	}
	c.SetR(int(rd), result)
	return 1
}

// thumbMCASImmediate is THUMB.3: MOV/CMP/ADD/SUB Rd, #imm8.
func (c *CPU) thumbMCASImmediate(instr uint16) int {
	op := (instr >> 11) & 0x3
	rd := (instr >> 8) & 0x7
	imm := uint32(instr & 0xFF)

	input := c.R(int(rd))
	switch op {
	case 0x0: // MOV
		c.SetR(int(rd), imm)
		c.setLogicalFlags(imm, c.Flag(FlagC))
	case 0x1: // CMP
		result := input - imm
		c.setArithFlags(input, imm, result, false)
	case 0x2: // ADD
		result := input + imm
		c.SetR(int(rd), result)
		c.setArithFlags(input, imm, result, true)
	case 0x3: // SUB
		result := input - imm
		c.SetR(int(rd), result)
		c.setArithFlags(input, imm, result, false)
	}
	return 1
}

// thumbALUOps is THUMB.4: the 16 two-operand ALU ops over low registers.
func (c *CPU) thumbALUOps(instr uint16) int {
	op := (instr >> 6) & 0xF
	rs := (instr >> 3) & 0x7
	rd := instr & 0x7

	input := c.R(int(rd))
	operand := c.R(int(rs))
	carry := c.Flag(FlagC)

	switch op {
	case 0x0: // AND
		result := input & operand
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, carry)
	case 0x1: // EOR
		result := input ^ operand
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, carry)
	case 0x2: // LSL
		result, co := shiftLSL(input, operand&0xFF, carry)
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, co)
		c.bus.Tick(1)
	case 0x3: // LSR
		result, co := shiftLSR(input, operand&0xFF, true, carry)
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, co)
		c.bus.Tick(1)
	case 0x4: // ASR
		result, co := shiftASR(input, operand&0xFF, true, carry)
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, co)
		c.bus.Tick(1)
	case 0x5: // ADC
		ci := uint32(0)
		if carry {
			ci = 1
		}
		result := input + operand + ci
		c.SetR(int(rd), result)
		c.setArithFlags(input, operand+ci, result, true)
	case 0x6: // SBC
		ci := uint32(0)
		if carry {
			ci = 1
		}
		result := input - operand + ci - 1
		c.SetR(int(rd), result)
		c.setArithFlags(input, operand+ci-1, result, false)
	case 0x7: // ROR
		result, co := shiftROR(input, operand&0xFF, true, carry)
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, co)
		c.bus.Tick(1)
	case 0x8: // TST
		result := input & operand
		c.setLogicalFlags(result, carry)
	case 0x9: // NEG
		result := uint32(0) - operand
		c.SetR(int(rd), result)
		c.setArithFlags(0, operand, result, false)
	case 0xA: // CMP
		result := input - operand
		c.setArithFlags(input, operand, result, false)
	case 0xB: // CMN
		result := input + operand
		c.setArithFlags(input, operand, result, true)
	case 0xC: // ORR
		result := input | operand
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, carry)
	case 0xD: // MUL
		result := input * operand
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, carry)
		c.bus.Tick(mulBoothCycles(operand))
	case 0xE: // BIC
		result := input &^ operand
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, carry)
	case 0xF: // MVN
		result := ^operand
		c.SetR(int(rd), result)
		c.setLogicalFlags(result, carry)
	}
	return 1
}

// thumbHiRegBX is THUMB.5: ADD/CMP/MOV over any register (including
// r8-r15) plus BX.
func (c *CPU) thumbHiRegBX(instr uint16) int {
	op := (instr >> 8) & 0x3
	dstMSB := instr&0x80 != 0
	srcMSB := instr&0x40 != 0
	rd := int(instr&0x7) | boolToInt(dstMSB)<<3
	rs := int((instr>>3)&0x7) | boolToInt(srcMSB)<<3

	input := c.regOperand(uint32(rd))
	operand := c.regOperand(uint32(rs))

	switch op {
	case 0x0: // ADD
		c.writeThumbDest(rd, input+operand)
	case 0x1: // CMP
		result := input - operand
		c.setArithFlags(input, operand, result, false)
	case 0x2: // MOV
		c.writeThumbDest(rd, operand)
	case 0x3: // BX; the ARMv5 BLX form is not decoded, so bit 7 is ignored
		target := operand
		thumb := target&1 != 0
		target &^= 1
		c.SetFlag(FlagT, thumb)
		c.branchTo(target)
	}
	return 1
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// writeThumbDest writes rd; when rd is r15 it branches to value with
// bit 0 cleared and stays in THUMB state (the documented THUMB.5
// dest==PC special case).
func (c *CPU) writeThumbDest(rd int, value uint32) {
	if rd == 15 {
		c.branchTo(value &^ 1)
		return
	}
	c.SetR(rd, value)
}

// thumbLoadPCRelative is THUMB.6: LDR Rd, [PC, #imm8*4].
func (c *CPU) thumbLoadPCRelative(instr uint16) int {
	rd := (instr >> 8) & 0x7
	imm := uint32(instr&0xFF) << 2
	base := (c.PC() + 4) &^ 3
	c.SetR(int(rd), c.bus.Read32(base+imm))
	return 3
}

// thumbLoadStoreRegOffset is THUMB.7: LDR/STR{B} Rd, [Rb, Ro].
func (c *CPU) thumbLoadStoreRegOffset(instr uint16) int {
	load := instr&0x0800 != 0
	byteOp := instr&0x0400 != 0
	ro := (instr >> 6) & 0x7
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	addr := c.R(int(rb)) + c.R(int(ro))
	switch {
	case load && byteOp:
		c.SetR(int(rd), uint32(c.bus.Read8(addr)))
	case load && !byteOp:
		c.SetR(int(rd), c.readRotatedWord(addr))
	case !load && byteOp:
		c.bus.Write8(addr, uint8(c.R(int(rd))))
	default:
		c.bus.Write32(addr, c.R(int(rd)))
	}
	return 3
}

// thumbLoadStoreSignExtended is THUMB.8: LDRH/LDSB/LDSH/STRH, [Rb, Ro].
func (c *CPU) thumbLoadStoreSignExtended(instr uint16) int {
	hFlag := instr&0x0800 != 0
	signExt := instr&0x0400 != 0
	ro := (instr >> 6) & 0x7
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	addr := c.R(int(rb)) + c.R(int(ro))
	switch {
	case !signExt && !hFlag: // STRH
		c.bus.Write16(addr, uint16(c.R(int(rd))))
	case !signExt && hFlag: // LDRH
		c.SetR(int(rd), uint32(c.bus.Read16(addr)))
	case signExt && !hFlag: // LDSB
		c.SetR(int(rd), signExtend(uint32(c.bus.Read8(addr)), 8))
	default: // LDSH
		c.SetR(int(rd), signExtend(uint32(c.bus.Read16(addr)), 16))
	}
	return 3
}

// thumbLoadStoreImmOffset is THUMB.9: LDR/STR{B} Rd, [Rb, #imm5].
func (c *CPU) thumbLoadStoreImmOffset(instr uint16) int {
	byteOp := instr&0x1000 != 0
	load := instr&0x0800 != 0
	imm := uint32((instr >> 6) & 0x1F)
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	if !byteOp {
		imm <<= 2
	}
	addr := c.R(int(rb)) + imm
	switch {
	case load && byteOp:
		c.SetR(int(rd), uint32(c.bus.Read8(addr)))
	case load && !byteOp:
		c.SetR(int(rd), c.readRotatedWord(addr))
	case !load && byteOp:
		c.bus.Write8(addr, uint8(c.R(int(rd))))
	default:
		c.bus.Write32(addr, c.R(int(rd)))
	}
	return 3
}

// thumbLoadStoreHalfword is THUMB.10: LDRH/STRH Rd, [Rb, #imm5*2].
func (c *CPU) thumbLoadStoreHalfword(instr uint16) int {
	load := instr&0x0800 != 0
	imm := uint32((instr>>6)&0x1F) << 1
	rb := (instr >> 3) & 0x7
	rd := instr & 0x7

	addr := c.R(int(rb)) + imm
	if load {
		c.SetR(int(rd), uint32(c.bus.Read16(addr)))
	} else {
		c.bus.Write16(addr, uint16(c.R(int(rd))))
	}
	return 3
}

// thumbLoadStoreSPRelative is THUMB.11: LDR/STR Rd, [SP, #imm8*4].
func (c *CPU) thumbLoadStoreSPRelative(instr uint16) int {
	load := instr&0x0800 != 0
	rd := (instr >> 8) & 0x7
	imm := uint32(instr&0xFF) << 2

	addr := c.R(13) + imm
	if load {
		c.SetR(int(rd), c.readRotatedWord(addr))
	} else {
		c.bus.Write32(addr, c.R(int(rd)))
	}
	return 3
}

// thumbLoadAddress is THUMB.12: ADD Rd, PC|SP, #imm8*4.
func (c *CPU) thumbLoadAddress(instr uint16) int {
	usesSP := instr&0x0800 != 0
	rd := (instr >> 8) & 0x7
	imm := uint32(instr&0xFF) << 2

	var base uint32
	if usesSP {
		base = c.R(13)
	} else {
		base = (c.PC() + 4) &^ 3
	}
	c.SetR(int(rd), base+imm)
	return 1
}

// thumbAddOffsetSP is THUMB.13: ADD SP, #+/-imm7*4.
func (c *CPU) thumbAddOffsetSP(instr uint16) int {
	negative := instr&0x80 != 0
	imm := uint32(instr&0x7F) << 2
	if negative {
		c.SetR(13, c.R(13)-imm)
	} else {
		c.SetR(13, c.R(13)+imm)
	}
	return 1
}

// thumbPushPop is THUMB.14: PUSH/POP {Rlist, LR|PC}.
func (c *CPU) thumbPushPop(instr uint16) int {
	load := instr&0x0800 != 0
	includeSpecial := instr&0x0100 != 0
	rlist := instr & 0xFF

	sp := c.R(13)
	if load {
		for i := 0; i < 8; i++ {
			if rlist&(1<<uint(i)) != 0 {
				c.SetR(i, c.bus.Read32(sp))
				sp += 4
			}
		}
		if includeSpecial {
			c.branchTo(c.bus.Read32(sp) &^ 1)
			sp += 4
		}
		c.SetR(13, sp)
		return 3
	}

	if includeSpecial {
		sp -= 4
		c.bus.Write32(sp, c.R(14))
	}
	for i := 7; i >= 0; i-- {
		if rlist&(1<<uint(i)) != 0 {
			sp -= 4
			c.bus.Write32(sp, c.R(i))
		}
	}
	c.SetR(13, sp)
	return 3
}

// thumbMultipleLoadStore is THUMB.15: LDMIA/STMIA Rb!, {Rlist}.
func (c *CPU) thumbMultipleLoadStore(instr uint16) int {
	load := instr&0x0800 != 0
	rb := (instr >> 8) & 0x7
	rlist := instr & 0xFF

	addr := c.R(int(rb))
	any := false
	for i := 0; i < 8; i++ {
		if rlist&(1<<uint(i)) != 0 {
			any = true
			if load {
				c.SetR(i, c.bus.Read32(addr))
			} else {
				c.bus.Write32(addr, c.R(i))
			}
			addr += 4
		}
	}
	if !any {
		addr += 0x40
	}
	c.SetR(int(rb), addr)
	return 3
}

// thumbConditionalBranch is THUMB.16.
func (c *CPU) thumbConditionalBranch(instr uint16) int {
	cond := Condition((instr >> 8) & 0xF)
	if !c.Check(cond) {
		return 1
	}
	offset := int32(int8(instr & 0xFF))
	target := uint32(int64(c.PC()) + 4 + int64(offset)*2)
	c.branchTo(target)
	return 3
}

// thumbUnconditionalBranch is THUMB.18.
func (c *CPU) thumbUnconditionalBranch(instr uint16) int {
	offset := instr & 0x7FF
	signed := int32(offset << 1)
	if offset&0x400 != 0 {
		signed -= 0x1000
	}
	target := uint32(int64(c.PC()) + 4 + int64(signed))
	c.branchTo(target)
	return 3
}

// thumbLongBranchLink is THUMB.19, split across two 16-bit instructions.
func (c *CPU) thumbLongBranchLink(instr uint16) int {
	high := instr&0x0800 == 0
	offset := uint32(instr & 0x7FF)

	if high {
		signed := int32(offset << 12)
		if offset&0x400 != 0 {
			signed |= ^int32(0x7FFFFF) // sign-extend bit 22 through 31
		}
		c.SetR(14, uint32(int64(c.PC())+4+int64(signed)))
		return 1
	}

	next := c.R(14) + (offset << 1)
	ret := c.PC() + 2
	c.SetR(14, ret|1)
	c.branchTo(next)
	return 3
}
