package cpu

// executeARM decodes and runs one 32-bit ARM instruction, returning an
// approximate cycle cost. Decode order follows the standard ARMv4T
// instruction-class discriminators (condition field already consumed
// by the caller's cond check below).
func (c *CPU) executeARM(instr uint32) int {
	cond := Condition(instr >> 28)
	if !c.Check(cond) {
		return 1
	}

	switch {
	// every pattern below that shares bits 27-26 == 00 with plain data
	// processing is checked first, since it is otherwise the catch-all
	// for that whole quadrant of the encoding space.
	case instr&0x0FFFFFF0 == 0x012FFF10:
		return c.armBranchExchange(instr)
	case instr&0x0FC000F0 == 0x00000090:
		return c.armMultiply(instr)
	case instr&0x0F8000F0 == 0x00800090:
		return c.armMultiplyLong(instr)
	case instr&0x0FB00FF0 == 0x01000090:
		return c.armSingleSwap(instr)
	case instr&0x0E400F90 == 0x00000090:
		return c.armHalfwordTransfer(instr)
	case instr&0x0FBF0FFF == 0x010F0000:
		return c.armMRS(instr)
	case instr&0x0FBFFFF0 == 0x0129F000:
		return c.armMSRRegister(instr)
	case instr&0x0FBFF000 == 0x0328F000:
		return c.armMSRImmediate(instr)
	case instr&0x0C000000 == 0x00000000:
		return c.armDataProcessing(instr)
	case instr&0x0E000010 == 0x06000010:
		return c.armUndefined()
	case instr&0x0C000000 == 0x04000000:
		return c.armSingleDataTransfer(instr)
	case instr&0x0E000000 == 0x08000000:
		return c.armBlockDataTransfer(instr)
	case instr&0x0E000000 == 0x0A000000:
		return c.armBranchLink(instr)
	case instr&0x0F000000 == 0x0F000000:
		c.RaiseSWI(instr & 0x00FFFFFF)
		return 3
	default:
		return c.armUndefined()
	}
}

func (c *CPU) armUndefined() int {
	c.raiseUndefined()
	return 3
}

// armBranchExchange implements BX (and the ARMv5 BLX(2) encoding is
// intentionally left unhandled: this core targets ARMv4T only).
func (c *CPU) armBranchExchange(instr uint32) int {
	rn := instr & 0xF
	target := c.R(int(rn))
	if target&1 != 0 {
		c.SetFlag(FlagT, true)
		target &^= 1
	} else {
		c.SetFlag(FlagT, false)
		target &^= 3
	}
	c.branchTo(target)
	return 3
}

func (c *CPU) armBranchLink(instr uint32) int {
	link := instr&0x01000000 != 0
	offset := instr & 0x00FFFFFF
	offset <<= 2
	if offset&0x02000000 != 0 {
		offset |= 0xFC000000
	}
	target := c.PC() + 8 + offset
	if link {
		c.SetR(14, c.PC()+4)
	}
	c.branchTo(target)
	return 3
}
