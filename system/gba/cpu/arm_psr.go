package cpu

func (c *CPU) armMRS(instr uint32) int {
	usesSPSR := instr&0x00400000 != 0
	rd := (instr >> 12) & 0xF
	if usesSPSR {
		c.SetR(int(rd), c.SPSR())
	} else {
		c.SetR(int(rd), c.CPSR())
	}
	return 1
}

func (c *CPU) armMSRRegister(instr uint32) int {
	rm := instr & 0xF
	return c.msrApply(instr, c.R(int(rm)))
}

func (c *CPU) armMSRImmediate(instr uint32) int {
	imm := instr & 0xFF
	rotate := ((instr >> 8) & 0xF) * 2
	value, _ := shiftROR(imm, rotate, false, c.Flag(FlagC))
	return c.msrApply(instr, value)
}

// msrApply writes input into CPSR or SPSR, masked to the field bits
// the instruction selects: flags (bits 31-24), status/extension (kept
// as documented reserved fields, unimplemented on this architecture
// revision) and control (bits 7-0, only writable from a privileged mode).
func (c *CPU) msrApply(instr uint32, input uint32) int {
	usesSPSR := instr&0x00400000 != 0

	var mask uint32
	if instr&0x00080000 != 0 {
		mask |= 0xFF000000
	}
	if instr&0x00010000 != 0 {
		mask |= 0x000000FF
	}

	if usesSPSR {
		spsr := c.SPSR()
		spsr = (spsr &^ mask) | (input & mask)
		c.SetSPSR(spsr)
		return 1
	}

	// control-field writes (mode bits) are only honoured outside USR mode
	if c.Mode() == ModeUSR {
		mask &^= 0x000000FF
	}
	cpsr := (c.CPSR() &^ mask) | (input & mask)
	c.SetCPSR(cpsr)
	return 1
}
