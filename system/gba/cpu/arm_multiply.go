package cpu

func (c *CPU) armMultiply(instr uint32) int {
	rm := instr & 0xF
	rs := (instr >> 8) & 0xF
	rn := (instr >> 12) & 0xF
	rd := (instr >> 16) & 0xF
	accumulate := instr&0x00200000 != 0
	setCond := instr&0x00100000 != 0

	result := c.R(int(rm)) * c.R(int(rs))
	if accumulate {
		result += c.R(int(rn))
	}
	c.SetR(int(rd), result)

	if setCond {
		c.SetFlag(FlagN, result&0x80000000 != 0)
		c.SetFlag(FlagZ, result == 0)
	}
	return 1 + mulBoothCycles(c.R(int(rs)))
}

func (c *CPU) armMultiplyLong(instr uint32) int {
	rm := instr & 0xF
	rs := (instr >> 8) & 0xF
	rdLo := (instr >> 12) & 0xF
	rdHi := (instr >> 16) & 0xF
	signed := instr&0x00400000 != 0
	accumulate := instr&0x00200000 != 0
	setCond := instr&0x00100000 != 0

	var result uint64
	if signed {
		result = uint64(int64(int32(c.R(int(rm)))) * int64(int32(c.R(int(rs)))))
	} else {
		result = uint64(c.R(int(rm))) * uint64(c.R(int(rs)))
	}
	if accumulate {
		hi := uint64(c.R(int(rdHi))) << 32
		lo := uint64(c.R(int(rdLo)))
		result += hi | lo
	}

	lo := uint32(result)
	hi := uint32(result >> 32)
	c.SetR(int(rdLo), lo)
	c.SetR(int(rdHi), hi)

	if setCond {
		c.SetFlag(FlagN, result&0x8000000000000000 != 0)
		c.SetFlag(FlagZ, result == 0)
	}
	return 2 + mulBoothCycles(c.R(int(rs)))
}

// mulBoothCycles approximates the early-termination cycle count a real
// ARM7TDMI multiplier gets from Booth's algorithm: fewer significant
// bits in the multiplier means fewer internal cycles.
func mulBoothCycles(rs uint32) int {
	switch {
	case rs&0xFFFFFF00 == 0 || rs&0xFFFFFF00 == 0xFFFFFF00:
		return 1
	case rs&0xFFFF0000 == 0 || rs&0xFFFF0000 == 0xFFFF0000:
		return 2
	case rs&0xFF000000 == 0 || rs&0xFF000000 == 0xFF000000:
		return 3
	default:
		return 4
	}
}

func (c *CPU) armSingleSwap(instr uint32) int {
	rm := instr & 0xF
	rd := (instr >> 12) & 0xF
	rn := (instr >> 16) & 0xF
	byteSwap := instr&0x00400000 != 0

	base := c.R(int(rn))
	if byteSwap {
		old := c.bus.Read8(base)
		c.bus.Write8(base, uint8(c.R(int(rm))))
		c.SetR(int(rd), uint32(old))
	} else {
		old := c.bus.Read32(base)
		c.bus.Write32(base, c.R(int(rm)))
		c.SetR(int(rd), old)
	}
	return 4
}
