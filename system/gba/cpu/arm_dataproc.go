package cpu

// regOperand reads register n the way an ARM instruction operand read
// does: r15 reads as the address of the current instruction plus 8, to
// account for the two-stage pipeline lookahead real hardware exposes.
func (c *CPU) regOperand(n uint32) uint32 {
	if n == 15 {
		return c.PC() + 8
	}
	return c.R(int(n))
}

const (
	opAND = 0x0
	opEOR = 0x1
	opSUB = 0x2
	opRSB = 0x3
	opADD = 0x4
	opADC = 0x5
	opSBC = 0x6
	opRSC = 0x7
	opTST = 0x8
	opTEQ = 0x9
	opCMP = 0xA
	opCMN = 0xB
	opORR = 0xC
	opMOV = 0xD
	opBIC = 0xE
	opMVN = 0xF
)

func (c *CPU) armDataProcessing(instr uint32) int {
	useImmediate := instr&0x02000000 != 0
	setCond := instr&0x00100000 != 0
	op := (instr >> 21) & 0xF
	rn := (instr >> 16) & 0xF
	rd := (instr >> 12) & 0xF

	input := c.regOperand(rn)
	var operand uint32
	carry := c.Flag(FlagC)
	shiftCarryValid := false

	if useImmediate {
		imm := instr & 0xFF
		rotate := ((instr >> 8) & 0xF) * 2
		if rotate == 0 {
			operand = imm
		} else {
			operand, carry = shiftROR(imm, rotate, false, carry)
			shiftCarryValid = true
		}
	} else {
		rm := instr & 0xF
		shiftType := ShiftType((instr >> 5) & 0x3)
		byReg := instr&0x10 != 0

		operand = c.regOperand(rm)
		var amount uint32
		if byReg {
			rs := (instr >> 8) & 0xF
			amount = c.R(int(rs)) & 0xFF
			c.bus.Tick(1) // register-specified shift costs an extra internal cycle
		} else {
			amount = (instr >> 7) & 0x1F
		}

		if byReg && amount == 0 {
			// shifting by a register whose low byte is zero leaves the
			// operand and carry untouched, per the documented special case
		} else {
			operand, carry = barrelShift(shiftType, operand, amount, byReg, carry)
			shiftCarryValid = true
		}
	}

	if !shiftCarryValid {
		carry = c.Flag(FlagC)
	}

	var result uint32
	writesResult := true

	switch op {
	case opAND:
		result = input & operand
	case opEOR:
		result = input ^ operand
	case opSUB:
		result = input - operand
	case opRSB:
		result = operand - input
	case opADD:
		result = input + operand
	case opADC:
		carryIn := uint32(0)
		if c.Flag(FlagC) {
			carryIn = 1
		}
		result = input + operand + carryIn
	case opSBC:
		carryIn := uint32(0)
		if c.Flag(FlagC) {
			carryIn = 1
		}
		result = input - operand + carryIn - 1
	case opRSC:
		carryIn := uint32(0)
		if c.Flag(FlagC) {
			carryIn = 1
		}
		result = operand - input + carryIn - 1
	case opTST:
		result, writesResult = input&operand, false
	case opTEQ:
		result, writesResult = input^operand, false
	case opCMP:
		result, writesResult = input-operand, false
	case opCMN:
		result, writesResult = input+operand, false
	case opORR:
		result = input | operand
	case opMOV:
		result = operand
	case opBIC:
		result = input &^ operand
	case opMVN:
		result = ^operand
	}

	if writesResult {
		c.SetR(int(rd), result)
	}

	if setCond {
		if rd == 15 && writesResult {
			// writing CPSR from SPSR is the documented ARM.6-adjacent
			// special case for an S-flagged data-processing op targeting PC
			c.RestoreCPSRFromSPSR()
		} else {
			switch op {
			case opADD, opADC, opCMN:
				c.setArithFlags(input, operandForCarryIn(op, operand, c, false), result, true)
			case opSUB, opCMP:
				c.setArithFlags(input, operand, result, false)
			case opRSB:
				c.setArithFlags(operand, input, result, false)
			case opSBC:
				c.setArithFlags(input, operandForCarryIn(op, operand, c, false), result, false)
			case opRSC:
				c.setArithFlags(operandForCarryIn(op, operand, c, false), input, result, false)
			default:
				c.setLogicalFlags(result, carry)
			}
		}
	}

	if rd == 15 && writesResult {
		target := result
		if c.Thumb() {
			target &^= 1
		} else {
			target &^= 3
		}
		c.branchTo(target)
		return 3
	}
	return 1
}

// operandForCarryIn folds the carry-in into the logical operand value
// for ADC/SBC/RSC flag computation, matching the teacher core's
// approach of pre-combining operand+carry before calling the shared
// arithmetic-flag update.
func operandForCarryIn(op uint32, operand uint32, c *CPU, _ bool) uint32 {
	carryIn := uint32(0)
	if c.Flag(FlagC) {
		carryIn = 1
	}
	switch op {
	case opADC:
		return operand + carryIn
	case opSBC, opRSC:
		return operand + carryIn - 1
	default:
		return operand
	}
}

// setLogicalFlags updates N and Z from result, and C from the barrel
// shifter's carry-out (unaffected for an unshifted immediate/register).
func (c *CPU) setLogicalFlags(result uint32, carry bool) {
	c.SetFlag(FlagN, result&0x80000000 != 0)
	c.SetFlag(FlagZ, result == 0)
	c.SetFlag(FlagC, carry)
}

// setArithFlags updates NZCV from an addition (add=true) or
// subtraction (add=false) of lhs and rhs producing result.
func (c *CPU) setArithFlags(lhs, rhs, result uint32, add bool) {
	c.SetFlag(FlagN, result&0x80000000 != 0)
	c.SetFlag(FlagZ, result == 0)
	if add {
		c.SetFlag(FlagC, result < lhs)
		signLhs := lhs&0x80000000 != 0
		signRhs := rhs&0x80000000 != 0
		signResult := result&0x80000000 != 0
		c.SetFlag(FlagV, signLhs == signRhs && signResult != signLhs)
	} else {
		c.SetFlag(FlagC, lhs >= rhs)
		signLhs := lhs&0x80000000 != 0
		signRhs := rhs&0x80000000 != 0
		signResult := result&0x80000000 != 0
		c.SetFlag(FlagV, signLhs != signRhs && signResult != signLhs)
	}
}
