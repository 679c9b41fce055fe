package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThumbMCASImmediate_MOV(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)

	// MOV r0, #0x42
	instr := uint16(0x2000 | 0x42)
	c.executeThumb(instr)

	assert.Equal(t, uint32(0x42), c.R(0))
}

func TestThumbMCASImmediate_CMP_setsFlags(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)

	c.SetR(1, 5)
	// CMP r1, #5
	instr := uint16(0x2900 | 5)
	c.executeThumb(instr)

	assert.True(t, c.Flag(FlagZ))
}

func TestThumbAddSubtract(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)

	c.SetR(1, 10)
	// ADD r0, r1, #3 (immediate form, rn/imm field = 3)
	instr := uint16(0x1C00 | (3 << 6) | (1 << 3) | 0)
	c.executeThumb(instr)

	assert.Equal(t, uint32(13), c.R(0))
}

func TestThumbHiRegBX_branchesAndSwitchesState(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)

	c.SetR(1, 0x09) // odd target: THUMB state retained
	c.SetFlag(FlagT, true)

	// BX r1 (op=3, dstMSB=0, rs=1)
	instr := uint16(0x4700 | (1 << 3))
	c.executeThumb(instr)

	assert.Equal(t, uint32(0x08), c.PC())
	assert.True(t, c.Thumb())
}

func TestThumbHiRegBX_evenTargetEntersARM(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)
	c.SetFlag(FlagT, true)

	c.SetR(2, 0x100)
	instr := uint16(0x4700 | (2 << 3))
	c.executeThumb(instr)

	assert.Equal(t, uint32(0x100), c.PC())
	assert.False(t, c.Thumb())
}

func TestThumbPushPop(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)

	c.SetR(13, 0x1000)
	c.SetR(0, 0xAAAA)
	c.SetR(1, 0xBBBB)

	// PUSH {r0, r1}
	push := uint16(0xB400 | 0x3)
	c.executeThumb(push)
	assert.Equal(t, uint32(0x1000-8), c.R(13))

	c.SetR(0, 0)
	c.SetR(1, 0)

	// POP {r0, r1}
	pop := uint16(0xBC00 | 0x3)
	c.executeThumb(pop)

	assert.Equal(t, uint32(0xAAAA), c.R(0))
	assert.Equal(t, uint32(0xBBBB), c.R(1))
	assert.Equal(t, uint32(0x1000), c.R(13))
}

func TestThumbLongBranchLink(t *testing.T) {
	bus := newFakeBus()
	c := New(bus, nil)
	c.SetFlag(FlagT, true)
	c.SetPC(0x08000000)

	// first half: BL high, offset 0 -> LR = PC+4
	high := uint16(0xF000)
	c.executeThumb(high)
	assert.Equal(t, c.PC()+4, c.R(14))

	lrAfterHigh := c.R(14)
	pcBeforeLow := c.PC()

	// second half: BL low, offset 1 (in halfwords) -> target = LR + 2
	low := uint16(0xF800 | 1)
	c.executeThumb(low)

	assert.Equal(t, lrAfterHigh+2, c.PC())
	assert.Equal(t, (pcBeforeLow+2)|1, c.R(14))
}
