package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReset(t *testing.T) {
	t.Run("skip-BIOS boot state", func(t *testing.T) {
		r := &Registers{}
		r.Reset(true)

		assert.Equal(t, ModeSYS, r.Mode())
		assert.Equal(t, uint32(0x08000000), r.PC())
		assert.Equal(t, uint32(0x03007F00), r.R(13))
	})

	t.Run("BIOS entry state", func(t *testing.T) {
		r := &Registers{}
		r.Reset(false)

		assert.Equal(t, ModeSVC, r.Mode())
		assert.Equal(t, uint32(0), r.PC())
	})
}

func TestModeSwitch_banksFIQRegisters(t *testing.T) {
	r := &Registers{}
	r.Reset(true)

	r.SetR(8, 0x1111)
	r.SetR(13, 0x2222)

	r.SetCPSR(uint32(ModeFIQ))
	assert.NotEqual(t, uint32(0x1111), r.R(8), "FIQ mode must bank in its own r8, not inherit SYS's")

	r.SetR(8, 0x3333)
	r.SetR(13, 0x4444)

	r.SetCPSR(uint32(ModeSYS))
	assert.Equal(t, uint32(0x1111), r.R(8), "leaving FIQ must restore the shared USR/SYS r8")
	assert.Equal(t, uint32(0x2222), r.R(13))

	r.SetCPSR(uint32(ModeFIQ))
	assert.Equal(t, uint32(0x3333), r.R(8), "re-entering FIQ must restore its own private r8")
	assert.Equal(t, uint32(0x4444), r.R(13))
}

func TestModeSwitch_nonFIQModesShareR8ToR12(t *testing.T) {
	r := &Registers{}
	r.Reset(true)

	r.SetR(9, 0xAAAA)

	r.SetCPSR(uint32(ModeIRQ))
	assert.Equal(t, uint32(0xAAAA), r.R(9), "IRQ mode shares the USR/SYS r8-r12 pool")

	r.SetR(13, 0xBEEF)
	r.SetCPSR(uint32(ModeSYS))
	assert.NotEqual(t, uint32(0xBEEF), r.R(13), "r13 is still banked per mode even though r8-r12 are shared")

	r.SetCPSR(uint32(ModeIRQ))
	assert.Equal(t, uint32(0xBEEF), r.R(13))
}

func TestSPSR_writeDroppedInUSRAndSYS(t *testing.T) {
	r := &Registers{}
	r.Reset(true)

	assert.False(t, r.HasSPSR())

	r.SetSPSR(0xDEADBEEF)
	assert.Equal(t, r.CPSR(), r.SPSR(), "USR/SYS has no private SPSR; reads fall back to CPSR")
}

func TestSPSR_roundTripsPerMode(t *testing.T) {
	r := &Registers{}
	r.Reset(true)

	r.SetCPSR(uint32(ModeSVC))
	assert.True(t, r.HasSPSR())

	r.SetSPSR(0x12345678)
	assert.Equal(t, uint32(0x12345678), r.SPSR())

	r.SetCPSR(uint32(ModeABT))
	r.SetSPSR(0x87654321)

	r.SetCPSR(uint32(ModeSVC))
	assert.Equal(t, uint32(0x12345678), r.SPSR(), "SVC's SPSR must survive a trip through ABT mode")
}

func TestFlag(t *testing.T) {
	r := &Registers{}
	r.Reset(true)

	assert.False(t, r.Flag(FlagN))
	r.SetFlag(FlagN, true)
	assert.True(t, r.Flag(FlagN))
	r.SetFlag(FlagN, false)
	assert.False(t, r.Flag(FlagN))
}

func TestThumb(t *testing.T) {
	r := &Registers{}
	r.Reset(true)

	assert.False(t, r.Thumb())
	assert.Equal(t, ARM, r.InstrSet())

	r.SetFlag(FlagT, true)
	assert.True(t, r.Thumb())
	assert.Equal(t, THUMB, r.InstrSet())
}
