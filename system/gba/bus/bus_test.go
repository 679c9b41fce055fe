package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shonumi/gbe-plus-sub002/system/gba/addr"
)

func TestReadWrite_EWRAM(t *testing.T) {
	b := New()
	b.Write32(addr.EWRAMBase+4, 0xDEADBEEF)
	assert.Equal(t, uint32(0xDEADBEEF), b.Read32(addr.EWRAMBase+4))
}

func TestReadWrite_IWRAM(t *testing.T) {
	b := New()
	b.Write16(addr.IWRAMBase+2, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), b.Read16(addr.IWRAMBase+2))
}

func TestReadWrite_ROM_outOfBoundsReadsOpenBus(t *testing.T) {
	b := New()
	b.LoadROM([]byte{1, 2, 3, 4})
	assert.Equal(t, uint8(1), b.Read8(addr.ROMBase))
	assert.Equal(t, uint8(0xFF), b.Read8(addr.ROMBase+100))
}

func TestIE_IF_IME(t *testing.T) {
	b := New()
	b.Write16(addr.IE, 0x0001)
	b.Write16(addr.IME, 1)
	assert.True(t, b.IMEEnabled())
	assert.False(t, b.IRQPending())

	b.RequestInterrupt(addr.IRQVBlank)
	assert.True(t, b.IRQPending())

	// writing 1 to an IF bit acknowledges (clears) it
	b.Write16(addr.IF, 0x0001)
	assert.False(t, b.IRQPending())
}

func TestKeypad_activeLow(t *testing.T) {
	b := New()
	assert.Equal(t, uint16(0x03FF), b.Read16(addr.KEYINPUT))

	b.SetKeys(0x0001)
	assert.Equal(t, uint16(0x03FE), b.Read16(addr.KEYINPUT))
}

func TestPaletteByteWrite_duplicatesAcrossHalfword(t *testing.T) {
	b := New()
	b.Write8(addr.PaletteBase, 0x5A)
	assert.Equal(t, uint16(0x5A5A), b.Read16(addr.PaletteBase))
}
