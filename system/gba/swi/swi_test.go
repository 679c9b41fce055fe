package swi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shonumi/gbe-plus-sub002/system/gba/cpu"
)

type fakeBus struct {
	mem map[uint32]byte
}

func newFakeBus() *fakeBus { return &fakeBus{mem: make(map[uint32]byte)} }

func (b *fakeBus) Read8(address uint32) uint8 { return b.mem[address] }

func (b *fakeBus) Read16(address uint32) uint16 {
	return uint16(b.Read8(address)) | uint16(b.Read8(address+1))<<8
}

func (b *fakeBus) Read32(address uint32) uint32 {
	return uint32(b.Read16(address)) | uint32(b.Read16(address+2))<<16
}

func (b *fakeBus) Write8(address uint32, value uint8) { b.mem[address] = value }

func (b *fakeBus) Write16(address uint32, value uint16) {
	b.Write8(address, byte(value))
	b.Write8(address+1, byte(value>>8))
}

func (b *fakeBus) Write32(address uint32, value uint32) {
	b.Write16(address, uint16(value))
	b.Write16(address+2, uint16(value>>16))
}

func (b *fakeBus) Tick(cycles int)     {}
func (b *fakeBus) IRQPending() bool    { return false }
func (b *fakeBus) IMEEnabled() bool    { return false }

type fakeResetTarget struct {
	called                                                        bool
	palette, vram, oam, sio, sound, io bool
}

func (f *fakeResetTarget) ResetWorkRAM(clearPalette, clearVRAM, clearOAM, clearSIO, clearSound, clearIO bool) {
	f.called = true
	f.palette, f.vram, f.oam, f.sio, f.sound, f.io = clearPalette, clearVRAM, clearOAM, clearSIO, clearSound, clearIO
}

func TestDivide_exactQuotientAndRemainder(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	c.SetR(0, uint32(int32(10)))
	c.SetR(1, uint32(int32(3)))
	divide(c, int32(c.R(0)), int32(c.R(1)))

	assert.Equal(t, uint32(3), c.R(0))
	assert.Equal(t, uint32(1), c.R(1))
	assert.Equal(t, uint32(3), c.R(3))
}

func TestDivide_byZero_returnsNumeratorInR1(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	divide(c, 42, 0)

	assert.Equal(t, uint32(0), c.R(0))
	assert.Equal(t, uint32(42), c.R(1))
	assert.Equal(t, uint32(0), c.R(3))
}

func TestHandleSWI_Div_usesR0R1OrderDirectly(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)
	h := New(nil)

	c.SetR(0, uint32(int32(-7)))
	c.SetR(1, uint32(int32(2)))
	h.HandleSWI(c, Div)

	assert.Equal(t, uint32(uint32(int32(-3))), c.R(0))
	assert.Equal(t, uint32(uint32(int32(-1))), c.R(1))
}

func TestArcTan_quarterTurn(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	c.SetR(0, uint32(16384)) // fixed1.14 representation of 1.0
	arcTan(c)

	assert.Equal(t, uint32(4096), c.R(0))
}

func TestSqrt(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)
	h := New(nil)

	c.SetR(0, 16)
	h.HandleSWI(c, Sqrt)

	assert.Equal(t, uint32(4), c.R(0))
}

func TestCpuSet_wideFill(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write32(src, 0xCAFEBABE)

	c.SetR(0, src)
	c.SetR(1, dst)
	c.SetR(2, 3|1<<24|1<<26) // count 3, fill, 32-bit

	cpuSet(c)

	assert.Equal(t, uint32(0xCAFEBABE), bus.Read32(dst))
	assert.Equal(t, uint32(0xCAFEBABE), bus.Read32(dst+4))
	assert.Equal(t, uint32(0xCAFEBABE), bus.Read32(dst+8))
}

func TestCpuSet_narrowCopy(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write16(src, 0x1111)
	bus.Write16(src+2, 0x2222)

	c.SetR(0, src)
	c.SetR(1, dst)
	c.SetR(2, 2) // count 2, copy, 16-bit

	cpuSet(c)

	assert.Equal(t, uint16(0x1111), bus.Read16(dst))
	assert.Equal(t, uint16(0x2222), bus.Read16(dst+2))
}

func TestCpuFastSet_wordCopy(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write32(src, 0x11111111)
	bus.Write32(src+4, 0x22222222)

	c.SetR(0, src)
	c.SetR(1, dst)
	c.SetR(2, 2)

	cpuFastSet(c)

	assert.Equal(t, uint32(0x11111111), bus.Read32(dst))
	assert.Equal(t, uint32(0x22222222), bus.Read32(dst+4))
}

func TestMidiKey2Freq_unadjustedKeyReturnsBaseFrequency(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const toneData = 0x02000000
	bus.Write32(toneData, 1000)

	c.SetR(0, toneData)
	c.SetR(1, 180)
	c.SetR(2, 0)

	midiKey2Freq(c)

	assert.Equal(t, uint32(1000), c.R(0))
}

func TestIntrWait_halts(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)
	h := New(nil)

	assert.False(t, c.Halted())
	h.intrWait(c, true)

	assert.True(t, c.Halted())
	assert.Equal(t, uint32(1), c.R(0))
	assert.Equal(t, uint32(1), c.R(1))
}

func TestSoftReset_resetsPCAndClearsWorkRAM(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)
	reset := &fakeResetTarget{}
	h := New(reset)

	c.SetPC(0x12345678)
	h.softReset(c)

	assert.Equal(t, uint32(0x08000000), c.PC())
	assert.True(t, reset.called)
	assert.True(t, reset.palette)
	assert.True(t, reset.vram)
	assert.True(t, reset.oam)
	assert.True(t, reset.sio)
	assert.True(t, reset.sound)
	assert.True(t, reset.io)
}

func TestRegisterRamReset_forwardsEachFlagBit(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)
	reset := &fakeResetTarget{}
	h := New(reset)

	c.SetR(0, 0b101010)
	h.registerRamReset(c)

	assert.False(t, reset.palette)
	assert.True(t, reset.vram)
	assert.False(t, reset.oam)
	assert.True(t, reset.sio)
	assert.False(t, reset.sound)
	assert.True(t, reset.io)
}

func TestBgAffineSet_identityScaleZeroAngle(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write32(src, uint32(int32(100)))   // origX
	bus.Write32(src+4, uint32(int32(200))) // origY
	bus.Write16(src+8, 0)                  // centerX
	bus.Write16(src+10, 0)                 // centerY
	bus.Write16(src+12, 256)               // scaleX = 1.0
	bus.Write16(src+14, 256)               // scaleY = 1.0
	bus.Write16(src+16, 0)                 // angle = 0

	c.SetR(0, src)
	c.SetR(1, dst)
	c.SetR(2, 1)

	bgAffineSet(c)

	assert.Equal(t, uint16(256), bus.Read16(dst))   // pa
	assert.Equal(t, uint16(0), bus.Read16(dst+2))   // pb
	assert.Equal(t, uint16(0), bus.Read16(dst+4))   // pc
	assert.Equal(t, uint16(256), bus.Read16(dst+6)) // pd
	assert.Equal(t, uint32(100), bus.Read32(dst+8))
	assert.Equal(t, uint32(200), bus.Read32(dst+12))
}

func TestObjAffineSet_defaultStrideScale(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write16(src, 256)   // scaleX = 1.0
	bus.Write16(src+2, 512) // scaleY = 2.0
	bus.Write16(src+4, 0)   // angle = 0

	c.SetR(0, src)
	c.SetR(1, dst)
	c.SetR(2, 1)
	c.SetR(3, 0) // stride unset -> defaults to 2

	objAffineSet(c)

	assert.Equal(t, uint16(256), bus.Read16(dst))    // pa
	assert.Equal(t, uint16(0), bus.Read16(dst+4))     // pb
	assert.Equal(t, uint16(0), bus.Read16(dst+8))     // pc
	assert.Equal(t, uint16(512), bus.Read16(dst+12))  // pd
}

func TestLZ77Decompress_literalRun(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write32(src, uint32(4)<<8|0x10) // type 0x10, decompressed size 4
	bus.Write8(src+4, 0x00)             // flag byte: all 8 units literal
	bus.Write8(src+5, 0xAA)
	bus.Write8(src+6, 0xBB)
	bus.Write8(src+7, 0xCC)
	bus.Write8(src+8, 0xDD)

	c.SetR(0, src)
	c.SetR(1, dst)

	lz77Decompress(c, false)

	assert.Equal(t, byte(0xAA), bus.Read8(dst))
	assert.Equal(t, byte(0xBB), bus.Read8(dst+1))
	assert.Equal(t, byte(0xCC), bus.Read8(dst+2))
	assert.Equal(t, byte(0xDD), bus.Read8(dst+3))
}

func TestRLDecompress_compressedRunIsBiasedByThree(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst = 0x02000000, 0x02001000
	bus.Write32(src, uint32(5)<<8|0x30) // type 0x30, decompressed size 5
	bus.Write8(src+4, 0x80|2)           // compressed, length field 2 -> run of 5
	bus.Write8(src+5, 0x42)

	c.SetR(0, src)
	c.SetR(1, dst)

	rlDecompress(c)

	for i := uint32(0); i < 5; i++ {
		assert.Equal(t, byte(0x42), bus.Read8(dst+i))
	}
}

func TestBitUnpack_4to8widening(t *testing.T) {
	bus := newFakeBus()
	c := cpu.New(bus, nil)

	const src, dst, params = 0x02000000, 0x02001000, 0x02002000
	bus.Write8(src, 0x53) // two 4-bit units: 3, then 5

	bus.Write16(params, 1)   // srcLen: 1 byte
	bus.Write8(params+2, 4)  // srcWidth
	bus.Write8(params+3, 8)  // dstWidth
	bus.Write32(params+4, 0) // no offset, no zero-fill

	c.SetR(0, src)
	c.SetR(1, dst)
	c.SetR(2, params)

	bitUnpack(c)

	assert.Equal(t, uint32(0x00000503), bus.Read32(dst))
}
