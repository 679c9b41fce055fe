// Package addr names the memory region bases and I/O register
// addresses of the 32-bit successor system's address map.
package addr

// Region bases, each 16MB apart as the top byte of a 32-bit address
// selects.
const (
	BIOSBase   uint32 = 0x00000000
	EWRAMBase  uint32 = 0x02000000
	IWRAMBase  uint32 = 0x03000000
	IOBase     uint32 = 0x04000000
	PaletteBase uint32 = 0x05000000
	VRAMBase   uint32 = 0x06000000
	OAMBase    uint32 = 0x07000000
	ROMBase    uint32 = 0x08000000
	ROMBaseWS1 uint32 = 0x0A000000
	ROMBaseWS2 uint32 = 0x0C000000
	SRAMBase   uint32 = 0x0E000000
)

// Region sizes.
const (
	BIOSSize    = 0x4000
	EWRAMSize   = 0x40000
	IWRAMSize   = 0x8000
	PaletteSize = 0x400
	VRAMSize    = 0x18000
	OAMSize     = 0x400
	SRAMSize    = 0x10000
)

// LCD/video I/O registers, as absolute addresses inside the I/O window
// that starts at IOBase.
const (
	DISPCNT  uint32 = 0x04000000
	DISPSTAT uint32 = 0x04000004
	VCOUNT   uint32 = 0x04000006
	BG0CNT   uint32 = 0x04000008
	BG1CNT   uint32 = 0x0400000A
	BG2CNT   uint32 = 0x0400000C
	BG3CNT   uint32 = 0x0400000E
	BG0HOFS  uint32 = 0x04000010
	BG0VOFS  uint32 = 0x04000012
	BG2PA    uint32 = 0x04000020
	BG2PB    uint32 = 0x04000022
	BG2PC    uint32 = 0x04000024
	BG2PD    uint32 = 0x04000026
	BG2X     uint32 = 0x04000028
	BG2Y     uint32 = 0x0400002C
	WIN0H    uint32 = 0x04000040
	WIN1H    uint32 = 0x04000042
	WIN0V    uint32 = 0x04000044
	WIN1V    uint32 = 0x04000046
)

// DMA registers, per channel n at base+n*0xC.
const (
	DMA0SAD uint32 = 0x040000B0
	DMA0DAD uint32 = 0x040000B4
	DMA0CNT uint32 = 0x040000B8
)

// Timer registers, per channel n at base+n*4.
const (
	TM0CNT_L uint32 = 0x04000100
	TM0CNT_H uint32 = 0x04000102
)

// Keypad, serial and interrupt control.
const (
	KEYINPUT uint32 = 0x04000130
	KEYCNT   uint32 = 0x04000132
	IE       uint32 = 0x04000200
	IF       uint32 = 0x04000202
	WAITCNT  uint32 = 0x04000204
	IME      uint32 = 0x04000208
	POSTFLG  uint32 = 0x04000300
	HALTCNT  uint32 = 0x04000301
)

// Interrupt is one bit position in IE/IF.
type Interrupt uint16

const (
	IRQVBlank  Interrupt = 1 << 0
	IRQHBlank  Interrupt = 1 << 1
	IRQVCount  Interrupt = 1 << 2
	IRQTimer0  Interrupt = 1 << 3
	IRQTimer1  Interrupt = 1 << 4
	IRQTimer2  Interrupt = 1 << 5
	IRQTimer3  Interrupt = 1 << 6
	IRQSerial  Interrupt = 1 << 7
	IRQDMA0    Interrupt = 1 << 8
	IRQDMA1    Interrupt = 1 << 9
	IRQDMA2    Interrupt = 1 << 10
	IRQDMA3    Interrupt = 1 << 11
	IRQKeypad  Interrupt = 1 << 12
	IRQGamePak Interrupt = 1 << 13
)
