// Package bus implements the 32-bit successor system's flat address
// space: BIOS, work RAM, I/O registers, palette/VRAM/OAM, cartridge ROM
// and SRAM, plus the DMA and timer peripherals that live on it.
package bus

import (
	"encoding/binary"
	"log/slog"

	"github.com/shonumi/gbe-plus-sub002/system/gba/addr"
)

// FramebufferSink receives a freshly rendered frame as row-major 32-bit
// ARGB pixels, matching video.Sink.
type FramebufferSink interface {
	Present(pixels []uint32, width, height int)
}

// Bus owns every memory region and memory-mapped peripheral of the
// 32-bit successor system.
type Bus struct {
	bios  []byte
	ewram [addr.EWRAMSize]byte
	iwram [addr.IWRAMSize]byte
	pram  [addr.PaletteSize]byte
	vram  [addr.VRAMSize]byte
	oam   [addr.OAMSize]byte
	rom   []byte
	sram  [addr.SRAMSize]byte

	ioRegs [0x400]byte

	ie, ifr uint16
	ime     bool

	keyinput uint16

	dma     [4]dmaChannel
	timers  [4]timerChannel
	hblankSubscribers []func()
	vblankSubscribers []func()

	lastBIOSFetch uint32 // fallback for BIOS reads past the image; bios is always BIOSSize bytes and nothing assigns this, so it stays 0
}

// New creates a bus with no cartridge loaded.
func New() *Bus {
	b := &Bus{bios: make([]byte, addr.BIOSSize)}
	b.keyinput = 0x03FF // all keys released (active low)
	for i := range b.dma {
		b.dma[i].index = i
	}
	for i := range b.timers {
		b.timers[i].index = i
	}
	return b
}

// LoadROM installs cartridge ROM, mirrored across all three wait-state
// windows (0x08, 0x0A and 0x0C).
func (b *Bus) LoadROM(rom []byte) { b.rom = rom }

// LoadBIOS installs a BIOS image; without one, the BIOS region reads
// as zeros.
func (b *Bus) LoadBIOS(bios []byte) { copy(b.bios, bios) }

// ResetWorkRAM clears EWRAM, IWRAM, palette, VRAM and OAM, the
// observable effect of the SoftReset/RegisterRamReset BIOS services.
func (b *Bus) ResetWorkRAM() {
	b.ewram = [addr.EWRAMSize]byte{}
	b.iwram = [addr.IWRAMSize]byte{}
	b.pram = [addr.PaletteSize]byte{}
	b.vram = [addr.VRAMSize]byte{}
	b.oam = [addr.OAMSize]byte{}
	b.ifr = 0
}

// SetKeys reports the current keypad state to KEYINPUT (active low: a
// 0 bit means the key is held).
func (b *Bus) SetKeys(held uint16) { b.keyinput = ^held & 0x03FF }

// Tick advances the timers by the cycles the CPU spent. No wait-state
// cycles are charged for any region, and WAITCNT is stored but has no
// effect on timing.
func (b *Bus) Tick(cycles int) {
	for i := range b.timers {
		b.timers[i].tick(b, cycles)
	}
}

func (b *Bus) IRQPending() bool { return b.ie&b.ifr != 0 }
func (b *Bus) IMEEnabled() bool { return b.ime }

// RequestInterrupt sets a bit in IF; peripherals (video, DMA, timers,
// keypad, serial) call this instead of touching IF directly.
func (b *Bus) RequestInterrupt(i addr.Interrupt) { b.ifr |= uint16(i) }

// OnHBlank/OnVBlank register peripherals (DMA channels) that must run
// when the video package enters the corresponding period. The video
// package is the caller; it has no other way to reach the DMA engine.
func (b *Bus) OnHBlank(fn func()) { b.hblankSubscribers = append(b.hblankSubscribers, fn) }
func (b *Bus) OnVBlank(fn func()) { b.vblankSubscribers = append(b.vblankSubscribers, fn) }

func (b *Bus) NotifyHBlank() {
	b.triggerDMA(dmaStartHBlank)
	for _, fn := range b.hblankSubscribers {
		fn()
	}
}

func (b *Bus) NotifyVBlank() {
	b.triggerDMA(dmaStartVBlank)
	for _, fn := range b.vblankSubscribers {
		fn()
	}
}

// VRAM/Palette/OAM returns raw backing storage for the video package,
// analogous to system/dmg/memory.Bus.VRAM().
func (b *Bus) VRAM() *[addr.VRAMSize]byte       { return &b.vram }
func (b *Bus) Palette() *[addr.PaletteSize]byte { return &b.pram }
func (b *Bus) OAM() *[addr.OAMSize]byte         { return &b.oam }

// IORegister reads a raw byte from the mapped I/O register window,
// bypassing the dispatch logic below; used by the video package for
// the handful of registers (DISPCNT, BGxCNT...) it owns directly.
func (b *Bus) IORegister(address uint32) byte { return b.ioRegs[address-addr.IOBase] }

// SetIORegister writes a raw byte into the mapped I/O register window.
func (b *Bus) SetIORegister(address uint32, value byte) { b.ioRegs[address-addr.IOBase] = value }

func (b *Bus) Read8(address uint32) uint8 {
	switch region(address) {
	case regionBIOS:
		off := address & (addr.BIOSSize - 1)
		if int(off) < len(b.bios) {
			return b.bios[off]
		}
		return byte(b.lastBIOSFetch)
	case regionEWRAM:
		return b.ewram[address&(addr.EWRAMSize-1)]
	case regionIWRAM:
		return b.iwram[address&(addr.IWRAMSize-1)]
	case regionIO:
		return b.readIO8(address)
	case regionPalette:
		return b.pram[address&(addr.PaletteSize-1)]
	case regionVRAM:
		return b.vram[vramOffset(address)]
	case regionOAM:
		return b.oam[address&(addr.OAMSize-1)]
	case regionROM:
		off := int(address & 0x01FFFFFF)
		if off < len(b.rom) {
			return b.rom[off]
		}
		return 0xFF
	case regionSRAM:
		return b.sram[address&(addr.SRAMSize-1)]
	default:
		slog.Warn("gba bus: read from unmapped address", "address", address)
		return 0
	}
}

func (b *Bus) Read16(address uint32) uint16 {
	address &^= 1
	return uint16(b.Read8(address)) | uint16(b.Read8(address+1))<<8
}

func (b *Bus) Read32(address uint32) uint32 {
	address &^= 3
	return uint32(b.Read16(address)) | uint32(b.Read16(address+2))<<16
}

func (b *Bus) Write8(address uint32, value uint8) {
	switch region(address) {
	case regionEWRAM:
		b.ewram[address&(addr.EWRAMSize-1)] = value
	case regionIWRAM:
		b.iwram[address&(addr.IWRAMSize-1)] = value
	case regionIO:
		b.writeIO8(address, value)
	case regionPalette:
		// byte writes to palette RAM write the same value to both bytes
		// of the containing halfword, per documented hardware behaviour
		off := address & (addr.PaletteSize - 1) &^ 1
		b.pram[off] = value
		b.pram[off+1] = value
	case regionVRAM:
		off := vramOffset(address)
		// same half-word duplication behaviour as palette RAM
		b.vram[off&^1] = value
		b.vram[off&^1|1] = value
	case regionOAM:
		// OAM ignores byte writes entirely on real hardware; documented here
	case regionSRAM:
		b.sram[address&(addr.SRAMSize-1)] = value
	default:
		slog.Warn("gba bus: write to unmapped address", "address", address, "value", value)
	}
}

func (b *Bus) Write16(address uint32, value uint16) {
	address &^= 1
	switch region(address) {
	case regionIO:
		b.writeIO16(address, value)
	default:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], value)
		b.writeRaw(address, buf[:])
	}
}

func (b *Bus) Write32(address uint32, value uint32) {
	address &^= 3
	switch region(address) {
	case regionIO:
		b.writeIO16(address, uint16(value))
		b.writeIO16(address+2, uint16(value>>16))
	default:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], value)
		b.writeRaw(address, buf[:])
	}
}

// writeRaw stores a halfword or word byte by byte. Palette, VRAM and
// OAM take 16- and 32-bit writes as-is, so their bytes are stored
// directly instead of going through Write8's byte-write rules.
func (b *Bus) writeRaw(address uint32, data []byte) {
	for i, v := range data {
		a := address + uint32(i)
		switch region(a) {
		case regionPalette:
			b.pram[a&(addr.PaletteSize-1)] = v
		case regionVRAM:
			b.vram[vramOffset(a)] = v
		case regionOAM:
			b.oam[a&(addr.OAMSize-1)] = v
		default:
			b.Write8(a, v)
		}
	}
}

func vramOffset(address uint32) uint32 {
	// VRAM is 96KB mapped into a 128KB window with the last 32KB
	// mirroring the 16KB just before it, per documented hardware quirk.
	off := address & 0x1FFFF
	if off >= addr.VRAMSize {
		off -= 0x8000
	}
	return off
}

type regionKind int

const (
	regionUnmapped regionKind = iota
	regionBIOS
	regionEWRAM
	regionIWRAM
	regionIO
	regionPalette
	regionVRAM
	regionOAM
	regionROM
	regionSRAM
)

func region(address uint32) regionKind {
	switch address >> 24 {
	case 0x00, 0x01:
		return regionBIOS
	case 0x02:
		return regionEWRAM
	case 0x03:
		return regionIWRAM
	case 0x04:
		return regionIO
	case 0x05:
		return regionPalette
	case 0x06:
		return regionVRAM
	case 0x07:
		return regionOAM
	case 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D:
		return regionROM
	case 0x0E, 0x0F:
		return regionSRAM
	default:
		return regionUnmapped
	}
}
