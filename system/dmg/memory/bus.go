// Package memory implements the 8-bit family's address space: cartridge
// mapper dispatch, VRAM/WRAM/OAM/HRAM, and the I/O register block (timer,
// joypad, serial, interrupts, OAM DMA, and the CGB-only VRAM/WRAM
// banking, palette RAM and HDMA/GDMA controller).
package memory

import (
	"fmt"
	"log/slog"

	"github.com/shonumi/gbe-plus-sub002/internal/bit"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/audio"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/serial"
)

// Bus is the concrete memory/IO surface satisfying cpu.Bus. It is also
// handed directly to the video package, the same way the teacher's GPU
// takes a concrete *memory.MMU rather than an interface.
type Bus struct {
	cart *Cartridge
	mbc  MBC

	cgb bool

	vram     [2][0x2000]byte
	vramBank uint8

	wram     [8][0x1000]byte
	wramBank uint8 // SVBK selection, 0 treated as 1

	oam  [160]byte
	hram [0x7F]byte
	io   [0x80]byte

	joypad *joypad
	timer  timer
	serial serial.Port
	apu    *audio.Registers

	key1        uint8
	doubleSpeed bool

	bgPaletteRAM  [64]byte
	objPaletteRAM [64]byte
	bcps, ocps    uint8

	hdmaSrc, hdmaDst uint16
	hdmaRemaining    int // in 16-byte blocks; -1 when inactive
	hdmaHBlankMode   bool

	ie uint8

	sgbObserver func(uint8)
}

// SetSGBObserver installs a callback invoked with every value written to
// P1, which is how the SGB command-stream protocol snoops the joypad
// lines a DMG program writes bit-clock pulses to.
func (b *Bus) SetSGBObserver(f func(uint8)) { b.sgbObserver = f }

// New creates a bus with no cartridge loaded (equivalent to powering on
// with no cartridge inserted).
func New(cgb bool) *Bus {
	b := &Bus{
		cart: NewCartridge(),
		cgb:  cgb,
		apu:  audio.New(),
	}
	b.joypad = newJoypad()
	b.serial = serial.NewLogSink(func() { b.RequestInterrupt(addr.SerialInterrupt) })
	b.timer.requestInterrupt = func() { b.RequestInterrupt(addr.TimerInterrupt) }
	b.hdmaRemaining = -1
	return b
}

// NewWithCartridge creates a bus with the given cartridge's mapper installed.
func NewWithCartridge(cart *Cartridge, cgb bool) *Bus {
	b := New(cgb)
	b.cart = cart
	b.mbc = NewMBCFor(cart)
	return b
}

// SetSerialPort overrides the default logging serial device.
func (b *Bus) SetSerialPort(p serial.Port) { b.serial = p }

// DoubleSpeed reports whether the CGB double-speed mode is active.
func (b *Bus) DoubleSpeed() bool { return b.doubleSpeed }

// SwitchSpeed toggles double-speed mode when KEY1 bit 0 (prepare-switch)
// is set on a CGB bus, and clears that bit. Neither the CPU's STOP
// opcode nor the machine calls it; a host that wants the switch calls it
// itself.
func (b *Bus) SwitchSpeed() {
	if !b.cgb {
		return
	}
	if b.key1&0x01 == 0 {
		return
	}
	b.doubleSpeed = !b.doubleSpeed
	b.key1 &^= 0x01
}

func (b *Bus) Tick(cycles int) {
	b.timer.tick(cycles)
	b.serial.Tick(cycles)
}

// RequestInterrupt sets the given interrupt's bit in IF.
func (b *Bus) RequestInterrupt(i addr.Interrupt) {
	b.io[addr.IF-0xFF00] |= uint8(i) | 0xE0
}

func (b *Bus) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, b.Read(address))
}

func (b *Bus) SetBit(index uint8, address uint16, set bool) {
	b.Write(address, bit.SetTo(index, b.Read(address), set))
}

// VRAM returns the currently-banked 8KB VRAM window, for the video package.
func (b *Bus) VRAM() *[0x2000]byte { return &b.vram[b.vramBank] }

// ReadVRAMBank reads from a specific VRAM bank regardless of the current
// VBK selection; the video package needs this to read a CGB tile map's
// companion attribute byte, which always lives in bank 1 independent of
// which bank the CPU has currently selected for itself.
func (b *Bus) ReadVRAMBank(bank uint8, address uint16) byte {
	if address < 0x8000 || address > 0x9FFF {
		return 0xFF
	}
	return b.vram[bank&0x01][address-0x8000]
}

// BGPalette and ObjPalette expose the CGB color palette RAM directly;
// the video package indexes into these rather than re-deriving them from
// the BCPS/OCPS auto-increment register protocol on every pixel.
func (b *Bus) BGPalette() []byte  { return b.bgPaletteRAM[:] }
func (b *Bus) ObjPalette() []byte { return b.objPaletteRAM[:] }

func (b *Bus) CGB() bool { return b.cgb }

func (b *Bus) HandleKeyPress(key JoypadKey) {
	if b.joypad.press(key) {
		b.RequestInterrupt(addr.JoypadInterrupt)
	}
}

func (b *Bus) HandleKeyRelease(key JoypadKey) {
	b.joypad.release(key)
}

func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		return b.readMBC(address)
	case address >= 0x8000 && address <= 0x9FFF:
		return b.vram[b.vramBank][address-0x8000]
	case address >= 0xA000 && address <= 0xBFFF:
		return b.readMBC(address)
	case address >= 0xC000 && address <= 0xCFFF:
		return b.wram[0][address-0xC000]
	case address >= 0xD000 && address <= 0xDFFF:
		return b.wram[b.effectiveWRAMBank()][address-0xD000]
	case address >= 0xE000 && address <= 0xFDFF:
		return b.Read(address - 0x2000)
	case address >= 0xFE00 && address <= 0xFE9F:
		return b.oam[address-0xFE00]
	case address >= 0xFEA0 && address <= 0xFEFF:
		return 0x00
	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram[address-0xFF80]
	case address == addr.IE:
		return b.ie
	default:
		return b.readIO(address)
	}
}

func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		b.writeMBC(address, value)
	case address >= 0x8000 && address <= 0x9FFF:
		b.vram[b.vramBank][address-0x8000] = value
	case address >= 0xA000 && address <= 0xBFFF:
		b.writeMBC(address, value)
	case address >= 0xC000 && address <= 0xCFFF:
		b.wram[0][address-0xC000] = value
	case address >= 0xD000 && address <= 0xDFFF:
		b.wram[b.effectiveWRAMBank()][address-0xD000] = value
	case address >= 0xE000 && address <= 0xFDFF:
		b.Write(address-0x2000, value)
	case address >= 0xFE00 && address <= 0xFE9F:
		b.oam[address-0xFE00] = value
	case address >= 0xFEA0 && address <= 0xFEFF:
		// unused
	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	case address == addr.IE:
		b.ie = value
	default:
		b.writeIO(address, value)
	}
}

func (b *Bus) readMBC(address uint16) uint8 {
	if b.mbc == nil {
		return 0xFF
	}
	return b.mbc.Read(address)
}

func (b *Bus) writeMBC(address uint16, value uint8) {
	if b.mbc == nil {
		slog.Warn("write with no cartridge installed", "addr", fmt.Sprintf("0x%04X", address))
		return
	}
	b.mbc.Write(address, value)
}

func (b *Bus) effectiveWRAMBank() uint8 {
	if !b.cgb || b.wramBank == 0 {
		return 1
	}
	return b.wramBank
}

func (b *Bus) readIO(address uint16) uint8 {
	switch address {
	case addr.P1:
		return b.joypad.register()
	case addr.SB, addr.SC:
		return b.serial.Read(address)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return b.timer.read(address)
	case addr.IF:
		return b.io[addr.IF-0xFF00] | 0xE0
	case addr.KEY1:
		if !b.cgb {
			return 0xFF
		}
		v := b.key1 & 0x01
		if b.doubleSpeed {
			v |= 0x80
		}
		return v | 0x7E
	case addr.VBK:
		if !b.cgb {
			return 0xFF
		}
		return b.vramBank | 0xFE
	case addr.SVBK:
		if !b.cgb {
			return 0xFF
		}
		return b.wramBank | 0xF8
	case addr.HDMA5:
		if !b.cgb {
			return 0xFF
		}
		if b.hdmaRemaining < 0 {
			return 0xFF
		}
		return uint8(b.hdmaRemaining-1) & 0x7F
	case addr.BCPS:
		return b.bcps
	case addr.BCPD:
		return b.bgPaletteRAM[b.bcps&0x3F]
	case addr.OCPS:
		return b.ocps
	case addr.OCPD:
		return b.objPaletteRAM[b.ocps&0x3F]
	default:
		if address >= 0xFF10 && address <= 0xFF3F {
			return b.apu.ReadRegister(address)
		}
		return b.io[address-0xFF00]
	}
}

func (b *Bus) writeIO(address uint16, value uint8) {
	switch address {
	case addr.P1:
		b.joypad.writeSelect(value)
		if b.sgbObserver != nil {
			b.sgbObserver(value)
		}
	case addr.SB, addr.SC:
		b.serial.Write(address, value)
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		b.timer.write(address, value)
	case addr.IF:
		b.io[addr.IF-0xFF00] = value | 0xE0
	case addr.DMA:
		b.performOAMDMA(value)
	case addr.KEY1:
		if b.cgb {
			b.key1 = value & 0x01
		}
	case addr.VBK:
		if b.cgb {
			b.vramBank = value & 0x01
		}
	case addr.SVBK:
		if b.cgb {
			b.wramBank = value & 0x07
		}
	case addr.HDMA1:
		if b.cgb {
			b.hdmaSrc = (b.hdmaSrc & 0x00FF) | uint16(value)<<8
		}
	case addr.HDMA2:
		if b.cgb {
			b.hdmaSrc = (b.hdmaSrc & 0xFF00) | uint16(value&0xF0)
		}
	case addr.HDMA3:
		if b.cgb {
			b.hdmaDst = (b.hdmaDst & 0x00FF) | uint16(value&0x1F)<<8
		}
	case addr.HDMA4:
		if b.cgb {
			b.hdmaDst = (b.hdmaDst & 0xFF00) | uint16(value&0xF0)
		}
	case addr.HDMA5:
		if b.cgb {
			b.startHDMA(value)
		}
	case addr.BCPS:
		b.bcps = value & 0xBF
	case addr.BCPD:
		b.bgPaletteRAM[b.bcps&0x3F] = value
		if b.bcps&0x80 != 0 {
			b.bcps = (b.bcps & 0x80) | ((b.bcps + 1) & 0x3F)
		}
	case addr.OCPS:
		b.ocps = value & 0xBF
	case addr.OCPD:
		b.objPaletteRAM[b.ocps&0x3F] = value
		if b.ocps&0x80 != 0 {
			b.ocps = (b.ocps & 0x80) | ((b.ocps + 1) & 0x3F)
		}
	default:
		if address >= 0xFF10 && address <= 0xFF3F {
			b.apu.WriteRegister(address, value)
			return
		}
		b.io[address-0xFF00] = value
	}
}

// performOAMDMA copies 160 bytes from (value<<8) to OAM. Real hardware
// takes 160 M-cycles and blocks CPU access to everything but HRAM; this
// core performs the copy instantly at the point of the triggering write,
// matching the teacher's treatment of DMA as a non-cycle-accurate bulk
// transfer.
func (b *Bus) performOAMDMA(value uint8) {
	source := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		b.oam[i] = b.Read(source + i)
	}
	b.io[addr.DMA-0xFF00] = value
}

// startHDMA begins a CGB VRAM DMA transfer. Bit 7 of value selects
// HBlank-paced transfer (16 bytes copied per StepHDMA call, driven by
// the video package at each HBlank entry) versus an immediate
// general-purpose transfer of the full block.
func (b *Bus) startHDMA(value uint8) {
	length := (int(value&0x7F) + 1) * 16
	hblankMode := value&0x80 != 0

	if b.hdmaRemaining >= 0 && b.hdmaHBlankMode && !hblankMode {
		// writing bit7=0 while an HBlank transfer is active cancels it
		b.hdmaRemaining = -1
		return
	}

	b.hdmaHBlankMode = hblankMode
	b.hdmaRemaining = length / 16

	if !hblankMode {
		b.copyHDMABlock(length)
		b.hdmaRemaining = -1
	}
}

// StepHDMA copies one 16-byte block of an in-progress HBlank transfer.
// Called by the video package on entry to HBlank.
func (b *Bus) StepHDMA() {
	if b.hdmaRemaining <= 0 {
		return
	}
	b.copyHDMABlock(16)
	b.hdmaRemaining--
}

func (b *Bus) copyHDMABlock(length int) {
	for i := 0; i < length; i++ {
		value := b.Read(b.hdmaSrc + uint16(i))
		dst := 0x8000 + (b.hdmaDst+uint16(i))&0x1FFF
		b.vram[b.vramBank][dst-0x8000] = value
	}
	b.hdmaSrc += uint16(length)
	b.hdmaDst += uint16(length)
}

// RAM returns the cartridge's battery-backed save RAM, for save-file persistence.
func (b *Bus) RAM() []byte {
	if b.mbc == nil {
		return nil
	}
	return b.mbc.RAM()
}
