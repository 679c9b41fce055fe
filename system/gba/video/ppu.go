// Package video implements the successor system's LCD controller: the
// tiled/bitmap background modes, sprite (OBJ) compositing and the
// scanline timing that drives HBlank/VBlank interrupts and DMA.
package video

import "github.com/shonumi/gbe-plus-sub002/system/gba/addr"

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	cyclesPerDot    = 4
	dotsPerLine     = 308
	cyclesPerLine   = dotsPerLine * cyclesPerDot
	visibleLines    = ScreenHeight
	totalLines      = 228
	hblankDotOffset = 240
)

// Memory is the subset of the bus the PPU needs: direct access to
// VRAM/palette/OAM backing storage plus the handful of I/O registers
// it owns, and the interrupt/DMA notification hooks triggered by
// HBlank and VBlank.
type Memory interface {
	VRAM() *[addr.VRAMSize]byte
	Palette() *[addr.PaletteSize]byte
	OAM() *[addr.OAMSize]byte
	IORegister(address uint32) byte
	SetIORegister(address uint32, value byte)
	RequestInterrupt(addr.Interrupt)
	NotifyHBlank()
	NotifyVBlank()
}

// Sink receives one fully rendered frame as row-major 32-bit ARGB
// pixels, analogous to system/dmg/video.Sink.
type Sink interface {
	Present(pixels []uint32, width, height int)
}

// PPU renders one 240x160 frame at a time across five background/OBJ
// modes, tracked by a dot-accurate scanline counter.
type PPU struct {
	mem  Memory
	sink Sink

	dot  int
	line int

	frame      [ScreenWidth * ScreenHeight]uint16
	argbFrame  [ScreenWidth * ScreenHeight]uint32
	scanline   [ScreenWidth]uint16

	scanlinePriority [ScreenWidth]int // priority of the bg layer currently drawn at each x, 4 = backdrop only
}

// gba555ToARGB converts one native 5-5-5 BGR color word (as stored in
// palette RAM and VRAM bitmap modes) into a 32-bit ARGB pixel. Each
// 5-bit channel is left-shifted into its 8-bit field with no further
// color-space conversion, the same bare-shift rule the 8-bit family's
// CGB palette decoder uses.
func gba555ToARGB(word uint16) uint32 {
	r5 := uint32(word) & 0x1F
	g5 := (uint32(word) >> 5) & 0x1F
	b5 := (uint32(word) >> 10) & 0x1F

	r8 := r5 << 3
	g8 := g5 << 3
	b8 := b5 << 3

	return 0xFF000000 | r8<<16 | g8<<8 | b8
}

// New creates a PPU rendering into mem and presenting completed frames
// to sink.
func New(mem Memory, sink Sink) *PPU {
	return &PPU{mem: mem, sink: sink}
}

// Tick advances the scanline state machine by cycles bus cycles,
// firing HBlank/VBlank at the documented dot boundaries and rendering
// each visible scanline exactly once, at its HBlank transition.
func (p *PPU) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		p.tickDot()
	}
}

func (p *PPU) tickDot() {
	p.dot++
	if p.dot == hblankDotOffset {
		p.setHBlankFlag(true)
		if p.line < visibleLines {
			p.renderLine(p.line)
		}
		p.mem.NotifyHBlank()
		if p.dispstat()&dispstatHBlankIRQ != 0 {
			p.mem.RequestInterrupt(addr.IRQHBlank)
		}
	}
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.setHBlankFlag(false)
		p.line++
		if p.line >= totalLines {
			p.line = 0
		}
		p.setVCOUNT(p.line)
		p.checkVCountMatch()

		switch p.line {
		case visibleLines:
			p.setVBlankFlag(true)
			p.mem.NotifyVBlank()
			if p.dispstat()&dispstatVBlankIRQ != 0 {
				p.mem.RequestInterrupt(addr.IRQVBlank)
			}
			p.present()
		case totalLines - 1:
			// VBlank flag clears one line before wraparound on real hardware
			p.setVBlankFlag(false)
		case 0:
			p.setVBlankFlag(false)
		}
	}
}

func (p *PPU) present() {
	for i, pixel := range p.frame {
		p.argbFrame[i] = gba555ToARGB(pixel)
	}
	p.sink.Present(p.argbFrame[:], ScreenWidth, ScreenHeight)
}

// register bit layout for DISPCNT/DISPSTAT.
const (
	dispcntModeMask  = 0x7
	dispcntFrameSel  = 1 << 4
	dispcntOBJ1D     = 1 << 6
	dispcntForceBlank = 1 << 7
	dispcntBG0       = 1 << 8
	dispcntBG1       = 1 << 9
	dispcntBG2       = 1 << 10
	dispcntBG3       = 1 << 11
	dispcntOBJ       = 1 << 12
	dispcntWin0      = 1 << 13
	dispcntWin1      = 1 << 14
	dispcntWinOBJ    = 1 << 15

	dispstatVBlankFlag = 1 << 0
	dispstatHBlankFlag = 1 << 1
	dispstatVCountFlag = 1 << 2
	dispstatVBlankIRQ  = 1 << 3
	dispstatHBlankIRQ  = 1 << 4
	dispstatVCountIRQ  = 1 << 5
)

func (p *PPU) reg16(address uint32) uint16 {
	return uint16(p.mem.IORegister(address)) | uint16(p.mem.IORegister(address+1))<<8
}

func (p *PPU) setReg16(address uint32, value uint16) {
	p.mem.SetIORegister(address, byte(value))
	p.mem.SetIORegister(address+1, byte(value>>8))
}

func (p *PPU) dispcnt() uint16   { return p.reg16(addr.DISPCNT) }
func (p *PPU) dispstat() uint16  { return p.reg16(addr.DISPSTAT) }

func (p *PPU) setHBlankFlag(set bool) { p.setStatusFlag(dispstatHBlankFlag, set) }
func (p *PPU) setVBlankFlag(set bool) { p.setStatusFlag(dispstatVBlankFlag, set) }

func (p *PPU) setStatusFlag(bit uint16, set bool) {
	v := p.dispstat()
	if set {
		v |= bit
	} else {
		v &^= bit
	}
	p.setReg16(addr.DISPSTAT, v)
}

func (p *PPU) setVCOUNT(line int) {
	p.mem.SetIORegister(addr.VCOUNT, byte(line))
	p.mem.SetIORegister(addr.VCOUNT+1, 0)
}

func (p *PPU) checkVCountMatch() {
	target := p.dispstat() >> 8
	match := int(target) == p.line
	p.setStatusFlag(dispstatVCountFlag, match)
	if match && p.dispstat()&dispstatVCountIRQ != 0 {
		p.mem.RequestInterrupt(addr.IRQVCount)
	}
}

// renderLine composites one visible scanline into the frame buffer
// according to the background mode currently selected in DISPCNT.
func (p *PPU) renderLine(line int) {
	cnt := p.dispcnt()
	if cnt&dispcntForceBlank != 0 {
		p.fillLineWhite(line)
		return
	}

	backdrop := p.paletteColor(0)
	for x := range p.scanline {
		p.scanline[x] = backdrop
		p.scanlinePriority[x] = 4
	}

	mode := cnt & dispcntModeMask
	switch mode {
	case 0:
		p.renderTiledMode(line, cnt, false)
	case 1, 2:
		p.renderTiledMode(line, cnt, mode == 2)
	case 3:
		p.renderMode3(line)
	case 4:
		p.renderMode4(line, cnt)
	case 5:
		p.renderMode5(line, cnt)
	}

	if cnt&dispcntOBJ != 0 {
		p.renderObjects(line, cnt)
	}

	copy(p.frame[line*ScreenWidth:(line+1)*ScreenWidth], p.scanline[:])
}

func (p *PPU) fillLineWhite(line int) {
	for x := range p.scanline {
		p.scanline[x] = 0x7FFF
	}
	copy(p.frame[line*ScreenWidth:(line+1)*ScreenWidth], p.scanline[:])
}
