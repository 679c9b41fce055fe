package video

import (
	"github.com/shonumi/gbe-plus-sub002/internal/bit"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/memory"
)

// gpuMode is the PPU's current rendering stage, matching STAT bits 1-0.
type gpuMode int

const (
	hblankMode   gpuMode = 0
	vblankMode   gpuMode = 1
	oamReadMode  gpuMode = 2
	vramReadMode gpuMode = 3
)

const (
	hblankCycles       = 204
	oamScanlineCycles  = 80
	vramScanlineCycles = 172
	scanlineCycles     = oamScanlineCycles + vramScanlineCycles + hblankCycles
)

// GPU drives the LCD scanline state machine against a bus, same as the
// teacher's GPU takes a concrete memory unit rather than an interface:
// the amount of per-pixel register traffic makes an abstract Bus
// interface more overhead than value here.
type GPU struct {
	bus         *memory.Bus
	framebuffer *FrameBuffer

	bgPixelBuffer   []byte // background color index (0-3), for sprite priority
	bgPriorityOverBuffer []bool // CGB BG-to-OBJ priority attribute bit per pixel
	spritePriority  spritePriorityBuffer

	mode                 gpuMode
	line                 int
	cycles               int
	modeCounterAux       int
	vBlankLine           int
	isScanLineTransfered bool
	windowLine           int
}

func NewGPU(bus *memory.Bus) *GPU {
	return &GPU{
		bus:                  bus,
		framebuffer:          NewFrameBuffer(),
		bgPixelBuffer:        make([]byte, FramebufferSize),
		bgPriorityOverBuffer: make([]bool, FramebufferSize),
		mode:                 vblankMode,
		line:                 144,
	}
}

func (g *GPU) FrameBuffer() *FrameBuffer { return g.framebuffer }

// Tick advances the PPU by the given number of CPU clock cycles.
func (g *GPU) Tick(cycles int) {
	g.cycles += cycles

	switch g.mode {
	case hblankMode:
		if g.cycles < hblankCycles {
			break
		}
		g.cycles -= hblankCycles
		g.setMode(oamReadMode)
		g.setLY(g.line + 1)

		if g.line == 144 {
			g.setMode(vblankMode)
			g.vBlankLine = 0
			g.modeCounterAux = g.cycles
			g.windowLine = 0
			g.bus.RequestInterrupt(addr.VBlankInterrupt)
			if g.bus.ReadBit(statVblankIrq, addr.STAT) {
				g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		} else if g.bus.ReadBit(statOamIrq, addr.STAT) {
			g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	case vblankMode:
		g.modeCounterAux += cycles

		if g.modeCounterAux >= scanlineCycles {
			g.modeCounterAux -= scanlineCycles
			g.vBlankLine++
			if g.vBlankLine <= 9 {
				g.setLY(g.line + 1)
			}
		}

		if g.cycles >= 4104 && g.modeCounterAux >= 4 && g.line == 153 {
			g.setLY(0)
		}

		if g.cycles >= 4560 {
			g.cycles -= 4560
			g.setMode(oamReadMode)
			if g.bus.ReadBit(statOamIrq, addr.STAT) {
				g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	case oamReadMode:
		if g.cycles >= oamScanlineCycles {
			g.cycles -= oamScanlineCycles
			g.setMode(vramReadMode)
			g.isScanLineTransfered = false
		}
	case vramReadMode:
		if !g.isScanLineTransfered {
			if g.readLCDC(lcdDisplayEnable) == 1 {
				g.drawScanline()
			}
			g.isScanLineTransfered = true
		}

		if g.cycles >= vramScanlineCycles {
			g.cycles -= vramScanlineCycles
			g.setMode(hblankMode)
			g.bus.StepHDMA()
			if g.bus.ReadBit(statHblankIrq, addr.STAT) {
				g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
			}
		}
	}

	if g.cycles >= 70224 {
		g.cycles -= 70224
	}
}

func (g *GPU) drawScanline() {
	if g.readLCDC(lcdDisplayEnable) != 1 {
		lineWidth := g.line * FramebufferWidth
		for i := 0; i < FramebufferWidth; i++ {
			g.framebuffer.buffer[lineWidth+i] = uint32(WhiteColor)
		}
		return
	}

	g.drawBackground()
	g.drawWindow()
	g.drawSprites()
}

// statFlag names the STAT register's IRQ-enable and mode bits.
type statFlag = uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq       statFlag = 5
	statVblankIrq    statFlag = 4
	statHblankIrq    statFlag = 3
	statLycCondition statFlag = 2
)

// lcdcFlag names the LCDC register's control bits.
type lcdcFlag = uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect    lcdcFlag = 6
	windowDisplayEnable    lcdcFlag = 5
	bgWindowTileDataSelect lcdcFlag = 4
	bgTileMapDisplaySelect lcdcFlag = 3
	spriteSize             lcdcFlag = 2
	spriteDisplayEnable    lcdcFlag = 1
	bgDisplay              lcdcFlag = 0
)

func (g *GPU) readLCDC(flag lcdcFlag) byte {
	if bit.IsSet(flag, g.bus.Read(addr.LCDC)) {
		return 1
	}
	return 0
}

func (g *GPU) compareLYToLYC() {
	ly := g.bus.Read(addr.LY)
	lyc := g.bus.Read(addr.LYC)
	stat := g.bus.Read(addr.STAT)

	if ly == lyc {
		stat = bit.Set(statLycCondition, stat)
		if bit.IsSet(statLycIrq, stat) {
			g.bus.RequestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		stat = bit.Reset(statLycCondition, stat)
	}
	g.bus.Write(addr.STAT, stat)
}

func (g *GPU) setMode(mode gpuMode) {
	g.mode = mode
	stat := g.bus.Read(addr.STAT)
	stat = stat&0xFC | byte(mode)
	g.bus.Write(addr.STAT, stat)
}

func (g *GPU) setLY(line int) {
	g.line = line
	g.bus.Write(addr.LY, byte(g.line))
	g.compareLYToLYC()
}
