package video

import "github.com/shonumi/gbe-plus-sub002/system/gba/addr"

const (
	bgCntPaletteMode = 1 << 7 // 0 = 16/16, 1 = 256/1
	bgCntMosaic      = 1 << 6
	bgCntScreenBase  = 0x1F00
	bgCntCharBase    = 0x000C
)

func (p *PPU) paletteColor(index int) uint16 {
	pal := p.mem.Palette()
	off := index * 2
	return uint16(pal[off]) | uint16(pal[off+1])<<8
}

func (p *PPU) paletteColorBank(bank, index int) uint16 {
	if index == 0 {
		return p.paletteColor(0)
	}
	return p.paletteColor(bank*16 + index)
}

// renderTiledMode draws the four text-mode backgrounds (modes 0/1) or
// the affine BG2 layer on top of text backgrounds (mode 1) or rotated
// BG2/BG3 only (mode 2), in priority order, for one scanline.
//
// Affine transform support is simplified to background scrolling only;
// the rotation/scaling registers are not read and affine layers are
// drawn through the text-layer path, documented as a scope reduction.
func (p *PPU) renderTiledMode(line int, cnt uint16, bothAffine bool) {
	type layer struct {
		id       int
		priority int
	}
	var layers []layer

	regularCount := 4
	if bothAffine {
		regularCount = 0 // mode 2: BG2/BG3 only, both affine-addressed
	}
	enableMask := []uint16{dispcntBG0, dispcntBG1, dispcntBG2, dispcntBG3}
	start := 0
	if bothAffine {
		start = 2
	}
	_ = regularCount
	for id := start; id < 4; id++ {
		if cnt&enableMask[id] == 0 {
			continue
		}
		bgcnt := p.bgControl(id)
		layers = append(layers, layer{id: id, priority: int(bgcnt & 0x3)})
	}

	// Lower priority value draws on top; iterate back-to-front so the
	// highest-priority (lowest value) layer is composited last.
	for pass := 3; pass >= 0; pass-- {
		for _, l := range layers {
			if l.priority != pass {
				continue
			}
			p.renderTextLayer(line, l.id)
		}
	}
}

func (p *PPU) bgControlAddr(id int) uint32 {
	switch id {
	case 0:
		return addr.BG0CNT
	case 1:
		return addr.BG1CNT
	case 2:
		return addr.BG2CNT
	default:
		return addr.BG3CNT
	}
}

func (p *PPU) bgControl(id int) uint16 { return p.reg16(p.bgControlAddr(id)) }

func (p *PPU) bgScroll(id int) (x, y int) {
	base := addr.BG0HOFS + uint32(id)*4
	return int(p.reg16(base) & 0x1FF), int(p.reg16(base+2) & 0x1FF)
}

// renderTextLayer draws one 8bpp/4bpp tiled background, 256x256 to
// 512x512 in size, wrapping the scroll offset.
func (p *PPU) renderTextLayer(line, id int) {
	bgcnt := p.bgControl(id)
	priority := int(bgcnt & 0x3)
	scrollX, scrollY := p.bgScroll(id)
	y := (line + scrollY) & 0x1FF

	screenBase := int(bgcnt&bgCntScreenBase) >> 8 * 0x800
	charBase := int(bgcnt&bgCntCharBase) >> 2 * 0x4000
	screenSize := (bgcnt >> 14) & 0x3
	wide := screenSize == 1 || screenSize == 3
	tall := screenSize == 2 || screenSize == 3
	use256 := bgcnt&bgCntPaletteMode != 0

	vram := p.mem.VRAM()

	for x := 0; x < ScreenWidth; x++ {
		sx := (x + scrollX) & 0x1FF
		mapX, mapY := sx, y
		block := 0
		if wide && mapX >= 256 {
			block += 1
			mapX -= 256
		}
		if tall && mapY >= 256 {
			block += 2
			mapY -= 256
		}

		tileCol, tileRow := mapX/8, mapY/8
		entryAddr := screenBase + block*0x800 + (tileRow*32+tileCol)*2
		if entryAddr+1 >= len(vram) {
			continue
		}
		entry := uint16(vram[entryAddr]) | uint16(vram[entryAddr+1])<<8

		tileIndex := int(entry & 0x3FF)
		hflip := entry&(1<<10) != 0
		vflip := entry&(1<<11) != 0
		palBank := int(entry>>12) & 0xF

		px, py := mapX%8, mapY%8
		if hflip {
			px = 7 - px
		}
		if vflip {
			py = 7 - py
		}

		var colorIdx int
		if use256 {
			tileAddr := charBase + tileIndex*64 + py*8 + px
			if tileAddr >= len(vram) {
				continue
			}
			colorIdx = int(vram[tileAddr])
		} else {
			tileAddr := charBase + tileIndex*32 + py*4 + px/2
			if tileAddr >= len(vram) {
				continue
			}
			b := vram[tileAddr]
			if px%2 == 0 {
				colorIdx = int(b & 0xF)
			} else {
				colorIdx = int(b >> 4)
			}
		}

		if colorIdx == 0 {
			continue // transparent, backdrop already drawn
		}

		var color uint16
		if use256 {
			color = p.paletteColor(colorIdx)
		} else {
			color = p.paletteColorBank(palBank, colorIdx)
		}
		p.scanline[x] = color
		p.scanlinePriority[x] = priority
	}
}

// renderMode3 draws the 16bpp single-buffered bitmap mode.
func (p *PPU) renderMode3(line int) {
	vram := p.mem.VRAM()
	base := line * ScreenWidth * 2
	for x := 0; x < ScreenWidth; x++ {
		off := base + x*2
		if off+1 >= len(vram) {
			break
		}
		p.scanline[x] = uint16(vram[off]) | uint16(vram[off+1])<<8
	}
}

// renderMode4 draws the 8bpp paletted, double-buffered bitmap mode.
func (p *PPU) renderMode4(line int, cnt uint16) {
	vram := p.mem.VRAM()
	frameOffset := 0
	if cnt&dispcntFrameSel != 0 {
		frameOffset = 0xA000
	}
	base := frameOffset + line*ScreenWidth
	for x := 0; x < ScreenWidth; x++ {
		off := base + x
		if off >= len(vram) {
			break
		}
		idx := int(vram[off])
		if idx == 0 {
			continue
		}
		p.scanline[x] = p.paletteColor(idx)
	}
}

// renderMode5 draws the reduced-resolution (160x128) double-buffered
// 16bpp bitmap mode; rows/columns outside that window show the backdrop.
func (p *PPU) renderMode5(line int, cnt uint16) {
	const mode5Width, mode5Height = 160, 128
	if line >= mode5Height {
		return
	}
	vram := p.mem.VRAM()
	frameOffset := 0
	if cnt&dispcntFrameSel != 0 {
		frameOffset = 0xA000
	}
	base := frameOffset + line*mode5Width*2
	for x := 0; x < mode5Width; x++ {
		off := base + x*2
		if off+1 >= len(vram) {
			break
		}
		p.scanline[x] = uint16(vram[off]) | uint16(vram[off+1])<<8
	}
}
