package video

// OAM attribute layout: 8 bytes per object, 128 objects total.
const (
	objAttrShape0 = 0 // square
	objAttrShape1 = 1 // horizontal
	objAttrShape2 = 2 // vertical
)

var objSizeTable = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // horizontal
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // vertical
}

type objAttrs struct {
	y, x         int
	shape, size  int
	tileIndex    int
	priority     int
	palBank      int
	use256       bool
	hflip, vflip bool
	disabled     bool
	mode1D       bool
}

func (p *PPU) readObjAttrs(index int, oneDMapping bool) objAttrs {
	oam := p.mem.OAM()
	base := index * 8
	attr0 := uint16(oam[base]) | uint16(oam[base+1])<<8
	attr1 := uint16(oam[base+2]) | uint16(oam[base+3])<<8
	attr2 := uint16(oam[base+4]) | uint16(oam[base+5])<<8

	a := objAttrs{
		y:         int(attr0 & 0xFF),
		shape:     int(attr0>>14) & 0x3,
		use256:    attr0&(1<<13) != 0,
		disabled:  (attr0>>8)&0x3 == 2, // OBJ disable, ignoring affine double-size/mosaic refinements
		x:         int(attr1 & 0x1FF),
		hflip:     attr1&(1<<12) != 0,
		vflip:     attr1&(1<<13) != 0,
		size:      int(attr1>>14) & 0x3,
		tileIndex: int(attr2 & 0x3FF),
		priority:  int(attr2>>10) & 0x3,
		palBank:   int(attr2>>12) & 0xF,
		mode1D:    oneDMapping,
	}
	return a
}

func (p *PPU) objDimensions(a objAttrs) (w, h int) {
	if a.shape > 2 {
		return 8, 8 // shape value 3 is reserved on real hardware
	}
	dims := objSizeTable[a.shape][a.size]
	return dims[0], dims[1]
}

// renderObjects draws every enabled, on-scanline sprite, respecting
// priority against the background layer already composited into
// p.scanline, and against other sprites by OAM index (lower index
// wins ties, the documented hardware rule).
//
// Affine (rotation/scaling) object matrices are not sampled; such
// objects are drawn as if unrotated, a scope reduction documented
// alongside the same simplification in the background renderer.
func (p *PPU) renderObjects(line int, cnt uint16) {
	oneDMapping := cnt&dispcntOBJ1D != 0
	vram := p.mem.VRAM()
	objBase := 0x10000 // OBJ tile data always starts at 0x10000 in VRAM regardless of mode

	// processed from the lowest priority OAM index backward so that a
	// lower index's opaque pixel is painted last and wins ties
	for index := 127; index >= 0; index-- {
		a := p.readObjAttrs(index, oneDMapping)
		if a.disabled {
			continue
		}
		w, h := p.objDimensions(a)

		y := a.y
		if y+h > 256 {
			y -= 256 // wraps from the bottom of OAM's y coordinate space
		}
		if line < y || line >= y+h {
			continue
		}

		row := line - y
		if a.vflip {
			row = h - 1 - row
		}

		tileRow := row / 8
		pxInTileRow := row % 8

		for col := 0; col < w; col++ {
			screenX := a.x + col
			if a.x+w > 512 {
				screenX = a.x + col - 512
			}
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			if a.priority > p.scanlinePriority[screenX] {
				continue // background already drawn here at a higher priority
			}

			c := col
			if a.hflip {
				c = w - 1 - c
			}
			tileCol := c / 8
			pxInTileCol := c % 8

			tilesPerRow := w / 8
			var tileIndex int
			if a.mode1D {
				tileIndex = a.tileIndex + tileRow*tilesPerRow + tileCol
			} else {
				// 2D mapping: sprite sheet is a fixed 32-tile-wide grid
				tilesPerSheetRow := 32
				if a.use256 {
					tilesPerSheetRow = 16
				}
				tileIndex = a.tileIndex + tileRow*tilesPerSheetRow + tileCol
			}

			var colorIdx int
			if a.use256 {
				tileAddr := objBase + tileIndex*64 + pxInTileRow*8 + pxInTileCol
				if tileAddr >= len(vram) {
					continue
				}
				colorIdx = int(vram[tileAddr])
			} else {
				tileAddr := objBase + tileIndex*32 + pxInTileRow*4 + pxInTileCol/2
				if tileAddr >= len(vram) {
					continue
				}
				b := vram[tileAddr]
				if pxInTileCol%2 == 0 {
					colorIdx = int(b & 0xF)
				} else {
					colorIdx = int(b >> 4)
				}
			}

			if colorIdx == 0 {
				continue
			}

			var color uint16
			if a.use256 {
				color = p.objPaletteColor(colorIdx)
			} else {
				color = p.objPaletteColorBank(a.palBank, colorIdx)
			}
			p.scanline[screenX] = color
		}
	}
}

// object palette RAM occupies the second half of palette memory.
func (p *PPU) objPaletteColor(index int) uint16 { return p.paletteColor(256 + index) }

func (p *PPU) objPaletteColorBank(bank, index int) uint16 {
	if index == 0 {
		return p.objPaletteColor(0)
	}
	return p.objPaletteColor(bank*16 + index)
}
