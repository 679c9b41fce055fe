package video

import "github.com/shonumi/gbe-plus-sub002/system/dmg/addr"

// tileAttr decodes a CGB tile map attribute byte (bank 1, same offset as
// the tile index in bank 0).
type tileAttr struct {
	palette    uint8
	bank       uint8
	flipX      bool
	flipY      bool
	bgPriority bool
}

func decodeTileAttr(raw byte) tileAttr {
	return tileAttr{
		palette:    raw & 0x07,
		bank:       (raw >> 3) & 0x01,
		flipX:      raw&0x20 != 0,
		flipY:      raw&0x40 != 0,
		bgPriority: raw&0x80 != 0,
	}
}

func (g *GPU) cgb() bool { return g.bus.CGB() }

func (g *GPU) bgColor(paletteIdx uint8, colorIdx byte) GBColor {
	if !g.cgb() {
		palette := g.bus.Read(addr.BGP)
		shade := (palette >> (colorIdx * 2)) & 0x03
		return ByteToColor(shade)
	}
	off := int(paletteIdx)*8 + int(colorIdx)*2
	pal := g.bus.BGPalette()
	return cgbColor(pal[off], pal[off+1])
}

func (g *GPU) objColor(paletteIdx uint8, colorIdx byte, useOBP1 bool) GBColor {
	if !g.cgb() {
		reg := addr.OBP0
		if useOBP1 {
			reg = addr.OBP1
		}
		palette := g.bus.Read(reg)
		shade := (palette >> (colorIdx * 2)) & 0x03
		return ByteToColor(shade)
	}
	off := int(paletteIdx)*8 + int(colorIdx)*2
	pal := g.bus.ObjPalette()
	return cgbColor(pal[off], pal[off+1])
}

func tileRowPixel(low, high byte, x int) byte {
	bitIndex := uint8(7 - x)
	pixel := byte(0)
	if (low>>bitIndex)&1 == 1 {
		pixel |= 1
	}
	if (high>>bitIndex)&1 == 1 {
		pixel |= 2
	}
	return pixel
}

func (g *GPU) drawBackground() {
	lineWidth := g.line * FramebufferWidth
	if g.readLCDC(bgDisplay) == 0 && !g.cgb() {
		color := g.bgColor(0, 0)
		for i := 0; i < FramebufferWidth; i++ {
			g.framebuffer.buffer[lineWidth+i] = uint32(color)
			g.bgPixelBuffer[lineWidth+i] = 0
			g.bgPriorityOverBuffer[lineWidth+i] = false
		}
		return
	}

	useSignedTileSet := g.readLCDC(bgWindowTileDataSelect) == 0
	useTileMapZero := g.readLCDC(bgTileMapDisplaySelect) == 0

	tilesAddr := addr.TileData0
	if useSignedTileSet {
		tilesAddr = addr.TileData2
	}
	tileMapAddr := addr.TileMap1
	if useTileMapZero {
		tileMapAddr = addr.TileMap0
	}

	scrollX := g.bus.Read(addr.SCX)
	scrollY := g.bus.Read(addr.SCY)
	lineScrolled := (g.line + int(scrollY)) & 0xFF
	row32 := (lineScrolled / 8) * 32
	pixelYInTile := lineScrolled % 8

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		mapPixelX := (screenX + int(scrollX)) & 0xFF
		mapTileX := mapPixelX / 8
		tileXOffset := mapPixelX % 8
		mapAddr := tileMapAddr + uint16(row32+mapTileX)

		tileIndex := g.bus.ReadVRAMBank(0, mapAddr)
		attr := tileAttr{}
		if g.cgb() {
			attr = decodeTileAttr(g.bus.ReadVRAMBank(1, mapAddr))
		}

		py := pixelYInTile
		if attr.flipY {
			py = 7 - py
		}
		px := tileXOffset
		if attr.flipX {
			px = 7 - px
		}

		tileAddr := tileDataAddr(tilesAddr, useSignedTileSet, tileIndex, py)
		low := g.bus.ReadVRAMBank(attr.bank, tileAddr)
		high := g.bus.ReadVRAMBank(attr.bank, tileAddr+1)
		colorIdx := tileRowPixel(low, high, px)

		pos := lineWidth + screenX
		g.framebuffer.buffer[pos] = uint32(g.bgColor(attr.palette, colorIdx))
		g.bgPixelBuffer[pos] = colorIdx
		g.bgPriorityOverBuffer[pos] = attr.bgPriority
	}
}

func tileDataAddr(base uint16, signedMode bool, tileIndex byte, rowInTile int) uint16 {
	if signedMode {
		signed := int(int8(tileIndex))
		return uint16(int(base) + signed*16 + rowInTile*2)
	}
	return base + uint16(int(tileIndex)*16+rowInTile*2)
}

func (g *GPU) drawWindow() {
	if g.windowLine > 143 {
		return
	}
	if g.readLCDC(windowDisplayEnable) == 0 {
		return
	}

	wx := int(g.bus.Read(addr.WX)) - 7
	wy := g.bus.Read(addr.WY)

	if wx > 159 || int(wy) > g.line {
		return
	}

	useSignedTileSet := g.readLCDC(bgWindowTileDataSelect) == 0
	useTileMapZero := g.readLCDC(windowTileMapSelect) == 0

	tilesAddr := addr.TileData0
	if useSignedTileSet {
		tilesAddr = addr.TileData2
	}
	tileMapAddr := addr.TileMap1
	if useTileMapZero {
		tileMapAddr = addr.TileMap0
	}

	row32 := (g.windowLine / 8) * 32
	pixelYInTile := g.windowLine & 7
	lineWidth := g.line * FramebufferWidth

	for tileX := 0; tileX < 32; tileX++ {
		mapAddr := tileMapAddr + uint16(row32+tileX)
		tileIndex := g.bus.ReadVRAMBank(0, mapAddr)
		attr := tileAttr{}
		if g.cgb() {
			attr = decodeTileAttr(g.bus.ReadVRAMBank(1, mapAddr))
		}

		py := pixelYInTile
		if attr.flipY {
			py = 7 - py
		}

		tileAddr := tileDataAddr(tilesAddr, useSignedTileSet, tileIndex, py)
		low := g.bus.ReadVRAMBank(attr.bank, tileAddr)
		high := g.bus.ReadVRAMBank(attr.bank, tileAddr+1)

		for px := 0; px < 8; px++ {
			bufferX := tileX*8 + px + wx
			if bufferX < wx || bufferX >= FramebufferWidth {
				continue
			}
			sampleX := px
			if attr.flipX {
				sampleX = 7 - px
			}
			colorIdx := tileRowPixel(low, high, sampleX)
			pos := lineWidth + bufferX
			if pos < 0 || pos >= len(g.framebuffer.buffer) {
				continue
			}
			g.framebuffer.buffer[pos] = uint32(g.bgColor(attr.palette, colorIdx))
			g.bgPixelBuffer[pos] = colorIdx
			g.bgPriorityOverBuffer[pos] = attr.bgPriority
		}
	}
	g.windowLine++
}

func (g *GPU) drawSprites() {
	if g.readLCDC(spriteDisplayEnable) != 1 {
		return
	}

	spriteHeight := 8
	if g.readLCDC(spriteSize) == 1 {
		spriteHeight = 16
	}
	lineWidth := g.line * FramebufferWidth

	var spritesToDraw []int
	for sprite := 0; sprite < 40; sprite++ {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(g.bus.Read(oamAddr)) - 16
		if spriteY > g.line || (spriteY+spriteHeight) <= g.line {
			continue
		}
		spritesToDraw = append(spritesToDraw, sprite)
		if len(spritesToDraw) >= 10 {
			break
		}
	}

	g.spritePriority.Clear()
	for _, sprite := range spritesToDraw {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteX := int(g.bus.Read(oamAddr+1)) - 8
		priorityX := spriteX
		if g.cgb() {
			// CGB sprite priority is OAM-index order only.
			priorityX = 0
		}
		for pixelOffset := 0; pixelOffset < 8; pixelOffset++ {
			g.spritePriority.TryClaimPixel(spriteX+pixelOffset, sprite, priorityX)
		}
	}

	for _, sprite := range spritesToDraw {
		oamAddr := addr.OAMStart + uint16(sprite*4)
		spriteY := int(g.bus.Read(oamAddr)) - 16
		spriteX := int(g.bus.Read(oamAddr+1)) - 8
		spriteTile := g.bus.Read(oamAddr + 2)
		flags := g.bus.Read(oamAddr + 3)

		hasPixels := false
		for x := 0; x < 8; x++ {
			if g.spritePriority.GetOwner(spriteX+x) == sprite {
				hasPixels = true
				break
			}
		}
		if !hasPixels {
			continue
		}

		mask := 0xFF
		if spriteHeight == 16 {
			mask = 0xFE
		}
		spriteTile16 := (int(spriteTile) & mask) * 16

		flipX := flags&0x20 != 0
		flipY := flags&0x40 != 0
		aboveBG := flags&0x80 == 0

		var paletteIdx uint8
		var useOBP1 bool
		var bank uint8
		if g.cgb() {
			paletteIdx = flags & 0x07
			bank = (flags >> 3) & 0x01
		} else {
			useOBP1 = flags&0x10 != 0
		}

		pixelY := g.line - spriteY
		if flipY {
			pixelY = spriteHeight - 1 - pixelY
		}

		var rowOffset int
		if spriteHeight == 16 && pixelY >= 8 {
			rowOffset = (pixelY-8)*2 + 16
		} else {
			rowOffset = pixelY * 2
		}

		tileAddr := addr.TileData0 + uint16(spriteTile16+rowOffset)
		low := g.bus.ReadVRAMBank(bank, tileAddr)
		high := g.bus.ReadVRAMBank(bank, tileAddr+1)

		for px := 0; px < 8; px++ {
			bufferX := spriteX + px
			if g.spritePriority.GetOwner(bufferX) != sprite {
				continue
			}
			sampleX := px
			if flipX {
				sampleX = 7 - px
			}
			colorIdx := tileRowPixel(low, high, sampleX)
			if colorIdx == 0 {
				continue
			}

			pos := lineWidth + bufferX
			if !aboveBG {
				if g.cgb() {
					if g.readLCDC(bgDisplay) == 1 && (g.bgPriorityOverBuffer[pos] || g.bgPixelBuffer[pos] != 0) {
						continue
					}
				} else if g.bgPixelBuffer[pos] != 0 {
					continue
				}
			}

			g.framebuffer.buffer[pos] = uint32(g.objColor(paletteIdx, colorIdx, useOBP1))
		}
	}
}
