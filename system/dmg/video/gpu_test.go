package video

import (
	"testing"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/memory"
)

func TestTileRowPixel_decodesTwoBitColorIndex(t *testing.T) {
	// low=0b10000000, high=0b10000000 -> pixel 0 has both bits set (index 3)
	if got := tileRowPixel(0x80, 0x80, 0); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
	// pixel 7 (rightmost bit) only set in low -> index 1
	if got := tileRowPixel(0x01, 0x00, 7); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
	if got := tileRowPixel(0x00, 0x00, 3); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestTileDataAddr_signedModeWrapsNegativeIndex(t *testing.T) {
	if got := tileDataAddr(0x9000, true, 0x80, 0); got != 0x8800 {
		t.Fatalf("got 0x%04X, want 0x8800", got)
	}
}

func TestTileDataAddr_unsignedMode(t *testing.T) {
	if got := tileDataAddr(0x8000, false, 2, 3); got != 0x8026 {
		t.Fatalf("got 0x%04X, want 0x8026", got)
	}
}

func TestByteToColor_mapsAllFourShades(t *testing.T) {
	cases := map[byte]GBColor{0: WhiteColor, 1: LightGreyColor, 2: DarkGreyColor, 3: BlackColor}
	for shade, want := range cases {
		if got := ByteToColor(shade); got != want {
			t.Errorf("shade %d: got 0x%08X, want 0x%08X", shade, got, want)
		}
	}
}

func TestCGBColor_decodesPureRedChannel(t *testing.T) {
	// RGB555 word 0x001F: r5=0x1F (max), g5=0, b5=0; 0x1F<<3 = 0xF8
	c := cgbColor(0x1F, 0x00)
	r := byte(c >> 24)
	g := byte(c >> 16)
	b := byte(c >> 8)
	if r != 0xF8 || g != 0x00 || b != 0x00 {
		t.Fatalf("got r=%d g=%d b=%d, want 248,0,0", r, g, b)
	}
}

func TestCGBColor_midRangeChannelIsPlainBitShift(t *testing.T) {
	// RGB555 word 0x0010: r5=16, g5=0, b5=0. A gamma-encoding conversion
	// would land near 190; the hardware's plain r5<<3 gives exactly 128.
	c := cgbColor(0x10, 0x00)
	r := byte(c >> 24)
	g := byte(c >> 16)
	b := byte(c >> 8)
	if r != 128 || g != 0x00 || b != 0x00 {
		t.Fatalf("got r=%d g=%d b=%d, want 128,0,0", r, g, b)
	}
}

func TestSpritePriorityBuffer_lowerXWinsTies(t *testing.T) {
	var buf spritePriorityBuffer
	buf.Clear()

	buf.TryClaimPixel(10, 5, 20) // sprite 5 at X=20 claims first
	if got := buf.GetOwner(10); got != 5 {
		t.Fatalf("got owner %d, want 5", got)
	}

	claimed := buf.TryClaimPixel(10, 3, 15) // sprite 3 at lower X=15 should win
	if !claimed {
		t.Fatal("expected the lower-X sprite to claim the pixel")
	}
	if got := buf.GetOwner(10); got != 3 {
		t.Fatalf("got owner %d, want 3", got)
	}

	claimed = buf.TryClaimPixel(10, 1, 20) // higher X should not reclaim
	if claimed {
		t.Fatal("a higher-X sprite must not steal an already-claimed pixel")
	}
}

func TestSpritePriorityBuffer_equalXFallsBackToLowerOAMIndex(t *testing.T) {
	var buf spritePriorityBuffer
	buf.Clear()

	buf.TryClaimPixel(0, 7, 20)
	claimed := buf.TryClaimPixel(0, 2, 20) // same X, lower OAM index wins
	if !claimed {
		t.Fatal("expected the lower OAM index to win the tie")
	}
	if got := buf.GetOwner(0); got != 2 {
		t.Fatalf("got owner %d, want 2", got)
	}
}

func TestDrawBackground_DMGTileLookupThroughBGP(t *testing.T) {
	bus := memory.New(false)
	g := NewGPU(bus)
	g.line = 0

	bus.Write(addr.LCDC, 0x91) // display on, BG on, tile data at 0x8000, map at 0x9800
	bus.Write(addr.BGP, 0x0C) // color index 1 -> shade 3 (black)
	bus.Write(0x9800, 1)      // map entry (0,0): tile index 1
	bus.Write(0x8010, 0xFF)   // tile 1 row 0, low plane all set -> colorIdx 1 everywhere

	g.drawBackground()

	if got := g.framebuffer.buffer[0]; got != uint32(BlackColor) {
		t.Fatalf("got 0x%08X, want black (0x%08X)", got, uint32(BlackColor))
	}
}

func TestDrawSprites_opaquePixelAboveDisabledBackground(t *testing.T) {
	bus := memory.New(false)
	g := NewGPU(bus)
	g.line = 0

	bus.Write(addr.LCDC, 0x82) // display on, BG off, sprites on, 8x8 sprites
	g.drawBackground()        // BG disabled -> white fill, bgPixelBuffer all 0

	bus.Write(addr.OBP0, 0x08) // color index 1 -> shade 2 (dark grey)
	bus.Write(addr.OAMStart+0, 16)   // Y: spriteY = 16-16 = 0
	bus.Write(addr.OAMStart+1, 8)    // X: spriteX = 8-8 = 0
	bus.Write(addr.OAMStart+2, 2)    // tile index 2
	bus.Write(addr.OAMStart+3, 0x00) // flags: above BG, OBP0, no flip
	bus.Write(0x8020, 0xFF)          // tile 2 row 0, low plane -> colorIdx 1

	g.drawSprites()

	if got := g.framebuffer.buffer[0]; got != uint32(DarkGreyColor) {
		t.Fatalf("got 0x%08X, want dark grey (0x%08X)", got, uint32(DarkGreyColor))
	}
}

func TestDrawSprites_behindBGDefersToOpaqueBackgroundPixel(t *testing.T) {
	bus := memory.New(false)
	g := NewGPU(bus)
	g.line = 0

	bus.Write(addr.LCDC, 0x93) // display, BG, sprites all on
	bus.Write(addr.BGP, 0x0C)
	bus.Write(0x9800, 1)
	bus.Write(0x8010, 0xFF) // BG colorIdx 1 everywhere on this row
	g.drawBackground()

	bus.Write(addr.OBP0, 0x08)
	bus.Write(addr.OAMStart+0, 16)
	bus.Write(addr.OAMStart+1, 8)
	bus.Write(addr.OAMStart+2, 2)
	bus.Write(addr.OAMStart+3, 0x80) // behind BG
	bus.Write(0x8020, 0xFF)

	before := g.framebuffer.buffer[0]
	g.drawSprites()

	if got := g.framebuffer.buffer[0]; got != before {
		t.Fatalf("sprite behind an opaque BG pixel must not be drawn; got 0x%08X, want unchanged 0x%08X", got, before)
	}
}
