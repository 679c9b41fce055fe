package memory

import (
	"testing"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
)

func TestBus_echoRegionMirrorsWorkRAM(t *testing.T) {
	b := New(false)

	b.Write(0xE005, 0x99)
	if got := b.Read(0xC005); got != 0x99 {
		t.Fatalf("got 0x%02X, want 0x99", got)
	}

	b.Write(0xC010, 0x42)
	if got := b.Read(0xE010); got != 0x42 {
		t.Fatalf("got 0x%02X, want 0x42", got)
	}
}

func TestBus_OAMDMACopiesFromSourcePage(t *testing.T) {
	b := New(false)

	for i := uint16(0); i < 160; i++ {
		b.Write(0xC000+i, byte(i))
	}

	b.Write(addr.DMA, 0xC0) // source page 0xC000

	for i := uint16(0); i < 160; i++ {
		if got := b.Read(0xFE00 + i); got != byte(i) {
			t.Fatalf("oam[%d] = 0x%02X, want 0x%02X", i, got, byte(i))
		}
	}
}

func TestBus_HDMAImmediateTransferCopiesToVRAM(t *testing.T) {
	b := New(true)

	for i := uint16(0); i < 16; i++ {
		b.Write(0xC000+i, byte(0x10+i))
	}

	b.Write(addr.HDMA1, 0xC0) // src = 0xC000
	b.Write(addr.HDMA2, 0x00)
	b.Write(addr.HDMA3, 0x00) // dst = 0x0000 (VRAM offset)
	b.Write(addr.HDMA4, 0x00)
	b.Write(addr.HDMA5, 0x00) // length (0+1)*16 = 16, general-purpose

	for i := uint16(0); i < 16; i++ {
		if got := b.Read(0x8000 + i); got != byte(0x10+i) {
			t.Fatalf("vram[%d] = 0x%02X, want 0x%02X", i, got, byte(0x10+i))
		}
	}
	if got := b.Read(addr.HDMA5); got != 0xFF {
		t.Fatalf("HDMA5 should read 0xFF once the transfer completes, got 0x%02X", got)
	}
}

func TestBus_HDMAHBlankTransferStepsOneBlockAtATime(t *testing.T) {
	b := New(true)

	for i := uint16(0); i < 32; i++ {
		b.Write(0xC000+i, byte(i))
	}

	b.Write(addr.HDMA1, 0xC0)
	b.Write(addr.HDMA2, 0x00)
	b.Write(addr.HDMA3, 0x00)
	b.Write(addr.HDMA4, 0x00)
	b.Write(addr.HDMA5, 0x81) // bit7 set: HBlank-paced, length (1+1)*16=32

	if got := b.Read(0x8000); got != 0x00 {
		t.Fatalf("HBlank transfer must not copy anything before the first StepHDMA, got 0x%02X", got)
	}

	b.StepHDMA()
	for i := uint16(0); i < 16; i++ {
		if got := b.Read(0x8000 + i); got != byte(i) {
			t.Fatalf("block 1, byte %d: got 0x%02X, want 0x%02X", i, got, byte(i))
		}
	}
	if got := b.Read(0x8010); got != 0x00 {
		t.Fatal("second block should not be copied yet")
	}

	b.StepHDMA()
	for i := uint16(0); i < 16; i++ {
		if got := b.Read(0x8010 + i); got != byte(16+i) {
			t.Fatalf("block 2, byte %d: got 0x%02X, want 0x%02X", i, got, byte(16+i))
		}
	}
}

func TestBus_SwitchSpeedTogglesDoubleSpeedAndClearsPrepareBit(t *testing.T) {
	b := New(true)

	b.Write(addr.KEY1, 0x01) // request a speed switch
	b.SwitchSpeed()

	if !b.DoubleSpeed() {
		t.Fatal("expected double-speed mode to be active")
	}
	if got := b.Read(addr.KEY1); got != 0xFE {
		t.Fatalf("got 0x%02X, want 0xFE", got)
	}

	b.Write(addr.KEY1, 0x01)
	b.SwitchSpeed()
	if b.DoubleSpeed() {
		t.Fatal("expected double-speed mode to be cleared")
	}
}

func TestBus_SwitchSpeedIsNoOpOnDMG(t *testing.T) {
	b := New(false)

	b.Write(addr.KEY1, 0x01)
	b.SwitchSpeed()

	if b.DoubleSpeed() {
		t.Fatal("DMG must never enter double-speed mode")
	}
}
