package sgb

import (
	"testing"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/memory"
)

func sendBit(bus *memory.Bus, bit uint8) {
	if bit == 0 {
		bus.Write(addr.P1, 0x20) // P14 low pulses a 0 bit
	} else {
		bus.Write(addr.P1, 0x10) // P15 low pulses a 1 bit
	}
}

func sendPacket(bus *memory.Bus, packet [16]byte) {
	for _, v := range packet {
		for i := 0; i < 8; i++ {
			sendBit(bus, (v>>uint(i))&1)
		}
	}
}

func TestController_PAL01DecodesSharedAndPerPaletteColors(t *testing.T) {
	bus := memory.New(false)
	c := NewController(bus)

	var packet [16]byte
	packet[0] = 0x01 // CmdPAL01 (0x00<<3) | length 1
	packet[1], packet[2] = 0x34, 0x12 // shared color0 = 0x1234
	packet[3], packet[4] = 0x01, 0x00 // palette0 color1
	packet[5], packet[6] = 0x02, 0x00 // palette0 color2
	packet[7], packet[8] = 0x03, 0x00 // palette0 color3
	packet[9], packet[10] = 0x04, 0x00  // palette1 color1
	packet[11], packet[12] = 0x05, 0x00 // palette1 color2
	packet[13], packet[14] = 0x06, 0x00 // palette1 color3

	sendPacket(bus, packet)

	want := [2][4]uint16{
		{0x1234, 1, 2, 3},
		{0x1234, 4, 5, 6},
	}
	for pal := 0; pal < 2; pal++ {
		for color := 0; color < 4; color++ {
			if got := c.SystemPalettes[pal][color]; got != want[pal][color] {
				t.Errorf("palette %d color %d: got 0x%04X, want 0x%04X", pal, color, got, want[pal][color])
			}
		}
	}
}

func TestController_MaskEnSetsMaskModeWithoutAffectingBorderGate(t *testing.T) {
	bus := memory.New(false)
	c := NewController(bus)

	var packet [16]byte
	packet[0] = byte(CmdMaskEn)<<3 | 1
	packet[1] = 0x02 // mode 2: black screen, per the 2-bit mode field

	sendPacket(bus, packet)

	if c.MaskMode != 0x02 {
		t.Fatalf("got MaskMode %d, want 2", c.MaskMode)
	}
	if c.BorderVisible() {
		t.Fatal("mask mode alone, with no CHR/PIC/PAL transfer yet, must not make the border visible")
	}
}

func sendCommand(bus *memory.Bus, cmd Command) {
	var packet [16]byte
	packet[0] = byte(cmd)<<3 | 1
	sendPacket(bus, packet)
}

func TestController_PALTrnSetsPendingFlagWithoutAffectingBorderGate(t *testing.T) {
	bus := memory.New(false)
	c := NewController(bus)

	sendCommand(bus, CmdPALTrn)

	if !c.PendingPalTrn {
		t.Fatal("expected PendingPalTrn to be set")
	}
	if c.BorderVisible() {
		t.Fatal("PAL_TRN alone should not make the border visible")
	}
}

func TestController_BorderVisibleRequiresCHRAndPICAndPALTransfers(t *testing.T) {
	bus := memory.New(false)
	c := NewController(bus)

	sendCommand(bus, CmdPICTrn)
	if c.BorderVisible() {
		t.Fatal("PIC_TRN alone should not make the border visible")
	}

	sendCommand(bus, CmdCHRTrn)
	if c.BorderVisible() {
		t.Fatal("CHR_TRN and PIC_TRN without PAL_TRN should not make the border visible")
	}

	sendCommand(bus, CmdPALTrn)
	if !c.BorderVisible() {
		t.Fatal("CHR_TRN, PIC_TRN and PAL_TRN all received should make the border visible")
	}
}

func TestController_bothLinesLowIsIgnored(t *testing.T) {
	bus := memory.New(false)
	c := NewController(bus)

	bus.Write(addr.P1, 0x00) // both P14 and P15 low: not part of the protocol
	if c.bitCount != 0 {
		t.Fatalf("got bitCount %d, want 0", c.bitCount)
	}
}
