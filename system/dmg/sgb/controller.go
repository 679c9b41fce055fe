// Package sgb implements the Super Game Boy command stream: a DMG
// program talks to the SGB base unit by bit-banging the P1 joypad
// register's two select lines, one bit at a time, to deliver 16-byte
// packets. This package decodes that stream into commands and tracks
// the resulting system palettes and border-rendering gate.
package sgb

import "github.com/shonumi/gbe-plus-sub002/system/dmg/memory"

// Command identifies one of the documented SGB command-stream opcodes.
type Command uint8

const (
	CmdPAL01   Command = 0x00
	CmdPAL23   Command = 0x01
	CmdPAL03   Command = 0x02
	CmdPAL12   Command = 0x03
	CmdPALSet  Command = 0x0A
	CmdPALTrn  Command = 0x0B
	CmdCHRTrn  Command = 0x13
	CmdPICTrn  Command = 0x14
	CmdATTRTrn Command = 0x15
	CmdMaskEn  Command = 0x17
)

// Controller decodes the P1 bit-clock protocol into packets and applies
// the documented commands. Bulk-transfer commands (PAL_TRN/CHR_TRN/
// PIC_TRN/ATTR_TRN), which stream their payload through VRAM over
// several subsequent VBlanks rather than through the command packet
// itself, are recorded as pending requests; completing them is the
// responsibility of a host-side border/overlay renderer, since the
// core's own framebuffer is limited to the 160x144 LCD output.
type Controller struct {
	bus *memory.Bus

	state      protocolState
	bitBuffer  uint8
	bitCount   int
	packet     [16]byte
	packetByte int

	packetsExpected int
	packetsReceived int

	// SystemPalettes holds the 4 SGB system palettes (indices 0-3), each
	// 4 colors, as little-endian RGB555 words per PAL01/PAL23/PAL03/PAL12.
	SystemPalettes [4][4]uint16

	MaskMode byte // 0=cancel, 1=freeze, 2=black, 3=color 0

	PendingPalTrn  bool
	PendingCHRTrn  bool
	PendingPICTrn  bool
	PendingATTRTrn bool
}

type protocolState uint8

const (
	stateIdle protocolState = iota
	stateReceivingBit
)

// NewController creates a controller and wires it to bus's P1 snooping hook.
func NewController(bus *memory.Bus) *Controller {
	c := &Controller{bus: bus}
	bus.SetSGBObserver(c.observe)
	return c
}

// observe is called with every value written to P1. The two select bits
// (4,5) carry the bit-clock: both high is idle/reset, P14 low pulses a
// 0 bit, P15 low pulses a 1 bit.
func (c *Controller) observe(value uint8) {
	p14 := value&0x10 == 0
	p15 := value&0x20 == 0

	switch {
	case p14 && p15:
		// both lines pulled low simultaneously: not part of the protocol
		return
	case !p14 && !p15:
		// both released: reset condition between packets
		c.bitCount = 0
		c.packetByte = 0
		return
	case p14:
		c.pushBit(0)
	case p15:
		c.pushBit(1)
	}
}

func (c *Controller) pushBit(b uint8) {
	bitPos := c.bitCount % 8
	if bitPos == 0 {
		c.packet[c.packetByte] = 0
	}
	c.packet[c.packetByte] |= b << uint(bitPos)
	c.bitCount++

	if c.bitCount%8 == 0 {
		c.packetByte++
	}
	if c.packetByte == 16 {
		c.completePacket()
		c.packetByte = 0
		c.bitCount = 0
	}
}

func (c *Controller) completePacket() {
	cmd := Command(c.packet[0] >> 3)
	length := int(c.packet[0] & 0x07)
	if length == 0 {
		length = 1
	}

	if c.packetsReceived == 0 {
		c.packetsExpected = length
	}
	c.packetsReceived++

	c.apply(cmd)

	if c.packetsReceived >= c.packetsExpected {
		c.packetsReceived = 0
	}
}

func (c *Controller) apply(cmd Command) {
	switch cmd {
	case CmdPAL01:
		c.loadPalettePair(0, 1)
	case CmdPAL23:
		c.loadPalettePair(2, 3)
	case CmdPAL03:
		c.loadPalettePair(0, 3)
	case CmdPAL12:
		c.loadPalettePair(1, 2)
	case CmdPALSet:
		// PAL_SET selects 4 of 512 palette-RAM entries by index; without
		// the full palette-RAM bank this core approximates it by reusing
		// whatever the last PAL01-12 packet loaded.
		if c.packet[9]&0x40 != 0 {
			c.MaskMode = 0
		}
	case CmdPALTrn:
		c.PendingPalTrn = true
	case CmdCHRTrn:
		c.PendingCHRTrn = true
	case CmdPICTrn:
		c.PendingPICTrn = true
	case CmdATTRTrn:
		c.PendingATTRTrn = true
	case CmdMaskEn:
		c.MaskMode = c.packet[1] & 0x03
	}
}

// loadPalettePair decodes two system palettes (4 colors each, color 0
// shared between the pair per the documented PAL01/23/03/12 layout)
// from the just-completed packet.
func (c *Controller) loadPalettePair(lo, hi int) {
	word := func(off int) uint16 {
		return uint16(c.packet[off]) | uint16(c.packet[off+1])<<8
	}

	shared := word(1)
	c.SystemPalettes[lo][0] = shared
	c.SystemPalettes[hi][0] = shared

	c.SystemPalettes[lo][1] = word(3)
	c.SystemPalettes[lo][2] = word(5)
	c.SystemPalettes[lo][3] = word(7)

	c.SystemPalettes[hi][1] = word(9)
	c.SystemPalettes[hi][2] = word(11)
	c.SystemPalettes[hi][3] = word(13)
}

// BorderVisible reports whether a border/overlay renderer should draw.
// The border only becomes visible once all three transfers that supply
// it have completed at least once since reset: CHR (tile data), PIC
// (picture/border layout) and PAL (the border's own palette set via
// PAL_TRN). Any one missing means the host has nothing complete enough
// to render, regardless of the current mask state.
func (c *Controller) BorderVisible() bool {
	return c.PendingCHRTrn && c.PendingPICTrn && c.PendingPalTrn
}
