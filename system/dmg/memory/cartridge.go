package memory

import (
	"strings"
	"unicode"
)

// Header offsets per §6 "Cartridge header".
const (
	titleAddress         = 0x134
	titleLength          = 16
	cgbFlagAddress       = 0x143
	sgbFlagAddress       = 0x146
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
)

// CGBSupport describes the color-compatibility byte at 0x143.
type CGBSupport uint8

const (
	CGBUnsupported CGBSupport = iota
	CGBEnhanced               // works on DMG, has CGB-only enhancements
	CGBOnly
)

// Cartridge is the parsed, read-only cartridge header plus the raw ROM
// image backing it. It does not itself perform banking; NewMBCFor below
// selects and constructs the right MBC from the header.
type Cartridge struct {
	data       []byte
	title      string
	mbcType    uint8
	cgbFlag    CGBSupport
	sgbFlag    bool
	romBanks   int
	ramBanks   uint8
	hasBattery bool
	hasRTC     bool
	hasRumble  bool
}

// NewCartridge creates an empty, MBC-less cartridge useful for tests.
func NewCartridge() *Cartridge {
	return &Cartridge{data: make([]byte, 0x8000)}
}

// NewCartridgeFromImage parses a ROM image's header.
func NewCartridgeFromImage(rom []byte) *Cartridge {
	c := &Cartridge{data: append([]byte(nil), rom...)}
	if len(rom) > titleAddress+titleLength {
		n := titleLength
		if rom[cgbFlagAddress]&0x80 != 0 {
			n-- // on CGB-aware carts the last title byte is the CGB flag
		}
		c.title = cleanTitle(rom[titleAddress : titleAddress+n])
	}
	if len(rom) > cgbFlagAddress {
		switch rom[cgbFlagAddress] {
		case 0x80:
			c.cgbFlag = CGBEnhanced
		case 0xC0:
			c.cgbFlag = CGBOnly
		default:
			c.cgbFlag = CGBUnsupported
		}
	}
	if len(rom) > sgbFlagAddress {
		c.sgbFlag = rom[sgbFlagAddress] == 0x03
	}
	if len(rom) > cartridgeTypeAddress {
		c.mbcType = rom[cartridgeTypeAddress]
	}
	if len(rom) > romSizeAddress {
		c.romBanks = 2 << rom[romSizeAddress]
	}
	if len(rom) > ramSizeAddress {
		switch rom[ramSizeAddress] {
		case 0x02:
			c.ramBanks = 1
		case 0x03:
			c.ramBanks = 4
		case 0x04:
			c.ramBanks = 16
		case 0x05:
			c.ramBanks = 8
		}
	}
	c.hasBattery, c.hasRTC, c.hasRumble = mbcFeatures(c.mbcType)
	return c
}

func mbcFeatures(mbcType uint8) (battery, rtc, rumble bool) {
	switch mbcType {
	case 0x03, 0x06, 0x09, 0x0D, 0x0F, 0x10, 0x13, 0x1B, 0x1E, 0x22, 0xFF:
		battery = true
	}
	switch mbcType {
	case 0x0F, 0x10:
		rtc = true
	}
	switch mbcType {
	case 0x1C, 0x1D, 0x1E:
		rumble = true
	}
	return
}

// NewMBCFor selects and constructs the right MBC implementation for
// the cartridge's header, per §1 "the core queries a memory-mapped
// interface; each mapper's internal lookup tables are external" — bank
// counts and quirks are internal to each MBC* type above.
func NewMBCFor(c *Cartridge) MBC {
	switch c.mbcType {
	case 0x00, 0x08, 0x09:
		return NewNoMBC(c.data)
	case 0x01, 0x02, 0x03:
		return NewMBC1(c.data, c.ramBanks, false)
	case 0x05, 0x06:
		return NewMBC2(c.data)
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(c.data, c.ramBanks, c.hasRTC)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(c.data, c.ramBanks, c.hasRumble)
	default:
		return NewNoMBC(c.data)
	}
}

func cleanTitle(b []byte) string {
	runes := make([]rune, 0, len(b))
	for _, v := range b {
		r := rune(v)
		switch {
		case r == 0:
			continue
		case !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}

func (c *Cartridge) Title() string        { return c.title }
func (c *Cartridge) CGBSupport() CGBSupport { return c.cgbFlag }
func (c *Cartridge) SGBSupported() bool   { return c.sgbFlag }
func (c *Cartridge) HasBattery() bool     { return c.hasBattery }
