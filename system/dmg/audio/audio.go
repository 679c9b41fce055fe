// Package audio provides a register-accurate but non-mixing stand-in
// for the APU: the sound registers (0xFF10-0xFF3F) are fully readable
// and writable, including the read masks real hardware applies to
// unused bits, but no channel is synthesized or mixed, per the core's
// non-goal of audio output.
package audio

// Registers stores the raw NR1x-NR5x register file and wave RAM.
type Registers struct {
	regs    [0x30]uint8
	waveRAM [0x10]uint8
}

func New() *Registers { return &Registers{} }

// readMask matches the documented "unused bits read as 1" behavior for
// each sound register, offset from 0xFF10.
var readMask = [0x30]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // FF15 (unused), NR21-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // FF1F (unused), NR41-NR44
	0x00, 0x00, 0x70, // NR50-NR52
}

// explicitMaskCount is how many entries above are real per-register masks;
// the rest of the array covers the unused 0xFF27-0xFF2F gap (and the wave
// RAM indices, which ReadRegister never consults readMask for).
const explicitMaskCount = 23

func init() {
	for i := explicitMaskCount; i < len(readMask); i++ {
		readMask[i] = 0xFF
	}
}

func (r *Registers) ReadRegister(address uint16) uint8 {
	switch {
	case address >= 0xFF30 && address <= 0xFF3F:
		return r.waveRAM[address-0xFF30]
	case address >= 0xFF10 && address <= 0xFF3F:
		return r.regs[address-0xFF10] | readMask[address-0xFF10]
	default:
		return 0xFF
	}
}

func (r *Registers) WriteRegister(address uint16, value uint8) {
	switch {
	case address >= 0xFF30 && address <= 0xFF3F:
		r.waveRAM[address-0xFF30] = value
	case address >= 0xFF10 && address <= 0xFF3F:
		r.regs[address-0xFF10] = value
	}
}
