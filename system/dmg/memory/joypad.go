package memory

import "github.com/shonumi/gbe-plus-sub002/internal/bit"

// JoypadKey names one of the eight physical buttons.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// joypad tracks button/d-pad state and the P1 register's selection bits.
// 1 means released, 0 means pressed, matching the register's polarity.
type joypad struct {
	buttons uint8
	dpad    uint8
	p1      uint8
}

func newJoypad() *joypad {
	return &joypad{buttons: 0x0F, dpad: 0x0F}
}

func (j *joypad) writeSelect(value uint8) {
	j.p1 = value & 0b0011_0000
}

func (j *joypad) register() uint8 {
	result := uint8(0b1100_0000)
	result |= j.p1 & 0b0011_0000

	selectDpad := !bit.IsSet(4, j.p1)
	selectButtons := !bit.IsSet(5, j.p1)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}
	return result
}

// press returns true if this caused a 1->0 transition on the input line
// the key shares with its button/d-pad counterpart (the two groups
// ANDed together), which is what triggers the joypad interrupt. The P1
// select bits are not consulted.
func (j *joypad) press(key JoypadKey) bool {
	before := j.buttons & j.dpad
	j.set(key, false)
	after := j.buttons & j.dpad
	return before&^after != 0
}

func (j *joypad) release(key JoypadKey) {
	j.set(key, true)
}

func (j *joypad) set(key JoypadKey, released bool) {
	var group *uint8
	var idx uint8
	switch key {
	case JoypadRight:
		group, idx = &j.dpad, 0
	case JoypadLeft:
		group, idx = &j.dpad, 1
	case JoypadUp:
		group, idx = &j.dpad, 2
	case JoypadDown:
		group, idx = &j.dpad, 3
	case JoypadA:
		group, idx = &j.buttons, 0
	case JoypadB:
		group, idx = &j.buttons, 1
	case JoypadSelect:
		group, idx = &j.buttons, 2
	case JoypadStart:
		group, idx = &j.buttons, 3
	default:
		return
	}
	*group = bit.SetTo(idx, *group, released)
}
