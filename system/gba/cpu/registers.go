// Package cpu implements the ARM7TDMI (ARMv4T) core of the 32-bit
// successor system: a banked general-purpose register file, CPSR/SPSR
// handling, the barrel shifter, and ARM/THUMB instruction decode and
// execution.
package cpu

import "fmt"

// Mode is one of the seven ARM operating modes, encoded as the low 5
// bits of CPSR.
type Mode uint32

const (
	ModeUSR Mode = 0x10
	ModeFIQ Mode = 0x11
	ModeIRQ Mode = 0x12
	ModeSVC Mode = 0x13
	ModeABT Mode = 0x17
	ModeUND Mode = 0x1B
	ModeSYS Mode = 0x1F
)

func (m Mode) String() string {
	switch m {
	case ModeUSR:
		return "USR"
	case ModeFIQ:
		return "FIQ"
	case ModeIRQ:
		return "IRQ"
	case ModeSVC:
		return "SVC"
	case ModeABT:
		return "ABT"
	case ModeUND:
		return "UND"
	case ModeSYS:
		return "SYS"
	default:
		return fmt.Sprintf("MODE(%#x)", uint32(m))
	}
}

// CPSR flag bits.
const (
	FlagN uint32 = 1 << 31 // negative
	FlagZ uint32 = 1 << 30 // zero
	FlagC uint32 = 1 << 29 // carry
	FlagV uint32 = 1 << 28 // overflow
	FlagI uint32 = 1 << 7  // IRQ disable
	FlagF uint32 = 1 << 6  // FIQ disable
	FlagT uint32 = 1 << 5  // THUMB state
)

// InstrSet distinguishes the two instruction encodings the core fetches.
type InstrSet int

const (
	ARM InstrSet = iota
	THUMB
)

// registerFile holds every banked copy of r8-r14 plus the single
// current-mode view exposed through R/SetR, mirroring the way real
// hardware keeps physically separate registers per mode rather than
// saving/restoring on every mode switch.
type registerFile struct {
	r [16]uint32

	r8_fiq, r9_fiq, r10_fiq, r11_fiq, r12_fiq uint32
	r13_fiq, r14_fiq                          uint32

	r13_svc, r14_svc uint32
	r13_abt, r14_abt uint32
	r13_irq, r14_irq uint32
	r13_und, r14_und uint32

	r8_usr, r9_usr, r10_usr, r11_usr, r12_usr uint32
	r13_usr, r14_usr                          uint32 // banked aside while a non-USR/SYS mode is active

	cpsr uint32

	spsrFIQ, spsrSVC, spsrABT, spsrIRQ, spsrUND uint32
}

// Registers is the banked general-purpose and status register file of
// one ARM7TDMI core.
type Registers struct {
	regs registerFile
	mode Mode
}

// Reset puts the register file into the documented post-BIOS-handoff
// state used when booting straight into a cartridge (no BIOS ROM).
func (r *Registers) Reset(skipBIOS bool) {
	r.regs = registerFile{}
	if skipBIOS {
		r.regs.r13_fiq = 0x03007F00
		r.regs.r13_abt = 0x03007F00
		r.regs.r13_und = 0x03007F00
		r.regs.r13_svc = 0x03007FE0
		r.regs.r13_irq = 0x03007FA0
		r.regs.r[13] = 0x03007F00
		r.regs.r[15] = 0x08000000
		r.regs.cpsr = 0x0000005F
		r.mode = ModeSYS
	} else {
		r.regs.r[15] = 0
		r.regs.cpsr = 0x000000D3
		r.mode = ModeSVC
	}
}

// Mode reports the current operating mode (CPSR's low 5 bits).
func (r *Registers) Mode() Mode { return r.mode }

// CPSR returns the current program status register.
func (r *Registers) CPSR() uint32 { return r.regs.cpsr }

// Thumb reports whether the core is currently decoding 16-bit THUMB
// instructions rather than 32-bit ARM ones.
func (r *Registers) Thumb() bool { return r.regs.cpsr&FlagT != 0 }

// InstrSet reports the instruction set implied by the T bit.
func (r *Registers) InstrSet() InstrSet {
	if r.Thumb() {
		return THUMB
	}
	return ARM
}

// Flag reports whether every bit in mask is set in CPSR.
func (r *Registers) Flag(mask uint32) bool { return r.regs.cpsr&mask == mask }

// SetFlag sets or clears the bits in mask.
func (r *Registers) SetFlag(mask uint32, set bool) {
	if set {
		r.regs.cpsr |= mask
	} else {
		r.regs.cpsr &^= mask
	}
}

// SetCPSR writes the whole CPSR and re-banks the visible register set
// if the mode field changed.
func (r *Registers) SetCPSR(value uint32) {
	newMode := Mode(value & 0x1F)
	if newMode != r.mode {
		r.switchMode(newMode)
	}
	r.regs.cpsr = value
}

// R reads general-purpose register n (0-15) in the current mode's view.
func (r *Registers) R(n int) uint32 { return r.regs.r[n] }

// SetR writes general-purpose register n in the current mode's view.
func (r *Registers) SetR(n int, value uint32) { r.regs.r[n] = value }

// PC returns r15.
func (r *Registers) PC() uint32 { return r.regs.r[15] }

// SetPC writes r15.
func (r *Registers) SetPC(value uint32) { r.regs.r[15] = value }

// HasSPSR reports whether the current mode has a private saved-status
// register (every mode except USR and SYS).
func (r *Registers) HasSPSR() bool {
	return r.mode != ModeUSR && r.mode != ModeSYS
}

// SPSR returns the saved status register of the current mode, or the
// current CPSR in USR/SYS mode where no SPSR exists.
func (r *Registers) SPSR() uint32 {
	switch r.mode {
	case ModeFIQ:
		return r.regs.spsrFIQ
	case ModeSVC:
		return r.regs.spsrSVC
	case ModeABT:
		return r.regs.spsrABT
	case ModeIRQ:
		return r.regs.spsrIRQ
	case ModeUND:
		return r.regs.spsrUND
	default:
		return r.regs.cpsr
	}
}

// SetSPSR writes the saved status register of the current mode. A
// write in USR/SYS mode is silently dropped, matching real hardware.
func (r *Registers) SetSPSR(value uint32) {
	switch r.mode {
	case ModeFIQ:
		r.regs.spsrFIQ = value
	case ModeSVC:
		r.regs.spsrSVC = value
	case ModeABT:
		r.regs.spsrABT = value
	case ModeIRQ:
		r.regs.spsrIRQ = value
	case ModeUND:
		r.regs.spsrUND = value
	}
}

// RestoreCPSRFromSPSR copies the current mode's SPSR back into CPSR,
// re-banking registers for whatever mode that SPSR names. Used by the
// data-processing S-bit special case (MOVS/SUBS into PC) and by the
// exception-return sequence.
func (r *Registers) RestoreCPSRFromSPSR() {
	r.SetCPSR(r.SPSR())
}

// switchMode banks out the outgoing mode's r8-r14 and banks in the
// incoming mode's, exactly mirroring the teacher core's per-mode
// register storage rather than a save/restore-on-demand scheme.
func (r *Registers) switchMode(next Mode) {
	r.bankOut(r.mode)
	r.mode = next
	r.bankIn(next)
}

// bankOut saves the currently-visible r8-r14 into mode m's private
// storage. r8-r12 are only privately banked for FIQ; every other mode
// (including USR/SYS) shares one common pool for them.
func (r *Registers) bankOut(m Mode) {
	if m == ModeFIQ {
		r.regs.r8_fiq, r.regs.r9_fiq, r.regs.r10_fiq = r.regs.r[8], r.regs.r[9], r.regs.r[10]
		r.regs.r11_fiq, r.regs.r12_fiq = r.regs.r[11], r.regs.r[12]
	} else {
		r.regs.r8_usr, r.regs.r9_usr, r.regs.r10_usr = r.regs.r[8], r.regs.r[9], r.regs.r[10]
		r.regs.r11_usr, r.regs.r12_usr = r.regs.r[11], r.regs.r[12]
	}

	switch m {
	case ModeFIQ:
		r.regs.r13_fiq, r.regs.r14_fiq = r.regs.r[13], r.regs.r[14]
	case ModeSVC:
		r.regs.r13_svc, r.regs.r14_svc = r.regs.r[13], r.regs.r[14]
	case ModeABT:
		r.regs.r13_abt, r.regs.r14_abt = r.regs.r[13], r.regs.r[14]
	case ModeIRQ:
		r.regs.r13_irq, r.regs.r14_irq = r.regs.r[13], r.regs.r[14]
	case ModeUND:
		r.regs.r13_und, r.regs.r14_und = r.regs.r[13], r.regs.r[14]
	default: // USR, SYS
		r.regs.r13_usr, r.regs.r14_usr = r.regs.r[13], r.regs.r[14]
	}
}

func (r *Registers) bankIn(m Mode) {
	if m == ModeFIQ {
		r.regs.r[8], r.regs.r[9], r.regs.r[10] = r.regs.r8_fiq, r.regs.r9_fiq, r.regs.r10_fiq
		r.regs.r[11], r.regs.r[12] = r.regs.r11_fiq, r.regs.r12_fiq
	} else {
		r.regs.r[8], r.regs.r[9], r.regs.r[10] = r.regs.r8_usr, r.regs.r9_usr, r.regs.r10_usr
		r.regs.r[11], r.regs.r[12] = r.regs.r11_usr, r.regs.r12_usr
	}

	switch m {
	case ModeFIQ:
		r.regs.r[13], r.regs.r[14] = r.regs.r13_fiq, r.regs.r14_fiq
	case ModeSVC:
		r.regs.r[13], r.regs.r[14] = r.regs.r13_svc, r.regs.r14_svc
	case ModeABT:
		r.regs.r[13], r.regs.r[14] = r.regs.r13_abt, r.regs.r14_abt
	case ModeIRQ:
		r.regs.r[13], r.regs.r[14] = r.regs.r13_irq, r.regs.r14_irq
	case ModeUND:
		r.regs.r[13], r.regs.r[14] = r.regs.r13_und, r.regs.r14_und
	default: // USR, SYS
		r.regs.r[13], r.regs.r[14] = r.regs.r13_usr, r.regs.r14_usr
	}
}
