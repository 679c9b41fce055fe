package cpu

import "log/slog"

// exception vector addresses, fixed by the ARMv4T exception model.
const (
	vectorReset       uint32 = 0x00000000
	vectorUndefined   uint32 = 0x00000004
	vectorSWI         uint32 = 0x00000008
	vectorPrefetchAbt uint32 = 0x0000000C
	vectorDataAbt     uint32 = 0x00000010
	vectorIRQ         uint32 = 0x00000018
	vectorFIQ         uint32 = 0x0000001C
)

// SWIHandler services a software interrupt. Concrete GBA programs
// almost never rely on the physical BIOS ROM being mapped; instead the
// core calls out to a high-level emulation of the documented BIOS
// service catalogue, the same approach the teacher core takes for its
// own HLE SWI dispatch.
type SWIHandler interface {
	HandleSWI(c *CPU, comment uint32)
}

// CPU is one ARM7TDMI core: register file plus fetch/decode/execute.
type CPU struct {
	Registers

	bus  Bus
	swi  SWIHandler
	halt bool // set by the Halt/Stop SWI services; cleared by a pending interrupt

	branched bool // set by any instruction that wrote PC directly, suppressing the normal PC+=size advance
}

// New creates a core wired to bus, reset into the documented
// skip-BIOS boot state (this core never maps a physical BIOS ROM).
func New(bus Bus, swi SWIHandler) *CPU {
	c := &CPU{bus: bus, swi: swi}
	c.Reset(true)
	return c
}

// Bus exposes the memory surface this core is wired to, used by the
// BIOS high-level-emulation SWI handler to perform the memory copies
// and fills several service calls document.
func (c *CPU) Bus() Bus { return c.bus }

// Halted reports whether the core is parked in a low-power wait state.
func (c *CPU) Halted() bool { return c.halt }

// Resume clears a halted core, invoked when an awaited interrupt fires.
func (c *CPU) Resume() { c.halt = false }

// Halt parks the core in a low-power wait state until the next
// pending interrupt, the documented effect of the Halt/Sleep/Stop BIOS
// services.
func (c *CPU) Halt() { c.halt = true }

// Step executes exactly one instruction (or services a pending
// interrupt in its place) and returns the number of cycles consumed.
func (c *CPU) Step() int {
	if c.bus.IRQPending() {
		c.halt = false
	}
	if c.bus.IRQPending() && c.bus.IMEEnabled() && !c.Flag(FlagI) {
		return c.enterIRQ()
	}
	if c.halt {
		return 1
	}

	c.branched = false
	if c.Thumb() {
		return c.stepThumb()
	}
	return c.stepARM()
}

func (c *CPU) stepARM() int {
	pc := c.PC()
	instr := c.bus.Read32(pc)
	cycles := c.executeARM(instr)
	if !c.branched {
		c.SetPC(pc + 4)
	}
	return cycles
}

func (c *CPU) stepThumb() int {
	pc := c.PC()
	instr := c.bus.Read16(pc)
	cycles := c.executeThumb(instr)
	if !c.branched {
		c.SetPC(pc + 2)
	}
	return cycles
}

// branchTo sets PC to target and suppresses the normal post-execute
// advance, used by every instruction that writes r15 directly.
func (c *CPU) branchTo(target uint32) {
	c.SetPC(target)
	c.branched = true
}

// raiseException performs the documented entry sequence shared by every
// exception type: bank into the handler mode, save the return address
// to LR, save CPSR to SPSR, set the I bit (and F for reset/FIQ), clear
// T, and jump to the vector.
func (c *CPU) raiseException(mode Mode, vector uint32, lrOffset uint32, setF bool) {
	returnAddr := c.PC() + lrOffset
	savedCPSR := c.CPSR()

	c.SetCPSR(uint32(mode))
	c.SetR(14, returnAddr)
	c.SetSPSR(savedCPSR)

	cpsr := c.CPSR()
	cpsr |= FlagI
	if setF {
		cpsr |= FlagF
	}
	cpsr &^= FlagT
	c.SetCPSR(cpsr)

	c.branchTo(vector)
}

func (c *CPU) enterIRQ() int {
	// IRQ always returns to the next instruction; ARM PC is already 2
	// instructions ahead of the one executing, THUMB 1, so the universal
	// "current PC + 4" return point collapses to the same +4 constant
	// the teacher core uses for its IRQ entry in ARM state, adjusted by
	// -4 for THUMB by the BIOS return stub (SUBS PC, LR, #4 either way).
	lrOffset := uint32(4)
	if c.Thumb() {
		lrOffset = 4
	}
	c.raiseException(ModeIRQ, vectorIRQ, lrOffset, false)
	return 3
}

// RaiseSWI drives the software-interrupt exception path; the actual
// service is performed by the SWIHandler.
func (c *CPU) RaiseSWI(comment uint32) {
	if c.swi != nil {
		c.swi.HandleSWI(c, comment)
		return
	}
	slog.Warn("gba cpu: SWI with no handler installed", "comment", comment)
}

func (c *CPU) raiseUndefined() {
	c.raiseException(ModeUND, vectorUndefined, 4, false)
}

// ReturnFromException restores CPSR from the current mode's SPSR and
// jumps to the address computed by the caller (typically LR or LR-4),
// implementing the documented MOVS/SUBS PC, LR, #n exception-return idiom.
func (c *CPU) ReturnFromException(target uint32) {
	c.RestoreCPSRFromSPSR()
	c.branchTo(target)
}
