package cpu

// Bus is the memory surface the core drives. Implementations live in
// system/gba/bus; this interface keeps the instruction decoder free of
// any dependency on the concrete address map, wait-state accounting or
// peripheral wiring.
type Bus interface {
	Read8(address uint32) uint8
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write8(address uint32, value uint8)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)

	// Tick advances the bus peripherals (the timers) by the cycles the
	// core spent, the same role system/dmg/cpu.Bus.Tick plays for the
	// 8-bit core. The bus charges no wait-state cycles.
	Tick(cycles int)

	// IRQPending reports whether IE & IF != 0, independent of IME and
	// CPSR's I bit: this is the condition that wakes the core from
	// Halt, which the documented BIOS Halt service does not gate on
	// the master enable the way actual interrupt delivery does.
	IRQPending() bool

	// IMEEnabled reports the global interrupt master enable register.
	// Actual delivery additionally requires CPSR's I bit to be clear.
	IMEEnabled() bool
}
