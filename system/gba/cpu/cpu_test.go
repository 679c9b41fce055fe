package cpu

// fakeBus is a flat byte-addressable memory used by package tests; it
// implements the Bus interface without any wait-state or interrupt
// behaviour beyond what each test configures explicitly.
type fakeBus struct {
	mem        map[uint32]byte
	irqPending bool
	imeEnabled bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{mem: make(map[uint32]byte)}
}

func (b *fakeBus) Read8(address uint32) uint8 { return b.mem[address] }

func (b *fakeBus) Read16(address uint32) uint16 {
	return uint16(b.Read8(address)) | uint16(b.Read8(address+1))<<8
}

func (b *fakeBus) Read32(address uint32) uint32 {
	return uint32(b.Read16(address)) | uint32(b.Read16(address+2))<<16
}

func (b *fakeBus) Write8(address uint32, value uint8) { b.mem[address] = value }

func (b *fakeBus) Write16(address uint32, value uint16) {
	b.Write8(address, byte(value))
	b.Write8(address+1, byte(value>>8))
}

func (b *fakeBus) Write32(address uint32, value uint32) {
	b.Write16(address, uint16(value))
	b.Write16(address+2, uint16(value>>16))
}

func (b *fakeBus) Tick(cycles int) {}

func (b *fakeBus) IRQPending() bool { return b.irqPending }
func (b *fakeBus) IMEEnabled() bool { return b.imeEnabled }
