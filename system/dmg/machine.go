// Package dmg wires the CPU, memory bus and LCD engine of the 8-bit
// family (DMG/CGB/SGB) into a single runnable machine.
package dmg

import (
	"log/slog"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/cpu"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/memory"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/sgb"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/video"
)

// CyclesPerFrame is the number of clock cycles in one 59.7Hz frame (154
// scanlines of 456 dots each, one dot per clock cycle).
const CyclesPerFrame = 70224

// FramebufferSink receives completed frames. Concrete presentation
// surfaces (terminal, GUI, headless capture) implement this.
type FramebufferSink interface {
	Present(fb *video.FrameBuffer)
}

// Machine is a runnable DMG/CGB/SGB system.
type Machine struct {
	CPU *cpu.CPU
	Bus *memory.Bus
	GPU *video.GPU
	SGB *sgb.Controller

	mode       cpu.Mode
	frameCount uint64
	sink       FramebufferSink
}

// New creates a machine with no cartridge installed.
func New(mode cpu.Mode) *Machine {
	bus := memory.New(mode == cpu.ModeCGB)
	return newMachine(bus, mode)
}

// NewWithROM creates a machine with the given cartridge image loaded.
// The bus's CGB features (VRAM/WRAM banking, palette RAM, HDMA) are
// enabled when mode is ModeCGB or the cartridge's CGB-support byte says
// it supports CGB, unless the caller's mode is ModeSGB (SGB takes
// priority for the command-stream path regardless of CGB support). The
// CPU always runs in the caller's mode.
func NewWithROM(rom []byte, mode cpu.Mode) *Machine {
	cart := memory.NewCartridgeFromImage(rom)
	cgb := mode == cpu.ModeCGB || (mode != cpu.ModeSGB && cart.CGBSupport() != memory.CGBUnsupported)
	bus := memory.NewWithCartridge(cart, cgb)
	return newMachine(bus, mode)
}

func newMachine(bus *memory.Bus, mode cpu.Mode) *Machine {
	m := &Machine{
		Bus:  bus,
		GPU:  video.NewGPU(bus),
		mode: mode,
	}
	m.CPU = cpu.New(bus, mode)
	if mode == cpu.ModeSGB {
		m.SGB = sgb.NewController(bus)
	}
	return m
}

// SetFramebufferSink installs the presentation surface frames are
// delivered to at the end of each RunFrame.
func (m *Machine) SetFramebufferSink(sink FramebufferSink) { m.sink = sink }

// RunFrame executes instructions until one full frame's worth of cycles
// has elapsed, then delivers the frame to the installed sink, if any.
func (m *Machine) RunFrame() {
	total := 0
	for total < CyclesPerFrame {
		cycles := m.CPU.Step()
		m.GPU.Tick(cycles)
		total += cycles
	}

	m.frameCount++
	if m.sink != nil {
		m.sink.Present(m.GPU.FrameBuffer())
	}
	if m.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", m.frameCount, "pc", m.CPU.PC())
	}
}

func (m *Machine) HandleKeyPress(key memory.JoypadKey)   { m.Bus.HandleKeyPress(key) }
func (m *Machine) HandleKeyRelease(key memory.JoypadKey) { m.Bus.HandleKeyRelease(key) }

func (m *Machine) FrameCount() uint64 { return m.frameCount }
