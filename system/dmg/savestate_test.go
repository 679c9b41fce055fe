package dmg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/cpu"
	"github.com/shonumi/gbe-plus-sub002/system/dmg/video"
)

func TestMachineSaveRestore_roundTripsObservableState(t *testing.T) {
	m := New(cpu.ModeCGB)

	m.CPU.SetPC(0x1234)
	m.Bus.Write(0xC000, 0xAB) // wram bank 0
	m.Bus.Write(0xFF80, 0xCD) // hram
	m.GPU.FrameBuffer().SetPixel(5, 5, video.GBColor(0xAABBCCDD))
	m.GPU.Tick(300) // advance the scanline state machine partway through a line

	data, err := m.Save()
	assert.NoError(t, err)

	m2 := New(cpu.ModeCGB)
	assert.NoError(t, m2.Restore(data))

	assert.Equal(t, m.CPU.PC(), m2.CPU.PC())
	assert.Equal(t, m.Bus.Read(0xC000), m2.Bus.Read(0xC000))
	assert.Equal(t, m.Bus.Read(0xFF80), m2.Bus.Read(0xFF80))
	assert.Equal(t, m.GPU.FrameBuffer().GetPixel(5, 5), m2.GPU.FrameBuffer().GetPixel(5, 5))
	assert.Equal(t, m.GPU.FrameBuffer().ToSlice(), m2.GPU.FrameBuffer().ToSlice())
}

func TestMachineRestore_rejectsCorruptData(t *testing.T) {
	m := New(cpu.ModeDMG)
	err := m.Restore([]byte("not a savestate"))
	assert.Error(t, err)
}
