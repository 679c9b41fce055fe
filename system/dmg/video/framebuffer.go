// Package video implements the LCD scanline engine shared by the DMG,
// CGB and SGB systems: mode timing (OAM scan / pixel transfer / HBlank /
// VBlank), background/window/sprite composition, and the CGB color
// palette and tile-attribute extensions.
package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// GBColor is a packed RGBA8888 pixel.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// ByteToColor maps a DMG 2-bit shade index to its displayed color.
func ByteToColor(value byte) GBColor {
	switch value {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	case 3:
		return BlackColor
	}
	return 0
}

// FrameBuffer holds one rendered frame as packed RGBA8888 pixels.
type FrameBuffer struct {
	width, height uint
	buffer        []uint32
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferSize),
	}
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 { return fb.buffer[y*fb.width+x] }

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) { fb.buffer[y*fb.width+x] = uint32(color) }

// ToSlice exposes the raw pixel buffer, for a FramebufferSink to consume
// without copying every frame.
func (fb *FrameBuffer) ToSlice() []uint32 { return fb.buffer }

func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = 0
	}
}
