package tcellsink

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// GBASink renders 32-bit successor system frames to a terminal using the
// same half-block technique as Sink, adapted to the wider 240x160
// screen and the row-major ARGB pixel buffers video.PPU hands to its
// FramebufferSink.
type GBASink struct {
	screen tcell.Screen
	width  int
	height int
}

// NewGBA initializes a terminal screen for GBA output.
func NewGBA() (*GBASink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tcellsink: creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("tcellsink: initializing screen: %w", err)
	}
	screen.Clear()
	return &GBASink{screen: screen}, nil
}

// Close releases the terminal screen.
func (s *GBASink) Close() { s.screen.Fini() }

// Present draws one frame of width x height 32-bit ARGB pixels, two
// framebuffer rows per terminal row.
func (s *GBASink) Present(pixels []uint32, width, height int) {
	s.width, s.height = width, height
	cols, rows := s.screen.Size()

	maxX := width
	if cols < maxX {
		maxX = cols
	}
	maxY := height / 2
	if rows < maxY {
		maxY = rows
	}

	for cellY := 0; cellY < maxY; cellY++ {
		topRow := cellY * 2
		bottomRow := topRow + 1
		for x := 0; x < maxX; x++ {
			top := pixels[topRow*width+x]
			bottom := pixels[bottomRow*width+x]

			style := tcell.StyleDefault.
				Foreground(argbToColor(top)).
				Background(argbToColor(bottom))
			s.screen.SetContent(x, cellY, '▀', nil, style)
		}
	}
	s.screen.Show()
}

func argbToColor(pixel uint32) tcell.Color {
	r := uint8(pixel >> 16)
	g := uint8(pixel >> 8)
	b := uint8(pixel)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// PollQuit blocks until the user presses Escape or Ctrl-C, for a simple
// headless demo loop.
func (s *GBASink) PollQuit() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for {
			ev := s.screen.PollEvent()
			switch e := ev.(type) {
			case *tcell.EventKey:
				if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
					close(done)
					return
				}
			}
		}
	}()
	return done
}
