// Package tcellsink is a reference FramebufferSink that renders frames
// to a terminal using half-block characters, two downsampled pixels per
// character cell. It exists to give the core something real to drive
// end to end without pulling in a GUI/SDL dependency the core itself
// has no business depending on.
package tcellsink

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/video"
)

// Sink renders frames to a tcell screen.
type Sink struct {
	screen tcell.Screen
}

// New initializes a terminal screen for output.
func New() (*Sink, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tcellsink: creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("tcellsink: initializing screen: %w", err)
	}
	screen.Clear()
	return &Sink{screen: screen}, nil
}

// Close releases the terminal screen.
func (s *Sink) Close() { s.screen.Fini() }

// Present draws one frame, two framebuffer rows per terminal row using
// the Unicode upper-half-block character so vertical resolution is not
// halved on output.
func (s *Sink) Present(fb *video.FrameBuffer) {
	pixels := fb.ToSlice()
	cols, rows := s.screen.Size()

	maxX := video.FramebufferWidth
	if cols < maxX {
		maxX = cols
	}
	maxY := video.FramebufferHeight / 2
	if rows < maxY {
		maxY = rows
	}

	for cellY := 0; cellY < maxY; cellY++ {
		topRow := cellY * 2
		bottomRow := topRow + 1
		for x := 0; x < maxX; x++ {
			top := pixels[topRow*video.FramebufferWidth+x]
			bottom := pixels[bottomRow*video.FramebufferWidth+x]

			style := tcell.StyleDefault.
				Foreground(packedToColor(top)).
				Background(packedToColor(bottom))
			s.screen.SetContent(x, cellY, '▀', nil, style)
		}
	}
	s.screen.Show()
}

func packedToColor(pixel uint32) tcell.Color {
	r := uint8(pixel >> 24)
	g := uint8(pixel >> 16)
	b := uint8(pixel >> 8)
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// PollQuit blocks until the user presses Escape or Ctrl-C, for a simple
// headless demo loop.
func (s *Sink) PollQuit() <-chan struct{} {
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
