package video

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/shonumi/gbe-plus-sub002/savestate"
)

const gpuSectionTag = "DGPU"
const framebufferSectionTag = "DFBF"

// Save appends the scanline state machine's counters and the last
// rendered frame to w.
func (g *GPU) Save(w *savestate.Writer) error {
	var buf bytes.Buffer
	err := writeAll(&buf,
		int32(g.mode), int32(g.line), int32(g.cycles), int32(g.modeCounterAux),
		int32(g.vBlankLine), g.isScanLineTransfered, int32(g.windowLine),
	)
	if err != nil {
		return fmt.Errorf("dmg gpu: encoding state: %w", err)
	}
	w.WriteSection(gpuSectionTag, buf.Bytes())

	var fbBuf bytes.Buffer
	if err := binary.Write(&fbBuf, binary.LittleEndian, g.framebuffer.buffer); err != nil {
		return fmt.Errorf("dmg gpu: encoding framebuffer: %w", err)
	}
	w.WriteSection(framebufferSectionTag, fbBuf.Bytes())
	return nil
}

// Restore reads the scanline state machine and last rendered frame back
// from r.
func (g *GPU) Restore(r *savestate.Reader) error {
	data := r.Section(gpuSectionTag)
	if data == nil {
		return fmt.Errorf("dmg gpu: savestate missing %q section", gpuSectionTag)
	}
	buf := bytes.NewReader(data)

	var mode, line, cycles, modeCounterAux, vBlankLine, windowLine int32
	err := readAll(buf,
		&mode, &line, &cycles, &modeCounterAux,
		&vBlankLine, &g.isScanLineTransfered, &windowLine,
	)
	if err != nil {
		return fmt.Errorf("dmg gpu: decoding state: %w", err)
	}
	g.mode = gpuMode(mode)
	g.line = int(line)
	g.cycles = int(cycles)
	g.modeCounterAux = int(modeCounterAux)
	g.vBlankLine = int(vBlankLine)
	g.windowLine = int(windowLine)

	fbData := r.Section(framebufferSectionTag)
	if fbData == nil {
		return fmt.Errorf("dmg gpu: savestate missing %q section", framebufferSectionTag)
	}
	fbBuf := bytes.NewReader(fbData)
	if err := binary.Read(fbBuf, binary.LittleEndian, g.framebuffer.buffer); err != nil {
		return fmt.Errorf("dmg gpu: decoding framebuffer: %w", err)
	}
	return nil
}

func writeAll(buf *bytes.Buffer, values ...any) error {
	for _, v := range values {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readAll(buf *bytes.Reader, ptrs ...any) error {
	for _, p := range ptrs {
		if err := binary.Read(buf, binary.LittleEndian, p); err != nil {
			return err
		}
	}
	return nil
}
