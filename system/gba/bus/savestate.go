package bus

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/shonumi/gbe-plus-sub002/savestate"
)

const (
	busSectionTag    = "GBUS"
	dmaSectionTag    = "GDMA"
	timerSectionTag  = "GTMR"
	sramSectionTag   = "GSRA"
)

// Save appends the bus's RAM regions, I/O register block, interrupt
// state and keypad latch, plus every DMA channel and timer, to w.
func (b *Bus) Save(w *savestate.Writer) error {
	var buf bytes.Buffer
	fields := []any{
		&b.ewram, &b.iwram, &b.pram, &b.vram, &b.oam,
		&b.ioRegs,
		b.ie, b.ifr, b.ime, b.keyinput,
		b.lastBIOSFetch,
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("gba bus: encoding state: %w", err)
		}
	}
	w.WriteSection(busSectionTag, buf.Bytes())
	w.WriteSection(sramSectionTag, append([]byte(nil), b.sram[:]...))

	var dmaBuf bytes.Buffer
	for i := range b.dma {
		if err := b.dma[i].encode(&dmaBuf); err != nil {
			return fmt.Errorf("gba bus: encoding dma channel %d: %w", i, err)
		}
	}
	w.WriteSection(dmaSectionTag, dmaBuf.Bytes())

	var timerBuf bytes.Buffer
	for i := range b.timers {
		if err := b.timers[i].encode(&timerBuf); err != nil {
			return fmt.Errorf("gba bus: encoding timer %d: %w", i, err)
		}
	}
	w.WriteSection(timerSectionTag, timerBuf.Bytes())
	return nil
}

// Restore reads the bus's RAM regions, registers, DMA channels and
// timers back from r.
func (b *Bus) Restore(r *savestate.Reader) error {
	data := r.Section(busSectionTag)
	if data == nil {
		return fmt.Errorf("gba bus: savestate missing %q section", busSectionTag)
	}
	buf := bytes.NewReader(data)
	fields := []any{
		&b.ewram, &b.iwram, &b.pram, &b.vram, &b.oam,
		&b.ioRegs,
		&b.ie, &b.ifr, &b.ime, &b.keyinput,
		&b.lastBIOSFetch,
	}
	for _, f := range fields {
		if err := binary.Read(buf, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("gba bus: decoding state: %w", err)
		}
	}

	sram := r.Section(sramSectionTag)
	if sram == nil {
		return fmt.Errorf("gba bus: savestate missing %q section", sramSectionTag)
	}
	copy(b.sram[:], sram)

	dmaData := r.Section(dmaSectionTag)
	if dmaData == nil {
		return fmt.Errorf("gba bus: savestate missing %q section", dmaSectionTag)
	}
	dmaBuf := bytes.NewReader(dmaData)
	for i := range b.dma {
		if err := b.dma[i].decode(dmaBuf); err != nil {
			return fmt.Errorf("gba bus: decoding dma channel %d: %w", i, err)
		}
	}

	timerData := r.Section(timerSectionTag)
	if timerData == nil {
		return fmt.Errorf("gba bus: savestate missing %q section", timerSectionTag)
	}
	timerBuf := bytes.NewReader(timerData)
	for i := range b.timers {
		if err := b.timers[i].decode(timerBuf); err != nil {
			return fmt.Errorf("gba bus: decoding timer %d: %w", i, err)
		}
	}
	return nil
}

// encode/decode write dmaChannel's fields explicitly rather than as one
// struct because index is a plain int, whose platform-dependent size
// encoding/binary refuses to encode directly.
func (d *dmaChannel) encode(buf *bytes.Buffer) error {
	return writeAll(buf,
		int32(d.index), d.source, d.dest, d.wordCount, d.control,
		d.curSource, d.curDest, d.curCount, d.running,
	)
}

func (d *dmaChannel) decode(buf *bytes.Reader) error {
	var index int32
	if err := readAll(buf,
		&index, &d.source, &d.dest, &d.wordCount, &d.control,
		&d.curSource, &d.curDest, &d.curCount, &d.running,
	); err != nil {
		return err
	}
	d.index = int(index)
	return nil
}

func (t *timerChannel) encode(buf *bytes.Buffer) error {
	return writeAll(buf,
		int32(t.index), t.reload, t.counter, t.control, t.running, int32(t.prescaleCounter),
	)
}

func (t *timerChannel) decode(buf *bytes.Reader) error {
	var index, prescale int32
	if err := readAll(buf,
		&index, &t.reload, &t.counter, &t.control, &t.running, &prescale,
	); err != nil {
		return err
	}
	t.index = int(index)
	t.prescaleCounter = int(prescale)
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
