package memory

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/shonumi/gbe-plus-sub002/savestate"
)

const (
	busSectionTag    = "DBUS"
	timerSectionTag  = "DTIM"
	joypadSectionTag = "DJOY"
	ramSectionTag    = "DRAM"
)

// Save appends the bus's VRAM/WRAM/OAM/HRAM/IO RAM, bank-select
// indices, CGB palette RAM, HDMA controller state and IE register to w,
// along with the timer, joypad and the installed mapper's battery RAM.
func (b *Bus) Save(w *savestate.Writer) error {
	var buf bytes.Buffer
	err := writeAll(&buf,
		&b.vram, b.vramBank,
		&b.wram, b.wramBank,
		&b.oam, &b.hram, &b.io,
		b.key1, b.doubleSpeed,
		&b.bgPaletteRAM, &b.objPaletteRAM, b.bcps, b.ocps,
		b.hdmaSrc, b.hdmaDst, int32(b.hdmaRemaining), b.hdmaHBlankMode,
		b.ie,
	)
	if err != nil {
		return fmt.Errorf("dmg bus: encoding state: %w", err)
	}
	w.WriteSection(busSectionTag, buf.Bytes())

	var timerBuf bytes.Buffer
	if err := b.timer.encode(&timerBuf); err != nil {
		return fmt.Errorf("dmg bus: encoding timer: %w", err)
	}
	w.WriteSection(timerSectionTag, timerBuf.Bytes())

	var joypadBuf bytes.Buffer
	if err := b.joypad.encode(&joypadBuf); err != nil {
		return fmt.Errorf("dmg bus: encoding joypad: %w", err)
	}
	w.WriteSection(joypadSectionTag, joypadBuf.Bytes())

	if ram := b.RAM(); ram != nil {
		w.WriteSection(ramSectionTag, append([]byte(nil), ram...))
	}
	return nil
}

// Restore reads the bus's RAM regions, bank indices, timer, joypad and
// mapper battery RAM back from r.
func (b *Bus) Restore(r *savestate.Reader) error {
	data := r.Section(busSectionTag)
	if data == nil {
		return fmt.Errorf("dmg bus: savestate missing %q section", busSectionTag)
	}
	buf := bytes.NewReader(data)
	var hdmaRemaining int32
	err := readAll(buf,
		&b.vram, &b.vramBank,
		&b.wram, &b.wramBank,
		&b.oam, &b.hram, &b.io,
		&b.key1, &b.doubleSpeed,
		&b.bgPaletteRAM, &b.objPaletteRAM, &b.bcps, &b.ocps,
		&b.hdmaSrc, &b.hdmaDst, &hdmaRemaining, &b.hdmaHBlankMode,
		&b.ie,
	)
	if err != nil {
		return fmt.Errorf("dmg bus: decoding state: %w", err)
	}
	b.hdmaRemaining = int(hdmaRemaining)

	timerData := r.Section(timerSectionTag)
	if timerData == nil {
		return fmt.Errorf("dmg bus: savestate missing %q section", timerSectionTag)
	}
	if err := b.timer.decode(bytes.NewReader(timerData)); err != nil {
		return fmt.Errorf("dmg bus: decoding timer: %w", err)
	}

	joypadData := r.Section(joypadSectionTag)
	if joypadData == nil {
		return fmt.Errorf("dmg bus: savestate missing %q section", joypadSectionTag)
	}
	if err := b.joypad.decode(bytes.NewReader(joypadData)); err != nil {
		return fmt.Errorf("dmg bus: decoding joypad: %w", err)
	}

	if ram := b.RAM(); ram != nil {
		saved := r.Section(ramSectionTag)
		if saved == nil {
			return fmt.Errorf("dmg bus: savestate missing %q section", ramSectionTag)
		}
		copy(ram, saved)
	}
	return nil
}

func (t *timer) encode(buf *bytes.Buffer) error {
	return writeAll(buf,
		t.systemCounter, t.lastTimerBit, int32(t.timaOverflow), t.timaDelayInt,
		t.div, t.tima, t.tma, t.tac,
	)
}

func (t *timer) decode(buf *bytes.Reader) error {
	var overflow int32
	if err := readAll(buf,
		&t.systemCounter, &t.lastTimerBit, &overflow, &t.timaDelayInt,
		&t.div, &t.tima, &t.tma, &t.tac,
	); err != nil {
		return err
	}
	t.timaOverflow = int(overflow)
	return nil
}

func (j *joypad) encode(buf *bytes.Buffer) error {
	return writeAll(buf, j.buttons, j.dpad, j.p1)
}

func (j *joypad) decode(buf *bytes.Reader) error {
	return readAll(buf, &j.buttons, &j.dpad, &j.p1)
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
