package cpu

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/shonumi/gbe-plus-sub002/savestate"
)

// cpuSectionTag identifies the Z80-derived register file section of a
// savestate blob.
const cpuSectionTag = "DCPU"

// Save appends this CPU's full register file, interrupt state and halt
// state to w.
func (c *CPU) Save(w *savestate.Writer) error {
	var buf bytes.Buffer
	err := writeAll(&buf,
		c.a, c.b, c.c, c.d, c.e, c.f, c.h, c.l,
		c.sp, c.pc,
		uint8(c.mode),
		c.ime, c.imeScheduled, c.halted, c.haltBug,
		c.ie, c.ifr,
		c.currentOpcode,
		c.running,
	)
	if err != nil {
		return fmt.Errorf("dmg cpu: encoding state: %w", err)
	}
	w.WriteSection(cpuSectionTag, buf.Bytes())
	return nil
}

// Restore reads this CPU's register file back from r.
func (c *CPU) Restore(r *savestate.Reader) error {
	data := r.Section(cpuSectionTag)
	if data == nil {
		return fmt.Errorf("dmg cpu: savestate missing %q section", cpuSectionTag)
	}
	buf := bytes.NewReader(data)

	var mode uint8
	err := readAll(buf,
		&c.a, &c.b, &c.c, &c.d, &c.e, &c.f, &c.h, &c.l,
		&c.sp, &c.pc,
		&mode,
		&c.ime, &c.imeScheduled, &c.halted, &c.haltBug,
		&c.ie, &c.ifr,
		&c.currentOpcode,
		&c.running,
	)
	if err != nil {
		return fmt.Errorf("dmg cpu: decoding state: %w", err)
	}
	c.mode = Mode(mode)
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
