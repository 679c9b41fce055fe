package cpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/shonumi/gbe-plus-sub002/savestate"
)

// cpuSectionTag identifies the ARM7TDMI register file section of a
// savestate blob.
const cpuSectionTag = "GCPU"

// Save appends this core's full register file (all banked r8-r14
// copies, CPSR, every mode's SPSR, and the current mode/halt/branched
// state) to w.
func (c *CPU) Save(w *savestate.Writer) error {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, c.Registers); err != nil {
		return fmt.Errorf("gba cpu: encoding registers: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, c.halt); err != nil {
		return fmt.Errorf("gba cpu: encoding halt: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, c.branched); err != nil {
		return fmt.Errorf("gba cpu: encoding branched: %w", err)
	}
	w.WriteSection(cpuSectionTag, buf.Bytes())
	return nil
}

// Restore reads this core's register file back from r, leaving the CPU
// bit-identical to the state it was Saved in.
func (c *CPU) Restore(r *savestate.Reader) error {
	data := r.Section(cpuSectionTag)
	if data == nil {
		return fmt.Errorf("gba cpu: savestate missing %q section", cpuSectionTag)
	}
	buf := bytes.NewReader(data)
	// Registers holds only unexported uint32-sized fields, which
	// binary.Read cannot set through reflection; decode them as a flat
	// word array in the field order binary.Write emitted and copy that
	// over the register file.
	var words [unsafe.Sizeof(Registers{}) / 4]uint32
	if err := binary.Read(buf, binary.LittleEndian, &words); err != nil {
		return fmt.Errorf("gba cpu: decoding registers: %w", err)
	}
	c.Registers = *(*Registers)(unsafe.Pointer(&words))
	if err := binary.Read(buf, binary.LittleEndian, &c.halt); err != nil {
		return fmt.Errorf("gba cpu: decoding halt: %w", err)
	}
	if err := binary.Read(buf, binary.LittleEndian, &c.branched); err != nil {
		return fmt.Errorf("gba cpu: decoding branched: %w", err)
	}
	return nil
}
