// Package savestate implements the raw, fixed-width little-endian
// savestate framing used by both the 8-bit and 32-bit cores: each
// section is a magic-tagged, length-prefixed blob so a loader can skip
// sections it doesn't recognize (e.g. loading a DMG state into code
// that only knows the GBA layout).
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Magic identifies the overall savestate format and version.
const Magic = "GBESS001"

// Section is one tagged, self-delimited chunk of state.
type Section struct {
	Tag  [4]byte
	Data []byte
}

// Writer accumulates sections before final serialization.
type Writer struct {
	sections []Section
}

func NewWriter() *Writer { return &Writer{} }

// WriteSection appends a section whose payload has already been encoded
// with encoding/binary (LittleEndian) by the caller.
func (w *Writer) WriteSection(tag string, data []byte) {
	var t [4]byte
	copy(t[:], tag)
	w.sections = append(w.sections, Section{Tag: t, Data: data})
}

// Encode serializes all sections into the final savestate blob.
func (w *Writer) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.WriteString(Magic); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(w.sections))); err != nil {
		return nil, err
	}
	for _, s := range w.sections {
		if _, err := buf.Write(s.Tag[:]); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(s.Data))); err != nil {
			return nil, err
		}
		if _, err := buf.Write(s.Data); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Reader parses a savestate blob produced by Writer.
type Reader struct {
	sections map[[4]byte][]byte
}

// Decode parses raw into a Reader, validating the magic header.
func Decode(raw []byte) (*Reader, error) {
	buf := bytes.NewReader(raw)

	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(buf, magic); err != nil {
		return nil, fmt.Errorf("savestate: reading magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("savestate: bad magic %q", magic)
	}

	var count uint32
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("savestate: reading section count: %w", err)
	}

	r := &Reader{sections: make(map[[4]byte][]byte, count)}
	for i := uint32(0); i < count; i++ {
		var tag [4]byte
		if _, err := io.ReadFull(buf, tag[:]); err != nil {
			return nil, fmt.Errorf("savestate: reading section %d tag: %w", i, err)
		}
		var length uint32
		if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("savestate: reading section %d length: %w", i, err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(buf, data); err != nil {
			return nil, fmt.Errorf("savestate: reading section %d payload: %w", i, err)
		}
		r.sections[tag] = data
	}
	return r, nil
}

// Section returns the raw payload for tag, or nil if absent.
func (r *Reader) Section(tag string) []byte {
	var t [4]byte
	copy(t[:], tag)
	return r.sections[t]
}
