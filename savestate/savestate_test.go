package savestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterEncodeThenDecode_roundTripsSections(t *testing.T) {
	w := NewWriter()
	w.WriteSection("AAAA", []byte{1, 2, 3})
	w.WriteSection("BBBB", []byte{})

	raw, err := w.Encode()
	assert.NoError(t, err)

	r, err := Decode(raw)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, r.Section("AAAA"))
	assert.Nil(t, r.Section("CCCC"))
}

func TestDecode_rejectsBadMagic(t *testing.T) {
	raw := []byte("NOTMAGIC\x00\x00\x00\x00")
	_, err := Decode(raw)
	assert.Error(t, err)
}

func TestDecode_rejectsTruncatedData(t *testing.T) {
	w := NewWriter()
	w.WriteSection("AAAA", []byte{1, 2, 3, 4, 5})
	raw, err := w.Encode()
	assert.NoError(t, err)

	_, err = Decode(raw[:len(raw)-2])
	assert.Error(t, err)
}
