package video

// cgbColor decodes a little-endian RGB555 palette entry (as stored by
// BCPD/OCPD) into a display color. Each 5-bit channel is left-shifted
// into its 8-bit field with no further color-space conversion; this is
// the exact bit-replication-free mapping real CGB hardware and every
// accurate emulator in this family use.
func cgbColor(lo, hi byte) GBColor {
	word := uint16(hi)<<8 | uint16(lo)
	r5 := word & 0x1F
	g5 := (word >> 5) & 0x1F
	b5 := (word >> 10) & 0x1F

	r8 := uint8(r5 << 3)
	g8 := uint8(g5 << 3)
	b8 := uint8(b5 << 3)

	return GBColor(uint32(r8)<<24 | uint32(g8)<<16 | uint32(b8)<<8 | 0xFF)
}
