package swi

import (
	"math"

	"github.com/shonumi/gbe-plus-sub002/system/gba/cpu"
)

// bgAffineSource/objAffineSource mirror the documented input record
// layout for BGAffineSet/ObjAffineSet: a center coordinate pair, a
// texture-space origin pair, a 2D scale pair and a 16-bit angle, each
// entry consumed in sequence from R0 for R1 entries.
const (
	bgAffineSrcSize  = 20
	bgAffineDstSize  = 16
	objAffineSrcSize = 8
	objAffineDstSize = 8
)

// bgAffineSet computes a background affine transform matrix (PA-PD,
// plus reference X/Y) from a center/origin/scale/angle record, for
// each of R2 entries.
func bgAffineSet(c *cpu.CPU) {
	src, dst, count := c.R(0), c.R(1), c.R(2)
	bus := c.Bus()

	for i := uint32(0); i < count; i++ {
		base := src + i*bgAffineSrcSize
		origX := int32(bus.Read32(base))
		origY := int32(bus.Read32(base + 4))
		centerX := int16(bus.Read16(base + 8))
		centerY := int16(bus.Read16(base + 10))
		scaleX := int16(bus.Read16(base + 12))
		scaleY := int16(bus.Read16(base + 14))
		angle := uint16(bus.Read16(base+16)) >> 8

		pa, pb, pc, pd := affineMatrix(scaleX, scaleY, angle)

		refX := origX - int32(float64(centerX)*fixed8ToFloat(pa)) - int32(float64(centerY)*fixed8ToFloat(pb))
		refY := origY - int32(float64(centerX)*fixed8ToFloat(pc)) - int32(float64(centerY)*fixed8ToFloat(pd))

		out := dst + i*bgAffineDstSize
		bus.Write16(out, uint16(pa))
		bus.Write16(out+2, uint16(pb))
		bus.Write16(out+4, uint16(pc))
		bus.Write16(out+6, uint16(pd))
		bus.Write32(out+8, uint32(refX))
		bus.Write32(out+12, uint32(refY))
	}
}

// objAffineSet computes the 4 PA-PD parameters only, for each of R2
// sprite affine entries.
func objAffineSet(c *cpu.CPU) {
	src, dst, count, stride := c.R(0), c.R(1), c.R(2), c.R(3)
	if stride == 0 {
		stride = 2
	}
	bus := c.Bus()

	for i := uint32(0); i < count; i++ {
		base := src + i*objAffineSrcSize
		scaleX := int16(bus.Read16(base))
		scaleY := int16(bus.Read16(base + 2))
		angle := uint16(bus.Read16(base+4)) >> 8

		pa, pb, pc, pd := affineMatrix(scaleX, scaleY, angle)

		out := dst + i*stride*8
		bus.Write16(out, uint16(pa))
		bus.Write16(out+stride*2, uint16(pb))
		bus.Write16(out+stride*4, uint16(pc))
		bus.Write16(out+stride*6, uint16(pd))
	}
}

func affineMatrix(scaleX, scaleY int16, angle uint16) (pa, pb, pc, pd int16) {
	theta := float64(angle) / 256 * 2 * math.Pi
	sinv, cosv := math.Sin(theta), math.Cos(theta)
	sx, sy := float64(scaleX)/256, float64(scaleY)/256

	pa = floatToFixed8(sx * cosv)
	pb = floatToFixed8(-sx * sinv)
	pc = floatToFixed8(sy * sinv)
	pd = floatToFixed8(sy * cosv)
	return
}

func fixed8ToFloat(v int16) float64 { return float64(v) / 256 }
func floatToFixed8(v float64) int16 { return int16(v * 256) }
