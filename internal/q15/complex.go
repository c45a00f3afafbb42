package q15

import "math"

// Complex is a Q15 fixed-point complex number, mirroring the teacher
// lineage's cq15 struct.
type Complex struct {
	R, I Q15
}

// MagF32 returns the exact floating-point magnitude.
func (c Complex) MagF32() float32 {
	r := ToFloat32(c.R)
	i := ToFloat32(c.I)
	return float32(math.Sqrt(float64(r*r + i*i)))
}

// MagF32Squared returns the exact floating-point magnitude squared.
func (c Complex) MagF32Squared() float32 {
	r := ToFloat32(c.R)
	i := ToFloat32(c.I)
	return r*r + i*i
}

// ApproxMagQ15 is the cheap max+half-sum magnitude approximation used on
// the demodulator hot path instead of a square root.
func (c Complex) ApproxMagQ15() Q15 {
	absR := Abs(c.R)
	absI := Abs(c.I)
	var maxV Q15
	if absR > absI {
		maxV = absR
	} else {
		maxV = absI
	}
	return Add(maxV, (absR+absI)>>1)
}

// Accumulate adds c2 into c in place.
func (c *Complex) Accumulate(c2 Complex) {
	c.R += c2.R
	c.I += c2.I
}

// MultComplex multiplies two Q15 complex numbers using the 3-multiply
// (Karatsuba-style) technique the original implementation uses to save a
// multiply per complex product.
func MultComplex(c0, c1 Complex) Complex {
	a, b := c0.R, c0.I
	c, d := c1.R, c1.I
	ac := Mult(a, c)
	bd := Mult(b, d)
	aPlusB := a + b
	cPlusD := c + d
	p0 := Mult(aPlusB, cPlusD)
	return Complex{
		R: ac - bd,
		I: p0 - ac - bd,
	}
}
