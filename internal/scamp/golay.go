package scamp

import "math/bits"

// Extended binary Golay(24,12) forward error correction. The reference
// CodeWord24 source was retrieved truncated to its license header, so this
// is synthesized from the standard construction of the code: the (23,12,7)
// cyclic Golay code generated by g(x) = x^11+x^10+x^6+x^5+x^4+x^2+1 (one of
// the two reciprocal degree-11 factors of x^23+1 over GF(2)), extended with
// one overall even-parity bit to fill out the 24-bit codeword used by
// Frame30/CodeWord24.
const golayGenPoly = 0xC75 // degree-11 generator polynomial, bits 11..0

// golaySyndrome23 reduces a 23-bit codeword polynomial modulo the generator
// polynomial, returning the 11-bit remainder. This is ordinary CRC-style
// binary polynomial long division: MSB first, XOR the shifted generator in
// wherever the leading bit of the remaining dividend is set.
func golaySyndrome23(codeword uint32) uint32 {
	reg := codeword & 0x7FFFFF
	for b := 22; b >= 11; b-- {
		if reg&(1<<uint(b)) != 0 {
			reg ^= uint32(golayGenPoly) << uint(b-11)
		}
	}
	return reg & 0x7FF
}

// golayEncode23 produces a systematic 23-bit codeword for a 12-bit data
// value: the 12 data bits occupy the high bits, and the 11-bit remainder of
// dividing them (shifted) by the generator polynomial fills the low bits,
// so that the result is always evenly divisible by the generator (i.e. a
// valid codeword).
func golayEncode23(data uint16) uint32 {
	shifted := uint32(data&0xFFF) << 11
	return shifted | golaySyndrome23(shifted)
}

func rotateLeft23(v uint32, n int) uint32 {
	v &= 0x7FFFFF
	n = ((n % 23) + 23) % 23
	if n == 0 {
		return v
	}
	return ((v << uint(n)) | (v >> uint(23-n))) & 0x7FFFFF
}

// golayDecode23 corrects up to 3 bit errors in a 23-bit received word using
// error trapping: when some cyclic rotation of the error pattern lies
// entirely within the low 11 syndrome positions, the syndrome of that
// rotation is the error pattern itself and can be read off directly and
// rotated back. Patterns spread too widely for that (e.g. errors at bits
// 3, 9 and 17) are trapped by flipping each of the 23 positions in turn
// and trapping the remaining ≤2 errors; a wrong flip cannot trap at weight
// ≤2, since that would put two codewords within distance 6 of each other.
func golayDecode23(received uint32) (corrected uint32, ok bool) {
	r := received & 0x7FFFFF
	for flip := -1; flip < 23; flip++ {
		rf, maxWeight := r, 3
		if flip >= 0 {
			rf, maxWeight = r^(1<<uint(flip)), 2
		}
		for shift := 0; shift < 23; shift++ {
			rs := rotateLeft23(rf, shift)
			s := golaySyndrome23(rs)
			if bits.OnesCount32(s) <= maxWeight {
				fixedShifted := rs ^ s
				return rotateLeft23(fixedShifted, 23-shift), true
			}
		}
	}
	return received, false
}

// GolayEncode24 encodes a 12-bit data value into a 24-bit codeword: a
// systematic 23-bit Golay codeword plus one overall even-parity bit in the
// top position.
func GolayEncode24(data uint16) uint32 {
	c23 := golayEncode23(data)
	parity := uint32(bits.OnesCount32(c23) & 1)
	return (parity << 23) | c23
}

// GolayDecode24 recovers the original 12-bit data from a possibly-corrupted
// 24-bit codeword, correcting up to 3 bit errors. ok is false if the word
// could not be trapped to a correctable error pattern.
func GolayDecode24(raw uint32) (data uint16, ok bool) {
	c23 := raw & 0x7FFFFF
	corrected, ok := golayDecode23(c23)
	if !ok {
		return 0, false
	}
	return uint16((corrected >> 11) & 0xFFF), true
}
