package gsm

import "github.com/cwsl/radlib-go/internal/q15"

// Decoder implements the GSM 06.10 synthesis (parameters-to-speech) side.
type Decoder struct {
	nrp       int16
	drp       [160]int16
	larppLast [8]int16
	v         [9]int16
	msr       int16
}

// NewDecoder returns a freshly-reset Decoder.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset zeroes all carried-across-segment state; nrp is re-initialized to
// 40 (the minimum valid LTP lag), per §9.
func (d *Decoder) Reset() {
	d.nrp = 40
	d.drp = [160]int16{}
	d.larppLast = [8]int16{}
	d.v = [9]int16{}
	d.msr = 0
}

// Decode synthesizes one 160-sample (20ms) PCM segment from in's GSM
// parameters.
func (d *Decoder) Decode(in *Parameters) [SegmentSamples]int16 {
	var wt [SegmentSamples]int16

	for j := 0; j < 4; j++ {
		sub := &in.SubSegs[j]

		// 5.3.1 - RPE decoding: reconstruct erp[0..39] from Mc/xmaxc/xMc.
		var exp int16
		if sub.Xmaxc > 15 {
			exp = q15.Sub(int16(sub.Xmaxc)>>3, 1)
		}
		mant := q15.Sub(int16(sub.Xmaxc), exp<<3)
		if mant == 0 {
			exp = -4
			mant = 15
		} else {
			itest := false
			for i := 0; i <= 2; i++ {
				if mant > 7 {
					itest = true
				}
				if !itest {
					mant = q15.Add(mant<<1, 1)
				}
				if !itest {
					exp = q15.Sub(exp, 1)
				}
			}
		}
		mant = q15.Sub(mant, 8)

		fac := tableFAC[mant]
		shift := q15.Sub(6, exp)
		rounder := int16(1) << uint(shift-1)
		var xMp [13]int16
		for i := 0; i <= 12; i++ {
			t := q15.Sub(int16(sub.XMc[i])<<1, 7)
			t = t << 12
			t = q15.MultR(fac, t)
			t = q15.Add(t, rounder)
			xMp[i] = t >> uint(shift)
		}

		var erp [40]int16
		for i := 0; i <= 12; i++ {
			erp[int(sub.Mc)+3*i] = xMp[i]
		}

		// 5.3.2 - Long-term synthesis filtering. An out-of-range Nc
		// (outside [40,120]) means this sub-segment's lag was never
		// coded validly (or a bit error flipped it); substitute the
		// last valid lag instead of trusting it.
		nr := int16(sub.Nc)
		if sub.Nc < 40 || sub.Nc > 120 {
			nr = d.nrp
		}
		d.nrp = nr

		brp := tableQLB[sub.Bc]
		for k := 0; k < 40; k++ {
			drpp := q15.MultR(brp, d.drp[(k-int(nr))+120])
			d.drp[k+120] = q15.Add(erp[k], drpp)
		}

		// Slide the drp[] history left by 40: the older entries -80..-1
		// become -120..-41 and this segment's freshly-computed 40
		// samples become -40..-1 for the next sub-segment's lookups.
		copy(d.drp[0:120], d.drp[40:160])

		for k := 0; k < 40; k++ {
			wt[j*40+k] = d.drp[k+120]
		}
	}

	// 5.3.3 - Reconstruct the four zone-interpolated reflection
	// coefficient sets from the received LARc, same computation the
	// encoder performs on its own just-coded LARc.
	rrp := decodeReflectionCoefficients(in.LARc, &d.larppLast)

	// 5.3.4 - Short-term synthesis filtering (8-section lattice, run in
	// reverse section order relative to the encoder's analysis lattice).
	var sr [SegmentSamples]int16
	for k := 0; k < SegmentSamples; k++ {
		zone := k2zone(k)
		sri := wt[k]
		for i := 1; i <= 8; i++ {
			sri = q15.Sub(sri, q15.MultR(rrp[zone][8-i], d.v[8-i]))
			d.v[9-i] = q15.Add(d.v[8-i], q15.MultR(rrp[zone][8-i], sri))
		}
		sr[k] = sri
		d.v[0] = sri
	}

	// 5.3.5 - De-emphasis.
	var sro [SegmentSamples]int16
	for k := 0; k < SegmentSamples; k++ {
		d.msr = q15.Add(sr[k], q15.MultR(d.msr, 28180))
		sro[k] = d.msr
	}

	// 5.3.6/5.3.7 - Upscaling then truncation of the 3 don't-care LSBs.
	var out [SegmentSamples]int16
	for k := 0; k < SegmentSamples; k++ {
		srop := q15.Add(sro[k], sro[k])
		out[k] = (srop >> 3) << 3
	}
	return out
}
