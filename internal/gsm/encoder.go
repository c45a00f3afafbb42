// Package gsm implements the GSM 06.10 RPE-LTP full-rate speech codec
// (ETSI EN 300 961): a bit-exact fixed-point analysis/synthesis pipeline,
// the 76-parameter/260-bit frame layout, and LSB-first bit packing.
package gsm

import "github.com/cwsl/radlib-go/internal/q15"

// SegmentSamples is the number of 16-bit PCM samples per 20ms segment at
// 8kHz (one encode/decode call's worth of audio).
const SegmentSamples = 160

// Encoder implements the GSM 06.10 analysis (speech-to-parameters) side.
// Its state fields are preserved across successive 20ms segments; Reset
// returns it to its freshly-constructed condition.
type Encoder struct {
	z1         int16
	lZ2        int32
	mp         int16
	larppLast  [8]int16
	u          [8]int16
	dp         [120]int16
}

// NewEncoder returns a freshly-reset Encoder.
func NewEncoder() *Encoder {
	e := &Encoder{}
	e.Reset()
	return e
}

// Reset zeroes all carried-across-segment state, per §9 "state preserved
// across segments".
func (e *Encoder) Reset() {
	e.z1 = 0
	e.lZ2 = 0
	e.mp = 0
	e.larppLast = [8]int16{}
	e.u = [8]int16{}
	e.dp = [120]int16{}
}

// Encode analyzes one 160-sample (20ms) PCM segment and returns its GSM
// parameters. sop's low 3 bits are treated as don't-care, per §5.2.1.
func (e *Encoder) Encode(sop *[SegmentSamples]int16) Parameters {
	var out Parameters

	var so, sof, s [SegmentSamples]int16

	// 5.2.1 - Scaling: discard the 3 don't-care LSBs.
	for k := 0; k < SegmentSamples; k++ {
		so[k] = (sop[k] >> 3) << 2
	}

	// 5.2.2 - Offset compensation: first-order DC-removing IIR filter.
	for k := 0; k < SegmentSamples; k++ {
		s1 := q15.Sub(so[k], e.z1)
		e.z1 = so[k]

		lS2 := int32(s1) << 15
		msp := int16(e.lZ2 >> 15)
		lsp := int16(q15.LSub(e.lZ2, int32(msp)<<15))
		temp := q15.MultR(lsp, 32735)
		lS2 = q15.LAdd(lS2, int32(temp))
		e.lZ2 = q15.LAdd(q15.LMult(msp, 32735)>>1, lS2)

		sof[k] = int16(q15.LAdd(e.lZ2, 16384) >> 15)
	}

	// 5.2.3 - Pre-emphasis.
	for k := 0; k < SegmentSamples; k++ {
		s[k] = q15.Add(sof[k], q15.MultR(e.mp, -28180))
		e.mp = sof[k]
	}

	// 5.2.4 - Autocorrelation, auto-scaled to avoid accumulator overflow.
	var smax int16
	for k := 0; k < SegmentSamples; k++ {
		if a := q15.Abs(s[k]); a > smax {
			smax = a
		}
	}
	var scalauto int16
	if smax != 0 {
		scalauto = q15.Sub(4, q15.Norm(int32(smax)<<16))
	}
	if scalauto > 0 {
		temp := int16(16384 >> q15.Sub(scalauto, 1))
		for k := 0; k < SegmentSamples; k++ {
			s[k] = q15.MultR(s[k], temp)
		}
	}

	var lACF [9]int32
	for k := 0; k <= 8; k++ {
		var acc int32
		for i := k; i < SegmentSamples; i++ {
			acc = q15.LAdd(acc, q15.LMult(s[i], s[i-k]))
		}
		lACF[k] = acc
	}
	if scalauto > 0 {
		for k := 0; k < SegmentSamples; k++ {
			s[k] = s[k] << uint(scalauto)
		}
	}

	// 5.2.5 - Schur recursion to compute reflection coefficients r[1..8].
	var r [9]int16
	if lACF[0] != 0 {
		normShift := q15.Norm(lACF[0])
		var acf [9]int16
		for k := 0; k <= 8; k++ {
			acf[k] = int16((lACF[k] << uint(normShift)) >> 16)
		}
		var p, kk [9]int16
		for i := 1; i <= 7; i++ {
			kk[9-i] = acf[i]
		}
		for i := 0; i <= 8; i++ {
			p[i] = acf[i]
		}
		for n := 1; n <= 8; n++ {
			if p[0] < q15.Abs(p[1]) {
				for i := n; i <= 8; i++ {
					r[i] = 0
				}
				break
			}
			r[n] = q15.Div(q15.Abs(p[1]), p[0])
			if p[1] > 0 {
				r[n] = q15.Sub(0, r[n])
			}
			if n == 8 {
				break
			}
			p[0] = q15.Add(p[0], q15.MultR(p[1], r[n]))
			for m := 1; m <= 8-n; m++ {
				newP := q15.Add(p[m+1], q15.MultR(kk[9-m], r[n]))
				kk[9-m] = q15.Add(kk[9-m], q15.MultR(p[m+1], r[n]))
				p[m] = newP
			}
		}
	}

	// 5.2.6 - Reflection coefficients to log-area ratios (approximation).
	// LAR[] is indexed 0..7 here for draft index 1..8, and comes out
	// left half-scale (right-shifted by 1 relative to full scale).
	var lar [8]int16
	for i := 1; i <= 8; i++ {
		temp := q15.Abs(r[i])
		switch {
		case temp < 22118:
			temp = temp >> 1
		case temp < 31130:
			temp = q15.Sub(temp, 11059)
		default:
			temp = q15.Sub(temp, 26112) << 2
		}
		if r[i] < 0 {
			temp = q15.Sub(0, temp)
		}
		lar[i-1] = temp
	}

	// 5.2.7 - Quantization and coding of the LARs into LARc[0..7].
	var larc [8]int16
	for i := 0; i < 8; i++ {
		temp := q15.Mult(tableA[i], lar[i])
		temp = q15.Add(temp, tableB[i])
		temp = q15.Add(temp, 256)
		larc[i] = temp >> 9
		if larc[i] > tableMAC[i] {
			larc[i] = tableMAC[i]
		}
		if larc[i] < tableMIC[i] {
			larc[i] = tableMIC[i]
		}
		larc[i] = q15.Sub(larc[i], tableMIC[i])
		out.LARc[i] = uint8(larc[i])
	}

	// 5.2.8/5.2.9 - Decode the just-coded LARc back into zone-interpolated
	// reflection coefficients for the short-term analysis filter, and
	// carry LARpp_last forward.
	rp := decodeReflectionCoefficients(out.LARc, &e.larppLast)

	// 5.2.10 - Short-term analysis filtering (8-section lattice).
	var d [SegmentSamples]int16
	for k := 0; k < SegmentSamples; k++ {
		di := s[k]
		sav := di
		zone := k2zone(k)
		for i := 0; i < 8; i++ {
			temp := q15.Add(e.u[i], q15.MultR(rp[zone][i], di))
			di = q15.Add(di, q15.MultR(rp[zone][i], e.u[i]))
			e.u[i] = sav
			sav = temp
		}
		d[k] = di
	}

	// ===== Long-term predictor + RPE, per 40-sample sub-segment =====
	for j := 0; j < 4; j++ {
		kj := j * 40
		sub := &out.SubSegs[j]

		// 5.2.11 - LTP lag and gain.
		var dmax int16
		for k := 0; k < 40; k++ {
			if a := q15.Abs(d[kj+k]); a > dmax {
				dmax = a
			}
		}
		var scal int16
		if dmax != 0 {
			if t := q15.Norm(int32(dmax) << 16); t <= 6 {
				scal = q15.Sub(6, t)
			}
		}
		var wt [50]int16
		for k := 0; k < 40; k++ {
			wt[k] = d[kj+k] >> uint(scal)
		}

		var lMax int32
		nc := 40
		for lambda := 40; lambda <= 120; lambda++ {
			var lResult int32
			for k := 0; k < 40; k++ {
				lResult = q15.LAdd(lResult, q15.LMult(wt[k], e.dp[(k-lambda)+120]))
			}
			if lResult > lMax {
				nc = lambda
				lMax = lResult
			}
		}
		sub.Nc = uint8(nc)
		lMax = lMax >> uint(q15.Sub(6, scal))

		for k := 0; k < 40; k++ {
			wt[k] = e.dp[(k-nc)+120] >> 3
		}
		var lPower int32
		for k := 0; k < 40; k++ {
			lPower = q15.LAdd(lPower, q15.LMult(wt[k], wt[k]))
		}

		var bc int16
		switch {
		case lMax <= 0:
			bc = 0
		case lMax >= lPower:
			bc = 3
		default:
			temp := q15.Norm(lPower)
			rr := int16((lMax << uint(temp)) >> 16)
			ss := int16((lPower << uint(temp)) >> 16)
			switch {
			case rr <= q15.Mult(ss, tableDLB[0]):
				bc = 0
			case rr <= q15.Mult(ss, tableDLB[1]):
				bc = 1
			case rr <= q15.Mult(ss, tableDLB[2]):
				bc = 2
			default:
				bc = 3
			}
		}
		sub.Bc = uint8(bc)

		// 5.2.12 - Long-term analysis filtering.
		bp := tableQLB[bc]
		var e40, dpp [40]int16
		for k := 0; k < 40; k++ {
			dpp[k] = q15.MultR(bp, e.dp[(k-nc)+120])
			e40[k] = q15.Sub(d[kj+k], dpp[k])
		}

		// 5.2.13 - Weighting filter (11-tap FIR, x4 scaling).
		var wt50 [50]int16
		for k := 5; k < 45; k++ {
			wt50[k] = e40[k-5]
		}
		var x [40]int16
		for k := 0; k < 40; k++ {
			lResult := int32(8192)
			for i := 0; i <= 10; i++ {
				lResult = q15.LAdd(lResult, q15.LMult(wt50[k+i], tableH[i]))
			}
			lResult = q15.LAdd(lResult, lResult)
			lResult = q15.LAdd(lResult, lResult)
			x[k] = int16(lResult >> 16)
		}

		// 5.2.14 - RPE grid selection: pick Mc maximizing down-sampled energy.
		var em int32
		mc := 0
		for m := 0; m <= 3; m++ {
			var lResult int32
			for i := 0; i <= 12; i++ {
				t := x[m+3*i] >> 2
				lResult = q15.LAdd(lResult, q15.LMult(t, t))
			}
			if lResult > em {
				mc = m
				em = lResult
			}
		}
		sub.Mc = uint8(mc)

		var xm [13]int16
		for i := 0; i <= 12; i++ {
			xm[i] = x[mc+3*i]
		}

		// 5.2.15 - APCM quantization of xmax.
		var xmax int16
		for i := 0; i <= 12; i++ {
			if a := q15.Abs(xm[i]); a > xmax {
				xmax = a
			}
		}
		var exp int16
		temp := xmax >> 9
		itest := false
		for i := 0; i <= 5; i++ {
			if temp <= 0 {
				itest = true
			}
			temp = temp >> 1
			if !itest {
				exp = q15.Add(exp, 1)
			}
		}
		xmaxc := q15.Add(xmax>>q15.Add(exp, 5), exp<<3)
		sub.Xmaxc = uint8(xmaxc)

		// 5.2.16 - APCM quantization of xM[0..12] (and local inverse
		// quantization xMp, needed for the residual update below).
		exp = 0
		if xmaxc > 15 {
			exp = q15.Sub(xmaxc>>3, 1)
		}
		mant := q15.Sub(xmaxc, exp<<3)
		if mant == 0 {
			exp = -4
			mant = 15
		} else {
			itest = false
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

		temp1 := q15.Sub(6, exp)
		temp2 := tableNRFAC[mant]
		for i := 0; i <= 12; i++ {
			t := xm[i] << uint(temp1)
			t = q15.Mult(t, temp2)
			sub.XMc[i] = uint8(q15.Add(t>>12, 4))
		}

		var xMp [13]int16
		fac := tableFAC[mant]
		shift := q15.Sub(6, exp)
		rounder := int16(1) << uint(shift-1)
		for i := 0; i <= 12; i++ {
			t := q15.Sub(int16(sub.XMc[i])<<1, 7)
			t = t << 12
			t = q15.MultR(fac, t)
			t = q15.Add(t, rounder)
			xMp[i] = t >> uint(shift)
		}

		// 5.2.17 - RPE grid positioning: reconstructed long-term residual.
		var ep [40]int16
		for i := 0; i <= 12; i++ {
			ep[mc+3*i] = xMp[i]
		}

		// 5.2.18 - Slide the dp[] history and append this sub-segment's
		// reconstructed short-term residual.
		copy(e.dp[0:80], e.dp[40:120])
		for k := 0; k < 40; k++ {
			e.dp[80+k] = q15.Add(ep[k], dpp[k])
		}
	}

	return out
}
