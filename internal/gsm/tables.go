package gsm

// Constant tables from ETSI EN 300 961. All are indexed 0..7 for the draft's
// coefficient index 1..8 (index i in the draft is table[i-1] here).

// Table 5.1: LAR quantization/coding coefficients. a is pre-scaled by 1/32,
// b by 1/64.
var tableA = [8]int16{20480, 20480, 20480, 20480, 13964, 15360, 8534, 9036}
var tableB = [8]int16{0, 0, 2048, -2560, 94, -1792, -341, -1144}
var tableMIC = [8]int16{-32, -32, -16, -16, -8, -8, -4, -4}
var tableMAC = [8]int16{31, 31, 15, 15, 7, 7, 3, 3}

// Table 5.2: inverse of tableA, used to decode LARc back to LARpp.
var tableINVA = [8]int16{13107, 13107, 13107, 13107, 19223, 17476, 31454, 29708}

// Table 5.3a/5.3b: LTP gain quantizer decision levels and reconstruction
// levels.
var tableDLB = [4]int16{6554, 16384, 26214, 32767}
var tableQLB = [4]int16{3277, 11469, 21299, 32767}

// Table 5.4: weighting filter (RPE) coefficients.
var tableH = [11]int16{-134, -374, 0, 2054, 5741, 8192, 5741, 2054, 0, -374, -134}

// Table 5.5/5.6: normalized mantissa tables used by the APCM quantizer.
var tableNRFAC = [8]int16{29128, 26215, 23832, 21846, 20165, 18725, 17476, 16384}
var tableFAC = [8]int16{18431, 20479, 22527, 24575, 26623, 28671, 30719, 32767}

// k2zone maps a short-term-residual sample index (0..159) to its
// interpolation zone (0..3), per Table 3.2.
func k2zone(k int) int {
	switch {
	case k <= 12:
		return 0
	case k <= 26:
		return 1
	case k <= 39:
		return 2
	default:
		return 3
	}
}
