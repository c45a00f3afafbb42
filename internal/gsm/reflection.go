package gsm

import "github.com/cwsl/radlib-go/internal/q15"

// decodeReflectionCoefficients reconstructs the four interpolation-zone
// reflection coefficient sets rp[0..3][1..8] from a frame's eight coded LAR
// values, per §5.2.8-5.2.9 (also reused, unchanged, as the decoder's §5.3.3).
// larppLast holds the previous segment's reconstructed LARpp and is updated
// in place to this segment's LARpp for the next call.
//
// Both the encoder and decoder drive this from their own locally-known LARc
// (the encoder's just-quantized values, the decoder's received ones): the
// reference source only writes this logic once, as part of Encoder's
// synthesis-adjacent bookkeeping, and the decoder calls back into it.
func decodeReflectionCoefficients(larc [8]uint8, larppLast *[8]int16) (rp [4][8]int16) {
	var larpp [8]int16
	for i := 0; i < 8; i++ {
		temp1 := q15.Add(int16(larc[i]), tableMIC[i]) << 10
		temp2 := tableB[i] << 1
		temp1 = q15.Sub(temp1, temp2)
		temp1 = q15.MultR(tableINVA[i], temp1)
		larpp[i] = q15.Add(temp1, temp1)
	}

	var larp [4]int16
	for i := 0; i < 8; i++ {
		temp := q15.Add(larppLast[i]>>2, larpp[i]>>2)
		larp[0] = q15.Add(temp, larppLast[i]>>1)
		larp[1] = q15.Add(larppLast[i]>>1, larpp[i]>>1)
		temp = q15.Add(larppLast[i]>>2, larpp[i]>>2)
		larp[2] = q15.Add(temp, larpp[i]>>1)
		larp[3] = larpp[i]

		for zone := 0; zone < 4; zone++ {
			temp := q15.Abs(larp[zone])
			switch {
			case temp < 11059:
				temp = temp << 1
			case temp < 20070:
				temp = q15.Add(temp, 11059)
			default:
				temp = q15.Add(temp>>2, 26112)
			}
			if larp[zone] < 0 {
				temp = q15.Sub(0, temp)
			}
			rp[zone][i] = temp
		}
	}

	*larppLast = larpp
	return rp
}
