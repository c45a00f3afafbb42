package rtty

import (
	"time"

	"github.com/cwsl/radlib-go/internal/fsk"
)

func sendChar(mod fsk.Modulator, symbolLength time.Duration, ch uint8) {
	mod.SendSpace(symbolLength)
	for i := 0; i < 5; i++ {
		if ch&0b10000 != 0 {
			mod.SendMark(symbolLength)
		} else {
			mod.SendSpace(symbolLength)
		}
		ch <<= 1
	}
	mod.SendMark(symbolLength + symbolLength/2)
}

// lookupBaudot finds the 5-bit code and column (0=LTRS, 1=FIGS) for an
// ASCII character, returning ok=false if it has no Baudot representation.
func lookupBaudot(ch byte) (code uint8, col int, ok bool) {
	for k := 0; k < 2; k++ {
		for b := 0; b < 32; b++ {
			if baudotToASCII[b][k] == ch {
				return uint8(b), k, true
			}
		}
	}
	return 0, 0, false
}

// Transmit sends msg as Baudot RTTY: four leading mark symbols so the
// receiver can see the first start-bit edge, a shift code whenever the
// required column changes, and a trailing shift back to LTRS if the
// message ended in FIGS mode.
func Transmit(mod fsk.Modulator, msg string, symbolLength time.Duration) {
	mod.SendMark(symbolLength)
	mod.SendMark(symbolLength)
	mod.SendMark(symbolLength)
	mod.SendMark(symbolLength)

	mode := ModeLTRS

	for i := 0; i < len(msg); i++ {
		ch := msg[i]
		switch ch {
		case '\n':
			sendChar(mod, symbolLength, 2)
			continue
		case ' ':
			sendChar(mod, symbolLength, 4)
			continue
		case '\r':
			sendChar(mod, symbolLength, 8)
			continue
		}

		code, col, ok := lookupBaudot(ch)
		if !ok {
			continue
		}
		if mode == ModeLTRS && col == 1 {
			sendChar(mod, symbolLength, FIGS)
			mode = ModeFIGS
		} else if mode == ModeFIGS && col == 0 {
			sendChar(mod, symbolLength, LTRS)
			mode = ModeLTRS
		}
		sendChar(mod, symbolLength, code)
	}

	if mode == ModeFIGS {
		sendChar(mod, symbolLength, LTRS)
	}
}
