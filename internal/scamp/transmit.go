package scamp

import (
	"time"

	"github.com/cwsl/radlib-go/internal/fsk"
)

// SymbolDuration is the SCAMP FSK symbol period: 33.3 symbols/second.
const SymbolDuration = time.Second * 3 / 100 // 30ms, 33.33 baud

// SendMessage transmits start-of-transmission framing, a sync frame, and
// then one Golay-coded, complement-framed Frame30 per pair of ASCII
// characters in s (the last character of an odd-length message is paired
// with a NUL).
func SendMessage(mod fsk.Modulator, s string) {
	StartFrame.Transmit(mod, SymbolDuration)
	SyncFrame.Transmit(mod, SymbolDuration)

	for i := 0; i < len(s); i += 2 {
		a := s[i]
		var b byte
		if i+1 < len(s) {
			b = s[i+1]
		}
		frame := FrameFromTwoASCIIChars(a, b)
		frame.Transmit(mod, SymbolDuration)
	}
}
