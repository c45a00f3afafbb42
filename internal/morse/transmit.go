package morse

import (
	"time"
	"unicode"

	"github.com/cwsl/radlib-go/internal/fsk"
)

// sendChar keys out one character's dot/dash pattern: a dot is one
// dotLength mark, a dash is three, and every element is followed by one
// dotLength of silence. The trailing two dotLengths bring the total gap
// after the character to three dotLengths, the standard inter-character
// space.
func sendChar(mod fsk.Modulator, pattern string, dotLength time.Duration) {
	for _, sym := range pattern {
		if sym == '.' {
			mod.SendMark(dotLength)
		} else {
			mod.SendMark(3 * dotLength)
		}
		mod.SendSilence(dotLength)
	}
	mod.SendSilence(2 * dotLength)
}

// SendChar keys a single uppercase letter, digit, or punctuation mark.
// Unrecognized characters are silently skipped.
func SendChar(mod fsk.Modulator, ch byte, dotLength time.Duration) {
	pattern, ok := patternFor(byte(unicode.ToUpper(rune(ch))))
	if !ok {
		return
	}
	sendChar(mod, pattern, dotLength)
}

// Send keys out msg as CW at the given dot length (a 50ms dot is 24 WPM
// at the PARIS standard). Space characters extend the preceding
// character's three-dotLength gap by four more, for the standard
// seven-dotLength word gap.
func Send(mod fsk.Modulator, msg string, dotLength time.Duration) {
	for i := 0; i < len(msg); i++ {
		ch := msg[i]
		if ch == ' ' {
			mod.SendSilence(4 * dotLength)
			continue
		}
		SendChar(mod, ch, dotLength)
	}
}
