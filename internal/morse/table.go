// Package morse implements a Goertzel/envelope-based CW (Morse) receiver
// and an fsk.Modulator-driven transmit formatter.
package morse

// morseCodes maps an uppercase ASCII character to its dot/dash pattern.
// Prosigns are kept in the separate prosigns map below; where a prosign
// shares a pattern with a character (AR and '+'), the pattern decodes to
// the prosign.
var morseCodes = map[byte]string{
	'A': ".-",
	'B': "-...",
	'C': "-.-.",
	'D': "-..",
	'E': ".",
	'F': "..-.",
	'G': "--.",
	'H': "....",
	'I': "..",
	'J': ".---",
	'K': "-.-",
	'L': ".-..",
	'M': "--",
	'N': "-.",
	'O': "---",
	'P': ".--.",
	'Q': "--.-",
	'R': ".-.",
	'S': "...",
	'T': "-",
	'U': "..-",
	'V': "...-",
	'W': ".--",
	'X': "-..-",
	'Y': "-.--",
	'Z': "--..",
	'0': "-----",
	'1': ".----",
	'2': "..---",
	'3': "...--",
	'4': "....-",
	'5': ".....",
	'6': "-....",
	'7': "--...",
	'8': "---..",
	'9': "----.",
	'.': ".-.-.-",
	',': "--..--",
	'?': "..--..",
	'\'': ".----.",
	'!': "-.-.--",
	'/': "-..-.",
	'(': "-.--.",
	')': "-.--.-",
	'&': ".-...",
	':': "---...",
	';': "-.-.-.",
	'=': "-...-",
	'+': ".-.-.",
	'-': "-....-",
	'_': "..--.-",
	'"': ".-..-.",
	'$': "...-..-",
	'@': ".--.-.",
}

// prosigns are multi-character procedural signals sent as a single
// unbroken run of elements.
var prosigns = map[string]string{
	"AR": ".-.-.",
	"SK": "...-.-",
	"UR": "..-.-.",
	"SN": "...-.",
}

var patternToChar map[string]string
var charToPattern map[byte]string

func init() {
	patternToChar = make(map[string]string, len(morseCodes)+len(prosigns))
	charToPattern = make(map[byte]string, len(morseCodes))
	for ch, pattern := range morseCodes {
		patternToChar[pattern] = string(ch)
		charToPattern[ch] = pattern
	}
	for name, pattern := range prosigns {
		patternToChar[pattern] = name
	}
}

// decodeElements turns an accumulated dot/dash run into the text it
// represents, or "" if the pattern is unrecognized.
func decodeElements(elements string) string {
	return patternToChar[elements]
}

// patternFor returns the dot/dash pattern for an uppercase ASCII character.
func patternFor(ch byte) (string, bool) {
	p, ok := charToPattern[ch]
	return p, ok
}
