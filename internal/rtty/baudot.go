// Package rtty implements a Baudot (ITA2) RTTY bit-stream decoder and
// transmit formatter, driven by an fsk demodulator/modulator.
package rtty

// LTRS and FIGS are the shift codes that switch the decode table column.
const (
	LTRS uint8 = 31
	FIGS uint8 = 27
)

// Mode selects which column of baudotToASCII is active.
type Mode int

const (
	ModeLTRS Mode = iota
	ModeFIGS
)

// baudotToASCII maps a 5-bit Baudot code to its LTRS/FIGS ASCII character;
// 0 means unassigned in that mode.
var baudotToASCII = [32][2]byte{
	{0, 0},
	{'E', '3'},
	{'\n', '\n'},
	{'A', '-'},
	{' ', ' '},
	{'S', 0x07},
	{'I', '8'},
	{'U', '7'},
	{'\r', '\r'},
	{'D', '$'},
	{'R', '4'},
	{'J', '\''},
	{'N', ','},
	{'F', '!'},
	{'C', ':'},
	{'K', '('},
	{'T', '5'},
	{'Z', '"'},
	{'L', ')'},
	{'W', '2'},
	{'H', '#'},
	{'Y', '6'},
	{'P', '0'},
	{'Q', '1'},
	{'O', '9'},
	{'B', '?'},
	{'G', '&'},
	{0, 0}, // FIGS shift
	{'M', '.'},
	{'X', '/'},
	{'V', ';'},
	{0, 0}, // LTRS shift
}
