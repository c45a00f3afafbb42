package scamp

import "testing"

func TestGolayRoundTripNoErrors(t *testing.T) {
	for data := uint16(0); data < 0xFFF; data += 37 {
		encoded := GolayEncode24(data)
		decoded, ok := GolayDecode24(encoded)
		if !ok || decoded != data {
			t.Fatalf("data=%03x: got decoded=%03x ok=%v", data, decoded, ok)
		}
	}
}

func TestGolayCorrectsThreeBitErrors(t *testing.T) {
	data := uint16(0b100100100100)
	encoded := GolayEncode24(data)

	damaged := encoded ^ (1<<3 | 1<<9 | 1<<17)
	decoded, ok := GolayDecode24(damaged)
	if !ok {
		t.Fatal("expected 3-bit error to be correctable")
	}
	if decoded != data {
		t.Fatalf("expected %03x, got %03x", data, decoded)
	}
}

func TestCodeWord12RoundTrip(t *testing.T) {
	s0 := SymbolFromASCII('D')
	s1 := SymbolFromASCII('E')
	cw12 := NewCodeWord12FromSymbols(s0, s1)
	cw24 := NewCodeWord24FromCodeWord12(cw12)
	back := cw24.ToCodeWord12()

	if !back.IsValid() {
		t.Fatal("expected valid round trip")
	}
	if back.Raw() != cw12.Raw() {
		t.Fatalf("expected %03x, got %03x", cw12.Raw(), back.Raw())
	}
	if back.Symbol0().ToASCII() != 'D' || back.Symbol1().ToASCII() != 'E' {
		t.Fatalf("expected D/E, got %c/%c", back.Symbol0().ToASCII(), back.Symbol1().ToASCII())
	}
}

func TestSymbol6ASCIIMapping(t *testing.T) {
	if SymbolFromASCII('D') != 0x21 {
		t.Fatalf("expected 0x21, got %#x", SymbolFromASCII('D'))
	}
	if SymbolFromASCII('E') != 0x22 {
		t.Fatalf("expected 0x22, got %#x", SymbolFromASCII('E'))
	}
	if Symbol6(0x21).ToASCII() != 'D' {
		t.Fatalf("expected D, got %c", Symbol6(0x21).ToASCII())
	}
}

func TestFrameFromZeroCodeWord24(t *testing.T) {
	frame := FrameFromCodeWord24(CodeWord24(0))
	const expected = uint32(0b100001000010000100001000010000)
	if frame.Raw() != expected {
		t.Fatalf("expected %#b, got %#b", expected, frame.Raw())
	}
}

func TestFrameComplimentCountForValidFrame(t *testing.T) {
	s0 := SymbolFromASCII('D')
	s1 := SymbolFromASCII('E')
	cw12 := NewCodeWord12FromSymbols(s0, s1)
	cw24 := NewCodeWord24FromCodeWord12(cw12)
	frame := FrameFromCodeWord24(cw24)

	if frame.ComplimentCount() != 6 {
		t.Fatalf("expected 6 compliments, got %d", frame.ComplimentCount())
	}
	if !frame.IsValid() {
		t.Fatal("expected frame to be valid")
	}
}

func TestFrameRoundTripToCodeWord24(t *testing.T) {
	s0 := SymbolFromASCII('H')
	s1 := SymbolFromASCII('I')
	cw12 := NewCodeWord12FromSymbols(s0, s1)
	cw24 := NewCodeWord24FromCodeWord12(cw12)
	frame := FrameFromCodeWord24(cw24)

	back := frame.ToCodeWord24()
	if back.Raw() != cw24.Raw() {
		t.Fatalf("expected %#x, got %#x", cw24.Raw(), back.Raw())
	}
}

func TestCorrelate30IdenticalIsMax(t *testing.T) {
	if got := Correlate30(SyncFrame.Raw(), SyncFrame.Raw()); got != 30 {
		t.Fatalf("expected self-correlation of 30, got %d", got)
	}
}
