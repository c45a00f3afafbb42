package gsm

import "testing"

func TestParametersPackUnpackRoundTrip(t *testing.T) {
	var p Parameters
	for i := range p.LARc {
		p.LARc[i] = uint8((i*7 + 3) & ((1 << larcBits[i]) - 1))
	}
	for j := range p.SubSegs {
		s := &p.SubSegs[j]
		s.Nc = uint8(40 + j*10)
		s.Bc = uint8(j % 4)
		s.Mc = uint8((j + 1) % 4)
		s.Xmaxc = uint8((j*11 + 5) & 0x3f)
		for i := range s.XMc {
			s.XMc[i] = uint8((i + j) & 0x7)
		}
	}

	packed := p.Pack()
	got := Unpack(packed[:])

	if !p.Equal(&got) {
		t.Fatalf("round trip mismatch: sent %+v, got %+v", p, got)
	}
}

func TestParametersPackedSize(t *testing.T) {
	var p Parameters
	packed := p.Pack()
	if len(packed) != PackedSize {
		t.Fatalf("PackedSize = %d, want %d", len(packed), PackedSize)
	}
}

func TestEncoderSilenceIsStable(t *testing.T) {
	enc := NewEncoder()
	var silence [SegmentSamples]int16

	first := enc.Encode(&silence)
	for i := 0; i < 3; i++ {
		next := enc.Encode(&silence)
		if !first.Equal(&next) {
			t.Fatalf("steady silent input produced different parameters on successive frames: %+v vs %+v", first, next)
		}
	}
}

func TestEncoderDeterministic(t *testing.T) {
	var seg [SegmentSamples]int16
	for k := range seg {
		seg[k] = int16((k%40)*100 - 2000)
	}

	e1 := NewEncoder()
	p1 := e1.Encode(&seg)

	e2 := NewEncoder()
	p2 := e2.Encode(&seg)

	if !p1.Equal(&p2) {
		t.Fatal("two freshly-constructed encoders given identical input produced different parameters")
	}
}

func TestResetReturnsEncoderToFreshState(t *testing.T) {
	var seg [SegmentSamples]int16
	for k := range seg {
		seg[k] = int16((k%53)*131 - 3000)
	}

	e := NewEncoder()
	e.Encode(&seg)
	e.Encode(&seg)
	e.Reset()
	afterReset := e.Encode(&seg)

	fresh := NewEncoder()
	wantFirst := fresh.Encode(&seg)

	if !afterReset.Equal(&wantFirst) {
		t.Fatal("Reset did not return encoder to its freshly-constructed state")
	}
}

func TestDecoderSubstitutesLastValidLagOnOutOfRangeNc(t *testing.T) {
	dec := NewDecoder()
	var params Parameters
	for j := range params.SubSegs {
		params.SubSegs[j].Nc = 60
		params.SubSegs[j].Bc = 1
	}
	dec.Decode(&params)

	// Corrupt one sub-segment's lag out of the valid [40,120] range; the
	// decoder must substitute nrp rather than index drp out of bounds.
	params.SubSegs[0].Nc = 200
	_ = dec.Decode(&params) // must not panic; reaching here is the assertion
}

func TestEncodeDecodeRoundTripStaysNearZeroOnSilence(t *testing.T) {
	enc := NewEncoder()
	dec := NewDecoder()

	var silence [SegmentSamples]int16
	for i := 0; i < 3; i++ {
		params := enc.Encode(&silence)
		out := dec.Decode(&params)
		for k, v := range out {
			if v < -4096 || v > 4096 {
				t.Fatalf("segment %d sample %d = %d, want small quantization noise around 0", i, k, v)
			}
		}
	}
}

func TestResetReturnsDecoderToFreshState(t *testing.T) {
	dec := NewDecoder()
	if dec.nrp != 40 {
		t.Fatalf("fresh decoder nrp = %d, want 40", dec.nrp)
	}

	var params Parameters
	for j := range params.SubSegs {
		params.SubSegs[j].Nc = 50
	}
	dec.Decode(&params)
	dec.Reset()

	if dec.nrp != 40 {
		t.Fatalf("after Reset, nrp = %d, want 40", dec.nrp)
	}
	if dec.drp != ([160]int16{}) {
		t.Fatal("after Reset, drp history was not cleared")
	}
}
