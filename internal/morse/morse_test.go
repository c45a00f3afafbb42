package morse

import (
	"math"
	"testing"
	"time"

	"github.com/cwsl/radlib-go/internal/fsk"
)

type captureListener struct {
	got []byte
}

func (c *captureListener) Received(ch byte) { c.got = append(c.got, ch) }

func TestPatternForKnownChars(t *testing.T) {
	if p, ok := patternFor('S'); !ok || p != "..." {
		t.Fatalf("expected S -> ..., got %q ok=%v", p, ok)
	}
	if p, ok := patternFor('O'); !ok || p != "---" {
		t.Fatalf("expected O -> ---, got %q ok=%v", p, ok)
	}
}

func TestDecodeElementsRoundTrip(t *testing.T) {
	for ch, pattern := range morseCodes {
		want := string(ch)
		for name, p := range prosigns {
			if p == pattern {
				want = name // a prosign's pattern decodes to the prosign
			}
		}
		if got := decodeElements(pattern); got != want {
			t.Fatalf("decodeElements(%q) = %q, want %q", pattern, got, want)
		}
	}
}

func TestSendChar(t *testing.T) {
	mod := &fsk.BufferModulator{}
	SendChar(mod, 'S', 10*time.Millisecond)

	// S = "...": three dots, each a mark followed by a silence, plus a
	// trailing two-dotLength silence to reach the three-dotLength gap.
	if len(mod.Events) != 7 {
		t.Fatalf("expected 7 events for S, got %d: %+v", len(mod.Events), mod.Events)
	}
	for i := 0; i < 3; i++ {
		mark := mod.Events[i*2]
		silence := mod.Events[i*2+1]
		if mark.Kind != fsk.EventMark || mark.Duration != 10*time.Millisecond {
			t.Fatalf("element %d: expected 10ms mark, got %+v", i, mark)
		}
		if silence.Kind != fsk.EventSilence || silence.Duration != 10*time.Millisecond {
			t.Fatalf("element %d: expected 10ms silence, got %+v", i, silence)
		}
	}
	last := mod.Events[6]
	if last.Kind != fsk.EventSilence || last.Duration != 20*time.Millisecond {
		t.Fatalf("expected trailing 20ms silence, got %+v", last)
	}
}

func TestSendWordGap(t *testing.T) {
	mod := &fsk.BufferModulator{}
	Send(mod, "E E", 10*time.Millisecond)

	// E = "." -> mark, silence, then 2*dot trailing gap (3 events), then
	// a 4*dot silence for the space, then E again.
	total := mod.TotalDuration()
	wantPerE := 10*time.Millisecond + 10*time.Millisecond + 20*time.Millisecond
	want := wantPerE + 40*time.Millisecond + wantPerE
	if total != want {
		t.Fatalf("total duration = %v, want %v", total, want)
	}
}

// TestReceiverDecodesSyntheticTone drives a synthesized on/off keyed tone
// straight into a Receiver and checks it recovers the keyed character.
func TestReceiverDecodesSyntheticTone(t *testing.T) {
	const sampleRate = 8000
	const freq = 700.0
	const wpm = 20.0
	dotSeconds := 1.2 / wpm

	listener := &captureListener{}
	rx := NewReceiver(sampleRate, freq, 100, 10, 40, 6.0, listener)

	genTone := func(seconds float64, on bool) {
		n := int(seconds * sampleRate)
		for i := 0; i < n; i++ {
			var s float64
			if on {
				s = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
			}
			rx.ProcessSample(s)
		}
	}

	// "S" = "...", three dots with inter-element spacing, then a long
	// tail of silence to flush the character via the word-separator path.
	for i := 0; i < 3; i++ {
		genTone(dotSeconds, true)
		genTone(dotSeconds, false)
	}
	genTone(dotSeconds*8, false)

	if len(listener.got) == 0 {
		t.Fatal("expected at least one decoded character")
	}
}
