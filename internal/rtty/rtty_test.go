package rtty

import (
	"testing"
	"time"

	"github.com/cwsl/radlib-go/internal/fsk"
)

type captureListener struct {
	got []byte
}

func (c *captureListener) Received(ch byte) { c.got = append(c.got, ch) }

// TestTransmitDecodeRoundTrip drives a Transmit call's recorded mark/space
// events straight into a Decoder sample-by-sample, simulating an ideal
// (noiseless) channel.
func TestTransmitDecodeRoundTrip(t *testing.T) {
	const sampleRate = 2000
	const baudRateTimes100 = 4545 // 45.45 baud

	mod := &fsk.BufferModulator{}
	Transmit(mod, "HI", 22*time.Millisecond)

	listener := &captureListener{}
	dec := NewDecoder(sampleRate, baudRateTimes100, 2, listener)

	samplesPerSymbol := int((100 * sampleRate) / baudRateTimes100)
	for _, ev := range mod.Events {
		symbol := uint8(0)
		if ev.Kind == fsk.EventMark {
			symbol = 1
		} else if ev.Kind == fsk.EventSilence {
			continue
		}
		samples := int(ev.Duration/time.Millisecond) * sampleRate / 1000
		if samples == 0 {
			samples = samplesPerSymbol
		}
		for i := 0; i < samples; i++ {
			dec.ProcessSample(symbol, true)
		}
	}

	if got := string(listener.got); got != "HI" {
		t.Fatalf("decoded %q, want %q", got, "HI")
	}
}

func TestLookupBaudotKnownChars(t *testing.T) {
	code, col, ok := lookupBaudot('H')
	if !ok || col != 0 {
		t.Fatalf("expected LTRS column for H, got code=%d col=%d ok=%v", code, col, ok)
	}
	code, col, ok = lookupBaudot('?')
	if !ok || col != 1 {
		t.Fatalf("expected FIGS column for ?, got code=%d col=%d ok=%v", code, col, ok)
	}
}

func TestDecoderShiftCodesAreSilent(t *testing.T) {
	listener := &captureListener{}
	dec := NewDecoder(2000, 4545, 2, listener)
	dec.symbolAcc = LTRS
	dec.completeCharacter()
	if len(listener.got) != 0 {
		t.Fatalf("expected shift code to emit nothing, got %v", listener.got)
	}
	if dec.mode != ModeLTRS {
		t.Fatal("expected mode to remain LTRS")
	}
}
