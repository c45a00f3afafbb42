package fsk

import (
	"math"
	"testing"
	"time"

	"github.com/cwsl/radlib-go/internal/q15"
)

func TestClockRecoveryDLLLocksOnAlternatingSymbols(t *testing.T) {
	cr := NewClockRecoveryDLL(2000)
	cr.SetClockFrequency(33)

	symbol := uint8(0)
	samplesPerBit := 2000 / 33
	captures := 0
	for i := 0; i < samplesPerBit*200; i++ {
		if i%samplesPerBit == 0 {
			if symbol == 0 {
				symbol = 1
			} else {
				symbol = 0
			}
		}
		if cr.ProcessSample(symbol) {
			captures++
		}
	}
	if captures == 0 {
		t.Fatal("expected at least one capture over 200 simulated bit periods")
	}
}

func TestClockRecoveryPLLTracksBitFrequency(t *testing.T) {
	cr := NewClockRecoveryPLL(2000)
	cr.SetBitFrequencyHint(33)

	symbol := uint8(0)
	samplesPerBit := 2000 / 33
	captures := 0
	for i := 0; i < samplesPerBit*200; i++ {
		if i%samplesPerBit == 0 {
			if symbol == 0 {
				symbol = 1
			} else {
				symbol = 0
			}
		}
		if cr.ProcessSample(symbol) {
			captures++
		}
	}
	if captures == 0 {
		t.Fatal("expected at least one capture over 200 simulated bit periods")
	}
}

func TestDemodulatorLocksOntoSyntheticTone(t *testing.T) {
	const sampleFreq = 2000
	d := NewDemodulator(sampleFreq, 100, 9) // fftN = 512

	locked := false
	d.Listener = lockListener{onLock: func(mark, space float32) { locked = true }}

	const markHz = 200.0
	const spaceHz = 133.3333333

	samples := make([]q15.Q15, sampleFreq*2)
	for i := range samples {
		t := float64(i) / float64(sampleFreq)
		// Steady mark tone is enough to trip the lock logic: a dominant
		// bin that repeats across the rolling history window.
		v := 0.4 * math.Sin(2*math.Pi*markHz*t)
		samples[i] = q15.FromFloat32(float32(v))
	}
	_ = spaceHz

	for _, s := range samples {
		d.ProcessSample(s)
	}

	if !locked {
		t.Fatal("expected frequency lock on a steady dominant tone")
	}
}

type lockListener struct {
	NullListener
	onLock func(mark, space float32)
}

func (l lockListener) FrequencyLocked(mark, space float32) {
	l.onLock(mark, space)
}

func TestBufferModulatorRecordsEvents(t *testing.T) {
	m := &BufferModulator{}
	m.SendMark(10 * time.Millisecond)
	m.SendSpace(20 * time.Millisecond)
	m.SendSilence(5 * time.Millisecond)

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 recorded events, got %d", len(m.Events))
	}
	if got := m.TotalDuration(); got != 35*time.Millisecond {
		t.Fatalf("expected total duration 35ms, got %v", got)
	}
}
