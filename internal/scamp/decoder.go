package scamp

import (
	"github.com/cwsl/radlib-go/internal/fsk"
	"github.com/cwsl/radlib-go/internal/q15"
)

// lockableClock is implemented by clock recovery loops that support
// suppressing phase correction once frame sync locks. ClockRecoveryDLL
// implements it; ClockRecoveryPLL free-runs regardless of sync state.
type lockableClock interface {
	SetLock(bool)
}

// Decoder layers SCAMP frame synchronization and Golay/Symbol6 decoding on
// top of an fsk.Demodulator's recovered bit stream.
type Decoder struct {
	Demod    *fsk.Demodulator
	Clock    fsk.ClockRecovery
	Listener fsk.Listener

	inDataSync     bool
	frameBitCount  int
	frameBitAcc    uint32
	lastCodeWord12 uint16
	haveLastCW12   bool
}

// NewDecoder wires a Decoder on top of demod: demod's listener is replaced
// with one that forwards pass-through events to listener and drives this
// Decoder's frame state machine from captured bits.
func NewDecoder(demod *fsk.Demodulator, clock fsk.ClockRecovery, listener fsk.Listener) *Decoder {
	d := &Decoder{Demod: demod, Clock: clock, Listener: listener}
	demod.SetClockRecovery(clock)
	demod.Listener = decoderShim{d: d}
	demod.OnCapturedSymbol(d.onCapturedSymbol)
	return d
}

// Reset clears frame synchronization (but not the underlying demodulator's
// frequency lock; call Demod.Reset separately for that).
func (d *Decoder) Reset() {
	d.inDataSync = false
	d.frameBitCount = 0
	d.frameBitAcc = 0
	d.haveLastCW12 = false
}

func (d *Decoder) onCapturedSymbol(symbol uint8, captured bool) {
	d.frameBitAcc = (d.frameBitAcc << 1) | uint32(symbol&1)

	syncCorr := abs(Correlate30(d.frameBitAcc, SyncFrame.Raw()))
	d.Listener.ReceivedBit(symbol == 1, d.frameBitCount, syncCorr)
	d.frameBitCount++

	if syncCorr > 28 {
		d.inDataSync = true
		d.frameBitCount = 0
		d.haveLastCW12 = false
		if lc, ok := d.Clock.(lockableClock); ok {
			lc.SetLock(true)
		}
		d.Listener.DataSyncAcquired()
		return
	}

	if d.frameBitCount == 30 {
		d.frameBitCount = 0
		if !d.inDataSync {
			return
		}

		frame := Frame30(d.frameBitAcc & Mask30LSB)

		var cw12 CodeWord12 // zero value is not valid
		if frame.IsValid() {
			cw12 = frame.ToCodeWord24().ToCodeWord12()
		}

		if !cw12.IsValid() {
			d.Listener.BadFrameReceived(frame.Raw())
		} else {
			d.Listener.GoodFrameReceived()
			if d.haveLastCW12 && cw12.Raw() == d.lastCodeWord12 {
				d.Listener.DiscardedDuplicate()
			} else {
				sym0, sym1 := cw12.Symbol0(), cw12.Symbol1()
				if sym0.ToASCII() != 0 {
					d.Listener.Received(uint8(sym0), sym0.ToASCII())
				}
				if sym1.ToASCII() != 0 {
					d.Listener.Received(uint8(sym1), sym1.ToASCII())
				}
			}
		}
		d.lastCodeWord12 = cw12.Raw()
		d.haveLastCW12 = true
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// decoderShim forwards the demodulator events that a Decoder doesn't
// itself need to intercept straight through to the user's listener, so
// callers only implement fsk.Listener once.
type decoderShim struct {
	d *Decoder
}

func (s decoderShim) FrequencyLocked(markHz, spaceHz float32) {
	s.d.Listener.FrequencyLocked(markHz, spaceHz)
}
func (s decoderShim) SymbolTransition() { s.d.Listener.SymbolTransition() }
func (s decoderShim) SampleMetrics(sample q15.Q15, activeSymbol uint8, present, captured bool, clockError float32, corr [2]float32, threshold, corrDiff float32) {
	s.d.Listener.SampleMetrics(sample, activeSymbol, present, captured, clockError, corr, threshold, corrDiff)
}
func (s decoderShim) ReceivedBit(bit bool, frameBitCount int, syncCorr int) {}
func (s decoderShim) DataSyncAcquired()                                    {}
func (s decoderShim) GoodFrameReceived()                                  {}
func (s decoderShim) BadFrameReceived(raw uint32)                         {}
func (s decoderShim) DiscardedDuplicate()                                 {}
func (s decoderShim) Received(sym6 uint8, ascii byte)                     {}
