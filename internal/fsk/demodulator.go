// Package fsk implements a software FSK demodulator/modulator pair:
// circular-buffer frequency acquisition by block FFT, quadrature
// matched-filter symbol detection, and bit clock recovery, plus the tone
// generation side used to transmit.
package fsk

import (
	"math"

	"github.com/cwsl/radlib-go/internal/q15"
)

// Listener receives demodulator events in the order they occur within a
// single ProcessSample call: FrequencyLocked (at most once per Reset),
// then SampleMetrics/SymbolTransition for the active sample, then
// ReceivedBit, then either DataSyncAcquired, or for a completed frame
// BadFrame, or GoodFrame followed by DiscardedDuplicate or by Received
// (possibly twice, for a two-symbol code word).
type Listener interface {
	FrequencyLocked(markHz, spaceHz float32)
	SymbolTransition()
	SampleMetrics(sample q15.Q15, activeSymbol uint8, present, captured bool, clockError float32, corr [2]float32, threshold, corrDiff float32)
	ReceivedBit(bit bool, frameBitCount int, syncCorr int)
	DataSyncAcquired()
	GoodFrameReceived()
	BadFrameReceived(raw uint32)
	DiscardedDuplicate()
	Received(sym6 uint8, ascii byte)
}

// NullListener implements Listener with no-ops, embeddable by callers that
// only care about some of the events.
type NullListener struct{}

func (NullListener) FrequencyLocked(markHz, spaceHz float32) {}
func (NullListener) SymbolTransition()                       {}
func (NullListener) SampleMetrics(sample q15.Q15, activeSymbol uint8, present, captured bool, clockError float32, corr [2]float32, threshold, corrDiff float32) {
}
func (NullListener) ReceivedBit(bit bool, frameBitCount int, syncCorr int) {}
func (NullListener) DataSyncAcquired()                                    {}
func (NullListener) GoodFrameReceived()                                  {}
func (NullListener) BadFrameReceived(raw uint32)                         {}
func (NullListener) DiscardedDuplicate()                                 {}
func (NullListener) Received(sym6 uint8, ascii byte)                     {}

const symbolCount = 2
const demodulatorToneN = 16

// symbolFIRTaps/symbolFIRCutoffHz size the low-pass filter that smooths
// each symbol's matched-filter correlation history before edge detection
// and presence gating, per the 47-tap Blackman/33Hz cutoff design.
const symbolFIRTaps = 47
const symbolFIRCutoffHz = 33.0

// Demodulator runs frequency acquisition and quadrature matched-filter
// symbol detection over a stream of samples. It does not know about any
// particular frame protocol: a protocol decoder such as scamp.Decoder plugs
// a frame-synchronization state machine in on top of the two-symbol stream
// this produces.
type Demodulator struct {
	sampleFreq uint16
	fftN       uint16
	log2fftN   uint16
	firstBin   uint16

	fftWindow []q15.Q15
	fftResult []q15.Complex
	fft       *q15.FFT

	blockSize      uint16
	samplesPerSymbol uint16
	longMarkBlocks   uint16

	symbolSpreadHz float32

	sampleCount uint32
	bufferPtr   uint16
	buffer      []q15.Q15

	lastDCPower float32

	maxBinHistorySize uint16
	maxBinHistory     []uint16
	binPowerThreshold float32

	frequencyLocked bool
	lockedBinMark   uint16
	blockCount      uint16
	activeSymbol    uint8

	demodulatorTone    [symbolCount][demodulatorToneN]q15.Complex
	symbolCorr         [symbolCount]float32
	filteredSymbolCorr [symbolCount]float32

	symbolCorrHistorySize uint16
	symbolCorrHistoryPtr  uint16
	symbolCorrHistory     [symbolCount][]float32
	symbolFIR             [symbolCount]*q15.FIRFilter

	detectionCorrelationThreshold float32

	edgeRiseSampleCounter uint16
	lastCorrDiff          float32
	edgeRiseSampleLimit   uint16

	onSymbol       func(symbol uint8, captured bool)
	onSymbolSample func(present bool, activeSymbol uint8)
	clock          ClockRecovery

	Listener Listener
}

// NewDemodulator returns a Demodulator sampling at sampleFreq Hz, ignoring
// spectral content below lowestFreq, and running a 1<<log2fftN-point FFT
// for frequency acquisition.
func NewDemodulator(sampleFreq, lowestFreq uint16, log2fftN uint16) *Demodulator {
	fftN := uint16(1) << log2fftN
	d := &Demodulator{
		sampleFreq:       sampleFreq,
		fftN:             fftN,
		log2fftN:         log2fftN,
		firstBin:         (fftN * lowestFreq) / sampleFreq,
		fft:              q15.NewFFT(fftN),
		blockSize:        32,
		samplesPerSymbol: 60,
		symbolSpreadHz:   66.6666666666,
		buffer:           make([]q15.Q15, fftN),
		fftResult:        make([]q15.Complex, fftN),
		fftWindow:        make([]q15.Q15, fftN),

		maxBinHistorySize: 64,
		binPowerThreshold: 5.0e-4,

		symbolCorrHistorySize: 64,
		edgeRiseSampleLimit:   2,

		Listener: NullListener{},
	}
	d.maxBinHistory = make([]uint16, d.maxBinHistorySize)

	lowPassTaps := q15.BlackmanLowPassTaps(symbolFIRTaps, symbolFIRCutoffHz, float64(sampleFreq))
	for s := 0; s < symbolCount; s++ {
		d.symbolCorrHistory[s] = make([]float32, d.symbolCorrHistorySize)
		d.symbolFIR[s] = q15.NewFIRFilter(lowPassTaps)
	}

	blockDuration := float32(d.blockSize) / float32(sampleFreq)
	symbolDuration := float32(d.samplesPerSymbol) / float32(sampleFreq)
	longMarkDuration := 24.0 * symbolDuration
	d.longMarkBlocks = uint16(float32(longMarkDuration/blockDuration) * 0.70)

	for i := range d.fftWindow {
		d.fftWindow[i] = q15.FromFloat32(float32(0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(fftN)))))
	}

	return d
}

// SetClockRecovery attaches a bit clock recovery loop; without one, no bits
// are ever captured.
func (d *Demodulator) SetClockRecovery(cr ClockRecovery) {
	d.clock = cr
}

// SetSymbolSpread sets the mark/space tone separation in Hertz, used when
// synthesizing the quadrature matched filter at lock time.
func (d *Demodulator) SetSymbolSpread(spreadHz float32) {
	d.symbolSpreadHz = spreadHz
}

// Reset clears frequency lock, the bin and correlation histories, the
// matched-filter FIR state and the active symbol; the sample buffer is
// kept. Frame synchronization in a downstream decoder is not touched
// (scamp.Decoder has its own Reset).
func (d *Demodulator) Reset() {
	d.frequencyLocked = false
	d.edgeRiseSampleCounter = 0
	d.blockCount = 0
	d.activeSymbol = 0
	d.lastCorrDiff = 0
	d.symbolCorrHistoryPtr = 0
	clear(d.maxBinHistory)
	lowPassTaps := q15.BlackmanLowPassTaps(symbolFIRTaps, symbolFIRCutoffHz, float64(d.sampleFreq))
	for s := 0; s < symbolCount; s++ {
		clear(d.symbolCorrHistory[s])
		d.symbolFIR[s] = q15.NewFIRFilter(lowPassTaps)
	}
}

// IsFrequencyLocked reports whether the demodulator has locked onto a
// mark/space tone pair.
func (d *Demodulator) IsFrequencyLocked() bool { return d.frequencyLocked }

// MarkFreq returns the locked mark frequency in Hertz (valid only once
// IsFrequencyLocked is true).
func (d *Demodulator) MarkFreq() uint16 {
	return (d.lockedBinMark * d.sampleFreq) / d.fftN
}

// LastDCPower returns the DC bin's squared magnitude from the most recent
// FFT block, for diagnostics.
func (d *Demodulator) LastDCPower() float32 { return d.lastDCPower }

// ProcessSample advances the demodulator by one input sample. Call at
// exactly sampleFreq Hz.
func (d *Demodulator) ProcessSample(sample q15.Q15) {
	d.buffer[d.bufferPtr] = sample
	readBufferPtr := d.bufferPtr
	d.bufferPtr = (d.bufferPtr + 1) % d.fftN
	d.sampleCount++

	if d.bufferPtr%d.blockSize == 0 {
		d.blockCount++
		d.runBlockFFT(readBufferPtr)
	}

	if d.frequencyLocked {
		d.demodulateSample(sample, readBufferPtr)
	}
}

func (d *Demodulator) runBlockFFT(readBufferPtr uint16) {
	avg := q15.MeanQ15(d.buffer, uint(d.log2fftN))

	for i := uint16(0); i < d.fftN; i++ {
		v := q15.Sub(d.buffer[q15.WrapIndex(readBufferPtr, i, d.fftN)], avg)
		d.fftResult[i] = q15.Complex{R: q15.Mult(v, d.fftWindow[i]), I: 0}
	}
	d.fft.Transform(d.fftResult)

	maxBin := q15.MaxIdxApprox(d.fftResult[:d.fftN/2], int(d.firstBin))
	d.lastDCPower = d.fftResult[0].MagF32Squared()

	if d.frequencyLocked {
		return
	}

	var totalPower float32
	half := d.fftN / 2
	for i := d.firstBin; i < half; i++ {
		totalPower += d.fftResult[i].MagF32Squared()
	}
	maxBinPower := d.fftResult[maxBin].MagF32Squared()
	if maxBin > 1 {
		maxBinPower += d.fftResult[maxBin-1].MagF32Squared()
	}
	if maxBin < half-1 {
		maxBinPower += d.fftResult[maxBin+1].MagF32Squared()
	}
	maxBinPowerFract := maxBinPower / totalPower

	copy(d.maxBinHistory, d.maxBinHistory[1:])
	d.maxBinHistory[d.maxBinHistorySize-1] = maxBin

	var binHistoryStart, binHistoryLength uint16
	if d.longMarkBlocks > d.maxBinHistorySize {
		binHistoryStart = 0
		binHistoryLength = d.maxBinHistorySize
	} else {
		binHistoryStart = d.maxBinHistorySize - d.longMarkBlocks
		binHistoryLength = d.longMarkBlocks
	}

	if d.blockCount < binHistoryLength {
		return
	}

	var hitCount uint16
	for i := binHistoryStart; i < d.maxBinHistorySize; i++ {
		if d.maxBinHistory[i] >= maxBin-1 && d.maxBinHistory[i] <= maxBin+1 {
			hitCount++
		}
	}
	hitPct := float32(hitCount) / float32(binHistoryLength)

	if maxBinPower > d.binPowerThreshold && hitPct > 0.75 && maxBinPowerFract > 0.20 {
		d.frequencyLocked = true
		d.lockedBinMark = maxBin

		lockedMarkHz := float32(d.lockedBinMark) * float32(d.sampleFreq) / float32(d.fftN)
		lockedSpaceHz := lockedMarkHz - d.symbolSpreadHz

		q15.MakeComplexToneQ15(d.demodulatorTone[0][:], float64(d.sampleFreq), float64(lockedSpaceHz), 0.5, 0)
		q15.MakeComplexToneQ15(d.demodulatorTone[1][:], float64(d.sampleFreq), float64(lockedMarkHz), 0.5, 0)

		d.Listener.FrequencyLocked(lockedMarkHz, lockedSpaceHz)
	}
}

// demodulateSample implements the post-lock matched-filter symbol
// detection of §4.7: correlate against both reference tones, smooth each
// symbol's correlation history through the 47-tap Blackman low-pass FIR,
// declare a transition when the filtered difference first turns positive,
// and flag presence when the active symbol's filtered correlation clears
// the adaptive detection threshold.
func (d *Demodulator) demodulateSample(sample q15.Q15, readBufferPtr uint16) {
	var demodulatorStart uint16
	if readBufferPtr >= demodulatorToneN {
		demodulatorStart = readBufferPtr - demodulatorToneN
	} else {
		gap := uint16(demodulatorToneN) - readBufferPtr
		demodulatorStart = d.fftN - gap
	}

	for s := 0; s < symbolCount; s++ {
		d.symbolCorr[s] = q15.CorrRealComplex(d.buffer, int(demodulatorStart), int(d.fftN), d.demodulatorTone[s][:])
		d.symbolCorrHistory[s][d.symbolCorrHistoryPtr] = d.symbolCorr[s]
		d.filteredSymbolCorr[s] = d.symbolFIR[s].Push(d.symbolCorr[s])
	}
	d.symbolCorrHistoryPtr = q15.IncAndWrap(d.symbolCorrHistoryPtr, d.symbolCorrHistorySize)

	var sumHist float32
	for s := 0; s < symbolCount; s++ {
		for _, v := range d.symbolCorrHistory[s] {
			sumHist += v
		}
	}
	d.detectionCorrelationThreshold = sumHist / (3.0 * float32(symbolCount) * float32(d.symbolCorrHistorySize))

	var corrDiff float32
	if d.activeSymbol == 0 {
		corrDiff = d.filteredSymbolCorr[1] - d.filteredSymbolCorr[0]
	} else {
		corrDiff = d.filteredSymbolCorr[0] - d.filteredSymbolCorr[1]
	}

	if corrDiff > 0 {
		if corrDiff > d.lastCorrDiff && d.edgeRiseSampleCounter < d.edgeRiseSampleLimit {
			d.edgeRiseSampleCounter++
		} else {
			if d.activeSymbol == 0 {
				d.activeSymbol = 1
			} else {
				d.activeSymbol = 0
			}
			d.edgeRiseSampleCounter = 0
			d.Listener.SymbolTransition()
		}
	}
	d.lastCorrDiff = corrDiff

	present := d.filteredSymbolCorr[d.activeSymbol] > d.detectionCorrelationThreshold

	var capture bool
	var clockError float32
	if d.clock != nil {
		capture = d.clock.ProcessSample(d.activeSymbol)
		clockError = d.clock.LastPhaseError()
	}

	d.Listener.SampleMetrics(sample, d.activeSymbol, present, capture, clockError,
		[2]float32{d.filteredSymbolCorr[0], d.filteredSymbolCorr[1]}, d.detectionCorrelationThreshold, corrDiff)

	if d.onSymbolSample != nil {
		d.onSymbolSample(present, d.activeSymbol)
	}
	if capture && d.onSymbol != nil {
		d.onSymbol(d.activeSymbol, capture)
	}
}

// OnCapturedSymbol registers the callback invoked whenever the attached
// ClockRecovery reports a capture; used by frame-synchronized protocol
// decoders built on top (e.g. scamp.Decoder) to receive the recovered bit
// stream one bit per symbol period.
func (d *Demodulator) OnCapturedSymbol(fn func(symbol uint8, captured bool)) {
	d.onSymbol = fn
}

// OnSymbol registers the callback invoked on every locked sample with the
// §4.7 matched-filter presence decision and the active symbol; used by
// protocol decoders that run their own sample-rate state machine rather
// than relying on bit-clock recovery (e.g. rtty.Decoder).
func (d *Demodulator) OnSymbol(fn func(present bool, activeSymbol uint8)) {
	d.onSymbolSample = fn
}
