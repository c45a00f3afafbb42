package fsk

// ClockRecovery recovers a bit clock from a stream of demodulated symbols.
// Implementations are driven at the sample rate: call ProcessSample with
// each new symbol observation, and capture the symbol as a data bit whenever
// it reports true.
type ClockRecovery interface {
	ProcessSample(symbol uint8) (capture bool)
	ClockFrequency() uint32
	SamplesSinceEdge() uint16
	LastPhaseError() float32
}

// ClockRecoveryDLL is a delay-locked-loop bit clock recovery implementation.
// The phase accumulator wraps at maxPhi; an edge in the symbol stream nudges
// the phase halfway toward the target (mid-bit) phase, and a capture fires
// whenever the free-running accumulator would wrap past maxPhi.
type ClockRecoveryDLL struct {
	sampleRate uint16

	locked bool

	omega uint16
	phi   int16
	lastPhi int16

	samplesSinceEdge uint16
	lastError        int16
	lastSymbol       uint8
	errorIntegration int32
}

const (
	dllMaxPhi    int16 = 0x7fff
	dllTargetPhi int16 = dllMaxPhi >> 1
)

// NewClockRecoveryDLL returns a DLL clock recovery tracking a bit clock on a
// sampleRate Hz sampled input. Call SetClockFrequency to set the expected
// data rate before use.
func NewClockRecoveryDLL(sampleRate uint16) *ClockRecoveryDLL {
	return &ClockRecoveryDLL{sampleRate: sampleRate}
}

// SetClockFrequency sets the expected data clock frequency in Hertz.
func (d *ClockRecoveryDLL) SetClockFrequency(dataFreqHz uint16) {
	y := uint32(d.sampleRate) / uint32(dataFreqHz)
	d.omega = uint16(uint32(dllMaxPhi) / y)
}

// SetLock controls whether phase correction is suppressed once the caller
// believes the loop has acquired frame sync.
func (d *ClockRecoveryDLL) SetLock(locked bool) {
	d.locked = locked
}

// ProcessSample implements ClockRecovery.
func (d *ClockRecoveryDLL) ProcessSample(symbol uint8) bool {
	if d.lastSymbol != symbol {
		d.edgeDetected()
		d.lastSymbol = symbol
	}
	d.samplesSinceEdge++
	capture := int32(d.phi)+int32(d.omega) > int32(dllMaxPhi)
	d.phi = (d.phi + int16(d.omega)) & 0x7fff
	d.lastPhi = d.phi
	return capture
}

func (d *ClockRecoveryDLL) edgeDetected() {
	// Error is positive if the accumulator is ahead of the target phase.
	errVal := d.phi - dllTargetPhi
	d.lastError = errVal
	d.errorIntegration += int32(errVal)

	if !d.locked {
		adj := errVal >> 1
		d.phi -= adj
	}
	d.samplesSinceEdge = 0
}

// LastError returns the raw Q15-scale phase error observed at the last edge.
func (d *ClockRecoveryDLL) LastError() int16 { return d.lastError }

// LastPhaseError implements ClockRecovery, normalized to [-1,1].
func (d *ClockRecoveryDLL) LastPhaseError() float32 {
	return float32(d.lastError) / float32(dllMaxPhi)
}

// ClockFrequency implements ClockRecovery.
func (d *ClockRecoveryDLL) ClockFrequency() uint32 {
	return (uint32(d.omega) * uint32(d.sampleRate)) / uint32(dllMaxPhi)
}

// SamplesSinceEdge implements ClockRecovery.
func (d *ClockRecoveryDLL) SamplesSinceEdge() uint16 { return d.samplesSinceEdge }

// ClockRecoveryPLL is a PI-controller bit clock recovery implementation. It
// free-runs the phase accumulator every sample and only adjusts its rate
// (omega) on symbol edges, where ClockRecoveryDLL adjusts its phase.
type ClockRecoveryPLL struct {
	idle       bool
	sampleRate uint16

	integration int32
	omega       int16
	phi         uint16
	targetPhi   uint16
	offset      int16

	lastError  int32
	lastPhi    uint16
	lastSymbol uint8

	samplesSinceEdge uint16
}

const (
	pllKp = 7
	pllKi = 10
)

// NewClockRecoveryPLL returns a PLL clock recovery tracking a bit clock on a
// sampleRate Hz sampled input, defaulting to a 60-samples-per-bit hint
// (33Hz, SCAMP, at a 2kHz sample rate).
func NewClockRecoveryPLL(sampleRate uint16) *ClockRecoveryPLL {
	p := &ClockRecoveryPLL{
		idle:       true,
		sampleRate: sampleRate,
		targetPhi:  uint16(1 << 14), // 1/4 of the uint16 range
		offset:     int16(uint32(1<<16) / 60),
	}
	return p
}

// SetBitFrequencyHint sets the approximate expected bit frequency in Hertz,
// improving lock speed.
func (p *ClockRecoveryPLL) SetBitFrequencyHint(hz uint16) {
	samplesPerBit := p.sampleRate / hz
	p.offset = int16(uint32(1<<16) / uint32(samplesPerBit))
}

// ProcessSample implements ClockRecovery.
func (p *ClockRecoveryPLL) ProcessSample(symbol uint8) bool {
	if p.lastSymbol != symbol {
		p.lastSymbol = symbol
		p.samplesSinceEdge = 0
		if p.idle {
			p.phi = p.targetPhi
			p.idle = false
		}
		p.lastError = int32(p.targetPhi) - int32(p.phi)
		p.integration += p.lastError
		p.omega = int16(p.lastError>>pllKp) + int16(p.integration>>pllKi)
	}

	p.phi += uint16(p.omega)
	p.phi += uint16(p.offset)
	p.samplesSinceEdge++

	phi180 := (p.phi&0x8000 != 0) && (p.lastPhi&0x8000 == 0)
	p.lastPhi = p.phi
	return phi180
}

// Integration returns the accumulated PI-loop error integral.
func (p *ClockRecoveryPLL) Integration() int32 { return p.integration }

// LastError returns the raw phase error observed at the last edge.
func (p *ClockRecoveryPLL) LastError() int32 { return p.lastError }

// LastPhaseError implements ClockRecovery, normalizing the PI loop's raw
// phi-domain error into [-1,1] by the full phase accumulator range.
func (p *ClockRecoveryPLL) LastPhaseError() float32 {
	return float32(p.lastError) / float32(1<<16)
}

// ClockFrequency implements ClockRecovery.
func (p *ClockRecoveryPLL) ClockFrequency() uint32 {
	return (uint32(p.sampleRate) * uint32(int32(p.omega)+int32(p.offset))) >> 16
}

// SamplesSinceEdge implements ClockRecovery.
func (p *ClockRecoveryPLL) SamplesSinceEdge() uint16 { return p.samplesSinceEdge }
