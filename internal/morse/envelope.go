package morse

import "math"

// goertzelFilter implements the Goertzel algorithm for single-frequency
// magnitude detection over fixed-size blocks of samples.
type goertzelFilter struct {
	blockSize int

	coeff float64
	sin   float64
	cos   float64

	s1, s2 float64
	count  int
}

func newGoertzelFilter(sampleRate int, frequency float64, blockSize int) *goertzelFilter {
	g := &goertzelFilter{blockSize: blockSize}
	k := 0.5 + float64(blockSize)*frequency/float64(sampleRate)
	omega := 2.0 * math.Pi * k / float64(blockSize)
	g.coeff = 2.0 * math.Cos(omega)
	g.sin = math.Sin(omega)
	g.cos = math.Cos(omega)
	return g
}

func (g *goertzelFilter) processSample(sample float64) {
	s0 := sample + g.coeff*g.s1 - g.s2
	g.s2 = g.s1
	g.s1 = s0
	g.count++
}

func (g *goertzelFilter) blockComplete() bool {
	return g.count >= g.blockSize
}

// magnitudeSquared returns the filter's current magnitude squared,
// normalized by the number of samples accumulated, and resets the block.
func (g *goertzelFilter) magnitudeSquared() float64 {
	if g.count == 0 {
		return 0
	}
	real := g.s1*g.cos - g.s2
	imag := g.s1 * g.sin
	mag := (real*real + imag*imag) / float64(g.count*g.count)
	g.s1, g.s2, g.count = 0, 0, 0
	return mag
}

// envelopeDetector tracks the signal envelope of a CW tone using a
// Goertzel filter followed by asymmetric attack/decay averaging and the
// nonlinear auto-threshold processing used by KiwiSDR/UHSDR CW decoders.
type envelopeDetector struct {
	goertzel *goertzelFilter

	envelope     float64
	noise        float64
	attackWeight float64
	decayWeight  float64

	signalTau float64
	oldSignal float64
}

func newEnvelopeDetector(sampleRate int, centerFrequency, bandwidth float64) *envelopeDetector {
	const baseWeight = 32.0
	return &envelopeDetector{
		goertzel:     newGoertzelFilter(sampleRate, centerFrequency, 32),
		attackWeight: baseWeight / 4.0,
		decayWeight:  baseWeight * 16.0,
		signalTau:    0.1,
	}
}

func decayAvg(avg, input, weight float64) float64 {
	if weight <= 0 {
		return avg
	}
	return avg + (input-avg)/weight
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func (ed *envelopeDetector) processBlock() float64 {
	magSq := ed.goertzel.magnitudeSquared()

	var envWeight float64
	if magSq > ed.envelope {
		envWeight = ed.attackWeight
	} else {
		envWeight = ed.decayWeight
	}
	ed.envelope = decayAvg(ed.envelope, magSq, envWeight)

	var noiseWeight float64
	if magSq < ed.noise {
		noiseWeight = ed.attackWeight
	} else {
		noiseWeight = ed.decayWeight * 3.0
	}
	ed.noise = decayAvg(ed.noise, magSq, noiseWeight)

	clipped := clamp(ed.envelope, ed.noise, magSq)
	envToNoise := clipped - ed.noise
	v1 := envToNoise*envToNoise - 0.8*(envToNoise*envToNoise)

	sign := 1.0
	if v1 < 0 {
		sign = -1.0
	}
	v1 = math.Sqrt(math.Abs(v1)) * sign

	signal := v1*ed.signalTau + ed.oldSignal*(1.0-ed.signalTau)
	ed.oldSignal = v1
	return signal
}

// process feeds one sample to the Goertzel filter, returning the last
// computed envelope level (updated whenever a block completes).
func (ed *envelopeDetector) process(sample float64) float64 {
	ed.goertzel.processSample(sample)
	if ed.goertzel.blockComplete() {
		return ed.processBlock()
	}
	return ed.oldSignal
}

// snrEstimator estimates signal-to-noise ratio in dB over a sliding
// window, using a low percentile of recent envelope samples as the
// noise floor estimate.
type snrEstimator struct {
	samples []float64
	index   int
	filled  bool
}

func newSNREstimator(windowSize int) *snrEstimator {
	return &snrEstimator{samples: make([]float64, windowSize)}
}

func (se *snrEstimator) process(sample float64) float64 {
	se.samples[se.index] = sample
	se.index++
	if se.index >= len(se.samples) {
		se.index = 0
		se.filled = true
	}
	if !se.filled {
		return 0
	}

	noise := percentile(se.samples, 5)
	if noise < 1e-10 {
		noise = 1e-10
	}
	return 10.0 * math.Log10(sample/noise)
}

func percentile(data []float64, p float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	for i := 1; i < len(sorted); i++ {
		key := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > key {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = key
	}
	idx := int(float64(len(sorted)-1) * p / 100.0)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
