package morse

// Listener receives decoded Morse characters. Prosigns (AR, SK, UR, SN)
// are delivered one byte at a time.
type Listener interface {
	Received(ch byte)
}

type keyState int

const (
	keyUp keyState = iota
	keyDown
)

// timeSpec holds the timing thresholds, in seconds, that classify mark
// and space durations at the receiver's current WPM estimate.
type timeSpec struct {
	dotShort     float64
	dotLong      float64
	charSepShort float64
	charSepLong  float64
	wordSep      float64
}

// Receiver is a timing-based CW decoder: feed it audio samples one at a
// time and it tracks the tone envelope, estimates SNR, classifies mark
// and space runs as dots/dashes/character and word separators, and
// adapts its WPM estimate to the incoming keying speed.
type Receiver struct {
	sampleRate int

	envelope     *envelopeDetector
	snr          *snrEstimator
	thresholdSNR float64

	minWPM, maxWPM, wpmAlpha float64
	currentWPM               float64
	spec                     timeSpec

	state               keyState
	sampleCount         int
	keyDownSample       int
	keyUpSample         int
	lastActivitySample  int
	haveLastActivity    bool
	morseElements       string

	Listener Listener
}

// NewReceiver returns a Receiver tuned to a CW tone at centerFrequency Hz
// with the given bandwidth, accepting keying speeds between minWPM and
// maxWPM, with an SNR threshold (in dB) above which a tone is considered
// present.
func NewReceiver(sampleRate int, centerFrequency, bandwidth, minWPM, maxWPM, thresholdSNR float64, listener Listener) *Receiver {
	r := &Receiver{
		sampleRate:   sampleRate,
		envelope:     newEnvelopeDetector(sampleRate, centerFrequency, bandwidth),
		snr:          newSNREstimator(100),
		thresholdSNR: thresholdSNR,
		minWPM:       minWPM,
		maxWPM:       maxWPM,
		wpmAlpha:     0.3,
		currentWPM:   16.0,
		Listener:     listener,
	}
	r.updateTimeSpec()
	return r
}

func (r *Receiver) updateTimeSpec() {
	unit := 1.2 / r.currentWPM
	r.spec = timeSpec{
		dotShort:     0.8 * unit,
		dotLong:      2.0 * unit,
		charSepShort: 1.5 * unit,
		charSepLong:  4.0 * unit,
		wordSep:      6.5 * unit,
	}
}

func (r *Receiver) updateWPM(markDuration float64) {
	minDitTime := 1.2 / r.maxWPM
	maxDitTime := 1.2 / r.minWPM
	maxDahTime := 3 * maxDitTime

	if markDuration < minDitTime || markDuration > maxDahTime {
		return
	}

	var wpmNew float64
	if markDuration < maxDitTime {
		wpmNew = 1.2 / markDuration
	} else {
		wpmNew = 3 * 1.2 / markDuration
	}
	if wpmNew < r.minWPM {
		wpmNew = r.minWPM
	}
	if wpmNew > r.maxWPM {
		wpmNew = r.maxWPM
	}

	r.currentWPM = r.wpmAlpha*wpmNew + (1-r.wpmAlpha)*r.currentWPM
	r.updateTimeSpec()
}

// ProcessSample advances the receiver by one audio sample, normalized to
// [-1, 1].
func (r *Receiver) ProcessSample(sample float64) {
	env := r.envelope.process(sample)
	snrDB := r.snr.process(env)
	r.sampleCount++
	r.detectTransition(snrDB)
	r.checkWordSeparator()
}

func (r *Receiver) samplesToSeconds(n int) float64 {
	return float64(n) / float64(r.sampleRate)
}

func (r *Receiver) detectTransition(snrDB float64) {
	level := snrDB / r.thresholdSNR
	if level > 1.0 {
		level = 1.0
	}

	if r.state == keyUp && level > 0.6 {
		spaceDuration := r.samplesToSeconds(r.sampleCount - r.keyUpSample)
		r.state = keyDown
		r.keyDownSample = r.sampleCount
		r.lastActivitySample = r.sampleCount
		r.haveLastActivity = true
		r.processSpace(spaceDuration)
	}

	if r.state == keyDown && level < 0.4 {
		markDuration := r.samplesToSeconds(r.sampleCount - r.keyDownSample)
		r.state = keyUp
		r.keyUpSample = r.sampleCount
		r.lastActivitySample = r.sampleCount
		r.haveLastActivity = true
		r.processMark(markDuration)
	}
}

func (r *Receiver) processMark(duration float64) {
	if duration < r.spec.dotShort {
		return
	}
	r.updateWPM(duration)
	if duration < r.spec.dotLong {
		r.morseElements += "."
	} else {
		r.morseElements += "-"
	}
}

func (r *Receiver) processSpace(duration float64) {
	if duration < r.spec.charSepShort {
		return
	}
	r.processCharacter()
}

// checkWordSeparator flushes a pending character once the gap since the
// last mark/space transition exceeds the word-separator threshold.
func (r *Receiver) checkWordSeparator() {
	if r.morseElements == "" || !r.haveLastActivity {
		return
	}
	if r.samplesToSeconds(r.sampleCount-r.lastActivitySample) > r.spec.wordSep {
		r.processCharacter()
	}
}

func (r *Receiver) processCharacter() {
	if r.morseElements == "" {
		return
	}
	text := decodeElements(r.morseElements)
	r.morseElements = ""
	for i := 0; i < len(text); i++ {
		r.Listener.Received(text[i])
	}
}
