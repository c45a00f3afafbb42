package rtty

// Listener receives decoded RTTY characters.
type Listener interface {
	Received(ch byte)
}

type decoderState int

const (
	stateWaitStart decoderState = iota
	stateStartBit
	stateApproachMid
	stateDataBit
	stateStopBit
)

// Decoder is a Baudot (ITA2) bit-stream decoder: feed it the demodulator's
// symbol stream one sample at a time (1 = mark, 0 = space) at the sample
// rate, and it reassembles start bit / 5 data bits / stop bit characters,
// tracking LTRS/FIGS shift state.
type Decoder struct {
	samplesPerSymbol int
	mode             Mode
	Listener         Listener

	avg *windowAverage

	state       decoderState
	sampleCount int
	symbolCount int
	symbolAcc   uint8
	lastSymbol  int16
}

// NewDecoder returns a Decoder for a sampleRate Hz input running at
// baudRateTimes100/100 baud (e.g. 4545 for 45.45 baud), smoothing the
// symbol stream over a window of 1<<windowSizeLog2 samples.
func NewDecoder(sampleRate, baudRateTimes100 uint16, windowSizeLog2 uint, listener Listener) *Decoder {
	return &Decoder{
		samplesPerSymbol: int((100 * uint32(sampleRate)) / uint32(baudRateTimes100)),
		mode:             ModeLTRS,
		Listener:         listener,
		avg:              newWindowAverage(windowSizeLog2),
	}
}

// Reset clears shift mode and bit-framing state.
func (d *Decoder) Reset() {
	d.mode = ModeLTRS
	d.state = stateWaitStart
	d.sampleCount = 0
	d.symbolCount = 0
	d.symbolAcc = 0
	d.lastSymbol = 0
	d.avg.reset()
}

// ProcessSample advances the decoder by one sample. symbol is 1 for mark,
// 0 for space. present reports whether the demodulator's matched filter
// considers this sample signal rather than noise (§4.7); when false, the
// sample is still counted toward the current symbol's timing but cannot
// trigger the state-0 start-bit edge detection (§4.10, §7).
func (d *Decoder) ProcessSample(symbol uint8, present bool) {
	d.sampleCount++

	rawSymbolQ15 := int16(-32767)
	if symbol == 1 {
		rawSymbolQ15 = 32767
	}
	smoothed := int16(-1)
	if d.avg.sample(rawSymbolQ15) >= 0 {
		smoothed = 1
	}

	switch d.state {
	case stateWaitStart:
		if present && d.lastSymbol == 1 && smoothed == -1 {
			d.state = stateStartBit
			d.sampleCount = 0
		}
	case stateStartBit:
		if d.sampleCount == d.samplesPerSymbol {
			d.state = stateApproachMid
			d.sampleCount = 0
			d.symbolCount = 0
			d.symbolAcc = 0
		}
	case stateApproachMid:
		if d.sampleCount >= d.samplesPerSymbol>>1 {
			d.symbolAcc <<= 1
			if smoothed == 1 {
				d.symbolAcc |= 1
			}
			d.symbolCount++
			d.state = stateDataBit
		}
	case stateDataBit:
		if d.sampleCount >= d.samplesPerSymbol {
			d.sampleCount = 0
			if d.symbolCount == 5 {
				d.completeCharacter()
				d.state = stateStopBit
			} else {
				d.state = stateApproachMid
			}
		}
	case stateStopBit:
		if d.sampleCount >= d.samplesPerSymbol {
			d.sampleCount = 0
			d.state = stateWaitStart
		}
	}

	d.lastSymbol = smoothed
}

func (d *Decoder) completeCharacter() {
	code := d.symbolAcc & 0b11111
	switch code {
	case LTRS:
		d.mode = ModeLTRS
	case FIGS:
		d.mode = ModeFIGS
	default:
		col := 0
		if d.mode == ModeFIGS {
			col = 1
		}
		if ch := baudotToASCII[code][col]; ch != 0 {
			d.Listener.Received(ch)
		}
	}
}
