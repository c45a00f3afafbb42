// Command radlib-go is a multi-tool CLI exposing this module's codecs and
// demodulators: GSM 06.10 speech encode/decode, SCAMP and RTTY FSK
// demodulation, and Morse send/receive, each as its own subcommand in the
// style of a single flag-based dispatcher.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cwsl/radlib-go/internal/capture"
	"github.com/cwsl/radlib-go/internal/fsk"
	"github.com/cwsl/radlib-go/internal/gsm"
	"github.com/cwsl/radlib-go/internal/liveserver"
	"github.com/cwsl/radlib-go/internal/metrics"
	"github.com/cwsl/radlib-go/internal/morse"
	"github.com/cwsl/radlib-go/internal/q15"
	"github.com/cwsl/radlib-go/internal/rtty"
	"github.com/cwsl/radlib-go/internal/scamp"
	"github.com/cwsl/radlib-go/internal/spotpublisher"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	configFile := flag.String("config", "", "Path to YAML config file (defaults applied if omitted)")
	subcommand := os.Args[1]
	flag.CommandLine.Parse(os.Args[2:])

	cfg := DefaultConfig()
	if *configFile != "" {
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("radlib-go: %v", err)
		}
		cfg = loaded
	}

	var err error
	switch subcommand {
	case "gsm-encode":
		err = runGSMEncode(flag.Args(), cfg)
	case "gsm-decode":
		err = runGSMDecode(flag.Args(), cfg)
	case "scamp-demod":
		err = runSCAMPDemod(flag.Args(), cfg)
	case "scamp-send":
		err = runSCAMPSend(flag.Args(), cfg)
	case "rtty-demod":
		err = runRTTYDemod(flag.Args(), cfg)
	case "rtty-send":
		err = runRTTYSend(flag.Args(), cfg)
	case "morse-send":
		err = runMorseSend(flag.Args(), cfg)
	case "morse-recv":
		err = runMorseRecv(flag.Args(), cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("radlib-go %s: %v", subcommand, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: radlib-go <subcommand> [-config FILE] [args]

subcommands:
  gsm-encode   IN.wav OUT.gsm     encode 8kHz mono PCM to GSM 06.10 parameters
  gsm-decode   IN.gsm OUT.wav     decode GSM 06.10 parameters back to PCM
  scamp-demod  IN.wav             demodulate a SCAMP audio capture to stdout
  scamp-send   "text" OUT.wav     render text as a SCAMP audio transmission
  rtty-demod   IN.wav             demodulate a RTTY/Baudot audio capture to stdout
  rtty-send    "text" OUT.wav     render text as a RTTY audio transmission
  morse-send   "text" OUT.wav     render text as a Morse audio transmission
  morse-recv   IN.wav             decode a Morse audio capture to stdout`)
}

// optionalTelemetry wires the live-decode websocket hub, MQTT spot
// publisher, and Prometheus exporter that every decode subcommand shares,
// per the active Config. Each is nil/no-op when disabled.
type optionalTelemetry struct {
	hub     *liveserver.Hub
	spots   *spotpublisher.Publisher
	metrics *metrics.Metrics
}

func startTelemetry(cfg *Config) (*optionalTelemetry, error) {
	t := &optionalTelemetry{}

	if cfg.Prometheus.Enabled {
		t.metrics = metrics.NewMetrics()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", t.metrics.Handler())
			log.Printf("prometheus: serving metrics on %s/metrics", cfg.Prometheus.Listen)
			if err := http.ListenAndServe(cfg.Prometheus.Listen, mux); err != nil {
				log.Printf("prometheus: server exited: %v", err)
			}
		}()
	}

	if cfg.LiveServer.Enabled {
		t.hub = liveserver.NewHub()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", t.hub.ServeWS)
		go func() {
			log.Printf("liveserver: serving websocket on %s/ws", cfg.LiveServer.Listen)
			if err := http.ListenAndServe(cfg.LiveServer.Listen, mux); err != nil {
				log.Printf("liveserver: server exited: %v", err)
			}
		}()
	}

	if cfg.MQTT.Enabled {
		pub, err := spotpublisher.NewPublisher(spotpublisher.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.Topic,
		})
		if err != nil {
			return nil, err
		}
		t.spots = pub
	}

	return t, nil
}

func (t *optionalTelemetry) publishSpot(mode, text string, frequencyHz float64) {
	if t.spots == nil {
		return
	}
	t.spots.Publish(spotpublisher.Spot{
		Mode:        mode,
		Text:        text,
		FrequencyHz: frequencyHz,
		Timestamp:   time.Now().Unix(),
	})
}

func runGSMEncode(args []string, cfg *Config) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: gsm-encode IN.wav OUT.gsm")
	}
	tele, err := startTelemetry(cfg)
	if err != nil {
		return err
	}

	reader, err := capture.OpenWAVReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()
	if reader.SampleRate() != cfg.GSM.SampleRate {
		log.Printf("gsm-encode: warning: input sample rate %d differs from configured %d", reader.SampleRate(), cfg.GSM.SampleRate)
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	enc := gsm.NewEncoder()
	var segment [gsm.SegmentSamples]int16
	for {
		n, readErr := reader.ReadSamples(segment[:])
		for i := n; i < gsm.SegmentSamples; i++ {
			segment[i] = 0
		}
		if n > 0 {
			params := enc.Encode(&segment)
			packed := params.Pack()
			if _, err := out.Write(packed[:]); err != nil {
				return err
			}
			if tele.metrics != nil {
				tele.metrics.GSMSegmentsEncoded.Inc()
			}
		}
		if readErr != nil {
			break
		}
	}
	return nil
}

func runGSMDecode(args []string, cfg *Config) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: gsm-decode IN.gsm OUT.wav")
	}
	tele, err := startTelemetry(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	writer, err := capture.NewWAVWriter(args[1], cfg.GSM.SampleRate, 1, 16)
	if err != nil {
		return err
	}
	defer writer.Close()

	dec := gsm.NewDecoder()
	for offset := 0; offset+gsm.PackedSize <= len(data); offset += gsm.PackedSize {
		params := gsm.Unpack(data[offset : offset+gsm.PackedSize])
		pcm := dec.Decode(&params)
		if err := writer.WriteSamples(pcm[:]); err != nil {
			return err
		}
		if tele.metrics != nil {
			tele.metrics.GSMSegmentsDecoded.Inc()
		}
	}
	return nil
}

// printListener writes every decoded character to stdout and forwards it
// to the optional live-decode hub and MQTT spot publisher.
type printListener struct {
	mode string
	tele *optionalTelemetry
	buf  []byte
}

func (l *printListener) Received(ch byte) {
	fmt.Printf("%c", ch)
	l.buf = append(l.buf, ch)
	if l.tele.hub != nil {
		l.tele.hub.BroadcastText(l.mode, ch)
	}
}

// scampListener implements fsk.Listener, forwarding only the decoded
// ASCII character stream and ignoring the lower-level demodulator events
// NullListener already no-ops.
type scampListener struct {
	fsk.NullListener
	mode string
	tele *optionalTelemetry
	buf  []byte
}

func (l *scampListener) FrequencyLocked(markHz, spaceHz float32) {
	if l.tele.hub != nil {
		l.tele.hub.BroadcastFrequencyLock(markHz, spaceHz)
	}
	if l.tele.metrics != nil {
		l.tele.metrics.FrequencyLocks.WithLabelValues(l.mode).Inc()
	}
}

func (l *scampListener) GoodFrameReceived() {
	if l.tele.metrics != nil {
		l.tele.metrics.FramesGood.WithLabelValues(l.mode).Inc()
	}
}

func (l *scampListener) BadFrameReceived(raw uint32) {
	if l.tele.metrics != nil {
		l.tele.metrics.FramesBad.WithLabelValues(l.mode).Inc()
	}
}

func (l *scampListener) DiscardedDuplicate() {
	if l.tele.metrics != nil {
		l.tele.metrics.DuplicatesDrop.WithLabelValues(l.mode).Inc()
	}
}

func (l *scampListener) Received(sym6 uint8, ascii byte) {
	fmt.Printf("%c", ascii)
	l.buf = append(l.buf, ascii)
	if l.tele.hub != nil {
		l.tele.hub.BroadcastText(l.mode, ascii)
	}
	if l.tele.metrics != nil {
		l.tele.metrics.CharsReceived.WithLabelValues(l.mode).Inc()
	}
}

func wavToQ15Samples(reader *capture.WAVReader) ([]q15.Q15, error) {
	var out []q15.Q15
	buf := make([]int16, 4096)
	for {
		n, err := reader.ReadSamples(buf)
		for i := 0; i < n; i++ {
			out = append(out, q15.Q15(buf[i]))
		}
		if err != nil {
			break
		}
	}
	return out, nil
}

func runSCAMPDemod(args []string, cfg *Config) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: scamp-demod IN.wav")
	}
	tele, err := startTelemetry(cfg)
	if err != nil {
		return err
	}

	reader, err := capture.OpenWAVReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()
	samples, err := wavToQ15Samples(reader)
	if err != nil {
		return err
	}

	sc := cfg.SCAMP
	demod := fsk.NewDemodulator(uint16(sc.SampleRate), sc.LowestHz, sc.FFTLog2N)
	demod.SetSymbolSpread(sc.SymbolSpreadHz)
	clock := fsk.NewClockRecoveryPLL(uint16(sc.SampleRate))
	listener := &scampListener{mode: "scamp", tele: tele}
	scamp.NewDecoder(demod, clock, listener)

	for _, s := range samples {
		demod.ProcessSample(s)
		if tele.metrics != nil {
			tele.metrics.SamplesIngested.WithLabelValues("scamp").Inc()
		}
	}
	fmt.Println()
	tele.publishSpot("scamp", string(listener.buf), sc.MarkHz)
	return nil
}

func runSCAMPSend(args []string, cfg *Config) error {
	if len(args) != 2 {
		return fmt.Errorf(`usage: scamp-send "text" OUT.wav`)
	}
	sc := cfg.SCAMP
	mod := fsk.NewToneModulator(sc.SampleRate, sc.MarkHz, sc.SpaceHz)
	scamp.SendMessage(mod, args[0])

	writer, err := capture.NewWAVWriter(args[1], sc.SampleRate, 1, 16)
	if err != nil {
		return err
	}
	defer writer.Close()
	return writer.WriteSamples(mod.Samples)
}

func runRTTYDemod(args []string, cfg *Config) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rtty-demod IN.wav")
	}
	tele, err := startTelemetry(cfg)
	if err != nil {
		return err
	}

	reader, err := capture.OpenWAVReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()
	samples, err := wavToQ15Samples(reader)
	if err != nil {
		return err
	}

	rc := cfg.RTTY
	demod := fsk.NewDemodulator(uint16(rc.SampleRate), rc.LowestHz, rc.FFTLog2N)
	demod.SetSymbolSpread(float32(rc.ShiftHz))
	listener := &printListener{mode: "rtty", tele: tele}
	dec := rtty.NewDecoder(uint16(rc.SampleRate), rc.BaudRateTimes100, rc.WindowSizeLog2, listener)
	demod.OnSymbol(func(present bool, symbol uint8) {
		dec.ProcessSample(symbol, present)
	})

	for _, s := range samples {
		demod.ProcessSample(s)
		if tele.metrics != nil {
			tele.metrics.SamplesIngested.WithLabelValues("rtty").Inc()
		}
	}
	fmt.Println()
	tele.publishSpot("rtty", string(listener.buf), rc.MarkHz)
	return nil
}

func runRTTYSend(args []string, cfg *Config) error {
	if len(args) != 2 {
		return fmt.Errorf(`usage: rtty-send "text" OUT.wav`)
	}
	rc := cfg.RTTY
	mod := fsk.NewToneModulator(rc.SampleRate, rc.MarkHz, rc.MarkHz-rc.ShiftHz)
	symbolLength := time.Duration(float64(time.Second) * 100.0 / float64(rc.BaudRateTimes100))
	rtty.Transmit(mod, args[0], symbolLength)

	writer, err := capture.NewWAVWriter(args[1], rc.SampleRate, 1, 16)
	if err != nil {
		return err
	}
	defer writer.Close()
	return writer.WriteSamples(mod.Samples)
}

func runMorseSend(args []string, cfg *Config) error {
	if len(args) != 2 {
		return fmt.Errorf(`usage: morse-send "text" OUT.wav`)
	}
	mc := cfg.Morse
	mod := fsk.NewToneModulator(mc.SampleRate, mc.ToneHz, mc.ToneHz)
	dotLength := time.Duration(1.2 / mc.WPM * float64(time.Second))
	morse.Send(mod, args[0], dotLength)

	writer, err := capture.NewWAVWriter(args[1], mc.SampleRate, 1, 16)
	if err != nil {
		return err
	}
	defer writer.Close()
	return writer.WriteSamples(mod.Samples)
}

type morseListener struct {
	tele *optionalTelemetry
	buf  []byte
}

func (l *morseListener) Received(ch byte) {
	fmt.Printf("%c", ch)
	l.buf = append(l.buf, ch)
	if l.tele.hub != nil {
		l.tele.hub.BroadcastText("morse", ch)
	}
}

func runMorseRecv(args []string, cfg *Config) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: morse-recv IN.wav")
	}
	tele, err := startTelemetry(cfg)
	if err != nil {
		return err
	}

	reader, err := capture.OpenWAVReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	mc := cfg.Morse
	listener := &morseListener{tele: tele}
	recv := morse.NewReceiver(mc.SampleRate, mc.ToneHz, mc.Bandwidth, mc.MinWPM, mc.MaxWPM, mc.ThresholdSNRdB, listener)

	buf := make([]int16, 4096)
	for {
		n, readErr := reader.ReadSamples(buf)
		for i := 0; i < n; i++ {
			recv.ProcessSample(float64(buf[i]) / 32768.0)
		}
		if readErr != nil {
			break
		}
	}
	fmt.Println()
	tele.publishSpot("morse", string(listener.buf), mc.ToneHz)
	return nil
}
