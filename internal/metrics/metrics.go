// Package metrics exports Prometheus counters and gauges for the
// demodulator family (SCAMP, RTTY, Morse) and the GSM codec, generalizing
// the teacher's per-channel decoder metrics to this repo's components.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector this repository registers.
type Metrics struct {
	FrequencyLocks  *prometheus.CounterVec
	FramesGood      *prometheus.CounterVec
	FramesBad       *prometheus.CounterVec
	DuplicatesDrop  *prometheus.CounterVec
	CharsReceived   *prometheus.CounterVec
	SamplesIngested *prometheus.CounterVec
	ClockErrorAbs   *prometheus.GaugeVec

	GSMSegmentsEncoded prometheus.Counter
	GSMSegmentsDecoded prometheus.Counter
}

// NewMetrics registers and returns the full collector set, labeled by
// decode mode ("scamp", "rtty", "morse") where applicable.
func NewMetrics() *Metrics {
	return &Metrics{
		FrequencyLocks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "radlib_frequency_locks_total",
			Help: "Count of frequency-lock acquisitions per demodulator mode.",
		}, []string{"mode"}),
		FramesGood: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "radlib_frames_good_total",
			Help: "Count of structurally and FEC-valid frames decoded.",
		}, []string{"mode"}),
		FramesBad: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "radlib_frames_bad_total",
			Help: "Count of frames that failed structural or FEC validation.",
		}, []string{"mode"}),
		DuplicatesDrop: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "radlib_duplicate_frames_total",
			Help: "Count of back-to-back duplicate code words discarded.",
		}, []string{"mode"}),
		CharsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "radlib_characters_received_total",
			Help: "Count of characters successfully decoded.",
		}, []string{"mode"}),
		SamplesIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "radlib_samples_ingested_total",
			Help: "Count of input samples processed by a demodulator.",
		}, []string{"mode"}),
		ClockErrorAbs: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "radlib_clock_phase_error",
			Help: "Most recent bit-clock phase error, normalized to [-1,1].",
		}, []string{"mode"}),
		GSMSegmentsEncoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "radlib_gsm_segments_encoded_total",
			Help: "Count of 20ms PCM segments encoded to GSM 06.10 parameters.",
		}),
		GSMSegmentsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "radlib_gsm_segments_decoded_total",
			Help: "Count of GSM 06.10 parameter segments decoded to PCM.",
		}),
	}
}

// Handler returns the standard Prometheus scrape HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
