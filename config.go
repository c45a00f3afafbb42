package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is this repository's top-level configuration: one nested struct
// per subsystem, unmarshaled from YAML, mirroring the teacher's
// Config-of-*Config layout but scoped to the codec/demodulator family this
// repo implements rather than a full SDR web server.
type Config struct {
	GSM        GSMConfig        `yaml:"gsm"`
	SCAMP      SCAMPConfig      `yaml:"scamp"`
	RTTY       RTTYConfig       `yaml:"rtty"`
	Morse      MorseConfig      `yaml:"morse"`
	LiveServer LiveServerConfig `yaml:"liveserver"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GSMConfig configures the GSM 06.10 encoder/decoder CLI entry points.
type GSMConfig struct {
	SampleRate int `yaml:"sample_rate"`
}

// DefaultGSMConfig returns the ETSI-mandated 8kHz operating point.
func DefaultGSMConfig() GSMConfig {
	return GSMConfig{SampleRate: 8000}
}

// SCAMPConfig configures the SCAMP FSK demodulator/modulator.
type SCAMPConfig struct {
	SampleRate     int     `yaml:"sample_rate"`
	MarkHz         float64 `yaml:"mark_hz"`
	SpaceHz        float64 `yaml:"space_hz"`
	SymbolSpreadHz float32 `yaml:"symbol_spread_hz"`
	FFTLog2N       uint16  `yaml:"fft_log2_n"`
	LowestHz       uint16  `yaml:"lowest_hz"`
}

// DefaultSCAMPConfig matches the reference mark=667Hz/space=600Hz
// (66.67Hz spread) SCAMP convention at 2kHz sampling.
func DefaultSCAMPConfig() SCAMPConfig {
	return SCAMPConfig{
		SampleRate:     2000,
		MarkHz:         667,
		SpaceHz:        600,
		SymbolSpreadHz: 66.6666666,
		FFTLog2N:       9, // 512-point FFT
		LowestHz:       100,
	}
}

// RTTYConfig configures the RTTY/Baudot demodulator/modulator.
type RTTYConfig struct {
	SampleRate       int     `yaml:"sample_rate"`
	MarkHz           float64 `yaml:"mark_hz"`
	ShiftHz          float64 `yaml:"shift_hz"`
	BaudRateTimes100 uint16  `yaml:"baud_rate_times_100"`
	FFTLog2N         uint16  `yaml:"fft_log2_n"`
	LowestHz         uint16  `yaml:"lowest_hz"`
	WindowSizeLog2   uint    `yaml:"window_size_log2"`
}

// DefaultRTTYConfig matches the standard amateur 45.45 baud / 170Hz shift
// convention at 8kHz voice-band sampling.
func DefaultRTTYConfig() RTTYConfig {
	return RTTYConfig{
		SampleRate:       8000,
		MarkHz:           2295,
		ShiftHz:          170,
		BaudRateTimes100: 4545,
		FFTLog2N:         10, // 1024-point FFT
		LowestHz:         500,
		WindowSizeLog2:   2,
	}
}

// MorseConfig configures the Morse transmit formatter and envelope receiver.
type MorseConfig struct {
	SampleRate      int     `yaml:"sample_rate"`
	WPM             float64 `yaml:"wpm"`
	ToneHz          float64 `yaml:"tone_hz"`
	Bandwidth       float64 `yaml:"bandwidth_hz"`
	MinWPM          float64 `yaml:"min_wpm"`
	MaxWPM          float64 `yaml:"max_wpm"`
	ThresholdSNRdB  float64 `yaml:"threshold_snr_db"`
}

// DefaultMorseConfig matches the PARIS-standard 20 WPM at a typical 700Hz
// CW tone.
func DefaultMorseConfig() MorseConfig {
	return MorseConfig{
		SampleRate:     8000,
		WPM:            20,
		ToneHz:         700,
		Bandwidth:      100,
		MinWPM:         5,
		MaxWPM:         40,
		ThresholdSNRdB: 6,
	}
}

// LiveServerConfig configures the websocket live-decode server.
type LiveServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// DefaultLiveServerConfig disables the server by default; CLI decode runs
// are headless unless a listen address is configured.
func DefaultLiveServerConfig() LiveServerConfig {
	return LiveServerConfig{Enabled: false, Listen: ":8084"}
}

// MQTTConfig configures the decoded-spot MQTT publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

// DefaultMQTTConfig disables publishing by default.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Enabled:  false,
		Broker:   "tcp://localhost:1883",
		ClientID: "radlib-go",
		Topic:    "radlib",
	}
}

// PrometheusConfig configures the metrics exporter.
type PrometheusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// DefaultPrometheusConfig disables the exporter by default.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{Enabled: false, Listen: ":9090"}
}

// LoggingConfig controls the verbosity of the plain-text component logger.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a Config with every subsystem at its documented
// default operating point.
func DefaultConfig() *Config {
	return &Config{
		GSM:        DefaultGSMConfig(),
		SCAMP:      DefaultSCAMPConfig(),
		RTTY:       DefaultRTTYConfig(),
		Morse:      DefaultMorseConfig(),
		LiveServer: DefaultLiveServerConfig(),
		MQTT:       DefaultMQTTConfig(),
		Prometheus: DefaultPrometheusConfig(),
	}
}

// LoadConfig reads and parses a YAML config file, starting from
// DefaultConfig so any field the file omits keeps its documented default.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filename, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filename, err)
	}
	return config, nil
}
