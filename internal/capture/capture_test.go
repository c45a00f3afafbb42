package capture

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wav")

	w, err := NewWAVWriter(path, 8000, 1, 16)
	if err != nil {
		t.Fatalf("NewWAVWriter: %v", err)
	}
	samples := []int16{100, -100, 32767, -32768, 0}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenWAVReader(path)
	if err != nil {
		t.Fatalf("OpenWAVReader: %v", err)
	}
	defer r.Close()

	if r.SampleRate() != 8000 || r.Channels() != 1 || r.BitsPerSample() != 16 {
		t.Fatalf("unexpected header: rate=%d channels=%d bits=%d", r.SampleRate(), r.Channels(), r.BitsPerSample())
	}

	got := make([]int16, 0, len(samples))
	buf := make([]int16, 2)
	for {
		n, err := r.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples: %v", err)
		}
	}

	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestPCMZRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.pcmz")

	w, err := NewPCMZWriter(path, 8000, 1, -1)
	if err != nil {
		t.Fatalf("NewPCMZWriter: %v", err)
	}
	samples := []int16{1, 2, 3, -4, 5000, -5000}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenPCMZReader(path)
	if err != nil {
		t.Fatalf("OpenPCMZReader: %v", err)
	}
	defer r.Close()

	if r.SampleRate() != 8000 || r.Channels() != 1 {
		t.Fatalf("unexpected header: rate=%d channels=%d", r.SampleRate(), r.Channels())
	}

	got := make([]int16, 0, len(samples))
	buf := make([]int16, 4)
	for {
		n, err := r.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples: %v", err)
		}
	}

	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestOpenWAVReaderRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all, padding"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := OpenWAVReader(path); err == nil {
		t.Fatal("expected error opening non-WAV file")
	}
}
