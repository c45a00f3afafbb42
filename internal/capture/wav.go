// Package capture provides file-based PCM capture I/O: 16-bit mono WAV
// read/write, and an optional flate-compressed raw capture format for
// long recorded sessions.
package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// wavHeader is the on-disk RIFF/WAVE header for 16-bit PCM audio.
type wavHeader struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte

	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16

	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// WAVWriter writes 16-bit PCM samples to a RIFF/WAVE file, patching the
// header's size fields in on Close.
type WAVWriter struct {
	file          *os.File
	sampleRate    int
	channels      int
	bitsPerSample int
	dataSize      int64
}

// NewWAVWriter creates filename and writes a placeholder header, to be
// finalized by Close.
func NewWAVWriter(filename string, sampleRate, channels, bitsPerSample int) (*WAVWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("capture: create WAV file: %w", err)
	}

	w := &WAVWriter{
		file:          file,
		sampleRate:    sampleRate,
		channels:      channels,
		bitsPerSample: bitsPerSample,
	}
	if err := w.writeHeader(w.dataSize); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *WAVWriter) writeHeader(dataSize int64) error {
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(dataSize + 36),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(w.channels),
		SampleRate:    uint32(w.sampleRate),
		ByteRate:      uint32(w.sampleRate * w.channels * w.bitsPerSample / 8),
		BlockAlign:    uint16(w.channels * w.bitsPerSample / 8),
		BitsPerSample: uint16(w.bitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataSize),
	}
	if err := binary.Write(w.file, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("capture: write WAV header: %w", err)
	}
	return nil
}

// WriteSamples appends little-endian int16 PCM samples.
func (w *WAVWriter) WriteSamples(samples []int16) error {
	for _, sample := range samples {
		if err := binary.Write(w.file, binary.LittleEndian, sample); err != nil {
			return fmt.Errorf("capture: write sample: %w", err)
		}
		w.dataSize += 2
	}
	return nil
}

// Close patches the header with final sizes and closes the file.
func (w *WAVWriter) Close() error {
	if w.file == nil {
		return nil
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		w.file.Close()
		return fmt.Errorf("capture: seek to header: %w", err)
	}
	if err := w.writeHeader(w.dataSize); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// DataSize returns the number of PCM data bytes written so far.
func (w *WAVWriter) DataSize() int64 { return w.dataSize }

// Duration returns the recorded audio's length in seconds.
func (w *WAVWriter) Duration() float64 {
	bytesPerSample := w.bitsPerSample / 8
	samplesWritten := w.dataSize / int64(w.channels*bytesPerSample)
	return float64(samplesWritten) / float64(w.sampleRate)
}

// WAVReader reads 16-bit PCM samples back out of a RIFF/WAVE file
// written by WAVWriter. It reads the canonical 44-byte header layout only:
// chunks other than "fmt " and "data", or a longer fmt chunk, are not
// skipped. Stereo samples are returned interleaved.
type WAVReader struct {
	file       *os.File
	sampleRate int
	channels   int
	bitsPerSample int
	remaining  int64 // data bytes left to read
}

// OpenWAVReader opens filename and parses its header.
func OpenWAVReader(filename string) (*WAVReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("capture: open WAV file: %w", err)
	}

	var header wavHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: read WAV header: %w", err)
	}
	if header.ChunkID != [4]byte{'R', 'I', 'F', 'F'} || header.Format != [4]byte{'W', 'A', 'V', 'E'} {
		file.Close()
		return nil, fmt.Errorf("capture: not a RIFF/WAVE file")
	}
	if header.AudioFormat != 1 || header.BitsPerSample != 16 {
		file.Close()
		return nil, fmt.Errorf("capture: only 16-bit PCM is supported")
	}

	return &WAVReader{
		file:          file,
		sampleRate:    int(header.SampleRate),
		channels:      int(header.NumChannels),
		bitsPerSample: int(header.BitsPerSample),
		remaining:     int64(header.Subchunk2Size),
	}, nil
}

func (r *WAVReader) SampleRate() int    { return r.sampleRate }
func (r *WAVReader) Channels() int      { return r.channels }
func (r *WAVReader) BitsPerSample() int { return r.bitsPerSample }

// ReadSamples fills buf with as many little-endian int16 samples as are
// available, returning the count read and io.EOF once the data chunk is
// exhausted.
func (r *WAVReader) ReadSamples(buf []int16) (int, error) {
	n := 0
	for n < len(buf) && r.remaining >= 2 {
		var sample int16
		if err := binary.Read(r.file, binary.LittleEndian, &sample); err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		buf[n] = sample
		r.remaining -= 2
		n++
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close releases the underlying file.
func (r *WAVReader) Close() error {
	return r.file.Close()
}
