package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// pcmzMagic identifies a compressed raw-PCM capture file: a small fixed
// header (sample rate, channel count) followed by a flate stream of
// little-endian int16 samples. Meant for long unattended captures where
// a WAV's uncompressed size is impractical.
var pcmzMagic = [4]byte{'P', 'C', 'M', 'Z'}

// PCMZWriter writes PCM16 samples through a flate compressor to a
// capture file prefixed with sample rate and channel metadata.
type PCMZWriter struct {
	file    *os.File
	flate   *flate.Writer
	scratch [2]byte
}

// NewPCMZWriter creates filename and writes its header. level is a
// compress/flate compression level (flate.DefaultCompression is a
// reasonable default).
func NewPCMZWriter(filename string, sampleRate, channels, level int) (*PCMZWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("capture: create pcmz file: %w", err)
	}

	if _, err := file.Write(pcmzMagic[:]); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: write pcmz magic: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(sampleRate)); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: write pcmz sample rate: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint16(channels)); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: write pcmz channels: %w", err)
	}

	fw, err := flate.NewWriter(file, level)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: start flate stream: %w", err)
	}

	return &PCMZWriter{file: file, flate: fw}, nil
}

// WriteSamples compresses and appends little-endian int16 PCM samples.
func (w *PCMZWriter) WriteSamples(samples []int16) error {
	for _, sample := range samples {
		binary.LittleEndian.PutUint16(w.scratch[:], uint16(sample))
		if _, err := w.flate.Write(w.scratch[:]); err != nil {
			return fmt.Errorf("capture: write pcmz sample: %w", err)
		}
	}
	return nil
}

// Close flushes the flate stream and closes the file.
func (w *PCMZWriter) Close() error {
	if err := w.flate.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("capture: close flate stream: %w", err)
	}
	return w.file.Close()
}

// PCMZReader decompresses a PCMZWriter capture back into PCM16 samples.
type PCMZReader struct {
	file       *os.File
	flate      io.ReadCloser
	sampleRate int
	channels   int
	scratch    [2]byte
}

// OpenPCMZReader opens filename and parses its header.
func OpenPCMZReader(filename string) (*PCMZReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("capture: open pcmz file: %w", err)
	}

	var magic [4]byte
	if _, err := io.ReadFull(file, magic[:]); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: read pcmz magic: %w", err)
	}
	if magic != pcmzMagic {
		file.Close()
		return nil, fmt.Errorf("capture: not a pcmz file")
	}

	var sampleRate uint32
	var channels uint16
	if err := binary.Read(file, binary.LittleEndian, &sampleRate); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: read pcmz sample rate: %w", err)
	}
	if err := binary.Read(file, binary.LittleEndian, &channels); err != nil {
		file.Close()
		return nil, fmt.Errorf("capture: read pcmz channels: %w", err)
	}

	return &PCMZReader{
		file:       file,
		flate:      flate.NewReader(file),
		sampleRate: int(sampleRate),
		channels:   int(channels),
	}, nil
}

func (r *PCMZReader) SampleRate() int { return r.sampleRate }
func (r *PCMZReader) Channels() int   { return r.channels }

// ReadSamples fills buf with decompressed int16 samples, returning the
// count read and io.EOF once the stream is exhausted.
func (r *PCMZReader) ReadSamples(buf []int16) (int, error) {
	n := 0
	for n < len(buf) {
		if _, err := io.ReadFull(r.flate, r.scratch[:]); err != nil {
			if n > 0 {
				return n, nil
			}
			if err == io.ErrUnexpectedEOF {
				return 0, io.EOF
			}
			return 0, err
		}
		buf[n] = int16(binary.LittleEndian.Uint16(r.scratch[:]))
		n++
	}
	return n, nil
}

// Close releases the flate reader and underlying file.
func (r *PCMZReader) Close() error {
	r.flate.Close()
	return r.file.Close()
}
