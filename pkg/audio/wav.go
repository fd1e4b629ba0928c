// Package audio provides the PCM and RIFF/WAVE plumbing for podcast
// rendering: decoding synthesised segments, converting between sample
// encodings and rates, and concatenating ordered segments into one output
// file at a fixed target codec.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Clip is decoded audio held as 16-bit little-endian PCM samples.
type Clip struct {
	// Data is interleaved int16 little-endian PCM.
	Data []byte

	// SampleRate in Hz.
	SampleRate int

	// Channels is the interleaved channel count (1 = mono, 2 = stereo).
	Channels int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	samples := len(c.Data) / 2 / c.Channels
	return float64(samples) / float64(c.SampleRate)
}

// WAV format codes from the fmt chunk.
const (
	wavFormatPCM       = 1 // integer PCM
	wavFormatIEEEFloat = 3 // 32-bit float PCM
)

// ErrNotWAV is returned by DecodeWAV when the input does not start with a
// RIFF/WAVE header.
var ErrNotWAV = errors.New("audio: not a RIFF/WAVE file")

// DecodeWAV parses b as a RIFF/WAVE file and returns its audio payload
// converted to 16-bit PCM. Supported source encodings are 16-bit integer PCM
// (format code 1) and 32-bit IEEE float PCM (format code 3) — the two shapes
// TTS backends actually produce. Extra chunks (LIST, fact, ...) are skipped.
func DecodeWAV(b []byte) (Clip, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Clip{}, ErrNotWAV
	}

	var (
		haveFmt    bool
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
	)

	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(b) {
			// Tolerate a truncated final chunk by clamping to what exists.
			size = len(b) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Clip{}, fmt.Errorf("audio: fmt chunk too short (%d bytes)", size)
			}
			format = binary.LittleEndian.Uint16(b[body : body+2])
			channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return Clip{}, errors.New("audio: data chunk before fmt chunk")
			}
			if channels <= 0 || sampleRate <= 0 {
				return Clip{}, fmt.Errorf("audio: invalid fmt (channels=%d rate=%d)", channels, sampleRate)
			}
			pcm := b[body : body+size]
			switch {
			case format == wavFormatPCM && bitDepth == 16:
				out := make([]byte, len(pcm)&^1)
				copy(out, pcm)
				return Clip{Data: out, SampleRate: sampleRate, Channels: channels}, nil
			case format == wavFormatIEEEFloat && bitDepth == 32:
				return Clip{Data: Float32LEToInt16(pcm), SampleRate: sampleRate, Channels: channels}, nil
			default:
				return Clip{}, fmt.Errorf("audio: unsupported WAV encoding (format=%d bits=%d)", format, bitDepth)
			}
		}

		// Chunks are word-aligned; odd sizes carry one pad byte.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	return Clip{}, errors.New("audio: no data chunk found")
}

// EncodeWAV writes clip to w as a canonical 44-byte-header 16-bit PCM WAV.
func EncodeWAV(w io.Writer, clip Clip) error {
	if clip.SampleRate <= 0 || clip.Channels <= 0 {
		return fmt.Errorf("audio: invalid clip (channels=%d rate=%d)", clip.Channels, clip.SampleRate)
	}

	dataSize := uint32(len(clip.Data))
	blockAlign := uint16(clip.Channels * 2)
	byteRate := uint32(clip.SampleRate) * uint32(blockAlign)

	var header [44]byte
	le := binary.LittleEndian
	copy(header[0:4], "RIFF")
	le.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	le.PutUint32(header[16:20], 16)
	le.PutUint16(header[20:22], wavFormatPCM)
	le.PutUint16(header[22:24], uint16(clip.Channels))
	le.PutUint32(header[24:28], uint32(clip.SampleRate))
	le.PutUint32(header[28:32], byteRate)
	le.PutUint16(header[32:34], blockAlign)
	le.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	le.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("audio: write WAV header: %w", err)
	}
	if _, err := w.Write(clip.Data); err != nil {
		return fmt.Errorf("audio: write WAV data: %w", err)
	}
	return nil
}

// Float32LEToInt16 converts 32-bit little-endian float PCM in the [-1, 1]
// range to 16-bit little-endian integer PCM, clamping out-of-range samples.
// Trailing bytes that do not form a whole float are dropped.
func Float32LEToInt16(pcm []byte) []byte {
	samples := len(pcm) / 4
	out := make([]byte, samples*2)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(pcm[i*4 : i*4+4])
		f := math.Float32frombits(bits)

		scaled := float64(f) * 32767
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}

		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(int16(scaled)))
	}
	return out
}
