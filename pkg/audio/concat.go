package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// TargetFormat describes the codec of a combined output file. Output is
// always 16-bit integer PCM; only rate and channel count vary.
type TargetFormat struct {
	// SampleRate in Hz.
	SampleRate int

	// Channels is the output channel count. Only mono (1) is currently
	// supported by the WAV concatenator.
	Channels int
}

// DefaultTargetFormat is the fixed output codec for combined podcasts:
// 16-bit PCM, 44.1 kHz, mono.
func DefaultTargetFormat() TargetFormat {
	return TargetFormat{SampleRate: 44100, Channels: 1}
}

// Concatenator combines an ordered list of audio files into a single output
// file at a fixed target codec. Implementations must transcode inputs whose
// encoding, rate, or channel count differ from the target.
type Concatenator interface {
	// Concatenate decodes each path in order, transcodes to format, and
	// writes one combined file at target. The caller is responsible for
	// passing only paths it considers valid; any undecodable input fails the
	// whole operation.
	Concatenate(ctx context.Context, paths []string, target string, format TargetFormat) error
}

// WAVConcatenator implements [Concatenator] for RIFF/WAVE inputs. Inputs may
// be 16-bit integer or 32-bit float PCM at any sample rate, mono or stereo;
// each is converted to 16-bit mono PCM at the target rate before being
// appended.
type WAVConcatenator struct{}

// Compile-time interface assertion.
var _ Concatenator = (*WAVConcatenator)(nil)

// NewWAVConcatenator returns a ready-to-use [WAVConcatenator].
func NewWAVConcatenator() *WAVConcatenator {
	return &WAVConcatenator{}
}

// Concatenate implements [Concatenator]. The combined clip is assembled in
// memory (podcast-length audio at 16-bit/44.1 kHz mono is ~5 MB per minute)
// and written to target in one pass.
func (c *WAVConcatenator) Concatenate(ctx context.Context, paths []string, target string, format TargetFormat) error {
	if len(paths) == 0 {
		return errors.New("audio: no input files to concatenate")
	}
	if format.Channels != 1 {
		return fmt.Errorf("audio: unsupported target channel count %d (only mono supported)", format.Channels)
	}
	if format.SampleRate <= 0 {
		return fmt.Errorf("audio: invalid target sample rate %d", format.SampleRate)
	}

	combined := Clip{SampleRate: format.SampleRate, Channels: 1}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("audio: concatenate cancelled: %w", err)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("audio: read %q: %w", path, err)
		}
		clip, err := DecodeWAV(raw)
		if err != nil {
			return fmt.Errorf("audio: decode %q: %w", path, err)
		}

		converted := ToMono16(clip, format.SampleRate)
		combined.Data = append(combined.Data, converted.Data...)
	}

	if len(combined.Data) == 0 {
		return errors.New("audio: combined output contains no samples")
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("audio: create output dir: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("audio: create %q: %w", target, err)
	}
	defer f.Close()

	if err := EncodeWAV(f, combined); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("audio: sync %q: %w", target, err)
	}

	slog.Debug("concatenated audio segments",
		"segments", len(paths),
		"target", target,
		"duration_s", combined.Duration(),
	)
	return nil
}
