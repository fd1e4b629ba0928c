package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestStereoToMono(t *testing.T) {
	// Two stereo frames: (100, 200) and (-400, -600).
	in := int16PCM(100, 200, -400, -600)
	out := StereoToMono(in)

	want := int16PCM(150, -500)
	if !bytes.Equal(out, want) {
		t.Errorf("StereoToMono() = %v, want %v", out, want)
	}
}

func TestStereoToMonoClamps(t *testing.T) {
	in := int16PCM(-32768, -32768)
	out := StereoToMono(in)
	got := int16(binary.LittleEndian.Uint16(out))
	if got != -32768 {
		t.Errorf("got %d, want -32768", got)
	}
}

func TestResampleMono16(t *testing.T) {
	tests := []struct {
		name        string
		srcRate     int
		dstRate     int
		srcSamples  int
		wantSamples int
	}{
		{"downsample 2:1", 44100, 22050, 100, 50},
		{"upsample 1:2", 22050, 44100, 50, 100},
		{"identity", 44100, 44100, 100, 100},
		{"48k to 44.1k", 48000, 44100, 480, 441},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]byte, tt.srcSamples*2)
			out := ResampleMono16(in, tt.srcRate, tt.dstRate)
			if len(out)/2 != tt.wantSamples {
				t.Errorf("got %d samples, want %d", len(out)/2, tt.wantSamples)
			}
		})
	}
}

func TestResampleMono16PreservesDC(t *testing.T) {
	// A constant signal must stay constant through linear interpolation.
	in := make([]byte, 0, 200)
	for range 100 {
		in = append(in, int16PCM(1000)...)
	}
	out := ResampleMono16(in, 48000, 44100)
	for i := 0; i+1 < len(out); i += 2 {
		s := int16(binary.LittleEndian.Uint16(out[i:]))
		if s != 1000 {
			t.Fatalf("sample %d = %d, want 1000", i/2, s)
		}
	}
}

func TestResampleMono16BadRates(t *testing.T) {
	in := int16PCM(1, 2, 3)
	if out := ResampleMono16(in, 0, 44100); !bytes.Equal(out, in) {
		t.Error("zero src rate should return input unchanged")
	}
	if out := ResampleMono16(in, 44100, -1); !bytes.Equal(out, in) {
		t.Error("negative dst rate should return input unchanged")
	}
}

func TestToMono16(t *testing.T) {
	stereo := Clip{Data: int16PCM(100, 300, 100, 300), SampleRate: 44100, Channels: 2}
	got := ToMono16(stereo, 44100)
	if got.Channels != 1 || got.SampleRate != 44100 {
		t.Fatalf("got %d channels at %d Hz, want mono 44100", got.Channels, got.SampleRate)
	}
	if !bytes.Equal(got.Data, int16PCM(200, 200)) {
		t.Errorf("downmix produced %v", got.Data)
	}
}
