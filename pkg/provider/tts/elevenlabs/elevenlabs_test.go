package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coder/websocket"

	"github.com/papercast-dev/papercast/pkg/audio"
	"github.com/papercast-dev/papercast/pkg/provider/tts"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty apiKey")
	}
}

func TestStreamInputURL(t *testing.T) {
	p, err := New("xi-test", WithBaseURL("https://api.elevenlabs.io"), WithModel("eleven_flash_v2_5"))
	if err != nil {
		t.Fatal(err)
	}

	got := p.streamInputURL("voice-1", tts.OutputFormat{Container: "wav", SampleRate: 44100})
	if !strings.HasPrefix(got, "wss://api.elevenlabs.io/v1/text-to-speech/voice-1/stream-input") {
		t.Errorf("url = %q", got)
	}
	if !strings.Contains(got, "model_id=eleven_flash_v2_5") {
		t.Errorf("url missing model: %q", got)
	}
	if !strings.Contains(got, "output_format=pcm_44100") {
		t.Errorf("url missing output format: %q", got)
	}

	p2, _ := New("xi-test", WithBaseURL("http://127.0.0.1:9999"))
	if got := p2.streamInputURL("v", tts.DefaultOutputFormat()); !strings.HasPrefix(got, "ws://127.0.0.1:9999/") {
		t.Errorf("http base should map to ws scheme, got %q", got)
	}
}

func TestOutputFormatString(t *testing.T) {
	tests := []struct {
		rate int
		want string
	}{
		{16000, "pcm_16000"},
		{22050, "pcm_22050"},
		{44100, "pcm_44100"},
		{48000, "pcm_44100"}, // unsupported rates fall back
		{0, "pcm_44100"},
	}
	for _, tt := range tests {
		got := outputFormatString(tts.OutputFormat{SampleRate: tt.rate})
		if got != tt.want {
			t.Errorf("outputFormatString(rate=%d) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

// fakeStreamServer accepts one stream-input WebSocket connection, waits for
// the flush message, then emits the given PCM in two chunks followed by a
// final marker.
func fakeStreamServer(t *testing.T, pcm []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/stream-input") {
			http.NotFound(w, r)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")
		ctx := r.Context()

		// Drain client messages until the empty-text flush arrives.
		for {
			_, raw, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg map[string]any
			if err := json.Unmarshal(raw, &msg); err != nil {
				continue
			}
			if text, ok := msg["text"].(string); ok && text == "" {
				break
			}
		}

		half := len(pcm) / 2
		chunks := [][]byte{pcm[:half], pcm[half:]}
		for _, c := range chunks {
			resp, _ := json.Marshal(audioResponse{Audio: base64.StdEncoding.EncodeToString(c)})
			if err := conn.Write(ctx, websocket.MessageText, resp); err != nil {
				return
			}
		}
		final, _ := json.Marshal(audioResponse{IsFinal: true})
		_ = conn.Write(ctx, websocket.MessageText, final)
	}))
}

func TestSynthesize_WAVRoundTrip(t *testing.T) {
	// 16-bit mono PCM payload: 8 samples.
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7, 0, 8, 0}
	srv := fakeStreamServer(t, pcm)
	defer srv.Close()

	p, err := New("xi-test", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Synthesize(context.Background(), "Hello there.",
		tts.VoiceProfile{ID: "voice-1"}, tts.OutputFormat{Container: "wav", SampleRate: 44100, Encoding: "pcm_s16le"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	clip, err := audio.DecodeWAV(result.Collect())
	if err != nil {
		t.Fatalf("result is not a valid WAV: %v", err)
	}
	if clip.SampleRate != 44100 || clip.Channels != 1 {
		t.Errorf("clip codec = %d Hz / %d ch", clip.SampleRate, clip.Channels)
	}
	if string(clip.Data) != string(pcm) {
		t.Errorf("PCM payload altered in transit")
	}
}

func TestSynthesize_RawStream(t *testing.T) {
	pcm := []byte{9, 0, 8, 0, 7, 0, 6, 0}
	srv := fakeStreamServer(t, pcm)
	defer srv.Close()

	p, err := New("xi-test", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Synthesize(context.Background(), "Hi.",
		tts.VoiceProfile{ID: "voice-1"}, tts.OutputFormat{Container: "raw", SampleRate: 44100})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got := result.Collect(); string(got) != string(pcm) {
		t.Errorf("streamed PCM = %v, want %v", got, pcm)
	}
}

func TestSynthesize_InputValidation(t *testing.T) {
	p, err := New("xi-test")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Synthesize(context.Background(), "", tts.VoiceProfile{ID: "v"}, tts.DefaultOutputFormat()); err == nil {
		t.Error("expected error for empty text")
	}
	if _, err := p.Synthesize(context.Background(), "hi", tts.VoiceProfile{}, tts.DefaultOutputFormat()); err == nil {
		t.Error("expected error for empty voice ID")
	}
}

func TestListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != voicesPath {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("xi-api-key") != "xi-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(voicesResponse{Voices: []elevenLabsVoice{
			{VoiceID: "v1", Name: "Rachel", Category: "premade", Labels: map[string]string{"gender": "female", "accent": "american"}},
			{VoiceID: "v2", Name: "Adam", Labels: map[string]string{"gender": "male"}},
		}})
	}))
	defer srv.Close()

	p, err := New("xi-test", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	voices, err := p.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("got %d voices, want 2", len(voices))
	}
	if voices[0].ID != "v1" || voices[0].Name != "Rachel" || voices[0].Gender != "female" {
		t.Errorf("voice[0] = %+v", voices[0])
	}
	if voices[0].Provider != "elevenlabs" {
		t.Errorf("provider = %q", voices[0].Provider)
	}
	if voices[0].Metadata["category"] != "premade" || voices[0].Metadata["accent"] != "american" {
		t.Errorf("metadata = %v", voices[0].Metadata)
	}
}

func TestListVoices_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p, _ := New("wrong-key", WithBaseURL(srv.URL))
	if _, err := p.ListVoices(context.Background()); err == nil {
		t.Error("expected error for HTTP 401")
	}
}
