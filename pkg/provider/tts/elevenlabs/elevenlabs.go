// Package elevenlabs provides an ElevenLabs-backed TTS provider using the
// ElevenLabs streaming WebSocket API. It implements the tts.Provider interface.
//
// Synthesis opens a stream-input WebSocket per utterance, sends the full text,
// and drains base64-encoded PCM chunks until the server signals the end of the
// stream. When the caller asks for a WAV container the drained PCM is wrapped
// in a RIFF header before being returned; raw container requests get the
// chunks as a live stream instead.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/papercast-dev/papercast/pkg/audio"
	"github.com/papercast-dev/papercast/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModel   = "eleven_flash_v2_5"

	streamInputPathFmt = "/v1/text-to-speech/%s/stream-input?model_id=%s&output_format=%s"
	voicesPath         = "/v1/voices"
)

// Option is a functional option for configuring the ElevenLabs Provider.
type Option func(*Provider)

// WithModel sets the ElevenLabs model ID (e.g., "eleven_flash_v2_5").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL overrides the API base URL (http/https; the WebSocket scheme is
// derived from it). Useful for testing against a local stub server.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the HTTP client used for REST calls and the
// WebSocket handshake.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// Provider implements tts.Provider backed by the ElevenLabs streaming API.
// It is safe for concurrent use; each Synthesize call opens its own socket.
type Provider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a new ElevenLabs Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ---- WebSocket message types ----

// voiceSettings mirrors the ElevenLabs voice_settings object.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// boiMessage is the initial "begin of input" handshake payload.
type boiMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
	XiAPIKey      string         `json:"xi_api_key"`
}

// textMessage is the JSON payload for a text fragment. An empty Text flushes
// and closes the input stream.
type textMessage struct {
	Text string `json:"text"`
}

// audioResponse is the JSON message received over the WebSocket.
type audioResponse struct {
	Audio   string `json:"audio"` // base64-encoded PCM
	IsFinal bool   `json:"isFinal"`
	Message string `json:"message,omitempty"` // error or info
}

// ---- Synthesize ----

// Synthesize opens a stream-input WebSocket, sends text, and returns the
// synthesised audio.
//
// For format.Container == "wav" the PCM stream is drained and wrapped in a
// RIFF header so the result is a complete, decodable WAV file. For "raw" the
// returned Audio streams PCM chunks as they arrive.
func (p *Provider) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile, format tts.OutputFormat) (tts.Audio, error) {
	if text == "" {
		return tts.Audio{}, errors.New("elevenlabs: text must not be empty")
	}
	if voice.ID == "" {
		return tts.Audio{}, errors.New("elevenlabs: voice.ID must not be empty")
	}

	wsURL := p.streamInputURL(voice.ID, format)
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPClient: p.httpClient})
	if err != nil {
		return tts.Audio{}, fmt.Errorf("elevenlabs: dial: %w", err)
	}

	// BOI, the utterance, then the empty-text flush that closes input.
	msgs := []any{
		boiMessage{
			Text:          " ", // the API requires a non-empty first text value
			VoiceSettings: &voiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
			XiAPIKey:      p.apiKey,
		},
		textMessage{Text: text},
		textMessage{Text: ""},
	}
	for _, m := range msgs {
		raw, _ := json.Marshal(m)
		if err := conn.Write(ctx, websocket.MessageText, raw); err != nil {
			conn.Close(websocket.StatusInternalError, "write failed")
			return tts.Audio{}, fmt.Errorf("elevenlabs: send: %w", err)
		}
	}

	ch := make(chan []byte, 64)
	go func() {
		defer close(ch)
		defer conn.Close(websocket.StatusNormalClosure, "done")

		for {
			_, msg, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var resp audioResponse
			if err := json.Unmarshal(msg, &resp); err != nil {
				continue
			}
			if resp.Audio != "" {
				pcm, err := base64.StdEncoding.DecodeString(resp.Audio)
				if err == nil && len(pcm) > 0 {
					select {
					case ch <- pcm:
					case <-ctx.Done():
						return
					}
				}
			}
			if resp.IsFinal {
				return
			}
		}
	}()

	if strings.EqualFold(format.Container, "wav") {
		return p.wrapWAV(ch, format)
	}
	return tts.Stream(ch), nil
}

// wrapWAV drains the PCM chunk channel and encodes a complete WAV file. The
// stream-input API emits 16-bit little-endian mono PCM at the requested rate.
func (p *Provider) wrapWAV(ch <-chan []byte, format tts.OutputFormat) (tts.Audio, error) {
	pcm := tts.Stream(ch).Collect()
	if len(pcm) == 0 {
		return tts.Audio{}, errors.New("elevenlabs: no audio received")
	}
	clip := audio.Clip{Data: pcm, SampleRate: format.SampleRate, Channels: 1}
	var buf bytes.Buffer
	if err := audio.EncodeWAV(&buf, clip); err != nil {
		return tts.Audio{}, fmt.Errorf("elevenlabs: encode wav: %w", err)
	}
	return tts.Buffer(buf.Bytes()), nil
}

// streamInputURL builds the WebSocket URL for a voice and output format,
// deriving the ws/wss scheme from the configured base URL.
func (p *Provider) streamInputURL(voiceID string, format tts.OutputFormat) string {
	base := p.baseURL
	if after, ok := strings.CutPrefix(base, "https://"); ok {
		base = "wss://" + after
	} else if after, ok := strings.CutPrefix(base, "http://"); ok {
		base = "ws://" + after
	}
	return base + fmt.Sprintf(streamInputPathFmt, voiceID, p.model, outputFormatString(format))
}

// outputFormatString maps an OutputFormat to the ElevenLabs output_format
// query value. The stream-input API only emits raw PCM; the container is
// applied on our side.
func outputFormatString(format tts.OutputFormat) string {
	rate := format.SampleRate
	switch rate {
	case 16000, 22050, 24000, 44100:
	default:
		rate = 44100
	}
	return fmt.Sprintf("pcm_%d", rate)
}

// ---- ListVoices ----

// voicesResponse is the top-level response from GET /v1/voices.
type voicesResponse struct {
	Voices []elevenLabsVoice `json:"voices"`
}

// elevenLabsVoice is a single voice entry from the ElevenLabs API.
type elevenLabsVoice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Labels   map[string]string `json:"labels"`
}

// ListVoices returns all voices available from ElevenLabs for the configured
// API key.
func (p *Provider) ListVoices(ctx context.Context) ([]tts.VoiceProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+voicesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs: list voices: unexpected status %d", resp.StatusCode)
	}

	var vr voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices decode: %w", err)
	}
	return mapVoices(vr), nil
}

// mapVoices converts the API response into VoiceProfiles, carrying the voice
// labels and category through as metadata.
func mapVoices(vr voicesResponse) []tts.VoiceProfile {
	profiles := make([]tts.VoiceProfile, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		meta := make(map[string]string, len(v.Labels)+1)
		for k, val := range v.Labels {
			meta[k] = val
		}
		if v.Category != "" {
			meta["category"] = v.Category
		}
		profiles = append(profiles, tts.VoiceProfile{
			ID:       v.VoiceID,
			Name:     v.Name,
			Provider: "elevenlabs",
			Gender:   v.Labels["gender"],
			Metadata: meta,
		})
	}
	return profiles
}
