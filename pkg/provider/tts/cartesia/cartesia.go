// Package cartesia provides a Cartesia-backed TTS provider using the Cartesia
// REST API. It implements the tts.Provider interface.
//
// Synthesis is performed via POST /tts/bytes, which returns the complete
// encoded audio for one utterance in a single response body. The voice
// catalogue is retrieved from GET /voices.
//
// Typical usage:
//
//	p, err := cartesia.New("ck_...",
//	    cartesia.WithModel("sonic-2"),
//	    cartesia.WithTimeout(60*time.Second),
//	)
//	audio, err := p.Synthesize(ctx, "Hello!", voice, tts.DefaultOutputFormat())
package cartesia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercast-dev/papercast/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Provider = (*Provider)(nil)

// ---- constants ----

const (
	defaultBaseURL  = "https://api.cartesia.ai"
	defaultModel    = "sonic-2"
	defaultLanguage = "en"
	defaultTimeout  = 60 * time.Second

	// apiVersion is sent in the Cartesia-Version header. The API rejects
	// requests without it.
	apiVersion = "2024-06-10"

	ttsBytesEndpoint = "/tts/bytes"
	voicesEndpoint   = "/voices"
)

// ---- options ----

// Option is a functional option for configuring a Cartesia Provider.
type Option func(*Provider)

// WithModel sets the synthesis model ID. Defaults to "sonic-2".
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the BCP-47 language code sent with synthesis requests.
// Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithBaseURL overrides the API base URL. Useful for testing against a local
// stub server.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 60 s; synthesis
// of long utterances can take a while.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// ---- Provider ----

// Provider implements tts.Provider backed by the Cartesia REST API.
// It is safe for concurrent use.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a new Cartesia Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("cartesia: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		model:    defaultModel,
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// ---- internal request/response types ----

// voiceSpec selects a voice by ID in the synthesis request body.
type voiceSpec struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

// outputFormatSpec mirrors tts.OutputFormat in Cartesia's wire schema.
type outputFormatSpec struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

// ttsBytesRequest is the JSON body sent to POST /tts/bytes.
type ttsBytesRequest struct {
	ModelID      string           `json:"model_id"`
	Transcript   string           `json:"transcript"`
	Voice        voiceSpec        `json:"voice"`
	OutputFormat outputFormatSpec `json:"output_format"`
	Language     string           `json:"language,omitempty"`
}

// apiVoice is one entry of the GET /voices response.
type apiVoice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Gender      string `json:"gender"`
	Language    string `json:"language"`
}

// apiError is the JSON error body Cartesia returns on failures.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ---- Synthesize ----

// Synthesize performs a single POST /tts/bytes call and returns the complete
// encoded audio as a buffered tts.Audio.
//
// Quota exhaustion (HTTP 402, or an error body mentioning a reached credit
// limit) is returned as a *tts.QuotaError so callers can stop issuing further
// synthesis requests.
func (p *Provider) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile, format tts.OutputFormat) (tts.Audio, error) {
	if text == "" {
		return tts.Audio{}, errors.New("cartesia: text must not be empty")
	}
	if voice.ID == "" {
		return tts.Audio{}, errors.New("cartesia: voice.ID must not be empty")
	}

	body := ttsBytesRequest{
		ModelID:    p.model,
		Transcript: text,
		Voice:      voiceSpec{Mode: "id", ID: voice.ID},
		OutputFormat: outputFormatSpec{
			Container:  format.Container,
			Encoding:   format.Encoding,
			SampleRate: format.SampleRate,
		},
		Language: p.language,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("cartesia: marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+ttsBytesEndpoint, bytes.NewReader(data))
	if err != nil {
		return tts.Audio{}, fmt.Errorf("cartesia: create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.apiKey)
	req.Header.Set("Cartesia-Version", apiVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("cartesia: POST %s: %w", ttsBytesEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tts.Audio{}, p.statusError(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return tts.Audio{}, fmt.Errorf("cartesia: read audio response: %w", err)
	}
	if len(audio) == 0 {
		return tts.Audio{}, errors.New("cartesia: empty audio response")
	}
	return tts.Buffer(audio), nil
}

// statusError converts a non-200 response into an error, detecting quota
// exhaustion from the status code and error body.
func (p *Provider) statusError(resp *http.Response) error {
	// Error bodies are small; cap the read regardless.
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := strings.TrimSpace(string(raw))
	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		if apiErr.Error != "" {
			msg = apiErr.Error
		} else if apiErr.Message != "" {
			msg = apiErr.Message
		}
	}

	if resp.StatusCode == http.StatusPaymentRequired || containsQuotaPhrase(msg) {
		return &tts.QuotaError{Provider: "cartesia", Message: msg}
	}
	return fmt.Errorf("cartesia: POST %s returned status %d: %s", ttsBytesEndpoint, resp.StatusCode, msg)
}

// containsQuotaPhrase reports whether an error message indicates quota
// exhaustion even when the status code does not.
func containsQuotaPhrase(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "credit limit reached") ||
		strings.Contains(lower, "quota exceeded") ||
		strings.Contains(lower, "insufficient credits")
}

// ---- ListVoices ----

// ListVoices retrieves the voice catalogue via GET /voices and maps each
// entry to a VoiceProfile.
func (p *Provider) ListVoices(ctx context.Context) ([]tts.VoiceProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+voicesEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cartesia: create list-voices request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", p.apiKey)
	req.Header.Set("Cartesia-Version", apiVersion)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartesia: GET %s: %w", voicesEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cartesia: GET %s returned status %d", voicesEndpoint, resp.StatusCode)
	}

	var voices []apiVoice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, fmt.Errorf("cartesia: decode voices response: %w", err)
	}

	profiles := make([]tts.VoiceProfile, 0, len(voices))
	for _, v := range voices {
		profiles = append(profiles, tts.VoiceProfile{
			ID:       v.ID,
			Name:     v.Name,
			Provider: "cartesia",
			Gender:   v.Gender,
			Metadata: map[string]string{
				"description": v.Description,
				"language":    v.Language,
			},
		})
	}
	return profiles, nil
}
