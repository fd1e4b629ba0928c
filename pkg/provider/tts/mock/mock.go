// Package mock provides a test double for the tts.Provider interface.
//
// Use Provider to feed controlled audio to consumers and to verify that the
// correct text, VoiceProfile, and OutputFormat are passed to the TTS backend.
//
// Example:
//
//	p := &mock.Provider{
//	    SynthesizeData: []byte("fake-wav"),
//	    ListVoicesResult: []tts.VoiceProfile{{ID: "v1", Name: "Alice"}},
//	}
//	audio, _ := p.Synthesize(ctx, "Hello", voice, format)
package mock

import (
	"context"
	"sync"

	"github.com/papercast-dev/papercast/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Ctx is the context passed to Synthesize.
	Ctx context.Context
	// Text is the utterance text passed to Synthesize.
	Text string
	// Voice is the VoiceProfile passed to Synthesize.
	Voice tts.VoiceProfile
	// Format is the OutputFormat passed to Synthesize.
	Format tts.OutputFormat
}

// ListVoicesCall records a single invocation of ListVoices.
type ListVoicesCall struct {
	// Ctx is the context passed to ListVoices.
	Ctx context.Context
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// SynthesizeData is returned (wrapped in tts.Buffer) from Synthesize when
	// SynthesizeFunc is nil.
	SynthesizeData []byte

	// SynthesizeChunks, when non-nil, takes precedence over SynthesizeData:
	// Synthesize returns a tts.Stream that emits these chunks then closes.
	SynthesizeChunks [][]byte

	// SynthesizeErr, if non-nil, is returned as the error from Synthesize.
	SynthesizeErr error

	// SynthesizeFunc, if non-nil, overrides all of the above and computes the
	// result per call. Useful for per-utterance failure injection.
	SynthesizeFunc func(call SynthesizeCall) (tts.Audio, error)

	// ListVoicesResult is returned by ListVoices.
	ListVoicesResult []tts.VoiceProfile

	// ListVoicesErr, if non-nil, is returned as the error from ListVoices.
	ListVoicesErr error

	// --- Call records ---

	// SynthesizeCalls records every call to Synthesize in order.
	SynthesizeCalls []SynthesizeCall

	// ListVoicesCalls records every call to ListVoices in order.
	ListVoicesCalls []ListVoicesCall
}

// Synthesize records the call and returns the configured result.
func (p *Provider) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile, format tts.OutputFormat) (tts.Audio, error) {
	call := SynthesizeCall{Ctx: ctx, Text: text, Voice: voice, Format: format}

	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, call)
	fn := p.SynthesizeFunc
	err := p.SynthesizeErr
	data := p.SynthesizeData
	chunks := make([][]byte, len(p.SynthesizeChunks))
	copy(chunks, p.SynthesizeChunks)
	p.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	if err != nil {
		return tts.Audio{}, err
	}
	if len(chunks) > 0 {
		ch := make(chan []byte, len(chunks))
		for _, c := range chunks {
			ch <- c
		}
		close(ch)
		return tts.Stream(ch), nil
	}
	return tts.Buffer(data), nil
}

// ListVoices records the call and returns ListVoicesResult, ListVoicesErr.
func (p *Provider) ListVoices(ctx context.Context) ([]tts.VoiceProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListVoicesCalls = append(p.ListVoicesCalls, ListVoicesCall{Ctx: ctx})
	return p.ListVoicesResult, p.ListVoicesErr
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = nil
	p.ListVoicesCalls = nil
}

// Ensure Provider implements tts.Provider at compile time.
var _ tts.Provider = (*Provider)(nil)
