// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., Cartesia or
// ElevenLabs) and presents a uniform batch interface: one Synthesize call per
// utterance, returning the complete audio for that utterance. Podcast
// rendering has no real-time requirement, so batch synthesis keeps the
// per-utterance failure handling simple — one failed call maps to exactly one
// failed segment.
//
// Backends differ in how they deliver audio: some return a single byte buffer
// per request, others stream chunks. The [Audio] result type carries either
// shape; callers normalise it with [Audio.Collect] before touching the bytes.
//
// Implementations must be safe for concurrent use. Multiple render runs may
// synthesise through the same provider at once.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize converts text into audio using the given voice and output
	// format. The returned Audio holds either a complete buffer or a chunk
	// stream depending on the backend; call [Audio.Collect] to obtain one
	// contiguous byte slice.
	//
	// Quota and credit exhaustion should be reported as (or wrapped around) a
	// [*QuotaError] so callers can apply their degraded-completion policy;
	// [IsQuotaExhausted] also recognises well-known message phrases from
	// backends that only report quota state as free text.
	Synthesize(ctx context.Context, text string, voice VoiceProfile, format OutputFormat) (Audio, error)

	// ListVoices returns all voice profiles available from this provider. The
	// list reflects the provider's current catalogue and may change between
	// calls if the underlying service adds or removes voices.
	ListVoices(ctx context.Context) ([]VoiceProfile, error)
}
