package tts

// VoiceProfile describes a synthetic voice offered by a TTS backend.
type VoiceProfile struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Provider identifies which TTS backend this voice belongs to.
	Provider string

	// Gender is the perceptual voice category reported by the backend
	// ("male", "female", or empty when unknown). Used to pick maximally
	// contrasting voices for two-speaker scripts.
	Gender string

	// Metadata holds provider-specific voice attributes (age, accent, etc.).
	Metadata map[string]string
}

// OutputFormat describes the audio container and encoding requested from a
// backend.
type OutputFormat struct {
	// Container is the audio container, e.g. "wav" or "raw".
	Container string

	// SampleRate in Hz.
	SampleRate int

	// Encoding is the sample encoding, e.g. "pcm_f32le" or "pcm_s16le".
	Encoding string
}

// DefaultOutputFormat is the format requested for podcast segments:
// WAV container, 44.1 kHz, 32-bit float PCM.
func DefaultOutputFormat() OutputFormat {
	return OutputFormat{
		Container:  "wav",
		SampleRate: 44100,
		Encoding:   "pcm_f32le",
	}
}

// Audio is the tagged result of a synthesis call. Exactly one variant is set:
// a complete byte buffer ([Buffer]) or a stream of chunks ([Stream]). Callers
// resolve it into one contiguous buffer via [Audio.Collect] immediately after
// the provider call; nothing downstream of that boundary branches on the
// variant.
type Audio struct {
	data   []byte
	chunks <-chan []byte
}

// Buffer wraps a complete audio byte buffer.
func Buffer(data []byte) Audio {
	return Audio{data: data}
}

// Stream wraps a channel of audio chunks. The channel must be closed by the
// producer once all chunks have been sent; [Audio.Collect] drains it fully.
func Stream(ch <-chan []byte) Audio {
	return Audio{chunks: ch}
}

// Collect resolves the audio into a single contiguous byte slice. For a
// buffered result it returns the buffer unchanged; for a streamed result it
// drains the channel and concatenates all chunks in arrival order.
func (a Audio) Collect() []byte {
	if a.chunks == nil {
		return a.data
	}
	var out []byte
	for chunk := range a.chunks {
		out = append(out, chunk...)
	}
	return out
}
