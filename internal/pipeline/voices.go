package pipeline

import "github.com/papercast-dev/papercast/pkg/provider/tts"

// DefaultPalette returns the built-in voice palette: five male voices
// followed by five female voices. Assignment alternates across the gender
// halves for small casts so two-person shows get one of each.
func DefaultPalette() []tts.VoiceProfile {
	return []tts.VoiceProfile{
		{ID: "694f9389-aac1-45b6-b726-9d9369183238", Name: "Taylor", Provider: "cartesia", Gender: "male"},
		{ID: "a0e99841-438c-4a64-b679-ae501e7d6091", Name: "Brooks", Provider: "cartesia", Gender: "male"},
		{ID: "d46abd1d-2d02-43e8-819f-51fb652c1c61", Name: "Nathan", Provider: "cartesia", Gender: "male"},
		{ID: "f146dcec-e481-45be-8ad2-96e1e40e7f32", Name: "Marcus", Provider: "cartesia", Gender: "male"},
		{ID: "34575e71-908f-4ab6-ab54-b08c95d6597d", Name: "Oliver", Provider: "cartesia", Gender: "male"},
		{ID: "bf991597-6c13-47e4-8411-91ec2de5c466", Name: "Naomi", Provider: "cartesia", Gender: "female"},
		{ID: "00a77add-48d5-4ef6-8157-71e5437b282d", Name: "Claire", Provider: "cartesia", Gender: "female"},
		{ID: "156fb8d2-335b-4950-9cb3-a2d33befec77", Name: "Diana", Provider: "cartesia", Gender: "female"},
		{ID: "b7d50908-b17c-442d-ad8d-810c63997ed9", Name: "Sophie", Provider: "cartesia", Gender: "female"},
		{ID: "71a7ad14-091c-4e8e-a314-022ece01c121", Name: "Rachel", Provider: "cartesia", Gender: "female"},
	}
}

// AssignVoices maps each speaker label to a voice from the palette.
// Speakers must be in first-appearance order; the mapping is deterministic
// for a given speaker sequence and palette.
//
// A single speaker gets the first voice. Two speakers get the first voice of
// each gender half. Larger casts cycle through the whole palette in order,
// wrapping when the cast outgrows it.
func AssignVoices(speakers []string, palette []tts.VoiceProfile) map[string]tts.VoiceProfile {
	assigned := make(map[string]tts.VoiceProfile, len(speakers))
	if len(palette) == 0 {
		return assigned
	}

	half := len(palette) / 2
	for i, sp := range speakers {
		var v tts.VoiceProfile
		switch {
		case len(speakers) == 1:
			v = palette[0]
		case len(speakers) == 2 && half > 0:
			if i == 0 {
				v = palette[0]
			} else {
				v = palette[half]
			}
		default:
			v = palette[i%len(palette)]
		}
		assigned[sp] = v
	}
	return assigned
}

// voiceFor looks up the voice for a speaker, falling back to the first
// palette entry for labels that somehow missed assignment.
func voiceFor(assigned map[string]tts.VoiceProfile, palette []tts.VoiceProfile, speaker string) tts.VoiceProfile {
	if v, ok := assigned[speaker]; ok {
		return v
	}
	if len(palette) > 0 {
		return palette[0]
	}
	return tts.VoiceProfile{}
}
