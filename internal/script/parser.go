// Package script parses loosely structured, LLM-authored dialogue scripts
// into an ordered sequence of speaker turns.
//
// Input is free-form text that may begin with planning or metadata markup the
// model produced before the actual dialogue. Parsing is deliberately
// heuristic — the input is model output, not a designed wire format — and
// follows a small set of rules:
//
//   - Everything up to and including the first closing markup tag (</...>)
//     is discarded, then leading lines are dropped until the first line that
//     looks like a dialogue opener ("[Name]: ..." or "Name: ...").
//   - An opener line starts a new turn; following non-empty, non-opener lines
//     are appended to it, space-joined.
//   - A blank line closes the current turn. The speaker is remembered, so
//     further continuation lines after the blank open a fresh turn under the
//     same label.
//   - Openers whose label looks like metadata ("Tone: formal", "Title: ...")
//     or is implausibly long are discarded along with their turn.
//   - Comment lines (#, //, /*) are always skipped.
//
// Parsing holds no state between calls: running Parse on its own output (a
// join of the emitted turns) yields the same turns again.
package script

import (
	"regexp"
	"strings"
)

// Utterance is one turn of dialogue: a speaker label exactly as it appeared
// in the script, and the space-joined text of the turn. Utterances are
// created once per parse and never mutated.
type Utterance struct {
	// Speaker is the raw label, case preserved.
	Speaker string

	// Text is the spoken content for this turn.
	Text string
}

// maxSpeakerLen is the longest label accepted as a real speaker. Longer
// "labels" are invariably metadata sentences that happen to contain a colon.
const maxSpeakerLen = 30

// metadataKeywords mark opener labels that are script metadata rather than
// dialogue (e.g. "Tone: formal and friendly", "Title: ...").
var metadataKeywords = []string{
	"title", "guest", "tone", "length", "format",
	"topic", "desired", "include", "conversational",
}

var (
	// closingTagRE matches the first closing markup tag, e.g. </script_planning>.
	closingTagRE = regexp.MustCompile(`</[^>]+>`)

	// bracketOpenerRE matches "[Speaker]: text" openers.
	bracketOpenerRE = regexp.MustCompile(`^\[(.*?)\]:\s*(.*)$`)

	// plainOpenerRE matches "Speaker: text" openers whose label contains no
	// brackets.
	plainOpenerRE = regexp.MustCompile(`^([^\[\]]+):\s*(.*)$`)
)

// Parse converts raw script text into the ordered sequence of utterances it
// contains. The returned slice is empty when no dialogue openers are
// recognised; callers must treat that as a failed script, not as an empty
// podcast.
func Parse(raw string) []Utterance {
	content := stripLeading(raw)

	var (
		turns   []Utterance
		speaker string
		parts   []string
	)

	flush := func() {
		if speaker != "" && len(parts) > 0 {
			turns = append(turns, Utterance{Speaker: speaker, Text: strings.Join(parts, " ")})
		}
		parts = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			// Blank line closes the turn; the speaker carries over so any
			// continuation after the blank starts a new turn for them.
			flush()
			continue
		}

		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") {
			continue
		}

		if label, rest, ok := matchOpener(line); ok {
			flush()
			if isMetadataLabel(label) {
				// Discard the whole turn: not emitted, and not glued onto
				// the previous speaker either.
				speaker = ""
				continue
			}
			speaker = label
			if rest != "" {
				parts = []string{rest}
			}
			continue
		}

		// Continuation of the current turn; orphan lines before any opener
		// are dropped.
		if speaker != "" {
			parts = append(parts, line)
		}
	}

	flush()
	return turns
}

// DistinctSpeakers returns the distinct speaker labels of utts in
// first-appearance order. Labels are compared case-sensitively: "Host" and
// "host" are two speakers (and will receive two voices).
func DistinctSpeakers(utts []Utterance) []string {
	seen := make(map[string]struct{}, 4)
	var out []string
	for _, u := range utts {
		if _, ok := seen[u.Speaker]; ok {
			continue
		}
		seen[u.Speaker] = struct{}{}
		out = append(out, u.Speaker)
	}
	return out
}

// stripLeading removes planning/metadata content before the dialogue: first
// everything up to and including the first closing markup tag, then any
// remaining leading lines that are not dialogue openers. The opener scan runs
// on the already tag-stripped text.
func stripLeading(raw string) string {
	content := raw
	if loc := closingTagRE.FindStringIndex(content); loc != nil {
		content = strings.TrimSpace(content[loc[1]:])
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if _, _, ok := matchOpener(strings.TrimSpace(line)); ok {
			if i > 0 {
				return strings.Join(lines[i:], "\n")
			}
			return content
		}
	}
	return content
}

// matchOpener reports whether line starts a speaker turn, returning the
// trimmed label and the trailing text on the opener line.
func matchOpener(line string) (label, rest string, ok bool) {
	if m := bracketOpenerRE.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	if m := plainOpenerRE.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
	}
	return "", "", false
}

// isMetadataLabel reports whether a captured opener label is script metadata
// masquerading as a speaker.
func isMetadataLabel(label string) bool {
	if len(label) > maxSpeakerLen {
		return true
	}
	lower := strings.ToLower(label)
	for _, kw := range metadataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
