package script

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseBasicDialogue(t *testing.T) {
	raw := "[Host]: Welcome.\n\n[Guest]: Thanks for having me.\n\n[Host]: Let's begin."

	got := Parse(raw)
	want := []Utterance{
		{Speaker: "Host", Text: "Welcome."},
		{Speaker: "Guest", Text: "Thanks for having me."},
		{Speaker: "Host", Text: "Let's begin."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}

	speakers := DistinctSpeakers(got)
	if !reflect.DeepEqual(speakers, []string{"Host", "Guest"}) {
		t.Errorf("DistinctSpeakers() = %v, want [Host Guest]", speakers)
	}
}

func TestParseStripsClosingTagBlock(t *testing.T) {
	raw := "<plan>some planning notes</plan>\n[A]: Hi\n[B]: Hello"

	got := Parse(raw)
	want := []Utterance{
		{Speaker: "A", Text: "Hi"},
		{Speaker: "B", Text: "Hello"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseStripsLeadingNonDialogueLines(t *testing.T) {
	raw := strings.Join([]string{
		"Here is your podcast script about photosynthesis.",
		"It features two speakers discussing the topic in depth.",
		"",
		"[Sam]: Plants are amazing.",
		"[Alex]: They really are.",
	}, "\n")

	got := Parse(raw)
	if len(got) != 2 || got[0].Speaker != "Sam" || got[1].Speaker != "Alex" {
		t.Errorf("leading prose should be dropped, got %+v", got)
	}
}

func TestParseDiscardsMetadataTurns(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"tone", "Tone: formal and friendly"},
		{"title", "Title: The Great Debate"},
		{"length", "Length: 15 minutes"},
		{"format", "Format: podcast"},
		{"overlong label", "This label is way too long to be a plausible speaker name: text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "[Host]: Welcome.\n" + tt.line + "\n[Guest]: Hi."
			got := Parse(raw)
			want := []Utterance{
				{Speaker: "Host", Text: "Welcome."},
				{Speaker: "Guest", Text: "Hi."},
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("metadata line %q should be discarded, got %+v", tt.line, got)
			}
		})
	}
}

func TestParseMetadataTextNotGluedToPreviousTurn(t *testing.T) {
	raw := "[Host]: Welcome.\nTone: casual\nstill casual notes\n[Guest]: Hi."

	got := Parse(raw)
	if len(got) != 2 {
		t.Fatalf("got %d turns, want 2: %+v", len(got), got)
	}
	if got[0].Text != "Welcome." {
		t.Errorf("metadata continuation leaked into previous turn: %q", got[0].Text)
	}
}

func TestParseMultiLineTurns(t *testing.T) {
	raw := strings.Join([]string{
		"[Host]: This is the first sentence.",
		"And this continues the same turn.",
		"So does this.",
		"",
		"[Guest]: Short reply.",
	}, "\n")

	got := Parse(raw)
	want := []Utterance{
		{Speaker: "Host", Text: "This is the first sentence. And this continues the same turn. So does this."},
		{Speaker: "Guest", Text: "Short reply."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseBlankLineClosesTurn(t *testing.T) {
	// Content after a blank but before the next opener belongs to the same
	// speaker but forms a separate turn.
	raw := "[Host]: Part one.\n\nPart two after a pause.\n\n[Guest]: Hello."

	got := Parse(raw)
	want := []Utterance{
		{Speaker: "Host", Text: "Part one."},
		{Speaker: "Host", Text: "Part two after a pause."},
		{Speaker: "Guest", Text: "Hello."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseSkipsCommentLines(t *testing.T) {
	raw := strings.Join([]string{
		"# stage direction",
		"[Host]: Welcome.",
		"// a note",
		"continued text",
		"/* block note */",
		"",
		"[Guest]: Hi.",
	}, "\n")

	got := Parse(raw)
	want := []Utterance{
		{Speaker: "Host", Text: "Welcome. continued text"},
		{Speaker: "Guest", Text: "Hi."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParsePlainOpeners(t *testing.T) {
	raw := "Host: No brackets here.\nGuest: Same for me."

	got := Parse(raw)
	want := []Utterance{
		{Speaker: "Host", Text: "No brackets here."},
		{Speaker: "Guest", Text: "Same for me."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseEmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\n\t\n"},
		{"no openers", "just prose\nwith no dialogue\nat all"},
		{"only metadata", "Tone: formal\nTitle: Something"},
		{"only a closing tag", "<plan>notes</plan>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); len(got) != 0 {
				t.Errorf("Parse(%q) = %+v, want no turns", tt.raw, got)
			}
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	raw := "<plan>planning</plan>\npreamble line\n[A]: One.\nmore text\n\n[B]: Two.\n\nTone: casual\n[A]: Three."

	first := Parse(raw)
	if len(first) == 0 {
		t.Fatal("first parse produced no turns")
	}

	// Re-serialise the parsed turns the way the model would have written
	// them and parse again: the result must be identical.
	var lines []string
	for _, u := range first {
		lines = append(lines, "["+u.Speaker+"]: "+u.Text, "")
	}
	second := Parse(strings.Join(lines, "\n"))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-parse diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestParseCaseSensitiveSpeakers(t *testing.T) {
	raw := "[Host]: a\n[host]: b"
	got := Parse(raw)
	speakers := DistinctSpeakers(got)
	if len(speakers) != 2 {
		t.Errorf("Host and host must count as distinct labels, got %v", speakers)
	}
}

func TestParseOpenerWithoutTrailingText(t *testing.T) {
	raw := "[Host]:\nThe actual line comes after.\n\n[Guest]: Hi."
	got := Parse(raw)
	want := []Utterance{
		{Speaker: "Host", Text: "The actual line comes after."},
		{Speaker: "Guest", Text: "Hi."},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParseOpenerWithNoTextAtAllEmitsNothing(t *testing.T) {
	raw := "[Host]:\n\n[Guest]: Hi."
	got := Parse(raw)
	want := []Utterance{{Speaker: "Guest", Text: "Hi."}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("turn with no accumulated text should not be emitted, got %+v", got)
	}
}

func TestDistinctSpeakersFirstAppearanceOrder(t *testing.T) {
	utts := []Utterance{
		{Speaker: "C", Text: "1"},
		{Speaker: "A", Text: "2"},
		{Speaker: "C", Text: "3"},
		{Speaker: "B", Text: "4"},
		{Speaker: "A", Text: "5"},
	}
	got := DistinctSpeakers(utts)
	want := []string{"C", "A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DistinctSpeakers() = %v, want %v", got, want)
	}
}
