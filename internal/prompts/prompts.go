// Package prompts loads and formats the system prompt templates used for
// script generation. Each conversation style (podcast, debate, duck) has its
// own template; templates can be overridden per deployment by dropping
// <style>_prompt.txt files into a directory.
package prompts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Style selects which script format the generated conversation follows.
type Style string

const (
	// StylePodcast is a host/guest interview conversation.
	StylePodcast Style = "podcast"
	// StyleDebate pits two debaters against each other.
	StyleDebate Style = "debate"
	// StyleDuck is a teacher explaining to a student, rubber-duck style.
	StyleDuck Style = "duck"
)

// documentSeparator joins multiple extracted documents into one prompt body.
const documentSeparator = "\n\n--- NEW DOCUMENT ---\n\n"

// Settings are the per-style defaults surfaced alongside a generated script.
type Settings struct {
	HostName          string `json:"host_name"`
	GuestName         string `json:"guest_name"`
	Title             string `json:"title"`
	LengthMinutes     int    `json:"length_in_minutes"`
	Tone              string `json:"tone"`
	IncludeIntroOutro bool   `json:"include_intro_outro"`
}

// styleNames maps each style to its default speaker labels.
var styleNames = map[Style][2]string{
	StylePodcast: {"Host", "Guest"},
	StyleDebate:  {"Debater A", "Debater B"},
	StyleDuck:    {"Teacher", "Student"},
}

// NormalizeStyle lowercases a style string and falls back to podcast for
// unknown values.
func NormalizeStyle(s string) Style {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := styleNames[style]; !ok {
		return StylePodcast
	}
	return style
}

// DefaultSettings returns the default generation settings for a style.
func DefaultSettings(style Style) Settings {
	names, ok := styleNames[style]
	if !ok {
		names = styleNames[StylePodcast]
	}
	return Settings{
		HostName:          names[0],
		GuestName:         names[1],
		Title:             "PDF Discussion",
		LengthMinutes:     15,
		Tone:              "conversational",
		IncludeIntroOutro: true,
	}
}

// CombineDocuments joins extracted document texts with a separator marker so
// the model can tell where one source ends and the next begins.
func CombineDocuments(texts []string) string {
	return strings.Join(texts, documentSeparator)
}

// templateData is the data passed to a system prompt template.
type templateData struct {
	// DocumentText is the combined text of all uploaded documents.
	DocumentText string
	// UserInstructions is the rendered preference block.
	UserInstructions string
	// Defaults are the style's default settings.
	Defaults Settings
}

// Library resolves system prompt templates for each style. When a directory
// is configured and contains a <style>_prompt.txt file it takes precedence;
// otherwise the built-in template is used.
type Library struct {
	dir string
}

// NewLibrary creates a Library. dir may be empty to use only the built-in
// templates.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Load returns the raw template text for a style.
func (l *Library) Load(style Style) (string, error) {
	style = NormalizeStyle(string(style))
	if l.dir != "" {
		path := filepath.Join(l.dir, string(style)+"_prompt.txt")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("prompts: read template %s: %w", path, err)
		}
	}
	tmpl, ok := builtinTemplates[style]
	if !ok {
		return "", fmt.Errorf("prompts: no template for style %q", style)
	}
	return tmpl, nil
}

// Format renders the system prompt for a style: the template filled with the
// combined document text and the user preference block.
func (l *Library) Format(style Style, documents []string, userMessage string) (string, error) {
	raw, err := l.Load(style)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(string(style)).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("prompts: parse template for style %q: %w", style, err)
	}

	var b strings.Builder
	err = tmpl.Execute(&b, templateData{
		DocumentText:     CombineDocuments(documents),
		UserInstructions: preferenceBlock(userMessage),
		Defaults:         DefaultSettings(style),
	})
	if err != nil {
		return "", fmt.Errorf("prompts: render template for style %q: %w", style, err)
	}
	return b.String(), nil
}

// preferenceBlock renders the user's free-form preferences into the block the
// templates splice in.
func preferenceBlock(userMessage string) string {
	if strings.TrimSpace(userMessage) == "" {
		return "No specific preferences provided. Use default settings."
	}
	return fmt.Sprintf(`USER PREFERENCES:
%s

Use the preferences above to determine host name, guest name, title, length, tone, and whether to include intro/outro.
If any preferences are not specified, use reasonable defaults.`, userMessage)
}
