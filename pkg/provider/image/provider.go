// Package image defines the interface for cover-art image generation
// providers. Implementations turn a text prompt into encoded image bytes.
package image

import (
	"context"
	"fmt"
	"strings"
)

// Request describes a single image generation.
type Request struct {
	// Prompt is the text description of the desired image.
	Prompt string
	// Size is the requested dimensions, e.g. "1024x1024". Implementations
	// fall back to their default when empty.
	Size string
}

// Result is one generated image.
type Result struct {
	// Data holds the encoded image bytes.
	Data []byte
	// MIMEType identifies the encoding, e.g. "image/png".
	MIMEType string
	// RevisedPrompt is the prompt the backend actually used, when the API
	// rewrites prompts (DALL-E 3 does). Empty otherwise.
	RevisedPrompt string
}

// Provider generates images from text prompts.
type Provider interface {
	// Generate produces a single image for the request. Implementations must
	// respect ctx cancellation.
	Generate(ctx context.Context, req Request) (*Result, error)
}

// maxScriptExcerpt caps how much transcript text is folded into a cover
// prompt so the request stays within prompt limits.
const maxScriptExcerpt = 1000

// CoverPrompt builds a cover-art prompt from a podcast's title, style and an
// optional script excerpt.
func CoverPrompt(title, style, script string) string {
	if title == "" {
		title = "Podcast"
	}
	if style == "" {
		style = "podcast"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Square cover art for a %s titled %q. ", style, title)
	b.WriteString("Bold, modern, flat illustration style suitable as podcast artwork. No text or lettering.")

	if script != "" {
		excerpt := script
		if len(excerpt) > maxScriptExcerpt {
			excerpt = excerpt[:maxScriptExcerpt]
		}
		b.WriteString(" The episode covers the following material: ")
		b.WriteString(excerpt)
	}
	return b.String()
}
