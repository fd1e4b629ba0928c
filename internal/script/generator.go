package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercast-dev/papercast/internal/observe"
	"github.com/papercast-dev/papercast/internal/prompts"
	"github.com/papercast-dev/papercast/pkg/provider/llm"
)

// maxScriptTokens caps the completion length of one generated script.
const maxScriptTokens = 4000

// generateUserMessage is the fixed user turn; the real instructions travel in
// the system prompt.
const generateUserMessage = "Please convert this content to a script according to my instructions."

// Generator turns extracted document text into a dialogue script with a
// single LLM completion. Construct with [NewGenerator].
type Generator struct {
	llm     llm.Provider
	library *prompts.Library
	log     *slog.Logger
	metrics *observe.Metrics
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger. Defaults to [slog.Default].
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.log = l }
}

// WithGeneratorMetrics enables metric recording.
func WithGeneratorMetrics(m *observe.Metrics) GeneratorOption {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator creates a Generator using the given LLM provider and prompt
// library.
func NewGenerator(provider llm.Provider, library *prompts.Library, opts ...GeneratorOption) *Generator {
	g := &Generator{
		llm:     provider,
		library: library,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a dialogue script from the extracted document texts.
// style selects the prompt template; userMessage carries optional free-form
// listener preferences. The style's default settings are returned alongside
// the script so callers can surface them.
func (g *Generator) Generate(ctx context.Context, documents []string, style prompts.Style, userMessage string) (string, prompts.Settings, error) {
	style = prompts.NormalizeStyle(string(style))
	settings := prompts.DefaultSettings(style)

	if len(documents) == 0 {
		return "", settings, errors.New("script: no document text to generate from")
	}

	systemPrompt, err := g.library.Format(style, documents, userMessage)
	if err != nil {
		return "", settings, fmt.Errorf("script: build system prompt: %w", err)
	}

	start := time.Now()
	resp, err := g.llm.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: generateUserMessage},
		},
		MaxTokens: maxScriptTokens,
	})
	elapsed := time.Since(start)

	if g.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		g.metrics.RecordProviderRequest(ctx, "llm", "complete", status)
		g.metrics.LLMDuration.Record(ctx, elapsed.Seconds())
	}
	if err != nil {
		return "", settings, fmt.Errorf("script: completion failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", settings, errors.New("script: completion returned no content")
	}

	g.log.InfoContext(ctx, "script generated",
		"style", string(style),
		"documents", len(documents),
		"chars", len(resp.Content),
		"duration", elapsed,
	)
	return resp.Content, settings, nil
}
