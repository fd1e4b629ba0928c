// Package pipeline turns a dialogue script into a single podcast audio file:
// parse the script into turns, assign a voice per speaker, synthesise each
// turn to its own WAV segment, and concatenate the segments into the output.
//
// The pipeline is deliberately tolerant of per-utterance synthesis failures:
// a failed turn leaves a zero-length placeholder that is filtered out before
// concatenation, so one flaky provider call costs a sentence, not the whole
// episode. Quota exhaustion is the exception — once the provider reports it,
// further synthesis calls are pointless and the run combines whatever audio
// it already has.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/papercast-dev/papercast/internal/observe"
	"github.com/papercast-dev/papercast/internal/progress"
	"github.com/papercast-dev/papercast/internal/script"
	"github.com/papercast-dev/papercast/pkg/audio"
	"github.com/papercast-dev/papercast/pkg/provider/tts"
)

// Pipeline stage names as reported through the progress callback.
const (
	StageInitializing     = "initializing"
	StageParsing          = "parsing"
	StageSpeakerDetection = "speaker_detection"
	StageAudioGeneration  = "audio_generation"
	StageCombining        = "combining"
	StageFinished         = "finished"
	StageError            = "error"
)

// ProgressFunc receives progress snapshots as a render advances. status is
// one of the progress package status constants, step a stage name, pct a
// value in [0, 100]. Callbacks run on the rendering goroutine and must not
// block.
type ProgressFunc func(status, step string, pct int, message string)

// Pipeline renders scripts to audio. Construct with [New]; the zero value is
// not usable.
type Pipeline struct {
	tts     tts.Provider
	concat  audio.Concatenator
	palette []tts.VoiceProfile
	format  tts.OutputFormat
	target  audio.TargetFormat
	scratch string
	log     *slog.Logger
	metrics *observe.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPalette replaces the default voice palette.
func WithPalette(palette []tts.VoiceProfile) Option {
	return func(p *Pipeline) { p.palette = palette }
}

// WithOutputFormat sets the synthesis output format requested from the TTS
// provider.
func WithOutputFormat(f tts.OutputFormat) Option {
	return func(p *Pipeline) { p.format = f }
}

// WithTargetFormat sets the codec of the combined output file.
func WithTargetFormat(f audio.TargetFormat) Option {
	return func(p *Pipeline) { p.target = f }
}

// WithScratchDir sets the parent directory for per-run scratch directories.
// Defaults to the OS temp dir.
func WithScratchDir(dir string) Option {
	return func(p *Pipeline) { p.scratch = dir }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics enables metric recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New creates a Pipeline rendering with the given TTS provider and
// concatenating segments with concat.
func New(ttsProvider tts.Provider, concat audio.Concatenator, opts ...Option) *Pipeline {
	p := &Pipeline{
		tts:     ttsProvider,
		concat:  concat,
		palette: DefaultPalette(),
		format:  tts.DefaultOutputFormat(),
		target:  audio.DefaultTargetFormat(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render converts rawScript into a single audio file at outputPath and
// reports success. It never returns an error: per-utterance failures are
// absorbed (the affected turns are skipped), fatal conditions are reported
// through onProgress with a terminal error snapshot, and even a panic in a
// downstream provider is caught and surfaced the same way. onProgress may be
// nil.
//
// Render succeeds only when the concatenator returns without error AND the
// output file exists non-empty afterwards; the file check guards against a
// concatenator that reports success without producing output.
func (p *Pipeline) Render(ctx context.Context, rawScript, outputPath string, onProgress ProgressFunc) (ok bool) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "pipeline.Render")
	defer span.End()
	log := observe.SpanLogger(ctx, p.log).With(slog.String("output", filepath.Base(outputPath)))

	report := func(status, step string, pct int, message string) {
		if onProgress != nil {
			onProgress(status, step, pct, message)
		}
	}
	fail := func(message string) bool {
		log.Error("render failed", slog.String("reason", message))
		report(progress.StatusError, StageError, 0, message)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("render panicked", slog.Any("panic", r))
			report(progress.StatusError, StageError, 0, fmt.Sprintf("internal error: %v", r))
			ok = false
		}
		if p.metrics != nil {
			status := "error"
			if ok {
				status = "ok"
			}
			p.metrics.RecordRender(ctx, status, time.Since(start).Seconds())
		}
	}()

	if p.metrics != nil {
		p.metrics.ActiveRenders.Add(ctx, 1)
		defer p.metrics.ActiveRenders.Add(ctx, -1)
	}

	// --- initializing ---
	report(progress.StatusProcessing, StageInitializing, 0, "Starting audio generation...")

	scratch, err := os.MkdirTemp(p.scratch, "render-*")
	if err != nil {
		return fail(fmt.Sprintf("could not create scratch directory: %v", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			log.Warn("scratch cleanup failed", slog.String("dir", scratch), slog.Any("error", rmErr))
		}
	}()

	// --- parsing ---
	report(progress.StatusProcessing, StageParsing, 10, "Parsing script...")
	parseStart := time.Now()
	utterances := script.Parse(rawScript)
	p.recordStage(ctx, StageParsing, parseStart)
	if len(utterances) == 0 {
		return fail("no dialogue found in script")
	}

	// --- speaker detection ---
	speakers := script.DistinctSpeakers(utterances)
	report(progress.StatusProcessing, StageSpeakerDetection, 30,
		fmt.Sprintf("Detected %d speakers", len(speakers)))
	assigned := AssignVoices(speakers, p.palette)
	log.Info("speakers detected",
		slog.Int("speakers", len(speakers)),
		slog.Int("utterances", len(utterances)),
	)

	// --- audio generation ---
	report(progress.StatusProcessing, StageAudioGeneration, 50, "Generating audio segments...")
	genStart := time.Now()
	segments := p.renderSegments(ctx, scratch, utterances, assigned, report)
	p.recordStage(ctx, StageAudioGeneration, genStart)
	if ctx.Err() != nil {
		return fail("render cancelled")
	}

	// --- combining ---
	report(progress.StatusProcessing, StageCombining, 80, "Combining audio segments...")
	usable := filterSegments(segments)
	if len(usable) == 0 {
		return fail("no audio segments were generated")
	}
	if len(usable) < len(utterances) {
		log.Warn("some utterances failed to render",
			slog.Int("rendered", len(usable)),
			slog.Int("total", len(utterances)),
		)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fail(fmt.Sprintf("could not create output directory: %v", err))
	}
	combineStart := time.Now()
	concatErr := p.concat.Concatenate(ctx, usable, outputPath, p.target)
	p.recordStage(ctx, StageCombining, combineStart)
	if concatErr != nil {
		// A partial output file may exist; it is not a finished episode.
		return fail(fmt.Sprintf("could not combine audio segments: %v", concatErr))
	}

	// Verify the output file independently of the concatenator's return.
	st, err := os.Stat(outputPath)
	if err != nil || st.Size() == 0 {
		return fail("combined audio file was not produced")
	}

	report(progress.StatusComplete, StageFinished, 100, "Audio generation complete")
	log.Info("render complete",
		slog.Int("segments", len(usable)),
		slog.Int64("bytes", st.Size()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return true
}

// renderSegments synthesises each utterance into scratch/segment_NNN.wav,
// sequentially and in script order. Failed turns leave a zero-length
// placeholder. Returns the path of every segment file, usable or not;
// callers filter. Stops synthesising early on quota exhaustion or context
// cancellation.
func (p *Pipeline) renderSegments(ctx context.Context, scratch string, utterances []script.Utterance, assigned map[string]tts.VoiceProfile, report ProgressFunc) []string {
	paths := make([]string, 0, len(utterances))
	for i, utt := range utterances {
		if ctx.Err() != nil {
			return paths
		}

		path := filepath.Join(scratch, fmt.Sprintf("segment_%03d.wav", i))
		paths = append(paths, path)

		voice := voiceFor(assigned, p.palette, utt.Speaker)
		synthStart := time.Now()
		result, err := p.tts.Synthesize(ctx, utt.Text, voice, p.format)
		if p.metrics != nil {
			p.metrics.TTSDuration.Record(ctx, time.Since(synthStart).Seconds())
		}

		var data []byte
		if err == nil {
			data = result.Collect()
		}
		if err != nil || len(data) == 0 {
			p.log.Warn("utterance synthesis failed",
				slog.Int("index", i),
				slog.String("speaker", utt.Speaker),
				slog.Any("error", err),
			)
			if p.metrics != nil {
				p.metrics.RecordUtterance(ctx, "failed")
			}
			// Placeholder keeps segment numbering stable; the combine
			// stage drops empty files.
			if werr := os.WriteFile(path, nil, 0o644); werr != nil {
				p.log.Warn("placeholder write failed", slog.String("path", path), slog.Any("error", werr))
			}
			if tts.IsQuotaExhausted(err) {
				p.log.Error("voice quota exhausted, stopping synthesis",
					slog.Int("rendered", i),
					slog.Int("remaining", len(utterances)-i-1),
				)
				report(progress.StatusProcessing, StageAudioGeneration,
					progressFor(i, len(utterances)),
					"Voice service quota exhausted; finishing with partial audio")
				return paths
			}
			continue
		}

		if werr := os.WriteFile(path, data, 0o644); werr != nil {
			p.log.Warn("segment write failed", slog.String("path", path), slog.Any("error", werr))
			continue
		}
		if p.metrics != nil {
			p.metrics.RecordUtterance(ctx, "ok")
		}
		report(progress.StatusProcessing, StageAudioGeneration,
			progressFor(i, len(utterances)),
			fmt.Sprintf("Generated audio %d/%d", i+1, len(utterances)))
	}
	return paths
}

// progressFor maps utterance index i of total onto the 50..80 progress band.
func progressFor(i, total int) int {
	if total <= 0 {
		return 50
	}
	return 50 + (i+1)*30/total
}

// filterSegments returns the paths that are worth concatenating: existing,
// non-empty regular files with a .wav extension.
func filterSegments(paths []string) []string {
	var out []string
	for _, path := range paths {
		if !strings.EqualFold(filepath.Ext(path), ".wav") {
			continue
		}
		st, err := os.Stat(path)
		if err != nil || !st.Mode().IsRegular() || st.Size() == 0 {
			continue
		}
		out = append(out, path)
	}
	return out
}

func (p *Pipeline) recordStage(ctx context.Context, stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordStage(ctx, stage, time.Since(start).Seconds())
	}
}
