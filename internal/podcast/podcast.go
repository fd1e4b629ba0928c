// Package podcast defines the episode record and its persistence interfaces.
// Two Store implementations exist: a JSON file store for single-node
// deployments and a PostgreSQL store for shared ones.
package podcast

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no podcast with the requested ID exists.
var ErrNotFound = errors.New("podcast: not found")

// wordsPerMinute is the speaking rate used for duration estimates.
const wordsPerMinute = 150

// Podcast is one generated episode.
type Podcast struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"` // podcast, debate, or duck
	CreatedAt time.Time `json:"createdAt"`
	// Duration is the estimated length in seconds.
	Duration int `json:"duration"`
	// AudioURL points at the rendered audio, or "#" until a render finishes.
	AudioURL string `json:"audioUrl"`
	CoverURL string `json:"cover_url,omitempty"`
	Listened bool   `json:"listened"`
	Script   string `json:"script,omitempty"`
}

// Store persists podcast records.
type Store interface {
	// Save inserts a new podcast record.
	Save(ctx context.Context, p *Podcast) error
	// List returns all podcasts, newest first.
	List(ctx context.Context) ([]Podcast, error)
	// Get returns one podcast by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Podcast, error)
	// Delete removes a podcast by ID, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// SetAudioURL updates the audio URL and returns the updated record.
	SetAudioURL(ctx context.Context, id, url string) (*Podcast, error)
	// SetCoverURL updates the cover URL and returns the updated record.
	SetCoverURL(ctx context.Context, id, url string) (*Podcast, error)
	// SetTitle updates the title and returns the updated record.
	SetTitle(ctx context.Context, id, title string) (*Podcast, error)
	// ToggleListened flips the listened flag and returns the updated record.
	ToggleListened(ctx context.Context, id string) (*Podcast, error)
}

// New builds a podcast record for a freshly generated script. The duration is
// estimated from the script length; audioURL may be empty until a render
// completes.
func New(title, format, script, audioURL string) *Podcast {
	if audioURL == "" {
		audioURL = "#"
	}
	return &Podcast{
		ID:        uuid.NewString(),
		Title:     title,
		Format:    strings.ToLower(format),
		CreatedAt: time.Now().UTC(),
		Duration:  EstimateDuration(script),
		AudioURL:  audioURL,
		Script:    script,
	}
}

// EstimateDuration approximates the spoken length of a script in seconds at
// 150 words per minute, with a one-minute floor. An empty script defaults to
// ten minutes.
func EstimateDuration(script string) int {
	if strings.TrimSpace(script) == "" {
		return 600
	}
	words := len(strings.Fields(script))
	seconds := words * 60 / wordsPerMinute
	if seconds < 60 {
		return 60
	}
	return seconds
}
