package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/pkg/provider/image"
)

type coverRequest struct {
	PodcastID string `json:"podcast_id"`
}

// handleGenerateCover creates cover art for a podcast, saves the image under
// the static covers directory, and stores the resulting URL on the record.
func (s *Server) handleGenerateCover(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeError(w, http.StatusServiceUnavailable, "cover art generation is not configured")
		return
	}

	var req coverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PodcastID == "" {
		writeError(w, http.StatusBadRequest, "podcast_id is required")
		return
	}

	pod, err := s.podcasts.Get(r.Context(), req.PodcastID)
	if errors.Is(err, podcast.ErrNotFound) {
		writeError(w, http.StatusNotFound, "podcast not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load podcast")
		return
	}

	prompt := image.CoverPrompt(pod.Title, pod.Format, pod.Script)
	result, err := s.images.Generate(r.Context(), image.Request{Prompt: prompt})
	if err != nil {
		s.log.ErrorContext(r.Context(), "cover generation failed", "podcast_id", pod.ID, "error", err)
		writeError(w, http.StatusBadGateway, "cover generation failed")
		return
	}

	dir := filepath.Join(s.staticDir, "covers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "could not store cover image")
		return
	}
	name := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(dir, name), result.Data, 0o644); err != nil {
		writeError(w, http.StatusInternalServerError, "could not store cover image")
		return
	}

	coverURL := "/static/covers/" + name
	updated, err := s.podcasts.SetCoverURL(r.Context(), pod.ID, coverURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update podcast")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cover_url": coverURL,
		"podcast":   updated,
	})
}
