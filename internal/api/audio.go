package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/papercast-dev/papercast/internal/pipeline"
	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/internal/progress"
)

type audioRequest struct {
	PodcastID string `json:"podcast_id"`
	Script    string `json:"script"`
}

// handleAudio starts an asynchronous audio render for a podcast and returns
// a run ID the client polls through the progress endpoint. Per-utterance
// synthesis failures do not fail the run; only fatal conditions surface as
// terminal error snapshots.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequest
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

	scriptText := req.Script
	if scriptText == "" {
		scriptText = pod.Script
	}
	if scriptText == "" {
		writeError(w, http.StatusBadRequest, "script is required")
		return
	}

	runID := uuid.NewString()
	s.progress.Set(runID, progress.StatusProcessing, pipeline.StageInitializing, 0, "Queued")

	filename := pod.ID + ".wav"
	outputPath := filepath.Join(s.staticDir, "audio", filename)

	s.renders.Add(1)
	go func() {
		defer s.renders.Done()

		// The request context dies when the 202 is written; the render
		// outlives it.
		ctx := context.Background()
		ok := s.pipeline.Render(ctx, scriptText, outputPath, func(status, step string, pct int, message string) {
			s.progress.Set(runID, status, step, pct, message)
		})
		if !ok {
			return
		}
		if _, err := s.podcasts.SetAudioURL(ctx, pod.ID, "/static/audio/"+filename); err != nil {
			s.log.Error("audio url update failed", "podcast_id", pod.ID, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     runID,
		"status": progress.StatusProcessing,
	})
}

// handleAudioProgress reports the latest snapshot for a render run. Terminal
// snapshots are forgotten once served.
func (s *Server) handleAudioProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, ok := s.progress.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run id")
		return
	}
	writeJSON(w, http.StatusOK, snap)
	if snap.Status != progress.StatusProcessing {
		s.progress.Delete(id)
	}
}

// handleStaticFile serves one file from a subdirectory of the static dir.
// The path value is reduced to its base name so clients cannot traverse out.
func (s *Server) handleStaticFile(subdir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.PathValue("file"))
		if name == "." || name == "/" {
			writeError(w, http.StatusBadRequest, "invalid file name")
			return
		}
		http.ServeFile(w, r, filepath.Join(s.staticDir, subdir, name))
	}
}
