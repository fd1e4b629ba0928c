package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/papercast-dev/papercast/internal/podcast"
)

// handleListPodcasts returns the full library, newest first.
func (s *Server) handleListPodcasts(w http.ResponseWriter, r *http.Request) {
	list, err := s.podcasts.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list podcasts")
		return
	}
	if list == nil {
		list = []podcast.Podcast{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPodcast(w http.ResponseWriter, r *http.Request) {
	pod, err := s.podcasts.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, podcast.ErrNotFound) {
		writeError(w, http.StatusNotFound, "podcast not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load podcast")
		return
	}
	writeJSON(w, http.StatusOK, pod)
}

// handleDeletePodcast removes the record and, best effort, any rendered
// audio and cover files it owned.
func (s *Server) handleDeletePodcast(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	pod, err := s.podcasts.Get(r.Context(), id)
	if errors.Is(err, podcast.ErrNotFound) {
		writeError(w, http.StatusNotFound, "podcast not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load podcast")
		return
	}

	if err := s.podcasts.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete podcast")
		return
	}

	s.removeStaticFile(pod.AudioURL, "audio")
	s.removeStaticFile(pod.CoverURL, "covers")

	writeJSON(w, http.StatusOK, map[string]string{"message": "podcast deleted"})
}

func (s *Server) handleToggleListened(w http.ResponseWriter, r *http.Request) {
	pod, err := s.podcasts.ToggleListened(r.Context(), r.PathValue("id"))
	if errors.Is(err, podcast.ErrNotFound) {
		writeError(w, http.StatusNotFound, "podcast not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update podcast")
		return
	}
	writeJSON(w, http.StatusOK, pod)
}

type titleRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	pod, err := s.podcasts.SetTitle(r.Context(), r.PathValue("id"), req.Title)
	if errors.Is(err, podcast.ErrNotFound) {
		writeError(w, http.StatusNotFound, "podcast not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update podcast")
		return
	}
	writeJSON(w, http.StatusOK, pod)
}

// removeStaticFile deletes the file behind a /static/<subdir>/ URL. Missing
// files and placeholder URLs are ignored.
func (s *Server) removeStaticFile(url, subdir string) {
	prefix := "/static/" + subdir + "/"
	if !strings.HasPrefix(url, prefix) {
		return
	}
	path := filepath.Join(s.staticDir, subdir, filepath.Base(url))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("static file cleanup failed", "path", path, "error", err)
	}
}
