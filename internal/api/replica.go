package api

import (
	"errors"
	"net/http"

	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/pkg/provider/avatar"
)

type conversationRequest struct {
	PodcastID string `json:"podcast_id"`
}

// requireAvatar answers 503 and returns false when no avatar provider is
// configured.
func (s *Server) requireAvatar(w http.ResponseWriter) bool {
	if s.avatars == nil {
		writeError(w, http.StatusServiceUnavailable, "avatar conversations are not configured")
		return false
	}
	return true
}

// handleStartConversation opens an avatar conversation seeded with the
// podcast's script so the tutor can discuss the episode.
func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAvatar(w) {
		return
	}

	var req conversationRequest
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

	conv, err := s.avatars.StartConversation(r.Context(), pod.Script)
	if err != nil {
		s.log.ErrorContext(r.Context(), "conversation start failed", "podcast_id", pod.ID, "error", err)
		writeError(w, http.StatusBadGateway, "could not start conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAvatar(w) {
		return
	}
	conv, err := s.avatars.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not fetch conversation")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	if !s.requireAvatar(w) {
		return
	}
	list, err := s.avatars.ListConversations(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "could not list conversations")
		return
	}
	if list == nil {
		list = []avatar.Conversation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleEndConversation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAvatar(w) {
		return
	}
	if err := s.avatars.EndConversation(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, "could not end conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "conversation ended"})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if !s.requireAvatar(w) {
		return
	}
	if err := s.avatars.DeleteConversation(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, "could not delete conversation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "conversation deleted"})
}
