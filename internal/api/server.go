// Package api implements the HTTP surface of the papercast server: account
// management, script generation from uploaded PDFs, asynchronous audio
// rendering with polling, podcast library CRUD, cover art, and avatar
// reflection conversations.
//
// Handlers are deliberately thin: they decode, validate, call into the
// domain packages, and encode. Long-running work (audio rendering) is
// dispatched to a background goroutine and observed through the progress
// store rather than held open on the request.
package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/papercast-dev/papercast/internal/auth"
	"github.com/papercast-dev/papercast/internal/pipeline"
	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/internal/progress"
	"github.com/papercast-dev/papercast/internal/script"
	"github.com/papercast-dev/papercast/pkg/provider/avatar"
	"github.com/papercast-dev/papercast/pkg/provider/image"
)

// Server holds the dependencies shared by all HTTP handlers. Construct with
// [New]; the zero value is not usable.
type Server struct {
	auth      *auth.Service
	scripts   *script.Generator
	pipeline  *pipeline.Pipeline
	podcasts  podcast.Store
	progress  *progress.Store
	images    image.Provider  // nil when cover art is not configured
	avatars   avatar.Provider // nil when avatar conversations are not configured
	staticDir string
	log       *slog.Logger

	renders sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithImageProvider enables the cover art endpoint. Without it the endpoint
// answers 503.
func WithImageProvider(p image.Provider) Option {
	return func(s *Server) { s.images = p }
}

// WithAvatarProvider enables the replica conversation endpoints. Without it
// they answer 503.
func WithAvatarProvider(p avatar.Provider) Option {
	return func(s *Server) { s.avatars = p }
}

// WithStaticDir sets the directory rendered audio and cover images are
// served from. Defaults to "static".
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a Server from its required collaborators.
func New(authSvc *auth.Service, scripts *script.Generator, pipe *pipeline.Pipeline, podcasts podcast.Store, runs *progress.Store, opts ...Option) *Server {
	s := &Server{
		auth:      authSvc,
		scripts:   scripts,
		pipeline:  pipe,
		podcasts:  podcasts,
		progress:  runs,
		staticDir: "static",
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds all API and static routes to mux. Routes under /api other
// than the auth endpoints require a valid bearer token.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)

	protect := func(h http.HandlerFunc) http.Handler { return s.auth.Middleware(h) }

	mux.Handle("POST /api/generate", protect(s.handleGenerate))
	mux.Handle("POST /api/audio", protect(s.handleAudio))
	mux.Handle("GET /api/audio/progress/{id}", protect(s.handleAudioProgress))

	mux.Handle("GET /api/podcasts", protect(s.handleListPodcasts))
	mux.Handle("GET /api/podcasts/{id}", protect(s.handleGetPodcast))
	mux.Handle("DELETE /api/podcasts/{id}", protect(s.handleDeletePodcast))
	mux.Handle("POST /api/podcasts/{id}/listened", protect(s.handleToggleListened))
	mux.Handle("PATCH /api/podcasts/{id}/title", protect(s.handleSetTitle))

	mux.Handle("POST /api/covers", protect(s.handleGenerateCover))

	mux.Handle("POST /api/replica/conversations", protect(s.handleStartConversation))
	mux.Handle("GET /api/replica/conversations", protect(s.handleListConversations))
	mux.Handle("GET /api/replica/conversations/{id}", protect(s.handleGetConversation))
	mux.Handle("POST /api/replica/conversations/{id}/end", protect(s.handleEndConversation))
	mux.Handle("DELETE /api/replica/conversations/{id}", protect(s.handleDeleteConversation))

	mux.HandleFunc("GET /static/audio/{file}", s.handleStaticFile("audio"))
	mux.HandleFunc("GET /static/covers/{file}", s.handleStaticFile("covers"))
}

// Wait blocks until all background renders started by the audio endpoint
// have finished. Called during graceful shutdown.
func (s *Server) Wait() {
	s.renders.Wait()
}
