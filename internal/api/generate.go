package api

import (
	"fmt"
	"net/http"

	"github.com/papercast-dev/papercast/internal/document"
	"github.com/papercast-dev/papercast/internal/podcast"
	"github.com/papercast-dev/papercast/internal/prompts"
)

// generateMode is the only processing mode the generate endpoint accepts.
const generateMode = "summaritive"

// multipartMemory is the in-memory buffer limit for multipart parsing;
// larger uploads spill to temp files.
const multipartMemory = 32 << 20

// handleGenerate extracts text from the uploaded PDFs, generates a dialogue
// script with the configured LLM, and saves a new podcast record carrying the
// script. Rendering the audio is a separate, later call.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	if mode := r.FormValue("mode"); mode != generateMode {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("mode must be %q", generateMode))
		return
	}
	style := prompts.NormalizeStyle(r.FormValue("style"))
	userContext := r.FormValue("context")

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one PDF file is required")
		return
	}

	texts := make([]string, 0, len(files))
	for _, fh := range files {
		if !document.IsPDF(fh.Filename) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%q is not a PDF file", fh.Filename))
			return
		}
		if fh.Size > document.MaxFileSize {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%q exceeds the 20 MB limit", fh.Filename))
			return
		}

		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("could not read %q", fh.Filename))
			return
		}
		text, err := document.ExtractText(f, fh.Size)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("could not extract text from %q", fh.Filename))
			return
		}
		texts = append(texts, text)
	}

	if ok, reason := document.CheckSuitability(texts); !ok {
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	scriptText, settings, err := s.scripts.Generate(r.Context(), texts, style, userContext)
	if err != nil {
		s.log.ErrorContext(r.Context(), "script generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "script generation failed")
		return
	}

	pod := podcast.New(settings.Title, string(style), scriptText, "")
	if err := s.podcasts.Save(r.Context(), pod); err != nil {
		s.log.ErrorContext(r.Context(), "podcast save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save podcast")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"script":   scriptText,
		"podcast":  pod,
		"settings": settings,
	})
}
