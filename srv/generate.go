package srv

import (
	"net/http"
	"strings"
	"time"

	bookster "github.com/opd-ai/bookster/src"
)

func (s *Server) handleGenerateChapters(w http.ResponseWriter, r *http.Request) error {
	var details bookster.BookDetails
	if err := decodeJSON(w, r, &details); err != nil {
		return err
	}

	start := time.Now()
	chapters, err := s.generator.GenerateChapters(r.Context(), details)
	observeGeneration("outline", start, err)
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, chaptersResponse{Chapters: chapters})
	return nil
}

func (s *Server) handleRegenerateChapter(w http.ResponseWriter, r *http.Request) error {
	var req regenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ChapterTitle) == "" {
		return errBadRequest("chapterTitle is required", nil)
	}

	start := time.Now()
	content, err := s.generator.RegenerateChapter(r.Context(), req.ChapterTitle, req.BookDetails)
	observeGeneration("chapter", start, err)
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, regenerateResponse{Content: content})
	return nil
}
