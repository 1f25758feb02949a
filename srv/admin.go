package srv

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	bookster "github.com/opd-ai/bookster/src"
)

// requireAdmin checks the bearer token against the configured admin token.
// With no token configured the admin routes are closed.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminToken == "" {
			respondJSON(w, http.StatusForbidden, map[string]string{"error": "admin access is disabled"})
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="bookster"`)
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func promptKind(r *http.Request) (bookster.PromptKind, error) {
	kind, ok := bookster.ParsePromptKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", errNotFound("unknown prompt")
	}
	return kind, nil
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) error {
	kind, err := promptKind(r)
	if err != nil {
		return err
	}
	override := false
	if s.prompts != nil {
		_, err := s.prompts.Get(r.Context(), kind.Key())
		override = err == nil
	}
	respondJSON(w, http.StatusOK, promptResponse{
		Kind:     kind,
		Prompt:   bookster.LoadPromptTemplate(r.Context(), s.prompts, kind, 0),
		Override: override,
	})
	return nil
}

func (s *Server) handlePutPrompt(w http.ResponseWriter, r *http.Request) error {
	kind, err := promptKind(r)
	if err != nil {
		return err
	}
	var req promptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return errBadRequest("prompt is required", nil)
	}

	writer, ok := s.prompts.(bookster.PromptWriter)
	if !ok {
		return &HTTPError{Code: http.StatusConflict, Message: "prompt store is read-only"}
	}
	value, err := bookster.EncodePrompt(req.Prompt)
	if err != nil {
		return err
	}
	if err := writer.Set(r.Context(), kind.Key(), value); err != nil {
		if errors.Is(err, bookster.ErrReadOnlyStore) {
			return &HTTPError{Code: http.StatusConflict, Message: "prompt store is read-only", Err: err}
		}
		return err
	}
	respondJSON(w, http.StatusOK, promptResponse{Kind: kind, Prompt: req.Prompt, Override: true})
	return nil
}
