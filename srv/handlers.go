package srv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/opd-ai/bookster/bookcompiler"
	"github.com/opd-ai/bookster/logger"
	bookster "github.com/opd-ai/bookster/src"
)

// maxBodyBytes bounds JSON request bodies. Books carry inline cover images.
const maxBodyBytes = 32 << 20

// AppHandler is a handler that reports failure by returning an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// HTTPError is an error with a status code and a message safe to show clients.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (he *HTTPError) Error() string {
	if he.Err != nil {
		return fmt.Sprintf("%d %s: %v", he.Code, he.Message, he.Err)
	}
	return fmt.Sprintf("%d %s", he.Code, he.Message)
}

func (he *HTTPError) Unwrap() error {
	return he.Err
}

func errBadRequest(message string, cause error) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message, Err: cause}
}

func errNotFound(message string) *HTTPError {
	return &HTTPError{Code: http.StatusNotFound, Message: message}
}

// makeHandler turns errors returned by h into JSON error responses.
// Caller-input errors become 400, everything unknown becomes 500.
func makeHandler(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		code, message := classify(err)
		if code >= http.StatusInternalServerError {
			logger.Error(r.Context(), "request failed", err, "path", r.URL.Path, "method", r.Method, "status", code)
		} else {
			logger.FromContext(r.Context()).Warn("request rejected", "path", r.URL.Path, "method", r.Method, "status", code, "error", err)
		}

		if ww, ok := w.(middleware.WrapResponseWriter); ok && ww.Status() != 0 {
			slog.Warn("handler returned error after writing response", "path", r.URL.Path, "error", err)
			return
		}
		respondJSON(w, code, map[string]string{"error": message})
	}
}

func classify(err error) (int, string) {
	var httpErr *HTTPError
	var inputErr *bookcompiler.InputError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, httpErr.Message
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Error()
	case errors.Is(err, bookster.ErrMissingField), errors.Is(err, bookster.ErrTooManyChapters):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, bookster.ErrUnparseableChapters):
		return http.StatusBadGateway, "the model returned chapters in an unexpected format"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// rootMessage returns the innermost error text, dropping wrapping context
// that is only meaningful in logs.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads one JSON document from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errBadRequest("request body is empty", err)
		}
		return errBadRequest("request body is not valid JSON", err)
	}
	return nil
}
