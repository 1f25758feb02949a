package srv

import (
	"errors"
	"mime"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/opd-ai/bookster/bookcompiler"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) error {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	format, err := bookcompiler.ParseFormat(req.Format)
	if err != nil {
		return err
	}
	opts, err := req.Options.resolve()
	if err != nil {
		return err
	}

	res, err := s.compiler.Compile(r.Context(), format, req.BookData, opts)
	if err != nil {
		return err
	}
	exportsTotal.WithLabelValues(string(format), resultLabel(res.Fallback)).Inc()
	s.exports.Set(res.FileName, res, cache.DefaultExpiration)

	respondJSON(w, http.StatusCreated, exportResponse{
		Result:      res,
		DownloadURL: "/api/exports/" + res.FileName,
	})
	return nil
}

func resultLabel(fallback bool) string {
	if fallback {
		return "fallback"
	}
	return "ok"
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "file")
	f, err := s.compiler.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errNotFound("export not found")
		}
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	downloadAs := name
	if v, found := s.exports.Get(name); found {
		downloadAs = v.(*bookcompiler.Result).DownloadAs
	}
	w.Header().Set("Content-Type", bookcompiler.ContentType(name))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadAs}))
	http.ServeContent(w, r, name, info.ModTime(), f)
	return nil
}
