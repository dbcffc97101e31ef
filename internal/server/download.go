package server

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// requestedName returns the file path segment of /files/{name} as the
// client sent it, percent-decoded once.
func requestedName(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	// chi routes on RawPath when the path has escapes; Path is already decoded.
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(raw); err == nil {
			raw = decoded
		}
	}
	return raw
}

// downloadHandler handles GET /files/{name} and streams the stored file as
// an attachment. Names that fail sanitization are reported exactly like
// missing files.
func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	name, err := SanitizeFilename(requestedName(r))
	if err != nil {
		s.fail(w, r, ErrNotFound, "download failed")
		return
	}

	f, info, err := s.store.Open(name)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.metrics.RecordDownloadError()
		}
		s.fail(w, r, err, "download failed")
		return
	}
	defer func() { _ = f.Close() }()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Last-Modified", info.Modified.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil {
		// Headers are gone; the short body is all the client will see.
		s.metrics.RecordDownloadError()
		s.log.Error("download interrupted", map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"file":       name,
			"bytes_sent": n,
			"size":       info.Size,
		}, err)
		return
	}

	s.metrics.RecordDownload(n, time.Since(start))
}
