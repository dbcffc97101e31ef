package server

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// uploadResp is the JSON response returned after a successful file upload.
type uploadResp struct {
	Message string `json:"message"`
	File    string `json:"file"`
	Size    int64  `json:"size"`
}

// fileField streams the multipart body up to the first part named "file"
// that carries a filename parameter, and returns it with the raw,
// unsanitized client filename.
func fileField(r *http.Request) (*multipart.Part, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", ErrMissingField
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, "", ErrMissingField
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, "", ErrPayloadTooLarge
			}
			return nil, "", ErrMissingField
		}

		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		// part.FileName() would already strip directories; the sanitizer
		// wants the name exactly as sent.
		_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		filename, ok := params["filename"]
		if err != nil || !ok {
			_ = part.Close()
			continue
		}
		return part, filename, nil
	}
}

// uploadHandler handles POST /upload. The request has already passed the
// API key check and carries a size-limited body. The file is stored under a
// sanitized name, renamed with a numeric suffix if that name is taken.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rid := middleware.GetReqID(r.Context())

	part, rawName, err := fileField(r)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingField):
			s.log.Warn("upload without 'file' field", map[string]interface{}{"request_id": rid})
		case errors.Is(err, ErrPayloadTooLarge):
			s.metrics.RecordOversize()
		}
		s.fail(w, r, err, "failed to save file")
		return
	}
	defer func() { _ = part.Close() }()

	if strings.TrimSpace(rawName) == "" {
		s.fail(w, r, ErrEmptyName, "failed to save file")
		return
	}

	safeName, err := SanitizeFilename(rawName)
	if err != nil {
		s.fail(w, r, err, "failed to save file")
		return
	}

	name, size, err := s.store.Save(r.Context(), safeName, part)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.metrics.RecordOversize()
			err = ErrPayloadTooLarge
		} else {
			s.metrics.RecordUploadError()
		}
		s.fail(w, r, err, "failed to save file")
		return
	}

	s.metrics.RecordUpload(size, time.Since(start))
	s.log.Info("upload complete", map[string]interface{}{
		"request_id": rid,
		"file":       name,
		"bytes":      size,
		"ip":         clientIP(r),
	})

	writeJSON(w, http.StatusCreated, uploadResp{
		Message: "upload complete",
		File:    name,
		Size:    size,
	})
}
