package server

import (
	"net/http"
)

// DefaultMaxUploadBytes applies when no limit is configured.
const DefaultMaxUploadBytes int64 = 50 << 20

// sizeGuard caps request bodies at maxBytes. A declared Content-Length over
// the cap is refused up front; chunked bodies are cut off by
// http.MaxBytesReader and surface as *http.MaxBytesError on read.
type sizeGuard struct {
	maxBytes int64
	metrics  *Metrics
}

func (g sizeGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > g.maxBytes {
			g.metrics.RecordOversize()
			writeError(w, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge.Error())
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, g.maxBytes)
		next.ServeHTTP(w, r)
	})
}
