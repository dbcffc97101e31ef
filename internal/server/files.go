package server

import (
	"net/http"
	"time"
)

// fileResp describes one stored file in GET /files.
type fileResp struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

type listFilesResp struct {
	Files []fileResp `json:"files"`
}

// listFilesHandler handles GET /files. Metadata is read from the directory
// on every call; a failure part way through returns no partial listing.
func (s *Server) listFilesHandler(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.List()
	if err != nil {
		s.fail(w, r, err, "failed to list files")
		return
	}

	resp := listFilesResp{Files: make([]fileResp, 0, len(files))}
	for _, f := range files {
		resp.Files = append(resp.Files, fileResp{
			Name:     f.Name,
			Size:     f.Size,
			Modified: f.Modified.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
