package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type errorResp struct {
	Error string `json:"error"`
}

// writeJSON writes v as the JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

// fail reports err to the client. Client errors are echoed with their own
// message. Anything that maps to 500 is logged in full and the client only
// gets generic.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error(generic, map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}, err)
		writeError(w, status, generic)
		return
	}
	writeError(w, status, err.Error())
}
