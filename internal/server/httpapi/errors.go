package httpapi

import (
	"errors"
	"net/http"

	"github.com/stagebridge/stagebridge/internal/common"
)

// statusForError maps the internal error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	s.log.Error(r.Context(), "request failed", "method", r.Method, "uri", r.URL.Path, "status", status, "error", err)
	http.Error(w, http.StatusText(status), status)
}
