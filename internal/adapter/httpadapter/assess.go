package httpadapter

import (
	"errors"
	"io"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/wind-site-assessment/internal/domain"
)

// maxBodyBytes bounds a request body. Empirical regimes with a decade of hourly
// samples fit comfortably.
const maxBodyBytes = 8 << 20

type errorResponse struct {
	Error string       `json:"error"`
	Stage domain.Stage `json:"stage,omitempty"`
	Kind  string       `json:"kind,omitempty"`
	ID    string       `json:"id,omitempty"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sharedobs.WriteJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body exceeds 8 MiB"})
			return
		}
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "read request body: " + err.Error()})
		return
	}

	q, err := domain.ParseSiteQuery(body)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  domain.ErrorKind(err),
		})
		return
	}

	result := s.assessor.Assess(r.Context(), q)
	if result.Status == domain.StatusOK {
		sharedobs.WriteJSON(w, http.StatusOK, result)
		return
	}

	status := http.StatusUnprocessableEntity
	if result.Failure.Stage == "" {
		// Rejected before any engine stage ran.
		status = http.StatusBadRequest
	}
	s.logger.Info("assessment request rejected",
		"assessment_id", result.ID,
		"status", status,
		"stage", result.Failure.Stage,
		"kind", result.Failure.Kind,
	)
	sharedobs.WriteJSON(w, status, errorResponse{
		Error: result.Failure.Message,
		Stage: result.Failure.Stage,
		Kind:  result.Failure.Kind,
		ID:    result.ID,
	})
}
