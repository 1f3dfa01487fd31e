package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/flowscope/flowscope/pkg/errors"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Code       string             `json:"code"`
	Error      string             `json:"error"`
	Violations []errors.Violation `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// httpStatus maps error codes onto HTTP statuses: unknown resources are
// 404, payloads that fail schema validation 422, bad parameters 400, and
// everything else 500.
func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeGraphNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidGraph:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDirection, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidName, errors.ErrCodeInvalidID, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := httpStatus(code)

	resp := errorResponse{
		Code:  string(code),
		Error: errors.UserMessage(err),
	}
	var verr *errors.ValidationError
	if stderrors.As(err, &verr) {
		resp.Violations = verr.Violations
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", RequestID(r.Context()),
		)
	}
	writeJSON(w, status, resp)
}
