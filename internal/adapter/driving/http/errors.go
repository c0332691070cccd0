package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/efisher/reviewhub/internal/domain/fault"
)

// errorResponse is the standard error response body. Fields is populated
// only for per-field input errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFault maps a domain fault onto an HTTP status and machine-readable
// code. Anything unrecognized is a 500; the caller logs it.
func writeFault(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fault.ErrNotLoggedIn):
		writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "you are not logged in",
			Code:  "not_logged_in",
		})

	case fault.IsPermissionDenied(err):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error: "you do not have permission to perform this action",
			Code:  "permission_denied",
		})

	case fault.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: "object does not exist",
			Code:  "does_not_exist",
		})

	default:
		if fieldErrs, ok := fault.AsFieldErrors(err); ok {
			fields := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[fe.Field] = fe.Reason
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:  "one or more fields had errors",
				Code:   "invalid_form_data",
				Fields: fields,
			})
			return
		}

		if serr, ok := fault.AsStateError(err); ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: serr.Reason,
				Code:  "invalid_state",
			})
			return
		}

		if verr, ok := fault.AsValidationError(err); ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:  verr.Reason,
				Code:   "publish_error",
				Fields: map[string]string{verr.Prerequisite: verr.Reason},
			})
			return
		}

		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// isInternal reports whether err carries no fault classification, meaning
// the handler should log it before responding.
func isInternal(err error) bool {
	if errors.Is(err, fault.ErrNotLoggedIn) || fault.IsPermissionDenied(err) || fault.IsNotFound(err) {
		return false
	}
	if _, ok := fault.AsFieldErrors(err); ok {
		return false
	}
	if _, ok := fault.AsStateError(err); ok {
		return false
	}
	if _, ok := fault.AsValidationError(err); ok {
		return false
	}
	return true
}
