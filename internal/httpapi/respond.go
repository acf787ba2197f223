package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/interview"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
}

// fail maps a transition error onto a status: validation and argument
// errors are the caller's fault, an invalid state is a conflict with the
// session's current phase.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, interview.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, interview.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, interview.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	default:
		status, code = http.StatusInternalServerError, "internal"
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}

// reply writes the machine view, or the error that rejected the operation.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, v interview.View, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
