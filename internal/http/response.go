package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/repo"
)

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes data as the response body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a normalized error body.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Code: code, Message: message})
}

var codes = map[int]string{
	http.StatusBadRequest:          "VALIDATION",
	http.StatusUnauthorized:        "AUTH",
	http.StatusForbidden:           "FORBIDDEN",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusConflict:            "CONFLICT",
	http.StatusUnprocessableEntity: "VALIDATION",
	http.StatusTooManyRequests:     "RATE_LIMIT",
	http.StatusServiceUnavailable:  "UNAVAILABLE",
}

// codeFor names a status. Statuses outside codes fall back to their class so a
// deliberate 4xx or 5xx is never rewritten.
func codeFor(status int) string {
	if code, ok := codes[status]; ok {
		return code
	}
	if status >= 400 && status < 500 {
		return "REQUEST_FAILED"
	}
	return "INTERNAL"
}

// writeServiceError maps the error taxonomy onto HTTP statuses. An explicit
// apperr status is kept as is; unclassified errors are logged and reported as
// a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, repo.ErrNotFound):
		status = http.StatusNotFound
	}
	var e *apperr.Error
	if errors.As(err, &e) && e.Status != 0 {
		status = e.Status
	}

	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError && (e == nil || e.Status == 0) {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, status, "INTERNAL", "Internal server error")
		return
	}
	if status >= 500 {
		log.Warn().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	}
	msg := apperr.Message(err)
	if errors.Is(err, repo.ErrNotFound) && (e == nil || e.Message == "") {
		msg = "Not found"
	}
	WriteError(w, status, codeFor(status), msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Invalid JSON body")
		return false
	}
	return true
}
