package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goliatone/go-intake/pkg/catalog"
	"github.com/goliatone/go-intake/pkg/draft"
)

// maxBodyBytes bounds request payloads; a full draft is a few kilobytes.
const maxBodyBytes = 1 << 20

// APIError is an error with an HTTP status and a stable code. It is written
// to clients as {"code", "message", "details"}.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func apiError(status int, code, message string, details any) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func mapError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, draft.ErrNotFound):
		return apiError(http.StatusNotFound, "DRAFT_NOT_FOUND", "Draft not found", nil)
	case errors.Is(err, catalog.ErrUnknownFlow):
		return apiError(http.StatusNotFound, "FLOW_NOT_FOUND", "Flow not found", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return apiError(http.StatusGatewayTimeout, "TIMEOUT", "Request timed out", nil)
	default:
		return apiError(http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, errorBody{Code: code, Message: message, Details: details})
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, apiError(http.StatusBadRequest, "INVALID_BODY", "Request body is required", nil)
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apiError(http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body is too large", nil)
		}
		return nil, apiError(http.StatusBadRequest, "INVALID_BODY", "Request body could not be read", nil)
	}
	if len(raw) == 0 {
		return nil, apiError(http.StatusBadRequest, "INVALID_BODY", "Request body is required", nil)
	}
	return raw, nil
}
