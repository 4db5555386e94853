package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers call respondError with the raw error; the technical detail goes
// to the server log keyed by request id, and the client receives the
// user-facing rendering from core.MapError.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chiraglokhande04/Data-Cleaning-Agent/internal/core"
	"github.com/chiraglokhande04/Data-Cleaning-Agent/internal/store"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and writes the user-facing JSON
// rendering with a status derived from the error type.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	userMsg := core.MapError(err)

	// Web-layer errors are not core's to describe.
	var badReq *badRequestError
	switch {
	case errors.Is(err, store.ErrNotFound):
		userMsg = core.UserMessage{
			Code:    "DS404",
			Message: "No dataset exists with that id.",
			Action:  "Check the id or list datasets at /api/datasets.",
		}
	case errors.As(err, &badReq):
		userMsg = core.UserMessage{
			Code:    "REQ001",
			Message: badReq.msg,
			Action:  "Fix the request and try again.",
		}
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusForError maps error types to HTTP status codes.
func statusForError(err error) int {
	var parseErr *core.ParseError
	var schemaErr *core.SchemaError
	var orderErr *core.OrderingError
	var badReq *badRequestError

	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &orderErr):
		return http.StatusConflict
	case errors.As(err, &parseErr), errors.As(err, &schemaErr), errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// badRequestError marks a client-side input problem with its own message.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
