package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request ID, then
// returned to the client as the core.MapError message. Parse failures also
// carry their kind and location so clients can point at the bad cell.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/cookielog/internal/core"
	"github.com/JonMunkholm/cookielog/internal/logging"
	"github.com/JonMunkholm/cookielog/internal/store"
)

// errStoreDisabled is returned when a request asks to persist a log but no
// database is configured.
var errStoreDisabled = errors.New("persistence is not configured")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code, Kind) and human-readable (Message,
// Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	Kind   string `json:"kind,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column string `json:"column,omitempty"`
}

// respondError logs err and writes its user-facing form with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var perr *core.ParseError
	if errors.As(err, &perr) {
		resp.Kind = perr.Kind.String()
		resp.Line = perr.Line
		resp.Column = perr.Column
	}

	writeJSON(w, statusCode, resp)
}

// statusFor picks the HTTP status for an error raised while handling a
// document.
func statusFor(err error) int {
	var perr *core.ParseError
	switch {
	case errors.As(err, &perr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyParses), errors.Is(err, errStoreDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrDuplicateUpload):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
