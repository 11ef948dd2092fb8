package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. statusFor picks the HTTP status, core.MapError the user message
//  4. Technical error + context is logged with request ID for correlation
//  5. API requests get JSON; page requests get the dashboard with an alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/rreport/internal/core"
	"github.com/JonMunkholm/rreport/internal/dataset"
	"github.com/JonMunkholm/rreport/internal/logging"
	"github.com/JonMunkholm/rreport/internal/report"
	"github.com/JonMunkholm/rreport/internal/stats"
	"github.com/JonMunkholm/rreport/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		parseErr *dataset.ParseError
		maxBytes *http.MaxBytesError
	)
	switch {
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dataset.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &parseErr),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidRequest),
		errors.Is(err, report.ErrColumnNotFound),
		errors.Is(err, dataset.ErrInvalidPageSize):
		return http.StatusBadRequest
	case errors.Is(err, stats.ErrPrecondition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownTest):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoData):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyAnalyses):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and answers with the mapped user
// message: JSON for API requests, the dashboard with an alert otherwise.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", args...)
	} else {
		log.Warn("request error", args...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
		return
	}
	s.renderDashboard(w, r, dashboardState{alert: alertFor(userMsg)}, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Detail:  msg.Detail,
	})
}

func alertFor(msg core.UserMessage) *templates.Alert {
	return &templates.Alert{
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Detail:  msg.Detail,
	}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
