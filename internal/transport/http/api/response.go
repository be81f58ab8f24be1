package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"lms/internal/domain/apperr"
)

// Fields holds the resource keys merged into the response envelope, e.g.
// {"leave": l} or {"teams": list}. The envelope adds success, message and
// requestId alongside them.
type Fields map[string]any

func WriteJSON(w http.ResponseWriter, status int, body Fields) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func envelope(success bool, fields Fields, requestID string) Fields {
	body := Fields{"success": success}
	for key, value := range fields {
		body[key] = value
	}
	if requestID != "" {
		body["requestId"] = requestID
	}
	return body
}

func Success(w http.ResponseWriter, fields Fields, requestID string) {
	WriteJSON(w, http.StatusOK, envelope(true, fields, requestID))
}

func Created(w http.ResponseWriter, fields Fields, requestID string) {
	WriteJSON(w, http.StatusCreated, envelope(true, fields, requestID))
}

func Fail(w http.ResponseWriter, status int, message, requestID string) {
	WriteJSON(w, status, envelope(false, Fields{"message": message}, requestID))
}

// FailErr maps a service error onto its HTTP status and client message.
// Untyped errors surface as a generic 500 and keep their detail in the log.
func FailErr(w http.ResponseWriter, err error, requestID string) {
	if apperr.KindOf(err) == apperr.Internal {
		slog.Error("request failed", "err", err, "requestId", requestID)
	}
	Fail(w, apperr.HTTPStatus(err), apperr.ClientMessage(err), requestID)
}
