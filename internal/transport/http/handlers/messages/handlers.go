package messageshandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lms/internal/domain/message"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

const heartbeatInterval = 25 * time.Second

type Handler struct {
	Messages *message.Service
}

func NewHandler(messages *message.Service) *Handler {
	return &Handler{Messages: messages}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/messages", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/", h.handleSend)
		r.Get("/conversations", h.handleConversations)
		r.Get("/conversation/{userID}", h.handleConversation)
		r.Get("/contacts", h.handleContacts)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Put("/read/{userID}", h.handleMarkRead)
		r.Get("/online", h.handleOnline)
		r.Get("/events", h.handleEvents)
	})
}

type sendRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload sendRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	sent, err := h.Messages.Send(r.Context(), caller.UserID, caller.Role, payload.ReceiverID, payload.Content)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Created(w, api.Fields{"message": sent}, requestID)
}

func (h *Handler) handleConversations(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	conversations, err := h.Messages.Conversations(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"conversations": conversations}, requestID)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	messages, err := h.Messages.Conversation(r.Context(), caller.UserID, chi.URLParam(r, "userID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"messages": messages}, requestID)
}

func (h *Handler) handleContacts(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	contacts, err := h.Messages.Contacts(r.Context(), caller.UserID, caller.Role)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"contacts": contacts}, requestID)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	count, err := h.Messages.UnreadCount(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"unreadCount": count}, requestID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	unread, err := h.Messages.MarkRead(r.Context(), caller.UserID, chi.URLParam(r, "userID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"unreadCount": unread}, requestID)
}

func (h *Handler) handleOnline(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	api.Success(w, api.Fields{"online": h.Messages.Online()}, requestID)
}

// handleEvents streams hub events to the caller over SSE. Delivery is
// best-effort; clients reconcile against the persisted endpoints on
// reconnect.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.GetUser(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "streaming unsupported", middleware.GetRequestID(r.Context()))
		return
	}

	events, cancel := h.Messages.Hub().Subscribe(caller.UserID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
