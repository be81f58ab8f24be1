package complaintshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/audit"
	"lms/internal/domain/complaint"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Complaints *complaint.Service
	Audit      *audit.Service
}

func NewHandler(complaints *complaint.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Complaints: complaints, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/complaints", func(r chi.Router) {
		employee := middleware.RequireRole(auth.RoleEmployee)
		manager := middleware.RequireRole(auth.RoleManager)

		r.With(employee).Post("/", h.handleRaise)
		r.With(employee).Get("/my", h.handleMyComplaints)
		r.With(employee).Put("/{complaintID}/withdraw", h.handleWithdraw)

		r.With(manager).Get("/team", h.handleTeamComplaints)
		r.With(manager).Put("/{complaintID}/review", h.handleReview)
	})
}

type raiseRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type reviewRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) handleRaise(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload raiseRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	raised, err := h.Complaints.Raise(r.Context(), caller.UserID, payload.Subject, payload.Description, payload.Category)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "complaint.raise", raised.ID)
	api.Created(w, api.Fields{"complaint": raised}, requestID)
}

func (h *Handler) handleMyComplaints(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	complaints, err := h.Complaints.MyComplaints(r.Context(), caller.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"complaints": complaints}, requestID)
}

func (h *Handler) handleTeamComplaints(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	complaints, err := h.Complaints.TeamComplaints(r.Context(), caller.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"complaints": complaints}, requestID)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload reviewRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	reviewed, err := h.Complaints.Review(r.Context(), caller.UserID, chi.URLParam(r, "complaintID"), payload.Status, payload.Note)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "complaint.review."+payload.Status, reviewed.ID)
	api.Success(w, api.Fields{"complaint": reviewed}, requestID)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	withdrawn, err := h.Complaints.Withdraw(r.Context(), caller.UserID, chi.URLParam(r, "complaintID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "complaint.withdraw", withdrawn.ID)
	api.Success(w, api.Fields{"complaint": withdrawn}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	err := h.Audit.Record(r.Context(), actorID, action, "complaint", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r))
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
