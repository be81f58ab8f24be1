package leaveshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/audit"
	"lms/internal/domain/leave"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Leaves *leave.Service
	Audit  *audit.Service
}

func NewHandler(leaves *leave.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Leaves: leaves, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		applicant := middleware.RequireRole(auth.RoleEmployee, auth.RoleManager)
		manager := middleware.RequireRole(auth.RoleManager)
		admin := middleware.RequireRole(auth.RoleAdmin)

		r.With(applicant).Post("/", h.handleApply)
		r.With(applicant).Get("/my", h.handleMyLeaves)
		r.With(applicant).Get("/balance", h.handleBalance)
		r.With(applicant).Put("/{leaveID}/withdraw", h.handleWithdraw)

		r.With(manager).Get("/team", h.handleTeamLeaves)
		r.With(manager).Put("/{leaveID}/review", h.handleReview)

		r.With(admin).Get("/manager-requests", h.handleManagerRequests)
		r.With(admin).Get("/escalated", h.handleEscalated)
		r.With(admin).Put("/{leaveID}/admin-review", h.handleAdminReview)
		r.With(admin).Put("/{leaveID}/override", h.handleOverride)
	})
}

type applyRequest struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

type decisionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload applyRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}
	start, err := shared.ParseDate(payload.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "startDate must be a valid date", requestID)
		return
	}
	end, err := shared.ParseDate(payload.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "endDate must be a valid date", requestID)
		return
	}

	created, err := h.Leaves.Apply(r.Context(), caller.UserID, leave.ApplyInput{
		LeaveType: payload.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    payload.Reason,
	})
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "leave.apply", created.ID)
	api.Created(w, api.Fields{"leave": created}, requestID)
}

func (h *Handler) handleMyLeaves(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	leaves, err := h.Leaves.MyLeaves(r.Context(), caller.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"leaves": leaves}, requestID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	balance, err := h.Leaves.MyBalance(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"balance": balance}, requestID)
}

func (h *Handler) handleTeamLeaves(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	query := r.URL.Query()
	leaves, err := h.Leaves.TeamRequests(r.Context(), caller.UserID, query.Get("status"), query.Get("employeeId"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"leaves": leaves}, requestID)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload decisionRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	reviewed, err := h.Leaves.Review(r.Context(), caller.UserID, chi.URLParam(r, "leaveID"), payload.Status, payload.Note)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "leave.review."+payload.Status, reviewed.ID)
	api.Success(w, api.Fields{"leave": reviewed}, requestID)
}

func (h *Handler) handleManagerRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	leaves, err := h.Leaves.ManagerRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"leaves": leaves}, requestID)
}

func (h *Handler) handleEscalated(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	leaves, err := h.Leaves.Escalated(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"leaves": leaves}, requestID)
}

func (h *Handler) handleAdminReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload decisionRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	reviewed, err := h.Leaves.AdminReview(r.Context(), caller.UserID, chi.URLParam(r, "leaveID"), payload.Status, payload.Note)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "leave.admin-review."+payload.Status, reviewed.ID)
	api.Success(w, api.Fields{"leave": reviewed}, requestID)
}

type overrideRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

func (h *Handler) handleOverride(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload overrideRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	resolved, err := h.Leaves.Override(r.Context(), caller.UserID, chi.URLParam(r, "leaveID"), payload.Decision, payload.Note)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "leave.override."+payload.Decision, resolved.ID)
	api.Success(w, api.Fields{"leave": resolved}, requestID)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	withdrawn, err := h.Leaves.Withdraw(r.Context(), caller.UserID, chi.URLParam(r, "leaveID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "leave.withdraw", withdrawn.ID)
	api.Success(w, api.Fields{"leave": withdrawn}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	err := h.Audit.Record(r.Context(), actorID, action, "leave", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r))
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
