package reimbursementshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/audit"
	"lms/internal/domain/reimbursement"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Claims *reimbursement.Service
	Audit  *audit.Service
}

func NewHandler(claims *reimbursement.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Claims: claims, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reimbursements", func(r chi.Router) {
		applicant := middleware.RequireRole(auth.RoleEmployee, auth.RoleManager)
		manager := middleware.RequireRole(auth.RoleManager)
		admin := middleware.RequireRole(auth.RoleAdmin)

		r.With(applicant).Post("/", h.handleApply)
		r.With(applicant).Get("/my", h.handleMyClaims)
		r.With(applicant).Put("/{claimID}/withdraw", h.handleWithdraw)

		r.With(manager).Get("/team", h.handleTeamClaims)
		r.With(manager).Put("/{claimID}/manager-review", h.handleManagerReview)

		r.With(admin).Get("/admin", h.handleAdminQueue)
		r.With(admin).Put("/{claimID}/admin-review", h.handleAdminReview)
	})
}

type applyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Receipt     string  `json:"receipt"`
}

type reviewRequest struct {
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

	created, err := h.Claims.Apply(r.Context(), caller.UserID, caller.Role, reimbursement.ApplyInput{
		Title:       payload.Title,
		Description: payload.Description,
		Amount:      payload.Amount,
		Category:    payload.Category,
		Receipt:     payload.Receipt,
	})
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "reimbursement.apply", created.ID)
	api.Created(w, api.Fields{"reimbursement": created}, requestID)
}

func (h *Handler) handleMyClaims(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	claims, err := h.Claims.MyReimbursements(r.Context(), caller.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"reimbursements": claims}, requestID)
}

func (h *Handler) handleTeamClaims(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	claims, err := h.Claims.TeamReimbursements(r.Context(), caller.UserID, r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"reimbursements": claims}, requestID)
}

func (h *Handler) handleAdminQueue(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	claims, err := h.Claims.AdminQueue(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"reimbursements": claims}, requestID)
}

func (h *Handler) handleManagerReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload reviewRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	reviewed, err := h.Claims.ManagerReview(r.Context(), caller.UserID, chi.URLParam(r, "claimID"), payload.Status, payload.Note)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "reimbursement.manager-review."+payload.Status, reviewed.ID)
	api.Success(w, api.Fields{"reimbursement": reviewed}, requestID)
}

func (h *Handler) handleAdminReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload reviewRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	reviewed, err := h.Claims.AdminReview(r.Context(), caller.UserID, chi.URLParam(r, "claimID"), payload.Status, payload.Note)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "reimbursement.admin-review."+payload.Status, reviewed.ID)
	api.Success(w, api.Fields{"reimbursement": reviewed}, requestID)
}

func (h *Handler) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	withdrawn, err := h.Claims.Withdraw(r.Context(), caller.UserID, chi.URLParam(r, "claimID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "reimbursement.withdraw", withdrawn.ID)
	api.Success(w, api.Fields{"reimbursement": withdrawn}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	err := h.Audit.Record(r.Context(), actorID, action, "reimbursement", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r))
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
