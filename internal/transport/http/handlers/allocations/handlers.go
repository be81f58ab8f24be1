package allocationshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/allocation"
	"lms/internal/domain/audit"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Allocations *allocation.Service
	Audit       *audit.Service
}

func NewHandler(allocations *allocation.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Allocations: allocations, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave-allocations", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))

		r.Post("/", h.handleSet)
		r.Get("/", h.handleList)
		r.Get("/export.pdf", h.handleExportPDF)
		r.Put("/{allocationID}", h.handleUpdate)
	})
}

type setRequest struct {
	EmployeeID  string `json:"employeeId"`
	TotalLeaves int    `json:"totalLeaves"`
}

type updateRequest struct {
	TotalLeaves int `json:"totalLeaves"`
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload setRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	saved, err := h.Allocations.Set(r.Context(), payload.EmployeeID, payload.TotalLeaves)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "allocation.set", saved.ID)
	api.Created(w, api.Fields{"allocation": saved}, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	listing, err := h.Allocations.List(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{
		"allocations":          listing.Allocations,
		"unallocatedEmployees": listing.UnallocatedEmployees,
	}, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload updateRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	updated, err := h.Allocations.Update(r.Context(), chi.URLParam(r, "allocationID"), payload.TotalLeaves)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "allocation.update", updated.ID)
	api.Success(w, api.Fields{"allocation": updated}, requestID)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-allocations.pdf"`)
	if err := h.Allocations.WriteReport(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("allocation report export failed", "err", err, "requestId", requestID)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	err := h.Audit.Record(r.Context(), actorID, action, "allocation", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r))
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
