package teamshandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/audit"
	"lms/internal/domain/team"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Teams *team.Service
	Audit *audit.Service
}

func NewHandler(teams *team.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Teams: teams, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/teams", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleManager))

		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/overview", h.handleOverview)
		r.Get("/{teamID}", h.handleGet)
		r.Put("/{teamID}", h.handleUpdate)
		r.Delete("/{teamID}", h.handleDelete)
		r.Post("/{teamID}/members", h.handleAddMember)
		r.Delete("/{teamID}/members/{employeeID}", h.handleRemoveMember)
	})
}

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addMemberRequest struct {
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload teamRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	created, err := h.Teams.Create(r.Context(), caller.UserID, payload.Name, payload.Description)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "team.create", created.ID)
	api.Created(w, api.Fields{"team": created}, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	teams, err := h.Teams.MyTeams(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"teams": teams}, requestID)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	overview, err := h.Teams.ManagerOverview(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"overview": overview}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	found, err := h.Teams.Get(r.Context(), caller.UserID, chi.URLParam(r, "teamID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"team": found}, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload teamRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	updated, err := h.Teams.Update(r.Context(), caller.UserID, chi.URLParam(r, "teamID"), payload.Name, payload.Description)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "team.update", updated.ID)
	api.Success(w, api.Fields{"team": updated}, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	teamID := chi.URLParam(r, "teamID")

	if err := h.Teams.Delete(r.Context(), caller.UserID, teamID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "team.delete", teamID)
	api.Success(w, api.Fields{"message": "team deleted"}, requestID)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload addMemberRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	updated, memberName, err := h.Teams.AddMember(r.Context(), caller.UserID, chi.URLParam(r, "teamID"), payload.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "team.member.add", updated.ID)
	api.Success(w, api.Fields{"team": updated, "message": memberName + " added to " + updated.Name}, requestID)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	updated, err := h.Teams.RemoveMember(r.Context(), caller.UserID, chi.URLParam(r, "teamID"), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "team.member.remove", updated.ID)
	api.Success(w, api.Fields{"team": updated}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	err := h.Audit.Record(r.Context(), actorID, action, "team", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r))
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
