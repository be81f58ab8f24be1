package usershandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/audit"
	"lms/internal/domain/user"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Users *user.Service
	Audit *audit.Service
}

func NewHandler(users *user.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Users: users, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		admin := middleware.RequireRole(auth.RoleAdmin)
		manager := middleware.RequireRole(auth.RoleManager)

		r.With(admin).Post("/create-manager", h.createWithRole(auth.RoleManager))
		r.With(admin).Post("/create-employee", h.createWithRole(auth.RoleEmployee))
		r.With(admin).Get("/", h.handleListAll)
		r.With(admin).Get("/managers", h.listByRole(auth.RoleManager))
		r.With(admin).Get("/employees", h.listByRole(auth.RoleEmployee))
		r.With(admin).Get("/admin-overview", h.handleAdminOverview)
		r.With(admin).Delete("/{userID}", h.handleDelete)

		r.With(manager).Get("/unassigned-employees", h.handleUnassigned)
		r.With(manager).Post("/assign-employee", h.handleAssignEmployee)
		r.With(manager).Post("/remove-employee", h.handleRemoveEmployee)
		r.With(manager).Get("/my-team", h.handleMyTeam)

		r.With(middleware.RequireAuth).Put("/profile", h.handleUpdateProfile)
		r.With(middleware.RequireAuth).Put("/change-password", h.handleChangePassword)
	})
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) createWithRole(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestID(r.Context())
		caller, _ := middleware.GetUser(r.Context())

		var payload createUserRequest
		if err := shared.DecodeJSON(r, &payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
			return
		}

		created, err := h.Users.Register(r.Context(), payload.Name, payload.Email, payload.Password, role)
		if err != nil {
			api.FailErr(w, err, requestID)
			return
		}
		h.record(r, caller.UserID, "user.create."+role, created.ID)
		api.Created(w, api.Fields{"user": created}, requestID)
	}
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	users, err := h.Users.ListAll(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"users": users}, requestID)
}

func (h *Handler) listByRole(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestID(r.Context())
		users, err := h.Users.ListByRole(r.Context(), role)
		if err != nil {
			api.FailErr(w, err, requestID)
			return
		}
		api.Success(w, api.Fields{"users": users}, requestID)
	}
}

func (h *Handler) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	overview, err := h.Users.AdminOverview(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"overview": overview}, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	targetID := chi.URLParam(r, "userID")

	if err := h.Users.Delete(r.Context(), caller.UserID, targetID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "user.delete", targetID)
	api.Success(w, api.Fields{"message": "user deleted"}, requestID)
}

func (h *Handler) handleUnassigned(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employees, err := h.Users.UnassignedEmployees(r.Context())
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"employees": employees}, requestID)
}

type memberRequest struct {
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) handleAssignEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload memberRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	assigned, err := h.Users.AssignEmployee(r.Context(), caller.UserID, payload.EmployeeID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "user.assign", assigned.ID)
	api.Success(w, api.Fields{"employee": assigned}, requestID)
}

func (h *Handler) handleRemoveEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload memberRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	if err := h.Users.RemoveEmployee(r.Context(), caller.UserID, payload.EmployeeID); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "user.unassign", payload.EmployeeID)
	api.Success(w, api.Fields{"message": "employee removed from your team"}, requestID)
}

func (h *Handler) handleMyTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	team, err := h.Users.MyTeam(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"employees": team}, requestID)
}

type profileRequest struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Avatar      string `json:"avatar"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload profileRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	updated, err := h.Users.UpdateProfile(r.Context(), caller.UserID, payload.Name, payload.Designation, payload.Avatar)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "user.profile.update", caller.UserID)
	api.Success(w, api.Fields{"user": updated}, requestID)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload changePasswordRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), caller.UserID, payload.CurrentPassword, payload.NewPassword); err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	h.record(r, caller.UserID, "user.password.change", caller.UserID)
	api.Success(w, api.Fields{"message": "password updated"}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	err := h.Audit.Record(r.Context(), actorID, action, "user", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r))
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
