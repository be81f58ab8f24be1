package authhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms/internal/auth"
	"lms/internal/domain/user"
	"lms/internal/platform/config"
	"lms/internal/transport/http/api"
	"lms/internal/transport/http/middleware"
	"lms/internal/transport/http/shared"
)

type Handler struct {
	Users  *user.Service
	Config config.Config
}

func NewHandler(users *user.Service, cfg config.Config) *Handler {
	return &Handler{Users: users, Config: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload registerRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}
	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	// Admin accounts come from the seed or an existing admin, never from
	// open registration.
	if payload.Role == auth.RoleAdmin {
		api.Fail(w, http.StatusForbidden, "cannot register an admin account", requestID)
		return
	}

	registered, err := h.Users.Register(r.Context(), payload.Name, payload.Email, payload.Password, payload.Role)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}

	token, err := h.issueToken(registered)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "failed to issue token", requestID)
		return
	}
	api.Created(w, api.Fields{"user": registered, "token": token}, requestID)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid request payload", requestID)
		return
	}

	authenticated, err := h.Users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		// Same message for unknown email and wrong password.
		api.Fail(w, http.StatusUnauthorized, "invalid credentials", requestID)
		return
	}

	token, err := h.issueToken(authenticated)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "failed to issue token", requestID)
		return
	}
	api.Success(w, api.Fields{"user": authenticated, "token": token}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	me, err := h.Users.Get(r.Context(), caller.UserID)
	if err != nil {
		api.FailErr(w, err, requestID)
		return
	}
	api.Success(w, api.Fields{"user": me}, requestID)
}

func (h *Handler) issueToken(u user.User) (string, error) {
	return auth.GenerateToken(h.Config.JWTSecret, auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}, h.Config.TokenTTL)
}
