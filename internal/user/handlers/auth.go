package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"clanstats-server/internal/auth"
	"clanstats-server/internal/middleware"
	"clanstats-server/internal/shared/cookies"
	"clanstats-server/internal/shared/errors"
	"clanstats-server/internal/shared/response"
	"clanstats-server/internal/user"
)

type AuthHandler struct {
	service *user.Service
}

func NewAuthHandler(service *user.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  user.Public `json:"usuario"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "login")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	token, u, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	cookies.SetAuthCookie(w, token)
	response.Success(w, http.StatusOK, loginResponse{Token: token, User: u.Public()})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)

	response.Success(w, http.StatusOK, map[string]interface{}{
		"usuario": user.Public{
			Username: claims.Username,
			Name:     claims.Name,
			Role:     claims.Role,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookies.ClearAuthCookie(w)
	response.Success(w, http.StatusOK, map[string]string{"message": "logged out"})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"nombre"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "register")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	if _, err := h.service.Register(ctx, req.Username, req.Password, req.Name); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]string{
		"message": "user registered with member role",
	})
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"nombre"`
	Role     string `json:"rol"`
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_user")

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	u, err := h.service.CreateUser(ctx, req.Username, req.Password, req.Name, auth.Role(req.Role))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, map[string]interface{}{
		"message": "user created",
		"usuario": u.Public(),
	})
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "list_users")

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if users == nil {
		users = []user.User{}
	}

	response.Success(w, http.StatusOK, users)
}

type changeRoleRequest struct {
	Role string `json:"rol"`
}

func (h *AuthHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "change_role")

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid user ID format", err))
		return
	}

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid request body", err))
		return
	}

	claims := middleware.GetUserFromContext(r)

	u, err := h.service.ChangeRole(ctx, id, auth.Role(req.Role), claims.Name)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]interface{}{
		"message": "role updated",
		"usuario": u,
	})
}
