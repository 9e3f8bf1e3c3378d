package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Rrens/deskflow/internal/domain"
	"github.com/Rrens/deskflow/internal/stubserver/middleware"
	"github.com/Rrens/deskflow/internal/stubserver/response"
	"github.com/Rrens/deskflow/internal/stubserver/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	session, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, session)
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, session)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, user)
}

// UpdateProfile replaces the caller's editable profile fields
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, user)
}
