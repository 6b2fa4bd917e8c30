package handler

import (
	"context"
	"net/http"

	"medportal/internal/model"
)

type authService interface {
	Login(ctx context.Context, doctorID string, password string, client model.ClientInfo) (model.LoginResponse, error)
	ValidateSession(token string) (model.SessionInfo, error)
	Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (model.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string, client model.ClientInfo) error
}

type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.DoctorID, payload.Password, clientFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// ValidateSession checks the access token passed in the token query
// parameter.
func (h *AuthHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.ValidateSession(r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), payload.RefreshToken, clientFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), payload.RefreshToken, clientFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LogoutResponse{LoggedOut: true})
}
