package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"quizbook/internal/models"
	"quizbook/internal/service"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if err := h.AuthService.VerifyEmail(r.Context(), code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) NewVerificationCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.AuthService.NewVerificationCode(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeMessage(w)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, pair)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), refreshTokenFrom(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearCookie(w, RefreshCookie)
	clearCookie(w, AccessCookie)
	writeMessage(w)
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	pair, err := h.AuthService.Refresh(r.Context(), refreshTokenFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSession(w, pair)
}

// writeSession sets the refresh cookie; the refresh token never goes into the body.
func (h *Handlers) writeSession(w http.ResponseWriter, pair *service.TokenPair) {
	h.setRefreshCookie(w, pair.RefreshToken)
	writeSuccess(w, AuthResponse{AccessToken: pair.AccessToken, User: pair.User}, http.StatusOK)
}
