package api

import (
	"net/http"

	"github.com/garnizeh/studybuddy/internal/auth"
)

type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, "signup", &req); err != nil {
		writeError(w, err)
		return
	}

	token, acc, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, UserID: acc.UserID})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, "signin", &req); err != nil {
		writeError(w, err)
		return
	}

	token, acc, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, UserID: acc.UserID})
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	// For stateless JWT, signout is client-side (just delete token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
