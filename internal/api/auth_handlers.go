package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/felixgeelhaar/skillquest/internal/auth"
	"github.com/felixgeelhaar/skillquest/internal/domain"
)

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	var body auth.RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		BadRequest(w, req, "invalid request body")
		return
	}

	user, err := r.app.Auth.Register(req.Context(), body)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		Invalid(w, req, err.Error())
		return
	case errors.Is(err, domain.ErrEmailExists):
		Conflict(w, req, "Email already registered")
		return
	case err != nil:
		InternalError(w, req, "registration failed", err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body auth.LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		BadRequest(w, req, "invalid request body")
		return
	}

	token, err := r.app.Auth.Login(req.Context(), body)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		Invalid(w, req, err.Error())
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		Unauthorized(w, req, "Invalid email or password")
		return
	case err != nil:
		InternalError(w, req, "login failed", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	claims := claimsFrom(req.Context())

	user, err := r.app.Auth.Me(req.Context(), claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		NotFound(w, req, "User not found")
		return
	}
	if err != nil {
		InternalError(w, req, "failed to load user", err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}
