package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-diary/internal/api"
	"github.com/pribylovaa/go-diary/internal/service"
	apierrors "github.com/pribylovaa/go-diary/internal/transport/http/errors"
	"github.com/pribylovaa/go-diary/internal/transport/http/middleware"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if h.Identity == nil {
		apierrors.WriteError(w, r, service.ErrUnavailable)
		return
	}

	var in api.RegisterRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	tok, err := h.Identity.Register(r.Context(), in.Email, in.Password, in.DisplayName)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AuthFromModel(tok))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if h.Identity == nil {
		apierrors.WriteError(w, r, service.ErrUnavailable)
		return
	}

	var in api.LoginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	tok, err := h.Identity.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AuthFromModel(tok))
}

// Logout отзывает токен текущего запроса. Требует RequireUser.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Identity == nil {
		apierrors.WriteError(w, r, service.ErrUnavailable)
		return
	}

	if err := h.Identity.Logout(r.Context(), middleware.TokenFrom(r.Context())); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.LogoutResponse{Success: true})
}

// Me возвращает пользователя из токена. Требует RequireUser.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFrom(r.Context()))
}
