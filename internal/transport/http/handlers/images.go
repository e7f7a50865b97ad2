package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-diary/internal/api"
	apierrors "github.com/pribylovaa/go-diary/internal/transport/http/errors"
)

// PresignImage — POST /api/images/presign.
func (h *Handlers) PresignImage(w http.ResponseWriter, r *http.Request) {
	var in api.PresignRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	userID, err := h.owner(r, in.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	info, err := h.Diary.ImageUploadURL(r.Context(), userID, in.ContentType, in.ContentLength)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.PresignFromStorage(info))
}

// ConfirmImage — POST /api/images/confirm.
func (h *Handlers) ConfirmImage(w http.ResponseWriter, r *http.Request) {
	var in api.ConfirmRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	userID, err := h.owner(r, in.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	u, err := h.Diary.ConfirmImage(r.Context(), userID, in.Key)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ConfirmResponse{URL: u})
}
