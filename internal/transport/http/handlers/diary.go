package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-diary/internal/api"
	"github.com/pribylovaa/go-diary/internal/service"
	apierrors "github.com/pribylovaa/go-diary/internal/transport/http/errors"
)

// ListEntries — GET /api/diary?userId=<id>[&date=YYYY-MM-DD].
// С date отдаётся массив из не более чем одной записи (точное совпадение строки).
func (h *Handlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	claimed := strings.TrimSpace(q.Get("userId"))
	if claimed == "" {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	userID, err := h.owner(r, claimed)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if date := q.Get("date"); date != "" {
		e, err := h.Diary.ByDate(r.Context(), userID, date)
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(w, http.StatusOK, []api.Entry{})
			return
		}
		if err != nil {
			apierrors.WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, []api.Entry{api.EntryFromModel(*e)})
		return
	}

	entries, err := h.Diary.List(r.Context(), userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.EntriesFromModel(entries))
}

// CreateEntry — POST /api/diary {userId, entry}.
func (h *Handlers) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var in api.CreateRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if strings.TrimSpace(in.UserID) == "" || in.Entry == nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	userID, err := h.owner(r, in.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id, err := h.Diary.Create(r.Context(), userID, in.Entry.ToModel())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.CreateResponse{Success: true, EntryID: id})
}

// UpdateEntry — PUT /api/diary {userId, entryId, updatedData}.
func (h *Handlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var in api.UpdateRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.EntryID) == "" || in.UpdatedData == nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	userID, err := h.owner(r, in.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Diary.Update(r.Context(), userID, in.EntryID, in.UpdatedData.ToPatch()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.UpdateResponse{Success: true})
}
