package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxikpi/internal/auth"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/service"
)

// DraftHandler serves the caller's server-held entry table for an assigned
// KPI. Row indexes in paths are 0-based.
type DraftHandler struct {
	svc *service.DraftService
}

func NewDraftHandler(svc *service.DraftService) *DraftHandler {
	return &DraftHandler{svc: svc}
}

func ids(r *http.Request) (userID, assignedID string) {
	return auth.GetUser(r.Context()).UserID, chi.URLParam(r, "id")
}

func respondDraft(w http.ResponseWriter, v *service.DraftView, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *DraftHandler) View(w http.ResponseWriter, r *http.Request) {
	user, id := ids(r)
	v, err := h.svc.View(r.Context(), user, id)
	respondDraft(w, v, err)
}

func (h *DraftHandler) AddRow(w http.ResponseWriter, r *http.Request) {
	user, id := ids(r)
	v, err := h.svc.AddRow(r.Context(), user, id)
	respondDraft(w, v, err)
}

func (h *DraftHandler) RemoveRow(w http.ResponseWriter, r *http.Request) {
	row, ok := intParam(w, r, "row")
	if !ok {
		return
	}
	user, id := ids(r)
	v, err := h.svc.RemoveRow(r.Context(), user, id, row)
	respondDraft(w, v, err)
}

type valueRequest struct {
	Value any `json:"value"`
}

func (h *DraftHandler) UpdateCell(w http.ResponseWriter, r *http.Request) {
	row, ok := intParam(w, r, "row")
	if !ok {
		return
	}
	var req valueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, id := ids(r)
	v, err := h.svc.UpdateCell(r.Context(), user, id, row, chi.URLParam(r, "fieldId"), req.Value)
	respondDraft(w, v, err)
}

type openEditorRequest struct {
	Row     *int   `json:"row" validate:"required,gte=0"`
	FieldID string `json:"fieldId" validate:"required"`
}

// OpenEditor starts editing a complex cell outside the table.
func (h *DraftHandler) OpenEditor(w http.ResponseWriter, r *http.Request) {
	var req openEditorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, id := ids(r)
	v, err := h.svc.OpenEditor(r.Context(), user, id, *req.Row, req.FieldID)
	respondDraft(w, v, err)
}

func (h *DraftHandler) StageEditor(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, id := ids(r)
	v, err := h.svc.StageEditor(r.Context(), user, id, req.Value)
	respondDraft(w, v, err)
}

func (h *DraftHandler) SaveEditor(w http.ResponseWriter, r *http.Request) {
	user, id := ids(r)
	v, err := h.svc.SaveEditor(r.Context(), user, id)
	respondDraft(w, v, err)
}

func (h *DraftHandler) CancelEditor(w http.ResponseWriter, r *http.Request) {
	user, id := ids(r)
	v, err := h.svc.CancelEditor(r.Context(), user, id)
	respondDraft(w, v, err)
}

// Submit validates every row and stores the non-empty ones.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, id := ids(r)
	a, err := h.svc.Submit(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpi.Card{AssignedKPI: *a, Badge: a.Badge()})
}

func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	user, id := ids(r)
	h.svc.Discard(user, id)
	w.WriteHeader(http.StatusNoContent)
}
