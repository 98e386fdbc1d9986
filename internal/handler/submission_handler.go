package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxikpi/internal/auth"
	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/models"
	"github.com/parisxmas/oxikpi/internal/service"
)

// SubmissionHandler serves single-entry submissions of a form.
type SubmissionHandler struct {
	subSvc *service.SubmissionService
}

func NewSubmissionHandler(subSvc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{subSvc: subSvc}
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formId")
	skip, limit := paging(r)

	subs, total, err := h.subSvc.List(r.Context(), formID, skip, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       total,
		"skip":        skip,
		"limit":       limit,
	})
}

type submissionRequest struct {
	Data form.Entry `json:"data" validate:"required"`
	// Files are document ids returned by the upload endpoint.
	Files []string `json:"files"`
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	claims := auth.GetUser(r.Context())
	sub, err := h.subSvc.Create(r.Context(), chi.URLParam(r, "formId"), req.Data, req.Files, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) get(w http.ResponseWriter, r *http.Request) (*models.Submission, bool) {
	sub, err := h.subSvc.Get(r.Context(), chi.URLParam(r, "subId"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if sub.FormID != chi.URLParam(r, "formId") {
		writeError(w, http.StatusNotFound, "submission not found")
		return nil, false
	}
	return sub, true
}

func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if sub, ok := h.get(w, r); ok {
		writeJSON(w, http.StatusOK, sub)
	}
}

func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.get(w, r)
	if !ok {
		return
	}
	if err := h.subSvc.Delete(r.Context(), sub.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": sub.ID})
}
