package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxikpi/internal/auth"
	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/service"
)

type FormHandler struct {
	svc *service.FormService
}

func NewFormHandler(svc *service.FormService) *FormHandler {
	return &FormHandler{svc: svc}
}

type formRequest struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description"`
	Value       float64              `json:"value" validate:"gte=0"`
	Elements    []form.FieldInstance `json:"elements"`
}

func (req formRequest) input() service.FormInput {
	return service.FormInput{Title: req.Title, Description: req.Description, Value: req.Value, Elements: req.Elements}
}

func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	claims := auth.GetUser(r.Context())
	schema, err := h.svc.Create(r.Context(), req.input(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, schema)
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	schema, err := h.svc.Get(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	schema, err := h.svc.Update(r.Context(), chi.URLParam(r, "formId"), req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "formId")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Builder edits

func (h *FormHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	var el form.FieldInstance
	if err := readJSON(r, &el); err != nil {
		writeDecodeError(w, err)
		return
	}
	added, err := h.svc.AddElement(r.Context(), chi.URLParam(r, "formId"), el)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateElement merges the body into the element's attributes.
func (h *FormHandler) UpdateElement(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	el, err := h.svc.UpdateElement(r.Context(), chi.URLParam(r, "formId"), chi.URLParam(r, "elementId"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

func (h *FormHandler) RemoveElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "elementId")
	if err := h.svc.RemoveElement(r.Context(), chi.URLParam(r, "formId"), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

type reorderRequest struct {
	Order []string `json:"order" validate:"required,min=1"`
}

func (h *FormHandler) ReorderElements(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	schema, err := h.svc.ReorderElements(r.Context(), chi.URLParam(r, "formId"), req.Order)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// Render returns the single-entry controls of the form.
func (h *FormHandler) Render(w http.ResponseWriter, r *http.Request) {
	controls, err := h.svc.Render(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"controls": controls})
}

// Table returns the column layout used for bulk entry.
func (h *FormHandler) Table(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.TableLayout(r.Context(), chi.URLParam(r, "formId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
