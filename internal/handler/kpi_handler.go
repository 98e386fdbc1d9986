package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxikpi/internal/auth"
	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/service"
)

// KPIHandler serves KPI data entry and QOC review.
type KPIHandler struct {
	data   *service.KPIDataService
	review *service.ReviewService
}

func NewKPIHandler(data *service.KPIDataService, review *service.ReviewService) *KPIHandler {
	return &KPIHandler{data: data, review: review}
}

type kpiDataRequest struct {
	ID       string `json:"id" validate:"required"`
	FormData struct {
		Entries []form.Entry `json:"entries"`
	} `json:"formData"`
}

// Save stores the rows entered for an assigned KPI and marks it pending.
func (h *KPIHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req kpiDataRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	claims := auth.GetUser(r.Context())
	a, err := h.data.Save(r.Context(), req.ID, req.FormData.Entries, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Submissions lists a department's assigned KPIs with their status badges.
func (h *KPIHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	f := filterFrom(r)
	f.DepartmentID = chi.URLParam(r, "deptId")
	cards, err := h.data.Submissions(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cards == nil {
		cards = []kpi.Card{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignedKpis": cards})
}

type reviewRequest struct {
	Decision string `json:"decision" validate:"required"`
	Remark   string `json:"remark"`
}

func (h *KPIHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	claims := auth.GetUser(r.Context())
	a, err := h.review.Review(r.Context(), chi.URLParam(r, "id"), req.Decision, req.Remark, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpi.Card{AssignedKPI: *a, Badge: a.Badge()})
}
