package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxikpi/internal/auth"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/service"
)

type AssignmentHandler struct {
	svc *service.AssignmentService
}

func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// assignRequest carries no validate tags: the service reports missing
// selections with its own messages.
type assignRequest struct {
	DepartmentID string   `json:"departmentId"`
	PillarID     string   `json:"pillarId"`
	KPIIDs       []string `json:"kpiIds"`
	SelectAll    bool     `json:"selectAll"`
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	claims := auth.GetUser(r.Context())
	res, err := h.svc.Assign(r.Context(), service.AssignInput{
		DepartmentID: req.DepartmentID,
		PillarID:     req.PillarID,
		KPIIDs:       req.KPIIDs,
		SelectAll:    req.SelectAll,
	}, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func filterFrom(r *http.Request) kpi.Filter {
	q := r.URL.Query()
	return kpi.Filter{
		DepartmentID: q.Get("departmentId"),
		PillarID:     q.Get("pillarId"),
		FormID:       q.Get("formId"),
		Status:       kpi.Status(q.Get("status")),
	}
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), filterFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []kpi.AssignedKPI{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignedKpis": items})
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
