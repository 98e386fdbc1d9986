package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxikpi/internal/models"
	"github.com/parisxmas/oxikpi/internal/service"
)

type DepartmentHandler struct {
	svc *service.DepartmentService
}

func NewDepartmentHandler(svc *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

// List returns every department with its pillars and their assigned KPI counts.
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	depts, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if depts == nil {
		depts = []models.Department{}
	}
	writeJSON(w, http.StatusOK, depts)
}

func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	dept, err := h.svc.Get(r.Context(), chi.URLParam(r, "deptId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dept)
}

type departmentRequest struct {
	Name  string `json:"name" validate:"required"`
	HODID string `json:"hodId"`
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	dept, err := h.svc.Create(r.Context(), req.Name, req.HODID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dept)
}

type pillarRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *DepartmentHandler) AddPillar(w http.ResponseWriter, r *http.Request) {
	var req pillarRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	pillar, err := h.svc.AddPillar(r.Context(), chi.URLParam(r, "deptId"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pillar)
}
