package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parisxmas/oxikpi/internal/auth"
	"github.com/parisxmas/oxikpi/internal/handler"
	mw "github.com/parisxmas/oxikpi/internal/middleware"
	"github.com/parisxmas/oxikpi/internal/models"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Dashboard   *handler.DashboardHandler
	Forms       *handler.FormHandler
	Submissions *handler.SubmissionHandler
	Departments *handler.DepartmentHandler
	Assignments *handler.AssignmentHandler
	KPI         *handler.KPIHandler
	Drafts      *handler.DraftHandler
	Documents   *handler.DocumentHandler
}

type Options struct {
	JWTSecret      string
	RequestTimeout time.Duration
	Log            *zap.Logger
}

func New(opts Options, h Handlers) *chi.Mux {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery(log))
	r.Use(mw.Logger(log))
	r.Use(mw.CORS)
	r.Use(mw.Timeout(opts.RequestTimeout))

	editors := auth.RequireRole(models.RoleAdmin, models.RoleQOC)
	admins := auth.RequireRole(models.RoleAdmin)
	assigners := auth.RequireRole(models.RoleAdmin, models.RoleHOD, models.RoleQOC)
	reviewers := auth.RequireRole(models.RoleAdmin, models.RoleQOC)

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.JWTSecret))

			// Auth
			r.Get("/auth/me", h.Auth.Me)

			// Dashboard
			r.Get("/dashboard", h.Dashboard.Dashboard)

			// KPI forms
			r.Get("/forms", h.Forms.List)
			r.Get("/forms/{formId}", h.Forms.Get)
			r.Get("/forms/{formId}/render", h.Forms.Render)
			r.Get("/forms/{formId}/table", h.Forms.Table)
			r.Group(func(r chi.Router) {
				r.Use(editors)
				r.Post("/forms", h.Forms.Create)
				r.Put("/forms/{formId}", h.Forms.Update)
				r.Delete("/forms/{formId}", h.Forms.Delete)
				r.Post("/forms/{formId}/elements", h.Forms.AddElement)
				r.Put("/forms/{formId}/elements/order", h.Forms.ReorderElements)
				r.Patch("/forms/{formId}/elements/{elementId}", h.Forms.UpdateElement)
				r.Delete("/forms/{formId}/elements/{elementId}", h.Forms.RemoveElement)
			})

			// Single-entry submissions
			r.Get("/forms/{formId}/submissions", h.Submissions.List)
			r.Post("/forms/{formId}/submissions", h.Submissions.Create)
			r.Get("/forms/{formId}/submissions/{subId}", h.Submissions.Get)
			r.Delete("/forms/{formId}/submissions/{subId}", h.Submissions.Delete)

			// Departments
			r.Get("/departments", h.Departments.List)
			r.Get("/departments/{deptId}", h.Departments.Get)
			r.Get("/departments/{deptId}/submissions", h.KPI.Submissions)
			r.With(admins).Post("/departments", h.Departments.Create)
			r.With(admins).Post("/departments/{deptId}/pillars", h.Departments.AddPillar)

			// Assignment
			r.Get("/assignments", h.Assignments.List)
			r.With(assigners).Post("/assignments", h.Assignments.Assign)

			// KPI data, review and table drafts
			r.Post("/kpi-data", h.KPI.Save)
			r.Route("/assigned-kpis/{id}", func(r chi.Router) {
				r.Get("/", h.Assignments.Get)
				r.With(reviewers).Post("/review", h.KPI.Review)

				r.Get("/draft", h.Drafts.View)
				r.Delete("/draft", h.Drafts.Discard)
				r.Post("/draft/rows", h.Drafts.AddRow)
				r.Delete("/draft/rows/{row}", h.Drafts.RemoveRow)
				r.Put("/draft/rows/{row}/cells/{fieldId}", h.Drafts.UpdateCell)
				r.Post("/draft/editor", h.Drafts.OpenEditor)
				r.Put("/draft/editor", h.Drafts.StageEditor)
				r.Delete("/draft/editor", h.Drafts.CancelEditor)
				r.Post("/draft/editor/save", h.Drafts.SaveEditor)
				r.Post("/draft/submit", h.Drafts.Submit)
			})

			// Documents
			r.Post("/documents", h.Documents.Upload)
			r.Get("/documents/{docId}", h.Documents.Get)
			r.Get("/documents/{docId}/download", h.Documents.Download)
			r.Delete("/documents/{docId}", h.Documents.Delete)
		})
	})

	return r
}
