package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockprep/mockprep-go/internal/middleware"
	"github.com/mockprep/mockprep-go/internal/service"
)

// AdminHandler serves the admin catalogue CRUD endpoints.
type AdminHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// Routes mounts the catalogue endpoints on r. Authentication is the caller's job.
func (h *AdminHandler) Routes(r chi.Router) {
	s := h.service

	r.Get("/categories", listHandler(h, s.ListCategories))
	r.Post("/categories", createHandler(h, s.CreateCategory))
	r.Put("/categories/{id}", updateHandler(h, s.UpdateCategory))
	r.Delete("/categories/{id}", deleteHandler(h, s.DeleteCategory))
	r.Get("/categories/{id}/subcategories", h.handleSubCategoriesByCategory)

	r.Get("/subcategories", listHandler(h, s.ListSubCategories))
	r.Post("/subcategories", createHandler(h, s.CreateSubCategory))
	r.Put("/subcategories/{id}", updateHandler(h, s.UpdateSubCategory))
	r.Delete("/subcategories/{id}", deleteHandler(h, s.DeleteSubCategory))

	r.Get("/interviews", listHandler(h, s.ListInterviews))
	r.Post("/interviews", createHandler(h, s.CreateInterview))
	r.Put("/interviews/{id}", updateHandler(h, s.UpdateInterview))
	r.Delete("/interviews/{id}", deleteHandler(h, s.DeleteInterview))

	r.Get("/hrs", listHandler(h, s.ListHRs))
	r.Post("/hrs", createHandler(h, s.CreateHR))
	r.Put("/hrs/{id}", updateHandler(h, s.UpdateHR))
	r.Delete("/hrs/{id}", deleteHandler(h, s.DeleteHR))

	r.Get("/experts", listHandler(h, s.ListExperts))
	r.Post("/experts", createHandler(h, s.CreateExpert))
	r.Put("/experts/{id}", updateHandler(h, s.UpdateExpert))
	r.Delete("/experts/{id}", deleteHandler(h, s.DeleteExpert))
}

// handleSubCategoriesByCategory handles GET /api/admin/categories/{id}/subcategories.
func (h *AdminHandler) handleSubCategoriesByCategory(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListSubCategoriesByCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.logger.Error("admin request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

// audit records a catalogue change together with the admin who made it.
func (h *AdminHandler) audit(r *http.Request, action string) {
	admin, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		admin = "unknown"
	}
	h.logger.Info("admin catalogue change", "action", action, "path", r.URL.Path, "admin", admin)
}

func listHandler[T any](h *AdminHandler, list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func createHandler[T any](h *AdminHandler, create func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item T
		if !decodeBody(w, r, &item) {
			return
		}
		created, err := create(r.Context(), item)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit(r, "create")
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateHandler[P, T any](h *AdminHandler, update func(context.Context, string, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch P
		if !decodeBody(w, r, &patch) {
			return
		}
		updated, err := update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit(r, "update")
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteHandler(h *AdminHandler, remove func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			h.fail(w, r, err)
			return
		}
		h.audit(r, "delete")
		w.WriteHeader(http.StatusNoContent)
	}
}
