package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devpatel-io/agent-storefront/internal/templates"
)

// SaveTemplateReq accepts either a single item or an items array; old
// storefront builds send the singular form.
type SaveTemplateReq struct {
	AgentCode    string           `json:"agentCode"`
	TemplateName string           `json:"templateName"`
	TemplateType string           `json:"templateType"`
	Item         *templates.Item  `json:"item,omitempty"`
	Items        []templates.Item `json:"items,omitempty"`
	CreatedBy    string           `json:"createdBy,omitempty"`
}

type TemplatesHandler struct {
	Repo *templates.Repo
}

func (h *TemplatesHandler) Register(r *chi.Mux) {
	r.Post("/templates", h.create)
	r.Get("/templates", h.listGrouped)
	r.Get("/templates/type", h.listByType)
	r.Get("/templates/{id}", h.get)
	r.Put("/templates/{id}", h.update)
	r.Delete("/templates/{id}", h.delete)
}

func (h *TemplatesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	items := req.Items
	if len(items) == 0 && req.Item != nil {
		items = []templates.Item{*req.Item}
	}
	if req.AgentCode == "" || req.TemplateName == "" || req.TemplateType == "" || len(items) == 0 {
		writeError(w, http.StatusBadRequest, "agentCode, templateName, templateType and items are required")
		return
	}
	if _, err := templates.NormalizeType(req.TemplateType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t := &templates.Template{
		AgentCode:    req.AgentCode,
		TemplateName: req.TemplateName,
		TemplateType: req.TemplateType,
		Items:        items,
		CreatedBy:    req.CreatedBy,
	}
	err := h.Repo.Save(ctx, t)
	if errors.Is(err, templates.ErrDuplicate) {
		writeError(w, http.StatusConflict, "Template with this agentCode + templateName already exists.")
		return
	}
	if err != nil {
		log.Printf("save template: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save template")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Template saved successfully",
		"data":    t,
	})
}

func (h *TemplatesHandler) listGrouped(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	grouped, err := h.Repo.ListGrouped(ctx, r.URL.Query().Get("agentCode"))
	if err != nil {
		log.Printf("list templates: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch templates")
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (h *TemplatesHandler) listByType(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		writeError(w, http.StatusBadRequest, "Query param 'type' is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListByType(ctx, r.URL.Query().Get("agentCode"), typ)
	if errors.Is(err, templates.ErrInvalidType) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("list templates by type: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch templates")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TemplatesHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	t, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, templates.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	if err != nil {
		log.Printf("get template: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch template")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TemplatesHandler) update(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	items := req.Items
	if len(items) == 0 && req.Item != nil {
		items = []templates.Item{*req.Item}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t := &templates.Template{
		TemplateName: req.TemplateName,
		TemplateType: req.TemplateType,
		Items:        items,
	}
	updated, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), t)
	switch {
	case errors.Is(err, templates.ErrInvalidType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, templates.ErrNotFound):
		writeError(w, http.StatusNotFound, "Template not found")
	case errors.Is(err, templates.ErrDuplicate):
		writeError(w, http.StatusConflict, "Duplicate template (agentCode + templateName).")
	case err != nil:
		log.Printf("update template: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update template")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Template updated", "data": updated})
	}
}

func (h *TemplatesHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, templates.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Template not found")
		return
	}
	if err != nil {
		log.Printf("delete template: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Template deleted"})
}
