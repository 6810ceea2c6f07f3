package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devpatel-io/agent-storefront/internal/filter"
)

const defaultCollection = "ItemMaster"

type FilterHandler struct {
	Gateway *filter.Gateway
}

func (h *FilterHandler) Register(r *chi.Mux) {
	r.Post("/data/filter", h.filtered)
	r.Get("/data", h.all)
}

func (h *FilterHandler) filtered(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		collection = defaultCollection
	}

	criteria := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if criteria == nil {
		// a JSON null body decodes into a nil map
		criteria = map[string]any{}
	}
	// query-string limit is a fallback when the body carries none
	if _, ok := criteria["limit"]; !ok {
		if l := r.URL.Query().Get("limit"); l != "" {
			criteria["limit"] = l
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Gateway.Filter(ctx, collection, criteria)
	if err != nil {
		log.Printf("filter %s: %v", collection, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"message": "failed to query collection",
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *FilterHandler) all(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		collection = defaultCollection
	}

	opts := filter.Options{SortBy: r.URL.Query().Get("sortBy"), Order: 1}
	if strings.EqualFold(r.URL.Query().Get("order"), "desc") {
		opts.Order = -1
	}
	if l, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil {
		opts.Limit = l
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Gateway.All(ctx, collection, opts)
	if err != nil {
		log.Printf("list %s: %v", collection, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":      false,
			"message": "failed to query collection",
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
