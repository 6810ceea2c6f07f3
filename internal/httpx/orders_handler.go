package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/devpatel-io/agent-storefront/internal/kafka"
	"github.com/devpatel-io/agent-storefront/internal/orders"
	"github.com/devpatel-io/agent-storefront/internal/redisx"
)

type CreateOrderReq struct {
	AgentCode       string        `json:"agentCode"`
	Route           string        `json:"route"`
	SubmissionToken string        `json:"submissionToken"`
	Items           []orders.Line `json:"items"`
	TotalOrder      float64       `json:"TotalOrder"`
}

type UpdateOrderReq struct {
	Items  []orders.LineUpdate `json:"items"`
	Status orders.Status       `json:"status"`
}

// Cache is the slice of the redis client the handler needs. *redis.Client
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type OrdersHandler struct {
	Repo           *orders.Repo
	Producer       *kafkax.Producer // order.submitted
	UpdateProducer *kafkax.Producer // order.updated
	Redis          Cache
	Service        string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/all", h.grouped)
	r.Get("/orders/agent-codes", h.agentCodes)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.status)
	r.Post("/orders/by-agent", h.byAgent)
	r.Post("/orders/approve", h.approve)
	r.Put("/orders/update-status/{id}", h.updateStatus)
	r.Put("/orders/{id}", h.update)
	r.Delete("/orders/{id}", h.delete)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.AgentCode == "" || req.Route == "" || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "agentCode, route and items are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Redis fast path: a replayed submission token skips the store entirely.
	if req.SubmissionToken != "" {
		idemKey := fmt.Sprintf(redisx.KeyIdemSubmit, req.SubmissionToken)
		if id, err := h.Redis.Get(ctx, idemKey).Result(); err == nil && id != "" {
			writeReplay(w, id)
			return
		}
	}

	o := &orders.Order{
		SubmissionToken: req.SubmissionToken,
		AgentCode:       req.AgentCode,
		Route:           req.Route,
		Lines:           normalizeLines(req.Items),
		TotalOrder:      req.TotalOrder,
		Status:          orders.StatusPending,
	}
	if o.TotalOrder == 0 {
		for _, ln := range o.Lines {
			o.TotalOrder += ln.TotalPrice
		}
	}

	orderID, existed, err := h.Repo.Insert(ctx, o)
	if err != nil {
		log.Printf("create order: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	if req.SubmissionToken != "" {
		idemKey := fmt.Sprintf(redisx.KeyIdemSubmit, req.SubmissionToken)
		_ = h.Redis.Set(ctx, idemKey, orderID, redisx.TTLIdempotency).Err()
	}
	if existed {
		// Replayed token that missed the cache. The stored order may have
		// moved past Pending already, so leave the status cache alone and
		// point the caller at the persisted order.
		writeReplay(w, orderID)
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"Pending"}`, redisx.TTLStatusCache).Err()
	h.publishSubmitted(o, orderID, r.Header.Get("X-Request-Id"))

	o.ID = orderID
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"message":    "Order created successfully",
		"idempotent": false,
		"data":       o,
	})
}

func writeReplay(w http.ResponseWriter, orderID string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Order already submitted",
		"idempotent": true,
		"data":       map[string]any{"id": orderID},
	})
}

// status serves the order status from the Redis cache the worker keeps warm,
// falling back to the store (and re-priming the cache) on a miss.
func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if cached, err := h.Redis.Get(ctx, key).Result(); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(cached))
		return
	}

	o, err := h.Repo.GetByID(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("order status %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch order status")
		return
	}

	body, err := json.Marshal(map[string]any{"status": o.Status})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch order status")
		return
	}
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *OrdersHandler) publishSubmitted(o *orders.Order, orderID, traceID string) {
	lines := make([]orders.LineQty, 0, len(o.Lines))
	for _, ln := range o.Lines {
		lines = append(lines, orders.LineQty{ItemCode: ln.ItemCode, Quantity: ln.Quantity})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderSubmitted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderSubmittedPayload{
			OrderID:         orderID,
			SubmissionToken: o.SubmissionToken,
			AgentCode:       o.AgentCode,
			Route:           o.Route,
			Lines:           lines,
			TotalOrder:      o.TotalOrder,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderSubmitted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishUpdated(eventType, orderID string, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	h.UpdateProducer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.List(ctx, r.URL.Query().Get("agentCode"), r.URL.Query().Get("route"))
	if err != nil {
		log.Printf("list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Orders fetched successfully",
		"total":   len(out),
		"data":    out,
	})
}

func (h *OrdersHandler) grouped(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	grouped, err := h.Repo.GroupedByAgent(ctx)
	if err != nil {
		log.Printf("grouped orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": grouped})
}

func (h *OrdersHandler) agentCodes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	codes, err := h.Repo.DistinctAgentCodes(ctx)
	if err != nil {
		log.Printf("agent codes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch agent codes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": codes})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetByID(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("get order %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": o})
}

func (h *OrdersHandler) byAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AgentCode  string   `json:"agentCode"`
		AgentCodes []string `json:"agentCodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	codes := req.AgentCodes
	if len(codes) == 0 && req.AgentCode != "" {
		codes = []string{req.AgentCode}
	}
	if len(codes) == 0 {
		writeError(w, http.StatusBadRequest, "agentCode or agentCodes is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.ListByAgents(ctx, codes)
	if err != nil {
		log.Printf("orders by agent: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	if len(out) == 0 {
		writeError(w, http.StatusNotFound, "No orders found for the given agent(s)")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "total": len(out), "data": out})
}

func (h *OrdersHandler) approve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderIDs []string `json:"orderIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.OrderIDs) == 0 {
		writeError(w, http.StatusBadRequest, "No orders selected for approval")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.Repo.Approve(ctx, req.OrderIDs)
	if err != nil {
		log.Printf("approve orders: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to approve orders")
		return
	}
	h.invalidateStatus(ctx, req.OrderIDs...)
	for _, id := range req.OrderIDs {
		h.publishUpdated(orders.EventOrderApproved, id, orders.OrderApprovedPayload{OrderIDs: []string{id}})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Orders approved successfully",
		"modifiedCount": n,
	})
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateLines(ctx, id, req.Items, req.Status)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("update order %s: %v", id, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateStatus(ctx, id)
	h.publishUpdated(orders.EventOrderUpdated, id, orders.OrderUpdatedPayload{
		OrderID: id, Status: o.Status, TotalOrder: o.TotalOrder,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order updated successfully",
		"data":    o,
	})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateStatus(ctx, id, req.Status)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.invalidateStatus(ctx, id)
	h.publishUpdated(orders.EventOrderUpdated, id, orders.OrderUpdatedPayload{
		OrderID: id, Status: o.Status, TotalOrder: o.TotalOrder,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Status updated", "data": o})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Repo.Delete(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		log.Printf("delete order %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}
	h.invalidateStatus(ctx, id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order deleted successfully"})
}

func (h *OrdersHandler) invalidateStatus(ctx context.Context, ids ...string) {
	for _, id := range ids {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Err()
	}
}

func normalizeLines(in []orders.Line) []orders.Line {
	out := make([]orders.Line, 0, len(in))
	for _, ln := range in {
		if ln.Status == "" {
			ln.Status = orders.LineStatusPending
		}
		if ln.AcceptedQuantity == 0 {
			ln.AcceptedQuantity = ln.Quantity
		}
		if ln.TotalPrice == 0 {
			ln.TotalPrice = float64(ln.Quantity) * ln.Price
		}
		out = append(out, ln)
	}
	return out
}
