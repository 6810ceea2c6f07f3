// Package worker keeps the order status cache warm by consuming order
// events. Each event is deduped by event id so redeliveries are harmless.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/devpatel-io/agent-storefront/internal/kafka"
	"github.com/devpatel-io/agent-storefront/internal/orders"
	"github.com/devpatel-io/agent-storefront/internal/redisx"
)

type Service struct {
	Repo        *orders.Repo
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderEvent is wired as the consumer handler for order topics.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	switch env.EventType {
	case orders.EventOrderSubmitted, orders.EventOrderUpdated, orders.EventOrderApproved:
	default:
		return nil // foreign event type, skip
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	orderID := env.CorrelationID
	if orderID == "" {
		if p, err := kafkax.UnwrapPayload[orders.OrderSubmittedPayload](env.Payload); err == nil {
			orderID = p.OrderID
		}
	}
	if orderID == "" {
		return nil
	}
	return s.refreshStatus(ctx, orderID)
}

// refreshStatus re-reads the order and caches its current status. An order
// deleted between event and processing just clears the cache entry.
func (s *Service) refreshStatus(ctx context.Context, orderID string) error {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)

	o, err := s.Repo.GetByID(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		_ = s.Redis.Del(ctx, key).Err()
		return nil
	}
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"status": o.Status})
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
