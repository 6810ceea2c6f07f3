package worker

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	kafkax "github.com/devpatel-io/agent-storefront/internal/kafka"
	"github.com/devpatel-io/agent-storefront/internal/orders"
)

func TestHandleOrderEventSkipsForeignTypes(t *testing.T) {
	// foreign events are dropped before any store access
	s := &Service{ServiceName: "test"}
	env := orders.Envelope{EventID: "e1", EventType: "PaymentAuthorized", EventVersion: 1}
	err := s.HandleOrderEvent(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	assert.NoError(t, err)
}

func TestHandleOrderEventRejectsMalformedEnvelope(t *testing.T) {
	s := &Service{ServiceName: "test"}
	err := s.HandleOrderEvent(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err)
}
