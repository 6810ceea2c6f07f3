package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpatel-io/agent-storefront/internal/cart"
	"github.com/devpatel-io/agent-storefront/internal/checkout"
)

func TestSubmitOrderPreconditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected before preconditions pass")
	}))
	defer srv.Close()
	c := New(srv.URL)

	lines := []checkout.OrderLine{{ItemCode: "A1", Quantity: 1, UnitPrice: 10, LineTotal: 10}}

	_, err := c.SubmitOrder(context.Background(), NewAttempt(), "", "3", lines, 10)
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, err = c.SubmitOrder(context.Background(), NewAttempt(), "7", "", lines, 10)
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, err = c.SubmitOrder(context.Background(), NewAttempt(), "7", "3", nil, 0)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestSubmitOrderSendsTokenAndParsesID(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "ord-123"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	lines := []checkout.OrderLine{{ItemCode: "A1", ItemName: "Basundi", Quantity: 4, UnitPrice: 40, LineTotal: 160}}

	id, err := c.SubmitOrder(context.Background(), NewAttempt(), "7", "3", lines, 160)
	require.NoError(t, err)
	assert.Equal(t, "ord-123", id)

	assert.Equal(t, "7", got["agentCode"])
	assert.Equal(t, "3", got["route"])
	assert.Equal(t, "Pending", got["status"])
	assert.Equal(t, 160.0, got["TotalOrder"])
	assert.NotEmpty(t, got["submissionToken"], "every attempt must carry an idempotency token")
}

func TestSubmitOrderSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "failed to create order"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	lines := []checkout.OrderLine{{ItemCode: "A1", Quantity: 1, UnitPrice: 10, LineTotal: 10}}

	_, err := c.SubmitOrder(context.Background(), NewAttempt(), "7", "3", lines, 10)
	var se *SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "failed to create order", se.Message)
}

// Full storefront flow: add, merge, decrement, checkout, submit, clear.
func TestCheckoutScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		items := req["items"].([]any)
		require.Len(t, items, 1)
		line := items[0].(map[string]any)
		assert.Equal(t, "A1", line["itemCode"])
		assert.Equal(t, 4.0, line["quantity"])
		assert.Equal(t, 160.0, line["totalPrice"])
		assert.Equal(t, 160.0, req["TotalOrder"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "ord-777"},
		})
	}))
	defer srv.Close()

	s := cart.NewStore()
	p := cart.Product{ItemCode: "A1", ItemName: "Basundi", UnitPrice: 40}

	s.Add(p, 2)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, 80.0, s.TotalValue())

	s.Add(p, 3)
	ln, _ := s.Get("A1")
	assert.Equal(t, 5, ln.Quantity)
	assert.Equal(t, 200.0, s.TotalValue())

	s.Decrement("A1")
	assert.Equal(t, 160.0, s.TotalValue())

	lines, grand := checkout.Assemble(s.Lines())
	require.Len(t, lines, 1)
	assert.Equal(t, 160.0, lines[0].LineTotal)
	assert.Equal(t, 160.0, grand)

	c := New(srv.URL)
	id, err := c.SubmitOrder(context.Background(), NewAttempt(), "7", "3", lines, grand)
	require.NoError(t, err)
	assert.Equal(t, "ord-777", id)

	// clearing the cart is the caller's job, not the client's
	s.Clear()
	assert.Equal(t, 0.0, s.TotalValue())
}

// A retry after a timeout resends the same attempt, so the server sees the
// same token twice and dedups; only a new attempt gets a new token.
func TestRetrySameAttemptReusesToken(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		tokens = append(tokens, req["submissionToken"].(string))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": "ord-1"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	lines := []checkout.OrderLine{{ItemCode: "A1", Quantity: 1, UnitPrice: 10, LineTotal: 10}}

	attempt := NewAttempt()
	_, err := c.SubmitOrder(context.Background(), attempt, "7", "3", lines, 10)
	require.NoError(t, err)
	_, err = c.SubmitOrder(context.Background(), attempt, "7", "3", lines, 10)
	require.NoError(t, err)

	require.Len(t, tokens, 2)
	assert.NotEmpty(t, tokens[0])
	assert.Equal(t, tokens[0], tokens[1])

	_, err = c.SubmitOrder(context.Background(), NewAttempt(), "7", "3", lines, 10)
	require.NoError(t, err)
	assert.NotEqual(t, tokens[0], tokens[2])
}

func TestListTemplatesGrouped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/templates", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("agentCode"))
		_, _ = w.Write([]byte(`{"Popular":[{"templateName":"morning run","templateType":"template"}],"AddOn":[]}`))
	}))
	defer srv.Close()

	g, err := New(srv.URL).ListTemplates(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, g.Popular, 1)
	assert.Equal(t, "morning run", g.Popular[0].TemplateName)
	assert.Empty(t, g.AddOn)
}
