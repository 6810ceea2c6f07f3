// Package client is the storefront side of the order API: it packages an
// assembled checkout into a submission request and relays server acceptance
// or rejection back to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/devpatel-io/agent-storefront/internal/checkout"
	"github.com/devpatel-io/agent-storefront/internal/templates"
)

var (
	ErrMissingIdentifier = errors.New("agentCode and route are required")
	ErrEmptyOrder        = errors.New("add items before checkout")
)

// SubmissionError is a server-side or transport rejection. Message carries
// the server's explanation when one was given.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order submission failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("order submission failed (%d)", e.StatusCode)
}

// Attempt is one user checkout attempt. The submission token is minted when
// the attempt starts and stays fixed across retries of that attempt, so a
// resend after a timeout replays the same token against the server's dedup
// index instead of creating a second order. A deliberate re-checkout is a new
// Attempt.
type Attempt struct {
	Token string
}

func NewAttempt() Attempt { return Attempt{Token: uuid.NewString()} }

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type submitReq struct {
	AgentCode       string               `json:"agentCode"`
	Route           string               `json:"route"`
	SubmissionToken string               `json:"submissionToken"`
	Items           []checkout.OrderLine `json:"items"`
	TotalOrder      float64              `json:"TotalOrder"`
	Status          string               `json:"status"`
}

type submitResp struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Idempotent bool   `json:"idempotent"`
	Data       struct {
		ID string `json:"id"`
	} `json:"data"`
}

// SubmitOrder sends one checkout to the server. Preconditions fail fast with
// no network call. The attempt's token rides along as the idempotency key;
// callers retrying after a timeout pass the same Attempt. The caller clears
// the cart after a success; this client never touches cart state.
func (c *Client) SubmitOrder(ctx context.Context, a Attempt, agentCode, route string, lines []checkout.OrderLine, total float64) (string, error) {
	if agentCode == "" || route == "" {
		return "", ErrMissingIdentifier
	}
	if len(lines) == 0 {
		return "", ErrEmptyOrder
	}

	body := submitReq{
		AgentCode:       agentCode,
		Route:           route,
		SubmissionToken: a.Token,
		Items:           lines,
		TotalOrder:      total,
		Status:          "Pending",
	}

	var out submitResp
	if err := c.post(ctx, "/orders", body, &out); err != nil {
		return "", err
	}
	return out.Data.ID, nil
}

// SaveTemplate persists a named reorder set for the agent.
func (c *Client) SaveTemplate(ctx context.Context, t templates.Template) error {
	return c.post(ctx, "/templates", t, nil)
}

// ListTemplates fetches the agent's templates grouped into Popular / AddOn.
func (c *Client) ListTemplates(ctx context.Context, agentCode string) (templates.Grouped, error) {
	u := c.BaseURL + "/templates?agentCode=" + url.QueryEscape(agentCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return templates.Grouped{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return templates.Grouped{}, &SubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return templates.Grouped{}, readError(resp)
	}
	var g templates.Grouped
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return templates.Grouped{}, err
	}
	return g, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &SubmissionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func readError(resp *http.Response) error {
	var e struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&e)
	return &SubmissionError{StatusCode: resp.StatusCode, Message: e.Message}
}
