package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vborodin/storefront/internal/checkout"
	"github.com/vborodin/storefront/internal/domain"
)

// Client submits orders to the upstream order API. 5xx responses and transport
// failures are classified retryable; 4xx rejections are not.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Submit(ctx context.Context, order *domain.OrderRequest) (*domain.OrderConfirmation, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", order.IdempotencyKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &checkout.SubmissionError{Reason: "order submission timed out", Retryable: true}
		}
		return nil, &checkout.SubmissionError{Reason: err.Error(), Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var conf domain.OrderConfirmation
		if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
			return nil, fmt.Errorf("failed to decode order confirmation: %w", err)
		}
		return &conf, nil
	}

	reason := fmt.Sprintf("order service returned status %d", resp.StatusCode)
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		reason = errResp.Error
	}

	return nil, &checkout.SubmissionError{
		Reason:    reason,
		Retryable: resp.StatusCode >= 500,
	}
}
