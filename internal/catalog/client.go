package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vborodin/storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Page is one page of catalog results plus pagination metadata.
type Page struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	TotalCount int              `json:"total_count"`
}

// Client is the catalog collaborator consumed by the engine.
type Client interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, query Query) (*Page, error)
}

// HTTPClient talks to the upstream catalog REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/products/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for product %d", resp.StatusCode, id)
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}

	return &product, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context, query Query) (*Page, error) {
	u := fmt.Sprintf("%s/products", c.baseURL)
	if encoded := query.Values().Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for listing", resp.StatusCode)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode product listing: %w", err)
	}

	return &page, nil
}
