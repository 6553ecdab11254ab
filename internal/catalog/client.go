// Package catalog talks to the product catalog service and keeps the grid of
// product cards the storefront renders.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Katyxel/add-basket/internal/domain"
	"github.com/Katyxel/add-basket/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var ErrUnexpectedStatus = errors.New("unexpected catalog response status")

// Client calls GET and POST {base}/products. Calls are not retried; repeated
// failures open a circuit breaker that fails fast until the catalog recovers.
type Client struct {
	baseURL  string
	http     *http.Client
	listCB   *gobreaker.CircuitBreaker[[]domain.Product]
	createCB *gobreaker.CircuitBreaker[struct{}]
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		listCB:   circuitbreaker.New[[]domain.Product](circuitbreaker.DefaultSettings("catalog-list"), logger),
		createCB: circuitbreaker.New[struct{}](circuitbreaker.DefaultSettings("catalog-create"), logger),
	}
}

// List fetches the catalog. A body that is not a JSON array yields no products.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	return c.listCB.Execute(func() ([]domain.Product, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", nil)
		if err != nil {
			return nil, fmt.Errorf("build catalog request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return decodeProducts(body)
	})
}

func decodeProducts(body []byte) ([]domain.Product, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}

func (c *Client) Create(ctx context.Context, p domain.Product) error {
	_, err := c.createCB.Execute(func() (struct{}, error) {
		payload, err := json.Marshal(p)
		if err != nil {
			return struct{}{}, fmt.Errorf("marshal product: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products", bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, fmt.Errorf("build catalog request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("post product: %w", err)
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return struct{}{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return struct{}{}, nil
	})
	return err
}
