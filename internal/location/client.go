package location

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/imrishuroy/ordering-bff/internal/attestation"
)

// headerGatewayToken is the header name the gateway reads the attestation
// token from.
const headerGatewayToken = "x-recaptcha-token"

// UpstreamError is returned for any non-2xx gateway response.
type UpstreamError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Gateway is the set of order-management gateway reads the service needs.
type Gateway interface {
	Inventory(ctx context.Context, locationID string) (*Inventory, error)
	InventoryItem(ctx context.Context, locationID, sku string) (*InventoryItem, error)
	Status(ctx context.Context, locationID string) (*StatusResponse, error)
	TheoreticalEta(ctx context.Context, locationID string, items []PickupItem) (TheoreticalEta, error)
}

// Client talks to the order-management gateway. Every call forwards the
// caller identity found on ctx. There is no retry and no cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Inventory(ctx context.Context, locationID string) (*Inventory, error) {
	var out Inventory
	if err := c.do(ctx, http.MethodGet, restaurantPath(locationID, "inventory"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InventoryItem(ctx context.Context, locationID, sku string) (*InventoryItem, error) {
	var out InventoryItem
	if err := c.do(ctx, http.MethodGet, restaurantPath(locationID, "inventory", sku), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context, locationID string) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, http.MethodGet, restaurantPath(locationID, "status"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TheoreticalEta(ctx context.Context, locationID string, items []PickupItem) (TheoreticalEta, error) {
	if items == nil {
		items = []PickupItem{}
	}
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, restaurantPath(locationID, "theoretical-eta"), etaRequest{Items: items}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func restaurantPath(locationID string, segments ...string) string {
	parts := []string{"oms", "restaurants", url.PathEscape(locationID)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return "/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	id, ok := attestation.FromContext(ctx)
	if !ok {
		return attestation.ErrMissingIdentity
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(attestation.HeaderClientName, id.ClientName)
	req.Header.Set(headerGatewayToken, id.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &UpstreamError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
