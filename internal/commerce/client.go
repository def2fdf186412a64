// Package commerce is a client for the Swell backend API: account
// registration, promotion lookup and the raw product and variant reads used
// to mirror catalogue data into the content store.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.swell.store"

// variantPageSize is the largest page the platform serves.
const variantPageSize = 1000

// ErrNotFound is returned when the platform has no record for an id.
var ErrNotFound = errors.New("commerce: record not found")

// APIError is a failed call, either a non-2xx status or a 2xx body that
// carries an "errors" object.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("commerce %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("commerce %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

type Config struct {
	StoreID    string
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is safe for concurrent use; build one per process.
type Client struct {
	storeID    string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.StoreID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("commerce: store id and secret key are required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		storeID:    cfg.StoreID,
		secretKey:  cfg.SecretKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// CreateAccount registers a new customer account.
func (c *Client) CreateAccount(ctx context.Context, payload AccountPayload) (*UserAccount, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/accounts", nil, payload)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) || gjson.GetBytes(body, "errors").Exists() {
		return nil, apiError(http.MethodPost, "/accounts", status, body)
	}
	var acct UserAccount
	if err := json.Unmarshal(body, &acct); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &acct, nil
}

// GetProduct returns the raw product, or (nil, nil) when it does not exist.
func (c *Client) GetProduct(ctx context.Context, id string) (Record, error) {
	path := "/products/" + url.PathEscape(id)
	status, body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || isNullBody(status, body) {
		return nil, nil
	}
	if !isSuccess(status) {
		return nil, apiError(http.MethodGet, path, status, body)
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return rec, nil
}

// ListVariants returns every variant whose parent is parentID.
func (c *Client) ListVariants(ctx context.Context, parentID string) ([]Record, error) {
	const path = "/products:variants"
	query := url.Values{}
	query.Set("where[parent_id]", parentID)
	query.Set("limit", fmt.Sprint(variantPageSize))

	status, body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, apiError(http.MethodGet, path, status, body)
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() {
		return nil, fmt.Errorf("decode variants: response has no results array")
	}
	variants := make([]Record, 0, len(results.Array()))
	var decodeErr error
	results.ForEach(func(_, value gjson.Result) bool {
		var rec Record
		if err := json.Unmarshal([]byte(value.Raw), &rec); err != nil {
			decodeErr = fmt.Errorf("decode variant: %w", err)
			return false
		}
		variants = append(variants, rec)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return variants, nil
}

// GetPromotion returns ErrNotFound when the promotion does not exist.
func (c *Client) GetPromotion(ctx context.Context, id string) (*Promotion, error) {
	path := "/promotions/" + url.PathEscape(id)
	status, body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || isNullBody(status, body) {
		return nil, ErrNotFound
	}
	if !isSuccess(status) {
		return nil, apiError(http.MethodGet, path, status, body)
	}
	var promo Promotion
	if err := json.Unmarshal(body, &promo); err != nil {
		return nil, fmt.Errorf("decode promotion: %w", err)
	}
	return &promo, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) (int, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.storeID, c.secretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("commerce %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func isNullBody(status int, body []byte) bool {
	if !isSuccess(status) {
		return false
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func apiError(method, path string, status int, body []byte) *APIError {
	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		// validation failures come back as {"errors":{"field":{"message":...}}}
		gjson.GetBytes(body, "errors").ForEach(func(field, detail gjson.Result) bool {
			msg = field.String() + ": " + detail.Get("message").String()
			return false
		})
	}
	if msg == "" {
		msg = gjson.GetBytes(body, "error").String()
	}
	return &APIError{Method: method, Path: path, StatusCode: status, Message: msg}
}
