package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a rejected mutate call.
type APIError struct {
	StatusCode  int
	Type        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content store: status %d: %s %s", e.StatusCode, e.Type, e.Description)
}

type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	// BaseURL overrides https://{ProjectID}.api.sanity.io.
	BaseURL    string
	HTTPClient *http.Client
}

// Client commits transactions through the Sanity mutate endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" || cfg.APIVersion == "" || cfg.Token == "" {
		return nil, fmt.Errorf("content store: project id, dataset, api version and token are required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	version := strings.TrimPrefix(cfg.APIVersion, "v")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   fmt.Sprintf("%s/v%s/data/mutate/%s", strings.TrimSuffix(base, "/"), version, url.PathEscape(cfg.Dataset)),
		token:      cfg.Token,
		httpClient: httpClient,
	}, nil
}

// Transaction starts a transaction committed by c.
func (c *Client) Transaction() *Transaction {
	return NewTransaction(c)
}

func (c *Client) Commit(ctx context.Context, transactionID string, mutations []Mutation) (*CommitResult, error) {
	body, err := json.Marshal(struct {
		Mutations []Mutation `json:"mutations"`
	}{mutations})
	if err != nil {
		return nil, fmt.Errorf("marshal mutations: %w", err)
	}

	query := url.Values{}
	query.Set("returnIds", "true")
	query.Set("transactionId", transactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commit transaction %s: %w", transactionID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode:  resp.StatusCode,
			Type:        gjson.GetBytes(respBody, "error.type").String(),
			Description: gjson.GetBytes(respBody, "error.description").String(),
		}
	}

	var result CommitResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode commit result: %w", err)
	}
	return &result, nil
}
