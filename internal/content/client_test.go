package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_RequiresSettings(t *testing.T) {
	if _, err := NewClient(Config{ProjectID: "p", Dataset: "d", APIVersion: "2023-05-03"}); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestClient_CommitPostsMutations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2023-05-03/data/mutate/production" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("returnIds") != "true" || r.URL.Query().Get("transactionId") == "" {
			t.Errorf("unexpected query %v", r.URL.Query())
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth %q", r.Header.Get("Authorization"))
		}

		var body struct {
			Mutations []map[string]json.RawMessage `json:"mutations"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Mutations) != 2 {
			t.Errorf("expected 2 mutations, got %d", len(body.Mutations))
		} else {
			if _, ok := body.Mutations[0]["createIfNotExists"]; !ok {
				t.Errorf("first mutation should be createIfNotExists: %v", body.Mutations[0])
			}
			if _, ok := body.Mutations[1]["patch"]; !ok {
				t.Errorf("second mutation should be patch: %v", body.Mutations[1])
			}
		}

		_, _ = w.Write([]byte(`{"transactionId":"` + r.URL.Query().Get("transactionId") + `","results":[{"id":"p1","operation":"create"},{"id":"p1","operation":"update"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		ProjectID:  "abc",
		Dataset:    "production",
		APIVersion: "v2023-05-03",
		Token:      "tok",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	doc := Document{"_id": "p1", "_type": "swellProduct", "name": "Widget"}
	tx := c.Transaction()
	res, err := tx.CreateIfNotExists(doc).PatchSet("p1", doc).Commit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TransactionID != tx.ID() || len(res.Results) != 2 || res.Results[1].Operation != "update" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestClient_CommitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"mutationError","description":"Document not found"}}`))
	}))
	defer srv.Close()

	c, _ := NewClient(Config{ProjectID: "abc", Dataset: "d", APIVersion: "1", Token: "t", BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.Transaction().PatchSet("missing", map[string]interface{}{"a": 1}).Commit(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Description != "Document not found" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
