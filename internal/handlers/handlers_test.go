package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/imrishuroy/ordering-bff/internal/apperr"
	"github.com/imrishuroy/ordering-bff/internal/attestation"
	"github.com/imrishuroy/ordering-bff/internal/commerce"
	"github.com/imrishuroy/ordering-bff/internal/content"
	"github.com/imrishuroy/ordering-bff/internal/location"
	"github.com/imrishuroy/ordering-bff/internal/store"
)

type fakeLocation struct {
	err      error
	identity attestation.Identity
	items    []location.PickupItem
}

func (f *fakeLocation) GetLocationInventory(ctx context.Context, locationID string) (*location.Inventory, error) {
	f.identity, _ = attestation.FromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &location.Inventory{Items: []location.InventoryItem{{Sku: "A", Name: "Burger", IsAvailable: true}}}, nil
}

func (f *fakeLocation) GetLocationInventoryItem(ctx context.Context, locationID, sku string) (*location.InventoryItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &location.InventoryItem{Sku: sku}, nil
}

func (f *fakeLocation) GetLocationStatus(ctx context.Context, locationID string) (*location.StatusResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &location.StatusResponse{LocationID: locationID, Value: location.StatusOpen, Description: "open"}, nil
}

func (f *fakeLocation) GetTheoreticalPickupEta(ctx context.Context, locationID string, items []location.PickupItem) (location.TheoreticalEta, error) {
	f.items = items
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"minutes":7}`), nil
}

type fakeStore struct {
	err       error
	reg       store.AccountRegistration
	productID string
}

func (f *fakeStore) RegisterAccount(ctx context.Context, reg store.AccountRegistration) (*commerce.UserAccount, error) {
	f.reg = reg
	if f.err != nil {
		return nil, f.err
	}
	return &commerce.UserAccount{ID: "acc_1", Email: reg.Email}, nil
}

func (f *fakeStore) GetPromotion(ctx context.Context, id string) (*commerce.Promotion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &commerce.Promotion{ID: id, Active: true}, nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, id string) (*content.CommitResult, error) {
	f.productID = id
	if f.err != nil {
		return nil, f.err
	}
	return &content.CommitResult{TransactionID: "tx-1"}, nil
}

func (f *fakeStore) DeleteProduct(ctx context.Context, id string) (*content.CommitResult, error) {
	f.productID = id
	if f.err != nil {
		return nil, f.err
	}
	return &content.CommitResult{TransactionID: "tx-2"}, nil
}

func newRouter(loc *fakeLocation, st *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := gin.New()
	RegisterAPIRoutes(r, "/api", HandlerConfig{
		Location: loc,
		Store:    st,
		Verifier: attestation.VerifierFunc(func(ctx context.Context, token string) error {
			if token != "good" {
				return errors.New("invalid token")
			}
			return nil
		}),
		Logger: logger,
	})
	return r
}

func do(r http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set(attestation.HeaderClientName, "ios")
		req.Header.Set(attestation.HeaderAppCheckToken, "good")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body %q: %v", w.Body.String(), err)
	}
	return body.Error, body.Message
}

func TestRoutes_RequireAppCheck(t *testing.T) {
	r := newRouter(&fakeLocation{}, &fakeStore{})

	w := do(r, http.MethodGet, "/api/locations/42/inventory", "", false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/promotions/p", nil)
	req.Header.Set(attestation.HeaderAppCheckToken, "forged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", w.Code)
	}
}

func TestInventory_PassesIdentity(t *testing.T) {
	loc := &fakeLocation{}
	r := newRouter(loc, &fakeStore{})

	w := do(r, http.MethodGet, "/api/locations/42/inventory", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if loc.identity.ClientName != "ios" || loc.identity.Token != "good" {
		t.Fatalf("identity not propagated: %+v", loc.identity)
	}
	var inv location.Inventory
	if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil || len(inv.Items) != 1 {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestLocation_UpstreamFailureIs500(t *testing.T) {
	loc := &fakeLocation{err: apperr.UpstreamFetchFailed("fetch location status", "42", "Error fetching location status", errors.New("gateway 503 body"))}
	r := newRouter(loc, &fakeStore{})

	w := do(r, http.MethodGet, "/api/locations/42/status", "", true)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	code, msg := errorBody(t, w)
	if code != "upstream_fetch_failed" || msg != "Error fetching location status" {
		t.Fatalf("unexpected error body %q %q", code, msg)
	}
	if strings.Contains(w.Body.String(), "gateway 503 body") {
		t.Fatal("upstream detail leaked to client")
	}
}

func TestTheoreticalEta(t *testing.T) {
	loc := &fakeLocation{}
	r := newRouter(loc, &fakeStore{})

	w := do(r, http.MethodPost, "/api/locations/42/theoretical-eta", `[{"sku":"A","quantity":2}]`, true)
	if w.Code != http.StatusOK || w.Body.String() != `{"minutes":7}` {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
	if len(loc.items) != 1 || loc.items[0].Quantity != 2 {
		t.Fatalf("items not forwarded: %+v", loc.items)
	}

	w = do(r, http.MethodPost, "/api/locations/42/theoretical-eta", `[{"sku":"A","quantity":0}]`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid item, got %d", w.Code)
	}
}

func TestRegisterAccount(t *testing.T) {
	st := &fakeStore{}
	r := newRouter(&fakeLocation{}, st)

	body := `{"firstName":"A","lastName":"B","email":"a@b.com","emailOptin":true,"password":"x","phone":"555","acceptsPhoneTerms":true,"prefersPushNotification":false}`
	w := do(r, http.MethodPost, "/api/accounts/register", body, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if st.reg.Email != "a@b.com" || !st.reg.AcceptsPhoneTerms {
		t.Fatalf("registration not mapped: %+v", st.reg)
	}
	if st.reg.PrefersPushNotification == nil || *st.reg.PrefersPushNotification {
		t.Fatalf("explicit push preference lost: %+v", st.reg.PrefersPushNotification)
	}
	if st.reg.PrefersEmailNotification != nil {
		t.Fatalf("unspecified email preference should stay nil")
	}

	w = do(r, http.MethodPost, "/api/accounts/register", `{"firstName":"A"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid body, got %d", w.Code)
	}
}

func TestGetPromotion_NotFound(t *testing.T) {
	st := &fakeStore{err: apperr.NotFound("fetch promotion", "nope", "Promotion not found")}
	r := newRouter(&fakeLocation{}, st)

	w := do(r, http.MethodGet, "/api/promotions/nope", "", true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if code, _ := errorBody(t, w); code != "not_found" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestProductID_Resolution(t *testing.T) {
	cases := []struct {
		name string
		path string
		body string
		want string
	}{
		{"route param", "/api/products/update/p1", "", "p1"},
		{"query", "/api/products/update?id=p2", "", "p2"},
		{"webhook data", "/api/products/update", `{"type":"product.updated","data":{"id":"p3"}}`, "p3"},
		{"body id", "/api/products/update", `{"id":"p4"}`, "p4"},
		{"delete route param", "/api/products/delete/p5", "", "p5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeStore{}
			r := newRouter(&fakeLocation{}, st)

			w := do(r, http.MethodPost, tc.path, tc.body, true)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			if st.productID != tc.want {
				t.Fatalf("expected product id %q, got %q", tc.want, st.productID)
			}
		})
	}
}

func TestProductID_Missing(t *testing.T) {
	st := &fakeStore{}
	r := newRouter(&fakeLocation{}, st)

	w := do(r, http.MethodPost, "/api/products/delete", `{"data":{}}`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if st.productID != "" {
		t.Fatal("store must not be called without an id")
	}
}

func TestUpdateProduct_WriteFailureIs500(t *testing.T) {
	st := &fakeStore{err: apperr.UpstreamWriteFailed("update product", "p1", "Error updating product", errors.New("commit failed"))}
	r := newRouter(&fakeLocation{}, st)

	w := do(r, http.MethodPost, "/api/products/update/p1", "", true)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if code, msg := errorBody(t, w); code != "upstream_write_failed" || msg != "Error updating product" {
		t.Fatalf("unexpected error body %q %q", code, msg)
	}
}

func TestRegisterAccount_PhoneTermsRequirePhone(t *testing.T) {
	st := &fakeStore{}
	r := newRouter(&fakeLocation{}, st)

	body := `{"firstName":"A","lastName":"B","email":"a@b.com","password":"x","acceptsPhoneTerms":true}`
	w := do(r, http.MethodPost, "/api/accounts/register", body, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if code, _ := errorBody(t, w); code != "validation_failed" {
		t.Fatalf("unexpected code %q", code)
	}
	if st.reg.Email != "" {
		t.Fatal("store must not be called for an invalid registration")
	}
}

func TestTheoreticalEta_EmptyItemsRejected(t *testing.T) {
	loc := &fakeLocation{}
	r := newRouter(loc, &fakeStore{})

	w := do(r, http.MethodPost, "/api/locations/42/theoretical-eta", `[]`, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if code, _ := errorBody(t, w); code != "validation_failed" {
		t.Fatalf("unexpected code %q", code)
	}
	if loc.items != nil {
		t.Fatal("gateway must not be called without items")
	}
}
