package validation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/ordering-bff/internal/location"
)

func validRegistration() AccountRegistrationRequest {
	return AccountRegistrationRequest{
		FirstName:         "A",
		LastName:          "B",
		Email:             "a@b.com",
		EmailOptin:        true,
		Password:          "x",
		Phone:             "555",
		AcceptsPhoneTerms: true,
	}
}

func TestAccountRegistrationRequest_Valid(t *testing.T) {
	v := New()

	if err := v.Struct(validRegistration()); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestAccountRegistrationRequest_PhoneTermsNeedPhone(t *testing.T) {
	v := New()

	req := validRegistration()
	req.Phone = ""

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for phone terms without phone, got nil")
	}

	req.AcceptsPhoneTerms = false
	if err := v.Struct(req); err != nil {
		t.Fatalf("phone is optional without phone terms, got %v", err)
	}
}

func TestAccountRegistrationRequest_MissingFields(t *testing.T) {
	v := New()

	req := AccountRegistrationRequest{
		// names missing
		Email: "not-an-email",
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation errors for missing required fields, got nil")
	}
}

func TestPickupItemsRequest(t *testing.T) {
	v := New()

	if err := v.Struct(PickupItemsRequest{Items: []location.PickupItem{{Sku: "A", Quantity: 2}}}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := v.Struct(PickupItemsRequest{}); err == nil {
		t.Fatal("expected error for empty item list")
	}
	if err := v.Struct(PickupItemsRequest{Items: []location.PickupItem{{Sku: "A", Quantity: 0}}}); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestBindAndValidate_WritesFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v := New()
	r.POST("/accounts/register", func(c *gin.Context) {
		var req AccountRegistrationRequest
		if err := BindAndValidate(c, &req, v); err != nil {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/accounts/register", strings.NewReader(`{"firstName":"A"}`)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Error != "validation_failed" {
		t.Fatalf("unexpected error code %q", body.Error)
	}
	if _, ok := body.Fields["AccountRegistrationRequest.Email"]; !ok {
		t.Fatalf("expected email field error, got %v", body.Fields)
	}
}

func TestBindPickupItems_MalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v := New()
	r.POST("/eta", func(c *gin.Context) {
		if _, err := BindPickupItems(c, v); err != nil {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/eta", strings.NewReader(`{"items":[]}`)))

	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid_request_body") {
		t.Fatalf("expected invalid_request_body, got %d %s", w.Code, w.Body.String())
	}
}
