package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/service"
	"khakhra/backend/internal/snapshot"
	"khakhra/backend/internal/store"
)

// newTestAPI builds a full API over the seed dataset with a real AuthManager
// and Service, so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	st := store.New(context.Background(), snapshot.Noop{}, log)
	svc := service.New(st)
	auth := NewAuthManager("test-secret-key-test-secret-key!", time.Hour, []domain.UserAccount{
		{Username: "admin", Password: "admin-pass-123", Role: string(domain.RoleAdmin), Active: true},
	})

	return New(svc, auth, "*", log)
}

func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin-pass-123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func authedRequest(t *testing.T, handler http.Handler, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	handler := newTestAPI(t).Handler()

	rec := authedRequest(t, handler, "bogus-token", http.MethodGet, "/api/v1/orders", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodGet, "/api/v1/orders", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Orders) != 4 {
		t.Fatalf("orders = %d, want 4 from seed", len(body.Orders))
	}
}

func TestCreateCustomer(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPost, "/api/v1/customers", map[string]string{
		"name":  "Mehta Provision",
		"phone": "9876500099",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Customer domain.Customer `json:"customer"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Customer.ID != "cust-5" {
		t.Fatalf("id = %q, want cust-5 continuing the seed sequence", body.Customer.ID)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPost, "/api/v1/customers", map[string]string{
		"phone": "123",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing name, got %d", rec.Code)
	}
}

func TestCreateCustomerRejectsUnknownFields(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPost, "/api/v1/customers", map[string]string{
		"name":    "X",
		"surpise": "field",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPatch, "/api/v1/orders/order-4/status", map[string]string{
		"status": "Shipped",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Order domain.Order `json:"order"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Order.Status != domain.OrderStatusShipped {
		t.Fatalf("status = %q, want Shipped", body.Order.Status)
	}
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPatch, "/api/v1/orders/order-404/status", map[string]string{
		"status": "Shipped",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateOrderStatusInvalidStatus(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPatch, "/api/v1/orders/order-1/status", map[string]string{
		"status": "Vanished",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPost, "/api/v1/invoices", map[string]string{
		"orderId": "order-4",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Invoice domain.Invoice `json:"invoice"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Invoice.ID != "inv-4" {
		t.Fatalf("id = %q, want inv-4", body.Invoice.ID)
	}
	if body.Invoice.CGST != body.Invoice.SGST {
		t.Fatalf("cgst %v != sgst %v", body.Invoice.CGST, body.Invoice.SGST)
	}
}

func TestDashboardOverview(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodGet, "/api/v1/dashboard/overview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"totalRevenue", "outstandingInvoices", "dailyRevenue", "monthlyRevenue"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("overview missing %q: %v", key, body)
		}
	}
}

func TestProfitLossRejectsBadDays(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	for _, raw := range []string{"abc", "0", "-3"} {
		rec := authedRequest(t, handler, token, http.MethodGet, "/api/v1/reports/profit-loss?days="+raw, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("days=%q: expected 400, got %d", raw, rec.Code)
		}
	}
}

func TestExportWorkbook(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodGet, "/api/v1/exports/workbook.xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("content type = %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty workbook body")
	}
}

func TestExportSummaryPDF(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodGet, "/api/v1/exports/summary.pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("content type = %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body does not start with %%PDF")
	}
}

func TestLoginRateLimited(t *testing.T) {
	handler := newTestAPI(t).Handler()

	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "nope"})
	var last int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("sixth attempt = %d, want 429", last)
	}
}

func TestOptionsPreflight(t *testing.T) {
	handler := newTestAPI(t).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS origin header")
	}
}

func TestProfileUpdate(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodPut, "/api/v1/profile", map[string]string{
		"role": "Accountant",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Profile domain.UserProfile `json:"profile"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Profile.ID != "user-accountant" || body.Profile.Name != "Accountant" {
		t.Fatalf("profile = %+v", body.Profile)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestAPI(t).Handler()
	token := loginToken(t, handler)

	rec := authedRequest(t, handler, token, http.MethodDelete, "/api/v1/orders", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
