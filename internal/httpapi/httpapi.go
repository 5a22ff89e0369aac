package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/report"
	"khakhra/backend/internal/service"
	"khakhra/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	validate      *validator.Validate
	log           *logrus.Logger
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string, log *logrus.Logger) *API {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		validate:      validator.New(),
		log:           log,
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)

	mux.HandleFunc("/api/v1/customers", a.requireAuth(a.handleCustomers))
	mux.HandleFunc("/api/v1/products", a.requireAuth(a.handleProducts))
	mux.HandleFunc("/api/v1/products/", a.requireAuth(a.handleProductActions))
	mux.HandleFunc("/api/v1/raw-materials", a.requireAuth(a.handleRawMaterials))
	mux.HandleFunc("/api/v1/raw-materials/", a.requireAuth(a.handleRawMaterialActions))
	mux.HandleFunc("/api/v1/orders", a.requireAuth(a.handleOrders))
	mux.HandleFunc("/api/v1/orders/", a.requireAuth(a.handleOrderActions))
	mux.HandleFunc("/api/v1/invoices", a.requireAuth(a.handleInvoices))
	mux.HandleFunc("/api/v1/expenses", a.requireAuth(a.handleExpenses))
	mux.HandleFunc("/api/v1/production-batches", a.requireAuth(a.handleProductionBatches))
	mux.HandleFunc("/api/v1/profile", a.requireAuth(a.handleProfile))

	mux.HandleFunc("/api/v1/dashboard/overview", a.requireAuth(a.handleOverview))
	mux.HandleFunc("/api/v1/dashboard/revenue", a.requireAuth(a.handleRevenue))
	mux.HandleFunc("/api/v1/dashboard/trend", a.requireAuth(a.handleTrend))
	mux.HandleFunc("/api/v1/analytics/insights", a.requireAuth(a.handleInsights))
	mux.HandleFunc("/api/v1/analytics/aging", a.requireAuth(a.handleAging))
	mux.HandleFunc("/api/v1/analytics/expenses", a.requireAuth(a.handleExpenseBreakdown))
	mux.HandleFunc("/api/v1/inventory/low-stock", a.requireAuth(a.handleLowStock))
	mux.HandleFunc("/api/v1/inventory/valuation", a.requireAuth(a.handleValuation))
	mux.HandleFunc("/api/v1/reports/profit-loss", a.requireAuth(a.handleProfitLoss))

	mux.HandleFunc("/api/v1/exports/workbook.xlsx", a.requireAuth(a.handleExportWorkbook))
	mux.HandleFunc("/api/v1/exports/summary.pdf", a.requireAuth(a.handleExportSummary))

	return a.withMiddleware(mux)
}

// requireAuth only authenticates. Every dashboard role sees the same data;
// role distinctions are presentational and enforced client-side.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			a.writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			a.writeError(w, http.StatusUnauthorized, err)
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		a.writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		a.writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"customers": a.service.Customers()})
	case http.MethodPost:
		var req domain.CustomerCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		customer := a.service.CreateCustomer(r.Context(), req)
		writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"products": a.service.Products()})
	case http.MethodPost:
		var req domain.ProductCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		product := a.service.CreateProduct(r.Context(), req)
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		a.writeMethodNotAllowed(w)
		return
	}

	id, ok := actionID(r.URL.Path, "/api/v1/products/", "/stock")
	if !ok {
		a.writeError(w, http.StatusBadRequest, errors.New("invalid product action path"))
		return
	}

	var req domain.StockUpdateRequest
	if !a.decodeValid(w, r, &req) {
		return
	}

	product, err := a.service.UpdateProductStock(r.Context(), id, req.Stock)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (a *API) handleRawMaterials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"rawMaterials": a.service.RawMaterials()})
	case http.MethodPost:
		var req domain.RawMaterialCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		material := a.service.CreateRawMaterial(r.Context(), req)
		writeJSON(w, http.StatusCreated, map[string]any{"rawMaterial": material})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleRawMaterialActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		a.writeMethodNotAllowed(w)
		return
	}

	id, ok := actionID(r.URL.Path, "/api/v1/raw-materials/", "/quantity")
	if !ok {
		a.writeError(w, http.StatusBadRequest, errors.New("invalid raw material action path"))
		return
	}

	var req domain.QuantityUpdateRequest
	if !a.decodeValid(w, r, &req) {
		return
	}

	material, err := a.service.UpdateRawMaterialQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rawMaterial": material})
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"orders": a.service.Orders()})
	case http.MethodPost:
		var req domain.OrderCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		order := a.service.CreateOrder(r.Context(), req)
		writeJSON(w, http.StatusCreated, map[string]any{"order": order})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		a.writeMethodNotAllowed(w)
		return
	}

	id, ok := actionID(r.URL.Path, "/api/v1/orders/", "/status")
	if !ok {
		a.writeError(w, http.StatusBadRequest, errors.New("invalid order action path"))
		return
	}

	var req domain.OrderStatusUpdateRequest
	if !a.decodeValid(w, r, &req) {
		return
	}

	order, err := a.service.UpdateOrderStatus(r.Context(), id, req.Status)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (a *API) handleInvoices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"invoices": a.service.Invoices()})
	case http.MethodPost:
		var req domain.InvoiceCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		invoice, err := a.service.CreateInvoice(r.Context(), req)
		if err != nil {
			a.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"invoice": invoice})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"expenses": a.service.Expenses()})
	case http.MethodPost:
		var req domain.ExpenseCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		expense := a.service.CreateExpense(r.Context(), req)
		writeJSON(w, http.StatusCreated, map[string]any{"expense": expense})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductionBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"productionBatches": a.service.ProductionBatches()})
	case http.MethodPost:
		var req domain.ProductionBatchCreateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		batch := a.service.CreateProductionBatch(r.Context(), req)
		writeJSON(w, http.StatusCreated, map[string]any{"productionBatch": batch})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"profile": a.service.Profile()})
	case http.MethodPut:
		var req domain.ProfileUpdateRequest
		if !a.decodeValid(w, r, &req) {
			return
		}
		profile, err := a.service.SetUserProfile(r.Context(), req)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
	default:
		a.writeMethodNotAllowed(w)
	}
}

func (a *API) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.Overview())
}

func (a *API) handleRevenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.Revenue())
}

func (a *API) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"revenueTrend":       a.service.RevenueTrend(),
		"productPerformance": a.service.ProductPerformance(),
		"paymentSplit":       a.service.PaymentSplit(),
	})
}

func (a *API) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.SalesInsights())
}

func (a *API) handleAging(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.InvoiceAging())
}

func (a *API) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"byCategory": a.service.ExpenseBreakdown()})
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":     a.service.LowStockProducts(),
		"rawMaterials": a.service.LowStockRawMaterials(),
	})
}

func (a *API) handleValuation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.InventoryValuation())
}

func (a *API) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}
	days := 7
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			a.writeError(w, http.StatusBadRequest, errors.New("days must be a positive integer"))
			return
		}
		days = parsed
	}
	writeJSON(w, http.StatusOK, a.service.ProfitLoss(days))
}

func (a *API) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	workbook, err := report.Workbook(a.service.ExportData())
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer workbook.Close()

	now := time.Now().UTC()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.WorkbookFileName(now)))
	if err := workbook.Write(w); err != nil {
		a.log.WithError(err).Warn("workbook export write failed")
	}
}

func (a *API) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.writeMethodNotAllowed(w)
		return
	}

	now := time.Now().UTC()
	pdfBytes, err := report.Summary(a.service.ExportData(), now)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.SummaryFileName(now)))
	if _, err := w.Write(pdfBytes); err != nil {
		a.log.WithError(err).Warn("pdf export write failed")
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		a.log.WithFields(logrus.Fields{
			"requestId": uuid.NewString(),
			"method":    r.Method,
			"path":      r.URL.Path,
			"duration":  time.Since(startedAt).String(),
		}).Info("request handled")
	})
}

// actionID extracts the entity id from paths shaped like {prefix}{id}{suffix}.
func actionID(path, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	id = strings.TrimSpace(strings.Trim(id, "/"))
	if id == "" {
		return "", false
	}
	return id, true
}

// decodeValid decodes the request body and runs struct validation, writing
// the error response itself. Returns false when the caller should stop.
func (a *API) decodeValid(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := decodeJSON(r, dest); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := a.validate.Struct(dest); err != nil {
		a.writeError(w, http.StatusUnprocessableEntity, err)
		return false
	}
	return true
}

func (a *API) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, store.ErrNotFound) {
		status = http.StatusNotFound
	}
	a.writeError(w, status, err)
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func (a *API) writeMethodNotAllowed(w http.ResponseWriter) {
	a.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	// 5xx responses carry a generic message so internal details never reach
	// the client; 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 {
		a.log.WithError(err).Errorf("internal error (status %d)", status)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
