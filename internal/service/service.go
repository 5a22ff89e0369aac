// Package service glues the entity store to the derived-metric layer and
// applies the few creation-time policies the system has (invoice tax breakup,
// defaulted dates and statuses).
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/metrics"
	"khakhra/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	store *store.Store
}

func New(st *store.Store) *Service {
	return &Service{store: st}
}

// ── Read accessors ──

func (s *Service) Customers() []domain.Customer             { return s.store.Customers() }
func (s *Service) Products() []domain.Product               { return s.store.Products() }
func (s *Service) RawMaterials() []domain.RawMaterial       { return s.store.RawMaterials() }
func (s *Service) Orders() []domain.Order                   { return s.store.Orders() }
func (s *Service) Invoices() []domain.Invoice               { return s.store.Invoices() }
func (s *Service) Expenses() []domain.Expense               { return s.store.Expenses() }
func (s *Service) ProductionBatches() []domain.ProductionBatch {
	return s.store.ProductionBatches()
}
func (s *Service) Profile() *domain.UserProfile { return s.store.Profile() }

func (s *Service) ExportData() domain.ExportPayload { return s.store.ExportData() }

// ── Mutations ──

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) domain.Customer {
	return s.store.CreateCustomer(ctx, domain.Customer{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
	})
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) domain.Product {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "Classic"
	}
	return s.store.CreateProduct(ctx, domain.Product{
		Name:         strings.TrimSpace(req.Name),
		Category:     category,
		UnitPrice:    req.UnitPrice,
		CostPerUnit:  req.CostPerUnit,
		Stock:        req.Stock,
		ReorderLevel: req.ReorderLevel,
	})
}

func (s *Service) CreateRawMaterial(ctx context.Context, req domain.RawMaterialCreateRequest) domain.RawMaterial {
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "kg"
	}
	return s.store.CreateRawMaterial(ctx, domain.RawMaterial{
		Name:         strings.TrimSpace(req.Name),
		Unit:         unit,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
		UnitCost:     req.UnitCost,
	})
}

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) domain.Order {
	now := time.Now().UTC()
	shipDate := req.ExpectedShipDate
	if shipDate.IsZero() {
		shipDate = now.AddDate(0, 0, 2)
	}
	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = "UPI"
	}
	return s.store.CreateOrder(ctx, domain.Order{
		CustomerID:       req.CustomerID,
		Items:            req.Items,
		Status:           domain.OrderStatusPending,
		OrderDate:        now,
		ExpectedShipDate: shipDate,
		Discount:         req.Discount,
		TaxRate:          req.TaxRate,
		PaymentMethod:    paymentMethod,
	})
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("unknown order status %q", status)
	}
	order, found := s.store.UpdateOrderStatus(ctx, orderID, status)
	if !found {
		return domain.Order{}, store.ErrNotFound
	}
	return order, nil
}

// CreateInvoice computes totals from the referenced order at creation time.
// Tax is split evenly into CGST and SGST with IGST zero: all billing is
// intra-state.
func (s *Service) CreateInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	order, ok := s.store.GetOrder(req.OrderID)
	if !ok {
		return domain.Invoice{}, store.ErrNotFound
	}

	now := time.Now().UTC()
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, 7)
	}

	gst := strings.ToUpper(strings.TrimSpace(req.GSTNumber))
	if gst == "" {
		gst = "24ABCDE1234F1Z5"
	}

	totals := metrics.CalculateOrderTotals(order)
	return s.store.CreateInvoice(ctx, domain.Invoice{
		OrderID:     order.ID,
		InvoiceDate: now,
		DueDate:     dueDate,
		GSTNumber:   gst,
		TotalAmount: totals.NetAmount,
		CGST:        totals.Tax / 2,
		SGST:        totals.Tax / 2,
		IGST:        0,
		Paid:        false,
	}), nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) domain.Expense {
	category := req.Category
	if category == "" {
		category = domain.ExpenseMiscellaneous
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return s.store.CreateExpense(ctx, domain.Expense{
		Title:    strings.TrimSpace(req.Title),
		Amount:   req.Amount,
		Category: category,
		Date:     date,
		Notes:    strings.TrimSpace(req.Notes),
	})
}

func (s *Service) CreateProductionBatch(ctx context.Context, req domain.ProductionBatchCreateRequest) domain.ProductionBatch {
	date := req.ProductionDate
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return s.store.CreateProductionBatch(ctx, domain.ProductionBatch{
		ProductID:        req.ProductID,
		QuantityProduced: req.QuantityProduced,
		ProductionDate:   date,
		RawMaterialUsage: req.RawMaterialUsage,
	})
}

func (s *Service) UpdateProductStock(ctx context.Context, productID string, stock int) (domain.Product, error) {
	product, found := s.store.UpdateProductStock(ctx, productID, stock)
	if !found {
		return domain.Product{}, store.ErrNotFound
	}
	return product, nil
}

func (s *Service) UpdateRawMaterialQuantity(ctx context.Context, materialID string, quantity float64) (domain.RawMaterial, error) {
	material, found := s.store.UpdateRawMaterialQuantity(ctx, materialID, quantity)
	if !found {
		return domain.RawMaterial{}, store.ErrNotFound
	}
	return material, nil
}

// SetUserProfile switches the active presentational profile. The role drives
// what a client chooses to show; nothing in the backend enforces it.
func (s *Service) SetUserProfile(ctx context.Context, req domain.ProfileUpdateRequest) (*domain.UserProfile, error) {
	switch req.Role {
	case domain.RoleAdmin, domain.RoleStaff, domain.RoleAccountant:
	default:
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		switch req.Role {
		case domain.RoleAdmin:
			name = "Business Owner"
		case domain.RoleStaff:
			name = "Packing Team"
		default:
			name = "Accountant"
		}
	}

	profile := &domain.UserProfile{
		ID:   "user-" + strings.ToLower(string(req.Role)),
		Name: name,
		Role: req.Role,
	}
	s.store.SetUserProfile(ctx, profile)
	return profile, nil
}

// ── Derived aggregates ──

type DashboardOverview struct {
	metrics.Overview
	DailyRevenue   float64 `json:"dailyRevenue"`
	WeeklyRevenue  float64 `json:"weeklyRevenue"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
}

func (s *Service) Overview() DashboardOverview {
	orders := s.store.Orders()
	now := time.Now().UTC()
	return DashboardOverview{
		Overview:       metrics.OverviewStats(orders, s.store.Invoices(), s.store.Expenses(), s.store.Products()),
		DailyRevenue:   metrics.PeriodRevenue(orders, 1, now),
		WeeklyRevenue:  metrics.PeriodRevenue(orders, 7, now),
		MonthlyRevenue: metrics.PeriodRevenue(orders, 30, now),
	}
}

type RevenueSummary struct {
	DailyRevenue       float64            `json:"dailyRevenue"`
	WeeklyRevenue      float64            `json:"weeklyRevenue"`
	MonthlyRevenue     float64            `json:"monthlyRevenue"`
	GrossProfitByOrder map[string]float64 `json:"grossProfitByOrder"`
}

func (s *Service) Revenue() RevenueSummary {
	orders := s.store.Orders()
	now := time.Now().UTC()
	return RevenueSummary{
		DailyRevenue:       metrics.PeriodRevenue(orders, 1, now),
		WeeklyRevenue:      metrics.PeriodRevenue(orders, 7, now),
		MonthlyRevenue:     metrics.PeriodRevenue(orders, 30, now),
		GrossProfitByOrder: metrics.GrossProfitByOrder(orders, s.store.Products()),
	}
}

func (s *Service) LowStockProducts() []domain.Product {
	return metrics.LowStockProducts(s.store.Products())
}

func (s *Service) LowStockRawMaterials() []domain.RawMaterial {
	return metrics.LowStockRawMaterials(s.store.RawMaterials())
}

func (s *Service) GrossProfitByOrder() map[string]float64 {
	return metrics.GrossProfitByOrder(s.store.Orders(), s.store.Products())
}

func (s *Service) RevenueTrend() []metrics.TrendPoint {
	return metrics.RevenueTrend(s.store.Orders())
}

func (s *Service) ProductPerformance() []metrics.ProductStat {
	return metrics.ProductPerformance(s.store.Orders(), s.store.Products())
}

func (s *Service) PaymentSplit() []metrics.PaymentShare {
	return metrics.PaymentSplit(s.store.Orders())
}

func (s *Service) InvoiceAging() metrics.AgingReport {
	return metrics.AgingBuckets(s.store.Invoices(), time.Now().UTC())
}

func (s *Service) ExpenseBreakdown() map[domain.ExpenseCategory]float64 {
	return metrics.ExpenseTotalsByCategory(s.store.Expenses())
}

func (s *Service) ProfitLoss(days int) metrics.ProfitLossStatement {
	if days < 1 {
		days = 7
	}
	return metrics.ProfitLoss(s.store.Orders(), s.store.Products(), s.store.Expenses(), days, time.Now().UTC())
}

func (s *Service) SalesInsights() metrics.SalesInsights {
	return metrics.Insights(s.store.Orders(), s.store.Customers(), s.store.Products())
}

func (s *Service) InventoryValuation() metrics.InventoryValuation {
	return metrics.Valuation(s.store.Products(), s.store.RawMaterials())
}
