package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/snapshot"
	"khakhra/backend/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(store.New(context.Background(), snapshot.Noop{}, nil))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateOrderDefaults(t *testing.T) {
	svc := newTestService(t)

	order := svc.CreateOrder(context.Background(), domain.OrderCreateRequest{
		CustomerID: "cust-1",
		Items:      []domain.OrderItem{{ProductID: "prod-1", Quantity: 2, UnitPrice: 60}},
		TaxRate:    0.12,
	})

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("status = %q, want Pending", order.Status)
	}
	if order.PaymentMethod != "UPI" {
		t.Fatalf("paymentMethod = %q, want UPI default", order.PaymentMethod)
	}
	if order.OrderDate.IsZero() || order.ExpectedShipDate.IsZero() {
		t.Fatalf("dates should be defaulted: %+v", order)
	}
	if !order.ExpectedShipDate.After(order.OrderDate) {
		t.Fatalf("ship date should follow order date")
	}
}

func TestCreateInvoiceTaxSplit(t *testing.T) {
	svc := newTestService(t)

	order := svc.CreateOrder(context.Background(), domain.OrderCreateRequest{
		CustomerID: "cust-1",
		Items:      []domain.OrderItem{{ProductID: "prod-1", Quantity: 5, UnitPrice: 60}},
		Discount:   0,
		TaxRate:    0.12,
	})

	invoice, err := svc.CreateInvoice(context.Background(), domain.InvoiceCreateRequest{OrderID: order.ID})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if !almostEqual(invoice.TotalAmount, 336) {
		t.Fatalf("totalAmount = %v, want 336", invoice.TotalAmount)
	}
	if !almostEqual(invoice.CGST, 18) || !almostEqual(invoice.SGST, 18) {
		t.Fatalf("cgst/sgst = %v/%v, want 18/18", invoice.CGST, invoice.SGST)
	}
	if invoice.IGST != 0 {
		t.Fatalf("igst = %v, want 0", invoice.IGST)
	}
	if !almostEqual(invoice.CGST+invoice.SGST, 36) {
		t.Fatalf("cgst + sgst = %v, want full tax 36", invoice.CGST+invoice.SGST)
	}
	if invoice.Paid {
		t.Fatalf("new invoice must start unpaid")
	}
	if invoice.GSTNumber != "24ABCDE1234F1Z5" {
		t.Fatalf("gstNumber = %q, want business default", invoice.GSTNumber)
	}
	if invoice.DueDate.Sub(invoice.InvoiceDate).Hours() != 7*24 {
		t.Fatalf("due date should default to invoice date + 7 days")
	}
}

func TestCreateInvoiceMissingOrder(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateInvoice(context.Background(), domain.InvoiceCreateRequest{OrderID: "order-404"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UpdateOrderStatus(context.Background(), "order-1", "Teleported"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestUpdateOrderStatusMissingOrder(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.UpdateOrderStatus(context.Background(), "order-404", domain.OrderStatusShipped); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateExpenseDefaults(t *testing.T) {
	svc := newTestService(t)

	expense := svc.CreateExpense(context.Background(), domain.ExpenseCreateRequest{Title: "Stall rent", Amount: 500})
	if expense.Category != domain.ExpenseMiscellaneous {
		t.Fatalf("category = %q, want Miscellaneous default", expense.Category)
	}
	if expense.Date.IsZero() {
		t.Fatalf("date should be defaulted")
	}
}

func TestSetUserProfile(t *testing.T) {
	svc := newTestService(t)

	profile, err := svc.SetUserProfile(context.Background(), domain.ProfileUpdateRequest{Role: domain.RoleStaff})
	if err != nil {
		t.Fatalf("set profile: %v", err)
	}
	if profile.ID != "user-staff" {
		t.Fatalf("id = %q, want user-staff", profile.ID)
	}
	if profile.Name != "Packing Team" {
		t.Fatalf("name = %q, want role default", profile.Name)
	}

	stored := svc.Profile()
	if stored == nil || stored.Role != domain.RoleStaff {
		t.Fatalf("profile not stored: %+v", stored)
	}
}

func TestSetUserProfileRejectsUnknownRole(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SetUserProfile(context.Background(), domain.ProfileUpdateRequest{Role: "Janitor"}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestOverviewMatchesSeedShape(t *testing.T) {
	svc := newTestService(t)

	overview := svc.Overview()
	if overview.OrderCount != 4 {
		t.Fatalf("orderCount = %d, want 4", overview.OrderCount)
	}
	if overview.TotalRevenue <= 0 {
		t.Fatalf("totalRevenue should be positive, got %v", overview.TotalRevenue)
	}
	if overview.OutstandingCount != 2 {
		t.Fatalf("outstandingCount = %d, want 2 unpaid seed invoices", overview.OutstandingCount)
	}
}

func TestProfitLossDefaultsWindow(t *testing.T) {
	svc := newTestService(t)

	pl := svc.ProfitLoss(0)
	if pl.Days != 7 {
		t.Fatalf("days = %d, want default 7", pl.Days)
	}
}

func TestActorContextRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), domain.Actor{Username: "admin", Role: "Admin"})
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Username != "admin" || actor.Role != "Admin" {
		t.Fatalf("actor did not round trip: %+v ok=%v", actor, ok)
	}
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatalf("empty context should carry no actor")
	}
}
