package metrics

import (
	"math"
	"testing"
	"time"

	"khakhra/backend/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateOrderTotals(t *testing.T) {
	order := domain.Order{
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 5, UnitPrice: 60},
			{ProductID: "prod-2", Quantity: 1, UnitPrice: 50},
		},
		Discount: 50,
		TaxRate:  0.12,
	}

	totals := CalculateOrderTotals(order)

	if !almostEqual(totals.Subtotal, 350) {
		t.Fatalf("subtotal = %v, want 350", totals.Subtotal)
	}
	if !almostEqual(totals.TaxableValue, 300) {
		t.Fatalf("taxableValue = %v, want 300", totals.TaxableValue)
	}
	if !almostEqual(totals.Tax, 36) {
		t.Fatalf("tax = %v, want 36", totals.Tax)
	}
	if !almostEqual(totals.NetAmount, 336) {
		t.Fatalf("netAmount = %v, want 336", totals.NetAmount)
	}
	if !almostEqual(totals.NetAmount, totals.TaxableValue+totals.Tax) {
		t.Fatalf("net != taxable + tax: %v vs %v", totals.NetAmount, totals.TaxableValue+totals.Tax)
	}
}

func TestCalculateOrderTotalsEmptyOrder(t *testing.T) {
	totals := CalculateOrderTotals(domain.Order{TaxRate: 0.12})
	if totals.Subtotal != 0 || totals.Tax != 0 || totals.NetAmount != 0 {
		t.Fatalf("empty order should produce zero totals, got %+v", totals)
	}
}

func TestCOGSForOrderSkipsUnknownProduct(t *testing.T) {
	products := []domain.Product{{ID: "prod-1", CostPerUnit: 20}}
	order := domain.Order{
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: 60},
			{ProductID: "prod-missing", Quantity: 10, UnitPrice: 60},
		},
	}

	got := COGSForOrder(order, products)
	if !almostEqual(got, 60) {
		t.Fatalf("cogs = %v, want 60 (unknown product contributes nothing)", got)
	}
}

func TestPeriodRevenueCutoffInclusive(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	item := []domain.OrderItem{{ProductID: "prod-1", Quantity: 1, UnitPrice: 100}}

	orders := []domain.Order{
		{ID: "order-1", Items: item, OrderDate: now.AddDate(0, 0, -7)},                  // exactly on the cutoff
		{ID: "order-2", Items: item, OrderDate: now.AddDate(0, 0, -7).Add(-time.Second)}, // just before
		{ID: "order-3", Items: item, OrderDate: now.Add(-time.Hour)},
	}

	got := PeriodRevenue(orders, 7, now)
	if !almostEqual(got, 200) {
		t.Fatalf("revenue = %v, want 200 (cutoff instant inclusive, earlier excluded)", got)
	}
}

func TestGrossProfitByOrder(t *testing.T) {
	products := []domain.Product{{ID: "prod-1", CostPerUnit: 20}}
	orders := []domain.Order{{
		ID:      "order-1",
		Items:   []domain.OrderItem{{ProductID: "prod-1", Quantity: 5, UnitPrice: 60}},
		TaxRate: 0.12,
	}}

	profit := GrossProfitByOrder(orders, products)
	// taxable 300 minus cogs 100
	if !almostEqual(profit["order-1"], 200) {
		t.Fatalf("gross profit = %v, want 200", profit["order-1"])
	}
}

func TestAgingBuckets(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	invoices := []domain.Invoice{
		{ID: "inv-1", TotalAmount: 100, InvoiceDate: now},
		{ID: "inv-2", TotalAmount: 200, InvoiceDate: now.AddDate(0, 0, -5)},
		{ID: "inv-3", TotalAmount: 300, InvoiceDate: now.AddDate(0, 0, -16)},
		{ID: "inv-4", TotalAmount: 400, InvoiceDate: now.AddDate(0, 0, -45)},
		{ID: "inv-5", TotalAmount: 999, InvoiceDate: now.AddDate(0, 0, -45), Paid: true},
	}

	report := AgingBuckets(invoices, now)

	if !almostEqual(report.Current, 100) {
		t.Fatalf("current = %v, want 100", report.Current)
	}
	if !almostEqual(report.Days1To15, 200) {
		t.Fatalf("days1To15 = %v, want 200", report.Days1To15)
	}
	if !almostEqual(report.Days16To30, 300) {
		t.Fatalf("days16To30 = %v, want 300 (16 days lands in the 16-30 bucket)", report.Days16To30)
	}
	if !almostEqual(report.Over30, 400) {
		t.Fatalf("over30 = %v, want 400", report.Over30)
	}

	sum := report.Current + report.Days1To15 + report.Days16To30 + report.Over30
	if !almostEqual(sum, 1000) {
		t.Fatalf("bucket sum = %v, want 1000 (paid invoices excluded)", sum)
	}
}

func TestTopNStableTies(t *testing.T) {
	counts := []RankedCount{
		{Key: "a", Count: 2},
		{Key: "b", Count: 5},
		{Key: "c", Count: 2},
		{Key: "d", Count: 5},
	}

	top := TopN(counts, 3)
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	if top[0].Key != "b" || top[1].Key != "d" {
		t.Fatalf("tied entries should keep encounter order: got %q, %q", top[0].Key, top[1].Key)
	}
	if top[2].Key != "a" {
		t.Fatalf("third entry = %q, want a", top[2].Key)
	}
}

func TestTopNClampsBounds(t *testing.T) {
	counts := []RankedCount{{Key: "a", Count: 1}}
	if got := TopN(counts, 10); len(got) != 1 {
		t.Fatalf("n beyond length should clamp, got %d entries", len(got))
	}
	if got := TopN(counts, -1); len(got) != 0 {
		t.Fatalf("negative n should return nothing, got %d entries", len(got))
	}
	// input must not be mutated
	if counts[0].Key != "a" {
		t.Fatalf("input slice mutated")
	}
}

func TestLowStockInclusiveAtEquality(t *testing.T) {
	products := []domain.Product{
		{ID: "prod-1", Stock: 50, ReorderLevel: 50},
		{ID: "prod-2", Stock: 51, ReorderLevel: 50},
		{ID: "prod-3", Stock: 10, ReorderLevel: 50},
	}

	low := LowStockProducts(products)
	if len(low) != 2 {
		t.Fatalf("low stock count = %d, want 2", len(low))
	}
	if low[0].ID != "prod-1" || low[1].ID != "prod-3" {
		t.Fatalf("unexpected low stock products: %+v", low)
	}

	materials := []domain.RawMaterial{
		{ID: "raw-1", Quantity: 5, ReorderLevel: 5},
		{ID: "raw-2", Quantity: 5.1, ReorderLevel: 5},
	}
	lowMat := LowStockRawMaterials(materials)
	if len(lowMat) != 1 || lowMat[0].ID != "raw-1" {
		t.Fatalf("unexpected low stock materials: %+v", lowMat)
	}
}

func TestMetricsAreIdempotent(t *testing.T) {
	orders := []domain.Order{{
		ID:        "order-1",
		Items:     []domain.OrderItem{{ProductID: "prod-1", Quantity: 3, UnitPrice: 45.5}},
		Discount:  10,
		TaxRate:   0.12,
		OrderDate: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	}}

	first := CalculateOrderTotals(orders[0])
	second := CalculateOrderTotals(orders[0])
	if first != second {
		t.Fatalf("repeated computation diverged: %+v vs %+v", first, second)
	}
}
