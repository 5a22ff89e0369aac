// Package metrics computes derived figures from a store snapshot. Every
// function is pure: same inputs, same outputs, no hidden state. Money
// arithmetic goes through shopspring/decimal so repeated aggregation does not
// accumulate float drift; results come back as float64 to match the
// persisted number format.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"khakhra/backend/internal/domain"
)

// OrderTotals is the tax breakdown of a single order.
//
//	Subtotal     = Σ quantity × unitPrice over items
//	TaxableValue = Subtotal − discount
//	Tax          = TaxableValue × taxRate
//	NetAmount    = TaxableValue + Tax
type OrderTotals struct {
	Subtotal     float64 `json:"subtotal"`
	TaxableValue float64 `json:"taxableValue"`
	Tax          float64 `json:"tax"`
	NetAmount    float64 `json:"netAmount"`
}

func CalculateOrderTotals(order domain.Order) OrderTotals {
	subtotal := decimal.Zero
	for _, item := range order.Items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	taxable := subtotal.Sub(decimal.NewFromFloat(order.Discount))
	tax := taxable.Mul(decimal.NewFromFloat(order.TaxRate))
	net := taxable.Add(tax)

	return OrderTotals{
		Subtotal:     subtotal.InexactFloat64(),
		TaxableValue: taxable.InexactFloat64(),
		Tax:          tax.InexactFloat64(),
		NetAmount:    net.InexactFloat64(),
	}
}

// COGSForOrder sums quantity × costPerUnit for each item. An item whose
// productId has no match contributes zero rather than failing.
func COGSForOrder(order domain.Order, products []domain.Product) float64 {
	costByID := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		costByID[p.ID] = decimal.NewFromFloat(p.CostPerUnit)
	}

	total := decimal.Zero
	for _, item := range order.Items {
		cost, ok := costByID[item.ProductID]
		if !ok {
			continue
		}
		total = total.Add(cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.InexactFloat64()
}

// PeriodRevenue sums net amounts of orders placed on or after now − days
// calendar days. The cutoff instant itself is included.
func PeriodRevenue(orders []domain.Order, days int, now time.Time) float64 {
	cutoff := now.AddDate(0, 0, -days)
	total := decimal.Zero
	for _, order := range orders {
		if order.OrderDate.Before(cutoff) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(CalculateOrderTotals(order).NetAmount))
	}
	return total.InexactFloat64()
}

// GrossProfitByOrder maps order id to taxableValue − COGS.
func GrossProfitByOrder(orders []domain.Order, products []domain.Product) map[string]float64 {
	result := make(map[string]float64, len(orders))
	for _, order := range orders {
		totals := CalculateOrderTotals(order)
		result[order.ID] = decimal.NewFromFloat(totals.TaxableValue).
			Sub(decimal.NewFromFloat(COGSForOrder(order, products))).
			InexactFloat64()
	}
	return result
}

// AgingReport partitions unpaid invoice amounts by whole days outstanding.
// The buckets are disjoint; their sum equals the total unpaid amount.
type AgingReport struct {
	Current    float64 `json:"current"`    // <= 0 days
	Days1To15  float64 `json:"days1To15"`  // 1 to 15 days
	Days16To30 float64 `json:"days16To30"` // 16 to 30 days
	Over30     float64 `json:"over30"`     // over 30 days
}

func AgingBuckets(invoices []domain.Invoice, now time.Time) AgingReport {
	var report AgingReport
	for _, invoice := range invoices {
		if invoice.Paid {
			continue
		}
		diffDays := math.Floor(now.Sub(invoice.InvoiceDate).Hours() / 24)
		switch {
		case diffDays <= 0:
			report.Current += invoice.TotalAmount
		case diffDays <= 15:
			report.Days1To15 += invoice.TotalAmount
		case diffDays <= 30:
			report.Days16To30 += invoice.TotalAmount
		default:
			report.Over30 += invoice.TotalAmount
		}
	}
	return report
}

// RankedCount is one key of a counted aggregate, in encounter order.
type RankedCount struct {
	Key   string  `json:"key"`
	Count float64 `json:"count"`
}

// TopN sorts by descending count and returns the first n entries. The sort
// is stable, so ties keep their encounter order.
func TopN(counts []RankedCount, n int) []RankedCount {
	ranked := make([]RankedCount, len(counts))
	copy(ranked, counts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// LowStockProducts returns products at or below their reorder level.
// The comparison is inclusive: stock == reorderLevel is flagged.
func LowStockProducts(products []domain.Product) []domain.Product {
	low := make([]domain.Product, 0)
	for _, p := range products {
		if p.Stock <= p.ReorderLevel {
			low = append(low, p)
		}
	}
	return low
}

// LowStockRawMaterials returns materials at or below their reorder level,
// inclusive at equality.
func LowStockRawMaterials(materials []domain.RawMaterial) []domain.RawMaterial {
	low := make([]domain.RawMaterial, 0)
	for _, m := range materials {
		if m.Quantity <= m.ReorderLevel {
			low = append(low, m)
		}
	}
	return low
}
