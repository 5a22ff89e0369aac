package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"khakhra/backend/internal/domain"
)

// Overview holds the dashboard headline figures.
type Overview struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	OutstandingInvoices float64 `json:"outstandingInvoices"`
	OutstandingCount    int     `json:"outstandingCount"`
	TotalStockUnits     int     `json:"totalStockUnits"`
	TotalExpenses       float64 `json:"totalExpenses"`
	OrderCount          int     `json:"orderCount"`
	ExpenseCount        int     `json:"expenseCount"`
	ProductCount        int     `json:"productCount"`
}

func OverviewStats(orders []domain.Order, invoices []domain.Invoice, expenses []domain.Expense, products []domain.Product) Overview {
	revenue := decimal.Zero
	for _, order := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(CalculateOrderTotals(order).NetAmount))
	}

	outstanding := decimal.Zero
	outstandingCount := 0
	for _, invoice := range invoices {
		if invoice.Paid {
			continue
		}
		outstanding = outstanding.Add(decimal.NewFromFloat(invoice.TotalAmount))
		outstandingCount++
	}

	spent := decimal.Zero
	for _, expense := range expenses {
		spent = spent.Add(decimal.NewFromFloat(expense.Amount))
	}

	stockUnits := 0
	for _, p := range products {
		stockUnits += p.Stock
	}

	return Overview{
		TotalRevenue:        revenue.InexactFloat64(),
		OutstandingInvoices: outstanding.InexactFloat64(),
		OutstandingCount:    outstandingCount,
		TotalStockUnits:     stockUnits,
		TotalExpenses:       spent.InexactFloat64(),
		OrderCount:          len(orders),
		ExpenseCount:        len(expenses),
		ProductCount:        len(products),
	}
}

// TrendPoint is one calendar day of net revenue and order volume.
type TrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// RevenueTrend groups net revenue by order date (UTC calendar day),
// sorted chronologically.
func RevenueTrend(orders []domain.Order) []TrendPoint {
	grouped := make(map[string]*TrendPoint)
	keys := make([]string, 0)
	for _, order := range orders {
		key := order.OrderDate.UTC().Format("2006-01-02")
		point, ok := grouped[key]
		if !ok {
			point = &TrendPoint{Date: key}
			grouped[key] = point
			keys = append(keys, key)
		}
		point.Revenue += CalculateOrderTotals(order).NetAmount
		point.Orders++
	}

	trend := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		trend = append(trend, *grouped[key])
	}
	// ISO date keys sort correctly as strings.
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// ProductStat aggregates per-product sales across orders, sorted by units
// sold descending.
type ProductStat struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

func ProductPerformance(orders []domain.Order, products []domain.Product) []ProductStat {
	nameByID := make(map[string]string, len(products))
	for _, p := range products {
		nameByID[p.ID] = p.Name
	}

	statByID := make(map[string]*ProductStat)
	counts := make([]RankedCount, 0)
	indexByID := make(map[string]int)

	for _, order := range orders {
		taxable := CalculateOrderTotals(order).TaxableValue
		for _, item := range order.Items {
			name, ok := nameByID[item.ProductID]
			if !ok {
				continue
			}
			stat, seen := statByID[item.ProductID]
			if !seen {
				stat = &ProductStat{ProductID: item.ProductID, Name: name}
				statByID[item.ProductID] = stat
				indexByID[item.ProductID] = len(counts)
				counts = append(counts, RankedCount{Key: item.ProductID})
			}
			stat.Units += item.Quantity
			stat.Revenue += taxable
			counts[indexByID[item.ProductID]].Count += float64(item.Quantity)
		}
	}

	ranked := TopN(counts, len(counts))
	result := make([]ProductStat, 0, len(ranked))
	for _, entry := range ranked {
		result = append(result, *statByID[entry.Key])
	}
	return result
}

// PaymentShare is net revenue attributed to one payment method.
type PaymentShare struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// PaymentSplit totals net revenue per payment method, in the order the
// methods are first encountered.
func PaymentSplit(orders []domain.Order) []PaymentShare {
	indexByMethod := make(map[string]int)
	shares := make([]PaymentShare, 0)
	for _, order := range orders {
		net := CalculateOrderTotals(order).NetAmount
		idx, ok := indexByMethod[order.PaymentMethod]
		if !ok {
			idx = len(shares)
			indexByMethod[order.PaymentMethod] = idx
			shares = append(shares, PaymentShare{Method: order.PaymentMethod})
		}
		shares[idx].Amount += net
	}
	return shares
}

// ExpenseTotalsByCategory sums expense amounts per category.
func ExpenseTotalsByCategory(expenses []domain.Expense) map[domain.ExpenseCategory]float64 {
	totals := make(map[domain.ExpenseCategory]float64)
	for _, expense := range expenses {
		totals[expense.Category] += expense.Amount
	}
	return totals
}

// ProfitLossStatement is the trailing-window P&L: revenue and COGS over the
// window's orders, operating expense over the window's expenses.
type ProfitLossStatement struct {
	Days             int     `json:"days"`
	Revenue          float64 `json:"revenue"`
	COGS             float64 `json:"cogs"`
	OperatingExpense float64 `json:"operatingExpense"`
	GrossProfit      float64 `json:"grossProfit"`
	NetProfit        float64 `json:"netProfit"`
	MarginPercent    float64 `json:"marginPercent"`
	OrderCount       int     `json:"orderCount"`
}

func ProfitLoss(orders []domain.Order, products []domain.Product, expenses []domain.Expense, days int, now time.Time) ProfitLossStatement {
	cutoff := now.AddDate(0, 0, -days)

	revenue := decimal.Zero
	cogs := decimal.Zero
	orderCount := 0
	for _, order := range orders {
		if order.OrderDate.Before(cutoff) {
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(CalculateOrderTotals(order).NetAmount))
		cogs = cogs.Add(decimal.NewFromFloat(COGSForOrder(order, products)))
		orderCount++
	}

	opex := decimal.Zero
	for _, expense := range expenses {
		if expense.Date.Before(cutoff) {
			continue
		}
		opex = opex.Add(decimal.NewFromFloat(expense.Amount))
	}

	gross := revenue.Sub(cogs)
	net := gross.Sub(opex)
	margin := 0.0
	if revenue.IsPositive() {
		margin = net.Div(revenue).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return ProfitLossStatement{
		Days:             days,
		Revenue:          revenue.InexactFloat64(),
		COGS:             cogs.InexactFloat64(),
		OperatingExpense: opex.InexactFloat64(),
		GrossProfit:      gross.InexactFloat64(),
		NetProfit:        net.InexactFloat64(),
		MarginPercent:    margin,
		OrderCount:       orderCount,
	}
}

// SalesInsights summarizes customer and product behaviour across all orders.
type SalesInsights struct {
	TopCustomer       *domain.Customer `json:"topCustomer,omitempty"`
	TopCustomerOrders int              `json:"topCustomerOrders"`
	RepeatRate        float64          `json:"repeatRate"`
	TopProducts       []ProductStat    `json:"topProducts"`
	SeasonalPeak      *TrendPoint      `json:"seasonalPeak,omitempty"`
	AverageOrderValue float64          `json:"averageOrderValue"`
}

func Insights(orders []domain.Order, customers []domain.Customer, products []domain.Product) SalesInsights {
	frequency := make([]RankedCount, 0)
	indexByCustomer := make(map[string]int)
	for _, order := range orders {
		idx, ok := indexByCustomer[order.CustomerID]
		if !ok {
			idx = len(frequency)
			indexByCustomer[order.CustomerID] = idx
			frequency = append(frequency, RankedCount{Key: order.CustomerID})
		}
		frequency[idx].Count++
	}

	insights := SalesInsights{TopProducts: topProducts(orders, products, 3)}

	if top := TopN(frequency, 1); len(top) > 0 {
		for i := range customers {
			if customers[i].ID == top[0].Key {
				customer := customers[i]
				insights.TopCustomer = &customer
				insights.TopCustomerOrders = int(top[0].Count)
				break
			}
		}
	}

	repeat := 0
	for _, entry := range frequency {
		if entry.Count > 1 {
			repeat++
		}
	}
	if len(customers) > 0 {
		insights.RepeatRate = float64(repeat) / float64(len(customers)) * 100
	}

	if peak := monthlyPeak(orders); peak != nil {
		insights.SeasonalPeak = peak
	}

	if len(orders) > 0 {
		total := decimal.Zero
		for _, order := range orders {
			total = total.Add(decimal.NewFromFloat(CalculateOrderTotals(order).NetAmount))
		}
		insights.AverageOrderValue = total.Div(decimal.NewFromInt(int64(len(orders)))).InexactFloat64()
	}

	return insights
}

func topProducts(orders []domain.Order, products []domain.Product, n int) []ProductStat {
	stats := ProductPerformance(orders, products)
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// monthlyPeak finds the month with the highest net revenue.
func monthlyPeak(orders []domain.Order) *TrendPoint {
	totals := make([]RankedCount, 0)
	indexByMonth := make(map[string]int)
	for _, order := range orders {
		key := order.OrderDate.UTC().Format("Jan 2006")
		idx, ok := indexByMonth[key]
		if !ok {
			idx = len(totals)
			indexByMonth[key] = idx
			totals = append(totals, RankedCount{Key: key})
		}
		totals[idx].Count += CalculateOrderTotals(order).NetAmount
	}

	top := TopN(totals, 1)
	if len(top) == 0 {
		return nil
	}
	return &TrendPoint{Date: top[0].Key, Revenue: top[0].Count}
}

// InventoryValuation totals stock at cost for finished goods and materials.
type InventoryValuation struct {
	FinishedGoodsValue float64 `json:"finishedGoodsValue"`
	RawMaterialValue   float64 `json:"rawMaterialValue"`
}

func Valuation(products []domain.Product, materials []domain.RawMaterial) InventoryValuation {
	goods := decimal.Zero
	for _, p := range products {
		goods = goods.Add(decimal.NewFromFloat(p.CostPerUnit).Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	raw := decimal.Zero
	for _, m := range materials {
		raw = raw.Add(decimal.NewFromFloat(m.UnitCost).Mul(decimal.NewFromFloat(m.Quantity)))
	}
	return InventoryValuation{
		FinishedGoodsValue: goods.InexactFloat64(),
		RawMaterialValue:   raw.InexactFloat64(),
	}
}
