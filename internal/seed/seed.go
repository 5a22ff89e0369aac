// Package seed holds the fixed sample dataset used when no persisted snapshot
// exists (or when the persisted one is corrupt).
package seed

import (
	"time"

	"khakhra/backend/internal/domain"
)

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}

// Snapshot builds a fresh copy of the seed dataset. Dates for orders, invoices
// and expenses are anchored to the current day so the trailing-window metrics
// have data to show on first run.
func Snapshot() *domain.Snapshot {
	customers := []domain.Customer{
		{ID: "cust-1", Name: "Shreeji Super Mart", Phone: "+91 98240 11223"},
		{ID: "cust-2", Name: "Ahmedabad Farsan House", Phone: "+91 98791 44556"},
		{ID: "cust-3", Name: "Rajkot Dry Snacks Depot", Phone: "+91 99090 77889"},
		{ID: "cust-4", Name: "Surat Namkeen Corner", Phone: "+91 97250 33445"},
	}

	products := []domain.Product{
		{ID: "prod-1", Name: "Methi Khakhra", Category: "Classic", UnitPrice: 60, CostPerUnit: 32, Stock: 420, ReorderLevel: 150},
		{ID: "prod-2", Name: "Masala Khakhra", Category: "Classic", UnitPrice: 62, CostPerUnit: 33, Stock: 360, ReorderLevel: 150},
		{ID: "prod-3", Name: "Jeera Khakhra", Category: "Classic", UnitPrice: 58, CostPerUnit: 30, Stock: 140, ReorderLevel: 150},
		{ID: "prod-4", Name: "Cheese Chilli Khakhra", Category: "Fusion", UnitPrice: 85, CostPerUnit: 48, Stock: 210, ReorderLevel: 100},
		{ID: "prod-5", Name: "Oats Diet Khakhra", Category: "Diet", UnitPrice: 92, CostPerUnit: 55, Stock: 95, ReorderLevel: 80},
	}

	rawMaterials := []domain.RawMaterial{
		{ID: "raw-1", Name: "Whole Wheat Flour", Unit: "kg", Quantity: 320, ReorderLevel: 120, UnitCost: 42},
		{ID: "raw-2", Name: "Groundnut Oil", Unit: "litre", Quantity: 85, ReorderLevel: 40, UnitCost: 165},
		{ID: "raw-3", Name: "Fenugreek Leaves", Unit: "kg", Quantity: 18, ReorderLevel: 20, UnitCost: 90},
		{ID: "raw-4", Name: "Packaging Film Rolls", Unit: "roll", Quantity: 55, ReorderLevel: 25, UnitCost: 210},
	}

	orders := []domain.Order{
		{
			ID:         "order-1",
			CustomerID: "cust-1",
			Items: []domain.OrderItem{
				{ProductID: "prod-1", Quantity: 40, UnitPrice: 60},
				{ProductID: "prod-2", Quantity: 30, UnitPrice: 62},
			},
			Status:           domain.OrderStatusDelivered,
			OrderDate:        daysAgo(21),
			ExpectedShipDate: daysAgo(19),
			Discount:         150,
			TaxRate:          0.12,
			PaymentMethod:    "UPI",
		},
		{
			ID:         "order-2",
			CustomerID: "cust-2",
			Items: []domain.OrderItem{
				{ProductID: "prod-4", Quantity: 25, UnitPrice: 85},
			},
			Status:           domain.OrderStatusShipped,
			OrderDate:        daysAgo(9),
			ExpectedShipDate: daysAgo(7),
			Discount:         0,
			TaxRate:          0.12,
			PaymentMethod:    "Net Banking",
		},
		{
			ID:         "order-3",
			CustomerID: "cust-1",
			Items: []domain.OrderItem{
				{ProductID: "prod-1", Quantity: 60, UnitPrice: 58},
				{ProductID: "prod-5", Quantity: 15, UnitPrice: 92},
			},
			Status:           domain.OrderStatusProcessing,
			OrderDate:        daysAgo(4),
			ExpectedShipDate: daysAgo(1),
			Discount:         200,
			TaxRate:          0.12,
			PaymentMethod:    "Card",
		},
		{
			ID:         "order-4",
			CustomerID: "cust-3",
			Items: []domain.OrderItem{
				{ProductID: "prod-2", Quantity: 50, UnitPrice: 62},
				{ProductID: "prod-3", Quantity: 35, UnitPrice: 58},
			},
			Status:           domain.OrderStatusPending,
			OrderDate:        daysAgo(1),
			ExpectedShipDate: daysAgo(-2),
			Discount:         100,
			TaxRate:          0.12,
			PaymentMethod:    "Cash",
		},
	}

	invoices := []domain.Invoice{
		{
			ID:          "inv-1",
			OrderID:     "order-1",
			InvoiceDate: daysAgo(20),
			DueDate:     daysAgo(13),
			GSTNumber:   "24ABCDE1234F1Z5",
			TotalAmount: 4480.56,
			CGST:        240.03,
			SGST:        240.03,
			IGST:        0,
			Paid:        true,
		},
		{
			ID:          "inv-2",
			OrderID:     "order-2",
			InvoiceDate: daysAgo(8),
			DueDate:     daysAgo(1),
			GSTNumber:   "24ABCDE1234F1Z5",
			TotalAmount: 2380,
			CGST:        127.5,
			SGST:        127.5,
			IGST:        0,
			Paid:        false,
		},
		{
			ID:          "inv-3",
			OrderID:     "order-3",
			InvoiceDate: daysAgo(3),
			DueDate:     daysAgo(-4),
			GSTNumber:   "24ABCDE1234F1Z5",
			TotalAmount: 5218.08,
			CGST:        279.54,
			SGST:        279.54,
			IGST:        0,
			Paid:        false,
		},
	}

	expenses := []domain.Expense{
		{ID: "exp-1", Title: "Courier contract - marketplace orders", Amount: 5400, Category: domain.ExpenseDelivery, Date: daysAgo(12), Notes: "Monthly base slab"},
		{ID: "exp-2", Title: "Pouch printing", Amount: 8200, Category: domain.ExpensePackaging, Date: daysAgo(10), Notes: "20k pouches"},
		{ID: "exp-3", Title: "Roasting unit electricity", Amount: 6150, Category: domain.ExpenseUtilities, Date: daysAgo(6), Notes: ""},
		{ID: "exp-4", Title: "Festival hamper promo", Amount: 3000, Category: domain.ExpenseMarketing, Date: daysAgo(2), Notes: "Instagram boost"},
	}

	productionBatches := []domain.ProductionBatch{
		{
			ID:               "batch-1",
			ProductID:        "prod-1",
			QuantityProduced: 300,
			ProductionDate:   daysAgo(14),
			RawMaterialUsage: []domain.RawMaterialUsage{
				{RawMaterialID: "raw-1", Quantity: 60},
				{RawMaterialID: "raw-3", Quantity: 6},
			},
		},
		{
			ID:               "batch-2",
			ProductID:        "prod-4",
			QuantityProduced: 180,
			ProductionDate:   daysAgo(5),
			RawMaterialUsage: []domain.RawMaterialUsage{
				{RawMaterialID: "raw-1", Quantity: 35},
				{RawMaterialID: "raw-2", Quantity: 9},
			},
		},
	}

	return &domain.Snapshot{
		Customers:         customers,
		Products:          products,
		RawMaterials:      rawMaterials,
		Orders:            orders,
		Invoices:          invoices,
		Expenses:          expenses,
		ProductionBatches: productionBatches,
		UserProfile:       nil,
	}
}
