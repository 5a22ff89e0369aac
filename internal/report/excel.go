// Package report renders a snapshot into the two export artifacts: a
// multi-sheet spreadsheet workbook and a printable PDF summary. Both consume
// a read-only ExportPayload and never touch the store.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/metrics"
)

const dateLayout = "2006-01-02"

// Workbook builds an xlsx file with one sheet per collection.
func Workbook(payload domain.ExportPayload) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeSheet(f, "Orders",
		[]string{"ID", "Customer", "Status", "Order Date", "Ship Date", "Items", "Discount", "Tax Rate", "Payment", "Net Amount"},
		len(payload.Orders),
		func(i int) []interface{} {
			o := payload.Orders[i]
			return []interface{}{
				o.ID, o.CustomerID, string(o.Status),
				o.OrderDate.Format(dateLayout), o.ExpectedShipDate.Format(dateLayout),
				formatItems(o.Items), o.Discount, o.TaxRate, o.PaymentMethod,
				metrics.CalculateOrderTotals(o).NetAmount,
			}
		}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Invoices",
		[]string{"ID", "Order", "Invoice Date", "Due Date", "GST Number", "Total", "CGST", "SGST", "IGST", "Paid"},
		len(payload.Invoices),
		func(i int) []interface{} {
			inv := payload.Invoices[i]
			return []interface{}{
				inv.ID, inv.OrderID, inv.InvoiceDate.Format(dateLayout), inv.DueDate.Format(dateLayout),
				inv.GSTNumber, inv.TotalAmount, inv.CGST, inv.SGST, inv.IGST, inv.Paid,
			}
		}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Expenses",
		[]string{"ID", "Title", "Amount", "Category", "Date", "Notes"},
		len(payload.Expenses),
		func(i int) []interface{} {
			e := payload.Expenses[i]
			return []interface{}{e.ID, e.Title, e.Amount, string(e.Category), e.Date.Format(dateLayout), e.Notes}
		}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Products",
		[]string{"ID", "Name", "Category", "Unit Price", "Cost Per Unit", "Stock", "Reorder Level"},
		len(payload.Products),
		func(i int) []interface{} {
			p := payload.Products[i]
			return []interface{}{p.ID, p.Name, p.Category, p.UnitPrice, p.CostPerUnit, p.Stock, p.ReorderLevel}
		}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Raw Materials",
		[]string{"ID", "Name", "Unit", "Quantity", "Reorder Level", "Unit Cost"},
		len(payload.RawMaterials),
		func(i int) []interface{} {
			m := payload.RawMaterials[i]
			return []interface{}{m.ID, m.Name, m.Unit, m.Quantity, m.ReorderLevel, m.UnitCost}
		}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Customers",
		[]string{"ID", "Name", "Phone"},
		len(payload.Customers),
		func(i int) []interface{} {
			c := payload.Customers[i]
			return []interface{}{c.ID, c.Name, c.Phone}
		}); err != nil {
		return nil, err
	}

	if err := writeSheet(f, "Production",
		[]string{"ID", "Product", "Quantity Produced", "Production Date", "Material Usage"},
		len(payload.ProductionBatches),
		func(i int) []interface{} {
			b := payload.ProductionBatches[i]
			return []interface{}{b.ID, b.ProductID, b.QuantityProduced, b.ProductionDate.Format(dateLayout), formatUsage(b.RawMaterialUsage)}
		}); err != nil {
		return nil, err
	}

	// excelize starts every file with a default Sheet1.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, headings []string, rows int, rowValues func(i int) []interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	for col, heading := range headings {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, heading); err != nil {
			return err
		}
	}

	for i := 0; i < rows; i++ {
		for col, value := range rowValues(i) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatItems(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d @%.2f", item.ProductID, item.Quantity, item.UnitPrice))
	}
	return strings.Join(parts, "; ")
}

func formatUsage(usage []domain.RawMaterialUsage) string {
	parts := make([]string, 0, len(usage))
	for _, u := range usage {
		parts = append(parts, fmt.Sprintf("%s x%.2f", u.RawMaterialID, u.Quantity))
	}
	return strings.Join(parts, "; ")
}

// WorkbookFileName names the download with the export day.
func WorkbookFileName(now time.Time) string {
	return fmt.Sprintf("khakhra-business-data-%s.xlsx", now.Format(dateLayout))
}
