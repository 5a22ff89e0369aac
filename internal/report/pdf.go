package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"khakhra/backend/internal/domain"
	"khakhra/backend/internal/metrics"
)

// Summary renders a one-document business overview: headline totals followed
// by a row per order. Amounts use a plain "Rs" prefix since the core PDF
// fonts only cover latin-1.
func Summary(payload domain.ExportPayload, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Khakhra Business Summary", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Khakhra Business Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+now.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	totalRevenue := 0.0
	for _, o := range payload.Orders {
		totalRevenue += metrics.CalculateOrderTotals(o).NetAmount
	}
	totalExpenses := 0.0
	for _, e := range payload.Expenses {
		totalExpenses += e.Amount
	}
	outstanding := 0.0
	for _, inv := range payload.Invoices {
		if !inv.Paid {
			outstanding += inv.TotalAmount
		}
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Key Metrics", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	metricRow(pdf, "Total Orders", fmt.Sprintf("%d", len(payload.Orders)))
	metricRow(pdf, "Total Revenue", money(totalRevenue))
	metricRow(pdf, "Total Expenses", money(totalExpenses))
	metricRow(pdf, "Outstanding Invoices", money(outstanding))
	metricRow(pdf, "Customers", fmt.Sprintf("%d", len(payload.Customers)))
	metricRow(pdf, "Products", fmt.Sprintf("%d", len(payload.Products)))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 8, "Orders", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(28, 7, "Order", "1", 0, "L", true, 0, "")
	pdf.CellFormat(32, 7, "Customer", "1", 0, "L", true, 0, "")
	pdf.CellFormat(28, 7, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(26, 7, "Status", "1", 0, "L", true, 0, "")
	pdf.CellFormat(26, 7, "Payment", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Net Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, o := range payload.Orders {
		totals := metrics.CalculateOrderTotals(o)
		pdf.CellFormat(28, 6, o.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(32, 6, o.CustomerID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, o.OrderDate.Format(dateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, 6, string(o.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, 6, o.PaymentMethod, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, money(totals.NetAmount), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func metricRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(60, 6, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 6, value, "1", 1, "R", false, 0, "")
}

func money(v float64) string {
	return fmt.Sprintf("Rs %.2f", v)
}

// SummaryFileName names the download with the export day.
func SummaryFileName(now time.Time) string {
	return fmt.Sprintf("khakhra-business-summary-%s.pdf", now.Format(dateLayout))
}
