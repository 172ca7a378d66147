package services

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// BillNumber formats the number printed on a bill.
func BillNumber(order models.Order, at time.Time) string {
	return fmt.Sprintf("BILL/%s/%06d", at.Format("20060102"), order.ID)
}

// RenderBill writes a printable A5 bill for order to w. Amounts come from the
// order snapshot the backend returned; nothing is repriced here.
func RenderBill(w io.Writer, order models.Order, restaurant string) error {
	now := time.Now()

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetTitle(BillNumber(order, now), true)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, restaurant, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, BillNumber(order, now), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, now.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.CellFormat(0, 5, fmt.Sprintf("Order #%d  %s  %s", order.ID, order.Type, order.Status), "", 1, "L", false, 0, "")
	if order.TableInfo != nil {
		pdf.CellFormat(0, 5, fmt.Sprintf("Block %d / Table %d", order.TableInfo.BlockID, order.TableInfo.TableID), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(64, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(14, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	subtotal := decimal.Zero
	for _, item := range order.Items {
		line := item.LineTotal()
		subtotal = subtotal.Add(line)

		name := item.Name
		if name == "" {
			name = fmt.Sprintf("Item %d", item.ItemID)
		}
		pdf.CellFormat(64, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(14, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, utils.FormatMoney(item.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, utils.FormatMoney(line), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	billRow(pdf, "Subtotal", utils.FormatMoney(subtotal), false)
	// discount and tax are folded into the submitted total
	if adj := order.TotalAmount.Sub(subtotal); !adj.IsZero() {
		billRow(pdf, "Adjustments", utils.FormatMoney(adj), false)
	}
	billRow(pdf, "Total", utils.FormatMoney(order.TotalAmount), true)

	pdf.Ln(3)
	paid := "UNPAID"
	if order.IsPaid {
		paid = "PAID"
		if order.PaymentMethod != nil {
			paid += " (" + string(*order.PaymentMethod) + ")"
		}
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, paid, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Thank you for dining with us", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error rendering bill: %w", err)
	}
	return nil
}

func billRow(pdf *fpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 9)
	pdf.CellFormat(103, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, value, "", 1, "R", false, 0, "")
}
