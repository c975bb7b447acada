// Package receipt renders a booking as a single-page PDF with a QR code of
// the booking reference.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/joshua-takyi/travelease/internal/models"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const maxItemRows = 12

// Customer is the subset of the account printed on the receipt.
type Customer struct {
	Name  string
	Email string
}

// Render builds the receipt PDF for b.
func Render(b *models.Booking, customer Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "TRAVELEASE BOOKING RECEIPT")
	pdf.Ln(18)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// Summary box with QR on the right
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 55, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING SUMMARY")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	summaryLines := []string{
		"Reference: " + b.BookingReference,
		"Status: " + string(b.Status),
		"Booked: " + b.BookingDate.Format("02 Jan 2006 15:04 MST"),
		"Customer: " + customer.Name,
		"Email: " + customer.Email,
	}
	if b.TravelDate != nil {
		summaryLines = append(summaryLines, "Travel date: "+b.TravelDate.Format("02 Jan 2006"))
	}
	for _, line := range summaryLines {
		pdf.SetX(20)
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(6)
	}

	qrBytes, err := qrcode.Encode(b.BookingReference, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qrBytes))
	pdf.ImageOptions("qr", 145, yStart+5, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 63)

	// Items
	sectionTitle(pdf, "PACKAGES")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(95, 8, "Package", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for i, it := range b.Items {
		if i >= maxItemRows {
			pdf.CellFormat(0, 7, fmt.Sprintf("... and %d more packages", len(b.Items)-maxItemRows), "", 1, "L", false, 0, "")
			break
		}
		name := it.PackageName
		if name == "" {
			name = fmt.Sprintf("Package #%d", it.PackageID)
		}
		pdf.CellFormat(95, 7, tr(truncate(name, 48)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, money(it.UnitPrice.StringFixed(2)), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(it.TotalPrice.StringFixed(2)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	sectionTitle(pdf, "TOTALS")
	totals := [][2]string{
		{"Subtotal", money(b.Subtotal.StringFixed(2))},
		{"Discount", "-" + money(b.DiscountAmount.StringFixed(2))},
		{"Tax (10%)", money(b.TaxAmount.StringFixed(2))},
		{"Processing (" + b.ProcessingTier + ")", money(b.ShippingCost.StringFixed(2))},
	}
	if b.PromoCode != "" {
		totals[1][0] = "Discount (" + b.PromoCode + ")"
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range totals {
		pdf.CellFormat(145, 7, tr(row[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, row[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(145, 9, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 9, money(b.TotalAmount.StringFixed(2)), "T", 1, "R", false, 0, "")

	if b.SpecialRequests != "" {
		pdf.Ln(4)
		sectionTitle(pdf, "SPECIAL REQUESTS")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(truncate(b.SpecialRequests, 400)), "", "", false)
	}

	// Footer
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 285, 195, 285)
	pdf.SetY(288)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 8, "Present this reference or QR code when contacting TravelEase support.", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

func money(s string) string {
	return "$" + s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
