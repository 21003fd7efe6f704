// Package report renders the weekly schedule and lab activity documents.
// Rendering is a pure function of its inputs; callers receive PDF bytes and
// decide where they go.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ErrGenerationFailed wraps failures from the underlying drawing layer.
// Callers surface it; nothing retries automatically.
var ErrGenerationFailed = errors.New("report: generation failed")

const (
	pageMargin = 72.0
	bodySize   = 12.0
	titleSize  = 18.0
)

// newDocument prepares a Letter-sized portrait page with the shared footer.
// generatedAt is injected so rendering stays deterministic.
func newDocument(generatedAt time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	footer := fmt.Sprintf("Generated on %s", generatedAt.Format("2 January 2006 at 15:04"))
	pdf.SetFooterFunc(func() {
		pdf.SetY(-40)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 12, footer, "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	return pdf
}

func drawTitle(pdf *gofpdf.Fpdf, title, weekLabel string) {
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.CellFormat(0, 24, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.CellFormat(0, 18, weekLabel, "", 1, "L", false, 0, "")
	pdf.Ln(12)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return buf.Bytes(), nil
}
