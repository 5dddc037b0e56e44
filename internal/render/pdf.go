package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/haircarepro/server/internal/domain/careplan"
)

const documentTitle = "HairCare Pro Prescription"

// PDFRenderer turns a canonical plan into a one-page prescription document.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render writes the finished document to sink. Layout failures and sink
// write failures both surface through the returned error.
func (r *PDFRenderer) Render(plan careplan.CanonicalPlan, ownerName string, sink io.Writer) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(documentTitle, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, documentTitle, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 8, fmt.Sprintf("For: %s", ownerName), "", 1, "C", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 11)
	for _, line := range BodyLines(plan) {
		doc.MultiCell(0, 6, line, "", "L", false)
	}

	return doc.Output(sink)
}

// BodyLines assembles the document body in display order. Keeping the text
// assembly separate from the page layout lets tests assert content without
// parsing PDF output.
func BodyLines(plan careplan.CanonicalPlan) []string {
	lines := make([]string, 0, len(plan.Ingredients)+len(plan.Tips)+4)
	for _, ing := range plan.Ingredients {
		lines = append(lines, fmt.Sprintf("- %s: %s", ing.Name, ing.HowToUse))
	}
	lines = append(lines, fmt.Sprintf("Wash Frequency: %s", plan.WashFrequency))
	lines = append(lines, "Tips:")
	for _, tip := range plan.Tips {
		lines = append(lines, fmt.Sprintf("- %s", tip))
	}
	return lines
}

var _ careplan.Renderer = (*PDFRenderer)(nil)
