// Package export provides functionality for exporting cut optimization
// results to various file formats.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/ProfileCut/internal/model"
)

// partColor represents an RGB color for a placed part.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	barHeight    = 30.0
	barsPerPage  = 3
	barSpacing   = 18.0
	drawAreaTop  = marginTop + headerHeight + 8.0
)

// ExportPDF generates a PDF cutting plan. Stock bars are rendered as
// horizontal strips with their placed parts, shared-cut joints marked,
// followed by a summary page with overall statistics.
func ExportPDF(path string, result model.PlacementResult) error {
	if len(result.UsedMaterials) == 0 {
		return fmt.Errorf("no placed bars to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, bar := range result.UsedMaterials {
		slot := i % barsPerPage
		if slot == 0 {
			pdf.AddPage()
			renderPageHeader(pdf, i/barsPerPage+1)
		}
		y := drawAreaTop + float64(slot)*(barHeight+barSpacing)
		renderBar(pdf, bar, result.PlacedOn(bar.InstanceID), i+1, y)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result)

	return pdf.OutputFileAndClose(path)
}

func renderPageHeader(pdf *fpdf.Fpdf, pageNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight,
		fmt.Sprintf("Cutting plan - page %d", pageNum), "", 0, "L", false, 0, "")
}

// renderBar draws a single stock bar with its placements as a scaled
// horizontal strip.
func renderBar(pdf *fpdf.Fpdf, bar model.UsedMaterial, placed []model.PlacedPart, barNum int, y float64) {
	drawWidth := pageWidth - marginLeft - marginRight
	scale := drawWidth / float64(bar.Material.Length)

	// Bar title
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y-6)
	title := fmt.Sprintf("Bar %d: %s (%d mm, %d parts, %.1f%% used)",
		barNum, bar.Material.Label, bar.Material.Length, len(placed), bar.Utilization*100)
	pdf.CellFormat(drawWidth, 5, title, "", 0, "L", false, 0, "")

	// Bar background (aluminium grey)
	pdf.SetFillColor(222, 226, 230)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(marginLeft, y, drawWidth, barHeight, "FD")

	for i, p := range placed {
		col := partColors[i%len(partColors)]
		px := marginLeft + p.Position*scale
		pw := float64(p.Length) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, y, pw, barHeight, "FD")

		// Part label and length, when the strip is wide enough
		if pw > 12 {
			pdf.SetFont("Helvetica", "", 7)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetXY(px+1, y+barHeight/2-4)
			pdf.CellFormat(pw-2, 4, p.PartID, "", 0, "C", false, 0, "")
			pdf.SetXY(px+1, y+barHeight/2)
			pdf.CellFormat(pw-2, 4, fmt.Sprintf("%d", p.Length), "", 0, "C", false, 0, "")
		}

		// Shared-cut joints get a heavy red marker at the joint line.
		if p.SharedCuttingInfo != nil {
			pdf.SetDrawColor(220, 0, 0)
			pdf.SetLineWidth(0.8)
			pdf.Line(px, y-2, px, y+barHeight+2)
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws overall statistics and the unplaced-part list.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PlacementResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Summary", "", 1, "L", false, 0, "")

	report := result.Report
	lines := []string{
		fmt.Sprintf("Parts placed: %d of %d", report.PlacedParts, report.TotalParts),
		fmt.Sprintf("Bars used: %d", report.MaterialsUsed),
		fmt.Sprintf("Material utilization: %.1f%%", report.MaterialUtilization*100),
		fmt.Sprintf("Shared-cut pairs: %d", report.SharedCutPairs),
		fmt.Sprintf("Material saved by shared cuts: %.1f mm", math.Round(result.TotalSavings*10)/10),
		fmt.Sprintf("Strategy: %s", report.Strategy),
		fmt.Sprintf("Processing time: %s", report.ProcessingTime),
	}

	pdf.SetFont("Helvetica", "", 11)
	y := marginTop + 14.0
	for _, line := range lines {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 6, line, "", 1, "L", false, 0, "")
		y += 7
	}

	if len(result.UnplacedParts) > 0 {
		y += 4
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 6, "Unplaced parts", "", 1, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		for _, u := range result.UnplacedParts {
			if y > pageHeight-marginBottom {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(pageWidth-marginLeft-marginRight, 5,
				fmt.Sprintf("%s #%d: %s", u.PartID, u.Instance, u.Reason), "", 1, "L", false, 0, "")
			y += 5
		}
	}

	if len(result.Warnings) > 0 {
		y += 4
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(150, 100, 0)
		for _, w := range result.Warnings {
			if y > pageHeight-marginBottom {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, w, "", 1, "L", false, 0, "")
			y += 5
		}
		pdf.SetTextColor(0, 0, 0)
	}
}
