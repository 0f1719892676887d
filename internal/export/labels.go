// Package export provides functionality for exporting cut optimization
// results to various file formats including QR-coded part labels.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/ProfileCut/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each part label's QR code.
type LabelInfo struct {
	PartLabel   string  `json:"label"`
	PartID      string  `json:"part_id"`
	Instance    int     `json:"instance"`
	Length      int     `json:"length_mm"`
	BarIndex    int     `json:"bar"`
	BarLabel    string  `json:"bar_label"`
	Position    float64 `json:"position_mm"`
	SharedCut   bool    `json:"shared_cut"`
	SharedAngle float64 `json:"shared_angle,omitempty"`
	Savings     float64 `json:"saved_mm,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per page). Each label cell is approximately 66.7mm x 25.4mm on US
// Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels for all placed parts.
// Each label carries the part name, length, bar and position, and a QR
// code encoding the placement metadata as JSON. The parts catalog supplies
// human-readable labels for the part ids on the result.
func ExportLabels(path string, result model.PlacementResult, parts []model.Part) error {
	labels := CollectLabelInfos(result, parts)
	if len(labels) == 0 {
		return fmt.Errorf("no parts placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.PartLabel, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d_%d", info.PartID, info.Instance, info.BarIndex)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	partLabel := info.PartLabel
	if pdf.GetStringWidth(partLabel) > textW {
		for len(partLabel) > 0 && pdf.GetStringWidth(partLabel+"...") > textW {
			partLabel = partLabel[:len(partLabel)-1]
		}
		partLabel += "..."
	}
	pdf.CellFormat(textW, 4.5, partLabel, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d mm (piece %d)", info.Length, info.Instance+1), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Bar %d @ %.0f mm", info.BarIndex, info.Position), "", 1, "L", false, 0, "")

	if info.SharedCut {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Shared cut %.1f\xb0", info.SharedAngle), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label information from an optimization result
// for use in testing or alternative export formats.
func CollectLabelInfos(result model.PlacementResult, parts []model.Part) []LabelInfo {
	labelByID := make(map[string]string, len(parts))
	for _, p := range parts {
		labelByID[p.ID] = p.Label
	}

	barIndex := make(map[string]int, len(result.UsedMaterials))
	barLabel := make(map[string]string, len(result.UsedMaterials))
	for i, bar := range result.UsedMaterials {
		barIndex[bar.InstanceID] = i + 1
		barLabel[bar.InstanceID] = bar.Material.Label
	}

	var labels []LabelInfo
	for _, p := range result.PlacedParts {
		label := labelByID[p.PartID]
		if label == "" {
			label = p.PartID
		}
		info := LabelInfo{
			PartLabel: label,
			PartID:    p.PartID,
			Instance:  p.PartInstanceID,
			Length:    p.Length,
			BarIndex:  barIndex[p.MaterialInstanceID],
			BarLabel:  barLabel[p.MaterialInstanceID],
			Position:  p.Position,
		}
		if p.SharedCuttingInfo != nil {
			info.SharedCut = true
			info.SharedAngle = p.SharedCuttingInfo.SharedAngle
			info.Savings = p.SharedCuttingInfo.Savings
		}
		labels = append(labels, info)
	}
	return labels
}
