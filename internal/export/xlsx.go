package export

import (
	"fmt"

	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// cutListSheet is the sheet name used in exported workbooks.
const cutListSheet = "Cut List"

// ExportXLSX writes the placement as a cut-list workbook: one row per
// placed part with its bar, position, and shared-cut details, followed by
// a totals block. The parts catalog supplies human-readable labels.
func ExportXLSX(path string, result model.PlacementResult, parts []model.Part) error {
	if len(result.PlacedParts) == 0 {
		return fmt.Errorf("no placed parts to export")
	}

	labelByID := make(map[string]string, len(parts))
	for _, p := range parts {
		labelByID[p.ID] = p.Label
	}
	barIndex := make(map[string]int, len(result.UsedMaterials))
	for i, bar := range result.UsedMaterials {
		barIndex[bar.InstanceID] = i + 1
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", cutListSheet)

	headers := []string{"Bar", "Material", "Part", "Piece", "Position (mm)", "Length (mm)", "Shared cut", "Saved (mm)"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(cutListSheet, cell, h); err != nil {
			return err
		}
	}

	row := 2
	for _, bar := range result.UsedMaterials {
		for _, p := range result.PlacedOn(bar.InstanceID) {
			label := labelByID[p.PartID]
			if label == "" {
				label = p.PartID
			}
			values := []interface{}{
				barIndex[bar.InstanceID],
				bar.Material.Label,
				label,
				p.PartInstanceID + 1,
				p.Position,
				p.Length,
				"",
				"",
			}
			if p.SharedCuttingInfo != nil {
				values[6] = fmt.Sprintf("%.1f deg with %s", p.SharedCuttingInfo.SharedAngle, p.SharedCuttingInfo.PairedWithPartID)
				values[7] = p.SharedCuttingInfo.Savings
			}
			for col, v := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(cutListSheet, cell, v); err != nil {
					return err
				}
			}
			row++
		}
	}

	// Totals block
	row++
	totals := [][2]interface{}{
		{"Parts placed", result.Report.PlacedParts},
		{"Bars used", result.Report.MaterialsUsed},
		{"Utilization", fmt.Sprintf("%.1f%%", result.Report.MaterialUtilization*100)},
		{"Shared-cut pairs", result.Report.SharedCutPairs},
		{"Saved (mm)", result.TotalSavings},
	}
	for _, kv := range totals {
		keyCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		valCell, err := excelize.CoordinatesToCellName(2, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(cutListSheet, keyCell, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(cutListSheet, valCell, kv[1]); err != nil {
			return err
		}
		row++
	}

	return f.SaveAs(path)
}
