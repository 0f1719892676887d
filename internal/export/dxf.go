package export

import (
	"fmt"

	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF layout constants, drawing units are mm.
const (
	dxfBarHeight  = 100.0 // rendered bar height
	dxfBarSpacing = 60.0  // vertical gap between bars
	dxfTextHeight = 30.0
)

// ExportDXF writes the cut layout as a DXF drawing: one rectangle per
// stock bar, stacked vertically, with a vertical line at every cut
// position and shared-cut joints on their own layer. CAD-equipped shops
// load this straight into their saw software.
func ExportDXF(path string, result model.PlacementResult) error {
	if len(result.UsedMaterials) == 0 {
		return fmt.Errorf("no placed bars to export")
	}

	d := dxf.NewDrawing()
	d.AddLayer("BARS", dxf.DefaultColor, dxf.DefaultLineType, true)

	for i, bar := range result.UsedMaterials {
		y := -float64(i) * (dxfBarHeight + dxfBarSpacing)
		length := float64(bar.Material.Length)

		// Bar outline
		d.Line(0, y, 0, length, y, 0)
		d.Line(0, y+dxfBarHeight, 0, length, y+dxfBarHeight, 0)
		d.Line(0, y, 0, 0, y+dxfBarHeight, 0)
		d.Line(length, y, 0, length, y+dxfBarHeight, 0)

		d.Text(fmt.Sprintf("%s #%d (%d mm)", bar.Material.Label, i+1, bar.Material.Length),
			0, y+dxfBarHeight+10, 0, dxfTextHeight)
	}

	// Cut lines: part boundaries on each bar. Shared cuts are drawn once
	// on a separate layer so the saw operator can tell them apart.
	d.AddLayer("CUTS", color.Green, dxf.DefaultLineType, true)
	for i, bar := range result.UsedMaterials {
		y := -float64(i) * (dxfBarHeight + dxfBarSpacing)
		for _, p := range result.PlacedOn(bar.InstanceID) {
			if p.SharedCuttingInfo == nil {
				d.Line(p.Position, y, 0, p.Position, y+dxfBarHeight, 0)
			}
			d.Line(p.End(), y, 0, p.End(), y+dxfBarHeight, 0)
		}
	}

	d.AddLayer("SHARED_CUTS", color.Red, dxf.DefaultLineType, true)
	for i, bar := range result.UsedMaterials {
		y := -float64(i) * (dxfBarHeight + dxfBarSpacing)
		for _, p := range result.PlacedOn(bar.InstanceID) {
			if p.SharedCuttingInfo == nil {
				continue
			}
			d.Line(p.Position, y, 0, p.Position, y+dxfBarHeight, 0)
		}
	}

	return d.SaveAs(path)
}
