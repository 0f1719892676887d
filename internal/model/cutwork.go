package model

// CutWorkSummary holds the saw workload implied by a cut list: how many
// cuts the job takes and how many of those are bevel cuts, which need a
// mitre setup and take longer.
type CutWorkSummary struct {
	PartCount        int     `json:"part_count"`        // Individual pieces to cut
	SquareCuts       int     `json:"square_cuts"`       // Plain 90-degree cuts
	BevelCuts        int     `json:"bevel_cuts"`        // Mitre-setup cuts
	EstimatedMinutes float64 `json:"estimated_minutes"` // Rough saw time
}

// Per-cut time assumptions in minutes. Bevel cuts include the mitre
// adjustment on the saw.
const (
	squareCutMinutes = 0.5
	bevelCutMinutes  = 1.5
)

// CalculateCutWork estimates the saw workload for a part catalog. Each
// piece takes two end cuts; a beveled corner turns its end cut into a
// bevel cut. Shared-cut chains reduce the real count, so this is an upper
// bound for quoting.
func CalculateCutWork(parts []Part) CutWorkSummary {
	var summary CutWorkSummary
	for _, p := range parts {
		bevelEnds := 0
		if IsBevel(p.Angles.TopLeft) || IsBevel(p.Angles.BottomLeft) {
			bevelEnds++
		}
		if IsBevel(p.Angles.TopRight) || IsBevel(p.Angles.BottomRight) {
			bevelEnds++
		}
		summary.PartCount += p.Quantity
		summary.BevelCuts += bevelEnds * p.Quantity
		summary.SquareCuts += (2 - bevelEnds) * p.Quantity
	}
	summary.EstimatedMinutes = float64(summary.SquareCuts)*squareCutMinutes +
		float64(summary.BevelCuts)*bevelCutMinutes
	return summary
}
