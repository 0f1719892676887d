package model

import "math"

// PurchaseEstimate holds the results of a stock purchasing calculation.
type PurchaseEstimate struct {
	TotalPartLength float64 `json:"total_part_length"` // Total length of all parts incl. kerf (mm)
	TotalLinearM    float64 `json:"total_linear_m"`    // Total part length in meters
	BarLength       float64 `json:"bar_length"`        // Length of one stock bar (mm)
	BarsNeededExact float64 `json:"bars_needed_exact"` // Exact fractional number of bars
	BarsNeededMin   int     `json:"bars_needed_min"`   // Minimum bars (ceiling of exact)
	BarsWithWaste   int     `json:"bars_with_waste"`   // Recommended bars including waste factor
	WastePercent    float64 `json:"waste_percent"`     // Waste factor applied (e.g., 15 for 15%)
	EstimatedCost   float64 `json:"estimated_cost"`    // Total cost if pricing available
	PricePerBar     float64 `json:"price_per_bar"`     // Price used for estimation
	CuttingLoss     float64 `json:"cutting_loss"`      // Kerf width used in calculation
}

// CalculatePurchaseEstimate computes how many stock bars to buy for a
// given cut list, before running the optimizer. It accounts for kerf per
// piece and an additional waste percentage factor; shared-cut savings are
// deliberately ignored so the estimate stays conservative.
func CalculatePurchaseEstimate(parts []Part, barLength, cuttingLoss, wastePercent, pricePerBar float64) PurchaseEstimate {
	var totalLength float64
	for _, p := range parts {
		totalLength += (float64(p.Length) + cuttingLoss) * float64(p.Quantity)
	}

	estimate := PurchaseEstimate{
		TotalPartLength: totalLength,
		TotalLinearM:    totalLength / 1000.0,
		BarLength:       barLength,
		WastePercent:    wastePercent,
		PricePerBar:     pricePerBar,
		CuttingLoss:     cuttingLoss,
	}
	if barLength <= 0 {
		return estimate
	}

	estimate.BarsNeededExact = totalLength / barLength
	estimate.BarsNeededMin = int(math.Ceil(estimate.BarsNeededExact))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	estimate.BarsWithWaste = int(math.Ceil(estimate.BarsNeededExact * wasteFactor))
	if estimate.BarsWithWaste < estimate.BarsNeededMin {
		estimate.BarsWithWaste = estimate.BarsNeededMin
	}

	if pricePerBar > 0 {
		estimate.EstimatedCost = float64(estimate.BarsWithWaste) * pricePerBar
	}
	return estimate
}
