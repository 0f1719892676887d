package model

import "time"

// SharedCutInfo marks a placed part as one side of a shared cut, pointing
// to the paired part instance on the same stock bar.
type SharedCutInfo struct {
	PairedWithPartID     string  `json:"pairedWithPartId"`
	PairedWithInstanceID int     `json:"pairedWithInstanceId"`
	SharedAngle          float64 `json:"sharedAngle"`
	Savings              float64 `json:"savings"` // mm
}

// PlacedPart is the assignment of a part instance to a position on a
// material instance. Position is measured in mm from the bar's zero end.
type PlacedPart struct {
	PartID             string         `json:"partId"`
	PartInstanceID     int            `json:"partInstanceId"`
	MaterialID         string         `json:"materialId"`
	MaterialInstanceID string         `json:"materialInstanceId"`
	Position           float64        `json:"position"`
	Length             int            `json:"length"`
	Orientation        string         `json:"orientation"` // always "normal"; kerf rotation is out of scope
	SharedCuttingInfo  *SharedCutInfo `json:"sharedCuttingInfo,omitempty"`
}

// Ref returns the part-instance identity of the placement.
func (p PlacedPart) Ref() PartRef {
	return PartRef{PartID: p.PartID, Instance: p.PartInstanceID}
}

// End returns the position just past the part, in mm.
func (p PlacedPart) End() float64 {
	return p.Position + float64(p.Length)
}

// UnplacedPart records a part instance that could not be placed, with a
// human-readable reason.
type UnplacedPart struct {
	PartID   string `json:"partId"`
	Instance int    `json:"instanceId"`
	Reason   string `json:"reason"`
}

// Ref returns the part-instance identity.
func (u UnplacedPart) Ref() PartRef {
	return PartRef{PartID: u.PartID, Instance: u.Instance}
}

// UsedMaterial summarizes one stock bar that received at least one part.
type UsedMaterial struct {
	Material    Material `json:"material"`
	InstanceID  string   `json:"instanceId"`
	Utilization float64  `json:"utilization"` // used fraction in [0, 1]
}

// PlacementReport aggregates run statistics.
type PlacementReport struct {
	TotalParts          int           `json:"totalParts"`
	PlacedParts         int           `json:"placedParts"`
	UnplacedParts       int           `json:"unplacedParts"`
	MaterialsUsed       int           `json:"materialsUsed"`
	MaterialUtilization float64       `json:"materialUtilization"` // over used bars
	SharedCutPairs      int           `json:"sharedCutPairs"`      // counted once per pair
	TotalSavings        float64       `json:"totalSavings"`        // mm
	ProcessingTime      time.Duration `json:"processingTime"`
	Strategy            string        `json:"strategy"`
}

// PlacementResult is the final artifact of an optimization run.
// Success is true exactly when UnplacedParts is empty.
type PlacementResult struct {
	PlacedParts   []PlacedPart    `json:"placedParts"`
	UnplacedParts []UnplacedPart  `json:"unplacedParts"`
	UsedMaterials []UsedMaterial  `json:"usedMaterials"`
	TotalSavings  float64         `json:"totalSavings"`
	Success       bool            `json:"success"`
	Warnings      []string        `json:"warnings"`
	Report        PlacementReport `json:"report"`
}

// PlacedOn returns the placements on the given material instance, in the
// order they were recorded.
func (r *PlacementResult) PlacedOn(materialInstanceID string) []PlacedPart {
	var placed []PlacedPart
	for _, p := range r.PlacedParts {
		if p.MaterialInstanceID == materialInstanceID {
			placed = append(placed, p)
		}
	}
	return placed
}
