package model

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// AnglePosition identifies one of the four corners of a profile part.
type AnglePosition int

const (
	TopLeft AnglePosition = iota
	TopRight
	BottomLeft
	BottomRight
)

// AnglePositions lists all four corners in canonical order.
var AnglePositions = [4]AnglePosition{TopLeft, TopRight, BottomLeft, BottomRight}

func (p AnglePosition) String() string {
	switch p {
	case TopLeft:
		return "topLeft"
	case TopRight:
		return "topRight"
	case BottomLeft:
		return "bottomLeft"
	case BottomRight:
		return "bottomRight"
	default:
		return "unknown"
	}
}

// Side returns "left" or "right" for the corner.
func (p AnglePosition) Side() string {
	if p == TopLeft || p == BottomLeft {
		return "left"
	}
	return "right"
}

// IsBevel reports whether an angle value is a bevel cut. Zero means a square
// cut; 90 is rejected by validation and never reaches the optimizer.
func IsBevel(angle float64) bool {
	return angle > 0 && angle < 90
}

// AngleSet holds the bevel angles at the four corners of a part, in degrees.
// On each side at most one of top/bottom is non-zero.
type AngleSet struct {
	TopLeft     float64 `json:"topLeft"`
	TopRight    float64 `json:"topRight"`
	BottomLeft  float64 `json:"bottomLeft"`
	BottomRight float64 `json:"bottomRight"`
}

// At returns the angle at the given corner.
func (a AngleSet) At(pos AnglePosition) float64 {
	switch pos {
	case TopLeft:
		return a.TopLeft
	case TopRight:
		return a.TopRight
	case BottomLeft:
		return a.BottomLeft
	default:
		return a.BottomRight
	}
}

// BevelPositions returns the corners carrying a bevel angle.
func (a AngleSet) BevelPositions() []AnglePosition {
	var positions []AnglePosition
	for _, pos := range AnglePositions {
		if IsBevel(a.At(pos)) {
			positions = append(positions, pos)
		}
	}
	return positions
}

// HasBevel reports whether any corner carries a bevel angle.
func (a AngleSet) HasBevel() bool {
	return len(a.BevelPositions()) > 0
}

// BevelCount returns the number of beveled corners.
func (a AngleSet) BevelCount() int {
	return len(a.BevelPositions())
}

// Part represents a required profile piece to be cut.
type Part struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Length    int      `json:"length"`    // mm
	Thickness int      `json:"thickness"` // mm
	Quantity  int      `json:"quantity"`
	Angles    AngleSet `json:"angles"`
}

func NewPart(label string, length, thickness, qty int, angles AngleSet) Part {
	return Part{
		ID:        uuid.New().String()[:8],
		Label:     label,
		Length:    length,
		Thickness: thickness,
		Quantity:  qty,
		Angles:    angles,
	}
}

// Material represents an available stock profile to cut from.
// A quantity of 0 means unlimited supply.
type Material struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Length   int    `json:"length"` // mm
	Quantity int    `json:"quantity"`
}

func NewMaterial(label string, length, qty int) Material {
	return Material{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Length:   length,
		Quantity: qty,
	}
}

// Unlimited reports whether the material has unlimited supply.
func (m Material) Unlimited() bool {
	return m.Quantity == 0
}

// StandardLengths are the stock lengths dynamic instance creation falls back
// to when no unlimited catalog entry is given, in mm.
var StandardLengths = []int{6000, 9000, 10000, 12000, 15000}

// PartRef is the canonical identity of a single part instance: the spec id
// plus a zero-based instance index within the spec.
type PartRef struct {
	PartID   string `json:"partId"`
	Instance int    `json:"instanceId"`
}

// Key returns the map/set key form "{partId}_{instanceId}".
func (r PartRef) Key() string {
	return r.PartID + "_" + strconv.Itoa(r.Instance)
}

// MaterialInstance is one concrete stock piece cut from a material spec.
// UsedLength is a running cursor from the zero end, 0 <= UsedLength <= Length.
type MaterialInstance struct {
	ID         string   `json:"id"`         // "{specId}_{index}"
	OriginalID string   `json:"originalId"` // spec id, for dynamic lookups
	Material   Material `json:"material"`
	Index      int      `json:"index"`
	UsedLength float64  `json:"usedLength"`
}

func NewMaterialInstance(m Material, index int) *MaterialInstance {
	return &MaterialInstance{
		ID:         fmt.Sprintf("%s_%d", m.ID, index),
		OriginalID: m.ID,
		Material:   m,
		Index:      index,
	}
}

// RemainingLength returns the unused tail of the stock piece.
func (mi *MaterialInstance) RemainingLength() float64 {
	return float64(mi.Material.Length) - mi.UsedLength
}

// Utilization returns the used fraction in [0, 1].
func (mi *MaterialInstance) Utilization() float64 {
	if mi.Material.Length == 0 {
		return 0
	}
	return mi.UsedLength / float64(mi.Material.Length)
}

// AngleMatch is a candidate shared-cut joint between two distinct parts.
// Immutable once produced.
type AngleMatch struct {
	Part1ID       string        `json:"part1Id"`
	Part2ID       string        `json:"part2Id"`
	Part1Position AnglePosition `json:"part1Position"`
	Part2Position AnglePosition `json:"part2Position"`
	Angle         float64       `json:"angle"`     // exact value, or the average within tolerance
	AngleDiff     float64       `json:"angleDiff"` // |a1 - a2|
	Savings       float64       `json:"savings"`   // mm saved by sharing the kerf
	Score         float64       `json:"score"`
	Exact         bool          `json:"isExactMatch"`
}

// Constraints holds the cutting losses applied during placement, in mm.
type Constraints struct {
	CuttingLoss    float64 `json:"cutting_loss"`     // kerf per separate cut
	FrontEndLoss   float64 `json:"front_end_loss"`   // unusable stub at the front of a bar
	BackEndLoss    float64 `json:"back_end_loss"`    // reserved tail, used in chain feasibility only
	MinPartSpacing float64 `json:"min_part_spacing"` // extra spacing between parts
}

// Settings holds the optimizer configuration.
type Settings struct {
	AngleTolerance        float64     `json:"angle_tolerance"`  // degrees
	MaxChainSize          int         `json:"max_chain_size"`   // parts per chain
	MaxChainLength        float64     `json:"max_chain_length"` // mm
	PrioritizeMixedChains bool        `json:"prioritize_mixed_chains"`
	NoMaterialPromotion   bool        `json:"no_material_promotion"` // disable the finite->unlimited last resort
	Constraints           Constraints `json:"constraints"`
}

func DefaultSettings() Settings {
	return Settings{
		AngleTolerance:        5.0,
		MaxChainSize:          50,
		MaxChainLength:        14950,
		PrioritizeMixedChains: true,
		Constraints: Constraints{
			CuttingLoss:    5,
			FrontEndLoss:   20,
			BackEndLoss:    15,
			MinPartSpacing: 0,
		},
	}
}

// Project ties everything together for save/load.
type Project struct {
	Name      string           `json:"name"`
	Parts     []Part           `json:"parts"`
	Materials []Material       `json:"materials"`
	Settings  Settings         `json:"settings"`
	Result    *PlacementResult `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name:      "Untitled",
		Parts:     []Part{},
		Materials: []Material{},
		Settings:  DefaultSettings(),
	}
}
