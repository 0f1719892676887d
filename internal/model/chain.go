package model

// ChainStructure classifies a shared-cut chain by its part composition.
type ChainStructure string

const (
	StructureLinear  ChainStructure = "linear"  // one part id, up to 10 members
	StructureBatch   ChainStructure = "batch"   // one part id, more than 10 members
	StructureMixed   ChainStructure = "mixed"   // exactly two distinct part ids
	StructureComplex ChainStructure = "complex" // three or more distinct part ids
)

// ChainPart is one member of a shared-cut chain. It references a specific
// part instance by value identity rather than by pointer so chains stay
// trivially serializable.
type ChainPart struct {
	PartRef
	Length    int `json:"length"`
	Thickness int `json:"thickness"`
}

// ChainConnection records the shared-cut joint between two consecutive
// chain members: the corner on the earlier part, the corner on the later
// part, the shared angle, and the material saved by sharing the kerf.
type ChainConnection struct {
	Part1Position AnglePosition `json:"part1Position"`
	Part2Position AnglePosition `json:"part2Position"`
	Angle         float64       `json:"angle"`
	Savings       float64       `json:"savings"` // mm
}

// SharedCutChain is an ordered sequence of part instances connected by
// shared-cut joints. len(Connections) == len(Parts) - 1.
type SharedCutChain struct {
	Parts       []ChainPart       `json:"parts"`
	Connections []ChainConnection `json:"connections"`
	Structure   ChainStructure    `json:"structure"`
}

// Size returns the number of chain members.
func (c *SharedCutChain) Size() int {
	return len(c.Parts)
}

// TotalSavings returns the sum of the joint savings, in mm.
func (c *SharedCutChain) TotalSavings() float64 {
	var total float64
	for _, conn := range c.Connections {
		total += conn.Savings
	}
	return total
}

// TotalLength returns the length the chain occupies on a stock bar: the sum
// of member lengths minus the sum of joint savings.
func (c *SharedCutChain) TotalLength() float64 {
	var total float64
	for _, p := range c.Parts {
		total += float64(p.Length)
	}
	return total - c.TotalSavings()
}

// Contains reports whether the chain includes the given part instance.
func (c *SharedCutChain) Contains(ref PartRef) bool {
	for _, p := range c.Parts {
		if p.PartRef == ref {
			return true
		}
	}
	return false
}

// ClassifyStructure determines the chain structure from its members.
func ClassifyStructure(parts []ChainPart) ChainStructure {
	ids := make(map[string]bool)
	for _, p := range parts {
		ids[p.PartID] = true
	}
	switch {
	case len(ids) >= 3:
		return StructureComplex
	case len(ids) == 2:
		return StructureMixed
	case len(parts) > 10:
		return StructureBatch
	default:
		return StructureLinear
	}
}
