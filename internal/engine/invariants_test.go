package engine

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/piwi3910/ProfileCut/internal/model"
	"pgregory.net/rapid"
)

// drawParts generates a small random part catalog. Angles honor the input
// validator's guarantees: values in [0, 90), at most one bevel per side.
func drawParts(t *rapid.T) []model.Part {
	n := rapid.IntRange(1, 6).Draw(t, "numParts")
	parts := make([]model.Part, 0, n)
	for i := 0; i < n; i++ {
		var angles model.AngleSet
		if rapid.Bool().Draw(t, fmt.Sprintf("leftBevel%d", i)) {
			angle := rapid.Float64Range(10, 80).Draw(t, fmt.Sprintf("leftAngle%d", i))
			if rapid.Bool().Draw(t, fmt.Sprintf("leftTop%d", i)) {
				angles.TopLeft = angle
			} else {
				angles.BottomLeft = angle
			}
		}
		if rapid.Bool().Draw(t, fmt.Sprintf("rightBevel%d", i)) {
			angle := rapid.Float64Range(10, 80).Draw(t, fmt.Sprintf("rightAngle%d", i))
			if rapid.Bool().Draw(t, fmt.Sprintf("rightTop%d", i)) {
				angles.TopRight = angle
			} else {
				angles.BottomRight = angle
			}
		}
		parts = append(parts, model.Part{
			ID:        fmt.Sprintf("part-%d", i),
			Label:     fmt.Sprintf("P%d", i),
			Length:    rapid.IntRange(200, 3000).Draw(t, fmt.Sprintf("length%d", i)),
			Thickness: rapid.IntRange(5, 40).Draw(t, fmt.Sprintf("thickness%d", i)),
			Quantity:  rapid.IntRange(1, 6).Draw(t, fmt.Sprintf("quantity%d", i)),
			Angles:    angles,
		})
	}
	return parts
}

func drawMaterials(t *rapid.T) []model.Material {
	n := rapid.IntRange(1, 3).Draw(t, "numMaterials")
	materials := make([]model.Material, 0, n)
	for i := 0; i < n; i++ {
		materials = append(materials, model.Material{
			ID:       fmt.Sprintf("mat-%d", i),
			Label:    fmt.Sprintf("M%d", i),
			Length:   rapid.IntRange(3100, 8000).Draw(t, fmt.Sprintf("matLength%d", i)),
			Quantity: rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("matQuantity%d", i)),
		})
	}
	return materials
}

// TestOptimize_Invariants checks the universal placement invariants on
// randomized inputs: instance accounting, bar bounds, interval packing,
// and the success flag.
func TestOptimize_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := drawParts(t)
		materials := drawMaterials(t)

		result := New(model.DefaultSettings()).Optimize(parts, materials)

		// Every expanded instance appears exactly once across placed and
		// unplaced.
		expanded := 0
		quantities := make(map[string]int)
		for _, p := range parts {
			expanded += p.Quantity
			quantities[p.ID] = p.Quantity
		}

		seen := make(map[string]bool)
		record := func(ref model.PartRef) {
			key := ref.Key()
			if seen[key] {
				t.Fatalf("instance %s appears twice", key)
			}
			if ref.Instance < 0 || ref.Instance >= quantities[ref.PartID] {
				t.Fatalf("instance %s out of range", key)
			}
			seen[key] = true
		}
		for _, p := range result.PlacedParts {
			record(p.Ref())
		}
		for _, u := range result.UnplacedParts {
			record(u.Ref())
		}
		if len(seen) != expanded {
			t.Fatalf("placed+unplaced covers %d of %d instances", len(seen), expanded)
		}

		// Success flag matches the unplaced list.
		if result.Success != (len(result.UnplacedParts) == 0) {
			t.Fatalf("success=%v with %d unplaced", result.Success, len(result.UnplacedParts))
		}

		// Bars never overrun, intervals never collide, shared neighbors
		// sit exactly savings mm closer.
		barLength := make(map[string]float64)
		for _, u := range result.UsedMaterials {
			barLength[u.InstanceID] = float64(u.Material.Length)
			if u.Utilization < 0 || u.Utilization > 1+1e-9 {
				t.Fatalf("utilization %f out of range on %s", u.Utilization, u.InstanceID)
			}
		}

		byBar := make(map[string][]model.PlacedPart)
		for _, p := range result.PlacedParts {
			byBar[p.MaterialInstanceID] = append(byBar[p.MaterialInstanceID], p)
		}
		for barID, placed := range byBar {
			length, ok := barLength[barID]
			if !ok {
				t.Fatalf("placement on unreported bar %s", barID)
			}
			sort.Slice(placed, func(i, j int) bool {
				return placed[i].Position < placed[j].Position
			})
			for i, p := range placed {
				if p.Position < 0 || p.End() > length+1e-6 {
					t.Fatalf("part %s at [%f, %f) overruns bar of %f", p.Ref().Key(), p.Position, p.End(), length)
				}
				if i == 0 {
					continue
				}
				prev := placed[i-1]
				if p.SharedCuttingInfo != nil && p.SharedCuttingInfo.PairedWithPartID == prev.PartID &&
					p.SharedCuttingInfo.PairedWithInstanceID == prev.PartInstanceID {
					want := prev.End() - p.SharedCuttingInfo.Savings
					if math.Abs(p.Position-want) > 0.01 {
						t.Fatalf("shared neighbor at %f, want %f", p.Position, want)
					}
				} else if p.Position < prev.End()-1e-6 {
					t.Fatalf("parts %s and %s overlap on %s", prev.Ref().Key(), p.Ref().Key(), barID)
				}
			}
		}
	})
}

// TestBuildChains_Invariants checks chain structural invariants on
// randomized catalogs.
func TestBuildChains_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := drawParts(t)
		settings := model.DefaultSettings()
		chains := NewChainBuilder(settings).BuildChains(parts)

		quantities := make(map[string]int)
		for _, p := range parts {
			quantities[p.ID] = p.Quantity
		}

		seen := make(map[string]bool)
		for _, chain := range chains {
			if len(chain.Parts) < 2 {
				t.Fatalf("chain with %d parts", len(chain.Parts))
			}
			if len(chain.Connections) != len(chain.Parts)-1 {
				t.Fatalf("%d connections for %d parts", len(chain.Connections), len(chain.Parts))
			}
			if len(chain.Parts) > settings.MaxChainSize {
				t.Fatalf("chain of %d exceeds size cap", len(chain.Parts))
			}
			if chain.TotalLength() > settings.MaxChainLength+1e-6 {
				t.Fatalf("chain length %f exceeds cap", chain.TotalLength())
			}

			var sum float64
			for _, conn := range chain.Connections {
				sum += conn.Savings
			}
			if math.Abs(sum-chain.TotalSavings()) > 1e-6 {
				t.Fatalf("savings mismatch: %f vs %f", sum, chain.TotalSavings())
			}

			for _, cp := range chain.Parts {
				if cp.Instance < 0 || cp.Instance >= quantities[cp.PartID] {
					t.Fatalf("instance %s out of range", cp.Key())
				}
				if seen[cp.Key()] {
					t.Fatalf("instance %s in two chains", cp.Key())
				}
				seen[cp.Key()] = true
			}
		}
	})
}

// TestFindMatches_SymmetryProperty checks the mirror law on random parts.
func TestFindMatches_SymmetryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parts := drawParts(t)
		if len(parts) < 2 {
			return
		}
		m := NewMatcher(5)
		p1, p2 := parts[0], parts[1]

		forward := m.FindMatches(p1, p2)
		backward := m.FindMatches(p2, p1)
		if len(forward) != len(backward) {
			t.Fatalf("asymmetric match counts: %d vs %d", len(forward), len(backward))
		}
		for _, match := range forward {
			mirrored := false
			for _, back := range backward {
				if back.Part1ID == match.Part2ID && back.Part2ID == match.Part1ID &&
					back.Part1Position == match.Part2Position &&
					back.Part2Position == match.Part1Position &&
					back.Angle == match.Angle && back.Score == match.Score {
					mirrored = true
					break
				}
			}
			if !mirrored {
				t.Fatalf("match %+v has no mirror", match)
			}
		}
	})
}
