package engine

import (
	"testing"

	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimize_TwoIdenticalBevelPartsCombine(t *testing.T) {
	// Two 45-degree parts share one kerf on a single bar.
	parts := []model.Part{model.NewPart("A", 2000, 20, 2, model.AngleSet{TopLeft: 45})}
	materials := []model.Material{model.NewMaterial("M", 6000, 1)}

	result := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.True(t, result.Success)
	assert.Len(t, result.PlacedParts, 2)
	assert.Empty(t, result.UnplacedParts)
	assert.Equal(t, 1, result.Report.SharedCutPairs)

	// thickness/sin(45) is ~28.28 mm, within the [5, 40] clamp.
	assert.InDelta(t, 28.28, result.TotalSavings, 0.5)
	assert.GreaterOrEqual(t, result.TotalSavings, 5.0)
	assert.LessOrEqual(t, result.TotalSavings, 40.0)
}

func TestOptimize_ToleranceMatch(t *testing.T) {
	// 32 and 35 degrees are within the 5-degree tolerance and join on an
	// averaged 33.5-degree cut.
	parts := []model.Part{
		model.NewPart("C", 1500, 20, 2, model.AngleSet{TopLeft: 32}),
		model.NewPart("D", 1500, 20, 2, model.AngleSet{TopLeft: 35}),
	}
	materials := []model.Material{model.NewMaterial("M", 6000, 3)}

	result := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.True(t, result.Success)
	assert.Len(t, result.PlacedParts, 4)

	foundAveraged := false
	for _, p := range result.PlacedParts {
		if p.SharedCuttingInfo != nil && p.SharedCuttingInfo.SharedAngle == 33.5 {
			foundAveraged = true
		}
	}
	assert.True(t, foundAveraged, "expected a joint at the averaged 33.5 degrees")

	matches := NewMatcher(5).FindMatches(parts[0], parts[1])
	require.NotEmpty(t, matches)
	assert.False(t, matches[0].Exact)
	assert.Equal(t, 33.5, matches[0].Angle)
}

func TestOptimize_CrossPositionMatch(t *testing.T) {
	partA := model.NewPart("A", 2222, 20, 2, model.AngleSet{TopLeft: 33, TopRight: 33})
	partB := model.NewPart("B", 2222, 20, 2, model.AngleSet{TopRight: 33, BottomLeft: 33})
	materials := []model.Material{model.NewMaterial("M", 10000, 1)}

	result := New(model.DefaultSettings()).Optimize([]model.Part{partA, partB}, materials)

	assert.True(t, result.Success)
	assert.Len(t, result.PlacedParts, 4)
	assert.Greater(t, result.Report.SharedCutPairs, 0, "chains must be produced")

	// The matcher must offer a cross-position joint: TL-TR or TR-BL.
	found := false
	for _, m := range NewMatcher(5).FindMatches(partA, partB) {
		if (m.Part1Position == model.TopLeft && m.Part2Position == model.TopRight) ||
			(m.Part1Position == model.TopRight && m.Part2Position == model.BottomLeft) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOptimize_UnlimitedSupplyFinishesEveryPart(t *testing.T) {
	parts := []model.Part{model.NewPart("A", 5000, 20, 10, model.AngleSet{})}
	materials := []model.Material{model.NewMaterial("M", 6000, 0)}

	result := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.True(t, result.Success)
	assert.Len(t, result.PlacedParts, 10)
	assert.Empty(t, result.UnplacedParts)
	assert.GreaterOrEqual(t, len(result.UsedMaterials), 10)
}

func TestOptimize_FiniteInsufficientSupply(t *testing.T) {
	parts := []model.Part{model.NewPart("A", 5000, 20, 10, model.AngleSet{})}
	materials := []model.Material{model.NewMaterial("M", 6000, 2)}

	result := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.False(t, result.Success)
	assert.LessOrEqual(t, len(result.PlacedParts), 2)
	assert.GreaterOrEqual(t, len(result.UnplacedParts), 8)
	assert.NotEmpty(t, result.Warnings)
}

func TestOptimize_OversizeRejectedWithReason(t *testing.T) {
	parts := []model.Part{model.NewPart("A", 20000, 20, 1, model.AngleSet{})}
	materials := []model.Material{model.NewMaterial("M", 6000, 1)}

	result := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.Empty(t, result.PlacedParts)
	require.Len(t, result.UnplacedParts, 1)
	assert.Contains(t, result.UnplacedParts[0].Reason, "exceeds max material length")
}

func TestOptimize_EmptyInputs(t *testing.T) {
	opt := New(model.DefaultSettings())

	result := opt.Optimize(nil, []model.Material{model.NewMaterial("M", 6000, 1)})
	assert.True(t, result.Success)
	assert.Empty(t, result.PlacedParts)
	assert.NotEmpty(t, result.Warnings)

	result = opt.Optimize([]model.Part{model.NewPart("A", 100, 10, 1, model.AngleSet{})}, nil)
	assert.True(t, result.Success)
	assert.Empty(t, result.PlacedParts)
	assert.NotEmpty(t, result.Warnings)
}

func TestOptimize_SquarePartsSkipChains(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 1200, 20, 4, model.AngleSet{}),
		model.NewPart("B", 800, 20, 4, model.AngleSet{}),
	}
	materials := []model.Material{model.NewMaterial("M", 6000, 0)}

	result := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.True(t, result.Success)
	assert.Len(t, result.PlacedParts, 8)
	assert.Zero(t, result.Report.SharedCutPairs)
	for _, p := range result.PlacedParts {
		assert.Nil(t, p.SharedCuttingInfo)
	}
}

func TestOptimize_Idempotent(t *testing.T) {
	parts := []model.Part{
		model.NewPart("C", 1500, 20, 2, model.AngleSet{TopLeft: 32}),
		model.NewPart("D", 1500, 20, 2, model.AngleSet{TopLeft: 35}),
	}
	materials := []model.Material{model.NewMaterial("M", 6000, 3)}

	first := New(model.DefaultSettings()).Optimize(parts, materials)
	second := New(model.DefaultSettings()).Optimize(parts, materials)

	assert.Equal(t, len(first.PlacedParts), len(second.PlacedParts))
	assert.Equal(t, first.TotalSavings, second.TotalSavings)

	unplacedSet := func(r model.PlacementResult) map[string]bool {
		set := make(map[string]bool)
		for _, u := range r.UnplacedParts {
			set[u.Ref().Key()] = true
		}
		return set
	}
	assert.Equal(t, unplacedSet(first), unplacedSet(second))
}

func TestOptimize_ProgressMonotonic(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 1500, 20, 10, model.AngleSet{TopLeft: 45}),
		model.NewPart("B", 1000, 20, 10, model.AngleSet{}),
	}
	materials := []model.Material{model.NewMaterial("M", 6000, 0)}

	opt := New(model.DefaultSettings())
	var percents []float64
	opt.Progress = func(stage string, pct float64, details string) {
		percents = append(percents, pct)
	}

	result := opt.Optimize(parts, materials)
	require.True(t, result.Success)

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestCachedOptimizer_ReturnsSameResult(t *testing.T) {
	parts := []model.Part{model.NewPart("A", 2000, 20, 2, model.AngleSet{TopLeft: 45})}
	materials := []model.Material{model.NewMaterial("M", 6000, 1)}

	cached := NewCachedOptimizer(model.DefaultSettings(), 0)

	first := cached.Optimize(parts, materials)
	second := cached.Optimize(parts, materials)

	assert.Equal(t, first.PlacedParts, second.PlacedParts)
	assert.Equal(t, first.TotalSavings, second.TotalSavings)
	assert.Equal(t, first.Report.ProcessingTime, second.Report.ProcessingTime,
		"second call must come from the cache")
}
