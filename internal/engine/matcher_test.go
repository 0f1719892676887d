package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bevelPart(label string, angles model.AngleSet) model.Part {
	p := model.NewPart(label, 2000, 20, 1, angles)
	return p
}

func TestCanShareCut(t *testing.T) {
	m := NewMatcher(5)

	assert.True(t, m.CanShareCut(45, 45))
	assert.True(t, m.CanShareCut(32, 35))
	assert.False(t, m.CanShareCut(30, 40), "outside tolerance")
	assert.False(t, m.CanShareCut(0, 45), "square cut cannot share")
	assert.False(t, m.CanShareCut(45, 0))
	assert.False(t, m.CanShareCut(0, 0))
}

func TestFindMatches_ExactAngle(t *testing.T) {
	m := NewMatcher(5)
	p1 := bevelPart("A", model.AngleSet{TopLeft: 45})
	p2 := bevelPart("B", model.AngleSet{TopLeft: 45})

	matches := m.FindMatches(p1, p2)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.Equal(t, p1.ID, match.Part1ID)
	assert.Equal(t, p2.ID, match.Part2ID)
	assert.Equal(t, 45.0, match.Angle)
	assert.True(t, match.Exact)
	// One shared 45-degree kerf through 20 mm stock saves 20/sin(45).
	assert.InDelta(t, 20/math.Sin(45*math.Pi/180), match.Savings, 0.01)
	assert.InDelta(t, match.Savings*1.2, match.Score, 0.01)
}

func TestFindMatches_WithinTolerance(t *testing.T) {
	m := NewMatcher(5)
	p1 := bevelPart("C", model.AngleSet{TopLeft: 32})
	p2 := bevelPart("D", model.AngleSet{TopLeft: 35})

	matches := m.FindMatches(p1, p2)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.Equal(t, 33.5, match.Angle, "averaged angle")
	assert.Equal(t, 3.0, match.AngleDiff)
	assert.False(t, match.Exact)

	savings := 20 / math.Sin(33.5*math.Pi/180)
	assert.InDelta(t, savings, match.Savings, 0.01)
	assert.InDelta(t, math.Max(savings-6, 0.5*savings), match.Score, 0.01)
}

func TestFindMatches_NoBevels(t *testing.T) {
	m := NewMatcher(5)
	square := bevelPart("S", model.AngleSet{})
	beveled := bevelPart("B", model.AngleSet{TopLeft: 45})

	assert.Empty(t, m.FindMatches(square, beveled))
	assert.Empty(t, m.FindMatches(beveled, square))
	assert.Empty(t, m.FindMatches(square, square))
}

func TestFindMatches_OutsideTolerance(t *testing.T) {
	m := NewMatcher(5)
	p1 := bevelPart("A", model.AngleSet{TopLeft: 30})
	p2 := bevelPart("B", model.AngleSet{TopLeft: 40})

	assert.Empty(t, m.FindMatches(p1, p2))
}

func TestFindMatches_Symmetric(t *testing.T) {
	m := NewMatcher(5)
	p1 := bevelPart("A", model.AngleSet{TopLeft: 33, TopRight: 33})
	p2 := bevelPart("B", model.AngleSet{TopRight: 33, BottomLeft: 33})

	forward := m.FindMatches(p1, p2)
	backward := m.FindMatches(p2, p1)
	require.Equal(t, len(forward), len(backward))

	// The reversed query is the mirrored view of the same match set.
	type joint struct {
		id1, id2     string
		pos1, pos2   model.AnglePosition
		angle, score float64
	}
	seen := make(map[joint]int)
	for _, match := range forward {
		seen[joint{match.Part1ID, match.Part2ID, match.Part1Position, match.Part2Position, match.Angle, match.Score}]++
	}
	for _, match := range backward {
		seen[joint{match.Part2ID, match.Part1ID, match.Part2Position, match.Part1Position, match.Angle, match.Score}]--
	}
	for j, n := range seen {
		assert.Zero(t, n, "unbalanced joint %+v", j)
	}
}

func TestFindMatches_SortedByScore(t *testing.T) {
	m := NewMatcher(5)
	p1 := bevelPart("A", model.AngleSet{TopLeft: 45, TopRight: 43})
	p2 := bevelPart("B", model.AngleSet{TopLeft: 45, BottomRight: 44})

	matches := m.FindMatches(p1, p2)
	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	// The exact 45/45 pair outranks every tolerance pair.
	assert.True(t, matches[0].Exact)
	assert.Equal(t, 45.0, matches[0].Angle)
}

func TestFindMatches_CacheReadThrough(t *testing.T) {
	m := NewMatcher(5)
	p1 := bevelPart("A", model.AngleSet{TopLeft: 45})
	p2 := bevelPart("B", model.AngleSet{TopLeft: 44})

	first := m.FindMatches(p1, p2)
	second := m.FindMatches(p1, p2)
	assert.Equal(t, first, second, "cached result must match direct computation")

	direct := NewMatcher(5).FindMatches(p1, p2)
	assert.Equal(t, direct, second)
}

func TestSharedCutSavings_CapsShallowAngles(t *testing.T) {
	// At 10 degrees the projection would be ~115 mm for 20 mm stock; the
	// cap keeps it at three thicknesses.
	assert.InDelta(t, 60, sharedCutSavings(10, 20), 0.001)
	assert.InDelta(t, 20/math.Sin(45*math.Pi/180), sharedCutSavings(45, 20), 0.001)
	assert.Zero(t, sharedCutSavings(0, 20))
}

func TestFindBestMatchForPart_SkipsSelf(t *testing.T) {
	m := NewMatcher(5)
	p := bevelPart("A", model.AngleSet{TopLeft: 45})
	other := bevelPart("B", model.AngleSet{TopLeft: 45})

	_, found := m.FindBestMatchForPart(p, []model.Part{p})
	assert.False(t, found, "self-pairs are skipped")

	best, found := m.FindBestMatchForPart(p, []model.Part{p, other})
	require.True(t, found)
	assert.Equal(t, other.ID, best.Part2ID)
}

func TestFindBestMatchCombination_Disjoint(t *testing.T) {
	m := NewMatcher(5)
	parts := []model.Part{
		bevelPart("A", model.AngleSet{TopLeft: 45}),
		bevelPart("B", model.AngleSet{TopLeft: 45}),
		bevelPart("C", model.AngleSet{TopLeft: 45}),
	}

	combination := m.FindBestMatchCombination(parts)
	require.Len(t, combination, 1, "three parts allow only one disjoint pair")

	used := make(map[string]bool)
	for _, match := range combination {
		assert.False(t, used[match.Part1ID])
		assert.False(t, used[match.Part2ID])
		used[match.Part1ID] = true
		used[match.Part2ID] = true
	}
}

func TestEvaluateSharedCuttingPotential(t *testing.T) {
	m := NewMatcher(5)
	parts := []model.Part{
		bevelPart("A", model.AngleSet{TopLeft: 45}),
		bevelPart("B", model.AngleSet{TopLeft: 45}),
		bevelPart("C", model.AngleSet{TopLeft: 30}),
		bevelPart("D", model.AngleSet{TopLeft: 31}),
	}

	potential := m.EvaluateSharedCuttingPotential(parts)
	assert.Equal(t, 2, potential.MatchCount)
	assert.Greater(t, potential.TotalPotentialSavings, 0.0)
	assert.InDelta(t, potential.TotalPotentialSavings/2, potential.AverageSavingsPerMatch, 0.01)
}

func TestEvaluateSharedCuttingPotential_NoMatches(t *testing.T) {
	m := NewMatcher(5)
	parts := []model.Part{
		bevelPart("A", model.AngleSet{}),
		bevelPart("B", model.AngleSet{}),
	}
	assert.Zero(t, m.EvaluateSharedCuttingPotential(parts))
}

func TestEvaluateSharedCuttingPotential_SamplesLargeInputs(t *testing.T) {
	m := NewMatcher(5)

	var parts []model.Part
	for i := 0; i < 1000; i++ {
		parts = append(parts, bevelPart(fmt.Sprintf("P%d", i), model.AngleSet{TopLeft: 45}))
	}

	potential := m.EvaluateSharedCuttingPotential(parts)
	// 1000 identical 45-degree parts pair off near-completely; the scaled
	// estimate must land in the right ballpark even though only a sample
	// was evaluated.
	assert.Greater(t, potential.MatchCount, 300)
	assert.LessOrEqual(t, potential.MatchCount, 1000)
	assert.InDelta(t, 20/math.Sin(45*math.Pi/180), potential.AverageSavingsPerMatch, 0.01)
}

func TestStratifiedSample_CoversAngleBands(t *testing.T) {
	var parts []model.Part
	for i := 0; i < 600; i++ {
		angle := 10 + float64(i%70)
		parts = append(parts, bevelPart(fmt.Sprintf("P%d", i), model.AngleSet{TopLeft: angle}))
	}

	sample := stratifiedSample(parts, 500)
	require.Len(t, sample, 500)

	low, high := 0, 0
	for _, p := range sample {
		if p.Angles.TopLeft < 45 {
			low++
		} else {
			high++
		}
	}
	assert.Greater(t, low, 0, "low angle band represented")
	assert.Greater(t, high, 0, "high angle band represented")
}
