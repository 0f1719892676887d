package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/ProfileCut/internal/model"
	"gonum.org/v1/gonum/stat"
)

const (
	// matchCacheLimit bounds the pair cache; on overflow the oldest half
	// is evicted.
	matchCacheLimit = 10000

	// minMatchScore discards matches too weak to be worth chaining.
	minMatchScore = 5.0

	// sampleThreshold is the input size above which potential evaluation
	// runs on a stratified sample instead of the full set.
	sampleThreshold = 500

	// groupingThreshold is the input size above which pair enumeration
	// goes through quantized angle groups instead of all pairs.
	groupingThreshold = 64
)

// Matcher finds shared-cut opportunities between the bevel corners of
// parts. Two corners can share a cut when both carry a bevel angle and the
// angles differ by at most Tolerance degrees.
type Matcher struct {
	Tolerance float64 // degrees
	MinScore  float64 // matches scoring below this are discarded

	cacheKeys []string
	cache     map[string][]model.AngleMatch
}

// NewMatcher returns a matcher with the given angle tolerance and the
// production minimum-score filter.
func NewMatcher(tolerance float64) *Matcher {
	return &Matcher{
		Tolerance: tolerance,
		MinScore:  minMatchScore,
		cache:     make(map[string][]model.AngleMatch),
	}
}

// sharedCutSavings returns the mm of material saved by one shared cut at
// the given bevel angle for the given average thickness. The projection
// thickness/sin(angle) is capped at three thicknesses so near-zero angles
// cannot claim absurd savings.
func sharedCutSavings(angle, avgThickness float64) float64 {
	if angle <= 0 {
		return 0
	}
	s := avgThickness / math.Sin(angle*math.Pi/180)
	if limit := 3 * avgThickness; s > limit {
		s = limit
	}
	return s
}

// CanShareCut reports whether two angles are bevels within tolerance of
// each other.
func (m *Matcher) CanShareCut(a1, a2 float64) bool {
	return model.IsBevel(a1) && model.IsBevel(a2) && math.Abs(a1-a2) <= m.Tolerance
}

// matchAt builds the match for one corner pair, or returns false when the
// corners cannot share a cut or the match scores below MinScore.
func (m *Matcher) matchAt(p1, p2 model.Part, pos1, pos2 model.AnglePosition) (model.AngleMatch, bool) {
	a1 := p1.Angles.At(pos1)
	a2 := p2.Angles.At(pos2)
	if !m.CanShareCut(a1, a2) {
		return model.AngleMatch{}, false
	}

	diff := math.Abs(a1 - a2)
	exact := a1 == a2
	angle := a1
	if !exact {
		angle = (a1 + a2) / 2
	}

	avgThickness := float64(p1.Thickness+p2.Thickness) / 2
	savings := sharedCutSavings(angle, avgThickness)

	score := savings * 1.2
	if !exact {
		score = math.Max(savings-2*diff, 0.5*savings)
	}
	if score < m.MinScore {
		return model.AngleMatch{}, false
	}

	return model.AngleMatch{
		Part1ID:       p1.ID,
		Part2ID:       p2.ID,
		Part1Position: pos1,
		Part2Position: pos2,
		Angle:         angle,
		AngleDiff:     diff,
		Savings:       savings,
		Score:         score,
		Exact:         exact,
	}, true
}

// FindMatches enumerates all shared-cut opportunities between two parts,
// sorted by score descending. The result is empty when either part lacks
// bevels or no corner pair is within tolerance.
func (m *Matcher) FindMatches(p1, p2 model.Part) []model.AngleMatch {
	if !p1.Angles.HasBevel() || !p2.Angles.HasBevel() {
		return nil
	}

	// The cache stores matches computed with the lexicographically
	// smaller part id first; reversed queries get the mirrored view.
	swapped := p2.ID < p1.ID
	if swapped {
		p1, p2 = p2, p1
	}

	key := p1.ID + "|" + p2.ID
	matches, ok := m.cache[key]
	if !ok {
		matches = m.computeMatches(p1, p2)
		m.store(key, matches)
	}
	if swapped {
		return swapMatches(matches)
	}
	return matches
}

func (m *Matcher) computeMatches(p1, p2 model.Part) []model.AngleMatch {
	var matches []model.AngleMatch
	for _, pos1 := range model.AnglePositions {
		for _, pos2 := range model.AnglePositions {
			if match, ok := m.matchAt(p1, p2, pos1, pos2); ok {
				matches = append(matches, match)
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// store inserts into the pair cache, evicting the oldest half on overflow.
func (m *Matcher) store(key string, matches []model.AngleMatch) {
	if _, exists := m.cache[key]; exists {
		return
	}
	if len(m.cacheKeys) >= matchCacheLimit {
		half := len(m.cacheKeys) / 2
		for _, old := range m.cacheKeys[:half] {
			delete(m.cache, old)
		}
		m.cacheKeys = append(m.cacheKeys[:0], m.cacheKeys[half:]...)
	}
	m.cache[key] = matches
	m.cacheKeys = append(m.cacheKeys, key)
}

// swapMatches mirrors a match list so part1 and part2 fields trade places.
func swapMatches(matches []model.AngleMatch) []model.AngleMatch {
	if matches == nil {
		return nil
	}
	out := make([]model.AngleMatch, len(matches))
	for i, match := range matches {
		out[i] = match
		out[i].Part1ID, out[i].Part2ID = match.Part2ID, match.Part1ID
		out[i].Part1Position, out[i].Part2Position = match.Part2Position, match.Part1Position
	}
	return out
}

// FindBestMatchForPart returns the single highest-scoring match between the
// part and any candidate. Candidates with the part's own id are skipped.
func (m *Matcher) FindBestMatchForPart(p model.Part, candidates []model.Part) (model.AngleMatch, bool) {
	var best model.AngleMatch
	found := false
	for _, c := range candidates {
		if c.ID == p.ID {
			continue
		}
		for _, match := range m.FindMatches(p, c) {
			if !found || match.Score > best.Score {
				best = match
				found = true
			}
			break // matches are sorted, only the first can win
		}
	}
	return best, found
}

// FindBestMatchCombination selects a disjoint set of matches across the
// given parts, greedily by score, using each part at most once.
func (m *Matcher) FindBestMatchCombination(parts []model.Part) []model.AngleMatch {
	var all []model.AngleMatch
	for _, pair := range m.pairCandidates(parts) {
		matches := m.FindMatches(parts[pair[0]], parts[pair[1]])
		if len(matches) > 0 {
			all = append(all, matches[0])
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	used := make(map[string]bool)
	var combination []model.AngleMatch
	for _, match := range all {
		if used[match.Part1ID] || used[match.Part2ID] {
			continue
		}
		used[match.Part1ID] = true
		used[match.Part2ID] = true
		combination = append(combination, match)
	}
	return combination
}

// pairCandidates enumerates the part index pairs worth matching. Small
// inputs get the full quadratic enumeration; large inputs are quantized
// into angle groups and only pairs within a group or between adjacent
// groups are considered.
func (m *Matcher) pairCandidates(parts []model.Part) [][2]int {
	var pairs [][2]int

	if len(parts) <= groupingThreshold {
		for i := 0; i < len(parts); i++ {
			for j := i + 1; j < len(parts); j++ {
				pairs = append(pairs, [2]int{i, j})
			}
		}
		return pairs
	}

	groups := make(map[float64][]int)
	for i, p := range parts {
		avg, ok := averageBevelAngle(p)
		if !ok {
			continue
		}
		bucket := math.Round(avg/m.Tolerance) * m.Tolerance
		groups[bucket] = append(groups[bucket], i)
	}

	centers := make([]float64, 0, len(groups))
	for c := range groups {
		centers = append(centers, c)
	}
	sort.Float64s(centers)

	for gi, center := range centers {
		members := groups[center]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pairs = append(pairs, [2]int{members[i], members[j]})
			}
		}
		// Adjacent buckets whose centers are within tolerance can still
		// hold matching angles across the bucket boundary.
		for gj := gi + 1; gj < len(centers); gj++ {
			if centers[gj]-center > m.Tolerance {
				break
			}
			for _, a := range members {
				for _, b := range groups[centers[gj]] {
					pairs = append(pairs, [2]int{a, b})
				}
			}
		}
	}
	return pairs
}

// averageBevelAngle returns the mean of a part's bevel angles.
func averageBevelAngle(p model.Part) (float64, bool) {
	positions := p.Angles.BevelPositions()
	if len(positions) == 0 {
		return 0, false
	}
	angles := make([]float64, len(positions))
	for i, pos := range positions {
		angles[i] = p.Angles.At(pos)
	}
	return stat.Mean(angles, nil), true
}

// SharedCutPotential summarizes how much material a part set could save
// through shared cuts.
type SharedCutPotential struct {
	TotalPotentialSavings  float64 `json:"totalPotentialSavings"` // mm
	MatchCount             int     `json:"matchCount"`
	AverageSavingsPerMatch float64 `json:"averageSavingsPerMatch"` // mm
}

// EvaluateSharedCuttingPotential estimates the savings available across a
// part set. Inputs larger than the sampling threshold are evaluated on a
// stratified sample and scaled back up.
func (m *Matcher) EvaluateSharedCuttingPotential(parts []model.Part) SharedCutPotential {
	sample := parts
	scale := 1.0
	if len(parts) > sampleThreshold {
		sample = stratifiedSample(parts, sampleThreshold)
		scale = float64(len(parts)) / float64(len(sample))
	}

	combination := m.FindBestMatchCombination(sample)
	if len(combination) == 0 {
		return SharedCutPotential{}
	}

	savings := make([]float64, len(combination))
	for i, match := range combination {
		savings[i] = match.Savings
	}
	avg := stat.Mean(savings, nil)

	return SharedCutPotential{
		TotalPotentialSavings:  avg * float64(len(combination)) * scale,
		MatchCount:             int(math.Round(float64(len(combination)) * scale)),
		AverageSavingsPerMatch: avg,
	}
}

// stratifiedSample picks n parts spread evenly across the input ordered by
// average bevel angle, so every angle band stays represented.
func stratifiedSample(parts []model.Part, n int) []model.Part {
	ordered := make([]model.Part, len(parts))
	copy(ordered, parts)
	sort.SliceStable(ordered, func(i, j int) bool {
		ai, _ := averageBevelAngle(ordered[i])
		aj, _ := averageBevelAngle(ordered[j])
		return ai < aj
	})

	if len(ordered) <= n {
		return ordered
	}
	sample := make([]model.Part, 0, n)
	step := float64(len(ordered)) / float64(n)
	for i := 0; i < n; i++ {
		sample = append(sample, ordered[int(float64(i)*step)])
	}
	return sample
}
