package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/piwi3910/ProfileCut/internal/model"
)

// Progress receives pipeline progress updates: a stage label, a percentage
// in [0, 100] that never decreases within a run, and a detail string.
// Callbacks must not mutate the input catalogs.
type Progress func(stage string, percent float64, details string)

const (
	maxTotalChains     = 4500 // hard cap on chains per run
	maxPartTypes       = 1000 // distinct part specs considered per run
	maxMixedIterations = 500

	// mixedFirstMaxInstances is the quantity ceiling under which a small
	// multi-part job runs the mixed strategy before batching.
	mixedFirstMaxInstances = 200

	// mixedSeedCandidates bounds seed selection cost in the mixed strategy.
	mixedSeedCandidates = 10

	// minChainScore is the weakest match the mixed strategy will extend a
	// chain with.
	minChainScore = 10.0

	// A chain must save at least this much material to be worth the
	// handling overhead at the saw.
	minChainSavings   = 10.0
	minSavingsPerPart = 5.0
)

// partState tracks how many instances of a spec remain unchained. Instances
// are never materialized: the next unused instance id and the remaining
// count stand in for an explicit array, which keeps 100k-part runs cheap.
type partState struct {
	spec      model.Part
	next      int // next unused instance id
	remaining int
}

func (s *partState) take() model.PartRef {
	ref := model.PartRef{PartID: s.spec.ID, Instance: s.next}
	s.next++
	s.remaining--
	return ref
}

func (s *partState) giveBack(n int) {
	s.next -= n
	s.remaining += n
}

func (s *partState) chainPart() model.ChainPart {
	return model.ChainPart{
		PartRef:   s.take(),
		Length:    s.spec.Length,
		Thickness: s.spec.Thickness,
	}
}

// ChainBuilder converts part specs into a set of disjoint shared-cut
// chains that maximize aggregate savings under the chain size and length
// caps.
type ChainBuilder struct {
	matcher         *Matcher
	MaxChainSize    int
	MaxChainLength  float64 // mm
	PrioritizeMixed bool
}

func NewChainBuilder(settings model.Settings) *ChainBuilder {
	return &ChainBuilder{
		matcher:         NewMatcher(settings.AngleTolerance),
		MaxChainSize:    settings.MaxChainSize,
		MaxChainLength:  settings.MaxChainLength,
		PrioritizeMixed: settings.PrioritizeMixedChains,
	}
}

// ChainReport is the chain list plus run statistics.
type ChainReport struct {
	Chains         []model.SharedCutChain       `json:"chains"`
	TotalSavings   float64                      `json:"totalSavings"` // mm
	Distribution   map[model.ChainStructure]int `json:"distribution"`
	ProcessingTime time.Duration                `json:"processingTime"`
}

// BuildChains builds shared-cut chains from the part catalog. Degenerate
// inputs produce an empty list, never an error.
func (b *ChainBuilder) BuildChains(parts []model.Part) []model.SharedCutChain {
	return b.BuildChainsWithReport(parts, nil).Chains
}

// BuildChainsWithReport builds chains and reports totals, the distribution
// by structure, and the processing time. The optional callback is invoked
// at batch boundaries and after mixed iterations with non-decreasing
// percentages.
func (b *ChainBuilder) BuildChainsWithReport(parts []model.Part, onProgress Progress) ChainReport {
	start := time.Now()

	states := b.bevelStates(parts)
	report := ChainReport{Distribution: make(map[model.ChainStructure]int)}

	if len(states) > 0 {
		totalInstances := 0
		for _, s := range states {
			totalInstances += s.remaining
		}

		mixedFirst := b.PrioritizeMixed &&
			len(states) > 1 && len(states) <= 5 &&
			totalInstances <= mixedFirstMaxInstances

		var chains []model.SharedCutChain
		if mixedFirst {
			chains = b.buildMixedChains(states, chains, onProgress, 0, 50)
			chains = b.buildBatchChains(states, chains, onProgress, 50, 100)
		} else {
			chains = b.buildBatchChains(states, chains, onProgress, 0, 50)
			chains = b.buildMixedChains(states, chains, onProgress, 50, 100)
		}
		report.Chains = chains
	}

	for i := range report.Chains {
		report.TotalSavings += report.Chains[i].TotalSavings()
		report.Distribution[report.Chains[i].Structure]++
	}
	report.ProcessingTime = time.Since(start)
	return report
}

// bevelStates returns tracking state for every spec that carries at least
// one bevel angle, capped at maxPartTypes specs.
func (b *ChainBuilder) bevelStates(parts []model.Part) []*partState {
	var states []*partState
	for _, p := range parts {
		if p.Quantity <= 0 || !p.Angles.HasBevel() {
			continue
		}
		states = append(states, &partState{spec: p, remaining: p.Quantity})
		if len(states) >= maxPartTypes {
			break
		}
	}
	return states
}

// bestSharedAngle returns the bevel corner of a part whose angle yields the
// largest per-joint savings for same-part chains, with the savings clamped
// to [5, 2*thickness].
func bestSharedAngle(p model.Part) (model.AnglePosition, float64, float64, bool) {
	var bestPos model.AnglePosition
	var bestAngle, bestSavings float64
	found := false

	for _, pos := range p.Angles.BevelPositions() {
		angle := p.Angles.At(pos)
		savings := sharedCutSavings(angle, float64(p.Thickness))
		if limit := 2 * float64(p.Thickness); savings > limit {
			savings = limit
		}
		if savings < 5 {
			savings = 5
		}
		if !found || savings > bestSavings {
			bestPos, bestAngle, bestSavings = pos, angle, savings
			found = true
		}
	}
	return bestPos, bestAngle, bestSavings, found
}

// buildBatchChains forms same-part chains for every spec with at least two
// remaining instances. Chain sizes are driven by the length cap.
func (b *ChainBuilder) buildBatchChains(states []*partState, chains []model.SharedCutChain, onProgress Progress, pctFrom, pctTo float64) []model.SharedCutChain {
	for si, state := range states {
		pos, angle, savings, ok := bestSharedAngle(state.spec)
		if !ok {
			continue
		}

		effective := float64(state.spec.Length) - savings
		if effective <= 0 {
			continue
		}

		for state.remaining >= 2 && len(chains) < maxTotalChains {
			size := b.MaxChainSize
			if byLength := int(b.MaxChainLength / effective); byLength < size {
				size = byLength
			}
			if state.remaining < size {
				size = state.remaining
			}
			// The length cap counts the closing savings term too.
			for size >= 2 && float64(size)*effective+savings > b.MaxChainLength {
				size--
			}
			if size < 2 {
				break
			}

			chain := b.batchChain(state, size, pos, angle, savings)
			if !b.efficient(&chain) {
				state.giveBack(size)
				break
			}
			chains = append(chains, chain)
		}

		if onProgress != nil {
			pct := pctFrom + (pctTo-pctFrom)*float64(si+1)/float64(len(states))
			onProgress("chains", pct, fmt.Sprintf("batched %s", state.spec.ID))
		}
	}
	return chains
}

func (b *ChainBuilder) batchChain(state *partState, size int, pos model.AnglePosition, angle, savings float64) model.SharedCutChain {
	parts := make([]model.ChainPart, 0, size)
	for i := 0; i < size; i++ {
		parts = append(parts, state.chainPart())
	}
	connections := make([]model.ChainConnection, 0, size-1)
	for i := 0; i < size-1; i++ {
		connections = append(connections, model.ChainConnection{
			Part1Position: pos,
			Part2Position: pos,
			Angle:         angle,
			Savings:       savings,
		})
	}
	return model.SharedCutChain{
		Parts:       parts,
		Connections: connections,
		Structure:   model.ClassifyStructure(parts),
	}
}

// buildMixedChains greedily grows chains across distinct specs, extending
// by the best available match each step.
func (b *ChainBuilder) buildMixedChains(states []*partState, chains []model.SharedCutChain, onProgress Progress, pctFrom, pctTo float64) []model.SharedCutChain {
	exhausted := make(map[string]bool)

	for iter := 0; iter < maxMixedIterations && len(chains) < maxTotalChains; iter++ {
		seed := b.pickSeed(states, exhausted)
		if seed == nil {
			break
		}

		chain, ok := b.growChain(seed, states)
		if !ok {
			exhausted[seed.spec.ID] = true
			continue
		}
		chains = append(chains, chain)

		if onProgress != nil {
			pct := pctFrom + (pctTo-pctFrom)*float64(iter+1)/float64(maxMixedIterations)
			onProgress("chains", pct, fmt.Sprintf("mixed chain of %d", len(chain.Parts)))
		}
	}

	if onProgress != nil {
		onProgress("chains", pctTo, "mixed chains complete")
	}
	return chains
}

// pickSeed chooses a spec to start a chain from, preferring higher bevel
// counts and considering only the first few candidates to bound startup
// cost on large catalogs.
func (b *ChainBuilder) pickSeed(states []*partState, exhausted map[string]bool) *partState {
	var candidates []*partState
	for _, s := range states {
		if s.remaining > 0 && !exhausted[s.spec.ID] {
			candidates = append(candidates, s)
			if len(candidates) >= mixedSeedCandidates {
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].spec.Angles.BevelCount() > candidates[j].spec.Angles.BevelCount()
	})
	return candidates[0]
}

// growChain extends from the seed by repeatedly taking the best-scoring
// match whose counterpart still has unreserved instances, while the length
// and size caps allow. Chains that never reach two members are rolled back.
func (b *ChainBuilder) growChain(seed *partState, states []*partState) (model.SharedCutChain, bool) {
	index := make(map[string]*partState, len(states))
	for _, s := range states {
		index[s.spec.ID] = s
	}

	parts := []model.ChainPart{seed.chainPart()}
	var connections []model.ChainConnection
	taken := map[string]int{seed.spec.ID: 1}
	current := seed.spec
	totalLength := float64(current.Length)

	for len(parts) < b.MaxChainSize {
		var best model.AngleMatch
		var bestState *partState
		for _, cand := range states {
			if cand.remaining <= 0 {
				continue
			}
			matches := b.matcher.FindMatches(current, cand.spec)
			if len(matches) == 0 {
				continue
			}
			if bestState == nil || matches[0].Score > best.Score {
				best = matches[0]
				bestState = cand
			}
		}
		if bestState == nil || best.Score < minChainScore {
			break
		}
		if totalLength+float64(bestState.spec.Length)-best.Savings > b.MaxChainLength {
			break
		}

		parts = append(parts, bestState.chainPart())
		connections = append(connections, model.ChainConnection{
			Part1Position: best.Part1Position,
			Part2Position: best.Part2Position,
			Angle:         best.Angle,
			Savings:       best.Savings,
		})
		taken[bestState.spec.ID]++
		totalLength += float64(bestState.spec.Length) - best.Savings
		current = bestState.spec
	}

	chain := model.SharedCutChain{
		Parts:       parts,
		Connections: connections,
		Structure:   model.ClassifyStructure(parts),
	}
	if len(parts) < 2 || !b.efficient(&chain) {
		for id, n := range taken {
			index[id].giveBack(n)
		}
		return model.SharedCutChain{}, false
	}
	return chain, true
}

// efficient is the chain acceptance predicate: the chain must save enough
// material overall, and non-batch chains must also save enough per member.
func (b *ChainBuilder) efficient(c *model.SharedCutChain) bool {
	savings := c.TotalSavings()
	if savings < minChainSavings {
		return false
	}
	if c.Structure == model.StructureBatch {
		return true
	}
	return savings/float64(len(c.Parts)) >= minSavingsPerPart
}
