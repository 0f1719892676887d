package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/piwi3910/ProfileCut/internal/model"
)

const (
	initialBatchSize = 2000
	minBatchSize     = 500
	maxBatchSize     = 10000

	// largeBatchThreshold marks runs big enough to warrant a larger
	// up-front material pool.
	largeBatchThreshold = 500

	// poolFillTarget assumes bars fill to roughly this fraction when
	// sizing the initial pool.
	poolFillTarget = 0.85

	batchGrowFactor      = 2.5
	batchShrinkFactor    = 0.5
	failuresBeforeShrink = 3
)

// Placer packs chains and loose part instances onto material instances
// using best-fit-decreasing with adaptive batching and dynamic stock
// creation. It never fails: parts that cannot be placed are recorded on
// the result with a reason.
type Placer struct {
	Settings model.Settings
	Progress Progress
}

func NewPlacer(settings model.Settings) *Placer {
	return &Placer{Settings: settings}
}

// materialBin is one stock bar being filled.
type materialBin struct {
	inst  *model.MaterialInstance
	count int // placed parts
}

func (b *materialBin) remaining() float64 {
	return b.inst.RemainingLength()
}

// looseRec lazily enumerates the unchained instances of one part spec.
// Instance ids consumed by chains are skipped via the taken set; no
// per-instance objects exist until an id is actually handed out.
type looseRec struct {
	spec      model.Part
	taken     map[int]bool
	cursor    int
	remaining int
}

func (r *looseRec) next() (model.PartRef, bool) {
	for r.remaining > 0 && r.cursor < r.spec.Quantity {
		id := r.cursor
		r.cursor++
		if r.taken[id] {
			continue
		}
		r.remaining--
		return model.PartRef{PartID: r.spec.ID, Instance: id}, true
	}
	return model.PartRef{}, false
}

// looseItem is one instance drawn from a record for the current batch.
type looseItem struct {
	ref  model.PartRef
	spec model.Part
}

// placeRun holds the mutable state of a single placement run. The run
// exclusively owns its material pool; chains and catalogs are read-only.
type placeRun struct {
	settings    model.Settings
	constraints model.Constraints // copy; the aggressive pass relaxes it

	specs      []model.Material
	counters   map[string]int // spec id -> next instance index
	bins       []*materialBin
	maxPartLen int

	placed    []model.PlacedPart
	unplaced  []model.UnplacedPart
	placedSet map[string]bool
	warnings  []string

	totalSavings float64
	sharedPairs  int
}

// PlaceParts packs parts with no shared-cut chains.
func (p *Placer) PlaceParts(parts []model.Part, materials []model.Material) model.PlacementResult {
	return p.PlacePartsWithChains(parts, materials, nil)
}

// PlacePartsWithChains produces a PlacementResult in which every placed
// part has a concrete position on a concrete material instance, honoring
// the given chains.
func (p *Placer) PlacePartsWithChains(parts []model.Part, materials []model.Material, chains []model.SharedCutChain) model.PlacementResult {
	start := time.Now()

	run := &placeRun{
		settings:    p.Settings,
		constraints: p.Settings.Constraints,
		counters:    make(map[string]int),
		placedSet:   make(map[string]bool),
	}
	run.specs = append(run.specs, materials...)

	totalInstances := 0
	totalRequired := 0
	for _, part := range parts {
		totalInstances += part.Quantity
		totalRequired += part.Length * part.Quantity
		if part.Length > run.maxPartLen {
			run.maxPartLen = part.Length
		}
	}

	strategy := "best-fit-decreasing"
	if len(chains) > 0 {
		strategy = "shared-cut chains + best-fit-decreasing"
	}

	// Phase 1: bounds check. Only meaningful when a finite catalog was
	// given; an empty catalog means cutting from standard stock lengths.
	if len(materials) > 0 && !run.hasUnlimited() {
		available := 0
		for _, m := range materials {
			available += m.Length * m.Quantity
		}
		if available < totalRequired {
			maxLen := run.maxMaterialLength()
			for _, part := range parts {
				reason := "material total insufficient"
				if part.Length > maxLen {
					reason = fmt.Sprintf("part length %d mm exceeds max material length %d mm", part.Length, maxLen)
				}
				for i := 0; i < part.Quantity; i++ {
					run.unplaced = append(run.unplaced, model.UnplacedPart{
						PartID:   part.ID,
						Instance: i,
						Reason:   reason,
					})
				}
			}
			run.warnings = append(run.warnings,
				fmt.Sprintf("total material %d mm is less than total part length %d mm", available, totalRequired))
			return run.assemble(start, totalInstances, strategy)
		}
	}

	run.buildInitialPool(totalRequired, totalInstances)

	// Phase 2: chain placement.
	looseFromChains := run.placeChains(chains, p.Progress)

	// Phases 3-4: best-fit-decreasing over loose instances, in adaptive
	// batches.
	records := buildLooseRecords(parts, chains)
	leftovers := run.placeLoose(records, looseFromChains, p.Progress)

	// Phase 5: aggressive relaxation for whatever is left.
	run.aggressivePass(leftovers, totalInstances)

	return run.assemble(start, totalInstances, strategy)
}

func (r *placeRun) hasUnlimited() bool {
	for _, m := range r.specs {
		if m.Unlimited() {
			return true
		}
	}
	return false
}

func (r *placeRun) maxMaterialLength() int {
	max := 0
	for _, m := range r.specs {
		if m.Length > max {
			max = m.Length
		}
	}
	return max
}

// newBin appends a fresh instance of the given spec to the pool.
func (r *placeRun) newBin(spec model.Material) *materialBin {
	idx := r.counters[spec.ID]
	r.counters[spec.ID] = idx + 1
	bin := &materialBin{inst: model.NewMaterialInstance(spec, idx)}
	r.bins = append(r.bins, bin)
	return bin
}

// standardMaterial mints an unlimited material from the standard stock
// lengths: the smallest that accommodates the request, or the largest.
func standardMaterial(need int) model.Material {
	length := model.StandardLengths[len(model.StandardLengths)-1]
	for _, l := range model.StandardLengths {
		if l >= need {
			length = l
			break
		}
	}
	return model.Material{
		ID:     fmt.Sprintf("standard_%d", length),
		Label:  fmt.Sprintf("Standard %d mm", length),
		Length: length,
	}
}

// buildInitialPool creates every finite instance plus a heuristic pool of
// the longest unlimited family. With no catalog at all, standard stock
// stands in.
func (r *placeRun) buildInitialPool(totalRequired, totalInstances int) {
	if len(r.specs) == 0 {
		r.specs = append(r.specs, standardMaterial(r.maxPartLen+int(r.constraints.FrontEndLoss)))
	}
	for _, m := range r.specs {
		for i := 0; i < m.Quantity; i++ {
			r.newBin(m)
		}
	}

	best, ok := r.longestUnlimited()
	if !ok {
		return
	}
	n := int(math.Ceil(float64(totalRequired) / (float64(best.Length) * poolFillTarget)))
	if totalInstances > largeBatchThreshold {
		n = int(math.Ceil(float64(n) * 2.5))
	}
	for i := 0; i < n; i++ {
		r.newBin(best)
	}
}

func (r *placeRun) longestUnlimited() (model.Material, bool) {
	var best model.Material
	found := false
	for _, m := range r.specs {
		if m.Unlimited() && (!found || m.Length > best.Length) {
			best = m
			found = true
		}
	}
	return best, found
}

// chainRequiredLength is the bar length a chain needs, counting both end
// losses and a kerf for every joint not covered by a shared cut.
func (r *placeRun) chainRequiredLength(chain *model.SharedCutChain) float64 {
	extraCuts := float64(len(chain.Parts) - 1 - len(chain.Connections))
	if extraCuts < 0 {
		extraCuts = 0
	}
	return r.constraints.FrontEndLoss + chain.TotalLength() +
		extraCuts*r.constraints.CuttingLoss + r.constraints.BackEndLoss
}

// placeChains places each chain on the bin whose residual space after
// placement is smallest. Chains that fit nowhere are split into the
// largest contiguous sub-chain that fits; members that cannot stay in any
// sub-chain of two or more fall through to loose placement.
func (r *placeRun) placeChains(chains []model.SharedCutChain, onProgress Progress) []looseItem {
	var loose []looseItem

	queue := make([]model.SharedCutChain, len(chains))
	copy(queue, chains)

	lastPct := 0.0
	for qi := 0; qi < len(queue); qi++ {
		chain := queue[qi]
		if len(chain.Parts) < 2 {
			loose = append(loose, chainMembers(&chain)...)
			continue
		}

		bin := r.bestChainBin(&chain)
		if bin != nil {
			r.placeChainOn(bin, &chain)
		} else if sub, rest, ok := r.splitChain(&chain); ok {
			queue = append(queue, sub)
			queue = append(queue, rest...)
		} else {
			loose = append(loose, chainMembers(&chain)...)
		}

		if onProgress != nil {
			// The queue can grow through splits; clamp so the reported
			// percentage never moves backwards.
			pct := 50 * float64(qi+1) / float64(len(queue))
			if pct < lastPct {
				pct = lastPct
			}
			lastPct = pct
			onProgress("chain placement", pct, fmt.Sprintf("%d of %d", qi+1, len(queue)))
		}
	}
	return loose
}

func chainMembers(chain *model.SharedCutChain) []looseItem {
	items := make([]looseItem, 0, len(chain.Parts))
	for _, cp := range chain.Parts {
		items = append(items, looseItem{
			ref: cp.PartRef,
			spec: model.Part{
				ID:        cp.PartID,
				Length:    cp.Length,
				Thickness: cp.Thickness,
				Quantity:  1,
			},
		})
	}
	return items
}

// bestChainBin returns the fitting bin with the smallest residual, or nil.
func (r *placeRun) bestChainBin(chain *model.SharedCutChain) *materialBin {
	var best *materialBin
	bestResidual := math.MaxFloat64

	for _, bin := range r.bins {
		required := r.chainRequiredLength(chain)
		if bin.count > 0 {
			// A partially used bar charges a kerf instead of the
			// front-end stub.
			required = chain.TotalLength() + r.constraints.CuttingLoss + r.constraints.BackEndLoss
		}
		residual := bin.remaining() - required
		if residual < 0 {
			continue
		}
		if residual < bestResidual {
			best = bin
			bestResidual = residual
		}
	}
	return best
}

// splitChain extracts the largest contiguous sub-chain that fits some bin.
// It returns the fitting sub-chain, the remaining fragments, and whether a
// fit of size >= 2 was found.
func (r *placeRun) splitChain(chain *model.SharedCutChain) (model.SharedCutChain, []model.SharedCutChain, bool) {
	n := len(chain.Parts)
	for size := n - 1; size >= 2; size-- {
		for from := 0; from+size <= n; from++ {
			sub := subChain(chain, from, from+size)
			if r.bestChainBin(&sub) == nil {
				continue
			}
			var rest []model.SharedCutChain
			if left := subChain(chain, 0, from); len(left.Parts) > 0 {
				rest = append(rest, left)
			}
			if right := subChain(chain, from+size, n); len(right.Parts) > 0 {
				rest = append(rest, right)
			}
			return sub, rest, true
		}
	}
	return model.SharedCutChain{}, nil, false
}

// subChain copies the contiguous member range [from, to) with its interior
// connections.
func subChain(chain *model.SharedCutChain, from, to int) model.SharedCutChain {
	if from >= to {
		return model.SharedCutChain{}
	}
	parts := append([]model.ChainPart(nil), chain.Parts[from:to]...)
	var conns []model.ChainConnection
	if to-from >= 2 {
		conns = append(conns, chain.Connections[from:to-1]...)
	}
	return model.SharedCutChain{
		Parts:       parts,
		Connections: conns,
		Structure:   model.ClassifyStructure(parts),
	}
}

// placeChainOn lays the chain members onto the bin, each subsequent member
// starting exactly savings mm before the previous one ends.
func (r *placeRun) placeChainOn(bin *materialBin, chain *model.SharedCutChain) {
	pos := r.constraints.FrontEndLoss
	if bin.count > 0 {
		pos = bin.inst.UsedLength + r.constraints.CuttingLoss + r.constraints.MinPartSpacing
	}

	for i, cp := range chain.Parts {
		placed := model.PlacedPart{
			PartID:             cp.PartID,
			PartInstanceID:     cp.Instance,
			MaterialID:         bin.inst.OriginalID,
			MaterialInstanceID: bin.inst.ID,
			Position:           pos,
			Length:             cp.Length,
			Orientation:        "normal",
		}
		if i > 0 {
			conn := chain.Connections[i-1]
			prev := chain.Parts[i-1]
			placed.SharedCuttingInfo = &model.SharedCutInfo{
				PairedWithPartID:     prev.PartID,
				PairedWithInstanceID: prev.Instance,
				SharedAngle:          conn.Angle,
				Savings:              conn.Savings,
			}
			r.totalSavings += conn.Savings
			r.sharedPairs++
		}
		r.recordPlacement(bin, placed)

		if i < len(chain.Connections) {
			pos += float64(cp.Length) - chain.Connections[i].Savings
		} else {
			pos += float64(cp.Length)
		}
	}
	bin.inst.UsedLength = pos
}

func (r *placeRun) recordPlacement(bin *materialBin, placed model.PlacedPart) {
	key := placed.Ref().Key()
	if r.placedSet[key] {
		// A part instance placed twice is a programmer error upstream;
		// dropping the duplicate keeps the result consistent.
		return
	}
	r.placedSet[key] = true
	r.placed = append(r.placed, placed)
	bin.count++
	if end := placed.End(); end > bin.inst.UsedLength {
		bin.inst.UsedLength = end
	}
}

// buildLooseRecords returns one lazy record per part spec covering every
// instance not consumed by a chain.
func buildLooseRecords(parts []model.Part, chains []model.SharedCutChain) []*looseRec {
	takenByPart := make(map[string]map[int]bool)
	for ci := range chains {
		for _, cp := range chains[ci].Parts {
			set := takenByPart[cp.PartID]
			if set == nil {
				set = make(map[int]bool)
				takenByPart[cp.PartID] = set
			}
			set[cp.Instance] = true
		}
	}

	var records []*looseRec
	for _, part := range parts {
		taken := takenByPart[part.ID]
		remaining := part.Quantity - len(taken)
		if remaining <= 0 {
			continue
		}
		records = append(records, &looseRec{
			spec:      part,
			taken:     taken,
			remaining: remaining,
		})
	}
	// Longest specs first so batches come out roughly length-descending.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].spec.Length > records[j].spec.Length
	})
	return records
}

// placeLoose drains the loose records in adaptive batches, returning the
// items no strategy in this phase could place.
func (r *placeRun) placeLoose(records []*looseRec, extra []looseItem, onProgress Progress) []looseItem {
	total := len(extra)
	for _, rec := range records {
		total += rec.remaining
	}
	if total == 0 {
		return nil
	}

	// Chain rejects rejoin the stream ahead of the records; each batch is
	// length-sorted for the decreasing part of best-fit-decreasing.
	pending := append([]looseItem(nil), extra...)

	batchSize := initialBatchSize
	failures := 0
	processed := 0
	var leftovers []looseItem

	for {
		batch := drawBatch(records, &pending, batchSize)
		if len(batch) == 0 {
			break
		}
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].spec.Length > batch[j].spec.Length
		})

		var failed []looseItem
		for _, item := range batch {
			if !r.placeItem(item) {
				failed = append(failed, item)
			}
		}

		// A struggling batch earns more stock before its items are
		// written off; aggressiveness scales with how badly it went.
		if len(failed) > 0 {
			successRate := float64(len(batch)-len(failed)) / float64(len(batch))
			if r.createForBacklog(failed, successRate) {
				var still []looseItem
				for _, item := range failed {
					if !r.placeItem(item) {
						still = append(still, item)
					}
				}
				failed = still
			}
		}
		leftovers = append(leftovers, failed...)

		processed += len(batch)
		if onProgress != nil {
			onProgress("placement", 50+50*float64(processed)/float64(total),
				fmt.Sprintf("%d of %d parts", processed, total))
		}

		successRate := float64(len(batch)-len(failed)) / float64(len(batch))
		if successRate >= 0.5 {
			failures = 0
			if grown := int(float64(batchSize) * batchGrowFactor); grown < maxBatchSize {
				batchSize = grown
			} else {
				batchSize = maxBatchSize
			}
		} else {
			failures++
			if failures >= failuresBeforeShrink {
				failures = 0
				if shrunk := int(float64(batchSize) * batchShrinkFactor); shrunk > minBatchSize {
					batchSize = shrunk
				} else {
					batchSize = minBatchSize
				}
			}
		}
	}
	return leftovers
}

// drawBatch pulls up to n items, preferring the pending overflow, then the
// lazy records in stored (length-descending) order.
func drawBatch(records []*looseRec, pending *[]looseItem, n int) []looseItem {
	var batch []looseItem
	for len(batch) < n && len(*pending) > 0 {
		batch = append(batch, (*pending)[0])
		*pending = (*pending)[1:]
	}
	for _, rec := range records {
		for len(batch) < n {
			ref, ok := rec.next()
			if !ok {
				break
			}
			batch = append(batch, looseItem{ref: ref, spec: rec.spec})
		}
		if len(batch) >= n {
			break
		}
	}
	return batch
}

// requiredFor is the bar length an item consumes on a given bin.
func (r *placeRun) requiredFor(bin *materialBin, length int) float64 {
	if bin.count == 0 {
		return r.constraints.FrontEndLoss + float64(length)
	}
	return float64(length) + r.constraints.CuttingLoss + r.constraints.MinPartSpacing
}

// scoreBin rates how well an item fits a bin. Higher is better; ok is
// false when the item does not fit at all.
func (r *placeRun) scoreBin(bin *materialBin, length int, maxLen int) (float64, bool) {
	req := r.requiredFor(bin, length)
	after := bin.remaining() - req
	if after < 0 {
		return 0, false
	}

	matLen := float64(bin.inst.Material.Length)
	var score float64
	switch {
	case after < r.constraints.CuttingLoss:
		score = 10000 // perfect fit
	case after < 500:
		score = 5000 - after
	case bin.count > 0:
		fillRate := (matLen - bin.remaining()) / matLen
		score = fillRate * 1000
	default:
		score = 100 - after/matLen*100
	}

	if bin.count > 0 {
		score += 20
	}
	utilAfter := (bin.inst.UsedLength + req) / matLen
	if utilAfter > 0.95 {
		score += 50
	}
	if bin.count == 0 && utilAfter < 0.5 {
		score -= 30
	}
	if maxLen > 0 {
		score += 500 * matLen / float64(maxLen)
	}
	return score, true
}

// placeItem puts one loose instance on the best-scoring bin, visiting the
// longest material family first and falling back to shorter families only
// when the longer ones decline the item.
func (r *placeRun) placeItem(item looseItem) bool {
	maxLen := r.maxMaterialLength()

	if item.spec.Length > maxLen {
		r.markUnplaced(item, fmt.Sprintf("part length %d mm exceeds max material length %d mm", item.spec.Length, maxLen))
		return true // recorded; nothing more to try
	}
	if float64(item.spec.Length)+r.constraints.FrontEndLoss > float64(maxLen) {
		r.markUnplaced(item, fmt.Sprintf("part length %d mm with front-end loss exceeds max material length %d mm", item.spec.Length, maxLen))
		return true
	}

	lengths := r.familyLengths()
	var fallback *materialBin
	for _, famLen := range lengths {
		var best *materialBin
		bestScore := math.Inf(-1)
		for _, bin := range r.bins {
			if bin.inst.Material.Length != famLen {
				continue
			}
			score, ok := r.scoreBin(bin, item.spec.Length, maxLen)
			if !ok {
				continue
			}
			if score > bestScore {
				best = bin
				bestScore = score
			}
		}
		if best == nil {
			continue
		}
		req := r.requiredFor(best, item.spec.Length)
		fillAfter := (best.inst.UsedLength + req) / float64(best.inst.Material.Length)
		if fillAfter < 0.01 {
			// Absurdly low efficiency; prefer a shorter family but keep
			// this bin in reserve.
			if fallback == nil {
				fallback = best
			}
			continue
		}
		r.placeOn(best, item)
		return true
	}
	if fallback != nil {
		r.placeOn(fallback, item)
		return true
	}
	return false
}

// familyLengths returns the distinct bin material lengths, descending.
func (r *placeRun) familyLengths() []int {
	seen := make(map[int]bool)
	var lengths []int
	for _, bin := range r.bins {
		l := bin.inst.Material.Length
		if !seen[l] {
			seen[l] = true
			lengths = append(lengths, l)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))
	return lengths
}

func (r *placeRun) placeOn(bin *materialBin, item looseItem) {
	pos := r.constraints.FrontEndLoss
	if bin.count > 0 {
		pos = bin.inst.UsedLength + r.constraints.CuttingLoss + r.constraints.MinPartSpacing
	}
	r.recordPlacement(bin, model.PlacedPart{
		PartID:             item.ref.PartID,
		PartInstanceID:     item.ref.Instance,
		MaterialID:         bin.inst.OriginalID,
		MaterialInstanceID: bin.inst.ID,
		Position:           pos,
		Length:             item.spec.Length,
		Orientation:        "normal",
	})
}

func (r *placeRun) markUnplaced(item looseItem, reason string) {
	r.unplaced = append(r.unplaced, model.UnplacedPart{
		PartID:   item.ref.PartID,
		Instance: item.ref.Instance,
		Reason:   reason,
	})
}

// createForBacklog grows the pool for a batch that left items unplaced.
// The aggressiveness ladder gives struggling batches more stock.
func (r *placeRun) createForBacklog(failed []looseItem, successRate float64) bool {
	spec, ok := r.creationSpec()
	if !ok {
		return false
	}

	factor := 10
	switch {
	case successRate >= 0.75:
		factor = 2
	case successRate >= 0.5:
		factor = 4
	case successRate >= 0.25:
		factor = 6
	}

	need := 0
	for _, item := range failed {
		need += item.spec.Length
	}
	base := int(math.Ceil(float64(need) / (float64(spec.Length) * poolFillTarget)))
	if base < 1 {
		base = 1
	}
	n := base * factor
	if n > maxBatchSize {
		n = maxBatchSize
	}
	for i := 0; i < n; i++ {
		r.newBin(spec)
	}
	return true
}

// creationSpec picks the material new instances are minted from: the
// longest unlimited family, or, as a last resort, the largest finite
// material promoted to unlimited (with a warning), or a standard length
// when the catalog offers nothing at all.
func (r *placeRun) creationSpec() (model.Material, bool) {
	if best, ok := r.longestUnlimited(); ok {
		return best, true
	}

	if !r.settings.NoMaterialPromotion {
		var largest model.Material
		found := false
		for _, m := range r.specs {
			if !m.Unlimited() && (!found || m.Length > largest.Length) {
				largest = m
				found = true
			}
		}
		if found {
			for i := range r.specs {
				if r.specs[i].ID == largest.ID {
					r.specs[i].Quantity = 0
				}
			}
			r.warnings = append(r.warnings,
				fmt.Sprintf("material %s promoted to unlimited supply to finish placement", largest.ID))
			largest.Quantity = 0
			return largest, true
		}
	}
	return model.Material{}, false
}

// aggressivePass is the final attempt for items nothing else placed: the
// front-end loss and the cutting loss are halved, a large block of fresh
// stock is created, and the best-fit pass runs once more.
func (r *placeRun) aggressivePass(leftovers []looseItem, totalInstances int) {
	if len(leftovers) == 0 {
		return
	}

	r.constraints.FrontEndLoss /= 2
	r.constraints.CuttingLoss /= 2

	if spec, ok := r.creationSpec(); ok {
		n := totalInstances
		if n < 100 {
			n = 100
		}
		for i := 0; i < n; i++ {
			r.newBin(spec)
		}
	}

	sort.SliceStable(leftovers, func(i, j int) bool {
		return leftovers[i].spec.Length > leftovers[j].spec.Length
	})
	for _, item := range leftovers {
		if !r.placeItem(item) {
			r.markUnplaced(item, "no space after aggressive retries")
		}
	}
}

// assemble builds the final PlacementResult from the run state.
func (r *placeRun) assemble(start time.Time, totalInstances int, strategy string) model.PlacementResult {
	var used []model.UsedMaterial
	var usedLen, totalLen float64
	for _, bin := range r.bins {
		if bin.count == 0 {
			continue
		}
		used = append(used, model.UsedMaterial{
			Material:    bin.inst.Material,
			InstanceID:  bin.inst.ID,
			Utilization: bin.inst.Utilization(),
		})
		usedLen += bin.inst.UsedLength
		totalLen += float64(bin.inst.Material.Length)
	}

	utilization := 0.0
	if totalLen > 0 {
		utilization = usedLen / totalLen
	}

	result := model.PlacementResult{
		PlacedParts:   r.placed,
		UnplacedParts: r.unplaced,
		UsedMaterials: used,
		TotalSavings:  r.totalSavings,
		Success:       len(r.unplaced) == 0,
		Warnings:      r.warnings,
		Report: model.PlacementReport{
			TotalParts:          totalInstances,
			PlacedParts:         len(r.placed),
			UnplacedParts:       len(r.unplaced),
			MaterialsUsed:       len(used),
			MaterialUtilization: utilization,
			SharedCutPairs:      r.sharedPairs,
			TotalSavings:        r.totalSavings,
			ProcessingTime:      time.Since(start),
			Strategy:            strategy,
		},
	}
	return result
}
