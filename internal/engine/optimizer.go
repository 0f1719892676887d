// Package engine implements the shared-cut optimizer pipeline: the angle
// matcher finds bevel corners that can share a kerf, the chain builder
// links part instances into shared-cut chains, and the placer packs chains
// and loose parts onto stock bars.
package engine

import (
	"time"

	"github.com/piwi3910/ProfileCut/internal/model"
)

// Optimizer composes the pipeline behind a single Optimize call. One call
// runs one pipeline to completion; all algorithms are deterministic given
// their inputs and configuration.
type Optimizer struct {
	Settings model.Settings
	Progress Progress
}

func New(settings model.Settings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// Optimize assigns every part instance to a position on some stock bar,
// exploiting shared-cut opportunities between matching bevel angles.
// Degenerate inputs yield an empty successful result with a warning; all
// placement failures are recorded in-band on the result.
func (o *Optimizer) Optimize(parts []model.Part, materials []model.Material) model.PlacementResult {
	start := time.Now()

	if len(parts) == 0 || len(materials) == 0 {
		result := model.PlacementResult{Success: true}
		if len(parts) == 0 {
			result.Warnings = append(result.Warnings, "no parts to optimize")
		}
		if len(materials) == 0 {
			result.Warnings = append(result.Warnings, "no materials to cut from")
		}
		result.Report.ProcessingTime = time.Since(start)
		return result
	}

	// Component callbacks report 0-100 within their own stage; rescale
	// onto one non-decreasing run-wide axis.
	var chainProgress, placeProgress Progress
	if o.Progress != nil {
		chainProgress = func(stage string, pct float64, details string) {
			o.Progress(stage, pct*0.4, details)
		}
		placeProgress = func(stage string, pct float64, details string) {
			o.Progress(stage, 40+pct*0.6, details)
		}
	}

	builder := NewChainBuilder(o.Settings)
	chainReport := builder.BuildChainsWithReport(parts, chainProgress)

	placer := &Placer{Settings: o.Settings, Progress: placeProgress}
	result := placer.PlacePartsWithChains(parts, materials, chainReport.Chains)

	result.Report.ProcessingTime = time.Since(start)
	return result
}
