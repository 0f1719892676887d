package engine

import (
	"fmt"

	"github.com/piwi3910/ProfileCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the optimization result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Result         model.PlacementResult
	BarsUsed       int
	Utilization    float64
	TotalSavings   float64
	SharedCutPairs int
	UnplacedCount  int
}

// CompareScenarios runs the optimizer for each scenario and returns the
// results in scenario order. This enables side-by-side comparison of
// different parameters (tolerance, losses, chain limits).
func CompareScenarios(scenarios []ComparisonScenario, parts []model.Part, materials []model.Material) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result := New(scenario.Settings).Optimize(parts, materials)

		results = append(results, ComparisonResult{
			Scenario:       scenario,
			Result:         result,
			BarsUsed:       result.Report.MaterialsUsed,
			Utilization:    result.Report.MaterialUtilization,
			TotalSavings:   result.TotalSavings,
			SharedCutPairs: result.Report.SharedCutPairs,
			UnplacedCount:  len(result.UnplacedParts),
		})
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying key parameters to show what-if
// alternatives.
func BuildDefaultScenarios(baseSettings model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: exact angle matches only
	if baseSettings.AngleTolerance > 0 {
		exact := baseSettings
		exact.AngleTolerance = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Exact Matches Only",
			Settings: exact,
		})

		loose := baseSettings
		loose.AngleTolerance = baseSettings.AngleTolerance * 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Tolerance %.1f (double)", loose.AngleTolerance),
			Settings: loose,
		})
	}

	// Scenario: thinner blade
	if baseSettings.Constraints.CuttingLoss > 1.0 {
		tightKerf := baseSettings
		tightKerf.Constraints.CuttingLoss = baseSettings.Constraints.CuttingLoss * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Kerf %.1fmm (half)", tightKerf.Constraints.CuttingLoss),
			Settings: tightKerf,
		})
	}

	// Scenario: shorter chains for easier saw handling
	if baseSettings.MaxChainSize > 10 {
		shortChains := baseSettings
		shortChains.MaxChainSize = 10
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Chains up to 10 parts",
			Settings: shortChains,
		})
	}

	return scenarios
}
