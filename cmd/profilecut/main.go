// Command profilecut runs the shared-cut optimizer over a part and
// material catalog and writes the resulting cutting plan.
//
// Catalogs come from a saved project file or from CSV/XLSX imports:
//
//	profilecut -project job.json -pdf plan.pdf
//	profilecut -parts parts.csv -materials stock.csv -xlsx cutlist.xlsx
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/ProfileCut/internal/engine"
	"github.com/piwi3910/ProfileCut/internal/export"
	"github.com/piwi3910/ProfileCut/internal/importer"
	"github.com/piwi3910/ProfileCut/internal/model"
	"github.com/piwi3910/ProfileCut/internal/project"
)

// Version information, populated at build time.
var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var (
		projectPath   = flag.String("project", "", "project JSON file to load")
		partsPath     = flag.String("parts", "", "part list to import (.csv or .xlsx)")
		materialsPath = flag.String("materials", "", "material list to import (.csv)")
		tolerance     = flag.Float64("tolerance", 0, "angle tolerance in degrees (0 = project default)")
		noPromote     = flag.Bool("no-promote", false, "never promote finite materials to unlimited")
		pdfPath       = flag.String("pdf", "", "write cutting plan PDF")
		labelsPath    = flag.String("labels", "", "write QR label sheet PDF")
		dxfPath       = flag.String("dxf", "", "write cut layout DXF")
		xlsxPath      = flag.String("xlsx", "", "write cut list workbook")
		savePath      = flag.String("save", "", "save project with result to this path")
		compare       = flag.Bool("compare", false, "run what-if scenario comparison")
		quiet         = flag.Bool("quiet", false, "suppress progress output")
		showVersion   = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("profilecut %s (%s)\n", Version, Commit)
		return
	}

	proj, err := loadInputs(*projectPath, *partsPath, *materialsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if *tolerance > 0 {
		proj.Settings.AngleTolerance = *tolerance
	}
	proj.Settings.NoMaterialPromotion = *noPromote

	opt := engine.New(proj.Settings)
	if !*quiet {
		opt.Progress = func(stage string, pct float64, details string) {
			fmt.Fprintf(os.Stderr, "\r%-16s %5.1f%%  %-40s", stage, pct, details)
		}
	}

	result := opt.Optimize(proj.Parts, proj.Materials)
	if !*quiet {
		fmt.Fprintln(os.Stderr)
	}
	proj.Result = &result

	printSummary(proj, result)

	if *compare {
		printComparison(proj)
	}

	if err := writeOutputs(proj, result, *pdfPath, *labelsPath, *dxfPath, *xlsxPath, *savePath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	recordHistory(proj, result)

	if !result.Success {
		os.Exit(1)
	}
}

// loadInputs builds the working project from a project file or imports.
func loadInputs(projectPath, partsPath, materialsPath string) (model.Project, error) {
	if projectPath != "" {
		return project.LoadProject(projectPath)
	}
	if partsPath == "" {
		return model.Project{}, fmt.Errorf("either -project or -parts is required")
	}

	proj := model.NewProject()
	proj.Name = strings.TrimSuffix(filepath.Base(partsPath), filepath.Ext(partsPath))
	if config, err := project.LoadAppConfig(project.DefaultConfigPath()); err == nil {
		config.ApplyToSettings(&proj.Settings)
	}

	var res importer.ImportResult
	if strings.EqualFold(filepath.Ext(partsPath), ".xlsx") {
		res = importer.ImportExcel(partsPath)
	} else {
		res = importer.ImportCSV(partsPath)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	if len(res.Errors) > 0 {
		return model.Project{}, fmt.Errorf("part import failed: %s", strings.Join(res.Errors, "; "))
	}
	proj.Parts = res.Parts

	if materialsPath != "" {
		matRes := importer.ImportMaterialsCSV(materialsPath)
		for _, w := range matRes.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
		if len(matRes.Errors) > 0 {
			return model.Project{}, fmt.Errorf("material import failed: %s", strings.Join(matRes.Errors, "; "))
		}
		proj.Materials = matRes.Materials
	} else {
		// No catalog given: offer the standard lengths as unlimited stock.
		for _, length := range model.StandardLengths {
			proj.Materials = append(proj.Materials, model.NewMaterial(fmt.Sprintf("Standard %dm", length/1000), length, 0))
		}
	}
	return proj, nil
}

func printSummary(proj model.Project, result model.PlacementResult) {
	report := result.Report
	fmt.Printf("Project:            %s\n", proj.Name)
	fmt.Printf("Parts placed:       %d of %d\n", report.PlacedParts, report.TotalParts)
	fmt.Printf("Bars used:          %d\n", report.MaterialsUsed)
	fmt.Printf("Utilization:        %.1f%%\n", report.MaterialUtilization*100)
	fmt.Printf("Shared-cut pairs:   %d\n", report.SharedCutPairs)
	fmt.Printf("Material saved:     %.1f mm\n", result.TotalSavings)
	fmt.Printf("Strategy:           %s\n", report.Strategy)
	fmt.Printf("Time:               %s\n", report.ProcessingTime)

	work := model.CalculateCutWork(proj.Parts)
	fmt.Printf("Saw workload:       %d cuts (%d bevel), ~%.0f min\n",
		work.SquareCuts+work.BevelCuts, work.BevelCuts, work.EstimatedMinutes)

	for _, w := range result.Warnings {
		fmt.Println("warning:", w)
	}
	if len(result.UnplacedParts) > 0 {
		fmt.Printf("Unplaced parts (%d):\n", len(result.UnplacedParts))
		for _, u := range result.UnplacedParts {
			fmt.Printf("  %s #%d: %s\n", u.PartID, u.Instance, u.Reason)
		}
	}
}

// printComparison runs the default what-if scenarios and prints them side
// by side.
func printComparison(proj model.Project) {
	scenarios := engine.BuildDefaultScenarios(proj.Settings)
	results := engine.CompareScenarios(scenarios, proj.Parts, proj.Materials)

	fmt.Println("\nScenario comparison:")
	fmt.Printf("  %-24s %6s %8s %10s %9s\n", "Scenario", "Bars", "Util", "Saved(mm)", "Unplaced")
	for _, r := range results {
		fmt.Printf("  %-24s %6d %7.1f%% %10.1f %9d\n",
			r.Scenario.Name, r.BarsUsed, r.Utilization*100, r.TotalSavings, r.UnplacedCount)
	}
}

func writeOutputs(proj model.Project, result model.PlacementResult, pdfPath, labelsPath, dxfPath, xlsxPath, savePath string) error {
	if pdfPath != "" {
		if err := export.ExportPDF(pdfPath, result); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		fmt.Println("wrote", pdfPath)
	}
	if labelsPath != "" {
		if err := export.ExportLabels(labelsPath, result, proj.Parts); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
		fmt.Println("wrote", labelsPath)
	}
	if dxfPath != "" {
		if err := export.ExportDXF(dxfPath, result); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
		fmt.Println("wrote", dxfPath)
	}
	if xlsxPath != "" {
		if err := export.ExportXLSX(xlsxPath, result, proj.Parts); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		fmt.Println("wrote", xlsxPath)
	}
	if savePath != "" {
		if err := project.SaveProject(savePath, proj); err != nil {
			return fmt.Errorf("project save: %w", err)
		}
		fmt.Println("wrote", savePath)
	}
	return nil
}

// recordHistory appends the run to the local history database. History is
// best-effort: a broken database never fails the run.
func recordHistory(proj model.Project, result model.PlacementResult) {
	h, err := project.OpenHistory(project.DefaultHistoryPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: history unavailable:", err)
		return
	}
	defer h.Close()

	if _, err := h.RecordRun(proj.Name, result); err != nil {
		fmt.Fprintln(os.Stderr, "warning: history record failed:", err)
		return
	}
	config, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err == nil && config.HistoryLimit > 0 {
		_ = h.Prune(config.HistoryLimit)
	}
}
