// Command edmplan is a headless driver for the wire-EDM sweep planner: it
// rasterizes a target surface against a stock cylinder, runs the planner
// to completion, and writes the G-code program plus PDF/XLSX/QR reports.
//
// In place of the teacher's Fyne desktop app (cmd/cnc-calculator,
// cmd/slabcut), this is a flag-driven CLI: a mesh loader is out of scope
// (spec non-goals), so the target is described on the command line as an
// SDF primitive (cylinder, box, or ELH) rather than loaded from a file.
//
// Build:
//
//	go build -o edmplan ./cmd/edmplan
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sparkwire/edmplan/internal/export"
	"github.com/sparkwire/edmplan/internal/gcode"
	"github.com/sparkwire/edmplan/internal/model"
	"github.com/sparkwire/edmplan/internal/plan"
	"github.com/sparkwire/edmplan/internal/rasterize"
	"github.com/sparkwire/edmplan/internal/shape"
	"github.com/sparkwire/edmplan/internal/store"
	"github.com/sparkwire/edmplan/internal/tracking"
	"github.com/sparkwire/edmplan/internal/vecmath"
	"github.com/sparkwire/edmplan/internal/voxel"
)

func main() {
	jobName := flag.String("job", "job", "name for this planning run")
	outDir := flag.String("out", ".", "directory to write the program and reports into")

	res := flag.Float64("res", model.DefaultConfig().Res, "voxel resolution in mm")
	stockDiameter := flag.Float64("stock-diameter", model.DefaultConfig().StockDiameter, "stock cylinder diameter in mm")
	stockLength := flag.Float64("stock-length", model.DefaultConfig().StockLength, "stock cylinder length in mm")
	stockTopBuffer := flag.Float64("stock-top-buffer", model.DefaultConfig().StockTopBuffer, "safe-Z clearance above stock, in mm")
	stockCutWidth := flag.Float64("stock-cut-width", model.DefaultConfig().StockCutWidth, "part-off kerf width in mm")
	simWorkBuffer := flag.Float64("sim-work-buffer", model.DefaultConfig().SimWorkBuffer, "extra stock simulated below the target, in mm")
	ewrMax := flag.Float64("ewr-max", model.DefaultConfig().EWRMax, "electrode-wear-ratio budget per scan")
	toolDiameter := flag.Float64("tool-diameter", model.DefaultConfig().ToolNaturalDiameter, "natural (unworn) electrode diameter in mm")
	toolLength := flag.Float64("tool-length", model.DefaultConfig().ToolNaturalLength, "natural (unworn) electrode length in mm")
	feedDepth := flag.Float64("feed-depth", model.DefaultConfig().FeedDepth, "planar-sweep layer thickness in mm")
	gcodeProfile := flag.String("gcode-profile", model.DefaultConfig().GCodeProfile, fmt.Sprintf("post-processor profile (%v)", model.GetProfileNames()))

	targetKind := flag.String("target", "cylinder", "target shape: cylinder, box, or elh")
	targetRadius := flag.Float64("target-radius", 0, "target cylinder/ELH radius in mm")
	targetHeight := flag.Float64("target-height", 0, "target shape height along Z in mm")
	targetSlot := flag.Float64("target-slot", 0, "ELH slot half-length (distance from the slot center to P and to Q) in mm")
	targetHalfX := flag.Float64("target-half-x", 0, "box half-extent along X in mm")
	targetHalfY := flag.Float64("target-half-y", 0, "box half-extent along Y in mm")

	strictOvercut := flag.Bool("strict-overcut", true, "abort a sweep on any overcut instead of tallying it and continuing")

	electrode := flag.String("electrode", "", "name of a saved inventory electrode profile to apply (overrides -tool-diameter/-tool-length/-ewr-max)")
	stockPreset := flag.String("stock-preset", "", "name of a saved inventory stock preset to apply (overrides -stock-diameter/-stock-length)")
	listInventory := flag.Bool("list-inventory", false, "print the saved electrode/stock inventory and exit")
	importInventory := flag.String("import-inventory", "", "merge an inventory JSON file into the saved inventory and exit")
	exportInventory := flag.String("export-inventory", "", "write the saved inventory to a JSON file and exit")
	importProfile := flag.String("import-gcode-profile", "", "import a custom G-code profile JSON file into the saved profile store and exit")
	exportProfile := flag.String("export-gcode-profile", "", "write the resolved -gcode-profile out to a JSON file for sharing and exit")
	backupPath := flag.String("backup", "", "write a full app-config+inventory backup to a JSON file and exit")
	restorePath := flag.String("restore", "", "restore the app config and inventory from a backup JSON file and exit")

	flag.Parse()

	if *listInventory {
		runListInventory()
		return
	}
	if *importInventory != "" {
		runImportInventory(*importInventory)
		return
	}
	if *exportInventory != "" {
		runExportInventory(*exportInventory)
		return
	}
	if *importProfile != "" {
		runImportProfile(*importProfile)
		return
	}
	if *backupPath != "" {
		runBackup(*backupPath)
		return
	}
	if *restorePath != "" {
		runRestore(*restorePath)
		return
	}

	cfg := model.DefaultConfig()
	cfg.Res = *res
	cfg.StockDiameter = *stockDiameter
	cfg.StockLength = *stockLength
	cfg.StockTopBuffer = *stockTopBuffer
	cfg.StockCutWidth = *stockCutWidth
	cfg.SimWorkBuffer = *simWorkBuffer
	cfg.EWRMax = *ewrMax
	cfg.ToolNaturalDiameter = *toolDiameter
	cfg.ToolNaturalLength = *toolLength
	cfg.FeedDepth = *feedDepth
	cfg.GCodeProfile = *gcodeProfile

	if *electrode != "" {
		applyElectrode(&cfg, *electrode)
	}
	if *stockPreset != "" {
		applyStockPreset(&cfg, *stockPreset)
	}

	resolvedProfile, err := store.ResolveProfile(cfg.GCodeProfile)
	if err != nil {
		log.Fatalf("edmplan: resolve gcode profile %q: %v", cfg.GCodeProfile, err)
	}
	if *exportProfile != "" {
		if err := store.ExportProfile(*exportProfile, resolvedProfile); err != nil {
			log.Fatalf("edmplan: export gcode profile: %v", err)
		}
		log.Printf("edmplan: exported gcode profile %q to %s", resolvedProfile.Name, *exportProfile)
		return
	}

	job := model.NewJob(*jobName, "")
	job.Config = cfg

	target, err := buildTarget(*targetKind, cfg, *targetRadius, *targetHeight, *targetSlot, *targetHalfX, *targetHalfY)
	if err != nil {
		log.Fatalf("edmplan: %v", err)
	}

	grid, err := buildTrackingGrid(cfg, target)
	if err != nil {
		log.Fatalf("edmplan: build tracking grid: %v", err)
	}
	grid.StrictOvercut = *strictOvercut

	p := plan.New(grid, cfg, vecmath.Vector3{})
	planPath, err := p.GenAllSweeps()
	if err != nil {
		log.Fatalf("edmplan: planning failed: %v", err)
	}

	job.Result = &model.JobResult{
		Plan:         planPath,
		RemovedVol:   p.RemovedVol(),
		RemainingVol: p.RemainingVol(),
		Deviation:    p.Deviation(),
		NumSweeps:    p.NumSweeps(),
		FinalTool:    p.Tool(),
	}

	if grid.Damages > 0 {
		log.Printf("edmplan: %d non-fatal overcut(s) recorded during planning", grid.Damages)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("edmplan: create output directory: %v", err)
	}

	if err := writeOutputs(*outDir, job, resolvedProfile); err != nil {
		log.Fatalf("edmplan: %v", err)
	}

	log.Printf("edmplan: %s: %d sweeps, %d path points, removed %.2f mm^3, deviation %.4f mm",
		job.Name, job.Result.NumSweeps, len(job.Result.Plan), job.Result.RemovedVol, job.Result.Deviation)
}

// buildTarget constructs the SDF surface the planner must machine the
// stock down to, from the command-line shape flags.
func buildTarget(kind string, cfg model.Config, radius, height, slot, halfX, halfY float64) (shape.Shape, error) {
	axis := vecmath.V3(0, 0, 1)

	switch kind {
	case "cylinder":
		if radius <= 0 {
			radius = cfg.StockDiameter/2 - 1.0
		}
		if height <= 0 {
			height = cfg.StockLength * 0.6
		}
		return shape.NewCylinder(vecmath.Vector3{}, axis, radius, height)
	case "elh":
		if radius <= 0 {
			radius = cfg.StockDiameter/2 - 1.0
		}
		if height <= 0 {
			height = cfg.StockLength * 0.6
		}
		if slot <= 0 {
			slot = radius
		}
		p := vecmath.V3(-slot, 0, 0)
		q := vecmath.V3(slot, 0, 0)
		return shape.NewELH(p, q, axis, radius, height)
	case "box":
		if halfX <= 0 {
			halfX = cfg.StockDiameter/2 - 1.0
		}
		if halfY <= 0 {
			halfY = cfg.StockDiameter/2 - 1.0
		}
		if height <= 0 {
			height = cfg.StockLength * 0.6
		}
		center := vecmath.V3(0, 0, height/2)
		return shape.NewBox(center, vecmath.V3(halfX, 0, 0), vecmath.V3(0, halfY, 0), vecmath.V3(0, 0, height/2))
	default:
		return shape.Shape{}, fmt.Errorf("unknown target shape %q (want cylinder, box, or elh)", kind)
	}
}

// buildTrackingGrid rasterizes the stock cylinder (work) and the target
// surface at the configured resolution and installs them into a fresh
// tracking.Grid (spec §4.3).
func buildTrackingGrid(cfg model.Config, target shape.Shape) (*tracking.Grid, error) {
	res := cfg.Res
	stockRadius := cfg.StockDiameter / 2
	stockBase := -cfg.SimWorkBuffer
	stockHeight := cfg.StockLength + cfg.SimWorkBuffer

	margin := 2 * res
	halfWidth := stockRadius + margin
	nx := uint32((2*halfWidth)/res) + 1
	ny := nx
	nz := uint32((stockHeight+cfg.StockTopBuffer+margin)/res) + 1
	ofs := vecmath.V3(-halfWidth, -halfWidth, stockBase-margin)

	stock, err := shape.NewCylinder(vecmath.V3(0, 0, stockBase), vecmath.V3(0, 0, 1), stockRadius, stockHeight)
	if err != nil {
		return nil, fmt.Errorf("build stock shape: %w", err)
	}

	workVG := voxel.New[uint8](res, nx, ny, nz, ofs)
	targetVG := voxel.New[uint8](res, nx, ny, nz, ofs)
	rasterize.Rasterize(rasterize.ShapeUnion{stock}, workVG)
	rasterize.Rasterize(rasterize.ShapeUnion{target}, targetVG)

	grid, err := tracking.Install(workVG, targetVG)
	if err != nil {
		return nil, err
	}
	if cfg.HasProtectedZ {
		if err := grid.SetProtectedWorkBelowZ(cfg.ProtectedZ); err != nil {
			return nil, fmt.Errorf("protect work below z: %w", err)
		}
	}
	return grid, nil
}

// writeOutputs emits the G-code program and the PDF/XLSX/QR reports for a
// finished job under dir, named after job.Name, using the already-resolved
// profile (built-in or custom, per store.ResolveProfile).
func writeOutputs(dir string, job model.Job, profile model.GCodeProfile) error {
	gcodePath := filepath.Join(dir, job.Name+".nc")
	program := gcode.NewWithProfile(job.Config, profile).Generate(job.Result.Plan)
	if err := os.WriteFile(gcodePath, []byte(program), 0644); err != nil {
		return fmt.Errorf("write gcode program: %w", err)
	}

	if err := export.ExportPDF(filepath.Join(dir, job.Name+"_summary.pdf"), job); err != nil {
		return fmt.Errorf("write PDF summary: %w", err)
	}
	if err := export.ExportJobTag(filepath.Join(dir, job.Name+"_tag.pdf"), job); err != nil {
		return fmt.Errorf("write QR job tag: %w", err)
	}
	if err := export.ExportSweepLedger(filepath.Join(dir, job.Name+"_sweeps.xlsx"), job); err != nil {
		return fmt.Errorf("write sweep ledger: %w", err)
	}

	if err := store.SaveJob(store.JobPath(job.ID), job); err != nil {
		return fmt.Errorf("save job record: %w", err)
	}

	appConfig, err := store.LoadAppConfig(store.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	appConfig.RecentJobs = append([]string{job.ID}, appConfig.RecentJobs...)
	if len(appConfig.RecentJobs) > maxRecentJobs {
		appConfig.RecentJobs = appConfig.RecentJobs[:maxRecentJobs]
	}
	if err := store.SaveAppConfig(store.DefaultConfigPath(), appConfig); err != nil {
		return fmt.Errorf("save app config: %w", err)
	}

	return nil
}

const maxRecentJobs = 10

// applyElectrode looks an electrode profile up by name in the saved
// inventory and copies its tool parameters into cfg, the same way the
// teacher's UI applies a selected ToolProfile to a CutSettings.
func applyElectrode(cfg *model.Config, name string) {
	inv, _, err := store.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("edmplan: load inventory: %v", err)
	}
	for _, e := range inv.Electrodes {
		if e.Name == name {
			e.ApplyToConfig(cfg)
			return
		}
	}
	log.Fatalf("edmplan: no electrode profile named %q in inventory (use -list-inventory)", name)
}

// applyStockPreset looks a stock preset up by name in the saved inventory
// and copies its geometry into cfg.
func applyStockPreset(cfg *model.Config, name string) {
	inv, _, err := store.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("edmplan: load inventory: %v", err)
	}
	for _, s := range inv.Stocks {
		if s.Name == name {
			s.ApplyToConfig(cfg)
			return
		}
	}
	log.Fatalf("edmplan: no stock preset named %q in inventory (use -list-inventory)", name)
}

// runListInventory prints the saved electrode profiles and stock presets
// (creating the default inventory on first use) and exits.
func runListInventory() {
	inv, path, err := store.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("edmplan: load inventory: %v", err)
	}
	fmt.Printf("inventory: %s\n", path)
	fmt.Println("electrodes:")
	for _, e := range inv.Electrodes {
		fmt.Printf("  %-24s diameter=%.3fmm length=%.2fmm ewr_max=%.3f\n", e.Name, e.NaturalDiameter, e.NaturalLength, e.EWRMax)
	}
	fmt.Println("stock presets:")
	for _, s := range inv.Stocks {
		fmt.Printf("  %-24s diameter=%.2fmm length=%.2fmm material=%s\n", s.Name, s.Diameter, s.Length, s.Material)
	}
}

// runImportInventory merges an inventory JSON file into the saved
// inventory and persists the result.
func runImportInventory(path string) {
	existing, invPath, err := store.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("edmplan: load inventory: %v", err)
	}
	merged, err := store.ImportInventory(path, existing)
	if err != nil {
		log.Fatalf("edmplan: import inventory from %s: %v", path, err)
	}
	if err := store.SaveInventory(invPath, merged); err != nil {
		log.Fatalf("edmplan: save inventory: %v", err)
	}
	log.Printf("edmplan: merged %s into %s (%d electrodes, %d stock presets)", path, invPath, len(merged.Electrodes), len(merged.Stocks))
}

// runExportInventory writes the saved inventory out to a user-specified path.
func runExportInventory(path string) {
	inv, _, err := store.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("edmplan: load inventory: %v", err)
	}
	if err := store.ExportInventory(path, inv); err != nil {
		log.Fatalf("edmplan: export inventory to %s: %v", path, err)
	}
	log.Printf("edmplan: exported inventory to %s", path)
}

// runImportProfile imports a custom G-code profile file into the saved
// profile store, making it resolvable by name from -gcode-profile.
func runImportProfile(path string) {
	profile, err := store.ImportProfile(path)
	if err != nil {
		log.Fatalf("edmplan: import gcode profile from %s: %v", path, err)
	}
	custom, err := store.LoadCustomProfilesFromDefault()
	if err != nil {
		log.Fatalf("edmplan: load custom profiles: %v", err)
	}
	replaced := false
	for i, p := range custom {
		if p.Name == profile.Name {
			custom[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		custom = append(custom, profile)
	}
	if err := store.SaveCustomProfilesToDefault(custom); err != nil {
		log.Fatalf("edmplan: save custom profiles: %v", err)
	}
	log.Printf("edmplan: imported gcode profile %q from %s", profile.Name, path)
}

// runBackup writes a full app-config+inventory backup, mirroring the
// teacher's project-level export/import of everything the user has
// customized.
func runBackup(path string) {
	appConfig, err := store.LoadAppConfig(store.DefaultConfigPath())
	if err != nil {
		log.Fatalf("edmplan: load app config: %v", err)
	}
	inv, _, err := store.LoadOrCreateInventory()
	if err != nil {
		log.Fatalf("edmplan: load inventory: %v", err)
	}
	if err := store.ExportAllData(path, appConfig, inv); err != nil {
		log.Fatalf("edmplan: backup: %v", err)
	}
	log.Printf("edmplan: wrote backup to %s", path)
}

// runRestore reads a backup file and applies its config and inventory as
// the new saved defaults.
func runRestore(path string) {
	backup, err := store.ImportAllData(path)
	if err != nil {
		log.Fatalf("edmplan: restore: %v", err)
	}
	if err := store.SaveAppConfig(store.DefaultConfigPath(), backup.Config); err != nil {
		log.Fatalf("edmplan: save app config: %v", err)
	}
	invPath, err := store.DefaultInventoryPath()
	if err != nil {
		log.Fatalf("edmplan: resolve inventory path: %v", err)
	}
	if err := store.SaveInventory(invPath, backup.Inventory); err != nil {
		log.Fatalf("edmplan: save inventory: %v", err)
	}
	log.Printf("edmplan: restored app config and inventory from %s", path)
}
