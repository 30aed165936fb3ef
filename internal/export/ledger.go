package export

import (
	"fmt"

	"github.com/sparkwire/edmplan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ledgerSheetName is the single worksheet written by ExportSweepLedger.
const ledgerSheetName = "Sweeps"

var ledgerHeader = []string{"Sweep", "Points", "Remove Points", "Tool Changes", "Kind Span"}

// ExportSweepLedger writes a per-sweep breakdown of a finished plan to an
// .xlsx workbook, one row per distinct sweep_index. Where the teacher's
// internal/importer reads part lists out of a spreadsheet, this is the
// write side: there is no spreadsheet input in this domain, only a report
// to emit.
func ExportSweepLedger(path string, job model.Job) error {
	if job.Result == nil {
		return fmt.Errorf("job %q has no plan result to export", job.Name)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetList()[0], ledgerSheetName); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}

	for col, h := range ledgerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("build header cell: %w", err)
		}
		if err := f.SetCellValue(ledgerSheetName, cell, h); err != nil {
			return fmt.Errorf("write header %q: %w", h, err)
		}
	}

	plan := job.Result.Plan
	row := 2
	for _, idx := range plan.SweepIndices() {
		points, removes, changes := 0, 0, 0
		var firstKind, lastKind model.PointKind
		first := true
		for _, pt := range plan {
			if pt.SweepIndex != idx {
				continue
			}
			points++
			if first {
				firstKind = pt.Kind
				first = false
			}
			lastKind = pt.Kind
			switch pt.Kind {
			case model.RemoveWork:
				removes++
			case model.RemoveTool:
				changes++
			}
		}

		values := []any{idx, points, removes, changes, fmt.Sprintf("%s..%s", firstKind, lastKind)}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("build row cell: %w", err)
			}
			if err := f.SetCellValue(ledgerSheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d col %d: %w", row, col, err)
			}
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save ledger workbook: %w", err)
	}
	return nil
}
