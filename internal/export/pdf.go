// Package export renders a finished plan to external report formats: a
// one-page PDF summary and a QR-coded job tag.
package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/sparkwire/edmplan/internal/model"
)

// Page layout constants (A4 portrait in mm), kept from the teacher's
// sheet-report layout conventions.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
)

// ExportPDF renders a one-page summary of a finished plan: job/config
// header, the removed/remaining volume and deviation figures the
// planner's driver tracks (spec §4.5), and a per-sweep breakdown table.
func ExportPDF(path string, job model.Job) error {
	if job.Result == nil {
		return fmt.Errorf("job %q has no plan result to export", job.Name)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AddPage()

	renderHeader(pdf, job)
	renderStats(pdf, job)
	renderSweepTable(pdf, job.Result.Plan)
	renderFooter(pdf)

	return pdf.OutputFileAndClose(path)
}

func renderHeader(pdf *fpdf.Fpdf, job model.Job) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, fmt.Sprintf("Plan summary: %s", job.Name), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(marginLeft, marginTop+8)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, fmt.Sprintf("Job ID: %s", job.ID), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	pdf.Line(marginLeft, marginTop+16, pageWidth-marginRight, marginTop+16)
}

func renderStats(pdf *fpdf.Fpdf, job model.Job) {
	cfg := job.Config
	res := job.Result

	y := marginTop + 22
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Stock & Electrode", "", 0, "L", false, 0, "")
	y += 9

	rows := []struct{ label, value string }{
		{"Stock", fmt.Sprintf("d=%.2f mm, l=%.2f mm", cfg.StockDiameter, cfg.StockLength)},
		{"Tool (natural)", fmt.Sprintf("d=%.3f mm, l=%.2f mm", cfg.ToolNaturalDiameter, cfg.ToolNaturalLength)},
		{"Final tool index/length", fmt.Sprintf("%d / %.3f mm", res.FinalTool.ToolIndex, res.FinalTool.ToolLength)},
		{"Feed depth", fmt.Sprintf("%.2f mm", cfg.FeedDepth)},
		{"EWR max", fmt.Sprintf("%.3f", cfg.EWRMax)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, r.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, r.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Plan Outcome", "", 0, "L", false, 0, "")
	y += 9

	outcome := []struct{ label, value string }{
		{"Sweeps committed", fmt.Sprintf("%d", res.NumSweeps)},
		{"Path points", fmt.Sprintf("%d", len(res.Plan))},
		{"Removed volume", fmt.Sprintf("%.2f mm^3", res.RemovedVol)},
		{"Remaining volume", fmt.Sprintf("%.2f mm^3", res.RemainingVol)},
		{"Max deviation", fmt.Sprintf("%.4f mm", res.Deviation)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range outcome {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, r.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, r.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
}

// renderSweepTable draws one row per distinct sweep_index: the point
// count and the count of RemoveWork points (a proxy for material-removal
// activity in that sweep).
func renderSweepTable(pdf *fpdf.Fpdf, plan model.Plan) {
	y := marginTop + 95

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Sweep Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{25, 40, 40, 40, 35}
	headers := []string{"Sweep", "Points", "Remove pts", "Tool changes", "Kind span"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, h := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, idx := range plan.SweepIndices() {
		points, removes, changes := 0, 0, 0
		firstKind, lastKind := "", ""
		for _, pt := range plan {
			if pt.SweepIndex != idx {
				continue
			}
			points++
			if firstKind == "" {
				firstKind = pt.Kind.String()
			}
			lastKind = pt.Kind.String()
			if pt.Kind == model.RemoveWork {
				removes++
			}
			if pt.Kind == model.RemoveTool {
				changes++
			}
		}

		row := []string{
			fmt.Sprintf("%d", idx),
			fmt.Sprintf("%d", points),
			fmt.Sprintf("%d", removes),
			fmt.Sprintf("%d", changes),
			fmt.Sprintf("%s..%s", firstKind, lastKind),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}
}

func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by edmplan", "", 0, "C", false, 0, "")
}
