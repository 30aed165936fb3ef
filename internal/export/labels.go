package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/sparkwire/edmplan/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// TagInfo is the data encoded into a job's QR tag: enough to identify the
// plan and its headline figures without reopening the full PDF report.
type TagInfo struct {
	JobID      string  `json:"job_id"`
	JobName    string  `json:"job_name"`
	NumSweeps  int     `json:"num_sweeps"`
	Deviation  float64 `json:"deviation_mm"`
	RemovedVol float64 `json:"removed_vol_mm3"`
}

// Single job-tag label sized for a small adhesive label affixed to the
// physical stock, rather than the teacher's per-part sheet-of-labels layout.
const (
	tagPageWidth  = 90.0 // mm
	tagPageHeight = 50.0 // mm
	tagMargin     = 4.0  // mm
	tagQRSize     = 30.0 // mm
)

// ExportJobTag renders a single-page QR tag identifying a finished plan.
func ExportJobTag(path string, job model.Job) error {
	if job.Result == nil {
		return fmt.Errorf("job %q has no plan result to tag", job.Name)
	}

	info := TagInfo{
		JobID:      job.ID,
		JobName:    job.Name,
		NumSweeps:  job.Result.NumSweeps,
		Deviation:  job.Result.Deviation,
		RemovedVol: job.Result.RemovedVol,
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: tagPageWidth, Ht: tagPageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if err := renderTag(pdf, info); err != nil {
		return fmt.Errorf("render job tag for %q: %w", job.Name, err)
	}

	return pdf.OutputFileAndClose(path)
}

func renderTag(pdf *fpdf.Fpdf, info TagInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(1, 1, tagPageWidth-2, tagPageHeight-2, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal tag info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_job_%s", info.JobID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := tagMargin
	qrY := (tagPageHeight - tagQRSize) / 2
	pdf.ImageOptions(imgName, qrX, qrY, tagQRSize, tagQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := tagMargin + tagQRSize + tagMargin
	textW := tagPageWidth - textX - tagMargin

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, tagMargin)
	name := info.JobName
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 5, name, "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(textX, tagMargin+6)
	pdf.CellFormat(textW, 4, fmt.Sprintf("Job %s", info.JobID), "", 2, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, tagMargin+11)
	pdf.CellFormat(textW, 4, fmt.Sprintf("%d sweeps", info.NumSweeps), "", 2, "L", false, 0, "")

	pdf.SetXY(textX, tagMargin+15)
	pdf.CellFormat(textW, 4, fmt.Sprintf("dev %.4f mm", info.Deviation), "", 2, "L", false, 0, "")

	pdf.SetXY(textX, tagMargin+19)
	pdf.CellFormat(textW, 4, fmt.Sprintf("removed %.1f mm^3", info.RemovedVol), "", 2, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
