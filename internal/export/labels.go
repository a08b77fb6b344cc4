package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PalletLoad/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each stack label's QR code.
type LabelInfo struct {
	RunID      string  `json:"run,omitempty"`
	Container  string  `json:"container"`
	PalletID   string  `json:"pallet"`
	StackCount int     `json:"stack"`
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	Layer      int     `json:"layer"`
	X          float64 `json:"x_cm"`
	Y          float64 `json:"y_cm"`
	Z          float64 `json:"z_cm"`
}

// Text returns the human-readable stack label, e.g. "P1-X2".
func (l LabelInfo) Text() string {
	return fmt.Sprintf("%s-X%d", l.PalletID, l.StackCount)
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ExportLabels writes a sheet of QR labels, one per placed stack, to path.
func ExportLabels(path string, result model.LoadResult) error {
	pdf, err := buildLabels(result)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WriteLabels writes the label sheet to w.
func WriteLabels(w io.Writer, result model.LoadResult) error {
	pdf, err := buildLabels(result)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

func buildLabels(result model.LoadResult) (*fpdf.Fpdf, error) {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no stacks to label", ErrNothingToExport)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return nil, fmt.Errorf("failed to render label for %q: %w", label.Text(), err)
		}
	}

	return pdf, pdf.Error()
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, index int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	text := info.Text()
	if pdf.GetStringWidth(text) > textW {
		for len(text) > 0 && pdf.GetStringWidth(text+"...") > textW {
			text = text[:len(text)-1]
		}
		text += "..."
	}
	pdf.CellFormat(textW, 4.5, text, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, info.Container, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pos := fmt.Sprintf("Row %d Col %d Layer %d", info.Row, info.Col, info.Layer)
	pdf.CellFormat(textW, 3, pos, "", 1, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, fmt.Sprintf("@ (%.0f, %.0f, %.0f) cm", info.X, info.Y, info.Z), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectLabelInfos extracts label information from a load result in placement order.
func CollectLabelInfos(result model.LoadResult) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Placements))
	for _, p := range result.Placements {
		labels = append(labels, LabelInfo{
			RunID:      result.RunID,
			Container:  p.ContainerInstanceID,
			PalletID:   p.PalletTypeID,
			StackCount: p.StackCount,
			Row:        p.Row,
			Col:        p.Col,
			Layer:      p.Layer,
			X:          p.X,
			Y:          p.Y,
			Z:          p.Z,
		})
	}
	return labels
}
