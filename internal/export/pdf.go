// Package export renders load results as PDF layout reports, QR label sheets
// and Excel workbooks.
package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/PalletLoad/internal/model"
)

// palletColor represents an RGB color for a pallet type.
type palletColor struct {
	R, G, B int
}

var palletColors = []palletColor{
	{R: 31, G: 119, B: 180},  // blue
	{R: 255, G: 127, B: 14},  // orange
	{R: 44, G: 160, B: 44},   // green
	{R: 214, G: 39, B: 40},   // red
	{R: 148, G: 103, B: 189}, // purple
	{R: 140, G: 86, B: 75},   // brown
	{R: 227, G: 119, B: 194}, // pink
	{R: 127, G: 127, B: 127}, // grey
	{R: 188, G: 189, B: 34},  // olive
	{R: 23, G: 190, B: 207},  // cyan
}

// colorsByPallet assigns palette entries to pallet ids in sorted id order so
// a pallet keeps its colour across every page of a report.
func colorsByPallet(result model.LoadResult) (map[string]palletColor, []string) {
	set := make(map[string]bool)
	for _, p := range result.Placements {
		set[p.PalletTypeID] = true
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	colors := make(map[string]palletColor, len(ids))
	for i, id := range ids {
		colors[id] = palletColors[i%len(palletColors)]
	}
	return colors, ids
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendWidth  = 45.0
	drawAreaTop  = marginTop + headerHeight + 8.0
)

// ExportPDF writes the load report to path.
func ExportPDF(path string, result model.LoadResult, settings model.LoadSettings) error {
	pdf, err := buildReport(result, settings)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// WritePDF writes the load report to w.
func WritePDF(w io.Writer, result model.LoadResult, settings model.LoadSettings) error {
	pdf, err := buildReport(result, settings)
	if err != nil {
		return err
	}
	return pdf.Output(w)
}

// buildReport renders one top-view page per used container followed by a
// summary page.
func buildReport(result model.LoadResult, settings model.LoadSettings) (*fpdf.Fpdf, error) {
	if len(result.Placements) == 0 {
		return nil, fmt.Errorf("%w: no pallets were placed", ErrNothingToExport)
	}

	colors, ids := colorsByPallet(result)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle("Container load plan", false)

	for i, usage := range result.Containers {
		pdf.AddPage()
		renderContainerPage(pdf, usage, result.PlacementsFor(usage.InstanceID), colors, ids, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	return pdf, pdf.Error()
}

// renderContainerPage draws the floor plan of one container instance. Stacks
// are drawn bottom layer first so upper layers stay visible.
func renderContainerPage(pdf *fpdf.Fpdf, usage model.ContainerUsage, items []model.PlacedItem, colors map[string]palletColor, ids []string, pageNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Container %d: %s", pageNum, usage.InstanceID)
	if usage.Category != "" {
		title += " (" + usage.Category + ")"
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Interior: %.0f x %.0f x %.0f cm | Stacks: %d | Pallets: %d | Utilization: %.1f%%",
		usage.Length, usage.Width, usage.Height, usage.Stacks, usage.Units, usage.Utilization())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - legendWidth
	drawHeight := pageHeight - drawAreaTop - marginBottom

	scale := math.Min(drawWidth/usage.Length, drawHeight/usage.Width)
	canvasW := usage.Length * scale
	canvasH := usage.Width * scale
	offsetX := marginLeft
	offsetY := drawAreaTop

	// Container floor
	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.6)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	ordered := append([]model.PlacedItem(nil), items...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Z < ordered[j].Z })

	for _, it := range ordered {
		col := colors[it.PalletTypeID]
		pw := it.L * scale
		ph := it.W * scale
		px := offsetX + it.X*scale
		py := offsetY + it.Y*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 10 && ph > 5 {
			pdf.SetFont("Helvetica", "B", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := it.Label()
			if it.Z > 0 {
				label += fmt.Sprintf(" L%d", it.Layer)
			}
			if w := pdf.GetStringWidth(label); w < pw-1 {
				pdf.SetXY(px+(pw-w)/2, py+ph/2-2)
				pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, usage, offsetX, offsetY, canvasW, canvasH)
	drawPalletLegend(pdf, colors, ids, offsetX+canvasW+8, offsetY)
}

// drawDimensionAnnotations adds length and width labels outside the floor rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, usage model.ContainerUsage, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	lengthLabel := fmt.Sprintf("%.0f cm", usage.Length)
	lw := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX+(canvasW-lw)/2, offsetY+canvasH+1)
	pdf.CellFormat(lw, 4, lengthLabel, "", 0, "C", false, 0, "")

	widthLabel := fmt.Sprintf("%.0f cm", usage.Width)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	ww := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX-3-ww/2, offsetY+canvasH/2-2)
	pdf.CellFormat(ww, 4, widthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPalletLegend lists every pallet type of the run with its colour swatch.
func drawPalletLegend(pdf *fpdf.Fpdf, colors map[string]palletColor, ids []string, x, y float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y)
	pdf.CellFormat(legendWidth, 5, "Pallets", "", 0, "L", false, 0, "")
	y += 6

	pdf.SetFont("Helvetica", "", 8)
	for _, id := range ids {
		if y > pageHeight-marginBottom {
			break
		}
		col := colors[id]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(0, 0, 0)
		pdf.Rect(x, y+0.5, 4, 4, "FD")
		pdf.SetXY(x+6, y)
		pdf.CellFormat(legendWidth-6, 5, id, "", 0, "L", false, 0, "")
		y += 6
	}
}

// renderSummaryPage draws the final page with run totals, a per-container
// table and any demand left unplaced.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.LoadResult, settings model.LoadSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Load Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	stackCap := "unlimited"
	if settings.StackCap > 0 {
		stackCap = fmt.Sprintf("%d", settings.StackCap)
	}
	summaryItems := []struct {
		label string
		value string
	}{
		{"Containers Used", fmt.Sprintf("%d", len(result.Containers))},
		{"Pallets Placed", fmt.Sprintf("%d", result.PlacedUnits())},
		{"Pallets Unplaced", fmt.Sprintf("%d", result.UnplacedUnits())},
		{"Overall Utilization", fmt.Sprintf("%.1f%%", result.TotalUtilization())},
		{"Stack Cap", stackCap},
	}
	if result.RunID != "" {
		summaryItems = append(summaryItems, struct {
			label string
			value string
		}{"Run", result.RunID})
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Container Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{35, 35, 60, 30, 30, 35}
	headers := []string{"Instance", "Category", "Interior (cm)", "Stacks", "Pallets", "Utilization"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, c := range result.Containers {
		if y > pageHeight-marginBottom-20 {
			break
		}
		xPos = marginLeft
		rowData := []string{
			c.InstanceID,
			c.Category,
			fmt.Sprintf("%.0f x %.0f x %.0f", c.Length, c.Width, c.Height),
			fmt.Sprintf("%d", c.Stacks),
			fmt.Sprintf("%d", c.Units),
			fmt.Sprintf("%.1f%%", c.Utilization()),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if unplaced := unplacedIDs(result); len(unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Pallets", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, id := range unplaced {
			if y > pageHeight-marginBottom-5 {
				break
			}
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, fmt.Sprintf("- %s: %d remaining", id, result.Remaining[id]), "", 0, "L", false, 0, "")
			y += 5
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PalletLoad - Container Load Planner", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// unplacedIDs returns the ids with demand left, sorted.
func unplacedIDs(result model.LoadResult) []string {
	var ids []string
	for id, n := range result.Remaining {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
