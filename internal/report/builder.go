package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"violens/domain/table"
	"violens/internal"
	"violens/internal/analytics"
	apperrors "violens/internal/errors"
	"violens/internal/session"
)

const (
	sheetSummary = "Summary"
	sheetStates  = "By State"
	sheetTypes   = "By Violation Type"
)

// Builder assembles the downloadable XLSX report: a KPI summary sheet
// with an embedded trend chart, plus per-state and per-type breakdowns.
type Builder struct {
	logger *internal.Logger
}

// NewBuilder creates a report builder.
func NewBuilder() *Builder {
	return &Builder{logger: internal.NewLogger("Report")}
}

// Build renders the workbook for the filtered dataset snapshot.
func (b *Builder) Build(rc *session.RenderContext) (*excelize.File, error) {
	if !rc.HasData() {
		return nil, apperrors.New(apperrors.CodeRenderError, "no dataset loaded")
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetSummary)

	if err := b.writeSummary(f, rc); err != nil {
		return nil, err
	}
	if err := b.writeBreakdown(f, sheetStates, rc, table.ColLocation); err != nil {
		return nil, err
	}
	if err := b.writeBreakdown(f, sheetTypes, rc, table.ColViolationType); err != nil {
		return nil, err
	}

	b.logger.Info("report built: %d rows across 3 sheets", len(rc.Rows))
	return f, nil
}

func (b *Builder) writeSummary(f *excelize.File, rc *session.RenderContext) error {
	summary := analytics.Summarize(rc.Dataset, rc.Rows)

	f.SetCellValue(sheetSummary, "A1", "Traffic Violations Report")
	f.SetCellValue(sheetSummary, "A2", "Source")
	f.SetCellValue(sheetSummary, "B2", rc.Dataset.Name())

	kpis := []struct {
		label string
		value interface{}
	}{
		{"Total Violations", summary.TotalViolations},
		{"Total Fine Amount", summary.TotalFine},
		{"Mean Fine", summary.MeanFine},
		{"Median Fine", summary.MedianFine},
		{"States Covered", summary.StateCount},
	}
	for i, kpi := range kpis {
		row := i + 4
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), kpi.label)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), kpi.value)
	}
	if summary.TotalViolations > 0 {
		f.SetCellValue(sheetSummary, "A9", "Date Range")
		f.SetCellValue(sheetSummary, "B9",
			summary.From.Format("2006-01-02")+" to "+summary.To.Format("2006-01-02"))
	}
	f.SetColWidth(sheetSummary, "A", "A", 24)
	f.SetColWidth(sheetSummary, "B", "B", 28)

	trend := analytics.MonthlyTrend(rc.Dataset, rc.Rows)
	if len(trend.Points) == 0 {
		return nil
	}
	png, err := trendChartPNG(trend)
	if err != nil {
		// chart failure degrades the report, it does not abort it
		b.logger.Warn("trend chart skipped: %v", err)
		return nil
	}
	return f.AddPictureFromBytes(sheetSummary, "D2", &excelize.Picture{
		Extension: ".png",
		File:      png,
	})
}

func (b *Builder) writeBreakdown(f *excelize.File, sheet string, rc *session.RenderContext, by string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.Wrapf(err, "failed to create sheet %s", sheet)
	}

	agg, err := analytics.GroupBy(rc.Dataset, rc.Rows, by, table.ColFineAmount)
	if err != nil {
		return err
	}

	headers := []string{by, "Violations", "Fine Total", "Fine Mean"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, g := range agg.Groups {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), g.Label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), g.Count)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), g.Sum)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), g.Mean)
	}
	f.SetColWidth(sheet, "A", "A", 26)
	f.SetColWidth(sheet, "B", "D", 14)
	return nil
}

// trendChartPNG renders the monthly trend as a PNG line chart.
func trendChartPNG(trend analytics.TrendResult) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Monthly Violations"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Violations"

	pts := make(plotter.XYs, len(trend.Points))
	for i, tp := range trend.Points {
		pts[i].X = float64(i)
		pts[i].Y = float64(tp.Count)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build trend line")
	}
	line.Width = vg.Points(2)
	p.Add(line)
	p.Add(plotter.NewGrid())
	p.NominalX(trend.Months()...)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to render trend chart")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, apperrors.Wrap(err, "failed to encode trend chart")
	}
	return buf.Bytes(), nil
}
