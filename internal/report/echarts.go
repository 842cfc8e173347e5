package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aperture-data/sensor.report/internal/store"
)

// WriteComparisonReport renders an HTML report of recent comparisons: one
// bar per comparison, labelled with the sides compared, plus the verdict in
// the tooltip. The most recent comparison comes first.
func WriteComparisonReport(recs []store.ComparisonRecord, path string) error {
	if len(recs) == 0 {
		return fmt.Errorf("no comparisons to report")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "PRNU correlation scores",
			Subtitle: "Normalized cross-correlation per comparison",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(recs))
	data := make([]opts.BarData, 0, len(recs))
	for _, rec := range recs {
		labels = append(labels, comparisonLabel(rec))
		data = append(data, opts.BarData{
			Value: rec.Result.Score,
			Name:  string(rec.Result.Verdict),
		})
	}
	bar.SetXAxis(labels).AddSeries("score", data)

	page := components.NewPage()
	page.AddCharts(bar)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func comparisonLabel(rec store.ComparisonRecord) string {
	a, b := rec.LabelA, rec.LabelB
	if a == "" {
		a = "A"
	}
	if b == "" {
		b = "B"
	}
	return fmt.Sprintf("%s vs %s (%.4f)", a, b, rec.Result.Score)
}
