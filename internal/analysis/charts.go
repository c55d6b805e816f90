package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (r *Runner) renderTopAuthors(stats []authorStat) error {
	if len(stats) > 10 {
		stats = stats[:10]
	}

	names := make([]string, 0, len(stats))
	data := make([]opts.BarData, 0, len(stats))
	for _, s := range stats {
		names = append(names, s.Name)
		data = append(data, opts.BarData{Value: s.TotalEngagements})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Top Authors by Total Engagement",
			Subtitle: fmt.Sprintf("Last %d days", r.windowDays),
		}),
	)
	bar.SetXAxis(names).AddSeries("engagements", data)

	return r.writeChart(bar, "top_authors.html")
}

func (r *Runner) renderHourly(hours []hourCount) error {
	labels := make([]string, 0, len(hours))
	data := make([]opts.LineData, 0, len(hours))
	for _, h := range hours {
		labels = append(labels, fmt.Sprintf("%02d:00", h.Hour))
		data = append(data, opts.LineData{Value: h.Count})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Engagements by Hour of Day"}),
	)
	line.SetXAxis(labels).AddSeries("engagements", data)

	return r.writeChart(line, "hourly_engagement.html")
}

func (r *Runner) renderHeatmap(cells []heatCell) error {
	hourLabels := make([]string, 24)
	for i := range hourLabels {
		hourLabels[i] = fmt.Sprintf("%02d", i)
	}

	data, max := heatmapSeries(cells)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Engagement by Day of Week and Hour"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: dayNames}),
		charts.WithVisualMapOpts(opts.VisualMap{Min: 0, Max: float32(max)}),
	)
	hm.SetXAxis(hourLabels).AddSeries("engagements", data)

	return r.writeChart(hm, "engagement_heatmap.html")
}

func (r *Runner) renderOpportunities(opportunities []authorOpportunity) error {
	above, below := splitByAverage(opportunities)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Volume vs Average Engagement per Post",
			Subtitle: "High-volume, below-average authors are coaching opportunities",
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "total posts"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "avg engagement per post"}),
	)
	scatter.AddSeries("above overall average", above)
	scatter.AddSeries("below overall average", below)

	return r.writeChart(scatter, "author_opportunities.html")
}

// heatmapSeries pivots day/hour counts into echarts heatmap points and
// reports the largest count for the visual map scale.
func heatmapSeries(cells []heatCell) ([]opts.HeatMapData, int64) {
	data := make([]opts.HeatMapData, 0, len(cells))
	var max int64
	for _, c := range cells {
		if c.Day < 0 || c.Day > 6 || c.Hour < 0 || c.Hour > 23 {
			continue
		}
		if c.Count > max {
			max = c.Count
		}
		data = append(data, opts.HeatMapData{
			Name:  fmt.Sprintf("%s %02d:00", dayNames[c.Day], c.Hour),
			Value: [3]interface{}{c.Hour, c.Day, c.Count},
		})
	}
	return data, max
}

func splitByAverage(opportunities []authorOpportunity) (above, below []opts.ScatterData) {
	for _, o := range opportunities {
		point := opts.ScatterData{
			Name:  o.Name,
			Value: []interface{}{o.TotalPosts, o.AvgEngagementPerPost},
		}
		if o.AvgEngagementPerPost >= o.OverallAvg {
			above = append(above, point)
		} else {
			below = append(below, point)
		}
	}
	return above, below
}

func (r *Runner) writeChart(chart components.Charter, name string) error {
	path := filepath.Join(r.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(chart)
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	r.logger.Infow("Rendered chart", "path", path)
	return nil
}
