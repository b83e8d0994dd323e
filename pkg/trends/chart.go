package trends

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes a standalone HTML page with the hourly histogram,
// coloured with the same rule as Layout.
func RenderChart(w io.Writer, buckets [24]int, currentHour int, subtitle string) error {
	hours := make([]string, 24)
	data := make([]opts.BarData, 24)
	for hour, count := range buckets {
		hours[hour] = HourLabel(hour)
		data[hour] = opts.BarData{
			Name:      HourLabel(hour),
			Value:     count,
			ItemStyle: &opts.ItemStyle{Color: BarColor(hour, count, currentHour)},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "Drop Ceiling - Today",
			Theme:           "dark",
			Width:           "720px",
			Height:          "240px",
			BackgroundColor: "#111118",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Visitors by hour", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Interval: "5", Color: ColorLabel},
		}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Name: "people"}),
	)
	bar.SetXAxis(hours).AddSeries("people", data,
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "4%"}),
	)

	return bar.Render(w)
}
