package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderRoomChart writes an HTML page with a bar chart of the bookings and hours of
// the `top` busiest rooms, 0 charts all of them.
func RenderRoomChart(w io.Writer, title string, usage []RoomUsage, top int) error {
	if top > 0 && len(usage) > top {
		usage = usage[:top]
	}

	locations := make([]string, len(usage))
	bookings := make([]opts.BarData, len(usage))
	hours := make([]opts.BarData, len(usage))
	for i, u := range usage {
		locations[i] = u.Location
		bookings[i] = opts.BarData{Value: u.Bookings}
		hours[i] = opts.BarData{Value: fmt.Sprintf("%.1f", u.Hours)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(locations).
		AddSeries("Bookings", bookings).
		AddSeries("Hours", hours)

	return bar.Render(w)
}
