package telemetry

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML line chart of speed and step progress per
// frame.
func RenderChart(w io.Writer, title string, samples []Sample) error {
	frames := make([]string, len(samples))
	speed := make([]opts.LineData, len(samples))
	progress := make([]opts.LineData, len(samples))
	for i, s := range samples {
		frames[i] = strconv.Itoa(s.Frame)
		speed[i] = opts.LineData{Value: s.Speed}
		progress[i] = opts.LineData{Value: s.Progress}
	}

	sum := Summarize(samples)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("samples=%d mean=%.2f max=%.2f p85=%.2f", sum.Samples, sum.MeanSpeed, sum.MaxSpeed, sum.P85Speed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
	)
	line.SetXAxis(frames).
		AddSeries("speed", speed).
		AddSeries("step progress %", progress)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
