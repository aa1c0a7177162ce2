package echarts

import (
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// defaultPalette is the ECharts 5 default color list.
var defaultPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

const (
	titlePadding = 50 // top padding reserved for the title
	dotWidth     = 4  // scatter symbol radius
	areaAlpha    = 96 // fill opacity for areaStyle series

	axisLimit = math.MaxFloat64 / 4
)

// render picks a chart kind for opt and writes it to w through rp.
// Pie series win over everything else, then bar-only options, then the
// cartesian line/scatter chart (where bar series are drawn as filled lines).
func render(w io.Writer, rp chart.RendererProvider, opt Option, width, height int) error {
	series := opt.Series()
	palette := opt.Palette()

	var pie *Series
	var bars, lines []Series
	for i := range series {
		switch series[i].Type {
		case SeriesPie:
			if pie == nil {
				pie = &series[i]
			}
		case SeriesBar:
			bars = append(bars, series[i])
		case SeriesLine, SeriesScatter:
			lines = append(lines, series[i])
		}
	}

	switch {
	case pie != nil && positive(*pie):
		return renderPie(w, rp, opt, *pie, palette, width, height)
	case len(bars) > 0 && len(lines) == 0:
		if stacked(bars) && anyValues(bars) {
			return renderStacked(w, rp, opt, bars, palette, width, height)
		}
		if hasValues(bars[0]) {
			return renderBar(w, rp, opt, bars[0], palette, width, height)
		}
	case len(lines) > 0 || len(bars) > 0:
		all := append(lines, bars...)
		if anyValues(all) {
			return renderCartesian(w, rp, opt, all, palette, width, height)
		}
	}
	return renderBlank(w, rp, opt.Title(), width, height)
}

func renderCartesian(w io.Writer, rp chart.RendererProvider, opt Option, series []Series, palette []string, width, height int) error {
	categories := opt.Categories()
	graph := chart.Chart{
		Title:      opt.Title(),
		Width:      width,
		Height:     height,
		Background: background(opt),
	}

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := 0.0, 0.0
	for i, s := range series {
		cs := chart.ContinuousSeries{Name: s.Name, Style: seriesStyle(s, color(palette, i))}
		for _, p := range s.Points {
			if !p.Valid {
				continue
			}
			cs.XValues = append(cs.XValues, p.X)
			cs.YValues = append(cs.YValues, p.Y)
			xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
			ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		}
		if len(cs.XValues) > 0 {
			graph.Series = append(graph.Series, cs)
		}
	}

	if len(categories) > 0 {
		graph.XAxis.Ticks = make([]chart.Tick, len(categories))
		for i, c := range categories {
			graph.XAxis.Ticks[i] = chart.Tick{Value: float64(i), Label: c}
		}
		xmin = math.Min(xmin, 0)
		xmax = math.Max(xmax, float64(len(categories)-1))
	}
	graph.XAxis.Range = padRange(xmin, xmax, 0.5)
	graph.YAxis.Range = valueRange(ymin, ymax)

	if opt.HasLegend() {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(rp, w)
}

func renderBar(w io.Writer, rp chart.RendererProvider, opt Option, s Series, palette []string, width, height int) error {
	categories := opt.Categories()
	fill := color(palette, 0)

	var bars []chart.Value
	ymin, ymax := 0.0, 0.0
	for i, p := range s.Points {
		if !p.Valid {
			continue
		}
		name := p.Name
		if name == "" && i < len(categories) {
			name = categories[i]
		}
		bars = append(bars, chart.Value{
			Label: name,
			Value: p.Y,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}

	barWidth, spacing := barGeometry(width, len(bars))
	graph := chart.BarChart{
		Title:      opt.Title(),
		Width:      width,
		Height:     height,
		Background: background(opt),
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       bars,
		YAxis:      chart.YAxis{Range: valueRange(ymin, ymax)},
	}
	return graph.Render(rp, w)
}

func renderStacked(w io.Writer, rp chart.RendererProvider, opt Option, series []Series, palette []string, width, height int) error {
	categories := opt.Categories()

	n := len(categories)
	for _, s := range series {
		if len(s.Points) > n {
			n = len(s.Points)
		}
	}

	bars := make([]chart.StackedBar, n)
	for i := range bars {
		if i < len(categories) {
			bars[i].Name = categories[i]
		}
		for j, s := range series {
			if i >= len(s.Points) || !s.Points[i].Valid {
				continue
			}
			c := color(palette, j)
			bars[i].Values = append(bars[i].Values, chart.Value{
				Label: s.Name,
				Value: math.Max(s.Points[i].Y, 0),
				Style: chart.Style{FillColor: c, StrokeColor: c},
			})
		}
	}

	graph := chart.StackedBarChart{
		Title:      opt.Title(),
		Width:      width,
		Height:     height,
		Background: background(opt),
		Bars:       bars,
	}
	return graph.Render(rp, w)
}

func renderPie(w io.Writer, rp chart.RendererProvider, opt Option, s Series, palette []string, width, height int) error {
	var values []chart.Value
	for _, p := range s.Points {
		if !p.Valid || p.Y <= 0 {
			continue
		}
		c := color(palette, len(values))
		values = append(values, chart.Value{
			Label: p.Name,
			Value: p.Y,
			Style: chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite},
		})
	}

	graph := chart.PieChart{
		Title:      opt.Title(),
		Width:      width,
		Height:     height,
		Background: background(opt),
		Values:     values,
	}
	return graph.Render(rp, w)
}

// renderBlank draws an empty white canvas, with the title when set.
func renderBlank(w io.Writer, rp chart.RendererProvider, title string, width, height int) error {
	r, err := rp(width, height)
	if err != nil {
		return err
	}

	r.SetFillColor(drawing.ColorWhite)
	r.SetStrokeColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.LineTo(0, 0)
	r.Close()
	r.FillStroke()

	if title != "" {
		font, err := chart.GetDefaultFont()
		if err != nil {
			return err
		}
		r.SetFont(font)
		r.SetFontColor(drawing.ColorBlack)
		r.SetFontSize(18)
		r.Text(title, 20, 32)
	}
	return r.Save(w)
}

func seriesStyle(s Series, c drawing.Color) chart.Style {
	style := chart.Style{StrokeColor: c, StrokeWidth: 2}
	switch {
	case s.Type == SeriesScatter:
		style.StrokeWidth = chart.Disabled
		style.DotWidth = dotWidth
		style.DotColor = c
	case s.Type == SeriesBar || s.Area:
		style.FillColor = c.WithAlpha(areaAlpha)
	}
	return style
}

func background(opt Option) chart.Style {
	if opt.Title() == "" {
		return chart.Style{}
	}
	return chart.Style{Padding: chart.Box{Top: titlePadding}}
}

// valueRange returns a value-axis range that includes zero and is never
// empty, so a single point or an all-zero series still renders.
func valueRange(min, max float64) *chart.ContinuousRange {
	min, max = clampAxis(math.Min(min, 0)), clampAxis(math.Max(max, 0))
	if min == max {
		max = min + 1
	}
	return &chart.ContinuousRange{Min: min, Max: max}
}

// padRange widens [min, max] by pad on both sides, the way category axes
// leave half a band around the outer categories.
func padRange(min, max, pad float64) *chart.ContinuousRange {
	if math.IsInf(min, 0) || math.IsInf(max, 0) {
		min, max = 0, 0
	}
	return &chart.ContinuousRange{Min: clampAxis(min) - pad, Max: clampAxis(max) + pad}
}

// clampAxis keeps an axis bound within ±axisLimit so that max-min stays
// finite.
func clampAxis(v float64) float64 {
	return math.Max(-axisLimit, math.Min(v, axisLimit))
}

// barGeometry splits the plot width between n bars, 60% bar and 40% gap.
func barGeometry(width, n int) (bar, spacing int) {
	if n == 0 {
		return 1, 0
	}
	slot := float64(width-100) / float64(n)
	bar = int(slot * 0.6)
	if bar < 1 {
		bar = 1
	}
	spacing = int(slot * 0.4)
	return bar, spacing
}

func color(palette []string, i int) drawing.Color {
	hex := strings.TrimPrefix(palette[i%len(palette)], "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	return drawing.ColorFromHex(hex)
}

func hasValues(s Series) bool {
	for _, p := range s.Points {
		if p.Valid {
			return true
		}
	}
	return false
}

func positive(s Series) bool {
	for _, p := range s.Points {
		if p.Valid && p.Y > 0 {
			return true
		}
	}
	return false
}

func anyValues(series []Series) bool {
	for _, s := range series {
		if hasValues(s) {
			return true
		}
	}
	return false
}

func stacked(series []Series) bool {
	if len(series) < 2 {
		return false
	}
	for _, s := range series {
		if s.Stack == "" {
			return false
		}
	}
	return true
}
