// Package echarts renders ECharts-style option objects to SVG or bitmaps.
//
// The package mirrors the small part of the ECharts API that a headless
// renderer needs. A [Surface] stands in for the DOM element the chart is
// mounted on and reports its client size, [Init] binds a chart to it, and
// [Chart.SetOption] / [Chart.RenderToSVGString] produce the vector output:
//
//	surface := echarts.NewSurface(1024, 768)
//	chart, err := echarts.Init(surface, echarts.InitOptions{Renderer: echarts.RendererSVG})
//	if err != nil {
//	    return err
//	}
//	chart.SetOption(option)
//	svg, err := chart.RenderToSVGString()
//
// [Chart.RenderToImage] draws the same chart as an image.RGBA-backed bitmap
// for raster output.
//
// Surfaces and charts are plain values; nothing is registered globally, so
// any number of charts can be rendered concurrently.
//
// # Supported options
//
// Drawing is done by go-chart. The following parts of an option are used:
//   - title.text
//   - xAxis.data (category labels)
//   - legend (a legend is drawn when the key is present)
//   - color (palette override; #rgb and #rrggbb entries, others ignored)
//   - series[] of type line, scatter, bar and pie
//
// Bar series that share a stack are drawn as stacked bars. Options without a
// drawable series produce a blank canvas of the surface size.
package echarts
