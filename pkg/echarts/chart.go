package echarts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	chart "github.com/wcharczuk/go-chart/v2"
)

// RendererSVG is the only renderer mode available without a browser canvas.
const RendererSVG = "svg"

// ErrZeroSize is returned when a chart is initialised on a surface that
// measures zero in either direction.
var ErrZeroSize = errors.New("echarts: surface has zero size")

// InitOptions configures a chart instance.
// Zero Width/Height fall back to the surface's client size.
type InitOptions struct {
	Renderer string
	Width    int
	Height   int
}

// Chart is a chart instance bound to a surface.
type Chart struct {
	surface *Surface
	width   int
	height  int
	option  Option
}

// Init creates a chart on surface.
func Init(surface *Surface, opts InitOptions) (*Chart, error) {
	if surface == nil {
		return nil, errors.New("echarts: nil surface")
	}
	if opts.Renderer == "" {
		opts.Renderer = RendererSVG
	}
	if opts.Renderer != RendererSVG {
		return nil, fmt.Errorf("echarts: unsupported renderer %q", opts.Renderer)
	}

	w, h := opts.Width, opts.Height
	if w == 0 {
		w = surface.ClientWidth()
	}
	if h == 0 {
		h = surface.ClientHeight()
	}
	if w <= 0 || h <= 0 {
		return nil, ErrZeroSize
	}
	return &Chart{surface: surface, width: w, height: h, option: Option{}}, nil
}

// Width returns the rendered width in pixels.
func (c *Chart) Width() int { return c.width }

// Height returns the rendered height in pixels.
func (c *Chart) Height() int { return c.height }

// SetOption merges opt into the chart's option, top-level keys replacing
// earlier ones. Animation is always switched off: the output is one frame.
func (c *Chart) SetOption(opt Option) {
	merged := c.option.Clone()
	for k, v := range opt {
		merged[k] = v
	}
	merged["animation"] = false
	c.option = merged
}

// Option returns the chart's current option.
func (c *Chart) Option() Option {
	return c.option.Clone()
}

// RenderToSVGString renders the current option as an SVG document.
func (c *Chart) RenderToSVGString() (string, error) {
	var buf bytes.Buffer
	if err := render(&buf, chart.SVG, c.option, c.width, c.height); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToImage draws the current option as a width×height bitmap. Text
// uses the font embedded in the chart library, so no system fonts are
// needed.
func (c *Chart) RenderToImage() (image.Image, error) {
	var buf bytes.Buffer
	if err := render(&buf, chart.PNG, c.option, c.width, c.height); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("echarts: decode bitmap: %w", err)
	}
	return img, nil
}
