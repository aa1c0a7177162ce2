package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartgen/pkg/cache"
	"github.com/matzehuels/chartgen/pkg/echarts"
	"github.com/matzehuels/chartgen/pkg/observability"
	"github.com/matzehuels/chartgen/pkg/output"
	"github.com/matzehuels/chartgen/pkg/raster"
)

// Runner renders requests and dispatches the result.
// Both CLI and server use it, so caching and output handling live in one
// place.
//
// A Runner holds no per-request state: every render builds its own surface
// and chart, and one Runner may serve many goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  output.Opener
	Logger *log.Logger
	TTL    time.Duration // artifact cache lifetime
}

// NewRunner creates a runner.
// A nil cache disables caching, a nil keyer uses DefaultKeyer and a nil store
// writes local files only.
func NewRunner(c cache.Cache, keyer cache.Keyer, store output.Opener, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if store == nil {
		store = output.NewStore(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Supported reports whether format can be rendered.
func Supported(format string) bool {
	return format == FormatSVG || raster.IsSupported(format)
}

// Execute renders req and sends the bytes where req asks for them.
//
// Dispatch order: buffer mode prints a JSON byte array for any supported
// format; otherwise an output target receives the bytes; otherwise the SVG
// text goes to stdout whatever the format. Any remaining case is
// StatusUnsupported with nothing written.
func (r *Runner) Execute(ctx context.Context, req *Request, stdout io.Writer) (*Result, error) {
	result := &Result{Format: req.Format, Output: req.Output}

	switch {
	case req.Buffer && Supported(req.Format):
		data, hit, err := r.RenderWithCacheInfo(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := WriteBuffer(stdout, data); err != nil {
			return nil, fmt.Errorf("write buffer: %w", err)
		}
		result.Status, result.Bytes, result.Cached = StatusBuffered, len(data), hit

	case !req.Buffer && req.Output != "" && Supported(req.Format):
		data, hit, err := r.RenderWithCacheInfo(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := r.save(ctx, req.Output, req.Format, data); err != nil {
			return nil, err
		}
		result.Status, result.Bytes, result.Cached = StatusSaved, len(data), hit

	case !req.Buffer && req.Output == "":
		svg := *req
		svg.Format = FormatSVG
		data, hit, err := r.RenderWithCacheInfo(ctx, &svg)
		if err != nil {
			return nil, err
		}
		if _, err := stdout.Write(data); err != nil {
			return nil, fmt.Errorf("write stdout: %w", err)
		}
		result.Status, result.Format, result.Bytes, result.Cached = StatusPrinted, FormatSVG, len(data), hit

	default:
		result.Status = StatusUnsupported
	}

	r.Logger.Debug("dispatched chart",
		"status", result.Status,
		"format", result.Format,
		"bytes", result.Bytes,
		"cached", result.Cached)
	return result, nil
}

// Render returns the bytes of req.Option in req.Format.
func (r *Runner) Render(ctx context.Context, req *Request) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, req)
	return data, err
}

// RenderWithCacheInfo renders with caching and reports whether the cache
// was hit.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, req *Request) ([]byte, bool, error) {
	hash, err := cache.HashJSON(req.Option)
	if err != nil {
		return nil, false, fmt.Errorf("hash option: %w", err)
	}
	key := r.Keyer.ArtifactKey(hash, cache.ArtifactKeyOpts{
		Format: req.Format,
		Width:  req.Width,
		Height: req.Height,
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, req.Format)
		return data, true, nil
	} else if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	observability.Cache().OnCacheMiss(ctx, req.Format)

	start := time.Now()
	observability.Render().OnRenderStart(ctx, req.Format, req.Width, req.Height)
	data, err := render(ctx, req)
	observability.Render().OnRenderComplete(ctx, req.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("rendered chart",
		"format", req.Format,
		"width", req.Width,
		"height", req.Height,
		"duration", time.Since(start))

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, req.Format, len(data))
	}
	return data, false, nil
}

func render(ctx context.Context, req *Request) ([]byte, error) {
	if req.Format == FormatSVG {
		return RenderSVG(req.Option, req.Width, req.Height)
	}
	if err := raster.Check(req.Format); err != nil {
		return nil, err
	}
	img, err := RenderImage(req.Option, req.Width, req.Height)
	if err != nil {
		return nil, err
	}
	return raster.Encode(ctx, img, req.Format)
}

// RenderSVG draws opt on a fresh width×height surface and returns the SVG.
func RenderSVG(opt echarts.Option, width, height int) ([]byte, error) {
	chart, err := newChart(opt, width, height)
	if err != nil {
		return nil, err
	}
	svg, err := chart.RenderToSVGString()
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return []byte(svg), nil
}

// RenderImage draws opt on a fresh width×height surface as a bitmap.
func RenderImage(opt echarts.Option, width, height int) (image.Image, error) {
	chart, err := newChart(opt, width, height)
	if err != nil {
		return nil, err
	}
	img, err := chart.RenderToImage()
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return img, nil
}

func newChart(opt echarts.Option, width, height int) (*echarts.Chart, error) {
	surface := echarts.NewSurface(width, height)
	chart, err := echarts.Init(surface, echarts.InitOptions{
		Renderer: echarts.RendererSVG,
		Width:    width,
		Height:   height,
	})
	if err != nil {
		return nil, fmt.Errorf("init chart: %w", err)
	}
	chart.SetOption(opt)
	return chart, nil
}

// WriteBuffer prints data as a JSON array of byte values, e.g. [60,115,118].
func WriteBuffer(w io.Writer, data []byte) error {
	values := make([]int, len(data))
	for i, b := range data {
		values[i] = int(b)
	}
	return json.NewEncoder(w).Encode(values)
}

func (r *Runner) save(ctx context.Context, target, format string, data []byte) error {
	w, err := r.Store.Open(ctx, target, format)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
