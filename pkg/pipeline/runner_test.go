package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chartgen/pkg/cache"
	"github.com/matzehuels/chartgen/pkg/echarts"
	apperrors "github.com/matzehuels/chartgen/pkg/errors"
	"github.com/matzehuels/chartgen/pkg/observability"
)

func testRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	return NewRunner(c, nil, nil, log.New(io.Discard))
}

func testRequest(t *testing.T) *Request {
	t.Helper()
	var opt echarts.Option
	if err := json.Unmarshal([]byte(lineOption), &opt); err != nil {
		t.Fatal(err)
	}
	return &Request{Option: opt, Format: FormatSVG, Width: 320, Height: 240}
}

// blankRequest renders an empty canvas.
func blankRequest(format string) *Request {
	return &Request{Option: echarts.Option{}, Format: format, Width: 64, Height: 48}
}

type memStore struct {
	target string
	format string
	buf    bytes.Buffer
}

func (s *memStore) Open(_ context.Context, target, format string) (io.WriteCloser, error) {
	s.target, s.format = target, format
	return nopWriteCloser{&s.buf}, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func decodeBuffer(t *testing.T, out []byte) []byte {
	t.Helper()
	var values []int
	if err := json.Unmarshal(out, &values); err != nil {
		t.Fatalf("buffer output is not a JSON array: %v", err)
	}
	data := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			t.Fatalf("value %d at %d is not a byte", v, i)
		}
		data[i] = byte(v)
	}
	return data
}

func TestExecutePrintsSVG(t *testing.T) {
	for _, format := range []string{"svg", "png", "bogus"} {
		t.Run(format, func(t *testing.T) {
			req := testRequest(t)
			req.Format = format

			var stdout bytes.Buffer
			res, err := testRunner(t, nil).Execute(context.Background(), req, &stdout)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Status != StatusPrinted {
				t.Errorf("Status = %v, want printed", res.Status)
			}
			if !strings.HasPrefix(strings.TrimSpace(stdout.String()), "<svg") {
				t.Errorf("stdout is not SVG text: %.60q", stdout.String())
			}
			if res.Bytes != stdout.Len() {
				t.Errorf("Bytes = %d, stdout has %d", res.Bytes, stdout.Len())
			}
		})
	}
}

func TestExecuteSavesFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		format string
		magic  string
	}{
		{"svg", "<svg"},
		{"png", "\x89PNG"},
		{"jpg", "\xff\xd8"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			req := blankRequest(tt.format)
			req.Output = filepath.Join(dir, "chart."+tt.format)

			var stdout bytes.Buffer
			res, err := testRunner(t, nil).Execute(context.Background(), req, &stdout)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Status != StatusSaved || res.Output != req.Output {
				t.Errorf("result = %+v", res)
			}
			if stdout.Len() != 0 {
				t.Errorf("nothing should be printed when saving, got %d bytes", stdout.Len())
			}
			data, err := os.ReadFile(req.Output)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(strings.TrimSpace(string(data)), tt.magic) {
				t.Errorf("%s file starts with %.8q", tt.format, data)
			}
		})
	}
}

func TestExecuteUnsupported(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		req  func(*Request)
	}{
		{"output", func(r *Request) { r.Output = filepath.Join(dir, "chart.bogus") }},
		{"buffer", func(r *Request) { r.Buffer = true }},
		{"buffer and output", func(r *Request) { r.Buffer = true; r.Output = filepath.Join(dir, "x.bogus") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(t)
			req.Format = "bogus"
			tt.req(req)

			var stdout bytes.Buffer
			res, err := testRunner(t, nil).Execute(context.Background(), req, &stdout)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Status != StatusUnsupported {
				t.Errorf("Status = %v, want unsupported", res.Status)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout = %q, want nothing", stdout.String())
			}
			if req.Output != "" {
				if _, err := os.Stat(req.Output); !os.IsNotExist(err) {
					t.Errorf("output file should not exist, stat error = %v", err)
				}
			}
		})
	}
}

func TestExecuteBufferRoundTrip(t *testing.T) {
	runner := testRunner(t, nil)

	buffered := map[string][]byte{}
	for _, format := range []string{"png", "svg"} {
		req := blankRequest(format)
		req.Buffer = true

		var stdout bytes.Buffer
		res, err := runner.Execute(context.Background(), req, &stdout)
		if err != nil {
			t.Fatalf("Execute(%s): %v", format, err)
		}
		if res.Status != StatusBuffered {
			t.Errorf("%s Status = %v, want buffered", format, res.Status)
		}
		buffered[format] = decodeBuffer(t, stdout.Bytes())
	}

	if len(buffered["png"]) == 0 || len(buffered["svg"]) == 0 {
		t.Fatal("buffered outputs must be non-empty")
	}
	if bytes.Equal(buffered["png"], buffered["svg"]) {
		t.Error("png and svg buffers should differ")
	}
	if !bytes.HasPrefix(buffered["png"], []byte("\x89PNG")) {
		t.Error("png buffer does not decode to a PNG")
	}
	if !bytes.Contains(buffered["svg"], []byte("<svg")) {
		t.Error("svg buffer does not decode to SVG text")
	}
}

func TestExecuteUsesStore(t *testing.T) {
	store := &memStore{}
	runner := NewRunner(nil, nil, store, log.New(io.Discard))

	req := testRequest(t)
	req.Output = "s3://charts/sales.svg"

	res, err := runner.Execute(context.Background(), req, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSaved || store.target != req.Output || store.format != FormatSVG {
		t.Errorf("status %v, store target %q, format %q", res.Status, store.target, store.format)
	}
	if !bytes.Contains(store.buf.Bytes(), []byte("<svg")) {
		t.Error("store did not receive the SVG")
	}
}

func TestRenderCaches(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := testRunner(t, c)
	ctx := context.Background()
	req := testRequest(t)

	first, hit, err := runner.RenderWithCacheInfo(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}

	second, hit, err := runner.RenderWithCacheInfo(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second render should hit the cache")
	}
	if !bytes.Equal(first, second) {
		t.Error("cached bytes differ from rendered bytes")
	}

	resized := *req
	resized.Width = 640
	if _, hit, err := runner.RenderWithCacheInfo(ctx, &resized); err != nil || hit {
		t.Errorf("a different size must not hit the cache (hit=%v, err=%v)", hit, err)
	}
}

func TestRenderSVGZeroSize(t *testing.T) {
	if _, err := RenderSVG(echarts.Option{}, 0, 10); err == nil {
		t.Error("RenderSVG with zero width should fail")
	}
}

func TestWriteBuffer(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBuffer(&buf, []byte{60, 0, 255}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[60,0,255]\n" {
		t.Errorf("WriteBuffer = %q", got)
	}
}

func TestSupported(t *testing.T) {
	for _, f := range []string{"svg", "png", "tif", "heic"} {
		if !Supported(f) {
			t.Errorf("Supported(%q) = false", f)
		}
	}
	for _, f := range []string{"bogus", "pdf", ""} {
		if Supported(f) {
			t.Errorf("Supported(%q) = true", f)
		}
	}
}

type recordingHooks struct {
	observability.NoopRenderHooks
	observability.NoopCacheHooks

	renders, hits, misses, sets int
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _ string, _ int, _ time.Duration, _ error) {
	h.renders++
}
func (h *recordingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestRenderEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetRenderHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := testRunner(t, c)
	req := testRequest(t)
	for i := 0; i < 2; i++ {
		if _, err := runner.Render(context.Background(), req); err != nil {
			t.Fatal(err)
		}
	}

	if hooks.renders != 1 || hooks.misses != 1 || hooks.hits != 1 || hooks.sets != 1 {
		t.Errorf("hooks = renders %d, misses %d, hits %d, sets %d; want 1 each",
			hooks.renders, hooks.misses, hooks.hits, hooks.sets)
	}
}

const legendOption = `{"title":{"text":"Sales"},"legend":{},"xAxis":{"type":"category","data":["Mon","Tue","Wed"]},"yAxis":{"type":"value"},"series":[{"name":"web","type":"line","data":[150,230,224]},{"name":"store","type":"line","data":[80,120,90]}]}`

func TestRenderRasterChart(t *testing.T) {
	var opt echarts.Option
	if err := json.Unmarshal([]byte(legendOption), &opt); err != nil {
		t.Fatal(err)
	}

	for _, format := range []string{"png", "jpeg", "gif"} {
		t.Run(format, func(t *testing.T) {
			req := &Request{Option: opt, Format: format, Width: 400, Height: 300}
			data, err := testRunner(t, nil).Render(context.Background(), req)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			img, decoded, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode %s: %v", format, err)
			}
			if decoded != format {
				t.Errorf("decoded as %s, want %s", decoded, format)
			}
			if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 300 {
				t.Errorf("image size = %dx%d, want 400x300", b.Dx(), b.Dy())
			}
		})
	}
}

func TestRenderImageSize(t *testing.T) {
	img, err := RenderImage(testRequest(t).Option, 123, 45)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 123 || b.Dy() != 45 {
		t.Errorf("RenderImage size = %dx%d, want 123x45", b.Dx(), b.Dy())
	}
}

func TestRenderNoEncoderSkipsDrawing(t *testing.T) {
	for _, format := range []string{"heic", "heif", "jp2", "j2c"} {
		req := testRequest(t)
		req.Format = format
		// A zero-size surface would fail to draw, so NO_ENCODER proves the
		// format was rejected first.
		req.Width = 0
		_, err := testRunner(t, nil).Render(context.Background(), req)
		if !apperrors.Is(err, apperrors.ErrCodeNoEncoder) {
			t.Errorf("Render(%s) error = %v, want NO_ENCODER", format, err)
		}
	}
}
