package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/chartgen/pkg/errors"
)

const lineOption = `{"title":{"text":"Sales"},"xAxis":{"type":"category","data":["Mon","Tue","Wed"]},"yAxis":{"type":"value"},"series":[{"type":"line","data":[150,230,224]}]}`

func TestParseSize(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"1024", 1024, false},
		{"1024px", 1024, false},
		{"768em", 768, false},
		{"300 px", 300, false},
		{" 640 ", 640, false},
		{"12.6px", 13, false},
		{"px", 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"-5px", 0, true},
		{"abc", 0, true},
		{"16384", 16384, false},
		{"16384px", 16384, false},
		{"16385", 0, true},
		{"100000", 0, true},
		{"1e400", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"chart.png":               "png",
		"out/chart.JPG":           "jpg",
		"chart":                   "",
		"s3://bucket/daily.webp":  "webp",
		"archive.tar.tiff":        "tiff",
		"./relative/dir.d/report": "",
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestResolvePositional(t *testing.T) {
	tests := []struct {
		name       string
		raw        RawOptions
		wantOutput string
	}{
		{"no args", RawOptions{Input: lineOption}, ""},
		{"one arg is input", RawOptions{Args: []string{lineOption}}, ""},
		{"one arg is output when input set", RawOptions{Input: lineOption, Args: []string{"out.png"}}, "out.png"},
		{"one arg does not replace output", RawOptions{Input: lineOption, Output: "a.svg", Args: []string{"b.svg"}}, "a.svg"},
		{"two args", RawOptions{Args: []string{lineOption, "out.svg"}}, "out.svg"},
		{"two args keep explicit output", RawOptions{Output: "x.gif", Args: []string{lineOption, "out.svg"}}, "x.gif"},
		{"stdin then output arg", RawOptions{Stdin: lineOption, Args: []string{"out.webp"}}, "out.webp"},
		{"input flag beats stdin", RawOptions{Input: lineOption, Stdin: "ignored"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Resolve(tt.raw)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if req.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", req.Output, tt.wantOutput)
			}
			if req.Option.Title() != "Sales" {
				t.Errorf("option not decoded from the input slot: %v", req.Option)
			}
		})
	}
}

func TestResolveTwoArgsWithInputFlag(t *testing.T) {
	req, err := Resolve(RawOptions{Input: lineOption, Args: []string{"ignored.json", "out.png"}})
	if err != nil {
		t.Fatal(err)
	}
	if req.Output != "out.png" || req.Format != "png" {
		t.Errorf("got output %q format %q", req.Output, req.Format)
	}
}

func TestResolveMissing(t *testing.T) {
	for _, raw := range []RawOptions{
		{},
		{Stdin: ""},
		{Stdin: "  \n\t"},
		{Output: "out.png"},
	} {
		_, err := Resolve(raw)
		if !apperrors.Is(err, apperrors.ErrCodeMissingOption) {
			t.Errorf("Resolve(%+v) error = %v, want MISSING_OPTION", raw, err)
			continue
		}
		if got := apperrors.UserMessage(err); got != "Missing Echart Option" {
			t.Errorf("message = %q", got)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	req, err := Resolve(RawOptions{Input: lineOption})
	if err != nil {
		t.Fatal(err)
	}
	if req.Width != DefaultWidth || req.Height != DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", req.Width, req.Height, DefaultWidth, DefaultHeight)
	}
	if req.Format != FormatSVG {
		t.Errorf("Format = %q, want svg", req.Format)
	}
	if req.Buffer {
		t.Error("Buffer should default to false")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawOptions
		format string
	}{
		{"from extension", RawOptions{Input: lineOption, Output: "chart.png"}, "png"},
		{"explicit wins", RawOptions{Input: lineOption, Output: "chart.png", Format: "jpeg"}, "jpeg"},
		{"explicit lower-cased", RawOptions{Input: lineOption, Format: "WEBP"}, "webp"},
		{"no extension", RawOptions{Input: lineOption, Output: "chart"}, "svg"},
		{"unknown kept", RawOptions{Input: lineOption, Format: "bogus"}, "bogus"},
		{"default format", RawOptions{Input: lineOption, DefaultFormat: "PNG"}, "png"},
		{"extension beats default", RawOptions{Input: lineOption, Output: "a.gif", DefaultFormat: "png"}, "gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Resolve(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			if req.Format != tt.format {
				t.Errorf("Format = %q, want %q", req.Format, tt.format)
			}
		})
	}
}

func TestResolveSize(t *testing.T) {
	req, err := Resolve(RawOptions{Input: lineOption, Width: "800px", Height: "600pt"})
	if err != nil {
		t.Fatal(err)
	}
	if req.Width != 800 || req.Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", req.Width, req.Height)
	}

	for _, raw := range []RawOptions{
		{Input: lineOption, Width: "wide"},
		{Input: lineOption, Height: "0"},
	} {
		if _, err := Resolve(raw); !apperrors.Is(err, apperrors.ErrCodeInvalidSize) {
			t.Errorf("Resolve(%+v) error = %v, want INVALID_SIZE", raw, err)
		}
	}
}

func TestResolveInvalidOption(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{not json"},
		{"array", "[1,2,3]"},
		{"string", `"chart"`},
		{"number", "42"},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(RawOptions{Input: tt.input})
			if !apperrors.Is(err, apperrors.ErrCodeInvalidOption) {
				t.Fatalf("error = %v, want INVALID_OPTION", err)
			}
			if got := apperrors.UserMessage(err); got != "Invalid Echart Option" {
				t.Errorf("message = %q", got)
			}
			if causes := apperrors.Causes(err); len(causes) != 2 {
				t.Errorf("Causes() = %v, want inline and file causes", causes)
			}
		})
	}
}

func TestResolveFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "option.json")
	if err := os.WriteFile(path, []byte(lineOption), 0o644); err != nil {
		t.Fatal(err)
	}

	req, err := Resolve(RawOptions{Args: []string{path, filepath.Join(dir, "out.gif")}})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if req.Option.Title() != "Sales" {
		t.Errorf("option not read from file: %v", req.Option)
	}
	if req.Format != "gif" {
		t.Errorf("Format = %q, want gif", req.Format)
	}

	// stdin carrying a path with a trailing newline
	if _, err := Resolve(RawOptions{Stdin: path + "\n"}); err != nil {
		t.Errorf("Resolve(stdin path) error = %v", err)
	}
}

func TestResolveFileNotObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	if err := os.WriteFile(path, []byte(`[{"series":[]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(RawOptions{Input: path}); !apperrors.Is(err, apperrors.ErrCodeInvalidOption) {
		t.Errorf("error = %v, want INVALID_OPTION", err)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusPrinted:     "printed",
		StatusBuffered:    "buffered",
		StatusSaved:       "saved",
		StatusUnsupported: "unsupported",
		Status(9):         "Status(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestResolveInlineOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "option.json")
	if err := os.WriteFile(path, []byte(lineOption), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(RawOptions{Input: path, InlineOnly: true})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidOption) {
		t.Fatalf("error = %v, want INVALID_OPTION", err)
	}
	if causes := apperrors.Causes(err); len(causes) != 1 {
		t.Errorf("Causes() = %v, want only the parse error", causes)
	}

	if _, err := Resolve(RawOptions{Input: lineOption, InlineOnly: true}); err != nil {
		t.Errorf("inline JSON should resolve: %v", err)
	}
}

func TestResolveExamples(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "options", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no example options found")
	}

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			req, err := Resolve(RawOptions{Args: []string{path}})
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			svg, err := RenderSVG(req.Option, req.Width, req.Height)
			if err != nil {
				t.Fatalf("RenderSVG: %v", err)
			}
			if !strings.Contains(string(svg), "<svg") {
				t.Error("output is not SVG")
			}
		})
	}
}
