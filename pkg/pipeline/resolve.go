package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/chartgen/pkg/echarts"
	apperrors "github.com/matzehuels/chartgen/pkg/errors"
)

// RawOptions is the unparsed input of one invocation.
type RawOptions struct {
	Input  string // inline JSON or a path to a JSON file
	Output string
	Format string
	Width  string // may carry a unit suffix, e.g. "1024px"
	Height string
	Buffer bool

	// DefaultFormat applies when neither Format nor the output extension
	// names one. Empty means svg.
	DefaultFormat string

	// InlineOnly stops Input from being read as a file path. Servers set
	// it so request bodies cannot name local files.
	InlineOnly bool

	Args  []string // positional arguments: [input] [output]
	Stdin string   // stdin contents, empty when stdin is a terminal
}

// Resolve builds a Request from raw options.
//
// Non-empty stdin takes the input slot first. Positional arguments then fill
// whatever is still unset: a single argument is the output when an input is
// already known and the input otherwise; two arguments are input and output.
func Resolve(raw RawOptions) (*Request, error) {
	input, output := raw.Input, raw.Output
	if input == "" && strings.TrimSpace(raw.Stdin) != "" {
		input = raw.Stdin
	}

	switch len(raw.Args) {
	case 0:
	case 1:
		if input != "" {
			if output == "" {
				output = raw.Args[0]
			}
		} else {
			input = raw.Args[0]
		}
	default:
		if input == "" {
			input = raw.Args[0]
		}
		if output == "" {
			output = raw.Args[1]
		}
	}

	if strings.TrimSpace(input) == "" {
		return nil, apperrors.New(apperrors.ErrCodeMissingOption, "Missing Echart Option")
	}

	width, err := sizeOrDefault(raw.Width, DefaultWidth, "width")
	if err != nil {
		return nil, err
	}
	height, err := sizeOrDefault(raw.Height, DefaultHeight, "height")
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(raw.Format))
	if format == "" && output != "" {
		format = FormatFromPath(output)
	}
	if format == "" {
		format = strings.ToLower(raw.DefaultFormat)
	}
	if format == "" {
		format = FormatSVG
	}

	var opt echarts.Option
	if raw.InlineOnly {
		opt, err = ParseOption([]byte(input))
	} else {
		opt, err = DecodeOption(input)
	}
	if err != nil {
		return nil, err
	}

	return &Request{
		Option: opt,
		Output: output,
		Format: format,
		Width:  width,
		Height: height,
		Buffer: raw.Buffer,
	}, nil
}

func sizeOrDefault(raw string, def int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := ParseSize(raw)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInvalidSize, err, "invalid %s %q", name, raw)
	}
	return n, nil
}

// ParseSize parses a pixel size, ignoring a trailing unit such as "px".
// The result is rounded to the nearest pixel and must be in [1, MaxSize].
func ParseSize(raw string) (int, error) {
	s := strings.TrimRightFunc(strings.TrimSpace(raw), func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if s == "" {
		return 0, fmt.Errorf("no digits in %q", raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f > MaxSize {
		return 0, fmt.Errorf("size must be at most %d, got %s", MaxSize, s)
	}
	n := int(math.Round(f))
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", n)
	}
	return n, nil
}

// FormatFromPath returns the lower-cased extension of path without the dot,
// or "" when there is none.
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// DecodeOption parses input as a JSON object. When that fails, input is
// taken as a file path and the file's contents are parsed instead. If both
// fail the returned INVALID_OPTION error carries both causes.
func DecodeOption(input string) (echarts.Option, error) {
	opt, inlineErr := parseObject([]byte(input))
	if inlineErr == nil {
		return opt, nil
	}

	data, fileErr := os.ReadFile(strings.TrimSpace(input))
	if fileErr == nil {
		if opt, fileErr = parseObject(data); fileErr == nil {
			return opt, nil
		}
	}

	cause := errors.Join(
		fmt.Errorf("parse option: %w", inlineErr),
		fmt.Errorf("read option file: %w", fileErr),
	)
	return nil, apperrors.Wrap(apperrors.ErrCodeInvalidOption, cause, "Invalid Echart Option")
}

// ParseOption parses data as a JSON object, without the file fallback of
// DecodeOption.
func ParseOption(data []byte) (echarts.Option, error) {
	opt, err := parseObject(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidOption, err, "Invalid Echart Option")
	}
	return opt, nil
}

func parseObject(data []byte) (echarts.Option, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("option must be a JSON object, got %s", jsonKind(v))
	}
	return echarts.Option(m), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
