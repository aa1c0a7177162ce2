package echarts

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Option is a chart description as decoded from JSON.
type Option map[string]any

// Series types understood by the renderer.
const (
	SeriesLine    = "line"
	SeriesScatter = "scatter"
	SeriesBar     = "bar"
	SeriesPie     = "pie"
)

// Series is one entry of option.series.
type Series struct {
	Type   string
	Name   string
	Stack  string
	Area   bool
	Points []Point
}

// Point is one data item of a series.
// X is the category index for category data, or the explicit x value of an
// [x, y] pair. Name is set for named items such as pie slices.
type Point struct {
	X     float64
	Y     float64
	Name  string
	Valid bool
}

// Clone returns a shallow copy of o.
func (o Option) Clone() Option {
	c := make(Option, len(o)+1)
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Title returns title.text, or the first title's text when title is a list.
func (o Option) Title() string {
	t := first(o["title"])
	if t == nil {
		return ""
	}
	text, _ := t["text"].(string)
	return text
}

// HasLegend reports whether a legend component is configured.
func (o Option) HasLegend() bool {
	switch v := o["legend"].(type) {
	case nil:
		return false
	case map[string]any:
		show, ok := v["show"].(bool)
		return !ok || show
	default:
		return true
	}
}

// Categories returns the labels of the first x axis, if it has data.
func (o Option) Categories() []string {
	axis := first(o["xAxis"])
	if axis == nil {
		return nil
	}
	data, _ := axis["data"].([]any)
	labels := make([]string, 0, len(data))
	for _, d := range data {
		if m, ok := d.(map[string]any); ok {
			d = m["value"]
		}
		labels = append(labels, label(d))
	}
	return labels
}

// Palette returns the color list of the option, or the default palette.
func (o Option) Palette() []string {
	raw, _ := o["color"].([]any)
	var colors []string
	for _, c := range raw {
		if s, ok := c.(string); ok && isHexColor(s) {
			colors = append(colors, s)
		}
	}
	if len(colors) == 0 {
		return defaultPalette
	}
	return colors
}

// Series decodes option.series. Entries that are not objects are skipped.
func (o Option) Series() []Series {
	var raw []any
	switch v := o["series"].(type) {
	case []any:
		raw = v
	case map[string]any:
		raw = []any{v}
	}

	out := make([]Series, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		s := Series{
			Type:  str(m["type"]),
			Name:  str(m["name"]),
			Stack: str(m["stack"]),
		}
		if s.Type == "" {
			s.Type = SeriesLine
		}
		_, s.Area = m["areaStyle"]
		data, _ := m["data"].([]any)
		s.Points = make([]Point, 0, len(data))
		for i, d := range data {
			s.Points = append(s.Points, point(i, d))
		}
		out = append(out, s)
	}
	return out
}

// point decodes one data item. Supported shapes are a scalar, an [x, y]
// pair, and an object with value (and optionally name).
func point(i int, d any) Point {
	p := Point{X: float64(i)}
	if m, ok := d.(map[string]any); ok {
		p.Name = str(m["name"])
		d = m["value"]
	}
	if pair, ok := d.([]any); ok {
		switch len(pair) {
		case 0:
			return p
		case 1:
			d = pair[0]
		default:
			if x, ok := number(pair[0]); ok {
				p.X = x
			}
			d = pair[len(pair)-1]
		}
	}
	p.Y, p.Valid = number(d)
	return p
}

// number converts a JSON scalar to a float. "-" and null are missing values.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return 0, false
}

// isHexColor reports whether s is a #rgb or #rrggbb color.
func isHexColor(s string) bool {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return false
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func first(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		if len(t) > 0 {
			m, _ := t[0].(map[string]any)
			return m
		}
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func label(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
