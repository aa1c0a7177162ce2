// Package pipeline turns a chart description into output bytes.
//
// It is shared by the CLI and the HTTP server. The CLI resolves its flags,
// positional arguments and stdin into a [Request] with [Resolve], then hands
// it to a [Runner]:
//
//	req, err := pipeline.Resolve(pipeline.RawOptions{
//	    Input:  `{"series":[{"type":"line","data":[1,2,3]}]}`,
//	    Output: "chart.png",
//	})
//	if err != nil {
//	    return err // MISSING_OPTION, INVALID_OPTION or INVALID_SIZE
//	}
//	runner := pipeline.NewRunner(nil, nil, nil, logger)
//	result, err := runner.Execute(ctx, req, os.Stdout)
//
// [Runner.Execute] never exits the process. It reports what it did as a
// [Status]; an unsupported format is a status, not an error.
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/chartgen/pkg/echarts"
)

const (
	// DefaultWidth is the chart width in pixels when none is given.
	DefaultWidth = 1024

	// DefaultHeight is the chart height in pixels when none is given.
	DefaultHeight = 768

	// MaxSize is the largest accepted width or height in pixels.
	MaxSize = 16384

	// DefaultTTL is how long rendered artifacts stay cached.
	DefaultTTL = 7 * 24 * time.Hour
)

// FormatSVG is the vector format produced by the charting engine.
const FormatSVG = "svg"

// Request is a fully resolved render request.
type Request struct {
	Option echarts.Option // chart description
	Output string         // target path or s3:// URL; empty means stdout
	Format string         // svg or a raster format name, lower-case
	Width  int
	Height int
	Buffer bool // print the bytes as a JSON array instead of writing them
}

// Status says which branch of the dispatch a request took.
type Status int

const (
	// StatusPrinted means the SVG text was written to stdout.
	StatusPrinted Status = iota
	// StatusBuffered means the bytes were printed as a JSON array.
	StatusBuffered
	// StatusSaved means the bytes were written to the output target.
	StatusSaved
	// StatusUnsupported means the format is not svg and not in the raster
	// set. Nothing was written.
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusPrinted:
		return "printed"
	case StatusBuffered:
		return "buffered"
	case StatusSaved:
		return "saved"
	case StatusUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result describes a completed request.
type Result struct {
	Status Status
	Format string
	Output string // target written to, for StatusSaved
	Bytes  int    // size of the rendered artifact
	Cached bool   // artifact came from the cache
}
