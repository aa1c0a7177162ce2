// Package pkg provides the libraries behind chartgen.
//
// # Overview
//
// chartgen renders ECharts options (JSON objects describing a chart) to SVG
// and raster images. The pkg directory is organized by concern:
//
//  1. [pipeline] - Request resolution and render dispatch
//  2. [echarts] - The charting engine: surface, chart instance, SVG output
//  3. [raster] - Bitmap to PNG, JPEG, GIF, TIFF, WebP, AVIF and raw pixels
//  4. [cache] - Artifact cache (null, file, Redis)
//  5. [output] - Output targets (local files, S3)
//  6. [errors] - Structured error codes
//  7. [observability] - Render, cache and server hooks
//
// # Architecture
//
// The data flow of one render:
//
//	flags, positional args, stdin
//	         ↓
//	    [pipeline.Resolve] (Request)
//	         ↓
//	    [echarts] (SVG, or a bitmap for raster formats)
//	         ↓
//	    [raster] (optional)
//	         ↓
//	    stdout, JSON byte array, file or s3:// object
//
// # Quick Start
//
//	req, err := pipeline.Resolve(pipeline.RawOptions{Input: "examples/options/pie.json"})
//	if err != nil {
//	    return err
//	}
//	png, err := pipeline.NewRunner(nil, nil, nil, nil).Render(ctx, &pipeline.Request{
//	    Option: req.Option,
//	    Format: "png",
//	    Width:  800,
//	    Height: 600,
//	})
package pkg
