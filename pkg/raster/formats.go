// Package raster encodes chart bitmaps in raster image formats.
//
// The bitmap is flattened onto white unless the target format can carry
// transparency, then encoded:
//
//	png, err := raster.Encode(ctx, img, "png")
//
// The set of accepted format names is fixed (see [Formats]). A few of them
// (heic, heif and the JPEG 2000 family) have no Go encoder; asking for them
// returns an error with code NO_ENCODER.
package raster

import "slices"

// Formats is the supported raster format set, in a stable order.
var Formats = []string{
	"heic", "heif", "avif", "jpeg", "jpg", "png", "raw",
	"tiff", "tif", "webp", "gif", "jp2", "jpx", "j2k", "j2c",
}

// noEncoder lists supported names that have no Go encoder.
var noEncoder = []string{"heic", "heif", "jp2", "jpx", "j2k", "j2c"}

// TransparentFormats can store an alpha channel and are not flattened.
var TransparentFormats = []string{"png", "webp", "gif"}

// IsSupported reports whether format is in the supported raster set.
func IsSupported(format string) bool {
	return slices.Contains(Formats, format)
}

// HasEncoder reports whether format is supported and can be encoded.
func HasEncoder(format string) bool {
	return IsSupported(format) && !slices.Contains(noEncoder, format)
}

// IsTransparent reports whether format keeps transparency.
func IsTransparent(format string) bool {
	return slices.Contains(TransparentFormats, format)
}

// ContentType returns the MIME type for format, or
// application/octet-stream when there is no registered one.
func ContentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpeg", "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	case "tiff", "tif":
		return "image/tiff"
	case "heic", "heif":
		return "image/heif"
	case "jp2", "jpx", "j2k", "j2c":
		return "image/jp2"
	}
	return "application/octet-stream"
}
