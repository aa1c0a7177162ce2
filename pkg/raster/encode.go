package raster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"golang.org/x/image/tiff"

	apperrors "github.com/matzehuels/chartgen/pkg/errors"
)

const jpegQuality = 90

// Check returns an error unless format is supported and has an encoder.
// Run it before drawing the chart.
func Check(format string) error {
	if !IsSupported(format) {
		return apperrors.New(apperrors.ErrCodeUnsupportedFormat, "Unsupported format: %s", format)
	}
	if !HasEncoder(format) {
		return apperrors.New(apperrors.ErrCodeNoEncoder, "no %s encoder available", format)
	}
	return nil
}

// Encode encodes img as format, flattening it onto white first unless the
// format keeps transparency.
func Encode(ctx context.Context, img image.Image, format string) ([]byte, error) {
	if err := Check(format); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rgba := toRGBA(img)
	if !IsTransparent(format) {
		rgba = Flatten(rgba, color.White)
	}

	var buf bytes.Buffer
	if err := encodeImage(&buf, rgba, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque background.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func encodeImage(buf *bytes.Buffer, img *image.RGBA, format string) error {
	switch format {
	case "png":
		return png.Encode(buf, img)
	case "jpeg", "jpg":
		return jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		return gif.Encode(buf, img, nil)
	case "tiff", "tif":
		return tiff.Encode(buf, img, &tiff.Options{Compression: tiff.Deflate})
	case "webp":
		return webp.Encode(buf, img)
	case "avif":
		return avif.Encode(buf, img)
	case "raw":
		_, err := buf.Write(Raw(img, IsTransparent(format)))
		return err
	}
	return apperrors.New(apperrors.ErrCodeNoEncoder, "no %s encoder available", format)
}

// Raw returns the pixels of img packed row by row, 4 bytes per pixel (RGBA)
// with alpha, otherwise 3 (RGB).
func Raw(img *image.RGBA, alpha bool) []byte {
	b := img.Bounds()
	channels := 3
	if alpha {
		channels = 4
	}
	out := make([]byte, 0, b.Dx()*b.Dy()*channels)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		if alpha {
			out = append(out, row...)
			continue
		}
		for i := 0; i < len(row); i += 4 {
			out = append(out, row[i], row[i+1], row[i+2])
		}
	}
	return out
}
