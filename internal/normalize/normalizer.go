// Package normalize standardizes uploaded images for face recognition:
// bounded dimensions, a fixed 3-channel color model, pixel-level EXIF
// orientation, and a best-effort JPEG byte budget.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	xdraw "golang.org/x/image/draw"
)

// ErrDecode is returned when the input bytes are not a decodable image.
var ErrDecode = errors.New("not a decodable image")

// Options controls one normalization run.
type Options struct {
	TargetBytes    int // byte budget the quality loop aims for
	MaxDimension   int // longest output edge in pixels
	InitialQuality int // first JPEG encode quality
	QualityFloor   int // lowest quality the loop falls back to
	QualityStep    int // quality decrement per re-encode
	MaxAttempts    int // hard cap on total encodes
}

// Result reports what one normalization run did. Missing the byte budget
// is not an error; the result simply carries the achieved size and quality.
type Result struct {
	Data []byte `json:"-"` // normalized JPEG bytes

	OriginalBytes  int `json:"original_bytes"`
	FinalBytes     int `json:"final_bytes"`
	OriginalWidth  int `json:"original_width"`
	OriginalHeight int `json:"original_height"`
	FinalWidth     int `json:"final_width"`
	FinalHeight    int `json:"final_height"`
	Quality        int `json:"quality"`
	Attempts       int `json:"attempts"`
}

// Normalize decodes the image, applies EXIF orientation to the pixels,
// converts to a 3-channel model, downscales to fit MaxDimension (never
// upscales), and encodes as JPEG, stepping the quality down until the
// output fits TargetBytes, quality reaches QualityFloor, or MaxAttempts
// encodes have run. Output is deterministic for a given input and options.
func Normalize(data []byte, opts Options) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	// Bake the orientation into the pixels; the re-encode below writes no
	// EXIF, so downstream consumers never reinterpret orientation.
	img = applyOrientation(img, readOrientation(data))

	rgba := toRGBA(img)
	width := rgba.Bounds().Dx()
	height := rgba.Bounds().Dy()

	newWidth, newHeight := fitDimensions(width, height, opts.MaxDimension)
	if newWidth != width || newHeight != height {
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		xdraw.CatmullRom.Scale(resized, resized.Bounds(), rgba, rgba.Bounds(), xdraw.Src, nil)
		rgba = resized
	}

	quality := opts.InitialQuality
	encoded, err := encodeJPEG(rgba, quality)
	if err != nil {
		return nil, err
	}
	attempts := 1

	for len(encoded) > opts.TargetBytes && quality > opts.QualityFloor && attempts < opts.MaxAttempts {
		quality -= opts.QualityStep
		if quality < opts.QualityFloor {
			quality = opts.QualityFloor
		}
		encoded, err = encodeJPEG(rgba, quality)
		if err != nil {
			return nil, err
		}
		attempts++
	}

	return &Result{
		Data:           encoded,
		OriginalBytes:  len(data),
		FinalBytes:     len(encoded),
		OriginalWidth:  width,
		OriginalHeight: height,
		FinalWidth:     newWidth,
		FinalHeight:    newHeight,
		Quality:        quality,
		Attempts:       attempts,
	}, nil
}

// fitDimensions scales (width, height) to fit maxDimension on the longest
// edge, preserving aspect ratio. Images already within bounds keep their
// dimensions; the scale factor is capped at 1.
func fitDimensions(width, height, maxDimension int) (int, int) {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxDimension {
		return width, height
	}

	scale := float64(maxDimension) / float64(longest)
	return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale))
}

// toRGBA redraws the image into an RGBA buffer, collapsing palette,
// grayscale, and alpha variants into one color model.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// CompressionRatio returns how much smaller the output is, in percent.
func (r *Result) CompressionRatio() float64 {
	if r.OriginalBytes == 0 {
		return 0
	}
	return float64(r.OriginalBytes-r.FinalBytes) / float64(r.OriginalBytes) * 100
}
