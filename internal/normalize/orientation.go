package normalize

import (
	"bytes"
	"image"

	"github.com/rwcarlsen/goexif/exif"
)

// readOrientation extracts the EXIF orientation tag from the raw image
// bytes. Anything missing or out of range counts as orientation 1.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// applyOrientation rewrites the pixel data so the image displays upright
// without its EXIF orientation tag. Orientations 5-8 swap width and height.
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dst *image.RGBA
	if orientation <= 4 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case 2: // mirrored horizontally
				dst.Set(w-1-x, y, c)
			case 3: // rotated 180
				dst.Set(w-1-x, h-1-y, c)
			case 4: // mirrored vertically
				dst.Set(x, h-1-y, c)
			case 5: // transposed
				dst.Set(y, x, c)
			case 6: // rotated 90 CW
				dst.Set(h-1-y, x, c)
			case 7: // transverse
				dst.Set(h-1-y, w-1-x, c)
			case 8: // rotated 270 CW
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}
