package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// ---------------------------------------------------------------------------
// Cutout post-processing
// Vendor cutouts come back with soft halos and huge transparent borders.
// This pass hardens the alpha edge, crops to the visible content and caps the
// output size so ffmpeg overlays stay cheap.
// ---------------------------------------------------------------------------

const (
	alphaFloor   = 30   // below this a pixel becomes fully transparent
	alphaCeil    = 220  // above this a pixel becomes fully opaque
	cropMargin   = 40   // pixels of breathing room around the content box
	maxCutoutDim = 1600 // longest edge after resize
)

// PostProcessCutout cleans a provider cutout. The input must decode as an
// image; output is always PNG.
func PostProcessCutout(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cutout: %w", err)
	}

	img := hardenAlpha(src)

	box, ok := contentBounds(img)
	if !ok {
		return nil, fmt.Errorf("cutout is fully transparent")
	}
	img = cropWithMargin(img, box)

	if w, h := img.Rect.Dx(), img.Rect.Dy(); w > maxCutoutDim || h > maxCutoutDim {
		img = scaleDown(img, maxCutoutDim)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("failed to encode cutout: %w", err)
	}
	return out.Bytes(), nil
}

// hardenAlpha snaps near-transparent halo pixels to clear and near-opaque
// pixels to solid, keeping a narrow band of soft edge in between.
func hardenAlpha(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			switch {
			case c.A < alphaFloor:
				c = color.NRGBA{}
			case c.A > alphaCeil:
				c.A = 255
			}
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}

// contentBounds finds the bounding box of non-transparent pixels.
func contentBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Rect
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] != 0 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

func cropWithMargin(img *image.NRGBA, box image.Rectangle) *image.NRGBA {
	box = box.Inset(-cropMargin).Intersect(img.Rect)
	dst := image.NewNRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := 0; y < box.Dy(); y++ {
		srcOff := (box.Min.Y+y-img.Rect.Min.Y)*img.Stride + (box.Min.X-img.Rect.Min.X)*4
		dstOff := y * dst.Stride
		copy(dst.Pix[dstOff:dstOff+box.Dx()*4], img.Pix[srcOff:srcOff+box.Dx()*4])
	}
	return dst
}

// scaleDown resizes so the longest edge equals maxDim, nearest neighbor.
// Cutouts are displayed over motion blur so sampling quality barely matters.
func scaleDown(img *image.NRGBA, maxDim int) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}
	if nh < 1 {
		nh = 1
	}
	if nw < 1 {
		nw = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < nh; y++ {
		sy := y * h / nh
		for x := 0; x < nw; x++ {
			sx := x * w / nw
			so := sy*img.Stride + sx*4
			do := y*dst.Stride + x*4
			copy(dst.Pix[do:do+4], img.Pix[so:so+4])
		}
	}
	return dst
}
