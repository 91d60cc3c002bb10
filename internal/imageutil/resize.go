// Package imageutil scales generated card art down to the thumbnail
// size stored in the database. Bilinear resampling on NRGBA keeps the
// alpha channel of transparent-background art intact.
package imageutil

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"math"
)

// ResizePNGBytes decodes PNG bytes, scales the image to the target size
// and re-encodes it as PNG.
func ResizePNGBytes(pngBytes []byte, dstW, dstH int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, err
	}
	out, err := ResizeImage(src, dstW, dstH)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResizeImage scales src to dstW x dstH with bilinear interpolation and
// returns an *image.NRGBA. A same-size call still normalizes the pixel
// format so downstream encoding is uniform.
func ResizeImage(src image.Image, dstW, dstH int) (image.Image, error) {
	if dstW <= 0 || dstH <= 0 {
		return nil, errors.New("invalid target size")
	}
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, errors.New("source image has zero size")
	}

	norm := image.NewNRGBA(image.Rect(0, 0, srcW, srcH))
	draw.Draw(norm, norm.Bounds(), src, b.Min, draw.Src)
	if srcW == dstW && srcH == dstH {
		return norm, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	sx := float64(srcW) / float64(dstW)
	sy := float64(srcH) / float64(dstH)

	px := func(x, y int) []uint8 {
		if x < 0 {
			x = 0
		} else if x >= srcW {
			x = srcW - 1
		}
		if y < 0 {
			y = 0
		} else if y >= srcH {
			y = srcH - 1
		}
		off := norm.PixOffset(x, y)
		return norm.Pix[off : off+4]
	}

	for j := 0; j < dstH; j++ {
		fy := (float64(j)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		wy := fy - float64(y0)
		for i := 0; i < dstW; i++ {
			fx := (float64(i)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			wx := fx - float64(x0)

			p00 := px(x0, y0)
			p10 := px(x0+1, y0)
			p01 := px(x0, y0+1)
			p11 := px(x0+1, y0+1)

			off := dst.PixOffset(i, j)
			for c := 0; c < 4; c++ {
				v := (1-wx)*(1-wy)*float64(p00[c]) +
					wx*(1-wy)*float64(p10[c]) +
					(1-wx)*wy*float64(p01[c]) +
					wx*wy*float64(p11[c])
				if v < 0 {
					v = 0
				} else if v > 255 {
					v = 255
				}
				dst.Pix[off+c] = uint8(v)
			}
		}
	}
	return dst, nil
}
