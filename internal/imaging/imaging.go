// Package imaging prepares the shop logo for the invoice PDF header.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension bounds the logo's longer side in pixels. The PDF prints it at
// 30mm wide, so anything larger only bloats every invoice.
const MaxDimension = 600

const logoQuality = 85

// gofpdf embeds JPEG as-is, so both inputs end up as JPEG.
var logoFormats = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Logo is the shop logo as JPEG bytes plus its pixel size.
type Logo struct {
	Data   []byte
	Width  int
	Height int
}

// AspectRatio is height over width, used to size the logo on the page.
func (l *Logo) AspectRatio() float64 {
	if l.Width == 0 {
		return 0
	}
	return float64(l.Height) / float64(l.Width)
}

// PrepareLogo turns a JPEG or PNG logo file into a Logo. Transparent areas
// become white, matching the invoice paper.
func PrepareLogo(r io.Reader) (*Logo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := http.DetectContentType(data)
	if !logoFormats[format] {
		return nil, fmt.Errorf("unsupported logo format %s, use JPEG or PNG", format)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding logo: %w", err)
	}

	flat := flattenLogo(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: logoQuality}); err != nil {
		return nil, fmt.Errorf("encoding logo: %w", err)
	}

	b := flat.Bounds()
	return &Logo{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

// flattenLogo fits img into maxDim×maxDim on a white canvas.
func flattenLogo(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	newW, newH := w, h
	if w > maxDim || h > maxDim {
		if w > h {
			newW = maxDim
			newH = int(float64(h) * float64(maxDim) / float64(w))
		} else {
			newH = maxDim
			newW = int(float64(w) * float64(maxDim) / float64(h))
		}
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
