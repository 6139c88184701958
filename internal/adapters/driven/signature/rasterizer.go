// Package signature renders captured signatures to PNG data URLs using
// golang.org/x/image: x/image/vector strokes drawn signatures and the Go
// fonts render typed ones.
package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// Ensure Rasterizer implements the interface.
var _ driven.SignatureRasterizer = (*Rasterizer)(nil)

// Canvas size and pen settings of the signature pad.
const (
	CanvasWidth  = 600
	CanvasHeight = 200

	penWidth = 2.0
	fontSize = 48
)

var fonts = struct {
	once   sync.Once
	err    error
	parsed map[domain.SignatureFont]*opentype.Font
}{}

func loadFonts() (map[domain.SignatureFont]*opentype.Font, error) {
	fonts.once.Do(func() {
		sources := map[domain.SignatureFont][]byte{
			domain.FontSignature:   gobolditalic.TTF,
			domain.FontHandwritten: goitalic.TTF,
			domain.FontStandard:    goregular.TTF,
		}
		fonts.parsed = make(map[domain.SignatureFont]*opentype.Font, len(sources))
		for name, ttf := range sources {
			f, err := opentype.Parse(ttf)
			if err != nil {
				fonts.err = fmt.Errorf("parse %s font: %w", name, err)
				return
			}
			fonts.parsed[name] = f
		}
	})
	return fonts.parsed, fonts.err
}

// Rasterizer renders signature input on a white 600x200 canvas in black ink.
type Rasterizer struct{}

// NewRasterizer creates a new signature rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Rasterize renders in and returns a data:image/png;base64 URL.
func (r *Rasterizer) Rasterize(in domain.SignatureInput) (string, error) {
	if in.IsEmpty() {
		return "", fmt.Errorf("%w: %s", domain.ErrEmptySignature, in.EmptyMessage())
	}

	img := image.NewRGBA(image.Rect(0, 0, CanvasWidth, CanvasHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	var err error
	switch in.Mode {
	case domain.SignatureDraw:
		drawStrokes(img, in)
	case domain.SignatureType:
		err = drawName(img, strings.TrimSpace(in.Name), in.Font)
	default:
		err = fmt.Errorf("%w: unknown signature mode %q", domain.ErrInvalidInput, in.Mode)
	}
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode signature: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// drawStrokes scales pad coordinates onto the canvas and strokes each
// segment as a filled quad.
func drawStrokes(dst draw.Image, in domain.SignatureInput) {
	sx, sy := 1.0, 1.0
	if in.PadWidth > 0 {
		sx = CanvasWidth / in.PadWidth
	}
	if in.PadHeight > 0 {
		sy = CanvasHeight / in.PadHeight
	}

	z := vector.NewRasterizer(CanvasWidth, CanvasHeight)
	ink := image.NewUniform(color.Black)
	for _, stroke := range in.Strokes {
		for i := range stroke {
			p0 := stroke[i]
			p1 := p0
			if i+1 < len(stroke) {
				p1 = stroke[i+1]
			} else if len(stroke) > 1 {
				continue
			}
			z.Reset(CanvasWidth, CanvasHeight)
			segment(z, p0.X*sx, p0.Y*sy, p1.X*sx, p1.Y*sy)
			z.Draw(dst, dst.Bounds(), ink, image.Point{})
		}
	}
}

// segment adds a penWidth-wide quad from (x0,y0) to (x1,y1). A zero-length
// segment becomes a square dot.
func segment(z *vector.Rasterizer, x0, y0, x1, y1 float64) {
	half := penWidth / 2
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		dx, dy, length = 1, 0, 1
		x0 -= half
		x1 += half
	}
	nx, ny := -dy/length*half, dx/length*half

	z.MoveTo(float32(x0+nx), float32(y0+ny))
	z.LineTo(float32(x1+nx), float32(y1+ny))
	z.LineTo(float32(x1-nx), float32(y1-ny))
	z.LineTo(float32(x0-nx), float32(y0-ny))
	z.ClosePath()
}

// drawName renders the typed name centred on the canvas.
func drawName(dst draw.Image, name string, choice domain.SignatureFont) error {
	parsed, err := loadFonts()
	if err != nil {
		return err
	}
	f, ok := parsed[choice]
	if !ok {
		f = parsed[domain.FontSignature]
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	width := font.MeasureString(face, name)
	metrics := face.Metrics()
	baseline := (fixed.I(CanvasHeight) + metrics.Ascent - metrics.Descent) / 2

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: (fixed.I(CanvasWidth) - width) / 2, Y: baseline},
	}
	d.DrawString(name)
	return nil
}
