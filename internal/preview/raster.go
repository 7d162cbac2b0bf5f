package preview

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"openResume/internal/pdf"
	"openResume/internal/render"
)

// Rasterizer turns one page of a positioned document into a bitmap at the
// given scale (pixels per point).
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *pdf.Document, page int, scale float64) (image.Image, error)
}

// ImageRasterizer 用 Go 字体在内存中光栅化页面。它与 PDF 编码器消费
// 同一份绘制指令，所以预览和导出的版式天然一致。
type ImageRasterizer struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	style string
	size  int // size in 1/4 pt steps, keeps the cache bounded
}

func NewImageRasterizer() (*ImageRasterizer, error) {
	fonts := make(map[string]*opentype.Font, 4)
	for style, data := range map[string][]byte{
		"":   goregular.TTF,
		"B":  gobold.TTF,
		"I":  goitalic.TTF,
		"BI": gobolditalic.TTF,
	} {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse preview font %q: %w", style, err)
		}
		fonts[style] = f
	}
	return &ImageRasterizer{fonts: fonts, faces: make(map[faceKey]font.Face)}, nil
}

func (r *ImageRasterizer) face(style string, sizePt float64) (font.Face, error) {
	if _, ok := r.fonts[style]; !ok {
		style = ""
	}
	key := faceKey{style: style, size: int(sizePt * 4)}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(r.fonts[style], &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build preview face: %w", err)
	}
	r.faces[key] = f
	return f, nil
}

// Rasterize paints the requested page. The context is checked between ops so
// a superseded render stops quickly.
func (r *ImageRasterizer) Rasterize(ctx context.Context, doc *pdf.Document, page int, scale float64) (image.Image, error) {
	if page < 0 || page >= len(doc.Pages) {
		return nil, fmt.Errorf("rasterize: page %d out of range", page)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("rasterize: invalid scale %f", scale)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := int(math.Ceil(doc.PageWidth * scale))
	h := int(math.Ceil(doc.PageHeight * scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	bg := hexColor(doc.Background)
	if doc.Background == "" {
		bg = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, op := range doc.Pages[page].Ops {
		if i%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := r.paintOp(img, op, scale); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (r *ImageRasterizer) paintOp(img *image.RGBA, op pdf.DrawOp, scale float64) error {
	c := hexColor(op.Color)
	switch op.Kind {
	case pdf.OpText:
		size := op.Size
		if size <= 0 {
			size = 12
		}
		face, err := r.face(op.FontStyle, size*scale)
		if err != nil {
			return err
		}
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(int(op.X*scale), int(op.Y*scale)),
		}
		d.DrawString(op.Text)
	case pdf.OpLine:
		fillRect(img, op.X*scale, op.Y*scale-op.H*scale/2, op.W*scale, math.Max(op.H*scale, 1), c)
	case pdf.OpRect:
		fillRect(img, op.X*scale, op.Y*scale, op.W*scale, op.H*scale, c)
	case pdf.OpCircle:
		fillCircle(img, op.X*scale, op.Y*scale, op.W*scale, c)
	}
	return nil
}

func fillRect(img *image.RGBA, x, y, w, h float64, c color.Color) {
	rect := image.Rect(int(x), int(y), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func fillCircle(img *image.RGBA, cx, cy, radius float64, c color.Color) {
	minX, maxX := int(cx-radius), int(math.Ceil(cx+radius))
	minY, maxY := int(cy-radius), int(math.Ceil(cy+radius))
	r2 := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				img.Set(x, y, c)
			}
		}
	}
}

func hexColor(s string) color.RGBA {
	r, g, b := render.HexRGB(s)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
