package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"openResume/internal/render"
)

// Encode serializes a positioned document into PDF bytes. The draw ops are
// already absolutely placed, so encoding is a straight replay with no layout
// decisions of its own.
func Encode(doc *Document) ([]byte, error) {
	f := gofpdf.New("P", "pt", "A4", "")
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	conv := f.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		f.AddPage()
		if doc.Background != "" && doc.Background != "#ffffff" {
			r, g, b := render.HexRGB(doc.Background)
			f.SetFillColor(int(r), int(g), int(b))
			f.Rect(0, 0, doc.PageWidth, doc.PageHeight, "F")
		}
		for _, op := range page.Ops {
			encodeOp(f, conv, op)
		}
	}

	if f.Err() {
		return nil, fmt.Errorf("encode pdf: %w", f.Error())
	}
	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeOp(f *gofpdf.Fpdf, conv func(string) string, op DrawOp) {
	switch op.Kind {
	case OpText:
		r, g, b := render.HexRGB(op.Color)
		f.SetTextColor(int(r), int(g), int(b))
		size := op.Size
		if size <= 0 {
			size = defaultFontSize
		}
		f.SetFont(fontFamily, op.FontStyle, size)
		f.Text(op.X, op.Y, conv(op.Text))
		if op.Href != "" {
			f.LinkString(op.X, op.Y-size, op.W, size, op.Href)
		}
	case OpLine:
		r, g, b := render.HexRGB(op.Color)
		f.SetDrawColor(int(r), int(g), int(b))
		f.SetLineWidth(op.H)
		f.Line(op.X, op.Y, op.X+op.W, op.Y)
	case OpRect:
		r, g, b := render.HexRGB(op.Color)
		f.SetFillColor(int(r), int(g), int(b))
		f.Rect(op.X, op.Y, op.W, op.H, "F")
	case OpCircle:
		r, g, b := render.HexRGB(op.Color)
		f.SetFillColor(int(r), int(g), int(b))
		f.Circle(op.X, op.Y, op.W, "F")
	}
}
