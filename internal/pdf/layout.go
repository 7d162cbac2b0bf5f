package pdf

import (
	"fmt"

	"openResume/internal/render"
)

// Rating track geometry, matching the base style sheet.
const (
	barWidth  = 60
	barHeight = 6
	dotRadius = 3
	dotGap    = 3
)

const (
	tagPadX = 8
	tagPadY = 2
)

// layoutFlow runs the page-flow pass: each top-level block is placed at the
// cursor, moving to a fresh page when it does not fit but would fit on an
// empty page. Blocks taller than a whole page are placed anyway and overflow.
func layoutFlow(blocks []*render.Node, m *measurer, background string) *Document {
	doc := &Document{PageWidth: PageWidth, PageHeight: PageHeight, Background: background}
	doc.Pages = append(doc.Pages, Page{Number: 1})

	contentW := PageWidth - 2*PageMargin
	usable := PageHeight - 2*PageMargin
	y := float64(PageMargin)

	for _, b := range blocks {
		if b == nil {
			continue
		}
		ops, h := placeNode(b, PageMargin, y, contentW, m)
		if y > PageMargin && y+h > PageHeight-PageMargin && h <= usable {
			doc.Pages = append(doc.Pages, Page{Number: len(doc.Pages) + 1})
			y = PageMargin
			ops, h = placeNode(b, PageMargin, y, contentW, m)
		}
		page := &doc.Pages[len(doc.Pages)-1]
		page.Ops = append(page.Ops, ops...)
		y += h
	}
	return doc
}

// placeNode lays out a node at (x, y) within width w and returns its draw
// ops plus the consumed height including the node's trailing space.
func placeNode(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	if n == nil {
		return nil, 0
	}
	switch n.Kind {
	case render.KindText:
		return placeText(n, x, y, w, m)
	case render.KindRule:
		return placeRule(n, x, y, w)
	case render.KindBar:
		return placeBar(n, x, y)
	case render.KindDots:
		return placeDots(n, x, y)
	case render.KindRow:
		return placeRow(n, x, y, w, m)
	case render.KindStack:
		return placeStack(n, x, y, w, m)
	case render.KindInline:
		return placeInline(n, x, y, w, m)
	case render.KindGrid:
		return placeGrid(n, x, y, w, m)
	case render.KindList:
		return placeList(n, x, y, w, m)
	default:
		return nil, 0
	}
}

func placeText(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	st := n.Style
	size := st.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	lineH := size*lineHeightRatio + st.LineGap

	lines := m.wrap(n.Text, size, st.FontStyle, w-st.Indent)
	var ops []DrawOp
	for i, line := range lines {
		lw := m.width(line, size, st.FontStyle)
		tx := x + st.Indent
		switch st.Align {
		case "center":
			tx = x + (w-lw)/2
		case "right":
			tx = x + w - lw
		}
		top := y + float64(i)*lineH
		baseline := top + size

		if st.Background != "" {
			ops = append(ops, DrawOp{
				Kind: OpRect,
				X:    tx - tagPadX, Y: top - tagPadY,
				W: lw + 2*tagPadX, H: size + 2*tagPadY + size*0.2,
				Color: st.Background,
			})
		}
		ops = append(ops, DrawOp{
			Kind: OpText,
			X:    tx, Y: baseline,
			W: lw, H: size,
			Text: line, Href: n.Href,
			Size: size, FontStyle: st.FontStyle, Color: st.Color,
		})
		if st.Underline > 0 {
			uc := st.BorderColor
			if uc == "" {
				uc = st.Color
			}
			ops = append(ops, DrawOp{
				Kind: OpLine,
				X:    tx, Y: baseline + 2,
				W: lw, H: st.Underline,
				Color: uc,
			})
		}
	}
	return ops, float64(len(lines))*lineH + st.SpaceAfter
}

func placeRule(n *render.Node, x, y, w float64) ([]DrawOp, float64) {
	thickness := n.Style.Underline
	if thickness <= 0 {
		thickness = 1
	}
	op := DrawOp{Kind: OpLine, X: x, Y: y + thickness/2, W: w, H: thickness, Color: n.Style.BorderColor}
	return []DrawOp{op}, thickness + n.Style.SpaceAfter
}

func placeBar(n *render.Node, x, y float64) ([]DrawOp, float64) {
	ops := []DrawOp{
		{Kind: OpRect, X: x, Y: y, W: barWidth, H: barHeight, Color: n.Style.Background},
		{Kind: OpRect, X: x, Y: y, W: barWidth * clampRatio(n.Ratio), H: barHeight, Color: n.Style.Color},
	}
	return ops, barHeight + n.Style.SpaceAfter
}

func placeDots(n *render.Node, x, y float64) ([]DrawOp, float64) {
	var ops []DrawOp
	for i := 0; i < n.Total; i++ {
		color := n.Style.BorderColor
		if i < n.Filled {
			color = n.Style.Color
		}
		cx := x + float64(i)*(2*dotRadius+dotGap) + dotRadius
		ops = append(ops, DrawOp{Kind: OpCircle, X: cx, Y: y + dotRadius, W: dotRadius, Color: color})
	}
	return ops, 2*dotRadius + n.Style.SpaceAfter
}

// placeRow 水平排布：除最后一个子节点外按固有宽度放置，
// 最后一个占满剩余宽度（如 bullet 行的正文部分）。
func placeRow(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	gap := n.Style.Gap
	if gap <= 0 {
		gap = 4
	}
	var ops []DrawOp
	cx := x
	maxH := 0.0
	for i, child := range n.Children {
		cw := intrinsicWidth(child, m)
		if i == len(n.Children)-1 {
			cw = w - (cx - x)
		}
		if cw <= 0 {
			break
		}
		childOps, ch := placeNode(child, cx, y, cw, m)
		ops = append(ops, childOps...)
		if ch > maxH {
			maxH = ch
		}
		cx += intrinsicWidth(child, m) + gap
	}
	return ops, maxH + n.Style.SpaceAfter
}

func placeStack(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	var ops []DrawOp
	cy := y
	for i, child := range n.Children {
		childOps, ch := placeNode(child, x, cy, w, m)
		ops = append(ops, childOps...)
		cy += ch
		if i < len(n.Children)-1 {
			cy += n.Style.Gap
		}
	}
	return ops, cy - y + n.Style.SpaceAfter
}

// placeInline 自动换行的水平流。预先测量每个子节点宽度、
// 分行后再放置，以便支持整行居中。
func placeInline(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	gap := n.Style.Gap
	if gap <= 0 {
		gap = 6
	}

	type placed struct {
		node  *render.Node
		width float64
	}
	var rows [][]placed
	var row []placed
	rowW := 0.0
	for _, child := range n.Children {
		cw := intrinsicWidth(child, m)
		if cw > w {
			cw = w
		}
		if len(row) > 0 && rowW+gap+cw > w {
			rows = append(rows, row)
			row = nil
			rowW = 0
		}
		if len(row) > 0 {
			rowW += gap
		}
		row = append(row, placed{child, cw})
		rowW += cw
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var ops []DrawOp
	cy := y
	for _, row := range rows {
		total := 0.0
		for i, p := range row {
			if i > 0 {
				total += gap
			}
			total += p.width
		}
		cx := x
		if n.Style.Align == "center" {
			cx = x + (w-total)/2
		}
		rowH := 0.0
		for _, p := range row {
			childOps, ch := placeNode(p.node, cx, cy, p.width, m)
			ops = append(ops, childOps...)
			if ch > rowH {
				rowH = ch
			}
			cx += p.width + gap
		}
		cy += rowH
	}
	return ops, cy - y + n.Style.SpaceAfter
}

func placeGrid(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	cols := n.Columns
	if cols <= 0 {
		cols = 1
	}
	gap := n.Style.Gap
	trackW := (w - gap*float64(cols-1)) / float64(cols)

	var ops []DrawOp
	rowY := y
	for start := 0; start < len(n.Children); start += cols {
		end := start + cols
		if end > len(n.Children) {
			end = len(n.Children)
		}
		rowH := 0.0
		for i, cell := range n.Children[start:end] {
			cx := x + float64(i)*(trackW+gap)
			cellOps, ch := placeNode(cell, cx, rowY, trackW, m)
			ops = append(ops, cellOps...)
			if ch > rowH {
				rowH = ch
			}
		}
		rowY += rowH + gap
	}
	height := rowY - y
	if len(n.Children) > 0 {
		height -= gap
	}
	return ops, height + n.Style.SpaceAfter
}

const listIndent = 16

func placeList(n *render.Node, x, y, w float64, m *measurer) ([]DrawOp, float64) {
	var ops []DrawOp
	cy := y
	for i, child := range n.Children {
		if n.Ordered {
			prefix := fmt.Sprintf("%d.", i+1)
			ops = append(ops, DrawOp{
				Kind: OpText,
				X:    x, Y: cy + defaultFontSize,
				W: m.width(prefix, defaultFontSize, ""), H: defaultFontSize,
				Text: prefix, Size: defaultFontSize, Color: child.Style.Color,
			})
			childOps, ch := placeNode(child, x+listIndent, cy, w-listIndent, m)
			ops = append(ops, childOps...)
			cy += ch + 2
			continue
		}
		childOps, ch := placeNode(child, x, cy, w, m)
		ops = append(ops, childOps...)
		cy += ch + 2
	}
	height := cy - y
	if len(n.Children) > 0 {
		height -= 2
	}
	return ops, height + n.Style.SpaceAfter
}

// intrinsicWidth estimates the natural width of a node when it is packed
// horizontally inside a row or inline flow.
func intrinsicWidth(n *render.Node, m *measurer) float64 {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case render.KindText:
		size := n.Style.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		w := m.width(n.Text, size, n.Style.FontStyle) + n.Style.Indent
		if n.Style.Background != "" {
			w += 2 * tagPadX
		}
		return w
	case render.KindBar:
		return barWidth
	case render.KindDots:
		if n.Total <= 0 {
			return 0
		}
		return float64(n.Total)*(2*dotRadius+dotGap) - dotGap
	default:
		total := 0.0
		for i, child := range n.Children {
			if i > 0 {
				total += n.Style.Gap
			}
			total += intrinsicWidth(child, m)
		}
		return total
	}
}

func clampRatio(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
