package pdf

// A4 dimensions in points, matching the fixed page size of the document
// primitive. 页面内边距与原始模板保持 32pt。
const (
	PageWidth  = 595.28
	PageHeight = 841.89
	PageMargin = 32
)

// OpKind tags a positioned draw operation.
type OpKind string

const (
	OpText   OpKind = "text"
	OpLine   OpKind = "line"
	OpRect   OpKind = "rect"
	OpCircle OpKind = "circle"
)

// DrawOp 是一条绝对定位的绘制指令。PDF 编码器与预览光栅化器
// 消费同一组指令，坐标单位为 pt，原点在页面左上角。
type DrawOp struct {
	Kind OpKind

	// text: X,Y is the baseline origin. rect: X,Y is the top-left corner,
	// W,H the extent. line: from (X,Y) to (X+W,Y) with thickness H.
	// circle: X,Y is the center, W the radius.
	X, Y float64
	W, H float64

	Text      string
	Href      string
	Size      float64
	FontStyle string // "", "B", "I", "BI"
	Color     string // hex; fill color for rect/circle, text/stroke otherwise
}

// Page holds the draw list of a single page.
type Page struct {
	Number int
	Ops    []DrawOp
}

// Document is the paginated layout produced by the generator. It is the
// shared source for both the encoded artifact and the rasterized preview.
type Document struct {
	PageWidth  float64
	PageHeight float64
	Background string
	Pages      []Page
}

// PageCount returns the number of laid-out pages.
func (d *Document) PageCount() int { return len(d.Pages) }
