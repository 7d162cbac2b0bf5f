package render

// NodeKind tags a render node. The set is closed: both the PDF layout pass
// and the preview rasterizer dispatch exhaustively on it, and anything
// unrecognized lays out as empty rather than failing.
type NodeKind string

const (
	KindText   NodeKind = "text"   // single run of text, optionally a link
	KindRule   NodeKind = "rule"   // horizontal divider
	KindBar    NodeKind = "bar"    // filled track, Ratio in [0,1]
	KindDots   NodeKind = "dots"   // Filled colored dots out of Total
	KindRow    NodeKind = "row"    // horizontal, last child flexes
	KindStack  NodeKind = "stack"  // vertical flow
	KindInline NodeKind = "inline" // horizontal with wrapping
	KindGrid   NodeKind = "grid"   // row-major equal-width tracks
	KindList   NodeKind = "list"   // grouped bullet/number run
)

// Node 是渲染树的单元。PDF 布局与预览光栅化共用同一棵树，
// 这是两端像素一致的根本保证。
type Node struct {
	Kind  NodeKind
	Style Style

	// KindText
	Text string
	Href string

	// KindBar / KindDots
	Ratio  float64
	Total  int
	Filled int

	// KindGrid
	Columns int

	// KindList
	Ordered bool

	Children []*Node
}

// TextNode builds a text run.
func TextNode(text string, style Style) *Node {
	return &Node{Kind: KindText, Text: text, Style: style}
}

// LinkNode builds a text run that links to a URL.
func LinkNode(text, href string, style Style) *Node {
	return &Node{Kind: KindText, Text: text, Href: href, Style: style}
}

// RuleNode builds a horizontal divider.
func RuleNode(style Style) *Node {
	return &Node{Kind: KindRule, Style: style}
}

// RowNode lays children out horizontally.
func RowNode(style Style, children ...*Node) *Node {
	return &Node{Kind: KindRow, Style: style, Children: compact(children)}
}

// StackNode lays children out vertically.
func StackNode(style Style, children ...*Node) *Node {
	return &Node{Kind: KindStack, Style: style, Children: compact(children)}
}

// InlineNode lays children out horizontally with wrapping.
func InlineNode(style Style, children ...*Node) *Node {
	return &Node{Kind: KindInline, Style: style, Children: compact(children)}
}

// GridNode lays children out row-major across equal-width columns.
func GridNode(columns int, style Style, children ...*Node) *Node {
	return &Node{Kind: KindGrid, Columns: columns, Style: style, Children: compact(children)}
}

// ListNode groups a run of bullet or number items.
func ListNode(ordered bool, style Style, children ...*Node) *Node {
	return &Node{Kind: KindList, Ordered: ordered, Style: style, Children: compact(children)}
}

// compact drops nil children so renderers can return nil for "no render"
// and containers stay clean.
func compact(in []*Node) []*Node {
	out := in[:0]
	for _, n := range in {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
