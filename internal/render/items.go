package render

import (
	"fmt"
	"strings"

	"openResume/internal/resume"
)

// Glyphs used by the stars rating display. The PDF encoder maps them to the
// closest core-font glyph; tests count them directly.
const (
	StarFilled = "★"
	StarEmpty  = "☆"
)

// ItemRenderer 将一个条目渲染为节点树。返回 nil 表示"无渲染"。
type ItemRenderer func(it resume.Item, base StyleSet, scheme Scheme, custom Registry, overrides StyleSet, tr resume.TranslateFunc) *Node

// Registry maps item types to renderers. Templates may supply a custom
// registry whose entries win over the built-ins.
type Registry map[resume.ItemType]ItemRenderer

// RenderItem dispatches an item to its renderer: the custom registry first,
// then the built-in table. An unknown type renders nothing — a future item
// type must never crash a document. Visibility is enforced here once rather
// than in every renderer.
func RenderItem(it resume.Item, base StyleSet, scheme Scheme, custom Registry, overrides StyleSet, tr resume.TranslateFunc) *Node {
	if !it.Visible {
		return nil
	}
	r, ok := custom[it.Type]
	if !ok {
		r, ok = builtinRenderers[it.Type]
	}
	if !ok {
		return nil
	}
	return r(it, base, scheme, custom, overrides, tr)
}

var builtinRenderers Registry

func init() {
	builtinRenderers = Registry{
		resume.TypeHeading:    renderStringItem,
		resume.TypeSubHeading: renderStringItem,
		resume.TypeText:       renderStringItem,
		resume.TypeBullet:     renderStringItem,
		resume.TypeNumber:     renderStringItem,
		resume.TypeDate:       renderStringItem,
		resume.TypeLocation:   renderStringItem,
		resume.TypePhone:      renderStringItem,
		resume.TypeEmail:      renderStringItem,
		resume.TypeTag:        renderStringItem,
		resume.TypeDateRange:  renderDateRangeItem,
		resume.TypeLink:       renderLinkItem,
		resume.TypeSocial:     renderLinkItem,
		resume.TypeRating:     renderRatingItem,
		resume.TypeImage:      renderImageItem,
		resume.TypeSeparator:  renderSeparatorItem,
	}
}

// itemExtra lifts the item-level metadata into the highest style layer.
func itemExtra(it resume.Item) Style {
	if it.Metadata == nil {
		return Style{}
	}
	return Style{Color: it.Metadata.Color, Align: it.Metadata.Align}
}

func renderStringItem(it resume.Item, base StyleSet, scheme Scheme, _ Registry, overrides StyleSet, tr resume.TranslateFunc) *Node {
	value, ok := it.StringValue()
	if !ok {
		return nil
	}
	extra := itemExtra(it)

	switch it.Type {
	case resume.TypeHeading:
		st := Layer(base, overrides, SlotName, MergeStyles(Style{FontSize: 16, FontStyle: "B", Color: scheme.Text}, extra))
		return TextNode(value, st)

	case resume.TypeSubHeading:
		st := Layer(base, overrides, SlotJobTitle, MergeStyles(Style{FontSize: 14, Color: scheme.Secondary}, extra))
		return TextNode(value, st)

	case resume.TypeText:
		return TextNode(value, MergeStyles(Style{FontSize: 12, Color: scheme.Text}, extra))

	case resume.TypeBullet:
		rowStyle := Layer(base, overrides, SlotBulletRow, Style{})
		return RowNode(rowStyle,
			TextNode("•", Style{Color: scheme.Primary}),
			TextNode(value, MergeStyles(Style{Color: scheme.Text}, extra)),
		)

	case resume.TypeDate:
		return TextNode(value, MergeStyles(Style{FontStyle: "I", Color: scheme.Muted}, extra))

	case resume.TypeLocation, resume.TypePhone, resume.TypeEmail:
		label := tr(string(it.Type))
		return TextNode(label+": "+value, MergeStyles(Style{FontSize: 10, Color: scheme.Muted}, extra))

	case resume.TypeTag:
		st := Layer(base, overrides, SlotTag, MergeStyles(Style{
			FontSize:   10,
			Color:      scheme.Text,
			Background: scheme.Border,
		}, extra))
		return TextNode(value, st)

	default:
		// number 及其它字符串类条目：单独出现时按普通文本渲染，
		// 编号语义由列表分组负责。
		return TextNode(value, MergeStyles(Style{Color: scheme.Text}, extra))
	}
}

func renderDateRangeItem(it resume.Item, _ StyleSet, scheme Scheme, _ Registry, _ StyleSet, tr resume.TranslateFunc) *Node {
	v, ok := it.DateRange()
	if !ok {
		return nil
	}
	st := MergeStyles(Style{FontStyle: "I", Color: scheme.Muted}, itemExtra(it))
	return TextNode(resume.FormatDateRange(v, tr), st)
}

func renderLinkItem(it resume.Item, base StyleSet, scheme Scheme, _ Registry, overrides StyleSet, _ resume.TranslateFunc) *Node {
	v, ok := it.Link()
	if !ok {
		return nil
	}
	label := v.Label
	if strings.TrimSpace(label) == "" {
		label = v.URL
	}
	st := Layer(base, overrides, SlotContactItem, MergeStyles(Style{Color: scheme.Secondary, Underline: 0.5, BorderColor: scheme.Secondary}, itemExtra(it)))
	return LinkNode(label, v.URL, st)
}

func renderRatingItem(it resume.Item, base StyleSet, scheme Scheme, _ Registry, overrides StyleSet, _ resume.TranslateFunc) *Node {
	v, ok := it.Rating()
	if !ok {
		return nil
	}
	if v.Max <= 0 || v.Score < 0 || v.Score > v.Max {
		return nil
	}

	rowStyle := Layer(base, overrides, SlotRatingRow, Style{})
	labelStyle := Layer(base, overrides, SlotRatingLabel, Style{Color: scheme.Text})
	label := TextNode(v.Label, labelStyle)

	switch v.Display {
	case "stars":
		glyphs := strings.Repeat(StarFilled, v.Score) + strings.Repeat(StarEmpty, v.Max-v.Score)
		return RowNode(rowStyle, label, TextNode(glyphs, Style{FontSize: 10, Color: scheme.Primary}))

	case "dots":
		dotStyle := Layer(base, overrides, SlotDot, Style{Color: scheme.Primary, BorderColor: scheme.Border})
		dots := &Node{Kind: KindDots, Total: v.Max, Filled: v.Score, Style: dotStyle}
		return RowNode(rowStyle, label, dots)

	case "bar":
		barStyle := Layer(base, overrides, SlotBar, Style{Color: scheme.Primary, Background: scheme.Border})
		bar := &Node{Kind: KindBar, Ratio: float64(v.Score) / float64(v.Max), Style: barStyle}
		return RowNode(rowStyle, label, bar)

	default:
		return RowNode(rowStyle, label, TextNode(fmt.Sprintf("%d/%d", v.Score, v.Max), labelStyle))
	}
}

func renderImageItem(it resume.Item, _ StyleSet, scheme Scheme, _ Registry, _ StyleSet, tr resume.TranslateFunc) *Node {
	v, ok := it.Image()
	if !ok {
		return nil
	}
	alt := v.Alt
	if strings.TrimSpace(alt) == "" {
		alt = "Untitled"
	}
	// 与原始 PDF 引擎一致：图片在文档里渲染为占位文本，
	// 资源抓取属于外部资产服务。
	caption := MergeStyles(Style{FontSize: 10, Color: scheme.Muted, SpaceAfter: 4}, itemExtra(it))
	return StackNode(Style{SpaceAfter: 8, Align: "center"},
		TextNode(tr("image")+": "+alt, caption),
		TextNode(v.URL, Style{FontSize: 8, FontStyle: "I", Color: scheme.Text}),
	)
}

func renderSeparatorItem(_ resume.Item, _ StyleSet, scheme Scheme, _ Registry, _ StyleSet, _ resume.TranslateFunc) *Node {
	return RuleNode(Style{Underline: 1, BorderColor: scheme.Border, SpaceAfter: 8})
}
