package render

import "openResume/internal/resume"

// SectionNodes arranges a section's items according to its layout directive
// and returns the top-level nodes in document order.
//
// list 布局下，连续的 bullet/number 条目必须合并为一个分组列表节点，
// 以保证导出文档的列表语义；遇到其它类型或子类型切换时断组。
func SectionNodes(content resume.SectionContent, base StyleSet, scheme Scheme, custom Registry, overrides StyleSet, tr resume.TranslateFunc) []*Node {
	switch content.Layout {
	case resume.LayoutGrid:
		return gridNodes(content, base, scheme, custom, overrides, tr)
	case resume.LayoutInline:
		return inlineNodes(content, base, scheme, custom, overrides, tr)
	default:
		return listNodes(content, base, scheme, custom, overrides, tr)
	}
}

func gridNodes(content resume.SectionContent, base StyleSet, scheme Scheme, custom Registry, overrides StyleSet, tr resume.TranslateFunc) []*Node {
	gridStyle := Layer(base, overrides, SlotGrid, Style{})
	cellStyle := Layer(base, overrides, SlotGridItem, Style{})

	var cells []*Node
	for _, it := range content.Items {
		n := RenderItem(it, base, scheme, custom, overrides, tr)
		if n == nil {
			continue
		}
		cells = append(cells, StackNode(cellStyle, n))
	}
	if len(cells) == 0 {
		return nil
	}
	return []*Node{GridNode(content.GridColumns(), gridStyle, cells...)}
}

func inlineNodes(content resume.SectionContent, base StyleSet, scheme Scheme, custom Registry, overrides StyleSet, tr resume.TranslateFunc) []*Node {
	inlineStyle := Layer(base, overrides, SlotInline, Style{})

	var children []*Node
	for _, it := range content.Items {
		if n := RenderItem(it, base, scheme, custom, overrides, tr); n != nil {
			children = append(children, n)
		}
	}
	if len(children) == 0 {
		return nil
	}
	return []*Node{InlineNode(inlineStyle, children...)}
}

func listNodes(content resume.SectionContent, base StyleSet, scheme Scheme, custom Registry, overrides StyleSet, tr resume.TranslateFunc) []*Node {
	itemStyle := Layer(base, overrides, SlotListItem, Style{})

	var out []*Node
	var run []*Node
	var runType resume.ItemType

	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, ListNode(runType == resume.TypeNumber, itemStyle, run...))
		run = nil
	}

	for _, it := range content.Items {
		if !it.Visible {
			continue
		}
		grouped := it.Type == resume.TypeBullet || it.Type == resume.TypeNumber

		if grouped && len(run) > 0 && it.Type != runType {
			// bullet 紧跟 number（或反之）开启新组。
			flush()
		}

		n := RenderItem(it, base, scheme, custom, overrides, tr)
		if n == nil {
			// 不可见或未知类型不中断分组判断之外的任何状态；
			// 但一个无法渲染的非列表条目仍然断组。
			if !grouped {
				flush()
			}
			continue
		}

		if grouped {
			runType = it.Type
			run = append(run, n)
			continue
		}

		flush()
		out = append(out, StackNode(itemStyle, n))
	}
	flush()
	return out
}
