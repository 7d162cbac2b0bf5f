package pdf

import (
	"strings"

	"openResume/internal/render"
	"openResume/internal/resume"
)

// Generate 把简历快照渲染成绝对定位的绘制文档。模板名未注册时
// 不报错，而是生成一页可见的错误提示文档，保证管线始终有输出。
func Generate(doc *resume.Resume, templateName string, tr resume.TranslateFunc) *Document {
	def, err := ResolveTemplate(templateName)
	if err != nil {
		return errorDocument(templateName)
	}
	if def.Renderer != nil {
		return def.Renderer(doc, tr)
	}
	return RenderWithStyles(doc, def.Styles, tr)
}

// RenderWithStyles runs the generic style-driven pipeline: base styles
// layered with template overrides, sections laid out per their layout
// directive, the whole thing flowed into pages. Configuration templates and
// their equivalence tests both go through here.
func RenderWithStyles(doc *resume.Resume, overrides render.StyleSet, tr resume.TranslateFunc) *Document {
	m := newMeasurer()
	scheme := render.ResolveScheme(doc.Metadata.Colors)
	base := render.BaseStyles()

	blocks := headerBlocks(doc, base, scheme, overrides, tr)
	for _, section := range doc.Sections {
		if !section.Visible {
			continue
		}
		blocks = append(blocks, sectionBlocks(section, base, scheme, overrides, tr)...)
	}
	return layoutFlow(blocks, m, scheme.Background)
}

// headerBlocks 生成头部区：姓名、职位、居中自动换行的联系方式行。
func headerBlocks(doc *resume.Resume, base render.StyleSet, scheme render.Scheme, overrides render.StyleSet, tr resume.TranslateFunc) []*render.Node {
	header := render.Layer(base, overrides, render.SlotHeader, render.Style{})
	var blocks []*render.Node

	if doc.Personal.FullName != "" {
		st := render.Layer(base, overrides, render.SlotName, render.Style{Color: scheme.Primary, Align: header.Align})
		blocks = append(blocks, render.TextNode(doc.Personal.FullName, st))
	}
	if doc.Personal.JobTitle != "" {
		st := render.Layer(base, overrides, render.SlotJobTitle, render.Style{Color: scheme.Secondary, Align: header.Align})
		blocks = append(blocks, render.TextNode(doc.Personal.JobTitle, st))
	}

	var contacts []*render.Node
	for _, it := range doc.Personal.Details {
		if node := render.RenderItem(it, base, scheme, nil, overrides, tr); node != nil {
			contacts = append(contacts, node)
		}
	}
	if len(contacts) > 0 {
		row := render.Layer(base, overrides, render.SlotContactRow, render.Style{SpaceAfter: header.SpaceAfter})
		blocks = append(blocks, render.InlineNode(row, contacts...))
	} else if header.SpaceAfter > 0 && len(blocks) > 0 {
		last := blocks[len(blocks)-1]
		if last.Style.SpaceAfter < header.SpaceAfter {
			last.Style.SpaceAfter = header.SpaceAfter
		}
	}
	return blocks
}

// sectionBlocks 生成一个区块：大写标题加主色下划线，然后是内容节点。
// 每个内容节点是独立的分页单元，长区块可以跨页。
func sectionBlocks(section resume.Section, base render.StyleSet, scheme render.Scheme, overrides render.StyleSet, tr resume.TranslateFunc) []*render.Node {
	title := render.Layer(base, overrides, render.SlotSectionTitle, render.Style{
		Color:       scheme.Primary,
		BorderColor: scheme.Primary,
	})
	blocks := []*render.Node{render.TextNode(strings.ToUpper(section.Title), title)}

	blocks = append(blocks, render.SectionNodes(section.Content, base, scheme, nil, overrides, tr)...)

	gap := render.Layer(base, overrides, render.SlotSection, render.Style{})
	if gap.SpaceAfter > 0 && len(blocks) > 0 {
		blocks = append(blocks, render.TextNode("", render.Style{SpaceAfter: gap.SpaceAfter}))
	}
	return blocks
}

// errorDocument renders the fallback page shown when a document references a
// template that is not registered.
func errorDocument(name string) *Document {
	m := newMeasurer()
	blocks := []*render.Node{
		render.TextNode("Error loading template: "+name, render.Style{
			FontSize: 16, Color: "#dc2626", Align: "center", SpaceAfter: 8,
		}),
	}
	return layoutFlow(blocks, m, render.DefaultBackground)
}
