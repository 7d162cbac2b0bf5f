package pdf

import (
	"fmt"

	"openResume/internal/render"
	"openResume/internal/resume"
)

// CustomRenderer 完全接管文档的生成，绕过通用的样式驱动管线。
// 用于无法仅靠样式覆盖表达的模板。
type CustomRenderer func(doc *resume.Resume, tr resume.TranslateFunc) *Document

// TemplateDefinition is either a style-override configuration consumed by the
// shared pipeline, or a fully custom renderer. Exactly one of the two is set.
type TemplateDefinition struct {
	Name     string
	Styles   render.StyleSet
	Renderer CustomRenderer
}

// TemplateNotFoundError reports a lookup against the registry for a template
// name nobody registered.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Name)
}

var templates = map[string]TemplateDefinition{}

func registerTemplate(def TemplateDefinition) {
	templates[def.Name] = def
}

// ResolveTemplate 按名称查找模板，未注册时返回 TemplateNotFoundError。
func ResolveTemplate(name string) (TemplateDefinition, error) {
	def, ok := templates[name]
	if !ok {
		return TemplateDefinition{}, &TemplateNotFoundError{Name: name}
	}
	return def, nil
}

// TemplateNames returns the registered template names, for API listings.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}

func init() {
	registerTemplate(TemplateDefinition{
		Name: "modern",
		Styles: render.StyleSet{
			render.SlotHeader:       {Align: "center", SpaceAfter: 20},
			render.SlotName:         {FontSize: 24, FontStyle: "B", SpaceAfter: 4},
			render.SlotJobTitle:     {FontSize: 14, SpaceAfter: 8},
			render.SlotContactRow:   {Align: "center", Gap: 16},
			render.SlotSectionTitle: {FontSize: 10, FontStyle: "B", Underline: 2, SpaceAfter: 12},
		},
	})
	registerTemplate(TemplateDefinition{
		Name:     "plain",
		Renderer: renderPlain,
	})
}

// renderPlain is a minimal custom template: unstyled text lines only, no
// color scheme and no section decorations.
func renderPlain(doc *resume.Resume, tr resume.TranslateFunc) *Document {
	m := newMeasurer()
	var blocks []*render.Node

	if doc.Personal.FullName != "" {
		blocks = append(blocks, render.TextNode(doc.Personal.FullName, render.Style{FontSize: 18, FontStyle: "B", SpaceAfter: 4}))
	}
	if doc.Personal.JobTitle != "" {
		blocks = append(blocks, render.TextNode(doc.Personal.JobTitle, render.Style{FontSize: 12, SpaceAfter: 16}))
	}

	scheme := render.ResolveScheme(doc.Metadata.Colors)
	base := render.BaseStyles()
	for _, section := range doc.Sections {
		if !section.Visible {
			continue
		}
		blocks = append(blocks, render.TextNode(section.Title, render.Style{FontSize: 12, FontStyle: "B", SpaceAfter: 6}))
		for _, node := range render.SectionNodes(section.Content, base, scheme, nil, nil, tr) {
			blocks = append(blocks, node)
		}
		blocks = append(blocks, render.TextNode("", render.Style{SpaceAfter: 12}))
	}

	return layoutFlow(blocks, m, render.DefaultBackground)
}
