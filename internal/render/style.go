package render

// Style 是一组可叠加的视觉属性。零值字段表示"未设置"，
// 叠加时由更高层级的非零字段覆盖。
type Style struct {
	FontSize    float64
	FontStyle   string // "", "B", "I", "BI"
	Color       string
	Background  string
	Align       string // "", "left", "center", "right"
	LineGap     float64 // extra leading between wrapped lines, pt
	SpaceAfter  float64 // vertical gap after the block, pt
	Underline   float64 // bottom border thickness, pt
	BorderColor string
	Gap         float64 // spacing between children of a container node, pt
	Indent      float64
}

// MergeStyles layers styles with defined precedence: later layers win on any
// field they set. The canonical order is base < template override < item
// override.
func MergeStyles(layers ...Style) Style {
	var out Style
	for _, l := range layers {
		if l.FontSize != 0 {
			out.FontSize = l.FontSize
		}
		if l.FontStyle != "" {
			out.FontStyle = l.FontStyle
		}
		if l.Color != "" {
			out.Color = l.Color
		}
		if l.Background != "" {
			out.Background = l.Background
		}
		if l.Align != "" {
			out.Align = l.Align
		}
		if l.LineGap != 0 {
			out.LineGap = l.LineGap
		}
		if l.SpaceAfter != 0 {
			out.SpaceAfter = l.SpaceAfter
		}
		if l.Underline != 0 {
			out.Underline = l.Underline
		}
		if l.BorderColor != "" {
			out.BorderColor = l.BorderColor
		}
		if l.Gap != 0 {
			out.Gap = l.Gap
		}
		if l.Indent != 0 {
			out.Indent = l.Indent
		}
	}
	return out
}

// Named style slots shared by the generic document renderer and the built-in
// item renderers. Template configs override individual slots.
const (
	SlotPage         = "page"
	SlotName         = "name"
	SlotJobTitle     = "jobTitle"
	SlotHeader       = "header"
	SlotContactRow   = "contactRow"
	SlotContactItem  = "contactItem"
	SlotSection      = "section"
	SlotSectionTitle = "sectionTitle"
	SlotListItem     = "listItem"
	SlotBulletRow    = "bulletRow"
	SlotRatingRow    = "ratingRow"
	SlotRatingLabel  = "ratingLabel"
	SlotBar          = "bar"
	SlotDot          = "dot"
	SlotGrid         = "grid"
	SlotGridItem     = "gridItem"
	SlotInline       = "inline"
	SlotTag          = "tag"
)

// StyleSet maps slot names to styles. A template's Styles is a partial
// StyleSet layered over BaseStyles.
type StyleSet map[string]Style

// Slot returns the style for a named slot; missing slots yield the zero
// style, which merges as a no-op.
func (s StyleSet) Slot(name string) Style {
	if s == nil {
		return Style{}
	}
	return s[name]
}

// BaseStyles returns the default style table every template starts from.
func BaseStyles() StyleSet {
	return StyleSet{
		SlotPage:         {FontSize: 12, LineGap: 4.8, SpaceAfter: 0},
		SlotName:         {FontSize: 24, FontStyle: "B", SpaceAfter: 4},
		SlotJobTitle:     {FontSize: 16, SpaceAfter: 16},
		SlotHeader:       {SpaceAfter: 20},
		SlotContactRow:   {Align: "center", Gap: 16, SpaceAfter: 8},
		SlotContactItem:  {Gap: 4},
		SlotSection:      {SpaceAfter: 24},
		SlotSectionTitle: {FontSize: 10, FontStyle: "B", SpaceAfter: 12, Underline: 2},
		SlotListItem:     {SpaceAfter: 8},
		SlotBulletRow:    {Gap: 4},
		SlotRatingRow:    {Gap: 8},
		SlotRatingLabel:  {FontSize: 11},
		SlotBar:          {},
		SlotDot:          {},
		SlotGrid:         {Gap: 8},
		SlotGridItem:     {},
		SlotInline:       {Gap: 6},
		SlotTag:          {FontSize: 10},
	}
}

// Layer resolves one slot across the three style layers plus an optional
// ad hoc extra, in precedence order.
func Layer(base, overrides StyleSet, slot string, extra Style) Style {
	return MergeStyles(base.Slot(slot), overrides.Slot(slot), extra)
}
