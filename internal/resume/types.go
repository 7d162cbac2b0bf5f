package resume

import "encoding/json"

// ItemType 标识条目的渲染语义。每种类型对应一种固定的 value 结构。
type ItemType string

const (
	TypeHeading    ItemType = "heading"
	TypeSubHeading ItemType = "sub-heading"
	TypeText       ItemType = "text"
	TypeBullet     ItemType = "bullet"
	TypeNumber     ItemType = "number"
	TypeDate       ItemType = "date"
	TypeDateRange  ItemType = "date-range"
	TypeLocation   ItemType = "location"
	TypePhone      ItemType = "phone"
	TypeEmail      ItemType = "email"
	TypeLink       ItemType = "link"
	TypeSocial     ItemType = "social"
	TypeTag        ItemType = "tag"
	TypeRating     ItemType = "rating"
	TypeImage      ItemType = "image"
	TypeSeparator  ItemType = "separator"
)

// ItemMetadata 承载单个条目的临时样式覆盖。
type ItemMetadata struct {
	Color string `json:"color,omitempty"`
	Align string `json:"align,omitempty"`
	// ColSpan 是编辑器侧的快照字段，文档布局固定一项占一格。
	ColSpan int `json:"colSpan,omitempty"`
}

// Item 表示简历中的单个内容单元。Value 的结构由 Type 决定，
// 字符串类条目直接存 JSON 字符串，复合类条目存对象。
// 渲染层通过访问器解码，不直接操作 RawMessage。
type Item struct {
	ID       string          `json:"id"`
	Type     ItemType        `json:"type"`
	Visible  bool            `json:"visible"`
	Metadata *ItemMetadata   `json:"metadata,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// DateRangeValue 表示一段时间区间。EndDate 为空表示"至今"。
type DateRangeValue struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
	Format    string `json:"format,omitempty"`
}

// LinkValue 表示链接或社交条目的内容。
type LinkValue struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// RatingValue 表示技能评分。约束：0 <= Score <= Max。
type RatingValue struct {
	Label   string `json:"label"`
	Score   int    `json:"score"`
	Max     int    `json:"max"`
	Display string `json:"display"`
}

// ImageValue 表示头像或 Logo 条目的内容。
type ImageValue struct {
	URL   string `json:"url"`
	Alt   string `json:"alt,omitempty"`
	Shape string `json:"shape,omitempty"`
}

// Layout values accepted by SectionContent.
const (
	LayoutList   = "list"
	LayoutGrid   = "grid"
	LayoutInline = "inline"
)

// DefaultGridColumns applies when a grid section does not set Columns.
const DefaultGridColumns = 3

// SectionContent wraps the items of a section together with the layout
// directive controlling how they are arranged.
type SectionContent struct {
	ID      string `json:"id"`
	Layout  string `json:"layout"`
	Columns int    `json:"columns,omitempty"`
	Items   []Item `json:"items"`
}

// GridColumns returns the effective column count for grid layout.
func (c SectionContent) GridColumns() int {
	if c.Columns > 0 {
		return c.Columns
	}
	return DefaultGridColumns
}

// Section 表示一个可隐藏、可排序的标题区块。
type Section struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Visible bool           `json:"visible"`
	Content SectionContent `json:"content"`
}

// PersonalInfo 表示简历头部的个人信息。Details 中存放联系方式类条目。
type PersonalInfo struct {
	FullName string `json:"fullName"`
	JobTitle string `json:"jobTitle,omitempty"`
	// Avatar 是编辑器侧的快照字段，文档输出不渲染头像。
	Avatar  string `json:"avatar,omitempty"`
	Details []Item `json:"details"`
}

// ColorSettings 是文档的原始配色。Accents 按约定使用 4 个槽位：
// 0 主色、1 次色、2 边框/分隔线、3 弱化文字。渲染层必须容忍槽位缺失。
type ColorSettings struct {
	Background string   `json:"background"`
	Text       string   `json:"text"`
	Accents    []string `json:"accents"`
}

// Typography holds the document-wide font settings.
type Typography struct {
	FontFamily string `json:"fontFamily"`
	FontSize   string `json:"fontSize"` // sm | md | lg
}

// Metadata carries template selection and visual settings for a document.
type Metadata struct {
	Template   string        `json:"template"`
	Typography Typography    `json:"typography"`
	Colors     ColorSettings `json:"colors"`
}

// Resume 是渲染管线的唯一输入。渲染期间视为不可变快照，
// 所有修改都发生在外部编辑状态中，再整体传入新的快照。
type Resume struct {
	Metadata Metadata     `json:"metadata"`
	Personal PersonalInfo `json:"personal"`
	Sections []Section    `json:"sections"`
}
