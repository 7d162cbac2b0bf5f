package render

import (
	"encoding/json"
	"strings"
	"testing"

	"openResume/internal/resume"
)

var testTr = resume.Translations{}.Get

func renderOne(t *testing.T, it resume.Item) *Node {
	t.Helper()
	return RenderItem(it, BaseStyles(), ResolveScheme(resume.ColorSettings{}), nil, nil, testTr)
}

func TestRenderItemExhaustiveDispatch(t *testing.T) {
	items := []resume.Item{
		resume.NewStringItem("1", resume.TypeHeading, "Engineer"),
		resume.NewStringItem("2", resume.TypeSubHeading, "Acme"),
		resume.NewStringItem("3", resume.TypeText, "Summary"),
		resume.NewStringItem("4", resume.TypeBullet, "Did things"),
		resume.NewStringItem("5", resume.TypeNumber, "First"),
		resume.NewStringItem("6", resume.TypeDate, "2023"),
		resume.NewDateRangeItem("7", resume.DateRangeValue{StartDate: "2020-01"}),
		resume.NewStringItem("8", resume.TypeLocation, "Berlin"),
		resume.NewStringItem("9", resume.TypePhone, "+49 151"),
		resume.NewStringItem("10", resume.TypeEmail, "a@b.c"),
		resume.NewLinkItem("11", resume.TypeLink, resume.LinkValue{Label: "Portfolio", URL: "https://x"}),
		resume.NewLinkItem("12", resume.TypeSocial, resume.LinkValue{URL: "https://github.com/x"}),
		resume.NewStringItem("13", resume.TypeTag, "Go"),
		resume.NewRatingItem("14", resume.RatingValue{Label: "Spanish", Score: 3, Max: 5, Display: "stars"}),
		resume.NewImageItem("15", resume.ImageValue{URL: "https://img"}),
		resume.NewSeparatorItem("16"),
	}

	for _, it := range items {
		if n := renderOne(t, it); n == nil {
			t.Errorf("type %q: visible item rendered nil", it.Type)
		}

		hidden := it
		hidden.Visible = false
		if n := renderOne(t, hidden); n != nil {
			t.Errorf("type %q: invisible item rendered non-nil", it.Type)
		}
	}
}

func TestRenderItemUnknownTypeIsNoop(t *testing.T) {
	it := resume.Item{ID: "x", Type: resume.ItemType("sparkline"), Visible: true, Value: json.RawMessage(`"?"`)}
	if n := renderOne(t, it); n != nil {
		t.Fatalf("unknown type rendered %+v, want nil", n)
	}
}

func TestRenderItemCustomRendererWins(t *testing.T) {
	called := false
	custom := Registry{
		resume.TypeHeading: func(resume.Item, StyleSet, Scheme, Registry, StyleSet, resume.TranslateFunc) *Node {
			called = true
			return TextNode("custom", Style{})
		},
	}
	it := resume.NewStringItem("1", resume.TypeHeading, "plain")
	n := RenderItem(it, BaseStyles(), ResolveScheme(resume.ColorSettings{}), custom, nil, testTr)
	if !called || n == nil || n.Text != "custom" {
		t.Fatalf("custom renderer not used: called=%v node=%+v", called, n)
	}
}

func TestLinkLabelFallsBackToURL(t *testing.T) {
	it := resume.NewLinkItem("1", resume.TypeLink, resume.LinkValue{URL: "https://example.com"})
	n := renderOne(t, it)
	if n == nil || n.Text != "https://example.com" {
		t.Fatalf("link node = %+v, want URL as label", n)
	}
	if n.Href != "https://example.com" {
		t.Errorf("Href = %q", n.Href)
	}
}

func TestDateAndLinkItemsDoNotInheritNameStyle(t *testing.T) {
	// 模板改写姓名槽位不应影响普通条目的字号。
	overrides := StyleSet{SlotName: {FontSize: 32, FontStyle: "B"}}
	scheme := ResolveScheme(resume.ColorSettings{})

	dr := RenderItem(resume.NewDateRangeItem("1", resume.DateRangeValue{StartDate: "2020-01"}),
		BaseStyles(), scheme, nil, overrides, testTr)
	if dr.Style.FontSize != 0 || dr.Style.FontStyle != "I" {
		t.Errorf("date range style = %+v, want default size italic", dr.Style)
	}
	if dr.Style.Color != scheme.Muted {
		t.Errorf("date range color = %q", dr.Style.Color)
	}

	ln := RenderItem(resume.NewLinkItem("2", resume.TypeLink, resume.LinkValue{Label: "Blog", URL: "https://x"}),
		BaseStyles(), scheme, nil, overrides, testTr)
	if ln.Style.FontSize != 0 || ln.Style.FontStyle != "" {
		t.Errorf("link style = %+v, want default size regular", ln.Style)
	}
	if ln.Style.Color != scheme.Secondary || ln.Style.Underline != 0.5 {
		t.Errorf("link style = %+v", ln.Style)
	}

	img := RenderItem(resume.NewImageItem("3", resume.ImageValue{URL: "https://img"}),
		BaseStyles(), scheme, nil, overrides, testTr)
	if caption := img.Children[0]; caption.Style.FontSize != 10 {
		t.Errorf("image caption size = %v, want 10", caption.Style.FontSize)
	}
}

func TestRatingStarsCounts(t *testing.T) {
	for max := 1; max <= 10; max++ {
		for score := 0; score <= max; score++ {
			it := resume.NewRatingItem("r", resume.RatingValue{Label: "L", Score: score, Max: max, Display: "stars"})
			n := renderOne(t, it)
			if n == nil || len(n.Children) != 2 {
				t.Fatalf("score=%d max=%d: node %+v", score, max, n)
			}
			glyphs := n.Children[1].Text
			if got := strings.Count(glyphs, StarFilled); got != score {
				t.Errorf("score=%d max=%d: filled=%d", score, max, got)
			}
			if got := strings.Count(glyphs, StarEmpty); got != max-score {
				t.Errorf("score=%d max=%d: empty=%d", score, max, got)
			}
		}
	}
}

func TestRatingDisplayVariants(t *testing.T) {
	base := resume.RatingValue{Label: "L", Score: 2, Max: 4}

	v := base
	v.Display = "dots"
	n := renderOne(t, resume.NewRatingItem("r", v))
	dots := n.Children[1]
	if dots.Kind != KindDots || dots.Total != 4 || dots.Filled != 2 {
		t.Errorf("dots node = %+v", dots)
	}

	v.Display = "bar"
	n = renderOne(t, resume.NewRatingItem("r", v))
	bar := n.Children[1]
	if bar.Kind != KindBar || bar.Ratio != 0.5 {
		t.Errorf("bar node = %+v", bar)
	}

	v.Display = "percentage" // unknown display falls back to plain text
	n = renderOne(t, resume.NewRatingItem("r", v))
	if txt := n.Children[1]; txt.Kind != KindText || txt.Text != "2/4" {
		t.Errorf("fallback node = %+v", txt)
	}
}

func TestRatingOutOfRangeRendersNothing(t *testing.T) {
	it := resume.NewRatingItem("r", resume.RatingValue{Label: "L", Score: 9, Max: 5, Display: "stars"})
	if n := renderOne(t, it); n != nil {
		t.Fatalf("out-of-range rating rendered %+v", n)
	}
}

func TestResolveSchemeFallbacks(t *testing.T) {
	s := ResolveScheme(resume.ColorSettings{})
	if s.Primary != DefaultPrimary || s.Muted != DefaultMuted || s.Text != DefaultText {
		t.Errorf("empty settings: %+v", s)
	}

	s = ResolveScheme(resume.ColorSettings{
		Background: "#000000",
		Text:       "#ffffff",
		Accents:    []string{"#111111", "#222222"},
	})
	if s.Primary != "#111111" || s.Secondary != "#222222" {
		t.Errorf("supplied accents ignored: %+v", s)
	}
	if s.Border != DefaultBorder || s.Muted != DefaultMuted {
		t.Errorf("missing slots did not fall back: %+v", s)
	}
}

func TestMergeStylesPrecedence(t *testing.T) {
	base := Style{FontSize: 12, Color: "#111111", SpaceAfter: 8}
	override := Style{Color: "#222222", FontStyle: "B"}
	item := Style{Color: "#333333"}

	got := MergeStyles(base, override, item)
	if got.Color != "#333333" {
		t.Errorf("item layer must win on color, got %q", got.Color)
	}
	if got.FontStyle != "B" {
		t.Errorf("override layer lost FontStyle: %q", got.FontStyle)
	}
	if got.FontSize != 12 || got.SpaceAfter != 8 {
		t.Errorf("base fields dropped: %+v", got)
	}
}

func sectionNodesOf(t *testing.T, content resume.SectionContent) []*Node {
	t.Helper()
	return SectionNodes(content, BaseStyles(), ResolveScheme(resume.ColorSettings{}), nil, nil, testTr)
}

func TestListGrouping(t *testing.T) {
	content := resume.SectionContent{
		Layout: resume.LayoutList,
		Items: []resume.Item{
			resume.NewStringItem("1", resume.TypeText, "intro"),
			resume.NewStringItem("2", resume.TypeBullet, "b1"),
			resume.NewStringItem("3", resume.TypeBullet, "b2"),
			resume.NewStringItem("4", resume.TypeNumber, "n1"),
			resume.NewStringItem("5", resume.TypeNumber, "n2"),
			resume.NewStringItem("6", resume.TypeText, "outro"),
		},
	}

	nodes := sectionNodesOf(t, content)
	if len(nodes) != 4 {
		t.Fatalf("top-level nodes = %d, want 4", len(nodes))
	}
	if nodes[0].Kind != KindStack {
		t.Errorf("node 0 kind = %q", nodes[0].Kind)
	}
	if nodes[1].Kind != KindList || nodes[1].Ordered || len(nodes[1].Children) != 2 {
		t.Errorf("node 1 = %+v, want bullet group of 2", nodes[1])
	}
	if nodes[2].Kind != KindList || !nodes[2].Ordered || len(nodes[2].Children) != 2 {
		t.Errorf("node 2 = %+v, want number group of 2", nodes[2])
	}
	if nodes[3].Kind != KindStack {
		t.Errorf("node 3 kind = %q", nodes[3].Kind)
	}
}

func TestListGroupingSeparatorBreaksRun(t *testing.T) {
	content := resume.SectionContent{
		Layout: resume.LayoutList,
		Items: []resume.Item{
			resume.NewStringItem("1", resume.TypeBullet, "b1"),
			resume.NewSeparatorItem("2"),
			resume.NewStringItem("3", resume.TypeBullet, "b2"),
		},
	}

	nodes := sectionNodesOf(t, content)
	if len(nodes) != 3 {
		t.Fatalf("top-level nodes = %d, want 3", len(nodes))
	}
	if nodes[0].Kind != KindList || len(nodes[0].Children) != 1 {
		t.Errorf("node 0 = %+v", nodes[0])
	}
	if nodes[2].Kind != KindList || len(nodes[2].Children) != 1 {
		t.Errorf("node 2 = %+v", nodes[2])
	}
}

func TestGridLayoutRowMajor(t *testing.T) {
	content := resume.SectionContent{
		Layout:  resume.LayoutGrid,
		Columns: 2,
		Items: []resume.Item{
			resume.NewStringItem("1", resume.TypeTag, "Go"),
			resume.NewStringItem("2", resume.TypeTag, "SQL"),
			resume.NewStringItem("3", resume.TypeTag, "Redis"),
		},
	}

	nodes := sectionNodesOf(t, content)
	if len(nodes) != 1 || nodes[0].Kind != KindGrid {
		t.Fatalf("nodes = %+v, want single grid", nodes)
	}
	grid := nodes[0]
	if grid.Columns != 2 || len(grid.Children) != 3 {
		t.Errorf("grid = %d columns, %d cells", grid.Columns, len(grid.Children))
	}
}

func TestInlineLayoutSkipsInvisible(t *testing.T) {
	hidden := resume.NewStringItem("2", resume.TypeTag, "hidden")
	hidden.Visible = false

	content := resume.SectionContent{
		Layout: resume.LayoutInline,
		Items: []resume.Item{
			resume.NewStringItem("1", resume.TypeTag, "Go"),
			hidden,
		},
	}

	nodes := sectionNodesOf(t, content)
	if len(nodes) != 1 || len(nodes[0].Children) != 1 {
		t.Fatalf("inline nodes = %+v, want 1 visible child", nodes)
	}
}
