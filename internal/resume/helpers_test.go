package resume

import (
	"encoding/json"
	"testing"
)

var allTypes = []ItemType{
	TypeHeading, TypeSubHeading, TypeText, TypeBullet, TypeNumber,
	TypeDate, TypeDateRange, TypeLocation, TypePhone, TypeEmail,
	TypeLink, TypeSocial, TypeTag, TypeRating, TypeImage, TypeSeparator,
}

func TestPredicatesAreExclusive(t *testing.T) {
	preds := map[string]func(Item) bool{
		"string":    IsStringItem,
		"dateRange": IsDateRangeItem,
		"link":      IsLinkItem,
		"rating":    IsRatingItem,
		"image":     IsImageItem,
		"separator": IsSeparatorItem,
	}

	for _, typ := range allTypes {
		it := Item{ID: "x", Type: typ, Visible: true}
		matched := 0
		for _, pred := range preds {
			if pred(it) {
				matched++
			}
		}
		if matched != 1 {
			t.Errorf("type %q matched %d predicates, want exactly 1", typ, matched)
		}
	}

	unknown := Item{ID: "x", Type: ItemType("hologram"), Visible: true}
	for name, pred := range preds {
		if pred(unknown) {
			t.Errorf("predicate %s matched unknown type", name)
		}
	}
}

func TestStringValueRejectsNonStringPayload(t *testing.T) {
	it := Item{Type: TypeText, Value: json.RawMessage(`{"nested":true}`)}
	if _, ok := it.StringValue(); ok {
		t.Fatal("expected ok=false for object payload on a string item")
	}

	it = NewStringItem("a", TypeBullet, "shipped the thing")
	got, ok := it.StringValue()
	if !ok || got != "shipped the thing" {
		t.Fatalf("StringValue = %q, %v", got, ok)
	}
}

func TestFormatDateRange(t *testing.T) {
	tr := Translations{"present": "Now"}.Get

	cases := []struct {
		name string
		in   DateRangeValue
		want string
	}{
		{"open ended", DateRangeValue{StartDate: "2020-01"}, "2020-01 - Now"},
		{"empty end", DateRangeValue{StartDate: "2020-01", EndDate: ""}, "2020-01 - Now"},
		{"closed", DateRangeValue{StartDate: "2020-01", EndDate: "2022-05"}, "2020-01 - 2022-05"},
		{"year only", DateRangeValue{StartDate: "2020-01", EndDate: "2022-05", Format: "YYYY"}, "2020 - 2022"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDateRange(tc.in, tr); got != tc.want {
				t.Errorf("FormatDateRange = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatDateRangePresentFallback(t *testing.T) {
	// 未配置 i18n 时也必须渲染出 present 标记。
	got := FormatDateRange(DateRangeValue{StartDate: "2019"}, Translations{}.Get)
	if got != "2019 - Present" {
		t.Errorf("FormatDateRange = %q, want built-in Present fallback", got)
	}
}

func TestItemJSONRoundTrip(t *testing.T) {
	src := `{
		"id": "r1",
		"type": "rating",
		"visible": true,
		"metadata": {"align": "center"},
		"value": {"label": "Spanish", "score": 4, "max": 5, "display": "stars"}
	}`

	var it Item
	if err := json.Unmarshal([]byte(src), &it); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rating, ok := it.Rating()
	if !ok {
		t.Fatal("Rating() not ok")
	}
	if rating.Score != 4 || rating.Max != 5 || rating.Display != "stars" {
		t.Errorf("unexpected rating payload: %+v", rating)
	}
	if it.Metadata == nil || it.Metadata.Align != "center" {
		t.Errorf("metadata not preserved: %+v", it.Metadata)
	}
}

func TestGridColumnsDefault(t *testing.T) {
	c := SectionContent{Layout: LayoutGrid}
	if got := c.GridColumns(); got != DefaultGridColumns {
		t.Errorf("GridColumns = %d, want %d", got, DefaultGridColumns)
	}
	c.Columns = 2
	if got := c.GridColumns(); got != 2 {
		t.Errorf("GridColumns = %d, want 2", got)
	}
}
