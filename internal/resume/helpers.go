package resume

import (
	"encoding/json"
	"strings"
)

// stringTypes 列出 value 为纯字符串的条目类型。
var stringTypes = map[ItemType]bool{
	TypeHeading:    true,
	TypeSubHeading: true,
	TypeText:       true,
	TypeBullet:     true,
	TypeNumber:     true,
	TypeDate:       true,
	TypeLocation:   true,
	TypePhone:      true,
	TypeEmail:      true,
	TypeTag:        true,
}

// IsStringItem reports whether the item's value is a plain string.
func IsStringItem(it Item) bool { return stringTypes[it.Type] }

// IsDateRangeItem reports whether the item is a date range.
func IsDateRangeItem(it Item) bool { return it.Type == TypeDateRange }

// IsLinkItem reports whether the item is a link or social entry.
func IsLinkItem(it Item) bool { return it.Type == TypeLink || it.Type == TypeSocial }

// IsRatingItem reports whether the item is a rating.
func IsRatingItem(it Item) bool { return it.Type == TypeRating }

// IsImageItem reports whether the item is an image.
func IsImageItem(it Item) bool { return it.Type == TypeImage }

// IsSeparatorItem reports whether the item is a divider.
func IsSeparatorItem(it Item) bool { return it.Type == TypeSeparator }

// StringValue 解码字符串类条目的内容。类型或内容不符时返回 ok=false，
// 渲染层据此退化为空输出而不是报错。
func (it Item) StringValue() (string, bool) {
	if !IsStringItem(it) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(it.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// DateRange decodes the date-range payload.
func (it Item) DateRange() (DateRangeValue, bool) {
	if !IsDateRangeItem(it) {
		return DateRangeValue{}, false
	}
	var v DateRangeValue
	if err := json.Unmarshal(it.Value, &v); err != nil {
		return DateRangeValue{}, false
	}
	return v, true
}

// Link decodes the link/social payload.
func (it Item) Link() (LinkValue, bool) {
	if !IsLinkItem(it) {
		return LinkValue{}, false
	}
	var v LinkValue
	if err := json.Unmarshal(it.Value, &v); err != nil {
		return LinkValue{}, false
	}
	return v, true
}

// Rating decodes the rating payload.
func (it Item) Rating() (RatingValue, bool) {
	if !IsRatingItem(it) {
		return RatingValue{}, false
	}
	var v RatingValue
	if err := json.Unmarshal(it.Value, &v); err != nil {
		return RatingValue{}, false
	}
	return v, true
}

// Image decodes the image payload.
func (it Item) Image() (ImageValue, bool) {
	if !IsImageItem(it) {
		return ImageValue{}, false
	}
	var v ImageValue
	if err := json.Unmarshal(it.Value, &v); err != nil {
		return ImageValue{}, false
	}
	return v, true
}

// TranslateFunc 提供界面文案查询能力，由外部 i18n 协作方注入。
type TranslateFunc func(key string) string

// Translations is a static lookup table satisfying TranslateFunc via Get.
type Translations map[string]string

// defaultTranslations backs missing keys so the engine renders something
// sensible without an i18n collaborator wired in.
var defaultTranslations = Translations{
	"present":  "Present",
	"phone":    "Phone",
	"email":    "Email",
	"image":    "Image",
	"location": "Location",
	"website":  "Website",
}

// Get returns the translation for key, falling back to built-in English.
func (t Translations) Get(key string) string {
	if v, ok := t[key]; ok && v != "" {
		return v
	}
	if v, ok := defaultTranslations[key]; ok {
		return v
	}
	return key
}

// FormatDateRange renders a range as "<start> - <end>". A missing or empty
// EndDate means the range is ongoing and renders the translated present
// token. Format "YYYY" trims both ends down to the year.
func FormatDateRange(v DateRangeValue, t TranslateFunc) string {
	start := formatDatePart(v.StartDate, v.Format)
	end := strings.TrimSpace(v.EndDate)
	if end == "" {
		end = t("present")
	} else {
		end = formatDatePart(end, v.Format)
	}
	return start + " - " + end
}

func formatDatePart(s, format string) string {
	if format == "YYYY" && len(s) > 4 {
		return s[:4]
	}
	return s
}

// Convenience constructors used by handlers and tests to build items without
// hand-writing raw JSON payloads.

// NewStringItem builds a visible string-valued item.
func NewStringItem(id string, typ ItemType, value string) Item {
	raw, _ := json.Marshal(value)
	return Item{ID: id, Type: typ, Visible: true, Value: raw}
}

// NewDateRangeItem builds a visible date-range item.
func NewDateRangeItem(id string, v DateRangeValue) Item {
	raw, _ := json.Marshal(v)
	return Item{ID: id, Type: TypeDateRange, Visible: true, Value: raw}
}

// NewLinkItem builds a visible link item.
func NewLinkItem(id string, typ ItemType, v LinkValue) Item {
	raw, _ := json.Marshal(v)
	return Item{ID: id, Type: typ, Visible: true, Value: raw}
}

// NewRatingItem builds a visible rating item.
func NewRatingItem(id string, v RatingValue) Item {
	raw, _ := json.Marshal(v)
	return Item{ID: id, Type: TypeRating, Visible: true, Value: raw}
}

// NewImageItem builds a visible image item.
func NewImageItem(id string, v ImageValue) Item {
	raw, _ := json.Marshal(v)
	return Item{ID: id, Type: TypeImage, Visible: true, Value: raw}
}

// NewSeparatorItem builds a visible separator.
func NewSeparatorItem(id string) Item {
	return Item{ID: id, Type: TypeSeparator, Visible: true, Value: json.RawMessage("null")}
}
