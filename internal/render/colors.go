package render

import (
	"strings"

	"openResume/internal/resume"
)

// Default hex values used when a document supplies fewer than 4 accents.
// They mirror the palette new documents start with.
const (
	DefaultBackground = "#ffffff"
	DefaultText       = "#1f2937"
	DefaultPrimary    = "#2563eb"
	DefaultSecondary  = "#3b82f6"
	DefaultBorder     = "#e5e7eb"
	DefaultMuted      = "#6b7280"
)

// Scheme 是解析后的语义化配色，渲染器只消费这个结构，
// 不直接读取原始的 accents 数组。
type Scheme struct {
	Background string
	Text       string
	Primary    string
	Secondary  string
	Border     string
	Muted      string
}

// ResolveScheme maps a document's raw color settings onto semantic roles.
// Missing or blank slots fall back to fixed defaults. Pure, called once per
// render pass.
func ResolveScheme(c resume.ColorSettings) Scheme {
	return Scheme{
		Background: orDefault(c.Background, DefaultBackground),
		Text:       orDefault(c.Text, DefaultText),
		Primary:    accent(c.Accents, 0, DefaultPrimary),
		Secondary:  accent(c.Accents, 1, DefaultSecondary),
		Border:     accent(c.Accents, 2, DefaultBorder),
		Muted:      accent(c.Accents, 3, DefaultMuted),
	}
}

func accent(accents []string, slot int, fallback string) string {
	if slot < len(accents) {
		return orDefault(accents[slot], fallback)
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// HexRGB parses a #rrggbb (or short #rgb) color. Unparsable input yields
// black, which keeps bad data visible instead of failing a render.
func HexRGB(s string) (r, g, b uint8) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0
	}
	v := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return 0, 0, 0
		}
		v[i] = hi<<4 | lo
	}
	return v[0], v[1], v[2]
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
