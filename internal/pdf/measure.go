package pdf

import (
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily      = "Helvetica"
	defaultFontSize = 12
	lineHeightRatio = 1.4
)

// measurer wraps a gofpdf instance used purely for string metrics. Layout
// and encoding share the same font tables, so wrapped line breaks in the
// preview match the exported artifact exactly.
type measurer struct {
	mu   sync.Mutex
	f    *gofpdf.Fpdf
	conv func(string) string
}

func newMeasurer() *measurer {
	f := gofpdf.New("P", "pt", "A4", "")
	f.SetFont(fontFamily, "", defaultFontSize)
	return &measurer{f: f, conv: f.UnicodeTranslatorFromDescriptor("")}
}

// width returns the rendered width of text in points.
func (m *measurer) width(text string, size float64, style string) float64 {
	if size <= 0 {
		size = defaultFontSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.f.SetFont(fontFamily, style, size)
	return m.f.GetStringWidth(m.conv(text))
}

// wrap splits text into lines no wider than maxWidth using greedy word
// fill. A single overlong word occupies its own line rather than being
// broken mid-word.
func (m *measurer) wrap(text string, size float64, style string, maxWidth float64) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxWidth <= 0 || m.width(text, size, style) <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	var lines []string
	var current string
	for _, w := range words {
		candidate := w
		if current != "" {
			candidate = current + " " + w
		}
		if m.width(candidate, size, style) <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
