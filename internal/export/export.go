// Package export 负责把简历快照变成可下发的 PDF 工件。
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"openResume/internal/pdf"
	"openResume/internal/resume"
)

// Artifact 是一次导出的结果：字节流与建议的下载文件名。
type Artifact struct {
	Data     []byte
	Filename string
}

// Export renders the snapshot with the named template, encodes it and
// validates the resulting file. Errors are returned to the caller as-is, the
// caller decides whether a retry makes sense.
func Export(ctx context.Context, doc *resume.Resume, templateName string, tr resume.TranslateFunc) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	positioned := pdf.Generate(doc, templateName, tr)
	data, err := pdf.Encode(positioned)
	if err != nil {
		return Artifact{}, fmt.Errorf("export resume: %w", err)
	}

	if err := validate(data); err != nil {
		return Artifact{}, fmt.Errorf("export produced invalid pdf: %w", err)
	}

	return Artifact{Data: data, Filename: Filename(doc.Personal.FullName)}, nil
}

func validate(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.Validate(bytes.NewReader(data), conf)
}

// Filename 把姓名转成安全的下载文件名，空名退回 resume.pdf。
func Filename(fullName string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, fullName)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "resume.pdf"
	}
	return cleaned + ".pdf"
}
