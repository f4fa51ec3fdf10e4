package pagetext

import (
	"strings"

	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

// SplitTextPages splits pdftotext-style output on form feeds. A trailing
// empty page after the final form feed is dropped.
func SplitTextPages(text string) []entity.PageInput {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := strings.Split(text, "\f")
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	pages := make([]entity.PageInput, len(raw))
	for i, r := range raw {
		pages[i] = entity.PageInput{PageNo: i + 1, Text: textnorm.Page(r)}
	}
	return pages
}
