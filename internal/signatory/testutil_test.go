package signatory

import (
	"math"
	"strings"

	"github.com/Open-AIP/OpenAIP/internal/entity"
)

// lineWords lays out text as words of width max(12, 5*len) separated by 4pt.
func lineWords(text string, x0, y0 float64, page int) []entity.PositionedWord {
	var out []entity.PositionedWord
	cursor := x0
	for _, tok := range strings.Fields(text) {
		w := math.Max(12, float64(len(tok))*5)
		out = append(out, entity.PositionedWord{
			Text: tok,
			BBox: entity.BBox{X0: cursor, Y0: y0, X1: cursor + w, Y1: y0 + 10},
			Page: page,
		})
		cursor += w + 4
	}
	return out
}

type placed struct {
	text string
	x, y float64
}

func pageOf(page int, items ...placed) entity.PageInput {
	p := entity.PageInput{PageNo: page, Width: 612, Height: 792}
	for _, it := range items {
		p.Words = append(p.Words, lineWords(it.text, it.x, it.y, page)...)
	}
	return p
}

func names(sigs []entity.Signatory) []string {
	out := make([]string, len(sigs))
	for i, s := range sigs {
		out[i] = s.Name
	}
	return out
}

func lineOf(text string, x, y float64, page int) entity.PositionedLine {
	words := lineWords(text, x, y, page)
	box := words[0].BBox
	for _, w := range words[1:] {
		box = box.Union(w.BBox)
	}
	return entity.PositionedLine{Words: words, Text: text, BBox: box, Page: page}
}
