package layout

import (
	"math"
	"strings"

	"github.com/Open-AIP/OpenAIP/internal/entity"
)

// lineWords lays out text as words of width max(12, 5*len) separated by 4pt.
func lineWords(text string, x0, y0 float64) []entity.PositionedWord {
	var out []entity.PositionedWord
	cursor := x0
	for _, tok := range strings.Fields(text) {
		w := math.Max(12, float64(len(tok))*5)
		out = append(out, entity.PositionedWord{
			Text: tok,
			BBox: entity.BBox{X0: cursor, Y0: y0, X1: cursor + w, Y1: y0 + 10},
			Page: 1,
		})
		cursor += w + 4
	}
	return out
}
