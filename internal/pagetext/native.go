package pagetext

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

const defaultPageHeight = 792.0

// nativePages reads every page with the pure-Go reader. A page that panics
// or fails to decode keeps its slot with DecodeError set.
func nativePages(path string, logger *slog.Logger) ([]entity.PageInput, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]entity.PageInput, 0, n)
	for i := 1; i <= n; i++ {
		p := readPage(r, i)
		if p.DecodeError != "" {
			logger.Warn("pagetext.page.failed", "path", path, "page", i, "error", p.DecodeError)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func readPage(r *pdf.Reader, pageNo int) (out entity.PageInput) {
	out.PageNo = pageNo
	defer func() {
		if rec := recover(); rec != nil {
			out.Text, out.Words = "", nil
			out.DecodeError = fmt.Sprint(rec)
		}
	}()

	page := r.Page(pageNo)
	if page.V.IsNull() {
		out.DecodeError = "page object missing"
		return out
	}
	out.Width, out.Height = mediaBox(page)

	text, err := page.GetPlainText(nil)
	if err != nil {
		out.DecodeError = err.Error()
		return out
	}
	out.Text = textnorm.Page(text)

	h := out.Height
	if h <= 0 {
		h = defaultPageHeight
	}
	out.Words = wordsFromGlyphs(page.Content().Text, pageNo, h)
	return out
}

func mediaBox(page pdf.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return 0, 0
	}
	x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
	x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
	return math.Abs(x1 - x0), math.Abs(y1 - y0)
}

// wordsFromGlyphs joins consecutive glyphs into words. A whitespace glyph, a
// baseline change or a horizontal gap wider than a fifth of the font size
// ends the current word. Coordinates are flipped to a top-left origin.
func wordsFromGlyphs(glyphs []pdf.Text, pageNo int, height float64) []entity.PositionedWord {
	var (
		words []entity.PositionedWord
		b     strings.Builder
		cur   entity.BBox
		base  float64
		open  bool
	)
	flush := func() {
		if open {
			if s := strings.TrimSpace(b.String()); s != "" {
				words = append(words, entity.PositionedWord{Text: s, BBox: cur, Page: pageNo})
			}
		}
		b.Reset()
		open = false
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		if open {
			gap := g.X - cur.X1
			if math.Abs(g.Y-base) > size/2 || gap > size/5 || gap < -size {
				flush()
			}
		}
		box := entity.BBox{
			X0: g.X,
			Y0: height - g.Y - size,
			X1: g.X + g.W,
			Y1: height - g.Y,
		}
		if !open {
			cur, base, open = box, g.Y, true
		} else {
			cur = cur.Union(box)
		}
		b.WriteString(g.S)
	}
	flush()
	return words
}
