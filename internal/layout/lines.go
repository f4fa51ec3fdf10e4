// Package layout rebuilds lines and column bands from positioned words.
package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

// Config holds the geometric thresholds used for line and column detection.
type Config struct {
	// MinYTolerance is the floor of the vertical merge tolerance (points).
	MinYTolerance float64
	// YToleranceFactor scales the median word height into the merge tolerance.
	YToleranceFactor float64
	// MinGapSplit is the floor of the horizontal gap that splits a row.
	MinGapSplit float64
	// GapSplitFactor scales the median word width into the split gap.
	GapSplitFactor float64
	// DefaultWordWidth and DefaultWordHeight apply when no word has a usable box.
	DefaultWordWidth  float64
	DefaultWordHeight float64
	// ColumnClusterRatio is the fraction of page width within which anchor
	// x-centers merge into one column band.
	ColumnClusterRatio float64
	// DefaultPageWidth is used when the page width is unknown.
	DefaultPageWidth float64
	// EdgeLines is how many lines at the top/bottom count as header/footer.
	EdgeLines int
}

// DefaultConfig returns the thresholds tuned on AIP signature pages.
func DefaultConfig() Config {
	return Config{
		MinYTolerance:      2.5,
		YToleranceFactor:   0.8,
		MinGapSplit:        24,
		GapSplitFactor:     3.5,
		DefaultWordWidth:   12,
		DefaultWordHeight:  8,
		ColumnClusterRatio: 0.18,
		DefaultPageWidth:   1000,
		EdgeLines:          3,
	}
}

// GroupLines sweeps words top to bottom into lines. Words whose vertical
// center stays within tolerance of the running row average share a row. A row
// is then split wherever the horizontal gap is wide enough to mean a separate
// column printed on the same text row (two signature blocks side by side).
func GroupLines(words []entity.PositionedWord, cfg Config) []entity.PositionedLine {
	clean := make([]entity.PositionedWord, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Text); t != "" {
			w.Text = t
			clean = append(clean, w)
		}
	}
	if len(clean) == 0 {
		return nil
	}

	yTol := math.Max(cfg.MinYTolerance, cfg.YToleranceFactor*medianHeight(clean, cfg))

	sort.SliceStable(clean, func(i, j int) bool {
		yi, yj := clean[i].BBox.YCenter(), clean[j].BBox.YCenter()
		if yi != yj {
			return yi < yj
		}
		return clean[i].BBox.X0 < clean[j].BBox.X0
	})

	var rows [][]entity.PositionedWord
	var cur []entity.PositionedWord
	var sumY float64
	for _, w := range clean {
		y := w.BBox.YCenter()
		if len(cur) > 0 && math.Abs(y-sumY/float64(len(cur))) <= yTol {
			cur = append(cur, w)
			sumY += y
			continue
		}
		if len(cur) > 0 {
			rows = append(rows, cur)
		}
		cur = []entity.PositionedWord{w}
		sumY = y
	}
	rows = append(rows, cur)

	var lines []entity.PositionedLine
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].BBox.X0 < row[j].BBox.X0 })
		gapSplit := math.Max(cfg.MinGapSplit, cfg.GapSplitFactor*medianWidth(row, cfg))
		start := 0
		for i := 1; i <= len(row); i++ {
			if i == len(row) || row[i].BBox.X0-row[i-1].BBox.X1 > gapSplit {
				lines = append(lines, buildLine(row[start:i]))
				start = i
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		yi, yj := lines[i].BBox.YCenter(), lines[j].BBox.YCenter()
		if yi != yj {
			return yi < yj
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
	return lines
}

func buildLine(words []entity.PositionedWord) entity.PositionedLine {
	ws := make([]entity.PositionedWord, len(words))
	copy(ws, words)
	texts := make([]string, len(ws))
	box := ws[0].BBox
	for i, w := range ws {
		texts[i] = w.Text
		box = box.Union(w.BBox)
	}
	return entity.PositionedLine{
		Words: ws,
		Text:  strings.Join(texts, " "),
		BBox:  box,
		Page:  ws[0].Page,
	}
}

func medianHeight(words []entity.PositionedWord, cfg Config) float64 {
	var hs []float64
	for _, w := range words {
		if h := w.BBox.Height(); h > 0 {
			hs = append(hs, h)
		}
	}
	if len(hs) == 0 {
		return cfg.DefaultWordHeight
	}
	return median(hs)
}

// medianWidth is computed per row so a sparse signature row is not judged
// by the dense body text above it.
func medianWidth(words []entity.PositionedWord, cfg Config) float64 {
	var ws []float64
	for _, w := range words {
		if wd := w.BBox.Width(); wd > 0 {
			ws = append(ws, wd)
		}
	}
	if len(ws) == 0 {
		return cfg.DefaultWordWidth
	}
	return median(ws)
}

func median(vals []float64) float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// EdgeKind classifies a line by its position on the page: the first and
// last EdgeLines lines are header/footer, everything else a text block.
func EdgeKind(lineIndex, lineCount int, cfg Config) constants.SourceKind {
	switch {
	case lineIndex <= cfg.EdgeLines:
		return constants.KindHeader
	case lineIndex >= lineCount-cfg.EdgeLines:
		return constants.KindFooter
	default:
		return constants.KindTextBlock
	}
}
