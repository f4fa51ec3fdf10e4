// Package signatory pairs role labels ("Prepared by:") with the names and
// positions printed beneath them.
package signatory

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/layout"
	"github.com/Open-AIP/OpenAIP/internal/provenance"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

// Config holds the capture geometry and name-validation thresholds.
type Config struct {
	Layout layout.Config

	CaptureRegionRatio float64 // share of page height searched below an anchor
	ColumnPadding      float64 // horizontal slack around a column band
	PositionGapMax     float64 // max vertical gap between a name and its position
	SameRowTolerance   float64 // y0 distance under which anchors share a row
	DefaultPageHeight  float64

	MinNameLetters     int
	MinLetterRatio     float64
	MinNameTokens      int
	MaxNameTokens      int
	MinPositionLetters int
}

func DefaultConfig() Config {
	return Config{
		Layout:             layout.DefaultConfig(),
		CaptureRegionRatio: 0.60,
		ColumnPadding:      8,
		PositionGapMax:     32,
		SameRowTolerance:   12,
		DefaultPageHeight:  792,
		MinNameLetters:     3,
		MinLetterRatio:     0.55,
		MinNameTokens:      2,
		MaxNameTokens:      8,
		MinPositionLetters: 4,
	}
}

// ParseWords groups a page's words into lines and resolves signatories from them.
func ParseWords(words []entity.PositionedWord, page int, width, height float64, cfg Config) ([]entity.Signatory, []entity.Warning) {
	return ParseLines(layout.GroupLines(words, cfg.Layout), page, width, height, cfg)
}

// ParseLines resolves signatories from positioned lines using anchor columns
// and capture regions.
func ParseLines(lines []entity.PositionedLine, page int, width, height float64, cfg Config) ([]entity.Signatory, []entity.Warning) {
	anchors := DetectAnchors(lines)
	if len(anchors) == 0 {
		return nil, nil
	}
	if width <= 0 {
		width = cfg.Layout.DefaultPageWidth
	}
	if height <= 0 {
		height = cfg.DefaultPageHeight
	}

	centers := make([]float64, len(anchors))
	for i, a := range anchors {
		centers[i] = a.BBox.XCenter()
	}
	columns := layout.ClusterColumns(centers, width, cfg.Layout)

	var sigs []entity.Signatory
	var warns []entity.Warning
	for i, a := range anchors {
		global, _ := layout.NearestColumn(columns, a.BBox.XCenter())
		col := columnForAnchor(i, anchors, global, width, cfg)
		reg := captureRegion(i, anchors, col, height, cfg)

		var candidates []entity.PositionedLine
		for _, l := range lines {
			if reg.holds(l) && l.BBox.YCenter() > a.BBox.Y1 {
				candidates = append(candidates, l)
			}
		}
		pairs := extractPairs(candidates, cfg)
		if len(pairs) == 0 {
			box := a.BBox
			warns = append(warns, parseFailed(a.Role, page, a.Label, &box, constants.ReasonNameNotFound))
			continue
		}
		for _, p := range pairs {
			sigs = append(sigs, newSignatory(a.Role, p, page))
		}
	}
	return sigs, warns
}

// ParseText is the text-layer-only path: a line that is exactly a role label
// opens a block which runs until the next role label. Lines inside a block get
// pseudo-coordinates so the positioned pairing rules still apply.
func ParseText(lines []string, page int, cfg Config) ([]entity.Signatory, []entity.Warning) {
	return parseText(lines, page, constants.ReasonTextLayerMissing, cfg)
}

func parseText(lines []string, page int, reason string, cfg Config) ([]entity.Signatory, []entity.Warning) {
	var raw []string
	for _, l := range lines {
		if l = textnorm.Whitespace(l); l != "" {
			raw = append(raw, l)
		}
	}
	var sigs []entity.Signatory
	var warns []entity.Warning
	for i := 0; i < len(raw); {
		cur := raw[i]
		role, isLabel := constants.RoleFromLabel(textnorm.LettersOnly(cur))
		if !isLabel {
			if m := labelPattern.FindString(cur); m != "" {
				r, ok := constants.RoleFromLabel(textnorm.LettersOnly(m))
				if !ok {
					r = "other"
				}
				warns = append(warns, parseFailed(r, page, cur, nil, reason))
			}
			i++
			continue
		}

		j := i + 1
		var block []entity.PositionedLine
		for ; j < len(raw); j++ {
			if _, next := constants.RoleFromLabel(textnorm.LettersOnly(raw[j])); next {
				break
			}
			block = append(block, pseudoLine(raw[j], len(block), page))
		}
		pairs := extractPairs(block, cfg)
		if len(pairs) == 0 {
			warns = append(warns, parseFailed(role, page, cur, nil, reason))
		}
		for _, p := range pairs {
			sigs = append(sigs, newSignatory(role, p, page))
		}
		i = j
	}
	return sigs, warns
}

// pseudoLine fakes geometry for a text-only line: 14pt line pitch, 9pt tall,
// all lines in a single column.
func pseudoLine(text string, index, page int) entity.PositionedLine {
	y0 := float64(index) * 14
	y1 := y0 + 9
	var words []entity.PositionedWord
	for k, tok := range strings.Fields(text) {
		x0 := float64(k) * 10
		words = append(words, entity.PositionedWord{
			Text: tok,
			BBox: entity.BBox{X0: x0, Y0: y0, X1: x0 + math.Max(8, float64(len(tok))*4), Y1: y1},
			Page: page,
		})
	}
	return entity.PositionedLine{
		Words: words,
		Text:  text,
		BBox:  entity.BBox{X0: 0, Y0: y0, X1: float64(max(1, len(text))) * 6, Y1: y1},
		Page:  page,
	}
}

// ParsePage runs the positioned path when the page has words and falls back to
// the text path when that yields nothing. An anchor with no name becomes a
// SIGNATORY_PARSE_FAILED warning; nothing is ever fabricated.
func ParsePage(p entity.PageInput, cfg Config) ([]entity.Signatory, []entity.Warning) {
	reason := constants.ReasonTextLayerMissing
	var sigs []entity.Signatory
	var warns []entity.Warning
	var lines []entity.PositionedLine
	if p.HasWords() {
		reason = constants.ReasonNameNotFound
		lines = layout.GroupLines(p.Words, cfg.Layout)
		sigs, warns = ParseLines(lines, p.PageNo, p.Width, p.Height, cfg)
	}

	text := p.Text
	if strings.TrimSpace(text) == "" && len(lines) > 0 {
		parts := make([]string, len(lines))
		for i, l := range lines {
			parts[i] = l.Text
		}
		text = strings.Join(parts, "\n")
	}

	if len(sigs) == 0 {
		fs, fw := parseText(textnorm.Lines(text), p.PageNo, reason, cfg)
		if len(fs) > 0 {
			warns = dropResolvedRoles(warns, fs)
		}
		sigs = append(sigs, fs...)
		warns = mergeFallbackWarnings(warns, fw)
	}

	if len(sigs) == 0 && len(warns) == 0 {
		if m := labelPattern.FindString(text); m != "" {
			warns = append(warns, entity.Warning{
				Code:       constants.WarnSignatoryParseFailed,
				Message:    "Found signatory label but no name extracted",
				Details:    map[string]any{"reason": reason},
				SourceRefs: []entity.SourceRef{provenance.TextRef(p.PageNo, constants.KindTextBlock, m, nil)},
			})
		}
	}
	return DedupSignatories(sigs), warns
}

// SelectPages returns the 1-based pages worth scanning: the first, the last,
// and every page whose text carries a role label.
func SelectPages(texts []string) []int {
	if len(texts) == 0 {
		return nil
	}
	set := map[int]struct{}{1: {}, len(texts): {}}
	for i, t := range texts {
		if labelPattern.MatchString(t) {
			set[i+1] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Resolve scans the selected pages of a document and merges the results.
func Resolve(pages []entity.PageInput, cfg Config) ([]entity.Signatory, []entity.Warning) {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	var sigs []entity.Signatory
	var warns []entity.Warning
	for _, n := range SelectPages(texts) {
		p := pages[n-1]
		if p.PageNo < 1 {
			p.PageNo = n
		}
		s, w := ParsePage(p, cfg)
		sigs = append(sigs, s...)
		warns = append(warns, w...)
	}
	return DedupSignatories(sigs), warns
}

// DedupSignatories merges entries sharing (role, name, position), compared
// case-insensitively, and unions their source refs.
func DedupSignatories(in []entity.Signatory) []entity.Signatory {
	if len(in) == 0 {
		return nil
	}
	index := map[string]int{}
	var out []entity.Signatory
	for _, s := range in {
		k := string(s.Role) + "|" + strings.ToLower(s.Name) + "|" + strings.ToLower(s.Position)
		if i, ok := index[k]; ok {
			out[i].SourceRefs = provenance.Merge(out[i].SourceRefs, s.SourceRefs)
			continue
		}
		index[k] = len(out)
		s.SourceRefs = provenance.Dedup(s.SourceRefs)
		out = append(out, s)
	}
	return out
}

func newSignatory(role constants.SignatoryRole, p pair, page int) entity.Signatory {
	box := p.bbox
	evidence := fmt.Sprintf("%s: %s", role.Display(), p.name)
	return entity.Signatory{
		Role:       role,
		Name:       p.name,
		Position:   p.position,
		Office:     InferOffice(p.position),
		SourceRefs: []entity.SourceRef{provenance.TextRef(page, constants.KindTextBlock, evidence, &box)},
	}
}

func parseFailed(role constants.SignatoryRole, page int, evidence string, box *entity.BBox, reason string) entity.Warning {
	return entity.Warning{
		Code:       constants.WarnSignatoryParseFailed,
		Message:    fmt.Sprintf("Found %s label but no name extracted", role),
		Details:    map[string]any{"role": string(role), "reason": reason},
		SourceRefs: []entity.SourceRef{provenance.TextRef(page, constants.KindTextBlock, evidence, box)},
	}
}

func dropResolvedRoles(warns []entity.Warning, resolved []entity.Signatory) []entity.Warning {
	roles := map[string]struct{}{}
	for _, s := range resolved {
		roles[string(s.Role)] = struct{}{}
	}
	var out []entity.Warning
	for _, w := range warns {
		if r, ok := w.Details["role"].(string); ok {
			if _, done := roles[r]; done {
				continue
			}
		}
		out = append(out, w)
	}
	return out
}

// mergeFallbackWarnings appends the text fallback's warnings, skipping one per
// positioned warning already raised for the same code and role. Both passes
// see the same labels, so each anchor keeps exactly one warning.
func mergeFallbackWarnings(primary, fallback []entity.Warning) []entity.Warning {
	pending := map[string]int{}
	for _, w := range primary {
		pending[warningKey(w)]++
	}
	out := primary
	for _, w := range fallback {
		k := warningKey(w)
		if pending[k] > 0 {
			pending[k]--
			continue
		}
		out = append(out, w)
	}
	return out
}

func warningKey(w entity.Warning) string {
	role, _ := w.Details["role"].(string)
	return fmt.Sprintf("%s|%s|%d", w.Code, role, w.Page())
}
