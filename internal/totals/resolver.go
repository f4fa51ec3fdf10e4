// Package totals finds the document's headline "Total Investment Program"
// amount.
package totals

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/provenance"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

var (
	amountPattern     = regexp.MustCompile(`(\()?\s*(?:(?:PHP|Php|php)\s*)?(?:₱\s*)?((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?)(\))?`)
	investmentContext = regexp.MustCompile(`(?i)\b(investment|program|aip)\b`)
)

const maxEvidence = 400

// keyword is a headline phrase and its rank; longer phrases rank higher.
type keyword struct {
	phrase       string
	rank         int
	needsContext bool
}

var keywords = []keyword{
	{"TOTAL INVESTMENT PROGRAM", 4, false},
	{"TOTAL INVESTMENT", 3, false},
	{"GRAND TOTAL", 2, false},
	{"TOTAL:", 1, true},
}

const exactPhrase = "TOTAL INVESTMENT PROGRAM"

// Config holds the confidence weights.
type Config struct {
	RankWeight   int
	AmountOnLine int
	ExactPhrase  int
	ContextBonus int
}

func DefaultConfig() Config {
	return Config{RankWeight: 100, AmountOnLine: 20, ExactPhrase: 15, ContextBonus: 5}
}

// ParseAmount returns the right-most amount in text. A parenthesized amount
// is negative.
func ParseAmount(text string) (decimal.Decimal, bool) {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return decimal.Zero, false
	}
	m := matches[len(matches)-1]
	v, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	if m[1] != "" && m[3] != "" {
		v = v.Neg()
	}
	return v, true
}

func classify(lineUpper, contextUpper string) (keyword, bool) {
	for _, k := range keywords {
		if !strings.Contains(lineUpper, k.phrase) {
			continue
		}
		if k.needsContext && !investmentContext.MatchString(contextUpper) {
			return keyword{}, false
		}
		return k, true
	}
	return keyword{}, false
}

// Candidates scans every line with one line of context either side.
func Candidates(pages []string, cfg Config) []entity.TotalCandidate {
	var out []entity.TotalCandidate
	for pi, text := range pages {
		lines := textnorm.Lines(text)
		for li, line := range lines {
			var prev, next string
			if li > 0 {
				prev = lines[li-1]
			}
			if li+1 < len(lines) {
				next = lines[li+1]
			}
			if c, ok := candidate(prev, line, next, cfg); ok {
				c.Page = pi + 1
				c.LineIndex = li
				out = append(out, c)
			}
		}
	}
	return out
}

func candidate(prev, line, next string, cfg Config) (entity.TotalCandidate, bool) {
	parts := nonEmpty(prev, line, next)
	context := strings.Join(parts, " ")
	k, ok := classify(strings.ToUpper(line), strings.ToUpper(context))
	if !ok {
		return entity.TotalCandidate{}, false
	}
	value, onLine := ParseAmount(line)
	if !onLine {
		var found bool
		if value, found = ParseAmount(context); !found {
			return entity.TotalCandidate{}, false
		}
	}

	conf := k.rank * cfg.RankWeight
	if onLine {
		conf += cfg.AmountOnLine
	}
	if k.phrase == exactPhrase {
		conf += cfg.ExactPhrase
	}
	if investmentContext.MatchString(context) {
		conf += cfg.ContextBonus
	}
	return entity.TotalCandidate{
		KeywordRank:  k.rank,
		Confidence:   conf,
		Value:        value,
		Line:         line,
		EvidenceText: textnorm.Truncate(strings.Join(parts, " | "), maxEvidence),
	}, true
}

// Best orders by (rank, confidence, value) descending and then by the
// earliest page.
func Best(cands []entity.TotalCandidate) (entity.TotalCandidate, bool) {
	if len(cands) == 0 {
		return entity.TotalCandidate{}, false
	}
	sorted := make([]entity.TotalCandidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.KeywordRank != b.KeywordRank {
			return a.KeywordRank > b.KeywordRank
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if c := a.Value.Cmp(b.Value); c != 0 {
			return c > 0
		}
		return a.Page < b.Page
	})
	return sorted[0], true
}

// Resolve returns zero or one total record. The caller gets a
// TOTALS_NOT_FOUND warning instead of a record when nothing matches.
func Resolve(pages []string, fiscalYear int, cfg Config) ([]entity.TotalRecord, []entity.Warning) {
	best, ok := Best(Candidates(pages, cfg))
	if !ok {
		return nil, []entity.Warning{{
			Code:    constants.WarnTotalsNotFound,
			Message: "totals_not_found: " + constants.TotalSourceLabel,
			Details: map[string]any{"source_label": constants.TotalSourceLabel},
		}}
	}
	ref := provenance.New(provenance.Input{
		Page:         best.Page,
		Kind:         constants.KindTextBlock,
		EvidenceText: best.EvidenceText,
		RowIndex:     &best.LineIndex,
	})
	return []entity.TotalRecord{{
		SourceLabel:  constants.TotalSourceLabel,
		FiscalYear:   fiscalYear,
		Value:        best.Value,
		Currency:     constants.CurrencyPHP,
		PageNo:       best.Page,
		EvidenceText: best.EvidenceText,
		SourceRefs:   []entity.SourceRef{ref},
	}}, nil
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
