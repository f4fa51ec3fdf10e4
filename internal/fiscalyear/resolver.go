// Package fiscalyear picks the fiscal year a document covers.
package fiscalyear

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/provenance"
)

var yearPattern = regexp.MustCompile(`\b(20\d{2}|2100)\b`)

// maxRefs bounds the page refs attached to an ambiguity warning.
const maxRefs = 3

// Clock returns the current time; tests pin it.
type Clock func() time.Time

// Candidate is one year and how often it appears.
type Candidate struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Count tallies year tokens across pages, most frequent first and lower year
// first on ties. pagesByYear holds the 1-based pages each year appears on.
func Count(pages []string) (ordered []Candidate, pagesByYear map[int][]int) {
	counts := map[int]int{}
	pagesByYear = map[int][]int{}
	for i, text := range pages {
		for _, m := range yearPattern.FindAllString(text, -1) {
			y, err := strconv.Atoi(m)
			if err != nil || y < constants.MinFiscalYear || y > constants.MaxFiscalYear {
				continue
			}
			counts[y]++
			pagesByYear[y] = append(pagesByYear[y], i+1)
		}
	}
	for y, n := range counts {
		ordered = append(ordered, Candidate{Year: y, Count: n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Count != ordered[j].Count {
			return ordered[i].Count > ordered[j].Count
		}
		return ordered[i].Year < ordered[j].Year
	})
	return ordered, pagesByYear
}

// Resolve returns the selected year and any warnings. Without a year token the
// current year from now is used and FISCAL_YEAR_MISSING is emitted.
func Resolve(pages []string, now Clock) (int, []entity.Warning) {
	if now == nil {
		now = time.Now
	}
	ordered, pagesByYear := Count(pages)
	if len(ordered) == 0 {
		fallback := now().UTC().Year()
		return fallback, []entity.Warning{{
			Code:    constants.WarnFiscalYearMissing,
			Message: fmt.Sprintf("No fiscal year detected from PDF text; defaulted to %d.", fallback),
			Details: map[string]any{"selected": fallback},
		}}
	}

	selected := ordered[0].Year
	if len(ordered) == 1 || ordered[0].Count != ordered[1].Count {
		return selected, nil
	}

	candidates := make([]map[string]any, len(ordered))
	for i, c := range ordered {
		candidates[i] = map[string]any{"year": c.Year, "count": c.Count}
	}
	var refs []entity.SourceRef
	for _, p := range distinctSorted(pagesByYear[selected]) {
		if len(refs) == maxRefs {
			break
		}
		refs = append(refs, provenance.TextRef(p, constants.KindHeader, strconv.Itoa(selected), nil))
	}
	return selected, []entity.Warning{{
		Code:       constants.WarnFiscalYearAmbiguous,
		Message:    "Multiple fiscal-year candidates detected with same frequency.",
		Details:    map[string]any{"candidates": candidates, "selected": selected},
		SourceRefs: refs,
	}}
}

func distinctSorted(pages []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, p := range pages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
