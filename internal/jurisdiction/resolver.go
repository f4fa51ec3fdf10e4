// Package jurisdiction resolves the LGU that issued a document from marker
// phrases such as "Barangay San Isidro" or "City of Naga".
package jurisdiction

import (
	"sort"
	"strings"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/layout"
	"github.com/Open-AIP/OpenAIP/internal/provenance"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

// Config holds the scoring weights.
type Config struct {
	Layout layout.Config

	EdgeBonus      int // line is a header or footer
	FirstPageBonus int
	ExactBonus     int // the whole line is the candidate name
	UpperBonus     int
	AIPBonus       int // line mentions "annual investment program"
	YearBonus      int
	NoisePenalty   int

	AmbiguityGap int // same-type competitor within this many points is ambiguous
	HighGap      int
	MediumGap    int
	MaxWarnPeers int // competitors whose refs go on the ambiguity warning
}

func DefaultConfig() Config {
	return Config{
		Layout:         layout.DefaultConfig(),
		EdgeBonus:      14,
		FirstPageBonus: 8,
		ExactBonus:     18,
		UpperBonus:     7,
		AIPBonus:       6,
		YearBonus:      4,
		NoisePenalty:   5,
		AmbiguityGap:   20,
		HighGap:        25,
		MediumGap:      8,
		MaxWarnPeers:   2,
	}
}

// Result is the resolved LGU plus every ranked candidate.
type Result struct {
	LGU        entity.LguInfo
	Candidates []entity.JurisdictionCandidate
	Warnings   []entity.Warning
}

type mention struct {
	lguType constants.LGUType
	name    string
}

// Mentions returns the distinct jurisdiction mentions on one line.
func Mentions(line string) []entity.JurisdictionCandidate {
	var out []entity.JurisdictionCandidate
	for _, m := range lineMentions(textnorm.Whitespace(line)) {
		out = append(out, entity.JurisdictionCandidate{Type: m.lguType, Name: m.name})
	}
	return out
}

func lineMentions(line string) []mention {
	if line == "" {
		return nil
	}
	var out []mention
	seen := map[string]struct{}{}
	add := func(t constants.LGUType, name string) {
		k := string(t) + "|" + strings.ToLower(name)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, mention{lguType: t, name: name})
	}
	for _, mk := range markers {
		for _, loc := range mk.pattern.FindAllStringIndex(line, -1) {
			if name, ok := nameAfter(line[loc[1]:], mk.maxTokens, mk.stopwords); ok {
				add(mk.lguType, mk.prefix+" "+name)
			}
		}
	}
	for _, sub := range regionPattern.FindAllStringSubmatch(line, -1) {
		if tok := strings.ToUpper(textnorm.Whitespace(sub[1])); tok != "" {
			add(constants.LGURegion, "Region "+tok)
		}
	}
	return out
}

// nameAfter collects up to maxTokens name tokens from tail. A stopword, a
// digit or a stray single letter ends the name; hitting one before any token
// was collected rejects the mention.
func nameAfter(tail string, maxTokens int, stop map[string]struct{}) (string, bool) {
	tail = leadingPunct.ReplaceAllString(tail, "")
	if tail == "" {
		return "", false
	}
	var collected []string
	for _, tok := range wordToken.FindAllString(tail, -1) {
		cleaned := strings.Trim(tok, ".,-")
		if cleaned == "" {
			continue
		}
		_, isStop := stop[strings.ToLower(cleaned)]
		stray := len(cleaned) == 1 && !strings.ContainsAny(strings.ToUpper(cleaned), "IVX")
		if isStop || stray || textnorm.HasDigit(cleaned) {
			if len(collected) == 0 {
				return "", false
			}
			break
		}
		collected = append(collected, cleaned)
		if len(collected) >= maxTokens {
			break
		}
	}
	if len(collected) == 0 {
		return "", false
	}
	return formatName(collected), true
}

func formatName(tokens []string) string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if up := strings.ToUpper(t); romanNumeral.MatchString(up) {
			out = append(out, up)
			continue
		}
		out = append(out, textnorm.Title(t))
	}
	return strings.Join(out, " ")
}

func score(m mention, line string, kind constants.SourceKind, pageIndex int, cfg Config) int {
	s := m.lguType.BaseScore()
	if kind == constants.KindHeader || kind == constants.KindFooter {
		s += cfg.EdgeBonus
	}
	if pageIndex == 0 {
		s += cfg.FirstPageBonus
	}
	lower := strings.ToLower(line)
	if lower == strings.ToLower(m.name) {
		s += cfg.ExactBonus
	}
	if textnorm.IsUpper(line) {
		s += cfg.UpperBonus
	}
	if strings.Contains(lower, "annual investment program") {
		s += cfg.AIPBonus
	}
	if fyToken.MatchString(line) || yearToken.MatchString(line) {
		s += cfg.YearBonus
	}
	if m.lguType == constants.LGUBarangay {
		for _, noise := range barangayNoise {
			if strings.Contains(lower, noise) {
				s -= cfg.NoisePenalty
				break
			}
		}
	}
	return s
}

// Collect scores every mention on every page and aggregates per (type, name).
// Pages are 1-based in the returned refs.
func Collect(pages []string, cfg Config) []entity.JurisdictionCandidate {
	index := map[mention]int{}
	var out []entity.JurisdictionCandidate
	for pi, text := range pages {
		lines := textnorm.Lines(text)
		for li, line := range lines {
			kind := layout.EdgeKind(li, len(lines), cfg.Layout)
			for _, m := range lineMentions(line) {
				i, ok := index[m]
				if !ok {
					i = len(out)
					index[m] = i
					out = append(out, entity.JurisdictionCandidate{Type: m.lguType, Name: m.name})
				}
				out[i].Score += score(m, line, kind, pi, cfg)
				out[i].SourceRefs = append(out[i].SourceRefs, provenance.TextRef(pi+1, kind, line, nil))
			}
		}
	}
	for i := range out {
		out[i].SourceRefs = provenance.Dedup(out[i].SourceRefs)
	}
	rank(out)
	return out
}

// rank orders by specificity, then score, then name. Sorting on specificity
// first means a barangay, when present, always wins.
func rank(c []entity.JurisdictionCandidate) {
	sort.SliceStable(c, func(i, j int) bool {
		si, sj := c[i].Type.Specificity(), c[j].Type.Specificity()
		if si != sj {
			return si > sj
		}
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return strings.ToLower(c[i].Name) < strings.ToLower(c[j].Name)
	})
}

// Resolve picks the issuing LGU from page texts.
func Resolve(pages []string, cfg Config) Result {
	candidates := Collect(pages, cfg)
	if len(candidates) == 0 {
		return Result{
			LGU: entity.LguInfo{
				Name:       constants.UnknownLGUName,
				Type:       constants.LGUUnknown,
				Confidence: constants.ConfidenceLow,
			},
			Warnings: []entity.Warning{{
				Code:    constants.WarnLGUNameMissing,
				Message: "No jurisdiction markers detected in document text.",
				Details: map[string]any{"selected": map[string]any{
					"type": string(constants.LGUUnknown),
					"name": constants.UnknownLGUName,
				}},
			}},
		}
	}

	selected := candidates[0]
	var warnings []entity.Warning
	var peers []entity.JurisdictionCandidate
	for _, c := range candidates[1:] {
		if c.Type == selected.Type && c.Name != selected.Name && selected.Score-c.Score <= cfg.AmbiguityGap {
			peers = append(peers, c)
		}
	}
	if len(peers) > 0 {
		warnings = append(warnings, ambiguityWarning(selected, peers, candidates, cfg))
	}

	confidence := constants.ConfidenceHigh
	if len(candidates) > 1 {
		nearest := 0
		for _, c := range candidates {
			if c.Name != selected.Name && c.Type.Specificity() == selected.Type.Specificity() && c.Score > nearest {
				nearest = c.Score
			}
		}
		switch gap := selected.Score - nearest; {
		case gap >= cfg.HighGap:
			confidence = constants.ConfidenceHigh
		case gap >= cfg.MediumGap:
			confidence = constants.ConfidenceMedium
		default:
			confidence = constants.ConfidenceLow
		}
	}
	if len(peers) > 0 {
		confidence = constants.ConfidenceLow
	}

	lguType := selected.Type
	if !lguType.IsOutputType() {
		lguType = constants.LGUUnknown
	}
	return Result{
		LGU: entity.LguInfo{
			Name:       selected.Name,
			Type:       lguType,
			Confidence: confidence,
			SourceRefs: selected.SourceRefs,
		},
		Candidates: candidates,
		Warnings:   warnings,
	}
}

func ambiguityWarning(selected entity.JurisdictionCandidate, peers, all []entity.JurisdictionCandidate, cfg Config) entity.Warning {
	refs := selected.SourceRefs
	for i, p := range peers {
		if i >= cfg.MaxWarnPeers {
			break
		}
		refs = provenance.Merge(refs, p.SourceRefs)
	}
	listed := make([]map[string]any, 0, len(all))
	for _, c := range all {
		listed = append(listed, map[string]any{
			"type":        string(c.Type),
			"name":        c.Name,
			"score":       c.Score,
			"source_refs": c.SourceRefs,
		})
	}
	return entity.Warning{
		Code:    constants.WarnLGUAmbiguous,
		Message: "Multiple jurisdiction candidates were detected with similar confidence.",
		Details: map[string]any{
			"candidates": listed,
			"selected":   map[string]any{"type": string(selected.Type), "name": selected.Name},
		},
		SourceRefs: refs,
	}
}
