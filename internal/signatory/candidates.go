package signatory

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

// NormalizeName collapses whitespace and strips trailing punctuation.
func NormalizeName(text string) string {
	v := textnorm.Whitespace(text)
	return strings.TrimSpace(trailingPunct.ReplaceAllString(v, ""))
}

// NormalizePosition applies the same cleanup as NormalizeName.
func NormalizePosition(text string) string {
	return NormalizeName(text)
}

// IsValidName reports whether text looks like a printed personal name.
func IsValidName(text string, cfg Config) bool {
	v := NormalizeName(text)
	if v == "" {
		return false
	}
	if rejectPattern.MatchString(v) || pageNoise.MatchString(v) || textnorm.HasDigit(v) {
		return false
	}
	letters := textnorm.CountLetters(v)
	compact := utf8.RuneCountInString(whitespace.ReplaceAllString(v, ""))
	if letters < cfg.MinNameLetters || compact == 0 {
		return false
	}
	if float64(letters)/float64(compact) < cfg.MinLetterRatio {
		return false
	}
	tokens := strings.Fields(v)
	if len(tokens) < cfg.MinNameTokens || len(tokens) > cfg.MaxNameTokens {
		return false
	}
	return !positionMarkerPattern.MatchString(v)
}

// IsPosition reports whether text looks like a job title rather than a name.
func IsPosition(text string, cfg Config) bool {
	v := NormalizePosition(text)
	if v == "" {
		return false
	}
	if rejectPattern.MatchString(v) || pageNoise.MatchString(v) {
		return false
	}
	if IsValidName(v, cfg) {
		return false
	}
	if textnorm.CountLetters(v) < cfg.MinPositionLetters {
		return false
	}
	return positionMarkerPattern.MatchString(v)
}

// InferOffice maps a position to the office it belongs to, or "".
func InferOffice(position string) string {
	v := strings.ToLower(NormalizePosition(position))
	if v == "" {
		return ""
	}
	for _, rule := range officeRules {
		if strings.Contains(v, rule.contains) {
			return rule.office
		}
	}
	return ""
}

type pair struct {
	name     string
	position string
	bbox     entity.BBox
}

// extractPairs walks lines top to bottom and pairs each valid name with the
// position printed directly beneath it.
func extractPairs(lines []entity.PositionedLine, cfg Config) []pair {
	if len(lines) == 0 {
		return nil
	}
	ordered := make([]entity.PositionedLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool {
		yi, yj := ordered[i].BBox.YCenter(), ordered[j].BBox.YCenter()
		if yi != yj {
			return yi < yj
		}
		return ordered[i].BBox.X0 < ordered[j].BBox.X0
	})

	var pairs []pair
	seen := map[string]struct{}{}
	for i := 0; i < len(ordered); i++ {
		line := ordered[i]
		name := NormalizeName(line.Text)
		if !IsValidName(name, cfg) {
			continue
		}
		position := ""
		if i+1 < len(ordered) {
			next := ordered[i+1]
			candidate := NormalizePosition(next.Text)
			if next.BBox.Y0-line.BBox.Y1 <= cfg.PositionGapMax && IsPosition(candidate, cfg) {
				position = candidate
				i++
			}
		}
		key := strings.ToLower(name) + "|" + strings.ToLower(position)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		pairs = append(pairs, pair{name: name, position: position, bbox: line.BBox})
	}
	return pairs
}
