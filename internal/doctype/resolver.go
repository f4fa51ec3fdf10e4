// Package doctype decides whether a document is a barangay AIP (BAIP) or a
// city/municipal AIP.
package doctype

import (
	"regexp"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/provenance"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

var (
	baipPattern = regexp.MustCompile(`(?i)\bBAIP\b|BARANGAY\s+ANNUAL\s+INVESTMENT\s+PROGRAM`)
	aipPattern  = regexp.MustCompile(`(?i)\bAIP\b|ANNUAL\s+INVESTMENT\s+PROGRAM`)
)

// maxRefsPerType bounds the refs of each type attached to a tie warning.
const maxRefsPerType = 2

// Result carries the decision and the hits behind it.
type Result struct {
	Type     constants.DocumentType
	BAIPHits []entity.SourceRef
	AIPHits  []entity.SourceRef
	Warnings []entity.Warning
}

// Refs returns the hits that support the selected type.
func (r Result) Refs() []entity.SourceRef {
	switch r.Type {
	case constants.DocTypeBAIP:
		return r.BAIPHits
	case constants.DocTypeAIP:
		return r.AIPHits
	}
	return nil
}

// Resolve counts template hits. A tie goes to BAIP when the jurisdiction is a
// barangay and AIP otherwise. Zero hits leaves the type unknown for the caller
// to default.
func Resolve(pages []string, lguType constants.LGUType) Result {
	var res Result
	for i, text := range pages {
		kind := constants.KindTextBlock
		if i == 0 {
			kind = constants.KindHeader
		}
		for _, m := range baipPattern.FindAllString(text, -1) {
			res.BAIPHits = append(res.BAIPHits, provenance.TextRef(i+1, kind, textnorm.Whitespace(m), nil))
		}
		for _, m := range aipPattern.FindAllString(text, -1) {
			res.AIPHits = append(res.AIPHits, provenance.TextRef(i+1, kind, textnorm.Whitespace(m), nil))
		}
	}

	nb, na := len(res.BAIPHits), len(res.AIPHits)
	switch {
	case nb == 0 && na == 0:
		res.Type = constants.DocTypeUnknown
	case nb > na:
		res.Type = constants.DocTypeBAIP
	case na > nb:
		res.Type = constants.DocTypeAIP
	default:
		res.Type = constants.DocTypeAIP
		if lguType == constants.LGUBarangay {
			res.Type = constants.DocTypeBAIP
		}
		var refs []entity.SourceRef
		refs = append(refs, head(res.BAIPHits)...)
		refs = append(refs, head(res.AIPHits)...)
		res.Warnings = append(res.Warnings, entity.Warning{
			Code:    constants.WarnDocTypeAmbiguous,
			Message: "Both BAIP and AIP anchors were detected with equal frequency.",
			Details: map[string]any{
				"baip_hits": nb,
				"aip_hits":  na,
				"selected":  string(res.Type),
			},
			SourceRefs: refs,
		})
	}
	return res
}

// Default fills an unknown type from the processing scope.
func Default(t constants.DocumentType, scope constants.Scope) constants.DocumentType {
	if t != constants.DocTypeUnknown {
		return t
	}
	if scope == constants.ScopeBarangay {
		return constants.DocTypeBAIP
	}
	return constants.DocTypeAIP
}

func head(refs []entity.SourceRef) []entity.SourceRef {
	if len(refs) > maxRefsPerType {
		return refs[:maxRefsPerType]
	}
	return refs
}
