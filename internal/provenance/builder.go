// Package provenance normalizes and hashes the evidence behind every derived fact.
//
// The anchor hash depends only on six normalized fields, so re-running the
// pipeline on the same PDF yields byte-identical keys. Persistence relies on
// that for idempotent upserts.
package provenance

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Open-AIP/OpenAIP/constants"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/textnorm"
)

// Input is the raw evidence for a SourceRef before normalization.
type Input struct {
	Page         int
	Kind         constants.SourceKind
	TableIndex   *int
	RowIndex     *int
	EvidenceText string
	BBox         *entity.BBox
	RowSignature string
}

// NormalizeEvidence collapses whitespace and truncates to the evidence limit.
func NormalizeEvidence(s string) string {
	return textnorm.Truncate(textnorm.Whitespace(s), constants.MaxEvidenceLen)
}

// NormalizePage maps anything below 1 to the unknown-page sentinel.
func NormalizePage(page int) int {
	if page < 1 {
		return constants.UnknownPage
	}
	return page
}

// NormalizeKind maps unrecognised kinds to "unknown".
func NormalizeKind(kind constants.SourceKind) constants.SourceKind {
	if kind.IsValid() {
		return kind
	}
	return constants.KindUnknown
}

// AnchorHash is the SHA-1 hex digest of the normalized
// (evidence_text, page, row_index, table_index, kind, row_signature) tuple.
// Missing optional fields hash as the empty string.
func AnchorHash(evidence string, page int, rowIndex, tableIndex *int, kind constants.SourceKind, rowSignature string) string {
	parts := []string{
		NormalizeEvidence(evidence),
		strconv.Itoa(NormalizePage(page)),
		optInt(rowIndex),
		optInt(tableIndex),
		string(NormalizeKind(kind)),
		textnorm.Whitespace(rowSignature),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

// New builds a normalized, hashed SourceRef.
func New(in Input) entity.SourceRef {
	ref := entity.SourceRef{
		Page:         NormalizePage(in.Page),
		Kind:         NormalizeKind(in.Kind),
		EvidenceText: NormalizeEvidence(in.EvidenceText),
		RowSignature: textnorm.Whitespace(in.RowSignature),
	}
	if in.TableIndex != nil {
		v := *in.TableIndex
		ref.TableIndex = &v
	}
	if in.RowIndex != nil {
		v := *in.RowIndex
		ref.RowIndex = &v
	}
	if in.BBox != nil {
		b := *in.BBox
		ref.BBox = &b
	}
	ref.AnchorHash = AnchorHash(ref.EvidenceText, ref.Page, ref.RowIndex, ref.TableIndex, ref.Kind, ref.RowSignature)
	return ref
}

// TextRef is the common case: evidence on a page with a kind and optional box.
func TextRef(page int, kind constants.SourceKind, evidence string, bbox *entity.BBox) entity.SourceRef {
	return New(Input{Page: page, Kind: kind, EvidenceText: evidence, BBox: bbox})
}

// Dedup drops refs whose serialized form was already seen, keeping first-seen order.
func Dedup(refs []entity.SourceRef) []entity.SourceRef {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]entity.SourceRef, 0, len(refs))
	for _, r := range refs {
		key := serialize(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Merge returns the deduplicated concatenation of a and b without touching either.
func Merge(a, b []entity.SourceRef) []entity.SourceRef {
	all := make([]entity.SourceRef, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return Dedup(all)
}

// HasPageEvidence reports whether any ref points at a real page.
func HasPageEvidence(refs []entity.SourceRef) bool {
	for _, r := range refs {
		if r.HasPage() {
			return true
		}
	}
	return false
}

func serialize(r entity.SourceRef) string {
	b, err := json.Marshal(r)
	if err != nil {
		return r.AnchorHash
	}
	return string(b)
}
