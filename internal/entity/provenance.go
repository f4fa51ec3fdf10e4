package entity

import "github.com/Open-AIP/OpenAIP/constants"

// SourceRef points a derived fact back to its page evidence.
type SourceRef struct {
	Page         int                  `json:"page"`
	Kind         constants.SourceKind `json:"kind"`
	TableIndex   *int                 `json:"table_index,omitempty"`
	RowIndex     *int                 `json:"row_index,omitempty"`
	EvidenceText string               `json:"evidence_text"`
	BBox         *BBox                `json:"bbox,omitempty"`
	AnchorHash   string               `json:"anchor_hash"`
	RowSignature string               `json:"row_signature,omitempty"`
}

// HasPage reports whether the ref carries real page evidence.
func (r SourceRef) HasPage() bool { return r.Page >= 1 }

// Warning is a fact about the extraction process, not a failure.
type Warning struct {
	Code       constants.WarningCode `json:"code"`
	Message    string                `json:"message"`
	Details    map[string]any        `json:"details,omitempty"`
	SourceRefs []SourceRef           `json:"source_refs,omitempty"`
}

// Page returns the page of the first ref, or the unknown sentinel.
func (w Warning) Page() int {
	if len(w.SourceRefs) == 0 {
		return constants.UnknownPage
	}
	return w.SourceRefs[0].Page
}
