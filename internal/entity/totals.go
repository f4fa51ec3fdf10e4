package entity

import "github.com/shopspring/decimal"

// TotalCandidate is a ranked headline-total match on one line.
type TotalCandidate struct {
	KeywordRank  int             `json:"keyword_rank"`
	Confidence   int             `json:"confidence"`
	Value        decimal.Decimal `json:"value"`
	Page         int             `json:"page"`
	LineIndex    int             `json:"line_index"`
	Line         string          `json:"line"`
	EvidenceText string          `json:"evidence_text"`
}

// TotalRecord is the persisted headline total for a document.
type TotalRecord struct {
	SourceLabel  string          `json:"source_label"`
	FiscalYear   int             `json:"fiscal_year"`
	Value        decimal.Decimal `json:"value"`
	Currency     string          `json:"currency"`
	PageNo       int             `json:"page_no"`
	EvidenceText string          `json:"evidence_text"`
	SourceRefs   []SourceRef     `json:"source_refs"`
}
