package entity

import "github.com/Open-AIP/OpenAIP/constants"

// SourceInfo describes the document itself.
type SourceInfo struct {
	DocumentType constants.DocumentType `json:"document_type"`
	PageCount    int                    `json:"page_count"`
}

// DocumentMetadata is the merged document-level record.
type DocumentMetadata struct {
	LGU         LguInfo     `json:"lgu"`
	FiscalYear  int         `json:"fiscal_year"`
	Source      SourceInfo  `json:"source"`
	Signatories []Signatory `json:"signatories,omitempty"`
}

// Quality is a coarse review score derived from warnings.
type Quality struct {
	Score        int            `json:"score"`
	WarningCount int            `json:"warning_count"`
	ByCode       map[string]int `json:"by_code,omitempty"`
}
