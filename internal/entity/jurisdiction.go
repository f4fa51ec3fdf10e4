package entity

import "github.com/Open-AIP/OpenAIP/constants"

// JurisdictionCandidate is one distinct (type, name) mention with its accumulated score.
type JurisdictionCandidate struct {
	Type       constants.LGUType `json:"type"`
	Name       string            `json:"name"`
	Score      int               `json:"score"`
	SourceRefs []SourceRef       `json:"source_refs"`
}

// LguInfo is the resolved issuing jurisdiction.
type LguInfo struct {
	Name       string               `json:"name"`
	Type       constants.LGUType    `json:"type"`
	Confidence constants.Confidence `json:"confidence"`
	SourceRefs []SourceRef          `json:"source_refs,omitempty"`
}
