package entity

import "github.com/Open-AIP/OpenAIP/constants"

// SignatoryAnchor is a located role label such as "Approved by:".
type SignatoryAnchor struct {
	Role  constants.SignatoryRole `json:"role"`
	Label string                  `json:"label"`
	BBox  BBox                    `json:"bbox"`
	Page  int                     `json:"page"`
}

// Signatory is a person who signed the document under a role.
type Signatory struct {
	Role       constants.SignatoryRole `json:"role"`
	Name       string                  `json:"name"`
	Position   string                  `json:"position,omitempty"`
	Office     string                  `json:"office,omitempty"`
	SourceRefs []SourceRef             `json:"source_refs"`
}
