package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document represents a processed AIP document for data transfer between layers.
type Document struct {
	ID            uuid.UUID       `json:"id"`
	ContentHash   string          `json:"content_hash"`
	SourcePath    string          `json:"source_path"`
	LGUName       string          `json:"lgu_name"`
	LGUType       string          `json:"lgu_type"`
	LGUConfidence string          `json:"lgu_confidence"`
	FiscalYear    int             `json:"fiscal_year"`
	DocumentType  string          `json:"document_type"`
	PageCount     int             `json:"page_count"`
	QualityScore  int             `json:"quality_score"`
	ArtifactJSON  json.RawMessage `json:"artifact_json,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// StoredTotal is a row of aip_totals.
type StoredTotal struct {
	ID           uuid.UUID `json:"id"`
	AIPID        uuid.UUID `json:"aip_id"`
	SourceLabel  string    `json:"source_label" validate:"required"`
	FiscalYear   int       `json:"fiscal_year"`
	Value        string    `json:"value" validate:"required,numeric"`
	Currency     string    `json:"currency"`
	PageNo       int       `json:"page_no"`
	EvidenceText string    `json:"evidence_text" validate:"required"`
}

// StoredSourceRef is a row of aip_source_refs. Subject names the fact the
// ref supports, e.g. "lgu" or "signatory:prepared_by".
type StoredSourceRef struct {
	AnchorHash   string    `json:"anchor_hash"`
	AIPID        uuid.UUID `json:"aip_id"`
	Subject      string    `json:"subject"`
	Page         int       `json:"page"`
	Kind         string    `json:"kind"`
	EvidenceText string    `json:"evidence_text"`
	RowIndex     *int      `json:"row_index,omitempty"`
	TableIndex   *int      `json:"table_index,omitempty"`
	RowSignature string    `json:"row_signature,omitempty"`
	BBoxJSON     string    `json:"bbox_json,omitempty"`
}
