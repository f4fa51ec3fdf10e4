package utils

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

// ToDocument flattens an artifact into the aip_documents row shape.
func ToDocument(a artifact.Artifact, raw []byte) *entity.Document {
	return &entity.Document{
		ID:            a.AIPID,
		ContentHash:   a.SourceFile.ContentHash,
		SourcePath:    a.SourceFile.Path,
		LGUName:       a.Document.LGU.Name,
		LGUType:       string(a.Document.LGU.Type),
		LGUConfidence: string(a.Document.LGU.Confidence),
		FiscalYear:    a.Document.FiscalYear,
		DocumentType:  string(a.Document.Source.DocumentType),
		PageCount:     a.Document.Source.PageCount,
		QualityScore:  a.Quality.Score,
		ArtifactJSON:  raw,
	}
}

func ToStoredTotals(aipID uuid.UUID, totals []entity.TotalRecord) []*entity.StoredTotal {
	out := make([]*entity.StoredTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, &entity.StoredTotal{
			AIPID:        aipID,
			SourceLabel:  t.SourceLabel,
			FiscalYear:   t.FiscalYear,
			Value:        t.Value.String(),
			Currency:     t.Currency,
			PageNo:       t.PageNo,
			EvidenceText: t.EvidenceText,
		})
	}
	return out
}

// CollectSourceRefs gathers every ref in the artifact, tagged by the fact it
// supports. A hash seen twice keeps its first subject.
func CollectSourceRefs(a artifact.Artifact) []*entity.StoredSourceRef {
	seen := map[string]struct{}{}
	var out []*entity.StoredSourceRef
	add := func(subject string, refs []entity.SourceRef) {
		for _, r := range refs {
			if _, ok := seen[r.AnchorHash]; ok {
				continue
			}
			seen[r.AnchorHash] = struct{}{}
			out = append(out, ToStoredSourceRef(a.AIPID, subject, r))
		}
	}

	add("lgu", a.Document.LGU.SourceRefs)
	for _, s := range a.Document.Signatories {
		add("signatory:"+string(s.Role), s.SourceRefs)
	}
	for _, t := range a.Totals {
		add("total:"+t.SourceLabel, t.SourceRefs)
	}
	for _, w := range a.Warnings {
		add("warning:"+string(w.Code), w.SourceRefs)
	}
	return out
}

func ToStoredSourceRef(aipID uuid.UUID, subject string, r entity.SourceRef) *entity.StoredSourceRef {
	row := &entity.StoredSourceRef{
		AnchorHash:   r.AnchorHash,
		AIPID:        aipID,
		Subject:      subject,
		Page:         r.Page,
		Kind:         string(r.Kind),
		EvidenceText: r.EvidenceText,
		RowIndex:     r.RowIndex,
		TableIndex:   r.TableIndex,
		RowSignature: r.RowSignature,
	}
	if r.BBox != nil {
		if b, err := json.Marshal(r.BBox); err == nil {
			row.BBoxJSON = string(b)
		}
	}
	return row
}

// ToSummaryMap renders a stored document for the gRPC Struct payloads.
func ToSummaryMap(d *entity.Document) map[string]any {
	return map[string]any{
		"aip_id":         d.ID.String(),
		"content_hash":   d.ContentHash,
		"source_path":    d.SourcePath,
		"lgu_name":       d.LGUName,
		"lgu_type":       d.LGUType,
		"lgu_confidence": d.LGUConfidence,
		"fiscal_year":    d.FiscalYear,
		"document_type":  d.DocumentType,
		"page_count":     d.PageCount,
		"quality_score":  d.QualityScore,
		"created_at":     d.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":     d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// JSONToMap decodes a JSON object for structpb conversion.
func JSONToMap(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode json object: %w", err)
	}
	return m, nil
}
