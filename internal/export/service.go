package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Open-AIP/OpenAIP/internal/artifact"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/repository"
)

const (
	SheetDocuments   = "Documents"
	SheetSignatories = "Signatories"
	SheetTotals      = "Totals"
	SheetWarnings    = "Warnings"
)

// Service produces XLSX review workbooks from artifacts.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

// NewService accepts a nil repository when only in-memory artifacts are exported.
func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportStoredXLSX exports every persisted document of a fiscal year (0 = all).
func (s *Service) ExportStoredXLSX(ctx context.Context, fiscalYear int) ([]byte, error) {
	if s.docs == nil {
		return nil, fmt.Errorf("export: no document repository configured")
	}
	docs, err := s.docs.ListDocuments(ctx, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	arts := make([]artifact.Artifact, 0, len(docs))
	for _, d := range docs {
		var a artifact.Artifact
		if err := json.Unmarshal(d.ArtifactJSON, &a); err != nil {
			s.logger.Warn("export.artifact.skipped", "aip_id", d.ID, "error", err)
			continue
		}
		arts = append(arts, a)
	}
	return s.WorkbookXLSX(ctx, arts)
}

// WorkbookXLSX writes one row per document, signatory, total and warning.
func (s *Service) WorkbookXLSX(_ context.Context, arts []artifact.Artifact) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetDocuments); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetSignatories, SheetTotals, SheetWarnings} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	docs := newSheet(f, SheetDocuments, "AIP ID", "Source File", "LGU", "LGU Type", "Confidence",
		"Fiscal Year", "Document Type", "Pages", "Quality", "Warnings")
	sigs := newSheet(f, SheetSignatories, "AIP ID", "Role", "Name", "Position", "Office", "Page", "Evidence")
	tots := newSheet(f, SheetTotals, "AIP ID", "Source Label", "Fiscal Year", "Value", "Currency", "Page", "Evidence")
	warns := newSheet(f, SheetWarnings, "AIP ID", "Code", "Message", "Page")

	for _, a := range arts {
		id := a.AIPID.String()
		md := a.Document
		docs.add(id, a.SourceFile.Path, md.LGU.Name, string(md.LGU.Type), string(md.LGU.Confidence),
			md.FiscalYear, string(md.Source.DocumentType), md.Source.PageCount, a.Quality.Score, len(a.Warnings))

		for _, sg := range md.Signatories {
			page, evidence := firstRef(sg.SourceRefs)
			sigs.add(id, string(sg.Role), sg.Name, sg.Position, sg.Office, page, evidence)
		}
		for _, t := range a.Totals {
			value, _ := t.Value.Float64()
			tots.add(id, t.SourceLabel, t.FiscalYear, value, t.Currency, t.PageNo, truncate(t.EvidenceText, 140))
		}
		for _, w := range a.Warnings {
			warns.add(id, string(w.Code), w.Message, w.Page())
		}
	}

	_ = f.SetColWidth(SheetDocuments, "A", "B", 38)
	_ = f.SetColWidth(SheetDocuments, "C", "C", 28)
	_ = f.SetColWidth(SheetSignatories, "C", "E", 28)
	_ = f.SetColWidth(SheetSignatories, "G", "G", 48)
	_ = f.SetColWidth(SheetTotals, "D", "D", 18)
	_ = f.SetColWidth(SheetTotals, "G", "G", 60)
	_ = f.SetColWidth(SheetWarnings, "C", "C", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"documents", len(arts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(f *excelize.File, name string, headers ...string) *sheet {
	s := &sheet{f: f, name: name, row: 1}
	vals := make([]any, len(headers))
	for i, h := range headers {
		vals[i] = h
	}
	s.add(vals...)
	return s
}

func (s *sheet) add(vals ...any) {
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, s.row)
		_ = s.f.SetCellValue(s.name, cell, v)
	}
	s.row++
}

func firstRef(refs []entity.SourceRef) (int, string) {
	if len(refs) == 0 {
		return 0, ""
	}
	return refs[0].Page, refs[0].EvidenceText
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
