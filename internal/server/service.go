package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/core"
	"github.com/Open-AIP/OpenAIP/internal/entity"
	"github.com/Open-AIP/OpenAIP/internal/repository"
	"github.com/Open-AIP/OpenAIP/internal/utils"
)

// DocumentProcessor runs the resolution pipeline; core.Processor implements it.
type DocumentProcessor interface {
	ProcessFile(ctx context.Context, path string) (core.Outcome, error)
	ProcessPages(ctx context.Context, pages []entity.PageInput) (core.Outcome, error)
}

// WorkbookExporter renders stored documents; export.Service implements it.
type WorkbookExporter interface {
	ExportStoredXLSX(ctx context.Context, fiscalYear int) ([]byte, error)
}

// MetadataService implements MetadataServiceServer. docs and exporter are
// nil when the daemon runs without a database.
type MetadataService struct {
	processor DocumentProcessor
	docs      repository.DocumentRepository
	exporter  WorkbookExporter
	logger    *slog.Logger
}

func NewMetadataService(processor DocumentProcessor, docs repository.DocumentRepository, exporter WorkbookExporter, logger *slog.Logger) *MetadataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataService{processor: processor, docs: docs, exporter: exporter, logger: logger}
}

var _ MetadataServiceServer = (*MetadataService)(nil)

func (s *MetadataService) ResolveDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := strings.TrimSpace(req.GetFields()["path"].GetStringValue())
	if path == "" {
		return nil, common.InvalidArgumentError("path is required")
	}
	ctx = common.WithRequestID(ctx, uuid.NewString())

	out, err := s.processor.ProcessFile(ctx, path)
	if err != nil {
		s.logger.Error("grpc.resolve_document.failed", "path", path, "error", err)
		return nil, common.ToStatus(err)
	}
	return artifactStruct(out.JSON)
}

func (s *MetadataService) ResolvePages(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()["pages"]
	if !ok || len(v.GetListValue().GetValues()) == 0 {
		return nil, common.InvalidArgumentError("pages is required")
	}
	raw, err := protojson.Marshal(v)
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	var pages []entity.PageInput
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil, common.InvalidArgumentErrorf("pages: %v", err)
	}
	for i := range pages {
		if pages[i].PageNo < 1 {
			pages[i].PageNo = i + 1
		}
	}
	ctx = common.WithRequestID(ctx, uuid.NewString())

	out, err := s.processor.ProcessPages(ctx, pages)
	if err != nil {
		s.logger.Error("grpc.resolve_pages.failed", "pages", len(pages), "error", err)
		return nil, common.ToStatus(err)
	}
	return artifactStruct(out.JSON)
}

func (s *MetadataService) GetDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	hash := strings.TrimSpace(req.GetFields()["content_hash"].GetStringValue())
	if hash == "" {
		return nil, common.InvalidArgumentError("content_hash is required")
	}
	if s.docs == nil {
		return nil, status.Error(codes.FailedPrecondition, "persistence is disabled")
	}
	doc, err := s.docs.GetByContentHash(ctx, hash)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	summary := utils.ToSummaryMap(doc)
	if len(doc.ArtifactJSON) > 0 {
		m, err := utils.JSONToMap(doc.ArtifactJSON)
		if err != nil {
			s.logger.Warn("grpc.get_document.artifact_decode", "content_hash", hash, "error", err)
		} else {
			summary["artifact"] = m
		}
	}
	st, err := structpb.NewStruct(summary)
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return st, nil
}

// ExportWorkbook returns the XLSX review workbook base64-encoded under "xlsx".
func (s *MetadataService) ExportWorkbook(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.exporter == nil {
		return nil, status.Error(codes.FailedPrecondition, "persistence is disabled")
	}
	fy := int(req.GetFields()["fiscal_year"].GetNumberValue())
	if fy < 0 {
		return nil, common.InvalidArgumentError("fiscal_year must not be negative")
	}
	data, err := s.exporter.ExportStoredXLSX(ctx, fy)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "fiscal_year", fy, "error", err)
		return nil, common.ToStatus(err)
	}
	st, err := structpb.NewStruct(map[string]any{
		"xlsx":  data,
		"bytes": len(data),
	})
	if err != nil {
		return nil, common.InternalError(err.Error())
	}
	return st, nil
}

func artifactStruct(raw []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, st); err != nil {
		return nil, status.Errorf(codes.Internal, "encode artifact: %v", err)
	}
	return st, nil
}
