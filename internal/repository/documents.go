package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

var documentSelectColumns = []string{
	"id", "content_hash", "source_path", "lgu_name", "lgu_type", "lgu_confidence",
	"fiscal_year", "document_type", "page_count", "quality_score", "artifact_json",
	"created_at", "updated_at",
}

type DocumentRepository interface {
	// UpsertDocument inserts or refreshes the row keyed by content hash and
	// returns the stored id, which stays stable across re-runs.
	UpsertDocument(ctx context.Context, doc *entity.Document) (uuid.UUID, error)
	GetByContentHash(ctx context.Context, contentHash string) (*entity.Document, error)
	ListDocuments(ctx context.Context, fiscalYear int) ([]*entity.Document, error)
}

type documentRepository struct {
	q       Querier
	dialect string
	logger  *slog.Logger
	now     func() time.Time
}

func NewDocumentRepository(q Querier, dialect string, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{q: q, dialect: dialect, logger: logger, now: time.Now}
}

func (r *documentRepository) UpsertDocument(ctx context.Context, doc *entity.Document) (uuid.UUID, error) {
	if doc.ContentHash == "" {
		return uuid.Nil, common.NewAppError(common.CodeDatabase, "document content hash is required", common.ErrInvalidInput)
	}
	id := doc.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := r.now().UTC()

	query, args := entsql.Dialect(r.dialect).
		Insert(TableDocuments).
		Columns(documentSelectColumns...).
		Values(
			id, doc.ContentHash, doc.SourcePath, doc.LGUName, doc.LGUType, doc.LGUConfidence,
			doc.FiscalYear, doc.DocumentType, doc.PageCount, doc.QualityScore, jsonArg(doc.ArtifactJSON),
			now, now,
		).
		OnConflict(
			entsql.ConflictColumns("content_hash"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range documentSelectColumns {
					if c == "id" || c == "content_hash" || c == "created_at" {
						continue
					}
					u.SetExcluded(c)
				}
			}),
		).
		Returning("id").
		Query()

	var stored uuid.UUID
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&stored); err != nil {
		r.logger.Error("repository.documents.upsert_failed", "content_hash", doc.ContentHash, "error", err)
		return uuid.Nil, common.NewAppError(common.CodeDatabase, "upsert document", err)
	}
	r.logger.Debug("repository.documents.upsert", "aip_id", stored, "content_hash", doc.ContentHash)
	return stored, nil
}

func (r *documentRepository) GetByContentHash(ctx context.Context, contentHash string) (*entity.Document, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(documentSelectColumns...).
		From(entsql.Table(TableDocuments)).
		Where(entsql.EQ("content_hash", contentHash)).
		Query()

	doc, err := scanDocument(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodeDatabase, "document "+contentHash, common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "get document", err)
	}
	return doc, nil
}

// ListDocuments returns documents ordered by LGU name; fiscalYear 0 lists all.
func (r *documentRepository) ListDocuments(ctx context.Context, fiscalYear int) ([]*entity.Document, error) {
	sel := entsql.Dialect(r.dialect).
		Select(documentSelectColumns...).
		From(entsql.Table(TableDocuments))
	if fiscalYear > 0 {
		sel = sel.Where(entsql.EQ("fiscal_year", fiscalYear))
	}
	query, args := sel.OrderBy("lgu_name", "fiscal_year").Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "list documents", err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, common.NewAppError(common.CodeDatabase, "scan document", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*entity.Document, error) {
	var (
		d   entity.Document
		raw []byte
	)
	err := s.Scan(
		&d.ID, &d.ContentHash, &d.SourcePath, &d.LGUName, &d.LGUType, &d.LGUConfidence,
		&d.FiscalYear, &d.DocumentType, &d.PageCount, &d.QualityScore, &raw,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		d.ArtifactJSON = raw
	}
	return &d, nil
}

func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
