package repository

import (
	"context"
	"database/sql"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

type SourceRefRepository interface {
	// UpsertRefs writes refs keyed by (aip_id, anchor_hash); re-runs overwrite.
	UpsertRefs(ctx context.Context, refs []*entity.StoredSourceRef) error
	CountByDocument(ctx context.Context, aipID uuid.UUID) (int, error)
}

type sourceRefRepository struct {
	q       Querier
	dialect string
	logger  *slog.Logger
}

func NewSourceRefRepository(q Querier, dialect string, logger *slog.Logger) SourceRefRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &sourceRefRepository{q: q, dialect: dialect, logger: logger}
}

func (r *sourceRefRepository) UpsertRefs(ctx context.Context, refs []*entity.StoredSourceRef) error {
	for _, ref := range refs {
		if ref.AnchorHash == "" || ref.AIPID == uuid.Nil {
			return common.InvalidArgumentError("source ref needs anchor_hash and aip_id")
		}
		query, args := entsql.Dialect(r.dialect).
			Insert(TableSourceRefs).
			Columns("anchor_hash", "aip_id", "subject", "page", "kind", "evidence_text",
				"row_index", "table_index", "row_signature", "bbox_json").
			Values(ref.AnchorHash, ref.AIPID, ref.Subject, ref.Page, ref.Kind, ref.EvidenceText,
				nullInt(ref.RowIndex), nullInt(ref.TableIndex), nullString(ref.RowSignature), nullString(ref.BBoxJSON)).
			OnConflict(
				entsql.ConflictColumns("aip_id", "anchor_hash"),
				entsql.ResolveWith(func(u *entsql.UpdateSet) {
					u.SetExcluded("subject").SetExcluded("bbox_json")
				}),
			).
			Query()
		if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("repository.source_refs.upsert_failed", "aip_id", ref.AIPID, "anchor_hash", ref.AnchorHash, "error", err)
			return common.NewAppError(common.CodeDatabase, "upsert source ref", err)
		}
	}
	return nil
}

func (r *sourceRefRepository) CountByDocument(ctx context.Context, aipID uuid.UUID) (int, error) {
	query, args := entsql.Dialect(r.dialect).
		Select().
		Count().
		From(entsql.Table(TableSourceRefs)).
		Where(entsql.EQ("aip_id", aipID)).
		Query()
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, common.NewAppError(common.CodeDatabase, "count source refs", err)
	}
	return n, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
