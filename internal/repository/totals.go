package repository

import (
	"context"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Open-AIP/OpenAIP/internal/common"
	"github.com/Open-AIP/OpenAIP/internal/entity"
)

type TotalsRepository interface {
	// UpsertTotal writes one total keyed by (aip_id, source_label).
	UpsertTotal(ctx context.Context, t *entity.StoredTotal) error
	ListByDocument(ctx context.Context, aipID uuid.UUID) ([]*entity.StoredTotal, error)
}

type totalsRepository struct {
	q       Querier
	dialect string
	logger  *slog.Logger
}

func NewTotalsRepository(q Querier, dialect string, logger *slog.Logger) TotalsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &totalsRepository{q: q, dialect: dialect, logger: logger}
}

func (r *totalsRepository) UpsertTotal(ctx context.Context, t *entity.StoredTotal) error {
	if err := common.ValidateAndReturnError(t); err != nil {
		return err
	}
	if t.AIPID == uuid.Nil {
		return common.InvalidArgumentError("aip_id is required")
	}
	value, err := decimal.NewFromString(t.Value)
	if err != nil {
		return common.InvalidArgumentErrorf("total value %q: %v", t.Value, err)
	}
	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(TableTotals).
		Columns("id", "aip_id", "source_label", "fiscal_year", "value", "currency", "page_no", "evidence_text").
		Values(id, t.AIPID, t.SourceLabel, t.FiscalYear, value.StringFixed(2), t.Currency, t.PageNo, t.EvidenceText).
		OnConflict(
			entsql.ConflictColumns("aip_id", "source_label"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("fiscal_year").
					SetExcluded("value").
					SetExcluded("currency").
					SetExcluded("page_no").
					SetExcluded("evidence_text")
			}),
		).
		Query()

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("repository.totals.upsert_failed", "aip_id", t.AIPID, "error", err)
		return common.NewAppError(common.CodeDatabase, "upsert total", err)
	}
	r.logger.Debug("repository.totals.upsert", "aip_id", t.AIPID, "source_label", t.SourceLabel)
	return nil
}

func (r *totalsRepository) ListByDocument(ctx context.Context, aipID uuid.UUID) ([]*entity.StoredTotal, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("id", "aip_id", "source_label", "fiscal_year", "value", "currency", "page_no", "evidence_text").
		From(entsql.Table(TableTotals)).
		Where(entsql.EQ("aip_id", aipID)).
		OrderBy("source_label").
		Query()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError(common.CodeDatabase, "list totals", err)
	}
	defer rows.Close()

	var out []*entity.StoredTotal
	for rows.Next() {
		var (
			t     entity.StoredTotal
			value decimal.Decimal
		)
		if err := rows.Scan(&t.ID, &t.AIPID, &t.SourceLabel, &t.FiscalYear, &value, &t.Currency, &t.PageNo, &t.EvidenceText); err != nil {
			return nil, common.NewAppError(common.CodeDatabase, "scan total", err)
		}
		t.Value = value.String()
		out = append(out, &t)
	}
	return out, rows.Err()
}
